package main

import (
	"errors"
	"sync"

	"caseforge/internal/runner"
)

var errUnknownRun = errors.New("unknown run id")

// runHub buffers pipeline events per run until a websocket subscriber picks
// them up. One subscriber per run; a run is forgotten once its terminal
// event has been delivered.
type runHub struct {
	mu   sync.Mutex
	runs map[string]chan runner.RunEvent
}

func newRunHub() *runHub {
	return &runHub{runs: make(map[string]chan runner.RunEvent)}
}

// open registers a run and returns the channel its emitter writes to.
// The buffer absorbs events emitted before the client connects.
func (h *runHub) open(runID string) chan runner.RunEvent {
	ch := make(chan runner.RunEvent, 256)
	h.mu.Lock()
	h.runs[runID] = ch
	h.mu.Unlock()
	return ch
}

// finish closes the run's channel after the pipeline goroutine has emitted
// its terminal event, letting the subscriber drain and exit.
func (h *runHub) finish(runID string) {
	h.mu.Lock()
	ch, ok := h.runs[runID]
	delete(h.runs, runID)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (h *runHub) subscribe(runID string) (<-chan runner.RunEvent, error) {
	h.mu.Lock()
	ch, ok := h.runs[runID]
	h.mu.Unlock()
	if !ok {
		return nil, errUnknownRun
	}
	return ch, nil
}
