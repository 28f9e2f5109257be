package runner

import (
	"context"

	t "caseforge/internal/types"
	"caseforge/internal/validate"
)

// Event types of the pipeline progress protocol. A run emits any number of
// progress and validation events and exactly one terminal complete or error.
const (
	EventProgress   = "progress"
	EventValidation = "validation"
	EventComplete   = "complete"
	EventError      = "error"
)

// RunEvent is one frame of the progress stream, shaped for direct JSON
// serialization over the websocket.
type RunEvent struct {
	Type    string `json:"type"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message,omitempty"`
	Percent int    `json:"percent,omitempty"`

	Warnings      []validate.Warning `json:"warnings,omitempty"`
	IsPublishable *bool              `json:"isPublishable,omitempty"`

	Result *t.Draft `json:"result,omitempty"`
}

// RunEventEmitter receives pipeline events. Implementations must never block:
// reporting is fire-and-forget and a slow consumer must not stall generation.
type RunEventEmitter interface {
	Emit(event RunEvent)
}

type emitterKey struct{}

// WithEmitter attaches an emitter to the context.
func WithEmitter(ctx context.Context, emitter RunEventEmitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// EmitterFrom retrieves the emitter from context, or returns a no-op emitter.
func EmitterFrom(ctx context.Context) RunEventEmitter {
	if e, ok := ctx.Value(emitterKey{}).(RunEventEmitter); ok {
		return e
	}
	return noopEmitter{}
}

type noopEmitter struct{}

func (noopEmitter) Emit(RunEvent) {}

// ChannelEmitter sends events to a channel, dropping frames when the
// consumer falls behind rather than blocking the pipeline.
type ChannelEmitter struct {
	Ch chan<- RunEvent
}

func (e *ChannelEmitter) Emit(event RunEvent) {
	select {
	case e.Ch <- event:
	default:
	}
}

// FuncEmitter adapts a function to the emitter interface.
type FuncEmitter func(RunEvent)

func (f FuncEmitter) Emit(event RunEvent) { f(event) }
