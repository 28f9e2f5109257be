package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"caseforge/internal/chat"
	"caseforge/internal/pipeline"
	"caseforge/internal/runner"
	"caseforge/internal/store"
	t "caseforge/internal/types"
	"caseforge/internal/validate"
)

// runDeadline bounds a whole pipeline run; individual stages produce
// multi-hundred-token outputs so this is deliberately generous.
const runDeadline = 15 * time.Minute

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var input t.StoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.NewString()
	ch := s.hub.open(runID)
	go func() {
		defer s.hub.finish(runID)
		ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
		defer cancel()
		ctx = runner.WithEmitter(ctx, &runner.ChannelEmitter{Ch: ch})

		draft, err := s.orch.Run(ctx, input)
		if draft != nil {
			s.drafts.Put(draft)
		}
		if err != nil {
			log.Printf("run %s failed: %v", runID, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

func (s *apiServer) handleResume(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(r.Context(), r.PathValue("id"))
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	var req struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	ch := s.hub.open(runID)
	go func() {
		defer s.hub.finish(runID)
		ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
		defer cancel()
		ctx = runner.WithEmitter(ctx, &runner.ChannelEmitter{Ch: ch})

		out, err := s.orch.ResumeFrom(ctx, req.Stage, draft)
		if out != nil {
			s.drafts.Put(out)
		}
		if err != nil {
			log.Printf("run %s (resume %s) failed: %v", runID, req.Stage, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// handleRegenerate rebuilds one section. With cascade=false the regenerated
// value is returned synchronously and applied to the draft; with
// cascade=true the request optionally carries a manual edit for the section,
// and the stale dependents are regenerated on a streamed run.
func (s *apiServer) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(r.Context(), r.PathValue("id"))
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	var req struct {
		Section string          `json:"section"`
		Data    json.RawMessage `json:"data,omitempty"`
		Cascade bool            `json:"cascade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if !req.Cascade {
		res, err := s.orch.RegenerateSection(r.Context(), req.Section, draft)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if err := runner.ApplySection(draft, res); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.drafts.Put(draft)
		writeJSON(w, http.StatusOK, res)
		return
	}

	if len(req.Data) > 0 {
		res, err := decodeSectionValue(req.Section, req.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := runner.ApplySection(draft, res); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	runID := uuid.NewString()
	ch := s.hub.open(runID)
	go func() {
		defer s.hub.finish(runID)
		ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
		defer cancel()
		ctx = runner.WithEmitter(ctx, &runner.ChannelEmitter{Ch: ch})

		out, err := s.orch.CascadeEdit(ctx, req.Section, draft)
		if out != nil {
			s.drafts.Put(out)
		}
		if err != nil {
			log.Printf("run %s (cascade %s) failed: %v", runID, req.Section, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

func (s *apiServer) handlePublish(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(r.Context(), r.PathValue("id"))
	if !ok {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	res := validate.Structural(draft)
	if !res.IsPublishable {
		writeJSON(w, http.StatusConflict, res)
		return
	}
	if err := s.stories.Publish(r.Context(), draft); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	draft.Published = true
	s.drafts.Put(draft)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       draft.ID,
		"warnings": res.Warnings,
	})
}

func (s *apiServer) handleGetStory(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.loadDraft(r.Context(), r.PathValue("id"))
	if !ok {
		http.Error(w, "story not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *apiServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		http.Error(w, "chat is not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		StoryID     string         `json:"storyId"`
		CharacterID string         `json:"characterId"`
		Messages    []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	draft, ok := s.loadDraft(r.Context(), req.StoryID)
	if !ok {
		http.Error(w, "story not found", http.StatusNotFound)
		return
	}
	char, ok := draft.CharacterByID(req.CharacterID)
	if !ok {
		http.Error(w, "character not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := s.chat.Stream(r.Context(), char, req.Messages, flushWriter{w}); err != nil {
		log.Printf("chat stream for %s: %v", req.CharacterID, err)
	}
}

func (s *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req chat.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	b, err := s.scorer.Score(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": b.Score, "breakdown": b})
}

// loadDraft checks the editing session cache first and falls back to the
// published store.
func (s *apiServer) loadDraft(ctx context.Context, id string) (*t.Draft, bool) {
	if id == "" {
		return nil, false
	}
	if d, ok := s.drafts.Get(id); ok {
		return d, true
	}
	d, err := s.stories.GetStory(ctx, id)
	if err != nil {
		return nil, false
	}
	return d, true
}

func decodeSectionValue(section string, raw json.RawMessage) (pipeline.SectionResult, error) {
	res := pipeline.SectionResult{Section: section}
	var err error
	switch section {
	case pipeline.SectionFoundation:
		var v t.Foundation
		err = json.Unmarshal(raw, &v)
		res.Data = v
	case pipeline.SectionCharacters:
		var v []t.Character
		err = json.Unmarshal(raw, &v)
		res.Data = v
	case pipeline.SectionClues:
		var v t.CluesOut
		err = json.Unmarshal(raw, &v)
		res.Data = v
	case pipeline.SectionTimeline:
		var v []string
		err = json.Unmarshal(raw, &v)
		res.Data = v
	case pipeline.SectionKnowledge:
		var v map[string]t.Knowledge
		err = json.Unmarshal(raw, &v)
		res.Data = v
	case pipeline.SectionSolution:
		var v t.Solution
		err = json.Unmarshal(raw, &v)
		res.Data = v
	default:
		return res, &t.ValidationError{Field: "section", Message: "unknown section " + section}
	}
	return res, err
}

type flushWriter struct{ w http.ResponseWriter }

func (fw flushWriter) Write(p []byte) (int, error) { return fw.w.Write(p) }
func (fw flushWriter) Flush() {
	if f, ok := fw.w.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var verr *t.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
