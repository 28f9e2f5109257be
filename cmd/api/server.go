package main

import (
	"net/http"

	"caseforge/internal/chat"
	"caseforge/internal/runner"
	"caseforge/internal/store"
)

// apiServer wires the orchestrator, stores and chat services to HTTP.
type apiServer struct {
	orch    *runner.Orchestrator
	drafts  *store.DraftCache
	stories store.StoryStore
	chat    *chat.Service
	scorer  *chat.Scorer
	hub     *runHub
}

func newAPIServer(orch *runner.Orchestrator, drafts *store.DraftCache, stories store.StoryStore, chatSvc *chat.Service, scorer *chat.Scorer) *apiServer {
	return &apiServer{
		orch:    orch,
		drafts:  drafts,
		stories: stories,
		chat:    chatSvc,
		scorer:  scorer,
		hub:     newRunHub(),
	}
}

func buildMux(s *apiServer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/stories/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/stories/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /api/stories/{id}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /api/stories/{id}/publish", s.handlePublish)
	mux.HandleFunc("GET /api/stories/{id}", s.handleGetStory)

	// Websocket stream of run events
	mux.HandleFunc("/ws/runs", s.handleRunWS)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/score", s.handleScore)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
