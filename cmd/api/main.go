package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"caseforge/internal/assets"
	"caseforge/internal/chat"
	"caseforge/internal/config"
	"caseforge/internal/llm"
	"caseforge/internal/pipeline"
	"caseforge/internal/runner"
	"caseforge/internal/store"
	"caseforge/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client, err := buildLLMClient(cfg)
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}
	defer client.Close()

	drafts, err := store.NewDraftCache(0)
	if err != nil {
		log.Fatalf("draft cache: %v", err)
	}

	var stories store.StoryStore
	if cfg.Database.DSN != "" {
		pg, err := store.NewPostgres(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		stories = pg
	} else {
		log.Printf("DATABASE_URL not set; stories are kept in memory only")
		stories = store.NewMemory()
	}

	orch := &runner.Orchestrator{
		Stages:    pipeline.NewStages(client),
		Validator: &validate.Validator{LLM: client},
		Publisher: stories,
		Portraits: buildPortraits(cfg),
	}

	scorer := &chat.Scorer{LLM: client}
	var chatSvc *chat.Service
	if cfg.LLM.Provider == "openrouter" {
		chatSvc, err = chat.NewService(cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			log.Printf("chat disabled: %v", err)
		}
	}

	s := newAPIServer(orch, drafts, stories, chatSvc, scorer)
	h := withCORS(buildMux(s))

	log.Printf("Starting API server on %s", cfg.Port)
	log.Fatal(http.ListenAndServe(cfg.Port, h2c.NewHandler(h, &http2.Server{})))
}

func buildLLMClient(cfg *config.Config) (llm.Client, error) {
	var (
		base llm.Client
		err  error
	)
	switch cfg.LLM.Provider {
	case "fake":
		base = llm.NewFakeClient()
	case "openrouter":
		base, err = llm.NewOpenRouterClient(cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		base, err = llm.NewGeminiClient(context.Background(), cfg.LLM.Model)
	}
	if err != nil {
		return nil, err
	}
	mws := []llm.Middleware{llm.Retry(cfg.LLM.MaxRetries, time.Second)}
	if cfg.LLM.RPS > 0 {
		mws = append(mws, llm.RateLimit(cfg.LLM.RPS, 1))
	}
	return llm.Wrap(base, mws...), nil
}

func buildPortraits(cfg *config.Config) runner.PortraitGenerator {
	if !cfg.Portrait.Enabled {
		return nil
	}
	ps, err := assets.NewPortraitStore(assets.S3Config{
		Endpoint:  cfg.Portrait.S3Endpoint,
		Region:    cfg.Portrait.Region,
		AccessKey: cfg.Portrait.AccessKey,
		SecretKey: cfg.Portrait.SecretKey,
		Bucket:    cfg.Portrait.Bucket,
		UseSSL:    cfg.Portrait.UseSSL,
	})
	if err != nil {
		log.Printf("portraits disabled: %v", err)
		return nil
	}
	return &assets.Generator{
		Painter: assets.NewHTTPPainter(cfg.Portrait.ServiceURL),
		Store:   ps,
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
