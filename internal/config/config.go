package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	LLM      LLMConfig
	Database DatabaseConfig
	Portrait PortraitConfig
}

type LLMConfig struct {
	// Provider is one of gemini, openrouter, fake.
	Provider string
	APIKey   string
	Model    string
	// ScoringModel grades accusations; cheaper than the generation model.
	ScoringModel string
	MaxRetries   int
	RPS          float64
}

type DatabaseConfig struct {
	// DSN empty disables persistence; drafts stay in memory.
	DSN string
}

type PortraitConfig struct {
	Enabled    bool
	ServiceURL string
	S3Endpoint string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:     *port,
		Env:      env,
		LLM:      loadLLMConfig(),
		Database: DatabaseConfig{DSN: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Portrait: loadPortraitConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = "gemini"
	}
	return LLMConfig{
		Provider:     provider,
		APIKey:       strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		Model:        strings.TrimSpace(os.Getenv("LLM_MODEL")),
		ScoringModel: firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_SCORING_MODEL")), "openai/gpt-4o-mini"),
		MaxRetries:   envInt("LLM_MAX_RETRIES", 2),
		RPS:          envFloat("LLM_RPS", 0),
	}
}

func loadPortraitConfig(env string) PortraitConfig {
	serviceURL := strings.TrimSpace(os.Getenv("PORTRAIT_SERVICE_URL"))
	return PortraitConfig{
		Enabled:    serviceURL != "",
		ServiceURL: serviceURL,
		S3Endpoint: resolveS3Endpoint(env),
		Region:     firstNonEmpty(strings.TrimSpace(os.Getenv("PORTRAIT_S3_REGION")), "us-east-1"),
		AccessKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("PORTRAIT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("PORTRAIT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:     firstNonEmpty(strings.TrimSpace(os.Getenv("PORTRAIT_S3_BUCKET")), "caseforge-portraits"),
		UseSSL:     resolveS3UseSSL(env),
	}
}

func resolveS3Endpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("PORTRAIT_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("PORTRAIT_S3_ENDPOINT"))
}

func resolveS3UseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("PORTRAIT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
