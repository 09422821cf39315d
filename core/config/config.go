package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mindsukoon.app/companion/core/db"
)

type Config struct {
	OTel        OTelConfig
	LLM         LLMConfig
	Companion   CompanionConfig
	Search      SearchConfig
	Knowledge   KnowledgeConfig
	Redis       RedisConfig
	Env         string
	Port        string
	AdminAPIKey string
	CORSOrigins []string
	DB          db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	BaseURL  string // Optional: for custom endpoints
	Model    string
}

type CompanionConfig struct {
	// ToolsEnabled selects the two-phase tool-calling path; when false the
	// single-call simple path is used.
	ToolsEnabled       bool
	KnowledgeResults   int
	SessionIdleTimeout time.Duration
	TurnTimeout        time.Duration
}

type SearchConfig struct {
	TavilyAPIKey string
	TavilyURL    string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

type KnowledgeConfig struct {
	TypesenseURL    string
	TypesenseAPIKey string
	Collection      string
	HuggingFaceURL  string
}

type RedisConfig struct {
	URL          string
	SafetyStream string
	Group        string
	DLQStream    string
	Consumer     string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the safety event worker
//   - .env.cli for the companion command
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("COMPANION_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:         getEnv("COMPANION_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "companion"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "openai"),
			APIKey:   getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:  getEnv("LLM_BASE_URL", ""),
			Model:    getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		},
		Companion: CompanionConfig{
			ToolsEnabled:       getEnvBool("COMPANION_TOOLS_ENABLED", true),
			KnowledgeResults:   getEnvInt("COMPANION_KNOWLEDGE_RESULTS", 3),
			SessionIdleTimeout: getEnvDuration("COMPANION_SESSION_IDLE_TIMEOUT", 30*time.Minute),
			TurnTimeout:        getEnvDuration("COMPANION_TURN_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),
			TavilyURL:    getEnv("TAVILY_URL", "https://api.tavily.com"),
			Timeout:      getEnvDuration("TAVILY_TIMEOUT", 20*time.Second),
			CacheTTL:     getEnvDuration("SEARCH_CACHE_TTL", time.Hour),
		},
		Knowledge: KnowledgeConfig{
			TypesenseURL:    getEnv("TYPESENSE_URL", ""),
			TypesenseAPIKey: getEnv("TYPESENSE_API_KEY", ""),
			Collection:      getEnv("TYPESENSE_COLLECTION", "mental_health_knowledge"),
			HuggingFaceURL:  getEnv("HF_DATASETS_URL", "https://datasets-server.huggingface.co"),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			SafetyStream: getEnv("REDIS_SAFETY_STREAM", "safety_events"),
			Group:        getEnv("REDIS_CONSUMER_GROUP", "safety_group"),
			DLQStream:    getEnv("REDIS_DLQ_STREAM", "safety_events_dlq"),
			Consumer:     getEnv("REDIS_CONSUMER_NAME", string(serviceType)),
		},
	}

	if serviceType == ServiceTypeWorker {
		if !cfg.Redis.Enabled() {
			return Config{}, fmt.Errorf("REDIS_URL is required")
		}
		if !cfg.DB.Enabled() {
			return Config{}, fmt.Errorf("DATABASE_URL is required")
		}
		return cfg, nil
	}

	if !cfg.LLM.Enabled() {
		return Config{}, fmt.Errorf("LLM_API_KEY is required and LLM_PROVIDER must be openai or anthropic")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c SearchConfig) Enabled() bool {
	return c.TavilyAPIKey != ""
}

func (c KnowledgeConfig) Enabled() bool {
	return c.TypesenseURL != "" && c.TypesenseAPIKey != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
