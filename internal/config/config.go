package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"persuasive-dialogue-be/pkg/rag/evidence"
	"persuasive-dialogue-be/pkg/rag/trigger"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string `validate:"required,numeric"`
	Environment        string `validate:"oneof=development production test"`
	LogFilePath        string `validate:"required"`
	AuditLogFilePath   string `validate:"required"`
	CorsAllowedOrigins string
	NatsURL            string        `validate:"omitempty,url"`
	RedisURL           string        `validate:"omitempty,url"`
	SessionStore       string        `validate:"oneof=memory redis postgres"`
	SessionTTL         time.Duration `validate:"min=0"`
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string `validate:"oneof=ollama huggingface openai none"`
	LLMModel          string
	OllamaBaseURL     string `validate:"omitempty,url"`
	HuggingFaceAPIKey string
	OpenAIAPIKey      string
	OpenAIBaseURL     string        `validate:"omitempty,url"`
	ClassifierTimeout time.Duration `validate:"gt=0"`
	ClassifierTokens  int           `validate:"min=1,max=4096"`
}

type RetrievalConfig struct {
	BackendURL         string `validate:"required,url"`
	APIKey             string
	Timeout            time.Duration `validate:"gt=0"`
	TopK               int           `validate:"min=1,max=50"`
	SnippetSize        int           `validate:"min=512,max=4096"`
	MinSimilarityScore float64       `validate:"min=0,max=1"`
	WarnThreshold      float64       `validate:"min=0,max=1"`
	EnableScoreFilter  bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	defaults := evidence.DefaultConfig()

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       strings.ToLower(getEnv("SESSION_STORE", "memory")),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", trigger.DefaultTimeout),
			ClassifierTokens:  getEnvAsInt("CLASSIFIER_MAX_TOKENS", trigger.DefaultMaxTokens),
		},
		Retrieval: RetrievalConfig{
			BackendURL:         getEnv("RETRIEVAL_BACKEND_URL", "http://localhost:8000"),
			APIKey:             getEnv("RETRIEVAL_API_KEY", ""),
			Timeout:            getEnvAsDuration("RETRIEVAL_TIMEOUT", evidence.DefaultTimeout),
			TopK:               getEnvAsInt("RETRIEVAL_TOP_K", defaults.TopK),
			SnippetSize:        getEnvAsInt("RETRIEVAL_SNIPPET_SIZE", defaults.SnippetSize),
			MinSimilarityScore: getEnvAsFloat("RETRIEVAL_MIN_SIMILARITY_SCORE", defaults.MinSimilarityScore),
			WarnThreshold:      getEnvAsFloat("RETRIEVAL_WARN_THRESHOLD", defaults.WarnThreshold),
			EnableScoreFilter:  getEnvAsBool("RETRIEVAL_ENABLE_SCORE_FILTER", defaults.EnableScoreFilter),
		},
	}
}

// IsProduction reports whether the service runs with production logging
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// EvidenceConfig maps the retrieval section to the retriever's configuration
func (r RetrievalConfig) EvidenceConfig() evidence.Config {
	return evidence.Config{
		TopK:               r.TopK,
		SnippetSize:        r.SnippetSize,
		MinSimilarityScore: r.MinSimilarityScore,
		WarnThreshold:      r.WarnThreshold,
		EnableScoreFilter:  r.EnableScoreFilter,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("8s") or plain seconds ("8")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
