package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-assistant-api/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	PublicBaseURL   string
	LogFile         string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DocumentStore   string
	DynamoDocTable  string
	DynamoChatTable string
	DynamoEndpoint  string
	DatabaseURL     string
	CacheBackend    string
	RedisURL        string
	RedisPrefix     string
	EventsQueueURL  string
	AIProvider      string
	LambdaAPIURL    string
	AITimeout       time.Duration
	AIRatePerSec    float64
	GeminiAPIKey    string
	GeminiModel     string
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxUploadBytes  int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	port := getEnv("PORT", "3000")

	cfg := Config{
		Port:            port,
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+strings.TrimPrefix(port, ":")), "/"),
		LogFile:         getEnv("LOG_FILE", ""),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("AWS_BUCKET_NAME", getEnv("S3_BUCKET", "")),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		DocumentStore:   normalizeDocumentStore(getEnv("DOCUMENT_STORE", "memory")),
		DynamoDocTable:  getEnv("DYNAMODB_TABLE_NAME", "pdf-documents"),
		DynamoChatTable: getEnv("DYNAMODB_CHAT_TABLE", "chat-history"),
		DynamoEndpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CacheBackend:    normalizeCacheBackend(getEnv("CACHE_BACKEND", "memory")),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		RedisPrefix:     getEnv("REDIS_PREFIX", "pdf-assistant:"),
		EventsQueueURL:  getEnv("EVENTS_SQS_QUEUE_URL", ""),
		AIProvider:      normalizeAIProvider(getEnv("AI_PROVIDER", "lambda")),
		LambdaAPIURL:    strings.TrimRight(getEnv("LAMBDA_API_URL", ""), "/"),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 5*time.Minute),
		AIRatePerSec:    getEnvFloat("AI_RATE_PER_SEC", 5),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-flash-latest"),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 30),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}

	if env == "production" && cfg.DocumentStore == "memory" {
		telemetry.Warn("config.memory_store_in_production", map[string]any{
			"document_store": cfg.DocumentStore,
		})
	}
	return cfg
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeDocumentStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dynamodb", "dynamo":
		return "dynamodb"
	case "postgres", "pg":
		return "postgres"
	default:
		return "memory"
	}
}

func normalizeCacheBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	case "none", "off", "disabled":
		return "none"
	default:
		return "memory"
	}
}

func normalizeAIProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini":
		return "gemini"
	case "none", "off":
		return "none"
	default:
		return "lambda"
	}
}
