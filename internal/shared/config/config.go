package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	BackendBaseURL string
	BackendTimeout time.Duration

	DeliveryMode       string
	ArtifactStoreType  string
	ArtifactDir        string
	ArtifactUniqueKeys bool
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string

	DatabaseURL string
	JWTSecret   string
	NATSURL     string

	TailorDedupe bool
	TailorRate   float64
	TailorBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if env == "production" && jwtSecret == "" {
		log.Printf("JWT_SECRET is not set; bearer tokens will not be signature-checked")
	}

	return Config{
		Port:               getEnv("PORT", "3000"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:                env,
		BackendBaseURL:     strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8000"), "/"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 60*time.Second),
		DeliveryMode:       normalizeDeliveryMode(getEnv("DELIVERY_MODE", "store")),
		ArtifactStoreType:  normalizeStoreType(getEnv("ARTIFACT_STORE", "local")),
		ArtifactDir:        getEnv("ARTIFACT_DIR", "public/downloads"),
		ArtifactUniqueKeys: getBool("ARTIFACT_UNIQUE_KEYS", false),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          jwtSecret,
		NATSURL:            getEnv("NATS_URL", ""),
		TailorDedupe:       getBool("TAILOR_DEDUPE", false),
		TailorRate:         getFloat("TAILOR_RATE", 0.2),
		TailorBurst:        getInt("TAILOR_BURST", 3),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q", key, raw)
		return def
	}
	return val
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q", key, raw)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float %q", key, raw)
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

func normalizeDeliveryMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "stream", "streaming":
		return "stream"
	default:
		return "store"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "memory", "mem":
		return "memory"
	default:
		return "local"
	}
}
