package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string
	JWTSecret       string
	TokenTTL        time.Duration
	EngineURL       string
	EngineTimeout   time.Duration
	SpoolDir        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))

	if env == "production" {
		if dbURL == "" {
			log.Printf("DATABASE_URL is required in production")
		}
		if secret == "" {
			log.Printf("JWT_SECRET is required in production")
		}
	}
	// The placeholder secret exists for dev convenience only; outside
	// dev-like envs an empty secret stays empty and bootstrap refuses to
	// start, so production can never sign tokens with a known value.
	if secret == "" && isDevLike(env) {
		secret = "dev-secret"
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		Env:             env,
		JWTSecret:       secret,
		TokenTTL:        getEnvDuration("TOKEN_TTL", time.Hour),
		EngineURL:       strings.TrimRight(getEnv("ENGINE_URL", "http://localhost:5001"), "/"),
		EngineTimeout:   getEnvDuration("ENGINE_TIMEOUT", 60*time.Second),
		SpoolDir:        getEnv("UPLOAD_SPOOL_DIR", "./data/spool"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config env %s invalid duration %q, using default %s", key, raw, def)
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

func isDevLike(env string) bool {
	return env == "dev" || env == "local"
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
