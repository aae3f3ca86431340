package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SessionSecret string        // Required: secret for sealing session cookies (random per boot if unset)
	SessionTTL    time.Duration // Optional: session cookie lifetime (default: 7 days)
	SecureCookies bool          // Optional: set the Secure attribute on cookies (default: false)

	RPID          string        // Optional: WebAuthn relying party ID (default: localhost)
	RPOrigins     []string      // Optional: allowed WebAuthn origins (default: http://localhost:8080)
	RPDisplayName string        // Optional: relying party display name (default: Athena)
	ChallengeTTL  time.Duration // Optional: how long a pending ceremony stays valid (default: 5m)

	AIBaseURL string        // Optional: OpenAI-compatible API base URL
	AIAPIKey  string        // Optional: API key; AI features degrade to fallbacks when unset
	AIModel   string        // Optional: chat model name (default: gpt-4o-mini)
	AITimeout time.Duration // Optional: per-call timeout for AI requests (default: 30s)

	ChatTTL        time.Duration // Optional: idle lifetime of an in-memory chat conversation (default: 30m)
	ChatMaxEntries int           // Optional: max cached chat conversations (default: 1000)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./athena.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 10m)
}

func LoadConfig() Config {
	return Config{
		SessionSecret: os.Getenv("ATHENA_SESSION_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("ATHENA_SESSION_TTL", 7*24*time.Hour),
		SecureCookies: getEnvBoolOrDefault("ATHENA_SECURE_COOKIES", false),

		RPID:          getEnvOrDefault("ATHENA_RP_ID", "localhost"),
		RPOrigins:     getEnvListOrDefault("ATHENA_RP_ORIGINS", []string{"http://localhost:8080"}),
		RPDisplayName: getEnvOrDefault("ATHENA_RP_DISPLAY_NAME", "Athena"),
		ChallengeTTL:  getEnvDurationOrDefault("ATHENA_CHALLENGE_TTL", 5*time.Minute),

		AIBaseURL: os.Getenv("ATHENA_AI_BASE_URL"),
		AIAPIKey:  os.Getenv("ATHENA_AI_API_KEY"),
		AIModel:   os.Getenv("ATHENA_AI_MODEL"),
		AITimeout: getEnvDurationOrDefault("ATHENA_AI_TIMEOUT", 30*time.Second),

		ChatTTL:        getEnvDurationOrDefault("ATHENA_CHAT_TTL", 30*time.Minute),
		ChatMaxEntries: getEnvIntOrDefault("ATHENA_CHAT_MAX_ENTRIES", 1000),

		DatabaseFile:         getEnvOrDefault("ATHENA_DATABASE_FILE", "athena.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
