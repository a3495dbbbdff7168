package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Placeholder endpoint values shipped in .env.example. Validate flags any
// endpoint still carrying one of these so misconfiguration is caught at
// startup instead of on the first failed request.
const (
	PlaceholderChatEndpoint      = "https://your-api-endpoint.example.com/chat"
	PlaceholderAuthEndpoint      = "https://your-auth-endpoint.example.com/auth"
	PlaceholderAnalyticsEndpoint = "https://your-api-endpoint.example.com/analytics"
	PlaceholderUpstreamURL       = "https://your-upstream.example.com"
)

type Config struct {
	// Client-facing endpoints.
	ChatEndpoint      string
	AuthEndpoint      string
	AnalyticsEndpoint string

	// Upstream provider selection and credentials.
	UpstreamProvider string // gateway | lambda | lambda-proxy | gemini
	UpstreamURL      string
	UpstreamAPIKey   string
	UpstreamRegion   string
	UpstreamModel    string
	GeminiAPIKey     string

	// Edge server.
	JWTSecret   string
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	// Local state files (the browser-storage analogs).
	SessionFile       string
	SessionStorageKey string
	ConversationIDKey string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		ChatEndpoint:      getEnv("CHAT_ENDPOINT", PlaceholderChatEndpoint),
		AuthEndpoint:      getEnv("AUTH_ENDPOINT", PlaceholderAuthEndpoint),
		AnalyticsEndpoint: getEnv("ANALYTICS_ENDPOINT", PlaceholderAnalyticsEndpoint),

		UpstreamProvider: getEnv("UPSTREAM_PROVIDER", "gateway"),
		UpstreamURL:      getEnv("UPSTREAM_URL", PlaceholderUpstreamURL),
		UpstreamAPIKey:   getEnv("UPSTREAM_API_KEY", ""),
		UpstreamRegion:   getEnv("UPSTREAM_REGION", "eu-west-1"),
		UpstreamModel:    getEnv("UPSTREAM_MODEL", "mistral-large-latest"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		DatabaseURL: getEnv("DATABASE_URL", "nexus_answers.db"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		SessionFile:       getEnv("SESSION_FILE", defaultSessionFile()),
		SessionStorageKey: getEnv("SESSION_STORAGE_KEY", "nexus_auth_session"),
		ConversationIDKey: getEnv("CONVERSATION_ID_KEY", "nexus_session_id"),
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	return cfg
}

// Validate returns the names of endpoints still set to their placeholder
// defaults. An empty slice means the configuration is usable.
func (c *Config) Validate() []string {
	var unset []string
	if c.ChatEndpoint == "" || c.ChatEndpoint == PlaceholderChatEndpoint {
		unset = append(unset, "CHAT_ENDPOINT")
	}
	if c.AuthEndpoint == "" || c.AuthEndpoint == PlaceholderAuthEndpoint {
		unset = append(unset, "AUTH_ENDPOINT")
	}
	if c.AnalyticsEndpoint == "" || c.AnalyticsEndpoint == PlaceholderAnalyticsEndpoint {
		unset = append(unset, "ANALYTICS_ENDPOINT")
	}
	return unset
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nexus_session.json"
	}
	return filepath.Join(home, ".nexus_session.json")
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
