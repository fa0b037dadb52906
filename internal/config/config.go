// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// OAuthClient holds one identity provider's client registration.
type OAuthClient struct {
	ID     string
	Secret string
}

// Configured reports whether the provider has both an id and a secret.
func (c OAuthClient) Configured() bool {
	return c.ID != "" && c.Secret != ""
}

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreBackend selects the document store. Defaults to "memory".
	StoreBackend string

	// DatabaseURL is the Postgres connection string. Required when
	// StoreBackend is "postgres".
	DatabaseURL string

	SQLitePath    string
	RedisURL      string
	MongoURI      string
	MongoDatabase string

	// SyncRemoteURL is the base URL of the server that receives queued
	// operations. Empty disables the background drain.
	SyncRemoteURL string
	SyncInterval  time.Duration

	// SessionSecret signs session tokens. Required once any OAuth provider
	// is configured.
	SessionSecret string
	SessionTTL    time.Duration

	// OAuthRedirectBaseURL is prefixed to /api/auth/{provider}/callback.
	OAuthRedirectBaseURL string
	Google               OAuthClient
	GitHub               OAuthClient
	Microsoft            OAuthClient

	// DashboardURL is where a completed sign-in lands.
	DashboardURL string

	MaxBodyBytes      int64
	AuthRatePerMinute int
}

// AnyOAuth reports whether at least one identity provider is configured.
func (c Config) AnyOAuth() bool {
	return c.Google.Configured() || c.GitHub.Configured() || c.Microsoft.Configured()
}

// LoadDotEnv reads KEY=VALUE files into the process environment. Variables
// already set are left alone and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config.LoadDotEnv: %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set or any
// values that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getEnv("SQLITE_PATH", "crimsoncollab.db"),
		RedisURL:             os.Getenv("REDIS_URL"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "crimsoncollab"),
		SyncRemoteURL:        os.Getenv("SYNC_REMOTE_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		OAuthRedirectBaseURL: strings.TrimRight(getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"), "/"),
		Google:               oauthClient("GOOGLE"),
		GitHub:               oauthClient("GITHUB"),
		Microsoft:            oauthClient("MICROSOFT"),
		DashboardURL:         getEnv("DASHBOARD_URL", "/dashboard"),
	}

	var missing, invalid []string

	var err error
	if cfg.SyncInterval, err = parseDuration("SYNC_INTERVAL", "30s"); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "24h"); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.MaxBodyBytes, err = parsePositiveInt("MAX_BODY_BYTES", 1<<20); err != nil {
		invalid = append(invalid, err.Error())
	}
	rate, err := parsePositiveInt("AUTH_RATE_PER_MINUTE", 30)
	if err != nil {
		invalid = append(invalid, err.Error())
	}
	cfg.AuthRatePerMinute = int(rate)

	switch cfg.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend))
	}

	if cfg.AnyOAuth() && cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; "))
	}

	return cfg, nil
}

func oauthClient(provider string) OAuthClient {
	return OAuthClient{
		ID:     os.Getenv("OAUTH_" + provider + "_CLIENT_ID"),
		Secret: os.Getenv("OAUTH_" + provider + "_CLIENT_SECRET"),
	}
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return n, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
