package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseFile  string // Optional: path to SQLite database file (default: ./specter.db)
	MasterKeyPath string // Optional: file holding the at-rest sealing key
	AdminAPIKey   string // Optional: sk_<ulid>_<secret> for the bootstrap operator

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	SchedulerInterval  time.Duration // Freshness poll interval (default: 5m)
	SchedulerThreshold time.Duration // Refresh tokens expiring within this window (default: 10m)
	SchedulerAutostart bool          // Start the scheduler with the process (default: false)

	EntraAuthority string // Token endpoint authority (default: login.microsoftonline.com)
	EntraTenant    string // Tenant segment (default: common)
	BrokerClientID string // Client the resolver redeems as (default: Microsoft Office)

	OutboundTimeout   time.Duration // Per-call timeout for identity and resource APIs (default: 30s)
	OutboundRateLimit float64       // Token endpoint calls per second, 0 disables (default: 5)
	OutboundProxy     string        // Optional: socks5:// or http(s):// proxy for all outbound calls

	CacheTTL     time.Duration // Upstream response cache lifetime (default: 5m)
	GraphBaseURL string        // Graph endpoint (default: https://graph.microsoft.com)
}

// masterKeyEnv is read by cryptox.LoadSealer when no key file is configured.
const masterKeyEnv = "SPECTER_MASTER_KEY"

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("SPECTER_DATABASE_FILE", "specter.db"),
		MasterKeyPath: os.Getenv("SPECTER_MASTER_KEY_PATH"),
		AdminAPIKey:   os.Getenv("SPECTER_ADMIN_API_KEY"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		SchedulerInterval:  getEnvDurationOrDefault("SCHEDULER_POLL_INTERVAL", 5*time.Minute),
		SchedulerThreshold: getEnvDurationOrDefault("SCHEDULER_EXPIRY_THRESHOLD", 10*time.Minute),
		SchedulerAutostart: getEnvBoolOrDefault("SCHEDULER_AUTOSTART", false),

		EntraAuthority: os.Getenv("ENTRA_AUTHORITY"),
		EntraTenant:    os.Getenv("ENTRA_TENANT"),
		BrokerClientID: os.Getenv("ENTRA_BROKER_CLIENT_ID"),

		OutboundTimeout:   getEnvDurationOrDefault("OUTBOUND_TIMEOUT", 30*time.Second),
		OutboundRateLimit: getEnvFloatOrDefault("OUTBOUND_RATE_LIMIT", 5),
		OutboundProxy:     os.Getenv("OUTBOUND_SOCKS5_PROXY"),

		CacheTTL:     getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		GraphBaseURL: getEnvOrDefault("GRAPH_BASE_URL", "https://graph.microsoft.com"),
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
		return f
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
