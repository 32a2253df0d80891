package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Hosted backend (Supabase project)
	SupabaseURL     string
	SupabaseAnonKey string

	// Optional shared result cache. When RedisAddr is empty the
	// in-process cache is used instead.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Facade tuning
	CacheTTL       time.Duration
	CoalesceWindow time.Duration

	// Keep-alive ping so the free-tier backend is not paused
	KeepAliveInterval time.Duration

	// Emergency staff notification
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	EmergencyStaffEmail string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CacheTTL:       getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		CoalesceWindow: getEnvAsDuration("COALESCE_WINDOW", 300*time.Millisecond),

		KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 10*time.Minute),

		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "MedAssist"),
		EmergencyStaffEmail: getEnv("EMERGENCY_STAFF_EMAIL", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// ServiceConfigured reports whether the named external service has the
// configuration it needs to be reachable. "supabase" is the only service
// used here; any other name reports false.
func (c *Config) ServiceConfigured(name string) bool {
	if name != "supabase" {
		return false
	}
	if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
		return false
	}
	u, err := url.Parse(c.SupabaseURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
