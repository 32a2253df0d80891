package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.CoalesceWindow)
	assert.Equal(t, 10*time.Minute, cfg.KeepAliveInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	// Trailing slash is trimmed so URL joining stays predictable.
	assert.Equal(t, "https://proj.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestServiceConfigured(t *testing.T) {
	tests := []struct {
		name    string
		service string
		url     string
		key     string
		want    bool
	}{
		{"configured", "supabase", "https://proj.supabase.co", "key", true},
		{"missing url", "supabase", "", "key", false},
		{"missing key", "supabase", "https://proj.supabase.co", "", false},
		{"bad scheme", "supabase", "ftp://proj.supabase.co", "key", false},
		{"not a url", "supabase", "not a url", "key", false},
		{"unknown service", "dynamo", "https://proj.supabase.co", "key", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SupabaseURL: tt.url, SupabaseAnonKey: tt.key}
			assert.Equal(t, tt.want, cfg.ServiceConfigured(tt.service))
		})
	}
}
