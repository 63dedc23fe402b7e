package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/config"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "HTTP_TIMEOUT", "MAX_RETRIES",
	"INITIAL_BACKOFF", "MAX_CONCURRENCY", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"DATA_BACKEND", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_PUBLISHABLE_DEFAULT_KEY",
	"SUPABASE_SERVICE_ROLE_KEY", "DATABASE_URL", "DEFAULT_MONTHLY_CONTRIBUTION",
}

// clearEnv blanks every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.DataBackend != config.BackendSupabase {
		t.Errorf("expected supabase backend, got %s", cfg.DataBackend)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.DefaultMonthlyContribution.String() != "1000" {
		t.Errorf("expected default contribution 1000, got %s", cfg.DefaultMonthlyContribution)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "Postgres")
	t.Setenv("SUPABASE_URL", "https://fund.supabase.co/")
	t.Setenv("SUPABASE_PUBLISHABLE_DEFAULT_KEY", "pub-key")
	t.Setenv("DEFAULT_MONTHLY_CONTRIBUTION", "1250.50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := config.Load()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.DataBackend != config.BackendPostgres {
		t.Errorf("expected postgres backend, got %s", cfg.DataBackend)
	}
	if cfg.SupabaseURL != "https://fund.supabase.co" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.SupabaseURL)
	}
	if cfg.SupabaseAnonKey != "pub-key" {
		t.Errorf("expected publishable key alias, got %q", cfg.SupabaseAnonKey)
	}
	if cfg.DefaultMonthlyContribution.String() != "1250.5" {
		t.Errorf("expected 1250.5, got %s", cfg.DefaultMonthlyContribution)
	}
	if strings.Join(cfg.CORSAllowedOrigins, "|") != "https://a.example|https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected fallback retries 3, got %d", cfg.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name: "supabase ok",
			env:  map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_ANON_KEY": "k"},
		},
		{
			name: "supabase service key only",
			env:  map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_SERVICE_ROLE_KEY": "k"},
		},
		{
			name:    "supabase missing url",
			env:     map[string]string{"SUPABASE_ANON_KEY": "k"},
			wantErr: "SUPABASE_URL",
		},
		{
			name:    "supabase missing keys",
			env:     map[string]string{"SUPABASE_URL": "https://x.supabase.co"},
			wantErr: "SUPABASE_ANON_KEY",
		},
		{
			name: "postgres ok",
			env:  map[string]string{"DATA_BACKEND": "postgres", "DATABASE_URL": "postgres://localhost/fund"},
		},
		{
			name:    "postgres missing url",
			env:     map[string]string{"DATA_BACKEND": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DATA_BACKEND": "sheets"},
			wantErr: "unknown DATA_BACKEND",
		},
		{
			name: "zero contribution means everyone is paid",
			env: map[string]string{
				"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_ANON_KEY": "k",
				"DEFAULT_MONTHLY_CONTRIBUTION": "0",
			},
		},
		{
			name: "negative contribution",
			env: map[string]string{
				"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_ANON_KEY": "k",
				"DEFAULT_MONTHLY_CONTRIBUTION": "-5",
			},
			wantErr: "DEFAULT_MONTHLY_CONTRIBUTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := config.Load().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")
	// godotenv treats a key set to "" as present, so remove it entirely.
	os.Unsetenv("DATABASE_URL")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# fund\nLOG_LEVEL=debug\nDATABASE_URL=\"postgres://localhost/fund\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "warn" {
		t.Errorf("expected existing env to win, got %s", got)
	}
	if got := os.Getenv("DATABASE_URL"); got != "postgres://localhost/fund" {
		t.Errorf("expected DATABASE_URL from file, got %s", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}
