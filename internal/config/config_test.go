package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"DATABASE_URI", "HTTP_ADDR", "ROTATION_SCHEDULE", "ROTATION_MAX_ITERATIONS",
		"ROTATION_TRIGGER_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "DEFAULT_TIMEZONE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.RotationSchedule != "0 0 * * * *" {
		t.Errorf("expected hourly schedule, got %q", cfg.RotationSchedule)
	}
	if cfg.RotationMaxIterations != 10000 {
		t.Errorf("expected 10000 iterations, got %d", cfg.RotationMaxIterations)
	}
	if cfg.DefaultTimezone != "UTC" {
		t.Errorf("expected UTC, got %q", cfg.DefaultTimezone)
	}
	if err := cfg.RequireDatabase(); err == nil {
		t.Error("expected missing DATABASE_URI to be reported")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URI", "postgres://merzah@localhost/merzah")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ROTATION_SCHEDULE", "0 */15 * * * *")
	t.Setenv("ROTATION_MAX_ITERATIONS", "500")
	t.Setenv("ROTATION_TRIGGER_TOKEN", "s3cret")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Karachi")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RotationMaxIterations != 500 || cfg.TelegramChatID != -1001234 || cfg.RotationTriggerToken != "s3cret" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.RequireDatabase(); err != nil {
		t.Fatalf("require database: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{RotationSchedule: "0 0 * * * *", RotationMaxIterations: 10000, DefaultTimezone: "UTC"}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "descriptor schedule", modify: func(c *Config) { c.RotationSchedule = "@hourly" }},
		{name: "bad timezone", modify: func(c *Config) { c.DefaultTimezone = "Nowhere/City" }, wantErr: "DEFAULT_TIMEZONE"},
		{name: "bad schedule", modify: func(c *Config) { c.RotationSchedule = "every hour" }, wantErr: "ROTATION_SCHEDULE"},
		{name: "zero iterations", modify: func(c *Config) { c.RotationMaxIterations = 0 }, wantErr: "ROTATION_MAX_ITERATIONS"},
		{name: "token without chat", modify: func(c *Config) { c.TelegramToken = "123:abc" }, wantErr: "TELEGRAM_CHAT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
