package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	DatabaseURI           string `env:"DATABASE_URI"`
	HTTPAddr              string `env:"HTTP_ADDR" envDefault:":8080"`
	RotationSchedule      string `env:"ROTATION_SCHEDULE" envDefault:"0 0 * * * *"` // Seconds field first
	RotationMaxIterations int    `env:"ROTATION_MAX_ITERATIONS" envDefault:"10000"`
	RotationTriggerToken  string `env:"ROTATION_TRIGGER_TOKEN"`
	TelegramToken         string `env:"TELEGRAM_TOKEN"`
	TelegramChatID        int64  `env:"TELEGRAM_CHAT_ID"`
	DefaultTimezone       string `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server would only trip over at runtime.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.RotationSchedule); err != nil {
		return fmt.Errorf("ROTATION_SCHEDULE: %w", err)
	}
	if c.RotationMaxIterations <= 0 {
		return fmt.Errorf("ROTATION_MAX_ITERATIONS must be positive, got %d", c.RotationMaxIterations)
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// RequireDatabase is checked by commands that cannot run in memory.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	return nil
}
