package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port       int           `yaml:"port"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// BillingConfig carries deployment-level billing policy. These used to
// be compiled-in constants; keeping them here lets policy vary per
// deployment without a rebuild.
type BillingConfig struct {
	LatencyDays      int           `yaml:"latency_days"`       // dormancy grace window
	ForbiddenDayFrom int           `yaml:"forbidden_day_from"` // 29..31 never anchor a period
	RenewalInterval  time.Duration `yaml:"renewal_interval"`   // payday worker tick
	ReminderInterval time.Duration `yaml:"reminder_interval"`  // notification worker tick
	LockTTL          time.Duration `yaml:"lock_ttl"`           // per-service mutex TTL
}

type TelegramConfig struct {
	Token string `yaml:"token"` // empty disables notifications
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Billing  BillingConfig  `yaml:"billing"`
	Telegram TelegramConfig `yaml:"telegram"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.SessionTTL <= 0 {
		cfg.HTTP.SessionTTL = 30 * time.Minute
	}
	if cfg.Billing.LatencyDays <= 0 {
		cfg.Billing.LatencyDays = 10
	}
	if cfg.Billing.ForbiddenDayFrom <= 0 {
		cfg.Billing.ForbiddenDayFrom = 29
	}
	if cfg.Billing.RenewalInterval <= 0 {
		cfg.Billing.RenewalInterval = time.Hour
	}
	if cfg.Billing.ReminderInterval <= 0 {
		cfg.Billing.ReminderInterval = 24 * time.Hour
	}
	if cfg.Billing.LockTTL <= 0 {
		cfg.Billing.LockTTL = 10 * time.Second
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.HTTP.JWTSecret == "" && !dev {
		return nil, errors.New("http.jwt_secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
