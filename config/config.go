// Package config loads application configuration from a YAML file with
// struct-tag defaults, environment variable overrides and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	Server struct {
		Addr            string        `yaml:"addr" default:":8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"5s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Addr    string `yaml:"addr" default:":9090"`
	} `yaml:"metrics"`

	Monitor struct {
		Assets        []string      `yaml:"assets" validate:"min=1"`
		Timeframe     string        `yaml:"timeframe" default:"1m" validate:"oneof=1m 90s 3m 5m"`
		WindowLimit   int           `yaml:"window_limit" default:"100" validate:"gt=0"`
		SeedHistory   int           `yaml:"seed_history" validate:"gte=0"` // 0 means window_limit
		PivotInterval time.Duration `yaml:"pivot_interval" default:"90s" validate:"gt=0"`
		FeedSeed      int64         `yaml:"feed_seed"`
	} `yaml:"monitor"`

	Indicators struct {
		FastPeriod   int `yaml:"fast_period" default:"10" validate:"gt=0"`
		MediumPeriod int `yaml:"medium_period" default:"20" validate:"gt=0"`
		SlowPeriod   int `yaml:"slow_period" default:"50" validate:"gt=0"`
		SRLookback   int `yaml:"sr_lookback" default:"20" validate:"gt=0"`
	} `yaml:"indicators"`

	Strategy struct {
		BodyLookback     int     `yaml:"body_lookback" default:"3" validate:"gt=0"`
		PullbackLookback int     `yaml:"pullback_lookback" default:"2" validate:"gt=0"`
		VolumeLookback   int     `yaml:"volume_lookback" default:"10" validate:"gt=0"`
		BodyFactor       float64 `yaml:"body_factor" default:"1.5" validate:"gt=0"`
		VolumeFactor     float64 `yaml:"volume_factor" default:"1.2" validate:"gt=0"`
		TouchTolerance   float64 `yaml:"touch_tolerance" default:"0.0005" validate:"gt=0"`
		EarlyPullback    bool    `yaml:"early_pullback"`
	} `yaml:"strategy"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"data/alerts.db"`
	} `yaml:"journal"`

	Webhook struct {
		URL string `yaml:"url" validate:"omitempty,url"`
	} `yaml:"webhook"`
}

// TimeframeOption pairs a user-facing timeframe label with its duration.
type TimeframeOption struct {
	Label    string
	Duration time.Duration
}

var timeframes = []TimeframeOption{
	{"1m", time.Minute},
	{"90s", 90 * time.Second},
	{"3m", 3 * time.Minute},
	{"5m", 5 * time.Minute},
}

// Timeframes returns the selectable timeframe set in display order.
func Timeframes() []TimeframeOption {
	out := make([]TimeframeOption, len(timeframes))
	copy(out, timeframes)
	return out
}

// ParseTimeframe maps a label like "3m" to its duration.
func ParseTimeframe(label string) (time.Duration, error) {
	for _, o := range timeframes {
		if o.Label == label {
			return o.Duration, nil
		}
	}
	return 0, fmt.Errorf("unknown timeframe %q", label)
}

// Load reads config from a YAML file (missing file is fine, defaults
// apply), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	applyEnv(cfg)

	if len(cfg.Monitor.Assets) == 0 {
		cfg.Monitor.Assets = []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA"}
	}
	if _, err := ParseTimeframe(cfg.Monitor.Timeframe); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("ASSETS"); v != "" {
		parts := strings.Split(v, ",")
		assets := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				assets = append(assets, p)
			}
		}
		cfg.Monitor.Assets = assets
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		cfg.Monitor.Timeframe = v
	}
	if v := os.Getenv("FEED_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Monitor.FeedSeed = n
		}
	}
	if v := os.Getenv("EARLY_PULLBACK"); v != "" {
		cfg.Strategy.EarlyPullback = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
}
