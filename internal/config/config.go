package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	DBPath             string        `envconfig:"DB_PATH" default:"./data/elo.db"`
	HTTPAddr           string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	LogPath            string        `envconfig:"LOG_PATH" default:""`      // empty = stdout only
	LogMaxSizeMB       int           `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	LogMaxBackups      int           `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAgeDays      int           `envconfig:"LOG_MAX_AGE_DAYS" default:"7"`
	SweepInterval      time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`
	ReviewWebhookURL   string        `envconfig:"REVIEW_WEBHOOK_URL" default:""` // empty = notifications disabled
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
