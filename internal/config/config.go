package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config stores the runtime configuration of a season harvest.
type Config struct {
	Season    int `validate:"required,gte=2007,lte=2100"`
	Shifts    bool
	BatchSize int    `validate:"gte=1"`
	OutputDir string `validate:"required"`

	DatabaseDSN   string
	RedisURL      string        `validate:"omitempty,url"`
	CacheTTL      time.Duration `validate:"gt=0"`
	PublishStream string

	HTTPTimeout   time.Duration `validate:"gt=0"`
	NHLStatsBase  string        `validate:"omitempty,url"`
	NHLReportBase string        `validate:"omitempty,url"`
	NHLShiftsBase string        `validate:"omitempty,url"`
	ESPNAPIBase   string        `validate:"omitempty,url"`
	ESPNFeedBase  string        `validate:"omitempty,url"`

	S3Bucket          string
	S3Prefix          string
	S3Region          string `validate:"required_with=S3Bucket"`
	S3Endpoint        string `validate:"omitempty,url"`
	S3AccessKeyID     string `validate:"required_with=S3SecretAccessKey"`
	S3SecretAccessKey string `validate:"required_with=S3AccessKeyID"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=console json"`
}

// Load reads the configuration from the environment. Files named in
// envFiles are loaded first when they exist, without overriding variables
// already set; with no names, ".env" is tried. Load does not validate so
// that command line flags can still fill in required values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg Config
	var err error

	if cfg.Season, err = getEnvAsInt("SEASON", 0); err != nil {
		return Config{}, errors.Wrap(err, "parse SEASON")
	}
	if cfg.Shifts, err = strconv.ParseBool(getEnv("SCRAPE_SHIFTS", "false")); err != nil {
		return Config{}, errors.Wrap(err, "parse SCRAPE_SHIFTS")
	}
	if cfg.BatchSize, err = getEnvAsInt("BATCH_SIZE", 10); err != nil {
		return Config{}, errors.Wrap(err, "parse BATCH_SIZE")
	}
	cfg.OutputDir = getEnv("OUTPUT_DIR", ".")

	cfg.DatabaseDSN = strings.TrimSpace(getEnv("DATABASE_DSN", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "168h")); err != nil {
		return Config{}, errors.Wrap(err, "parse CACHE_TTL")
	}
	cfg.PublishStream = getEnv("PUBLISH_STREAM", "")

	if cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s")); err != nil {
		return Config{}, errors.Wrap(err, "parse HTTP_TIMEOUT")
	}
	cfg.NHLStatsBase = getEnv("NHL_STATS_BASE", "")
	cfg.NHLReportBase = getEnv("NHL_REPORT_BASE", "")
	cfg.NHLShiftsBase = getEnv("NHL_SHIFTS_BASE", "")
	cfg.ESPNAPIBase = getEnv("ESPN_API_BASE", "")
	cfg.ESPNFeedBase = getEnv("ESPN_FEED_BASE", "")

	cfg.S3Bucket = strings.TrimSpace(getEnv("S3_BUCKET", ""))
	cfg.S3Prefix = getEnv("S3_PREFIX", "")
	cfg.S3Region = getEnv("S3_REGION", "auto")
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "console"))

	return cfg, nil
}

// Validate checks the configuration once every override has been applied.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// S3Enabled reports whether snapshots are also uploaded to object storage.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}
