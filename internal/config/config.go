package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ginger-beaver/OutlineBot/internal/tlspin"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Telegram struct {
	Token       string `env:"TELEGRAM_TOKEN" env-required:"true" env-description:"bot API token"`
	AdminID     int64  `env:"ADMIN_ID" env-required:"true" env-description:"Telegram user id allowed to issue commands"`
	PollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT" env-default:"30" env-description:"long polling timeout, seconds"`
	Debug       bool   `env:"TELEGRAM_DEBUG" env-default:"false" env-description:"log bot API traffic"`
}

type Outline struct {
	APIURL      string        `env:"OUTLINE_API_URL" env-required:"true" env-description:"management API URL including the secret prefix"`
	Fingerprint string        `env:"FINGERPRINT" env-required:"true" env-description:"SHA-256 fingerprint of the server certificate, hex"`
	Timeout     time.Duration `env:"OUTLINE_TIMEOUT" env-default:"10s" env-description:"per request timeout"`
	KeyURLTag   string        `env:"KEY_URL_TAG" env-default:"GingerBeaverVpn" env-description:"fragment shown in place of ?outline=1"`
}

type Logging struct {
	Level  string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	Format string `env:"LOG_FORMAT" env-default:"console" env-description:"console or json"`
}

type Config struct {
	Telegram Telegram
	Outline  Outline
	Logging  Logging

	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" env-default:"30s" env-description:"deadline for one command"`
	OpsAddr        string        `env:"OPS_ADDR" env-default:":9090" env-description:"health and metrics listen address, empty disables"`
	StatsSchedule  string        `env:"STATS_REPORT_SCHEDULE" env-description:"cron spec with seconds for the usage report, empty disables"`
}

// Load reads envFile into the environment if it exists, then builds the
// configuration from environment variables. Variables already set win over
// the file.
func Load(envFile string) (Config, error) {
	var cfg Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot: fingerprint encoding, URL shape,
// cron syntax.
func (c Config) Validate() error {
	var result *multierror.Error

	if _, err := tlspin.ParseFingerprint(c.Outline.Fingerprint); err != nil {
		result = multierror.Append(result, fmt.Errorf("FINGERPRINT: %w", err))
	}

	if u, err := url.Parse(c.Outline.APIURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("OUTLINE_API_URL: %w", err))
	} else if u.Scheme != "https" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("OUTLINE_API_URL: want an absolute https URL, got %q", c.Outline.APIURL))
	}

	if c.Telegram.AdminID <= 0 {
		result = multierror.Append(result, fmt.Errorf("ADMIN_ID: must be a positive user id"))
	}
	if c.Telegram.PollTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("TELEGRAM_POLL_TIMEOUT: must not be negative"))
	}
	if c.Outline.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("OUTLINE_TIMEOUT: must be positive"))
	}
	if c.CommandTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("COMMAND_TIMEOUT: must be positive"))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT: unknown format %q", c.Logging.Format))
	}

	if c.StatsSchedule != "" {
		if _, err := cron.NewParser(CronFields).Parse(c.StatsSchedule); err != nil {
			result = multierror.Append(result, fmt.Errorf("STATS_REPORT_SCHEDULE: %w", err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// CronFields is the schedule syntax: six fields, seconds first.
const CronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// Usage describes the environment variables.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
