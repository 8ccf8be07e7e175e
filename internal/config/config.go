// Package config loads agent settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"
)

// Config holds every agent setting. Names match the variables of the .env file.
type Config struct {
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"data/problems.db"`
	DailyCount   int           `env:"DAILY_PROBLEMS_COUNT" envDefault:"2"`
	SendTime     string        `env:"DAILY_SEND_TIME" envDefault:"07:00"`
	Timezone     string        `env:"REVISION_TIMEZONE" envDefault:"Local"`
	RunTimeout   time.Duration `env:"RUN_TIMEOUT" envDefault:"5m"`
	SyncOnRun    bool          `env:"SYNC_ON_RUN" envDefault:"true"`

	EmailTransport string        `env:"EMAIL_TRANSPORT" envDefault:"smtp"`
	EmailHost      string        `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
	EmailPort      int           `env:"EMAIL_PORT" envDefault:"587"`
	EmailUser      string        `env:"EMAIL_USER"`
	EmailPass      string        `env:"EMAIL_PASS"`
	Recipient      string        `env:"RECIPIENT_EMAIL"`
	EmailTimeout   time.Duration `env:"EMAIL_TIMEOUT" envDefault:"30s"`

	SendGridAPIKey     string `env:"SENDGRID_API_KEY"`
	SendGridBaseURL    string `env:"SENDGRID_BASE_URL" envDefault:"https://api.sendgrid.com"`
	SendGridMaxRetries int    `env:"SENDGRID_MAX_RETRIES" envDefault:"4"`

	LeetCodeUsername   string        `env:"LEETCODE_USERNAME"`
	LeetCodeAPIBase    string        `env:"LEETCODE_API_BASE" envDefault:"https://alfa-leetcode-api.onrender.com"`
	LeetCodeGraphQLURL string        `env:"LEETCODE_GRAPHQL_URL" envDefault:"https://leetcode.com/graphql"`
	LeetCodeSession    string        `env:"LEETCODE_SESSION"`
	CSRFToken          string        `env:"CSRF_TOKEN"`
	FetchLimit         int           `env:"FETCH_LIMIT" envDefault:"20"`
	FetchTimeout       time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	LogMode string `env:"LOG_MODE" envDefault:"dev"`
	LogFile string `env:"LOG_FILE" envDefault:"revision_agent.log"`
}

// Load reads dotenvPath (if it exists) into the process environment without
// overriding variables that are already set, then parses Config.
func Load(dotenvPath string) (Config, error) {
	if strings.TrimSpace(dotenvPath) != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("DATABASE_PATH is required")
	}
	if c.DailyCount <= 0 {
		return fmt.Errorf("DAILY_PROBLEMS_COUNT must be positive, got %d", c.DailyCount)
	}
	if _, _, err := c.SendClock(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateEmail checks the settings of the selected email transport.
func (c Config) ValidateEmail() error {
	var missing []string
	if strings.TrimSpace(c.Recipient) == "" {
		missing = append(missing, "RECIPIENT_EMAIL")
	}
	switch c.EmailTransport {
	case TransportSMTP:
		if strings.TrimSpace(c.EmailHost) == "" {
			missing = append(missing, "EMAIL_HOST")
		}
		if c.EmailPort <= 0 {
			missing = append(missing, "EMAIL_PORT")
		}
		if strings.TrimSpace(c.EmailUser) == "" {
			missing = append(missing, "EMAIL_USER")
		}
		if c.EmailPass == "" {
			missing = append(missing, "EMAIL_PASS")
		}
	case TransportSendGrid:
		if strings.TrimSpace(c.SendGridAPIKey) == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
		if strings.TrimSpace(c.EmailUser) == "" {
			missing = append(missing, "EMAIL_USER")
		}
	default:
		return fmt.Errorf("EMAIL_TRANSPORT must be %q or %q, got %q", TransportSMTP, TransportSendGrid, c.EmailTransport)
	}
	if len(missing) > 0 {
		return fmt.Errorf("email configuration incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Location is the zone that defines the calendar day boundary.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("REVISION_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// SendClock parses DAILY_SEND_TIME ("HH:MM", 24h).
func (c Config) SendClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.SendTime))
	if err != nil {
		return 0, 0, fmt.Errorf("DAILY_SEND_TIME %q must be HH:MM", c.SendTime)
	}
	return t.Hour(), t.Minute(), nil
}

// CronSpec is the five-field cron expression firing daily at SendTime.
func (c Config) CronSpec() (string, error) {
	hour, minute, err := c.SendClock()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
