// Package config loads timus-feed settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file. Variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/pfrederiksen/timus-feed/internal/cycle"
	"github.com/pfrederiksen/timus-feed/internal/notifier"
	"github.com/pfrederiksen/timus-feed/internal/storage"
)

// Notifier names
const (
	NotifierTelegram = "telegram"
	NotifierTwitter  = "twitter"
	NotifierDryRun   = "dryrun"
)

// Config holds every setting of the worker
type Config struct {
	AuthorID    string `env:"AUTHOR_ID"`
	BotToken    string `env:"BOT_TOKEN"`
	ChannelID   string `env:"CHANNEL_ID"`
	StatusURL   string `env:"STATUS_URL"   envDefault:"https://timus.online/status.aspx"`
	ResultCount int    `env:"RESULT_COUNT" envDefault:"10"`

	Notifier            string `env:"NOTIFIER" envDefault:"telegram"`
	TwitterAPIKey       string `env:"TWITTER_API_KEY"`
	TwitterAPISecret    string `env:"TWITTER_API_SECRET"`
	TwitterAccessToken  string `env:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret string `env:"TWITTER_ACCESS_SECRET"`

	Store         string `env:"STORE"          envDefault:"file"`
	DataDir       string `env:"DATA_DIR"       envDefault:"~/.local/share/timus-feed"`
	SQLitePath    string `env:"SQLITE_PATH"    envDefault:"timus-feed.db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddress  string `env:"REDIS_ADDRESS"  envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX"   envDefault:"attempts:"`
	GistID        string `env:"GIST_ID"`
	GitHubToken   string `env:"GITHUB_TOKEN"`
	EncryptionKey string `env:"SEEN_ENCRYPTION_KEY"`

	DeliveryPolicy string        `env:"DELIVERY_POLICY" envDefault:"at-most-once"`
	Schedule       string        `env:"SCHEDULE"        envDefault:"*/5 * * * *"`
	CycleTimeout   time.Duration `env:"CYCLE_TIMEOUT"   envDefault:"2m"`
	MetricsAddr    string        `env:"METRICS_ADDR"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
}

// loadEnvFiles loads .env files in priority order:
// 1. ENV_FILE environment variable (if set, loads only this file)
// 2. .env.local (if exists)
// 3. .env (default)
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}

	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

// Load reads .env files and then the environment
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching .env files
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ErrMissingAuthor is returned when no author id is configured
var ErrMissingAuthor = errors.New("AUTHOR_ID is required")

// Validate checks the settings needed to run cycles
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.AuthorID) == "" {
		errs = append(errs, ErrMissingAuthor)
	}
	if c.ResultCount <= 0 {
		errs = append(errs, fmt.Errorf("RESULT_COUNT must be positive, got %d", c.ResultCount))
	}
	if c.CycleTimeout < 0 {
		errs = append(errs, fmt.Errorf("CYCLE_TIMEOUT must not be negative, got %s", c.CycleTimeout))
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}

	switch c.NotifierName() {
	case NotifierTelegram:
		if c.BotToken == "" || c.ChannelID == "" {
			errs = append(errs, errors.New("BOT_TOKEN and CHANNEL_ID are required for the telegram notifier"))
		}
	case NotifierTwitter:
		creds := c.TwitterCredentials()
		if creds.APIKey == "" || creds.APISecret == "" || creds.AccessToken == "" || creds.AccessSecret == "" {
			errs = append(errs, notifier.ErrMissingTwitterCredentials)
		}
	case NotifierDryRun:
	default:
		errs = append(errs, fmt.Errorf("unknown notifier %q", c.Notifier))
	}

	return errors.Join(errs...)
}

// NotifierName returns the normalized notifier name
func (c *Config) NotifierName() string {
	return strings.ToLower(strings.TrimSpace(c.Notifier))
}

// Policy returns the parsed delivery policy
func (c *Config) Policy() (cycle.Policy, error) {
	return cycle.ParsePolicy(c.DeliveryPolicy)
}

// StorageOptions returns the seen-set backend settings
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Store,
		DataDir:     c.DataDir,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
		Redis: storage.RedisConfig{
			Address:  c.RedisAddress,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
		GistID:        c.GistID,
		GitHubToken:   c.GitHubToken,
		EncryptionKey: c.EncryptionKey,
	}
}

// TwitterCredentials returns the Twitter OAuth settings
func (c *Config) TwitterCredentials() notifier.TwitterCredentials {
	return notifier.TwitterCredentials{
		APIKey:       c.TwitterAPIKey,
		APISecret:    c.TwitterAPISecret,
		AccessToken:  c.TwitterAccessToken,
		AccessSecret: c.TwitterAccessSecret,
	}
}
