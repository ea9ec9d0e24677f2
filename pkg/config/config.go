package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/marketpulse/pkg/classify"
	"github.com/umputun/marketpulse/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the authority server configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:marketpulse.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Auth AuthConfig `yaml:"auth" json:"auth" jsonschema:"description=Bearer token authentication"`

	Schedule struct {
		UpdateInterval time.Duration `yaml:"update_interval" json:"update_interval" jsonschema:"default=30m,description=News feeds refresh interval"`
		MaxWorkers     int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum feeds fetched concurrently"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=Timeout of a single feed fetch"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=News ingestion schedule"`

	Feeds []Feed `yaml:"feeds" json:"feeds" jsonschema:"description=RSS/Atom sources of news items"`

	Seed SeedConfig `yaml:"seed" json:"seed" jsonschema:"description=Coins, insights and memes loaded at startup"`
}

// AuthConfig maps bearer tokens to user ids, empty map disables authentication
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens" json:"tokens" jsonschema:"description=Token to user id map"`
}

// Feed is a news source
type Feed struct {
	URL     string   `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Name    string   `yaml:"name" json:"name" jsonschema:"description=Source name shown with items (defaults to URL)"`
	Tickers []string `yaml:"tickers" json:"tickers" jsonschema:"description=Tickers attached to every item of the feed"`
}

// SeedConfig lists items of the collections which are not ingested from feeds
type SeedConfig struct {
	Coins    []map[string]any `yaml:"coins" json:"coins" jsonschema:"description=Coin items, each needs coingeckoId"`
	Insights []map[string]any `yaml:"insights" json:"insights" jsonschema:"description=Insight items, each needs text or tickers"`
	Memes    []map[string]any `yaml:"memes" json:"memes" jsonschema:"description=Meme items, each needs imageUrl"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// set defaults for server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:marketpulse.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if c.Schedule.UpdateInterval == 0 {
		c.Schedule.UpdateInterval = 30 * time.Minute
	}
	if c.Schedule.MaxWorkers == 0 {
		c.Schedule.MaxWorkers = 5
	}
	if c.Schedule.FetchTimeout == 0 {
		c.Schedule.FetchTimeout = 30 * time.Second
	}

	for i := range c.Feeds {
		if c.Feeds[i].Name == "" {
			c.Feeds[i].Name = c.Feeds[i].URL
		}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate schedule config
	if cfg.Schedule.UpdateInterval < time.Minute {
		return fmt.Errorf("schedule.update_interval must be at least 1 minute")
	}
	if cfg.Schedule.MaxWorkers < 1 {
		return fmt.Errorf("schedule.max_workers must be at least 1")
	}

	for i, f := range cfg.Feeds {
		u, err := url.Parse(f.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("feeds[%d].url %q is not a valid http(s) url", i, f.URL)
		}
	}

	for token, user := range cfg.Auth.Tokens {
		if token == "" || user == "" {
			return fmt.Errorf("auth.tokens entries need both token and user")
		}
	}

	// seed items have to be shaped as their section, otherwise the dashboard files them elsewhere
	for _, kind := range []domain.Kind{domain.KindCoin, domain.KindInsight, domain.KindMeme} {
		for i, raw := range cfg.Seed.Items(kind) {
			if got := classify.Kind(raw); got != kind {
				return fmt.Errorf("seed.%s[%d] is shaped as %s", kind, i, got)
			}
		}
	}

	return nil
}

// Items returns seed items of the given kind
func (s SeedConfig) Items(kind domain.Kind) []map[string]any {
	switch kind {
	case domain.KindCoin:
		return s.Coins
	case domain.KindInsight:
		return s.Insights
	case domain.KindMeme:
		return s.Memes
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFeeds returns configured news sources
func (c *Config) GetFeeds() []domain.Feed {
	res := make([]domain.Feed, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		res = append(res, domain.Feed{URL: f.URL, Name: f.Name, Tickers: f.Tickers})
	}
	return res
}

// Users returns the token to user id map
func (c *Config) Users() map[string]string {
	return c.Auth.Tokens
}
