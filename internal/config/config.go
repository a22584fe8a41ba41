// Package config holds the pipeline configuration, loaded through viper
// from an optional YAML file, environment variables, and defaults.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Subreddits        []string       `mapstructure:"subreddits"`
	DataDir           string         `mapstructure:"data_dir"`
	BackupDir         string         `mapstructure:"backup_dir"`
	UpdateWindowHours int            `mapstructure:"update_window_hours"`
	Reddit            RedditConfig   `mapstructure:"reddit"`
	Crossref          CrossrefConfig `mapstructure:"crossref"`
	Zotero            ZoteroConfig   `mapstructure:"zotero"`
	Resolver          ResolverConfig `mapstructure:"resolver"`
}

// RedditConfig configures the forum client.
type RedditConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CrossrefConfig configures the bibliographic client. Setting mailto joins
// Crossref's polite pool.
type CrossrefConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Mailto         string `mapstructure:"mailto"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ZoteroConfig configures the reference-library client. The API key comes
// from the ZOTERO_API_KEY environment variable or a .env file.
type ZoteroConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	LibraryType    string `mapstructure:"library_type"`
	LibraryID      string `mapstructure:"library_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ResolverConfig tunes metadata resolution.
type ResolverConfig struct {
	MinSimilarity      float64 `mapstructure:"min_similarity"`
	FetchPages         bool    `mapstructure:"fetch_pages"`
	PageTimeoutSeconds int     `mapstructure:"page_timeout_seconds"`
	SaveEvery          int     `mapstructure:"save_every"`
}

// SetDefaults registers every default with viper. Call once before Load.
func SetDefaults() {
	viper.SetDefault("subreddits", []string{})
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("backup_dir", "")
	viper.SetDefault("update_window_hours", 168)

	viper.SetDefault("reddit.base_url", "https://www.reddit.com")
	viper.SetDefault("reddit.user_agent", "lectio/0.1 (reading list curator)")
	viper.SetDefault("reddit.timeout_seconds", 30)

	viper.SetDefault("crossref.base_url", "https://api.crossref.org")
	viper.SetDefault("crossref.mailto", "")
	viper.SetDefault("crossref.user_agent", "lectio/0.1 (reading list curator)")
	viper.SetDefault("crossref.timeout_seconds", 30)

	viper.SetDefault("zotero.base_url", "https://api.zotero.org")
	viper.SetDefault("zotero.library_type", "group")
	viper.SetDefault("zotero.timeout_seconds", 60)

	viper.SetDefault("resolver.min_similarity", 0.8)
	viper.SetDefault("resolver.fetch_pages", true)
	viper.SetDefault("resolver.page_timeout_seconds", 15)
	viper.SetDefault("resolver.save_every", 10)

	viper.BindEnv("zotero.api_key", "ZOTERO_API_KEY")
}

// Load materializes the configuration from viper's merged sources.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}

	return &cfg, nil
}

// RedditTimeout returns the forum client timeout as a duration.
func (c *Config) RedditTimeout() time.Duration {
	return time.Duration(c.Reddit.TimeoutSeconds) * time.Second
}

// CrossrefTimeout returns the bibliographic client timeout as a duration.
func (c *Config) CrossrefTimeout() time.Duration {
	return time.Duration(c.Crossref.TimeoutSeconds) * time.Second
}

// ZoteroTimeout returns the reference-library client timeout as a duration.
func (c *Config) ZoteroTimeout() time.Duration {
	return time.Duration(c.Zotero.TimeoutSeconds) * time.Second
}

// PageTimeout returns the publisher-page fetch timeout as a duration.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.Resolver.PageTimeoutSeconds) * time.Second
}

// UpdateWindow returns how far back the update pass reaches.
func (c *Config) UpdateWindow() time.Duration {
	return time.Duration(c.UpdateWindowHours) * time.Hour
}
