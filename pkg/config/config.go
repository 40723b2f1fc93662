package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"likeswatch/pkg/logger"
)

// Config holds all configuration options for the likes watcher
type Config struct {
	// Discord chat backend settings
	Discord DiscordConfig `yaml:"discord" json:"discord"`

	// Twitter fetch settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Crawl scheduling
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Persistent store settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging logger.Config `yaml:"logging" json:"logging"`
}

// DiscordConfig holds chat backend configuration
type DiscordConfig struct {
	// Token may be empty when the credential store supplies it
	Token string `yaml:"token" json:"token"`
	// OwnerID is the only user allowed to trigger the like action
	OwnerID string `yaml:"owner_id" json:"owner_id"`
}

// TwitterConfig holds platform fetch configuration
type TwitterConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	FetchLimit int    `yaml:"fetch_limit" json:"fetch_limit"`
}

// CrawlConfig holds sweep scheduling configuration
type CrawlConfig struct {
	Interval     time.Duration `yaml:"interval" json:"interval"`
	SweepOnStart bool          `yaml:"sweep_on_start" json:"sweep_on_start"`
	MessageDelay time.Duration `yaml:"message_delay" json:"message_delay"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	Headless    bool          `yaml:"headless" json:"headless"`
	ChromePath  string        `yaml:"chrome_path" json:"chrome_path"`
	NavTimeout  time.Duration `yaml:"nav_timeout" json:"nav_timeout"`
	UserDataDir string        `yaml:"user_data_dir" json:"user_data_dir"`
}

// StorageConfig holds persistent store configuration
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:    "https://twitter.com",
			FetchLimit: 100,
		},
		Crawl: CrawlConfig{
			Interval:     10 * time.Minute,
			SweepOnStart: true,
			MessageDelay: time.Second,
		},
		Browser: BrowserConfig{
			Headless:   true,
			NavTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Path: "data/likeswatch.db",
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("LIKESWATCH_DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	if ownerID := os.Getenv("LIKESWATCH_DISCORD_OWNER_ID"); ownerID != "" {
		c.Discord.OwnerID = ownerID
	}
	if limit := os.Getenv("LIKESWATCH_FETCH_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Twitter.FetchLimit = val
		}
	}
	if interval := os.Getenv("LIKESWATCH_CRAWL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			c.Crawl.Interval = d
		}
	}
	if path := os.Getenv("LIKESWATCH_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if chrome := os.Getenv("LIKESWATCH_CHROME_PATH"); chrome != "" {
		c.Browser.ChromePath = chrome
	}
	if headless := os.Getenv("LIKESWATCH_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if logLevel := os.Getenv("LIKESWATCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".likeswatch.yaml",
		".likeswatch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "likeswatch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".likeswatch.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Discord.OwnerID == "" {
		errs = append(errs, errors.New("discord owner id is required"))
	}
	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("twitter base url is required"))
	}
	if c.Twitter.FetchLimit <= 0 {
		errs = append(errs, errors.New("fetch limit must be positive"))
	}
	if c.Crawl.Interval <= 0 {
		errs = append(errs, errors.New("crawl interval must be positive"))
	}
	if c.Crawl.MessageDelay < 0 {
		errs = append(errs, errors.New("message delay cannot be negative"))
	}
	if c.Browser.NavTimeout <= 0 {
		errs = append(errs, errors.New("browser navigation timeout must be positive"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".likeswatch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
