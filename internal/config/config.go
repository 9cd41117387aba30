package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	API         APIConfig     `toml:"api"`
	Reward      RewardConfig  `toml:"reward"`
	Polling     PollingConfig `toml:"polling"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig contains the finsight-server connection settings.
type APIConfig struct {
	URL string `toml:"url"`
}

// RewardConfig contains the rewarded-ad campaign settings.
type RewardConfig struct {
	TargetAdCount int `toml:"target_ad_count"`
	RewardMinutes int `toml:"reward_minutes"`
}

// PollingConfig contains refresh intervals (seconds) for live resources.
type PollingConfig struct {
	QuotesSeconds    int `toml:"quotes_seconds"`
	AlertsSeconds    int `toml:"alerts_seconds"`
	WatchlistSeconds int `toml:"watchlist_seconds"`
	CalendarSeconds  int `toml:"calendar_seconds"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// IsDevMode reports whether the portal runs with dev behavior enabled.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the externally visible base URL of this portal.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks mandatory configuration and returns a list of issues.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if strings.TrimSpace(c.API.URL) == "" {
		issues = append(issues, "api.url is required (finsight-server base URL)")
	}
	if c.Reward.TargetAdCount <= 0 {
		issues = append(issues, fmt.Sprintf("reward.target_ad_count must be positive (got %d)", c.Reward.TargetAdCount))
	}
	if c.Reward.RewardMinutes <= 0 {
		issues = append(issues, fmt.Sprintf("reward.reward_minutes must be positive (got %d)", c.Reward.RewardMinutes))
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FINSIGHT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("FINSIGHT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FINSIGHT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if apiURL := os.Getenv("FINSIGHT_API_URL"); apiURL != "" {
		config.API.URL = apiURL
	}
	if env := os.Getenv("FINSIGHT_ENVIRONMENT"); env != "" {
		config.Environment = env
	}
	if badgerPath := os.Getenv("FINSIGHT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("FINSIGHT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if ads := os.Getenv("FINSIGHT_REWARD_ADS"); ads != "" {
		if n, err := strconv.Atoi(ads); err == nil {
			config.Reward.TargetAdCount = n
		}
	}
	if minutes := os.Getenv("FINSIGHT_REWARD_MINUTES"); minutes != "" {
		if n, err := strconv.Atoi(minutes); err == nil {
			config.Reward.RewardMinutes = n
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
