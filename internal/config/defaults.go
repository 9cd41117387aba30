package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4361,
			Host: "localhost",
		},
		API: APIConfig{
			URL: "http://localhost:8000",
		},
		Reward: RewardConfig{
			TargetAdCount: 5,
			RewardMinutes: 30,
		},
		Polling: PollingConfig{
			QuotesSeconds:    5,
			AlertsSeconds:    10,
			WatchlistSeconds: 10,
			CalendarSeconds:  60,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/finsight",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console", "file"},
		},
	}
}
