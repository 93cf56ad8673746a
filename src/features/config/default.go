package config

// defaultPageSize mirrors the paginator default of the public indexes.
const defaultPageSize = 10

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Site: Site{
			Name: "Monkeypress",
		},
		Logger: Logger{
			Enabled:   true,
			Level:     "info",
			Format:    "text",
			HTMXDebug: false,
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3535,
		},
		Database: Database{
			Path: "./monkeypress.db",
		},
		Listing: Listing{
			Reviews:  defaultPageSize,
			News:     defaultPageSize,
			Features: 2,
			Tours:    defaultPageSize,
			Artists:  defaultPageSize,
			Authors:  defaultPageSize,
		},
		Telegram: Telegram{
			Enabled:       false,
			Token:         "",                 // Can be obtained with https://t.me/BotFather
			AllowedUsers:  []string{"editor"}, // No @
			BotHandle:     "@MonkeypressBot",  // With @
			NotifyChatIDs: []int64{},
		},
		Metrics: Metrics{
			Enabled: true,
		},
		Demo: false,
	}
}
