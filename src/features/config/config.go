package config

// Config holds the application configuration.
type Config struct {
	Site     Site     `yaml:"site"`
	Logger   Logger   `yaml:"logger"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Listing  Listing  `yaml:"listing"`
	Telegram Telegram `yaml:"telegram"`
	Metrics  Metrics  `yaml:"metrics"`
	Demo     bool     `yaml:"demo"`
}

// Site holds the public facing settings of the magazine.
type Site struct {
	Name    string `yaml:"name" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format    string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
	HTMXDebug bool   `yaml:"htmx_debug"`
}

// Listing holds the page size of every public index.
type Listing struct {
	Reviews  int `yaml:"reviews" validate:"min=1"`
	News     int `yaml:"news" validate:"min=1"`
	Features int `yaml:"features" validate:"min=1"`
	Tours    int `yaml:"tours" validate:"min=1"`
	Artists  int `yaml:"artists" validate:"min=1"`
	Authors  int `yaml:"authors" validate:"min=1"`
}

// PageSize returns the page size configured for the named index.
func (l Listing) PageSize(index string) int {
	switch index {
	case "reviews":
		return l.Reviews
	case "news":
		return l.News
	case "features":
		return l.Features
	case "tours":
		return l.Tours
	case "artists":
		return l.Artists
	case "authors":
		return l.Authors
	default:
		return defaultPageSize
	}
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle"`
	// NotifyChatIDs receive the dangling link reports produced by deletes.
	NotifyChatIDs []int64 `yaml:"notify_chat_ids"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}
