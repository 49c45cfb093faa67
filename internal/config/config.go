package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Bot    BotConfig
	DB     DBConfig
	Server ServerConfig
	WebApp WebAppConfig
}

// BotConfig holds Telegram bot configuration
type BotConfig struct {
	Token    string  `envconfig:"BOT_TOKEN" required:"true"`
	Username string  `envconfig:"BOT_USERNAME" default:"KinoBot"`
	AdminIDs []int64 `envconfig:"ADMIN_IDS"`
}

// DBConfig holds database configuration
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	Database string `envconfig:"DB_NAME" default:"kino_bot"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// WebAppConfig holds the mini-app URLs presented in bot keyboards
type WebAppConfig struct {
	UserURL  string `envconfig:"WEB_APP_URL" default:"https://yourdomain.com/webapp"`
	AdminURL string `envconfig:"ADMIN_WEB_APP_URL" default:"https://yourdomain.com/webapp/admin"`
}

// DSN returns the MySQL data source name
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// IsAdmin reports whether the given Telegram id is in the configured
// admin allow-list. Authorization everywhere in the system is this
// list, never the admins table.
func (c *BotConfig) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Load loads configuration from the environment. A local .env file, if
// present, is read first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if err := envconfig.Process("", &cfg.Bot); err != nil {
		return nil, fmt.Errorf("failed to load bot config: %w", err)
	}

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.WebApp); err != nil {
		return nil, fmt.Errorf("failed to load webapp config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	return nil
}
