package config

import (
	"os"
	"testing"
)

func TestLoad_WithRequiredEnvVars(t *testing.T) {
	os.Setenv("BOT_TOKEN", "test-token-123")
	os.Setenv("DB_PASSWORD", "test-password")
	os.Setenv("ADMIN_IDS", "1111,2222")
	defer func() {
		os.Unsetenv("BOT_TOKEN")
		os.Unsetenv("DB_PASSWORD")
		os.Unsetenv("ADMIN_IDS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bot.Token != "test-token-123" {
		t.Errorf("Bot.Token = %v, want %v", cfg.Bot.Token, "test-token-123")
	}
	if cfg.DB.Password != "test-password" {
		t.Errorf("DB.Password = %v, want %v", cfg.DB.Password, "test-password")
	}
	if len(cfg.Bot.AdminIDs) != 2 || cfg.Bot.AdminIDs[0] != 1111 || cfg.Bot.AdminIDs[1] != 2222 {
		t.Errorf("Bot.AdminIDs = %v, want [1111 2222]", cfg.Bot.AdminIDs)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Setenv("BOT_TOKEN", "test-token")
	os.Setenv("DB_PASSWORD", "test-pass")
	defer func() {
		os.Unsetenv("BOT_TOKEN")
		os.Unsetenv("DB_PASSWORD")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bot.Username != "KinoBot" {
		t.Errorf("Bot.Username = %v, want %v", cfg.Bot.Username, "KinoBot")
	}
	if cfg.DB.Host != "localhost" {
		t.Errorf("DB.Host = %v, want %v", cfg.DB.Host, "localhost")
	}
	if cfg.DB.Port != 3306 {
		t.Errorf("DB.Port = %v, want %v", cfg.DB.Port, 3306)
	}
	if cfg.DB.Database != "kino_bot" {
		t.Errorf("DB.Database = %v, want %v", cfg.DB.Database, "kino_bot")
	}
	if cfg.DB.MaxConns != 10 {
		t.Errorf("DB.MaxConns = %v, want %v", cfg.DB.MaxConns, 10)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, 8080)
	}
}

func TestLoad_MissingBotToken(t *testing.T) {
	os.Unsetenv("BOT_TOKEN")
	os.Setenv("DB_PASSWORD", "test-pass")
	defer os.Unsetenv("DB_PASSWORD")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing BOT_TOKEN, got nil")
	}
}

func TestBotConfig_IsAdmin(t *testing.T) {
	cfg := BotConfig{AdminIDs: []int64{100, 200}}

	if !cfg.IsAdmin(100) {
		t.Error("IsAdmin(100) = false, want true")
	}
	if cfg.IsAdmin(300) {
		t.Error("IsAdmin(300) = true, want false")
	}

	empty := BotConfig{}
	if empty.IsAdmin(100) {
		t.Error("IsAdmin on empty allow-list should be false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Bot:    BotConfig{Token: "token"},
				DB:     DBConfig{Password: "pass"},
				Server: ServerConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "missing bot token",
			cfg: Config{
				Bot:    BotConfig{Token: ""},
				DB:     DBConfig{Password: "pass"},
				Server: ServerConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing db password",
			cfg: Config{
				Bot:    BotConfig{Token: "token"},
				DB:     DBConfig{Password: ""},
				Server: ServerConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			cfg: Config{
				Bot:    BotConfig{Token: "token"},
				DB:     DBConfig{Password: "pass"},
				Server: ServerConfig{Port: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "secret",
		Database: "testdb",
	}

	expected := "root:secret@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != expected {
		t.Errorf("DSN() = %v, want %v", got, expected)
	}
}
