package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported data providers.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
	ProviderAlpaca       = "alpaca"
	ProviderMock         = "mock"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Provider struct {
		Name           string `yaml:"name"`
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		APISecret      string `yaml:"api_secret"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"provider"`
	Game struct {
		MinHistory int    `yaml:"min_history"`
		MinDaysAgo int    `yaml:"min_days_ago"`
		MaxDaysAgo int    `yaml:"max_days_ago"`
		LeadInDays int    `yaml:"lead_in_days"`
		Timezone   string `yaml:"timezone"`
	} `yaml:"game"`
	Sessions struct {
		IdleTTLMinutes int    `yaml:"idle_ttl_minutes"`
		SweepCron      string `yaml:"sweep_cron"`
	} `yaml:"sessions"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" && cfg.providerName() == ProviderAlphaVantage {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_KEY_ID"); v != "" && cfg.providerName() == ProviderAlpaca {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET_KEY"); v != "" && cfg.providerName() == ProviderAlpaca {
		cfg.Provider.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("GAME_TIMEZONE"); v != "" {
		cfg.Game.Timezone = v
	}
	if v := os.Getenv("SESSION_IDLE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.IdleTTLMinutes = n
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	cfg.Provider.Name = cfg.providerName()
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 15
	}
	if cfg.Game.MinHistory == 0 {
		cfg.Game.MinHistory = 60
	}
	if cfg.Game.MinDaysAgo == 0 {
		cfg.Game.MinDaysAgo = 7
	}
	if cfg.Game.MaxDaysAgo == 0 {
		cfg.Game.MaxDaysAgo = 100
	}
	if cfg.Game.LeadInDays == 0 {
		cfg.Game.LeadInDays = 7
	}
	if cfg.Game.Timezone == "" {
		cfg.Game.Timezone = "America/New_York"
	}
	if cfg.Sessions.IdleTTLMinutes == 0 {
		cfg.Sessions.IdleTTLMinutes = 30
	}
	if cfg.Sessions.SweepCron == "" {
		cfg.Sessions.SweepCron = "0 * * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockguess.db"
	}

	return cfg, nil
}

func (c *Config) providerName() string {
	if c.Provider.Name == "" {
		return ProviderAlphaVantage
	}
	return c.Provider.Name
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderAlphaVantage:
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider.api_key is required for %s", c.Provider.Name)
		}
	case ProviderAlpaca:
		if c.Provider.APIKey == "" || c.Provider.APISecret == "" {
			return fmt.Errorf("provider.api_key and provider.api_secret are required for %s", c.Provider.Name)
		}
	case ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	if c.Game.MinHistory < 2 {
		return fmt.Errorf("game.min_history must be at least 2")
	}
	// Load treats 0 as unset
	if c.Game.MinDaysAgo < 1 || c.Game.MaxDaysAgo < c.Game.MinDaysAgo {
		return fmt.Errorf("game.min_days_ago must be in [1, game.max_days_ago]")
	}
	if c.Game.LeadInDays < 1 {
		return fmt.Errorf("game.lead_in_days must be at least 1")
	}
	if _, err := time.LoadLocation(c.Game.Timezone); err != nil {
		return fmt.Errorf("game.timezone: %w", err)
	}
	if c.Sessions.IdleTTLMinutes <= 0 {
		return fmt.Errorf("sessions.idle_ttl_minutes must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether result announcements are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ProviderTimeout is the per-request timeout for the data provider.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// IdleTTL is how long a game may sit untouched before it is evicted.
func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.Sessions.IdleTTLMinutes) * time.Minute
}
