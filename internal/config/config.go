package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	DiscordClientID               string `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	FrontendURL                   string `mapstructure:"FRONTEND_URL"`
	LogLevel                      string `mapstructure:"LOG_LEVEL"`

	// DemoToken enables the demo bearer token when non-empty.
	DemoToken    string `mapstructure:"DEMO_TOKEN"`
	DemoUsername string `mapstructure:"DEMO_USERNAME"`
	FixturesPath string `mapstructure:"FIXTURES_PATH"`

	TotalXP       int `mapstructure:"TOTAL_XP"`
	MaxStreakDays int `mapstructure:"MAX_STREAK_DAYS"`
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// LoadConfig reads settings from the environment. It does not validate them:
// migrate only needs the database path, while serve calls Validate.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "marketplace.db")
	v.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000/dashboard")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEMO_USERNAME", "demo-scholar")
	v.SetDefault("TOTAL_XP", 5000)
	v.SetDefault("MAX_STREAK_DAYS", 30)

	for _, key := range []string{
		"DISCORD_CLIENT_ID",
		"DISCORD_CLIENT_SECRET",
		"DISCORD_GUILD_ID",
		"DISCORD_BOT_TOKEN",
		"DISCORD_NOTIFICATIONS_CHANNEL_ID",
		"JWT_SECRET",
		"DEMO_TOKEN",
		"FIXTURES_PATH",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &config, nil
}

// Validate checks settings the server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.TotalXP <= 0 {
		return fmt.Errorf("TOTAL_XP must be positive, got %d", c.TotalXP)
	}
	if c.MaxStreakDays <= 0 {
		return fmt.Errorf("MAX_STREAK_DAYS must be positive, got %d", c.MaxStreakDays)
	}
	return nil
}
