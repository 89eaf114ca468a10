// Package config reads process configuration from the environment, with a
// .env file in the working directory as a non-overwriting fallback.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the bot and the deploy tool read from the
// environment. Token and AppID are required by both entry points; the
// owner and panel identifiers are optional and disable their features
// when empty.
type Config struct {
	Token string
	AppID string

	OwnerGuildID   string
	OwnerChannelID string

	PanelGuildID   string
	PanelChannelID string

	DataDir     string
	AuditDBPath string
	LogDir      string
}

// Load populates a Config from the environment. A ./.env file, when
// present, fills in variables that are not already set.
func Load() Config {
	// godotenv.Load never overrides variables already present.
	_ = godotenv.Load()

	cfg := Config{
		Token:          os.Getenv("DISCORD_TOKEN"),
		AppID:          os.Getenv("CLIENT_ID"),
		OwnerGuildID:   os.Getenv("OWNER_GUILD_ID"),
		OwnerChannelID: os.Getenv("OWNER_CHANNEL_ID"),
		PanelGuildID:   os.Getenv("PANEL_GUILD_ID"),
		PanelChannelID: os.Getenv("PANEL_CHANNEL_ID"),
		DataDir:        os.Getenv("DATA_DIR"),
		AuditDBPath:    os.Getenv("AUDIT_DB_PATH"),
		LogDir:         os.Getenv("LOG_DIR"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.AuditDBPath == "" {
		cfg.AuditDBPath = "data/audit.db"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	return cfg
}

// RequireCredentials fails when the bot token or application id is missing.
func (c Config) RequireCredentials() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN not set in environment or .env file")
	}
	if c.AppID == "" {
		return fmt.Errorf("CLIENT_ID not set in environment or .env file")
	}
	return nil
}

// OwnerLogConfigured reports whether the fixed owner log channel is usable.
func (c Config) OwnerLogConfigured() bool {
	return c.OwnerGuildID != "" && c.OwnerChannelID != ""
}

// PanelConfigured reports whether the admin panel has a home.
func (c Config) PanelConfigured() bool {
	return c.PanelGuildID != "" && c.PanelChannelID != ""
}
