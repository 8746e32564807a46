package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/clubchat-core/server/internal/agent/model"
	"github.com/clubchat-core/server/internal/agent/sanitize"
	"github.com/clubchat-core/server/internal/core"
	"github.com/clubchat-core/server/pkg/database"
	logx "github.com/clubchat-core/server/pkg/logger"
	pkgredis "github.com/clubchat-core/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the club bot,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis    pkgredis.Config
	Database database.Config

	// Dialogue
	Session          model.SessionConfig
	Dialogue         model.DialogueConfig
	MaxMessageLength int `envconfig:"MAX_MESSAGE_LENGTH" default:"5000"`

	// LLM provider for advisory suggestions
	Enrichment model.EnrichmentConfig
}

func (c AppConfig) Environment() core.Environment {
	return core.ParseEnvironment(c.Env)
}

func loadConfig() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("could not load .env file")
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = sanitize.DefaultMaxLength
	}
	return &cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
