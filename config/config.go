// Package config loads environment variables and provides a typed Config used across the service.
// Defaults let the binary run locally with only BOT_TOKEN set; Load refuses to continue without it.
// The optional Twitch transport is checked separately with ValidateTwitchReady.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// ErrMissingBotToken is returned by Load when BOT_TOKEN is unset. The process must not start.
var ErrMissingBotToken = errors.New("missing BOT_TOKEN")

var validate = validator.New()

type Config struct {
	// Telegram
	BotToken string `env:"BOT_TOKEN"`
	AdminID  int64  `env:"TELEGRAM_ADMIN_ID,default=0" validate:"gte=0"`
	// Bot API URL format ("https://host/bot%s/%s"); empty uses api.telegram.org
	TelegramAPIEndpoint string `env:"TELEGRAM_API_ENDPOINT"`

	// Read API
	Port     int    `env:"PORT,default=3000" validate:"min=1,max=65535"`
	HTTPAddr string `env:"HTTP_ADDR"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND,default=file" validate:"oneof=file postgres"`
	StorageFile    string `env:"STORAGE_FILE,default=./states.json" validate:"required_if=StorageBackend file"`
	DBDsn          string `env:"DB_DSN" validate:"required_if=StorageBackend postgres"`

	// Commands
	ListLimit int `env:"LIST_LIMIT,default=200" validate:"min=1"`

	// Twitch (optional second transport)
	TwitchChannel     string `env:"TWITCH_CHANNEL"`
	TwitchBotUsername string `env:"TWITCH_BOT_USERNAME"`
	TwitchOAuthToken  string `env:"TWITCH_OAUTH_TOKEN"`
	TwitchAdminID     string `env:"TWITCH_ADMIN_ID"`
}

// Load reads environment variables and applies defaults. Variables set to the
// empty string are treated as unset.
func Load() (*Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	for k, v := range es {
		if v == "" {
			delete(es, k)
		}
	}

	cfg := &Config{}
	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.BotToken == "" {
		return nil, ErrMissingBotToken
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ListenAddr is HTTP_ADDR when set, otherwise ":<PORT>".
func (c *Config) ListenAddr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return ":" + strconv.Itoa(c.Port)
}

// AdminIdentity returns the Telegram admin id as a string, or "" when the gate is disabled.
func (c *Config) AdminIdentity() string {
	if c.AdminID == 0 {
		return ""
	}
	return strconv.FormatInt(c.AdminID, 10)
}

// TwitchEnabled reports whether any Twitch variable was provided.
func (c *Config) TwitchEnabled() bool {
	return c.TwitchChannel != "" || c.TwitchBotUsername != "" || c.TwitchOAuthToken != ""
}

// ValidateTwitchReady checks required fields when the Twitch transport is enabled.
func (c *Config) ValidateTwitchReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}
