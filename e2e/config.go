package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_SERVER_ADDR points the suite at an already running server.
	// When empty, the suite boots an in-process server on a loopback port.
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours     bool          `envconfig:"E2E_COLOURS" default:"true"`
	ReplyWindow time.Duration `envconfig:"E2E_REPLY_WINDOW" default:"2s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
