package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// Config is the server configuration, environment only. The file backend
// with the documented JSON document is the default; LOG_BACKEND=badger
// switches the durable store to BadgerDB.
type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=1234" validate:"min=0,max=65535"`

	LogBackend     string `env:"LOG_BACKEND,default=file" validate:"oneof=file badger"`
	LogFilepath    string `env:"LOG_FILEPATH,default=chatLog.json" validate:"required"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=data/chatlog"`

	LogLevel        string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	DebugAddr       string        `env:"DEBUG_ADDR,default=localhost:6060"`
	EventBufferSize int           `env:"EVENT_BUFFER_SIZE,default=256" validate:"min=1"`
	TimelineSize    int           `env:"TIMELINE_SIZE,default=100" validate:"min=1"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`

	// Comma-separated banned vocabulary; empty disables the moderation
	// observer entirely.
	BannedWords     string `env:"BANNED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return config, nil
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CharacterRune enforces the single-character contract of
// CHARACTER_REPLACEMENT.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
