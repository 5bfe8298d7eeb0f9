package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Disabled turns off a listener address.
const Disabled = "off"

// Config holds all server settings read from the environment.
type Config struct {
	// TCPAddr is the raw socket listener used by the desktop client; "off" disables it.
	TCPAddr string `env:"LITTLE_TCP_ADDR" envDefault:":4000"`
	// HTTPAddr serves the WebSocket endpoint; "off" disables it.
	HTTPAddr string `env:"LITTLE_HTTP_ADDR" envDefault:":8080"`

	UsersFile   string `env:"LITTLE_USERS_FILE" envDefault:"mp/users/users.json"`
	TemplateDir string `env:"LITTLE_TEMPLATE_DIR"`

	// Persistence backend: "json", "postgres" or "sqlite".
	DBType      string `env:"DB_TYPE" envDefault:"json"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=little password=little dbname=little_realm sslmode=disable"`
	DBFile      string `env:"DB_FILE" envDefault:"db.json"`

	StartRoom         string        `env:"LITTLE_START_ROOM" envDefault:"template_room"`
	StartX            int           `env:"LITTLE_START_X" envDefault:"160"`
	StartY            int           `env:"LITTLE_START_Y" envDefault:"160"`
	InventoryCapacity int           `env:"LITTLE_INVENTORY_CAPACITY" envDefault:"8"`
	HandshakeTimeout  time.Duration `env:"LITTLE_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxMessageSize    int64         `env:"LITTLE_MAX_MESSAGE_SIZE" envDefault:"65536"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.DBType {
	case "json", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.InventoryCapacity <= 0 {
		return fmt.Errorf("inventory capacity must be positive, got %d", c.InventoryCapacity)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake timeout must be positive, got %s", c.HandshakeTimeout)
	}
	if c.TCPAddr == Disabled && c.HTTPAddr == Disabled {
		return fmt.Errorf("LITTLE_TCP_ADDR and LITTLE_HTTP_ADDR are both disabled")
	}
	return nil
}
