package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Mode        string            `toml:"mode"`
	Server      ServerConfig      `toml:"server"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Sync        SyncConfig        `toml:"sync"`
	Status      StatusConfig      `toml:"status"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig points at the room server.
type ServerConfig struct {
	SocketURL  string        `toml:"socket_url"`
	APIURL     string        `toml:"api_url"`
	DeviceID   string        `toml:"device_id"`
	PingPeriod time.Duration `toml:"ping_period"`
	WriteWait  time.Duration `toml:"write_wait"`
}

// CredentialsConfig holds either a static access token or OAuth2 client credentials.
type CredentialsConfig struct {
	AccessToken  string `toml:"access_token"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
}

// HasClientCredentials reports whether the client-credentials flow is configured.
func (c CredentialsConfig) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TokenURL != ""
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig tunes the room synchronization actors and outbound traffic.
type SyncConfig struct {
	MutationDebounce       time.Duration `toml:"mutation_debounce"`
	ConfirmationDebounce   time.Duration `toml:"confirmation_debounce"`
	AcknowledgementTimeout time.Duration `toml:"acknowledgement_timeout"`
	InboxSize              int           `toml:"inbox_size"`
	OutboundRate           float64       `toml:"outbound_rate"`
	OutboundBurst          int           `toml:"outbound_burst"`
	SendBuffer             int           `toml:"send_buffer"`
}

// StatusConfig configures the local status HTTP server.
type StatusConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Strict reports whether programmer errors should panic.
func (c *Config) Strict() bool {
	return c.Mode != ModeProduction
}

// Validate checks the values that would otherwise fail deep inside the client.
func (c *Config) Validate() error {
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidConfig, ModeDevelopment, ModeProduction, c.Mode)
	}
	if c.Server.SocketURL == "" {
		return fmt.Errorf("%w: server.socket_url is required", ErrInvalidConfig)
	}
	if c.Sync.MutationDebounce < 0 || c.Sync.ConfirmationDebounce < 0 || c.Sync.AcknowledgementTimeout < 0 {
		return fmt.Errorf("%w: sync durations must not be negative", ErrInvalidConfig)
	}
	if c.Sync.OutboundRate <= 0 || c.Sync.OutboundBurst <= 0 {
		return fmt.Errorf("%w: sync.outbound_rate and sync.outbound_burst must be positive", ErrInvalidConfig)
	}
	if c.Sync.InboxSize <= 0 || c.Sync.SendBuffer <= 0 {
		return fmt.Errorf("%w: sync.inbox_size and sync.send_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
