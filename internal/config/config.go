// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure. It is read once at startup;
// sessions never re-read it mid-connection.
type Config struct {
	Account   AccountConfig   `toml:"account"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Position  PositionConfig  `toml:"position"`
	AntiIdle  AntiIdleConfig  `toml:"anti_idle"`
	Messages  MessagesConfig  `toml:"messages"`
	Reconnect ReconnectConfig `toml:"reconnect"`
	AI        AIConfig        `toml:"ai"`
	Combat    CombatConfig    `toml:"combat"`
	Status    StatusConfig    `toml:"status"`
}

// AccountConfig holds the agent's game account.
type AccountConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	AuthMode string `toml:"auth"` // "offline" or "microsoft"
}

// ServerConfig identifies the game server.
type ServerConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Version string `toml:"version"`
	Driver  string `toml:"driver"` // registered mc dialer name
}

// AuthConfig controls the chat-based register/login handshake.
type AuthConfig struct {
	Enabled     bool   `toml:"enabled"`
	Password    string `toml:"password"`
	StepTimeout int    `toml:"step_timeout_seconds"` // 0 waits forever
}

// StepTimeoutDuration returns the per-step auth timeout, zero meaning none.
func (a AuthConfig) StepTimeoutDuration() time.Duration {
	return time.Duration(a.StepTimeout) * time.Second
}

// PositionConfig is the optional guard anchor the agent walks to on spawn.
type PositionConfig struct {
	Enabled bool    `toml:"enabled"`
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
	Z       float64 `toml:"z"`
}

// AntiIdleConfig toggles scripted anti-idle controls.
type AntiIdleConfig struct {
	Jump  bool `toml:"jump"`
	Sneak bool `toml:"sneak"`
}

// MessagesConfig holds scheduled chat lines.
type MessagesConfig struct {
	Lines         []string `toml:"lines"`
	RepeatSeconds int      `toml:"repeat_seconds"` // 0 sends once on spawn
}

// RepeatInterval returns the repeat period, zero meaning send once.
func (m MessagesConfig) RepeatInterval() time.Duration {
	return time.Duration(m.RepeatSeconds) * time.Second
}

// ReconnectConfig controls the supervisor's reconnect policy.
type ReconnectConfig struct {
	Enabled      bool `toml:"enabled"`
	DelaySeconds int  `toml:"delay_seconds"`
}

// Delay returns the configured reconnect delay, zero meaning use the default.
func (r ReconnectConfig) Delay() time.Duration {
	return time.Duration(r.DelaySeconds) * time.Second
}

// AIConfig holds the text-completion collaborator settings.
type AIConfig struct {
	Enabled     bool    `toml:"enabled"`
	Provider    string  `toml:"provider"`
	Endpoint    string  `toml:"endpoint"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	Trigger     string  `toml:"trigger"`
	Temperature float64 `toml:"temperature"`
	RateLimit   float64 `toml:"rate_limit"`
	RateBurst   int     `toml:"rate_burst"`
}

// CombatConfig holds the privileged combat command settings.
type CombatConfig struct {
	Trigger string   `toml:"trigger"`
	Allowed []string `toml:"allowed"`
}

// StatusConfig holds the HTTP status endpoint settings.
type StatusConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			Username: "Warden",
			AuthMode: "offline",
		},
		Server: ServerConfig{
			Host:    "localhost",
			Port:    25565,
			Version: "1.20.4",
			Driver:  "mineflayer",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		AntiIdle: AntiIdleConfig{
			Jump: true,
		},
		Reconnect: ReconnectConfig{
			Enabled:      true,
			DelaySeconds: 5,
		},
		AI: AIConfig{
			Provider:    "gemini",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:       "gemini-1.5-flash",
			Trigger:     "@gemini",
			Temperature: 0.7,
			RateLimit:   1.0,
			RateBurst:   2,
		},
		Combat: CombatConfig{
			Trigger: "@fight",
			Allowed: []string{"KingSoulified"},
		},
		Status: StatusConfig{
			Enabled: true,
			Addr:    ":8000",
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WARDEN_USERNAME"); v != "" {
		cfg.Account.Username = v
	}
	if v := os.Getenv("WARDEN_PASSWORD"); v != "" {
		cfg.Account.Password = v
	}
	if v := os.Getenv("WARDEN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WARDEN_SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("WARDEN_AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("WARDEN_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("WARDEN_AI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
	if v := os.Getenv("WARDEN_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("WARDEN_STATUS_ADDR"); v != "" {
		cfg.Status.Addr = v
	}
	if v := os.Getenv("WARDEN_RECONNECT_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reconnect.DelaySeconds = n
		}
	}
}

// DataDir returns the path to the Warden data directory (~/.warden).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".warden"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
