package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 25565 {
		t.Errorf("expected default port 25565, got %d", cfg.Server.Port)
	}
	if cfg.Server.Driver != "mineflayer" {
		t.Errorf("expected mineflayer driver, got %s", cfg.Server.Driver)
	}
	if !cfg.Reconnect.Enabled || cfg.Reconnect.DelaySeconds != 5 {
		t.Errorf("unexpected reconnect defaults: %+v", cfg.Reconnect)
	}
	if cfg.AI.Trigger != "@gemini" || cfg.Combat.Trigger != "@fight" {
		t.Errorf("unexpected trigger defaults: %s %s", cfg.AI.Trigger, cfg.Combat.Trigger)
	}
	if len(cfg.Combat.Allowed) != 1 || cfg.Combat.Allowed[0] != "KingSoulified" {
		t.Errorf("unexpected combat allow-list: %v", cfg.Combat.Allowed)
	}
	if cfg.Status.Addr != ":8000" {
		t.Errorf("unexpected status addr %s", cfg.Status.Addr)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected defaults, got host %s", cfg.Server.Host)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
[account]
username = "Sentinel"

[server]
host = "mc.example.com"
port = 25570

[auth]
enabled = true
password = "hunter2"
step_timeout_seconds = 30

[position]
enabled = true
x = 12.5
y = 64.0
z = -8.0

[messages]
lines = ["hello", "world"]
repeat_seconds = 60

[combat]
allowed = ["KingSoulified", "Scout"]
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Account.Username != "Sentinel" {
		t.Errorf("expected Sentinel, got %s", cfg.Account.Username)
	}
	if cfg.Server.Host != "mc.example.com" || cfg.Server.Port != 25570 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Auth.StepTimeoutDuration() != 30*time.Second {
		t.Errorf("unexpected step timeout: %s", cfg.Auth.StepTimeoutDuration())
	}
	if !cfg.Position.Enabled || cfg.Position.X != 12.5 {
		t.Errorf("unexpected position: %+v", cfg.Position)
	}
	if cfg.Messages.RepeatInterval() != time.Minute {
		t.Errorf("unexpected repeat interval: %s", cfg.Messages.RepeatInterval())
	}
	if len(cfg.Combat.Allowed) != 2 {
		t.Errorf("unexpected allow-list: %v", cfg.Combat.Allowed)
	}
	// Untouched sections keep their defaults.
	if cfg.AI.Trigger != "@gemini" {
		t.Errorf("expected default AI trigger, got %s", cfg.AI.Trigger)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WARDEN_USERNAME", "EnvBot")
	t.Setenv("WARDEN_SERVER_PORT", "30000")
	t.Setenv("WARDEN_AUTH_PASSWORD", "secret")
	t.Setenv("WARDEN_RECONNECT_DELAY", "9")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Account.Username != "EnvBot" {
		t.Errorf("expected env username, got %s", cfg.Account.Username)
	}
	if cfg.Server.Port != 30000 {
		t.Errorf("expected env port, got %d", cfg.Server.Port)
	}
	if cfg.Auth.Password != "secret" {
		t.Errorf("expected env auth password, got %s", cfg.Auth.Password)
	}
	if cfg.Reconnect.Delay() != 9*time.Second {
		t.Errorf("expected 9s delay, got %s", cfg.Reconnect.Delay())
	}
}

func TestEnvOverrideIgnoresBadNumbers(t *testing.T) {
	t.Setenv("WARDEN_SERVER_PORT", "not-a-port")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 25565 {
		t.Errorf("bad env number should keep default, got %d", cfg.Server.Port)
	}
}
