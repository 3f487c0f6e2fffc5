package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.RateLimit.Requests != 30 {
		t.Errorf("RateLimit.Requests = %d, want 30", cfg.RateLimit.Requests)
	}
	if cfg.Tokens.BatchConcurrency != 4 {
		t.Errorf("Tokens.BatchConcurrency = %d, want 4", cfg.Tokens.BatchConcurrency)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
}

func TestLoad_ShortEnvVars(t *testing.T) {
	t.Setenv("API_USERNAME", "admin")
	t.Setenv("API_PASSWORD", "s3cret")
	t.Setenv("API_PORT", "9090")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Auth.Username != "admin" {
		t.Errorf("Auth.Username = %q, want admin", cfg.Auth.Username)
	}
	if cfg.Auth.Password != "s3cret" {
		t.Errorf("Auth.Password = %q, want s3cret", cfg.Auth.Password)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_PrefixedEnvVars(t *testing.T) {
	t.Setenv("TOKENCOUNTER_RATE_LIMIT__REQUESTS", "5")
	t.Setenv("TOKENCOUNTER_STORAGE__TYPE", "none")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.RateLimit.Requests != 5 {
		t.Errorf("RateLimit.Requests = %d, want 5", cfg.RateLimit.Requests)
	}
	if cfg.Storage.Type != "none" {
		t.Errorf("Storage.Type = %q, want none", cfg.Storage.Type)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7000
auth:
  username: fileuser
  password: filepass
rate_limit:
  requests: 10
  window: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("API_USERNAME", "envuser")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	// Env wins over file.
	if cfg.Auth.Username != "envuser" {
		t.Errorf("Auth.Username = %q, want envuser", cfg.Auth.Username)
	}
	if cfg.Auth.Password != "filepass" {
		t.Errorf("Auth.Password = %q, want filepass", cfg.Auth.Password)
	}
	if cfg.RateLimit.WindowDuration() != 30*time.Second {
		t.Errorf("WindowDuration() = %v, want 30s", cfg.RateLimit.WindowDuration())
	}
}

func TestDurationFallbacks(t *testing.T) {
	var rl RateLimitConfig
	if rl.WindowDuration() != time.Minute {
		t.Errorf("empty window = %v, want 1m", rl.WindowDuration())
	}

	rl.Window = "garbage"
	if rl.WindowDuration() != time.Minute {
		t.Errorf("invalid window = %v, want 1m fallback", rl.WindowDuration())
	}

	rl.Window = "-5s"
	if rl.WindowDuration() != time.Minute {
		t.Errorf("negative window = %v, want 1m fallback", rl.WindowDuration())
	}

	var srv ServerConfig
	if srv.Timeout() != 30*time.Second {
		t.Errorf("empty timeout = %v, want 30s", srv.Timeout())
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Auth:      AuthConfig{Username: "u", Password: "p"},
		RateLimit: RateLimitConfig{Requests: 1},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	cfg.Auth.Password = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() passed with missing password")
	}

	cfg.Auth.Password = "p"
	cfg.RateLimit.Requests = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() passed with zero rate limit")
	}
}
