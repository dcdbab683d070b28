package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Pipeline.PhaseTimeout != Duration(5*time.Minute) {
		t.Errorf("PhaseTimeout = %v", cfg.Pipeline.PhaseTimeout)
	}
	if cfg.Pipeline.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d", cfg.Pipeline.MaxAttempts)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  addr: ":9090"
  event_queue_size: 128
pipeline:
  output_dir: /tmp/out
  phase_timeout: 90s
vercel:
  token: secret
  team: acme
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.EventQueueSize != 128 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Pipeline.OutputDir != "/tmp/out" || cfg.Pipeline.PhaseTimeout != Duration(90*time.Second) {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Pipeline.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want default", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Vercel.Token != "secret" || cfg.Vercel.Team != "acme" {
		t.Errorf("vercel = %+v", cfg.Vercel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SPECFORGE_ADDR", ":7070")
	t.Setenv("SPECFORGE_PHASE_TIMEOUT", "30s")
	t.Setenv("VERCEL_TOKEN", "env-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Pipeline.PhaseTimeout != Duration(30*time.Second) {
		t.Errorf("PhaseTimeout = %v", cfg.Pipeline.PhaseTimeout)
	}
	if cfg.Vercel.Token != "env-token" {
		t.Errorf("Token = %q", cfg.Vercel.Token)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  max_attempts: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with max_attempts 0 expected error")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with malformed yaml expected error")
	}
}
