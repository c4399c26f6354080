package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"pado/internal/config"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("first launch must write the file: %v", err)
	}
	if cfg.Backend != "remote" || cfg.DeletePolicy != "immediate" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Keys.Quit != "q" || cfg.Keys.Undo != "u" {
		t.Errorf("keymap defaults = %+v", cfg.Keys)
	}

	// A second load reads the written file back.
	again, err := config.LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.ServerURL != cfg.ServerURL || again.Keys != cfg.Keys {
		t.Errorf("reload = %+v", again)
	}
}

func TestDeletePolicyFollowsBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("backend = \"local\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeletePolicy != "soft-delete-with-expiry" {
		t.Errorf("policy = %q, want the soft default for local", cfg.DeletePolicy)
	}
	if cfg.DBPath != config.DefaultDBName {
		t.Errorf("db path = %q", cfg.DBPath)
	}

	// An explicit policy in the file wins over the backend default.
	if err := os.WriteFile(path, []byte("backend = \"local\"\ndelete_policy = \"immediate\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeletePolicy != "immediate" {
		t.Errorf("policy = %q, want the explicit value", cfg.DeletePolicy)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("PADO_SERVER_URL", "http://todo.example:5000")
	t.Setenv("PADO_USERNAME", "alice")
	t.Setenv("PADO_PASSWORD", "Passw0rd")

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "http://todo.example:5000" {
		t.Errorf("server url = %q", cfg.ServerURL)
	}
	if cfg.Username != "alice" || cfg.Password != "Passw0rd" {
		t.Errorf("credentials not taken from the environment: %+v", cfg)
	}
}

func TestResolveConfigPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := filepath.Join(dir, "pado", "config.toml")
	if got := config.ResolveConfigPath(); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}
