package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Path    string        `env:"TEST_PATH" envDefault:"battles.db"`
	Seed    int64         `env:"TEST_SEED"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"2s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "battles.db" || cfg.Timeout != 2*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	t.Setenv("WARLORD_TEST_SEED", "42")
	t.Setenv("TEST_PATH", "ignored.db")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Seed != 42 {
		t.Fatalf("seed = %d, want 42", cfg.Seed)
	}
	if cfg.Path != "battles.db" {
		t.Fatalf("path = %q, unprefixed variable must be ignored", cfg.Path)
	}
}

func TestParseEnvFrom(t *testing.T) {
	var cfg envTestConfig
	err := ParseEnvFrom(&cfg, map[string]string{
		"WARLORD_TEST_PATH":    "/tmp/b.db",
		"WARLORD_TEST_TIMEOUT": "5s",
	})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "/tmp/b.db" || cfg.Timeout != 5*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	err := ParseEnvFrom(&cfg, map[string]string{"WARLORD_TEST_SEED": "not-a-number"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
