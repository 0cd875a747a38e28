package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Path string `env:"CMD_TEST_PATH" envDefault:"battles.db"`
	Seed int64  `env:"CMD_TEST_SEED"`
}

func bindTestFlags(fs *flag.FlagSet, cfg *testConfig) {
	fs.StringVar(&cfg.Path, "path", cfg.Path, "path")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed")
}

func TestParseConfigFromArgsFlagsOverrideEnv(t *testing.T) {
	t.Setenv("WARLORD_CMD_TEST_PATH", "env.db")
	t.Setenv("WARLORD_CMD_TEST_SEED", "7")

	var cfg testConfig
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := ParseConfigFromArgs(&cfg, fs, []string{"-path", "flag.db"}, bindTestFlags); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Path != "flag.db" {
		t.Fatalf("path = %q, want flag value", cfg.Path)
	}
	if cfg.Seed != 7 {
		t.Fatalf("seed = %d, want env value", cfg.Seed)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Path != "battles.db" {
		t.Fatalf("path = %q", cfg.Path)
	}
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected nil parser error")
	}
}

func TestRunWithTelemetry(t *testing.T) {
	t.Setenv("WARLORD_OTEL_ENDPOINT", "")

	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceReplay, nil); err == nil {
		t.Fatal("expected missing run function error")
	}

	boom := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceScenario, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("run error = %v, want %v", err, boom)
	}
}
