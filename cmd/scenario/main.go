// Package main provides a CLI for running Lua battle scenario scripts.
package main

import (
	"context"
	"flag"
	"os"

	scenariocmd "github.com/louisbranch/warlord/internal/cmd/scenario"
	entrypoint "github.com/louisbranch/warlord/internal/platform/cmd"
	"github.com/louisbranch/warlord/internal/platform/config"
)

func main() {
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := entrypoint.SignalContext()
	defer stop()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		return scenariocmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		config.Exitf("Error: %v", err)
	}
}
