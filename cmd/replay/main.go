// Package main provides a CLI that replays a stored battle journal and prints
// its state.
package main

import (
	"context"
	"flag"
	"os"

	replaycmd "github.com/louisbranch/warlord/internal/cmd/replay"
	entrypoint "github.com/louisbranch/warlord/internal/platform/cmd"
	"github.com/louisbranch/warlord/internal/platform/config"
)

func main() {
	cfg, err := replaycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := entrypoint.SignalContext()
	defer stop()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReplay, func(ctx context.Context) error {
		return replaycmd.Run(ctx, cfg, os.Stdout)
	}); err != nil {
		config.Exitf("Error: %v", err)
	}
}
