// Package scenario wires the scenario command: it loads configuration and
// runs one Lua battle script.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/warlord/internal/platform/cmd"
	"github.com/louisbranch/warlord/internal/random"
	"github.com/louisbranch/warlord/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"SCENARIO_FILE"`
	Assertions bool          `env:"SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool          `env:"SCENARIO_VERBOSE"`
	Seed       int64         `env:"SCENARIO_SEED"`
	Timeout    time.Duration `env:"SCENARIO_TIMEOUT" envDefault:"10s"`
	DBPath     string        `env:"BATTLE_DB_PATH"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed for omitted rolls (0 = random)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite journal path (empty = in memory)")
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	seed, err := random.SeedOrNew(cfg.Seed)
	if err != nil {
		return fmt.Errorf("dice seed: %w", err)
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	logger := log.New(errOut, "", 0)
	runner, err := scenario.NewRunner(ctx, scenario.Config{
		DBPath:     cfg.DBPath,
		Seed:       seed,
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer runner.Close()

	script, err := scenario.LoadScenarioFromFile(cfg.Scenario)
	if err != nil {
		return err
	}
	battleID, err := runner.RunScenario(ctx, script)
	if err != nil {
		return fmt.Errorf("scenario %s (seed %d): %w", script.Name, seed, err)
	}
	fmt.Fprintf(out, "scenario %s passed: battle %s (seed %d)\n", script.Name, battleID, seed)
	return nil
}
