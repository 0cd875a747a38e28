package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/warlord/internal/core/dice"
	"github.com/louisbranch/warlord/internal/services/battle/app"
	"github.com/louisbranch/warlord/internal/services/battle/storage/memory"
	"github.com/louisbranch/warlord/internal/services/battle/storage/sqlite"
)

// Config controls scenario execution.
type Config struct {
	// DBPath selects a SQLite journal; empty keeps the journal in memory.
	DBPath     string
	Seed       int64
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against the battle service.
type Runner struct {
	service    *app.Service
	closeStore func() error
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	seed       int64
}

// NewRunner opens the configured journal and prepares a scenario runner.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.DBPath == "" {
		return newRunnerWithDeps(cfg, runnerDeps{store: memory.New()})
	}
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open battle store: %w", err)
	}
	return newRunnerWithDeps(cfg, runnerDeps{store: store, closeStore: store.Close})
}

// newRunnerWithDeps builds a Runner from pre-built dependencies.
// Config defaults (logger, timeout) are applied here so they are testable.
func newRunnerWithDeps(cfg Config, deps runnerDeps) (*Runner, error) {
	if deps.store == nil {
		return nil, errors.New("battle store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	opts := []app.Option{app.WithRoller(dice.NewRoller(cfg.Seed))}
	if cfg.Verbose {
		opts = append(opts, app.WithLogger(logger))
	}

	return &Runner{
		service:    app.NewService(deps.store, opts...),
		closeStore: deps.closeStore,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		seed:       cfg.Seed,
	}, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.closeStore != nil {
		return r.closeStore()
	}
	return nil
}

// Service exposes the battle service the runner drives.
func (r *Runner) Service() *app.Service {
	return r.service
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	_, err = runner.RunScenario(ctx, scenario)
	return err
}

// RunScenario executes the scenario steps and returns the id of the battle
// it played.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (string, error) {
	if scenario == nil {
		return "", errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps, seed %d)", scenario.Name, len(scenario.Steps), r.seed)
	state := newScenarioState()

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return state.battleID, fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return state.battleID, nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
