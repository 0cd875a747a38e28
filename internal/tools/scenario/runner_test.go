package scenario

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/warlord/internal/services/battle/app"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/storage/memory"
	"github.com/louisbranch/warlord/internal/services/battle/storage/sqlite"
)

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	runner, err := newRunnerWithDeps(cfg, runnerDeps{store: memory.New()})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner
}

func loadScript(t *testing.T, script string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(script)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	return scenario
}

const duelSetup = `
local scene = Scenario.new("setup")
scene:battle({
  location = 1,
  attacker = {player = "red", creatures = {"Ogre"}},
  defender = {player = "blue", creatures = {"Centaur"}},
})
`

func TestRunScenarioDuel(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t, Config{})
	scenario, err := LoadScenarioFromFile(filepath.Join("testdata", "duel.lua"))
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	battleID, err := runner.RunScenario(ctx, scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if battleID == "" {
		t.Fatal("expected a battle id")
	}

	if err := runner.Service().Load(ctx, battleID); err != nil {
		t.Fatalf("replay battle: %v", err)
	}
	var outcome battle.Outcome
	if err := runner.Service().Inspect(ctx, battleID, func(b *battle.Battle) error {
		outcome = b.Outcome()
		return nil
	}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if outcome != battle.OutcomeAttackerWon {
		t.Fatalf("replayed outcome = %s, want attacker_won", outcome)
	}
}

func TestRunScenarioAssertionModes(t *testing.T) {
	script := duelSetup + `
scene:expect_phase({phase = "attacker_move"})
scene:expect_creature({name = "ogre", hex = 37})
return scene
`
	strict := newTestRunner(t, Config{Assertions: AssertionStrict})
	_, err := strict.RunScenario(context.Background(), loadScript(t, script))
	if err == nil || !strings.Contains(err.Error(), "step 2 (expect_phase)") {
		t.Fatalf("strict error = %v, want expect_phase failure", err)
	}

	var logs bytes.Buffer
	lenient := newTestRunner(t, Config{Assertions: AssertionLogOnly, Logger: log.New(&logs, "", 0)})
	if _, err := lenient.RunScenario(context.Background(), loadScript(t, script)); err != nil {
		t.Fatalf("log-only run: %v", err)
	}
	if !strings.Contains(logs.String(), "phase = defender_move, want attacker_move") {
		t.Fatalf("logs = %q, want the failed phase expectation", logs.String())
	}
}

func TestRunScenarioExpectedErrors(t *testing.T) {
	tests := []struct {
		name    string
		step    string
		wantErr string
	}{
		{
			name: "matching code and status",
			step: `scene:move({creature = "centaur", hex = 35, expect_error = "BATTLE_UNKNOWN_HEX", expect_status = "InvalidArgument"})`,
		},
		{
			name:    "wrong code",
			step:    `scene:move({creature = "centaur", hex = 35, expect_error = "BATTLE_PRECONDITION_FAILED"})`,
			wantErr: "error code = BATTLE_UNKNOWN_HEX, want BATTLE_PRECONDITION_FAILED",
		},
		{
			name:    "wrong status",
			step:    `scene:move({creature = "ogre", hex = 31, expect_status = "NotFound"})`,
			wantErr: "error status = FailedPrecondition, want NotFound",
		},
		{
			name:    "no error",
			step:    `scene:move({creature = "centaur", hex = 15, expect_error = "BATTLE_UNKNOWN_HEX"})`,
			wantErr: "expected error BATTLE_UNKNOWN_HEX, got none",
		},
		{
			name:    "unexpected error",
			step:    `scene:strike({attacker = "centaur", target = "ogre", rolls = {6}})`,
			wantErr: "BATTLE_PRECONDITION_FAILED",
		},
		{
			name:    "carryover without a strike",
			step:    `scene:carryover({target = "ogre", expect_error = "BATTLE_INVALID_REQUEST"})`,
			wantErr: "want BATTLE_INVALID_REQUEST",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newTestRunner(t, Config{})
			_, err := runner.RunScenario(context.Background(), loadScript(t, duelSetup+tt.step+"\nreturn scene\n"))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("run scenario: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunScenarioCreatureNames(t *testing.T) {
	ambiguous := `
local scene = Scenario.new("twins")
scene:battle({
  location = 1,
  attacker = {creatures = {"Ogre"}},
  defender = {creatures = {"Centaur", "Centaur"}},
})
scene:move({creature = "centaur", hex = 15})
return scene
`
	runner := newTestRunner(t, Config{})
	_, err := runner.RunScenario(context.Background(), loadScript(t, ambiguous))
	if err == nil || !strings.Contains(err.Error(), `creature name "centaur" is ambiguous`) {
		t.Fatalf("error = %v, want ambiguous name", err)
	}

	named := `
local scene = Scenario.new("twins")
scene:battle({
  location = 1,
  attacker = {creatures = {"Ogre"}},
  defender = {creatures = {{kind = "Centaur", name = "left"}, {kind = "Centaur", name = "right"}}},
})
scene:move({creature = "left", hex = 15})
scene:move({creature = 2, hex = 14})
scene:expect_creature({name = "left", hex = 15})
scene:expect_creature({name = "right", hex = 14})
scene:expect_creature({name = 0, hex = 37})
return scene
`
	runner = newTestRunner(t, Config{})
	if _, err := runner.RunScenario(context.Background(), loadScript(t, named)); err != nil {
		t.Fatalf("run named scenario: %v", err)
	}
}

func TestRunScenarioCarryover(t *testing.T) {
	script := `
local scene = Scenario.new("carryover")
scene:battle({
  location = 1,
  attacker = {player = "red", creatures = {"Ogre"}},
  defender = {player = "blue", creatures = {{kind = "Centaur", name = "first"}, {kind = "Centaur", name = "second"}}},
})
scene:move({creature = "first", hex = 15})
scene:move({creature = "second", hex = 14})
scene:advance({phase = "attacker_move"})
scene:move({creature = "ogre", hex = 26})
scene:advance({phase = "defender_move"})
scene:move({creature = "first", hex = 20})
scene:move({creature = "second", hex = 27})
scene:advance({phase = "defender_strike"})
scene:expect_targets({kind = "pending", targets = {"first", "second"}})
scene:strike({attacker = "first", target = "ogre", rolls = {1, 1, 1}, expect_hits = 0})
scene:strike({attacker = "second", target = "ogre", rolls = {1, 1, 1}})
scene:advance({phase = "attacker_strikeback"})
scene:strike({attacker = "ogre", target = "first", rolls = {6, 6, 6, 6, 6, 1}, expect_hits = 5})
scene:expect_targets({kind = "carryover", targets = {"second"}})
scene:carryover({target = "second"})
scene:expect_creature({name = "first", wounds = 3, alive = false})
scene:expect_creature({name = "second", wounds = 2, alive = true})
return scene
`
	runner := newTestRunner(t, Config{})
	if _, err := runner.RunScenario(context.Background(), loadScript(t, script)); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
}

func TestRunScenarioRollsOmittedDice(t *testing.T) {
	script := duelSetup + `
scene:move({creature = "centaur", hex = 15})
scene:advance()
scene:move({creature = "ogre", hex = 26})
scene:advance()
scene:move({creature = "centaur", hex = 20})
scene:advance({phase = "defender_strike"})
scene:strike({attacker = "centaur", target = "ogre", expect_to_hit = 2})
scene:expect_creature({name = "centaur", struck = true})
return scene
`
	runner := newTestRunner(t, Config{Seed: 7})
	if _, err := runner.RunScenario(context.Background(), loadScript(t, script)); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
}

func TestRunScenarioReachable(t *testing.T) {
	script := duelSetup + `
scene:expect_reachable({creature = "centaur", budget = 1, hexes = {2, 3, 4, 36}})
scene:expect_reachable({creature = "ogre", budget = 0, hexes = {37}})
return scene
`
	runner := newTestRunner(t, Config{})
	if _, err := runner.RunScenario(context.Background(), loadScript(t, script)); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
}

func TestRunScenarioRequiresBattle(t *testing.T) {
	runner := newTestRunner(t, Config{})
	_, err := runner.RunScenario(context.Background(), loadScript(t, `
local scene = Scenario.new("empty")
scene:advance()
return scene
`))
	if err == nil || !strings.Contains(err.Error(), "battle is required") {
		t.Fatalf("error = %v, want battle is required", err)
	}
	if _, err := runner.RunScenario(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil scenario")
	}
}

func TestRunFileWithSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "battles.db")
	cfg := Config{DBPath: dbPath, Seed: 1, Logger: log.New(io.Discard, "", 0)}
	if err := RunFile(ctx, cfg, filepath.Join("testdata", "duel.lua")); err != nil {
		t.Fatalf("run file: %v", err)
	}

	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	records, err := store.ListBattles(ctx, 10)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("battles = %d, want 1", len(records))
	}
	svc := app.NewService(store)
	if err := svc.Load(ctx, records[0].BattleID); err != nil {
		t.Fatalf("replay stored battle: %v", err)
	}
}

func TestNewRunnerWithDepsDefaults(t *testing.T) {
	if _, err := newRunnerWithDeps(Config{}, runnerDeps{}); err == nil {
		t.Fatal("expected error without a store")
	}
	runner, err := newRunnerWithDeps(Config{}, runnerDeps{store: memory.New()})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if runner.timeout != DefaultConfig().Timeout {
		t.Fatalf("timeout = %s, want %s", runner.timeout, DefaultConfig().Timeout)
	}
	if runner.logger == nil {
		t.Fatal("expected a default logger")
	}
	if err := runner.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
