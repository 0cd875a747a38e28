package scenario

import (
	"context"
	"slices"
	"strings"

	"github.com/louisbranch/warlord/internal/services/battle/app"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "battle":
		return r.runBattleStep(ctx, state, step.Args)
	case "move":
		return r.runMoveStep(ctx, state, step.Args)
	case "advance":
		return r.runAdvanceStep(ctx, state, step.Args)
	case "strike", "rangestrike":
		return r.runStrikeStep(ctx, state, step.Kind == "rangestrike", step.Args)
	case "carryover":
		return r.runCarryoverStep(ctx, state, step.Args)
	case "decline_carryover":
		return r.runDeclineCarryoverStep(ctx, state, step.Args)
	case "expect_creature":
		return r.runExpectCreatureStep(ctx, state, step.Args)
	case "expect_phase":
		return r.runExpectPhaseStep(ctx, state, step.Args)
	case "expect_reachable":
		return r.runExpectReachableStep(ctx, state, step.Args)
	case "expect_targets":
		return r.runExpectTargetsStep(ctx, state, step.Args)
	case "expect_outcome":
		return r.runExpectOutcomeStep(ctx, state, step.Args)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runBattleStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if state.battleID != "" {
		return r.failf("battle %s is already running", state.battleID)
	}
	location, ok := readInt(args, "location")
	if !ok {
		return r.failf("battle location is required")
	}
	edge, err := masterboard.ParseHexEdge(optionalString(args, "edge", "first"))
	if err != nil {
		return r.failf("battle edge: %v", err)
	}
	attacker, attackerNames, err := parseRoster(args, "attacker")
	if err != nil {
		return r.failf("%v", err)
	}
	defender, defenderNames, err := parseRoster(args, "defender")
	if err != nil {
		return r.failf("%v", err)
	}
	scores, err := parseScores(args)
	if err != nil {
		return r.failf("%v", err)
	}

	battleID, err := r.service.StartBattle(ctx, app.StartRequest{
		BattleID:  optionalString(args, "id", ""),
		Location:  location,
		EntryEdge: edge,
		Attacker:  attacker,
		Defender:  defender,
		Scores:    scores,
	})
	if failed, err := r.checkExpectedError(args, err); failed || err != nil {
		return err
	}
	state.battleID = battleID
	for index, name := range slices.Concat(attackerNames, defenderNames) {
		state.names[name] = append(state.names[name], battle.CreatureID(index))
	}
	r.logf("battle %s started at %d (%s)", battleID, location, edge)
	return nil
}

func (r *Runner) runMoveStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	id, err := r.creatureArg(state, args, "creature")
	if err != nil {
		return err
	}
	hex, ok := readInt(args, "hex")
	if !ok {
		return r.failf("move hex is required")
	}
	err = r.service.Move(ctx, app.MoveRequest{BattleID: state.battleID, Creature: id, Hex: hex})
	_, err = r.checkExpectedError(args, err)
	return err
}

func (r *Runner) runAdvanceStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	phase, err := r.service.Advance(ctx, state.battleID)
	if failed, err := r.checkExpectedError(args, err); failed || err != nil {
		return err
	}
	if want, ok := args["phase"]; ok && want != phase.String() {
		return r.assertf("advance landed on %s, want %v", phase, want)
	}
	return nil
}

func (r *Runner) runStrikeStep(ctx context.Context, state *scenarioState, ranged bool, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	attacker, err := r.creatureArg(state, args, "attacker")
	if err != nil {
		return err
	}
	target, err := r.creatureArg(state, args, "target")
	if err != nil {
		return err
	}
	rolls, err := readIntList(args, "rolls")
	if err != nil {
		return r.failf("%v", err)
	}
	req := app.StrikeRequest{
		BattleID: state.battleID,
		Attacker: attacker,
		Target:   target,
		Rolls:    rolls,
		ToHit:    optionalInt(args, "to_hit", 0),
	}
	resolve := r.service.Strike
	if ranged {
		resolve = r.service.Rangestrike
	}
	strike, err := resolve(ctx, req)
	if failed, err := r.checkExpectedError(args, err); failed || err != nil {
		return err
	}
	r.logf("%v -> %v: rolls %v need %d, %d hits", args["attacker"], args["target"], strike.Rolls, strike.ToHit, strike.TotalHits)
	if want, ok := readInt(args, "expect_hits"); ok && strike.TotalHits != want {
		return r.assertf("strike hits = %d, want %d", strike.TotalHits, want)
	}
	if want, ok := readInt(args, "expect_to_hit"); ok && strike.ToHit != want {
		return r.assertf("strike to-hit = %d, want %d", strike.ToHit, want)
	}
	return nil
}

func (r *Runner) runCarryoverStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	target, err := r.creatureArg(state, args, "target")
	if err != nil {
		return err
	}
	err = r.service.Carryover(ctx, state.battleID, target)
	_, err = r.checkExpectedError(args, err)
	return err
}

func (r *Runner) runDeclineCarryoverStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	err := r.service.DeclineCarryover(ctx, state.battleID)
	_, err = r.checkExpectedError(args, err)
	return err
}

func (r *Runner) runExpectCreatureStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	id, err := r.creatureArg(state, args, "name")
	if err != nil {
		return err
	}
	var got battle.Creature
	if err := r.service.Inspect(ctx, state.battleID, func(b *battle.Battle) error {
		got, err = b.Creature(id)
		return err
	}); err != nil {
		return r.failf("inspect creature: %v", err)
	}

	name := args["name"]
	if want, ok := readInt(args, "hex"); ok && got.Hex != want {
		return r.assertf("%v hex = %d, want %d", name, got.Hex, want)
	}
	if want, ok := readInt(args, "wounds"); ok && got.Wounds != want {
		return r.assertf("%v wounds = %d, want %d", name, got.Wounds, want)
	}
	if want, ok := readInt(args, "strength"); ok && got.Strength() != want {
		return r.assertf("%v strength = %d, want %d", name, got.Strength(), want)
	}
	if want, ok := readBool(args, "alive"); ok && got.Alive() != want {
		return r.assertf("%v alive = %t, want %t", name, got.Alive(), want)
	}
	if want, ok := readBool(args, "removed"); ok && got.Removed() != want {
		return r.assertf("%v removed = %t, want %t", name, got.Removed(), want)
	}
	if want, ok := readBool(args, "struck"); ok && got.HasStruck != want {
		return r.assertf("%v struck = %t, want %t", name, got.HasStruck, want)
	}
	return nil
}

func (r *Runner) runExpectPhaseStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	want, err := battle.ParsePhase(requiredString(args, "phase"))
	if err != nil {
		return r.failf("%v", err)
	}
	var phase battle.Phase
	var round int
	if err := r.service.Inspect(ctx, state.battleID, func(b *battle.Battle) error {
		phase, round = b.Phase(), b.Round()
		return nil
	}); err != nil {
		return r.failf("inspect phase: %v", err)
	}
	if phase != want {
		return r.assertf("phase = %s, want %s", phase, want)
	}
	if wantRound, ok := readInt(args, "round"); ok && round != wantRound {
		return r.assertf("round = %d, want %d", round, wantRound)
	}
	return nil
}

func (r *Runner) runExpectReachableStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	id, err := r.creatureArg(state, args, "creature")
	if err != nil {
		return err
	}
	want, err := readIntList(args, "hexes")
	if err != nil {
		return r.failf("%v", err)
	}
	var got []int
	if err := r.service.Inspect(ctx, state.battleID, func(b *battle.Battle) error {
		if budget, ok := readInt(args, "budget"); ok {
			got, err = b.ReachableHexesWithin(id, budget)
		} else {
			got, err = b.ReachableHexes(id)
		}
		return err
	}); err != nil {
		return r.failf("inspect reachable hexes: %v", err)
	}
	if !sameInts(got, want) {
		return r.assertf("%v reachable = %v, want %v", args["creature"], sorted(got), sorted(want))
	}
	return nil
}

// runExpectTargetsStep compares a set of creatures against one of the
// battle's target queries: "engaged" and "rangestrike" need a creature,
// "carryover" and "pending" read the battle as a whole.
func (r *Runner) runExpectTargetsStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	kind := optionalString(args, "kind", "engaged")
	want, err := r.creatureList(state, args, "targets")
	if err != nil {
		return err
	}
	var subject battle.CreatureID
	if kind == "engaged" || kind == "rangestrike" {
		if subject, err = r.creatureArg(state, args, "creature"); err != nil {
			return err
		}
	}

	var got []int
	err = r.service.Inspect(ctx, state.battleID, func(b *battle.Battle) error {
		switch kind {
		case "engaged":
			creatures, err := b.EngagedWith(subject, false)
			got = creatureIDs(creatures)
			return err
		case "rangestrike":
			targets, err := b.RangestrikeTargets(subject)
			for _, target := range targets {
				got = append(got, int(target.Target))
			}
			return err
		case "carryover":
			got = creatureIDs(b.CarryoverTargets())
			return nil
		case "pending":
			got = creatureIDs(b.PendingStrikers())
			return nil
		default:
			return r.failf("expect_targets kind %q is not supported", kind)
		}
	})
	if err != nil {
		return r.failf("inspect %s targets: %v", kind, err)
	}
	if !sameInts(got, want) {
		return r.assertf("%s targets = %v, want %v", kind, r.names(state, got), r.names(state, want))
	}
	return nil
}

func (r *Runner) runExpectOutcomeStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureBattle(state); err != nil {
		return err
	}
	want, err := battle.ParseOutcome(requiredString(args, "outcome"))
	if err != nil {
		return r.failf("%v", err)
	}
	var got battle.Outcome
	if err := r.service.Inspect(ctx, state.battleID, func(b *battle.Battle) error {
		got = b.Outcome()
		return nil
	}); err != nil {
		return r.failf("inspect outcome: %v", err)
	}
	if got != want {
		return r.assertf("outcome = %s, want %s", got, want)
	}
	return nil
}

// parseRoster reads a side table. Creatures are kind names or tables with a
// kind and an optional script name; names default to the lowercase kind.
func parseRoster(args map[string]any, side string) (battle.Roster, []string, error) {
	table, ok := args[side].(map[string]any)
	if !ok {
		return battle.Roster{}, nil, errorf("battle %s is required", side)
	}
	roster := battle.Roster{Player: optionalString(table, "player", side)}
	entries, _ := table["creatures"].([]any)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		var kindName, name string
		switch value := entry.(type) {
		case string:
			kindName = value
		case map[string]any:
			kindName = requiredString(value, "kind")
			name = optionalString(value, "name", "")
		default:
			return battle.Roster{}, nil, errorf("battle %s creature %v is invalid", side, entry)
		}
		kind, err := creature.ParseKind(kindName)
		if err != nil {
			return battle.Roster{}, nil, errorf("battle %s: %v", side, err)
		}
		if name == "" {
			name = strings.ToLower(kind.String())
		}
		roster.Kinds = append(roster.Kinds, kind)
		names = append(names, name)
	}
	return roster, names, nil
}

func parseScores(args map[string]any) (map[string]int, error) {
	raw, ok := args["scores"]
	if !ok {
		return nil, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		if list, isList := raw.([]any); isList && len(list) == 0 {
			return nil, nil
		}
		return nil, errorf("battle scores must map players to scores")
	}
	scores := make(map[string]int, len(table))
	for player := range table {
		score, ok := readInt(table, player)
		if !ok {
			return nil, errorf("battle score for %s must be an integer", player)
		}
		scores[player] = score
	}
	return scores, nil
}
