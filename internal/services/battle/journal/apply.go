package journal

import (
	"fmt"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
)

// Start builds a new battle from a battle.started payload.
func Start(p StartedPayload) (*battle.Battle, error) {
	edge, err := masterboard.ParseHexEdge(p.EntryEdge)
	if err != nil {
		return nil, err
	}
	attacking, err := p.Attacker.Roster()
	if err != nil {
		return nil, err
	}
	defending, err := p.Defender.Roster()
	if err != nil {
		return nil, err
	}
	return battle.NewBattle(p.Location, edge, attacking, defending, p.ScoreLookup())
}

// Apply runs the mutator recorded by evt. A battle.started event needs a nil
// battle and returns the new one; every other event mutates b in place.
func Apply(b *battle.Battle, evt Event) (*battle.Battle, error) {
	if evt.Type == TypeBattleStarted {
		if b != nil {
			return b, fmt.Errorf("battle %s is already started", evt.BattleID)
		}
		var p StartedPayload
		if err := evt.Decode(&p); err != nil {
			return nil, err
		}
		return Start(p)
	}
	if b == nil {
		return nil, fmt.Errorf("battle %s has no %s event before seq %d", evt.BattleID, TypeBattleStarted, evt.Seq)
	}

	switch evt.Type {
	case TypeCreatureMoved:
		var p MovedPayload
		if err := evt.Decode(&p); err != nil {
			return b, err
		}
		return b, b.MoveCreature(battle.CreatureID(p.Creature), p.Hex)
	case TypePhaseAdvanced:
		var p PhaseAdvancedPayload
		if err := evt.Decode(&p); err != nil {
			return b, err
		}
		if err := b.AdvancePhase(); err != nil {
			return b, err
		}
		if p.Phase != "" && (b.Phase().String() != p.Phase || b.Round() != p.Round) {
			return b, fmt.Errorf("advance reached %s round %d, recorded %s round %d", b.Phase(), b.Round(), p.Phase, p.Round)
		}
		return b, nil
	case TypeStrikeResolved, TypeRangestrikeResolved:
		var p StrikePayload
		if err := evt.Decode(&p); err != nil {
			return b, err
		}
		attacker, target := battle.CreatureID(p.Attacker), battle.CreatureID(p.Target)
		if evt.Type == TypeRangestrikeResolved {
			return b, b.Rangestrike(attacker, target, p.Rolls, p.ToHit)
		}
		return b, b.Strike(attacker, target, p.Rolls, p.ToHit)
	case TypeCarryoverAssigned:
		var p CarryoverPayload
		if err := evt.Decode(&p); err != nil {
			return b, err
		}
		return b, b.Carryover(battle.CreatureID(p.Target))
	case TypeCarryoverDeclined:
		return b, b.DeclineCarryover()
	default:
		return b, fmt.Errorf("%w: %q", ErrUnknownType, evt.Type)
	}
}
