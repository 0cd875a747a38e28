package battle

import (
	"fmt"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
)

// Phase is one step of the six-phase battle round.
type Phase int

const (
	PhaseDefenderMove Phase = iota
	PhaseDefenderStrike
	PhaseAttackerStrikeback
	PhaseAttackerMove
	PhaseAttackerStrike
	PhaseDefenderStrikeback
)

// PhaseType groups phases by what creatures may do in them.
type PhaseType int

const (
	PhaseTypeMove PhaseType = iota
	PhaseTypeStrike
	PhaseTypeStrikeback
)

var phaseNames = map[Phase]string{
	PhaseDefenderMove:       "defender_move",
	PhaseDefenderStrike:     "defender_strike",
	PhaseAttackerStrikeback: "attacker_strikeback",
	PhaseAttackerMove:       "attacker_move",
	PhaseAttackerStrike:     "attacker_strike",
	PhaseDefenderStrikeback: "defender_strikeback",
}

var phaseTitles = map[Phase]string{
	PhaseDefenderMove:       "Defender's Move",
	PhaseDefenderStrike:     "Defender's Strikes",
	PhaseAttackerStrikeback: "Attacker's Strikebacks",
	PhaseAttackerMove:       "Attacker's Move",
	PhaseAttackerStrike:     "Attacker's Strikes",
	PhaseDefenderStrikeback: "Defender's Strikebacks",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Title is the English display name of the phase.
func (p Phase) Title() string {
	return phaseTitles[p]
}

// ParsePhase resolves a phase from its snake_case name.
func ParsePhase(value string) (Phase, error) {
	for phase, name := range phaseNames {
		if name == value {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("phase %q is not supported", value)
}

// Type reports whether the phase is for moving, striking or striking back.
func (p Phase) Type() PhaseType {
	switch p {
	case PhaseDefenderMove, PhaseAttackerMove:
		return PhaseTypeMove
	case PhaseDefenderStrike, PhaseAttackerStrike:
		return PhaseTypeStrike
	default:
		return PhaseTypeStrikeback
	}
}

// Side returns the side acting during the phase.
func (p Phase) Side() Side {
	switch p {
	case PhaseDefenderMove, PhaseDefenderStrike, PhaseDefenderStrikeback:
		return SideDefender
	default:
		return SideAttacker
	}
}

func (p Phase) next() Phase {
	if p == PhaseDefenderStrikeback {
		return PhaseDefenderMove
	}
	return p + 1
}

// PendingStrikers returns the active creatures that still owe a strike this
// phase: on the board, engaged and not yet struck. In strike phases they must
// also be alive; creatures slain during the strike still strike back.
func (b *Battle) PendingStrikers() []Creature {
	if b.phase.Type() == PhaseTypeMove {
		return nil
	}
	var out []Creature
	for _, c := range b.sideCreatures(b.ActiveSide()) {
		if !c.OnBoard() || c.HasStruck {
			continue
		}
		if b.phase.Type() == PhaseTypeStrike && !c.Alive() {
			continue
		}
		if len(b.engagedWith(c, false)) == 0 {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// AdvancePhase moves the battle to the next phase, running the exit hooks of
// the current phase and the entry hooks of the next one. Strike phases with
// nothing to do are skipped.
func (b *Battle) AdvancePhase() error {
	if b.Outcome().Finished() {
		return precondition("battle is already over")
	}
	if pending := b.PendingStrikers(); len(pending) > 0 {
		return precondition("%d creatures still have to strike in %s", len(pending), b.phase)
	}
	b.advance()
	for b.skippable() && !b.Outcome().Finished() {
		b.advance()
	}
	return nil
}

func (b *Battle) advance() {
	switch b.phase.Type() {
	case PhaseTypeMove:
		b.exitMove()
	case PhaseTypeStrike:
		b.strike = nil
	case PhaseTypeStrikeback:
		b.exitStrikeback()
	}

	if b.phase == PhaseDefenderStrikeback {
		b.round++
	}
	b.phase = b.phase.next()

	switch b.phase.Type() {
	case PhaseTypeMove:
		b.enterMove()
	case PhaseTypeStrike:
		b.enterStrike()
	case PhaseTypeStrikeback:
		b.resetStrikes()
	}
}

// exitMove takes creatures that never left their entry hex off the board.
func (b *Battle) exitMove() {
	for _, c := range b.sideCreatures(b.ActiveSide()) {
		if battleboard.IsEntryHex(c.Hex) {
			c.Hex = battleboard.Removed
		}
	}
}

func (b *Battle) exitStrikeback() {
	b.strike = nil
	for i := range b.creatures {
		if !b.creatures[i].Alive() {
			b.creatures[i].Hex = battleboard.Removed
		}
	}
}

func (b *Battle) enterMove() {
	for _, c := range b.sideCreatures(b.ActiveSide()) {
		c.InitialHex = c.Hex
	}
}

// enterStrike clears the previous strike and resets strike flags. On tundra
// every creature standing in a drift takes a wound.
func (b *Battle) enterStrike() {
	b.resetStrikes()
	if b.terrain != masterboard.TerrainTundra {
		return
	}
	for i := range b.creatures {
		c := &b.creatures[i]
		if c.OnBoard() && c.Alive() && b.board.Hazard(c.Hex) == battleboard.HazardDrift {
			c.Wounds++
		}
	}
}

func (b *Battle) resetStrikes() {
	b.strike = nil
	for i := range b.creatures {
		b.creatures[i].HasStruck = false
	}
}

// skippable reports whether the current phase has nothing for the active side
// to do.
func (b *Battle) skippable() bool {
	if b.phase.Type() == PhaseTypeMove {
		return false
	}
	if len(b.PendingStrikers()) > 0 {
		return false
	}
	if b.phase.Type() == PhaseTypeStrikeback {
		return true
	}
	for _, c := range b.sideCreatures(b.ActiveSide()) {
		if !c.HasStruck && len(b.rangestrikeTargets(c)) > 0 {
			return false
		}
	}
	return true
}
