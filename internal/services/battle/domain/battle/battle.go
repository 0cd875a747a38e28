// Package battle runs a tactical battle between two stacks: phase sequencing,
// creature movement, engagement, melee strikes with carryover and
// rangestrikes. Dice are always supplied by the caller so a battle replays
// identically from the same inputs.
package battle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
)

// ErrPrecondition indicates a call that is illegal in the current battle
// state. The battle is left untouched when it is returned.
var ErrPrecondition = errors.New("battle precondition failed")

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Side is one of the two parties of a battle.
type Side int

const (
	SideAttacker Side = iota
	SideDefender
)

func (s Side) String() string {
	switch s {
	case SideAttacker:
		return "attacker"
	case SideDefender:
		return "defender"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// ParseSide resolves "attacker" or "defender".
func ParseSide(value string) (Side, error) {
	switch value {
	case "attacker":
		return SideAttacker, nil
	case "defender":
		return SideDefender, nil
	default:
		return 0, fmt.Errorf("side %q is not supported", value)
	}
}

// Roster is the stack a player brings to a battle.
type Roster struct {
	Player string
	Kinds  []creature.Kind
}

// ScoreLookup returns the current score of a player.
type ScoreLookup func(player string) int

// Battle is the state of one tactical battle. It is not safe for concurrent
// use; a single driver owns it.
type Battle struct {
	location  int
	terrain   masterboard.Terrain
	entryEdge masterboard.HexEdge
	attacker  string
	defender  string
	round     int
	phase     Phase
	creatures []Creature
	strike    *ActiveStrike
	board     *battleboard.Board
}

// NewBattle starts a battle at a masterboard location. Attackers wait on the
// bottom entry hex and defenders on the top one. Tower battles always use the
// second entry edge.
func NewBattle(location int, entryEdge masterboard.HexEdge, attacking, defending Roster, scores ScoreLookup) (*Battle, error) {
	terrain, err := masterboard.Default().Terrain(location)
	if err != nil {
		return nil, err
	}
	board, err := battleboard.ForTerrain(terrain)
	if err != nil {
		return nil, err
	}
	if entryEdge < masterboard.EdgeFirst || entryEdge > masterboard.EdgeThird {
		return nil, precondition("entry edge %d is invalid", int(entryEdge))
	}
	if attacking.Player == "" || defending.Player == "" {
		return nil, precondition("both rosters need a player")
	}
	if attacking.Player == defending.Player {
		return nil, precondition("player %q cannot fight itself", attacking.Player)
	}
	if len(attacking.Kinds) == 0 || len(defending.Kinds) == 0 {
		return nil, precondition("both rosters need at least one creature")
	}
	if terrain == masterboard.TerrainTower {
		entryEdge = masterboard.EdgeSecond
	}
	if scores == nil {
		scores = func(string) int { return 0 }
	}

	b := &Battle{
		location:  location,
		terrain:   terrain,
		entryEdge: entryEdge,
		attacker:  attacking.Player,
		defender:  defending.Player,
		phase:     PhaseDefenderMove,
		board:     board,
	}
	for _, roster := range []struct {
		Roster
		side Side
		hex  int
	}{
		{attacking, SideAttacker, battleboard.EntryBottom},
		{defending, SideDefender, battleboard.EntryTop},
	} {
		score := scores(roster.Player)
		for _, kind := range roster.Kinds {
			if _, err := creature.Lookup(kind); err != nil {
				return nil, err
			}
			b.creatures = append(b.creatures, Creature{
				ID:         CreatureID(len(b.creatures)),
				Kind:       kind,
				Side:       roster.side,
				Player:     roster.Player,
				Score:      score,
				Hex:        roster.hex,
				InitialHex: roster.hex,
			})
		}
	}
	return b, nil
}

// Location returns the masterboard hex the battle is fought on.
func (b *Battle) Location() int { return b.location }

// Terrain returns the terrain of the battle location.
func (b *Battle) Terrain() masterboard.Terrain { return b.terrain }

// EntryEdge returns the masterboard edge the attacker came through.
func (b *Battle) EntryEdge() masterboard.HexEdge { return b.entryEdge }

// Board returns the tactical board for the battle terrain.
func (b *Battle) Board() *battleboard.Board { return b.board }

// Round returns the zero-based round counter.
func (b *Battle) Round() int { return b.round }

// Phase returns the current phase.
func (b *Battle) Phase() Phase { return b.phase }

// Player returns the player fighting for side.
func (b *Battle) Player(side Side) string {
	if side == SideAttacker {
		return b.attacker
	}
	return b.defender
}

// ActiveSide returns the side acting in the current phase.
func (b *Battle) ActiveSide() Side {
	return b.phase.Side()
}

// Creatures returns a copy of the roster in id order.
func (b *Battle) Creatures() []Creature {
	return slices.Clone(b.creatures)
}

// Creature returns a copy of one creature.
func (b *Battle) Creature(id CreatureID) (Creature, error) {
	c, err := b.lookup(id)
	if err != nil {
		return Creature{}, err
	}
	return *c, nil
}

// ActiveStrike returns a copy of the strike being resolved, if any.
func (b *Battle) ActiveStrike() (ActiveStrike, bool) {
	if b.strike == nil {
		return ActiveStrike{}, false
	}
	return b.strike.clone(), true
}

func (b *Battle) lookup(id CreatureID) (*Creature, error) {
	if id < 0 || int(id) >= len(b.creatures) {
		return nil, precondition("creature %d is not in this battle", int(id))
	}
	return &b.creatures[id], nil
}

// occupant returns the creature standing on a board hex. Entry and removed
// hexes hold any number of creatures and are never reported as occupied.
func (b *Battle) occupant(hex int) *Creature {
	if !battleboard.IsBoardHex(hex) {
		return nil
	}
	for i := range b.creatures {
		if b.creatures[i].Hex == hex {
			return &b.creatures[i]
		}
	}
	return nil
}

func (b *Battle) sideCreatures(side Side) []*Creature {
	var out []*Creature
	for i := range b.creatures {
		if b.creatures[i].Side == side {
			out = append(out, &b.creatures[i])
		}
	}
	return out
}
