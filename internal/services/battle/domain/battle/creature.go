package battle

import (
	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

// CreatureID is the position of a creature in the battle roster.
type CreatureID int

// Creature is one fighter in a battle. Creatures never leave the roster; a
// removed creature stands on battleboard.Removed.
type Creature struct {
	ID     CreatureID
	Kind   creature.Kind
	Side   Side
	Player string
	// Score is the owner's score when the battle began.
	Score      int
	Hex        int
	Wounds     int
	InitialHex int
	HasStruck  bool
}

// Stats returns the catalog attributes of the creature.
func (c Creature) Stats() creature.Stats {
	return creature.MustLookup(c.Kind)
}

// Strength returns the full strength of the creature for this battle.
func (c Creature) Strength() int {
	return creature.Strength(c.Kind, c.Score)
}

// RemainingHP returns strength minus wounds. It may drop to zero or below
// before the creature is taken off the board.
func (c Creature) RemainingHP() int {
	return c.Strength() - c.Wounds
}

// Alive reports whether the creature still has hit points.
func (c Creature) Alive() bool {
	return c.RemainingHP() > 0
}

// Removed reports whether the creature has left the battlefield.
func (c Creature) Removed() bool {
	return c.Hex == battleboard.Removed
}

// OnBoard reports whether the creature stands on a playable hex.
func (c Creature) OnBoard() bool {
	return battleboard.IsBoardHex(c.Hex)
}
