package battle

import "github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"

// EngagedWith returns the enemies in melee contact with a creature. During
// move phases contact is measured from where the creature started the phase.
// A cliff between two hexes prevents contact. Dead creatures still on the
// board are included only when includeDead is set.
func (b *Battle) EngagedWith(id CreatureID, includeDead bool) ([]Creature, error) {
	c, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	engaged := b.engagedWith(c, includeDead)
	out := make([]Creature, 0, len(engaged))
	for _, enemy := range engaged {
		out = append(out, *enemy)
	}
	return out, nil
}

// IsEngaged reports whether a creature is in contact with a living enemy.
func (b *Battle) IsEngaged(id CreatureID) (bool, error) {
	c, err := b.lookup(id)
	if err != nil {
		return false, err
	}
	return len(b.engagedWith(c, false)) > 0, nil
}

func (b *Battle) engagedWith(c *Creature, includeDead bool) []*Creature {
	hex := c.Hex
	if b.phase.Type() == PhaseTypeMove {
		hex = c.InitialHex
	}
	if !battleboard.IsBoardHex(hex) {
		return nil
	}

	var out []*Creature
	for _, enemy := range b.sideCreatures(c.Side.Opponent()) {
		if !enemy.OnBoard() || (!includeDead && !enemy.Alive()) {
			continue
		}
		if !battleboard.IsAdjacent(hex, enemy.Hex) {
			continue
		}
		if b.board.EdgeHazardBetween(hex, enemy.Hex) == battleboard.EdgeCliff {
			continue
		}
		out = append(out, enemy)
	}
	return out
}
