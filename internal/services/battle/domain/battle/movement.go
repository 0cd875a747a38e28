package battle

import (
	"fmt"
	"slices"
	"sort"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

// unattainable is the cost of a step that can never be taken.
const unattainable = 99

// ReachableHexes returns the hexes a creature may end its move on, spending at
// most its skill in movement points from where it started the phase.
func (b *Battle) ReachableHexes(id CreatureID) ([]int, error) {
	c, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	return b.reachable(c, c.Stats().Skill), nil
}

// ReachableHexesWithin is ReachableHexes with an explicit movement budget.
func (b *Battle) ReachableHexesWithin(id CreatureID, budget int) ([]int, error) {
	c, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	if budget < 0 {
		return nil, precondition("movement budget %d is negative", budget)
	}
	return b.reachable(c, budget), nil
}

// MoveCreature places an active creature on a hex it can reach this phase.
func (b *Battle) MoveCreature(id CreatureID, hex int) error {
	c, err := b.lookup(id)
	if err != nil {
		return err
	}
	if !battleboard.IsBoardHex(hex) && !battleboard.IsEntryHex(hex) {
		return fmt.Errorf("%w: %d", battleboard.ErrUnknownHex, hex)
	}
	if b.phase.Type() != PhaseTypeMove {
		return precondition("creatures cannot move during %s", b.phase)
	}
	if c.Side != b.ActiveSide() {
		return precondition("%s %d cannot move during %s", c.Kind, int(c.ID), b.phase)
	}
	if !slices.Contains(b.reachable(c, c.Stats().Skill), hex) {
		return precondition("%s %d cannot reach hex %d", c.Kind, int(c.ID), hex)
	}
	c.Hex = hex
	return nil
}

// reachable runs a depth-first search from the move start hex. A hex is
// expanded again only when reached with more budget than any earlier visit.
// The start hex is offered back unless another creature has since taken it.
func (b *Battle) reachable(c *Creature, budget int) []int {
	start := c.InitialHex
	if start == battleboard.Removed {
		return []int{}
	}

	type step struct {
		hex       int
		remaining int
	}
	landable := map[int]struct{}{}
	if occupant := b.occupant(start); occupant == nil || occupant.ID == c.ID {
		landable[start] = struct{}{}
	}
	best := map[int]int{start: budget}
	stack := []step{{hex: start, remaining: budget}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		adjacent, err := battleboard.Adjacent(current.hex)
		if err != nil {
			continue
		}
		for _, next := range adjacent {
			cost := b.movementCost(c, current.hex, next)
			if cost > current.remaining {
				continue
			}
			left := current.remaining - cost
			if seen, ok := best[next]; ok && seen >= left {
				continue
			}
			best[next] = left
			if b.canLand(c, next) {
				landable[next] = struct{}{}
			}
			if left > 0 {
				stack = append(stack, step{hex: next, remaining: left})
			}
		}
	}

	out := make([]int, 0, len(landable))
	for hex := range landable {
		out = append(out, hex)
	}
	sort.Ints(out)
	return out
}

// movementCost returns the points needed to step from origin into hex.
func (b *Battle) movementCost(c *Creature, origin, hex int) int {
	stats := c.Stats()
	if occupant := b.occupant(hex); occupant != nil && occupant.ID != c.ID && !stats.Flies {
		return unattainable
	}

	cost := 1
	if !stats.Flies {
		up := b.board.EdgeHazard(origin, hex)
		down := b.board.EdgeHazard(hex, origin)
		switch {
		case up == battleboard.EdgeCliff || down == battleboard.EdgeCliff:
			return unattainable
		case up == battleboard.EdgeWall:
			cost++
		case up == battleboard.EdgeSlope && !creature.EdgeNative(c.Kind, up):
			cost++
		}
	}

	hazard := b.board.Hazard(hex)
	native := creature.Native(c.Kind, hazard)
	switch hazard {
	case battleboard.HazardBramble, battleboard.HazardDrift:
		if !native {
			cost++
		}
	case battleboard.HazardBog, battleboard.HazardTree:
		if !native && !stats.Flies {
			return unattainable
		}
	case battleboard.HazardSand:
		if !native && !stats.Flies {
			cost++
		}
	case battleboard.HazardVolcano:
		if !native {
			return unattainable
		}
	}
	return cost
}

// canLand reports whether a creature may end its move on hex. It assumes the
// hex can be entered.
func (b *Battle) canLand(c *Creature, hex int) bool {
	switch hazard := b.board.Hazard(hex); {
	case hazard == battleboard.HazardTree:
		return false
	case hazard == battleboard.HazardBog && !creature.Native(c.Kind, hazard):
		return false
	}
	if occupant := b.occupant(hex); occupant != nil && occupant.ID != c.ID {
		return false
	}
	return true
}
