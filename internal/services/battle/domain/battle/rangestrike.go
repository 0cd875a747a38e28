package battle

import (
	"slices"
	"sort"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

const (
	minRange       = 2
	maxRange       = 3
	longRange      = 4
	longRangeSkill = 4
)

// RangestrikeTarget is an enemy a creature can rangestrike. Adjustment lowers
// the to-hit threshold when positive and raises it when negative.
type RangestrikeTarget struct {
	Target     CreatureID
	TargetHex  int
	Adjustment int
	LongRange  bool
}

// RangestrikeTargets lists the enemies a creature can rangestrike, one entry
// per target with the best adjustment over every valid line of sight, in
// target hex order. Creatures that cannot rangestrike, are engaged or are off
// the board have no targets.
func (b *Battle) RangestrikeTargets(id CreatureID) ([]RangestrikeTarget, error) {
	c, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	return b.rangestrikeTargets(c), nil
}

func (b *Battle) rangestrikeTargets(a *Creature) []RangestrikeTarget {
	stats := a.Stats()
	if !stats.Rangestrike || !a.OnBoard() || !a.Alive() || len(b.engagedWith(a, false)) > 0 {
		return nil
	}
	reach := maxRange
	if stats.Skill >= longRangeSkill {
		reach = longRange
	}

	best := map[int]RangestrikeTarget{}
	for _, path := range sightLines(a.Hex, reach) {
		terminal := path[len(path)-1]
		target := b.occupant(terminal)
		if target == nil || target.Side == a.Side || !target.Alive() {
			continue
		}
		if target.Stats().Lord && !creature.StrikesLords(a.Kind) {
			continue
		}
		adjustment, ok := 0, true
		if !creature.StrikesLords(a.Kind) {
			adjustment, ok = b.sightAdjustment(a, target, path)
		}
		if !ok {
			continue
		}
		if existing, found := best[terminal]; found && adjustment <= existing.Adjustment {
			continue
		}
		best[terminal] = RangestrikeTarget{
			Target:     target.ID,
			TargetHex:  terminal,
			Adjustment: adjustment,
			LongRange:  len(path) == longRange,
		}
	}

	out := make([]RangestrikeTarget, 0, len(best))
	for _, target := range best {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetHex < out[j].TargetHex })
	return out
}

// sightLines enumerates the paths of minRange to reach steps leaving from. A
// path keeps within one direction of a centre heading and must end as far from
// the origin as it has steps, so it never bends back. Paths exclude the origin.
func sightLines(from, reach int) [][]int {
	var out [][]int
	var walk func(path []int, centre int)
	walk = func(path []int, centre int) {
		current := from
		if len(path) > 0 {
			current = path[len(path)-1]
		}
		if len(path) >= minRange && battleboard.Distance(from, current) == len(path) {
			out = append(out, slices.Clone(path))
		}
		if len(path) == reach {
			return
		}
		for _, direction := range []int{centre - 1, centre, centre + 1} {
			next, ok := battleboard.Neighbour(current, direction)
			if !ok {
				continue
			}
			walk(append(path, next), centre)
		}
	}
	for centre := 0; centre < 6; centre++ {
		walk(make([]int, 0, reach), centre)
	}
	return out
}

// sightAdjustment checks one line of sight between attacker and target and
// returns its to-hit adjustment, or false when the line is blocked.
func (b *Battle) sightAdjustment(a, target *Creature, path []int) (int, bool) {
	terminal := path[len(path)-1]
	brambleNative := creature.Native(a.Kind, battleboard.HazardBramble)

	adjustment := 0
	if b.board.Hazard(a.Hex) == battleboard.HazardBramble && !brambleNative {
		adjustment--
	}
	for _, hex := range path[:len(path)-1] {
		if b.occupant(hex) != nil {
			return 0, false
		}
		switch b.board.Hazard(hex) {
		case battleboard.HazardTree:
			return 0, false
		case battleboard.HazardBramble:
			if !brambleNative {
				adjustment--
			}
		}
	}
	if b.board.Hazard(terminal) == battleboard.HazardBramble &&
		creature.Native(target.Kind, battleboard.HazardBramble) && !brambleNative {
		adjustment--
	}
	if b.board.Hazard(a.Hex) == battleboard.HazardVolcano && creature.Native(a.Kind, battleboard.HazardVolcano) {
		adjustment++
	}

	var slopes []int
	walls := 0
	origin := a.Hex
	for _, hex := range path {
		hazard, upper, upward := b.crossing(origin, hex)
		origin = hex
		switch hazard {
		case battleboard.EdgeCliff, battleboard.EdgeDune:
			if upper != a.Hex && upper != terminal {
				return 0, false
			}
		case battleboard.EdgeSlope:
			slopes = append(slopes, upper)
		case battleboard.EdgeWall:
			walls++
			if upward {
				adjustment--
			}
		}
	}
	if len(slopes) >= 3 && (slopes[0] != a.Hex || slopes[len(slopes)-1] != terminal) {
		return 0, false
	}
	switch {
	case walls > 2:
		return 0, false
	case walls == 2:
		inner, ok := b.board.DoubleWallHex()
		if !ok || len(path) <= minRange || (a.Hex != inner && terminal != inner) {
			return 0, false
		}
	}
	return adjustment, true
}

// crossing returns the edge hazard met stepping from one hex into the next,
// the upper hex of that edge and whether the step climbs.
func (b *Battle) crossing(from, to int) (battleboard.EdgeHazard, int, bool) {
	fromElevation, toElevation := b.board.Elevation(from), b.board.Elevation(to)
	switch {
	case toElevation > fromElevation:
		return b.board.EdgeHazard(from, to), to, true
	case toElevation < fromElevation:
		return b.board.EdgeHazard(to, from), from, false
	}
	if hazard := b.board.EdgeHazard(from, to); hazard != battleboard.EdgeNone {
		return hazard, to, true
	}
	return b.board.EdgeHazard(to, from), from, false
}
