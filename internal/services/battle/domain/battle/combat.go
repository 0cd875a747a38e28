package battle

import (
	"slices"

	"github.com/louisbranch/warlord/internal/core/dice"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

const (
	minToHit = 2
	maxToHit = 6
)

// StrikeAdjustment modifies a strike. A positive ToHit makes hits harder;
// Dice adds or removes dice from the striker's pool.
type StrikeAdjustment struct {
	ToHit int
	Dice  int
}

// Add combines two adjustments without clamping.
func (a StrikeAdjustment) Add(other StrikeAdjustment) StrikeAdjustment {
	return StrikeAdjustment{ToHit: a.ToHit + other.ToHit, Dice: a.Dice + other.Dice}
}

// CarryoverHit records hits moved from the primary target to another enemy.
type CarryoverHit struct {
	Target    CreatureID
	TargetHex int
	Hits      int
}

// ActiveStrike is the strike currently being resolved.
type ActiveStrike struct {
	Attacker    CreatureID
	AttackerHex int
	Target      CreatureID
	TargetHex   int
	ToHit       int
	Rolls       []int
	TotalHits   int
	// TargetHits is the part of TotalHits applied to the primary target.
	TargetHits        int
	Carryovers        []CarryoverHit
	CarryoverDeclined bool
	Ranged            bool
}

// AssignedHits returns the hits applied to any target so far.
func (s ActiveStrike) AssignedHits() int {
	total := s.TargetHits
	for _, hit := range s.Carryovers {
		total += hit.Hits
	}
	return total
}

// UnassignedHits returns the hits still available for carryover.
func (s ActiveStrike) UnassignedHits() int {
	return s.TotalHits - s.AssignedHits()
}

func (s *ActiveStrike) clone() ActiveStrike {
	out := *s
	out.Rolls = slices.Clone(s.Rolls)
	out.Carryovers = slices.Clone(s.Carryovers)
	return out
}

// ToHitRaw is the lowest roll that hits before terrain is considered.
func (b *Battle) ToHitRaw(attacker, defender CreatureID) (int, error) {
	a, d, err := b.pair(attacker, defender)
	if err != nil {
		return 0, err
	}
	return toHitRaw(a, d), nil
}

// ToHitAdjusted is the lowest roll that hits once terrain is applied, clamped
// between 2 and 6.
func (b *Battle) ToHitAdjusted(attacker, defender CreatureID) (int, error) {
	a, d, err := b.pair(attacker, defender)
	if err != nil {
		return 0, err
	}
	return b.toHitAdjusted(a, d), nil
}

// StrikeAdjustment returns the terrain modifiers for a melee strike.
func (b *Battle) StrikeAdjustment(attacker, defender CreatureID) (StrikeAdjustment, error) {
	a, d, err := b.pair(attacker, defender)
	if err != nil {
		return StrikeAdjustment{}, err
	}
	return b.strikeAdjustment(a, d), nil
}

// StrikeDice returns how many dice a melee strike rolls.
func (b *Battle) StrikeDice(attacker, defender CreatureID) (int, error) {
	a, d, err := b.pair(attacker, defender)
	if err != nil {
		return 0, err
	}
	return max(a.Strength()+b.strikeAdjustment(a, d).Dice, 0), nil
}

func (b *Battle) pair(attacker, defender CreatureID) (*Creature, *Creature, error) {
	a, err := b.lookup(attacker)
	if err != nil {
		return nil, nil, err
	}
	d, err := b.lookup(defender)
	if err != nil {
		return nil, nil, err
	}
	return a, d, nil
}

func toHitRaw(a, d *Creature) int {
	return 4 - (a.Stats().Skill - d.Stats().Skill)
}

func (b *Battle) toHitAdjusted(a, d *Creature) int {
	return clampToHit(toHitRaw(a, d) + b.strikeAdjustment(a, d).ToHit)
}

func clampToHit(v int) int {
	return min(max(v, minToHit), maxToHit)
}

func (b *Battle) strikeAdjustment(a, d *Creature) StrikeAdjustment {
	strikerHazard := b.board.Hazard(a.Hex)
	strikerNative := creature.Native(a.Kind, strikerHazard)
	targetHazard := b.board.Hazard(d.Hex)

	var adjustment StrikeAdjustment
	switch {
	case strikerHazard == battleboard.HazardBramble && !strikerNative:
		adjustment = StrikeAdjustment{ToHit: 1}
	case targetHazard == battleboard.HazardBramble && creature.Native(d.Kind, targetHazard) &&
		!creature.Native(a.Kind, targetHazard):
		adjustment = StrikeAdjustment{ToHit: 1}
	case strikerHazard == battleboard.HazardVolcano && strikerNative:
		adjustment = StrikeAdjustment{Dice: 2}
	}
	return adjustment.Add(b.edgeAdjustment(a, d))
}

// edgeAdjustment applies the hazard on the edge between striker and target,
// read in the direction of the strike.
func (b *Battle) edgeAdjustment(a, d *Creature) StrikeAdjustment {
	up := b.board.Elevation(a.Hex) <= b.board.Elevation(d.Hex)
	var hazard battleboard.EdgeHazard
	if up {
		hazard = b.board.EdgeHazard(a.Hex, d.Hex)
	} else {
		hazard = b.board.EdgeHazard(d.Hex, a.Hex)
	}
	native := creature.EdgeNative(a.Kind, hazard)

	switch hazard {
	case battleboard.EdgeSlope:
		if native && !up {
			return StrikeAdjustment{Dice: 1}
		}
		if !native && up {
			return StrikeAdjustment{ToHit: 1}
		}
	case battleboard.EdgeDune:
		if native && !up {
			return StrikeAdjustment{Dice: 2}
		}
		if !native && up {
			return StrikeAdjustment{Dice: -1}
		}
	case battleboard.EdgeWall:
		if up {
			return StrikeAdjustment{ToHit: 1}
		}
		return StrikeAdjustment{ToHit: -1}
	}
	return StrikeAdjustment{}
}

// Strike resolves a melee strike. A toHit of zero uses the computed threshold;
// a caller may instead pick a harder threshold to keep hits for carryover.
// Hits beyond the defender's remaining hit points stay on the strike for
// carryover.
func (b *Battle) Strike(attacker, defender CreatureID, rolls []int, toHit int) error {
	a, d, err := b.pair(attacker, defender)
	if err != nil {
		return err
	}
	if b.phase.Type() == PhaseTypeMove {
		return precondition("creatures cannot strike during %s", b.phase)
	}
	if err := b.checkStriker(a); err != nil {
		return err
	}
	if !slices.Contains(b.engagedWith(a, false), d) {
		return precondition("%s %d is not engaged with %s %d", a.Kind, int(a.ID), d.Kind, int(d.ID))
	}
	threshold, err := chooseToHit(b.toHitAdjusted(a, d), toHit)
	if err != nil {
		return err
	}
	if err := checkRolls(rolls); err != nil {
		return err
	}
	b.resolve(a, d, rolls, threshold, false)
	return nil
}

func (b *Battle) checkStriker(a *Creature) error {
	if a.Side != b.ActiveSide() {
		return precondition("%s %d cannot strike during %s", a.Kind, int(a.ID), b.phase)
	}
	if !a.OnBoard() {
		return precondition("%s %d is not on the board", a.Kind, int(a.ID))
	}
	if a.HasStruck {
		return precondition("%s %d has already struck", a.Kind, int(a.ID))
	}
	if b.phase.Type() == PhaseTypeStrike && !a.Alive() {
		return precondition("%s %d is dead", a.Kind, int(a.ID))
	}
	return nil
}

func chooseToHit(computed, requested int) (int, error) {
	if requested == 0 {
		return computed, nil
	}
	if requested < computed {
		return 0, precondition("to-hit %d is below the minimum %d", requested, computed)
	}
	if requested > maxToHit {
		return 0, precondition("to-hit %d is above %d", requested, maxToHit)
	}
	return requested, nil
}

func checkRolls(rolls []int) error {
	if len(rolls) == 0 {
		return precondition("a strike needs at least one die")
	}
	for _, roll := range rolls {
		if roll < 1 || roll > dice.Sides {
			return precondition("die roll %d is out of range", roll)
		}
	}
	return nil
}

func (b *Battle) resolve(a, d *Creature, rolls []int, toHit int, ranged bool) {
	hits := dice.Hits(rolls, toHit)
	applied := min(hits, max(d.RemainingHP(), 0))
	d.Wounds += applied
	a.HasStruck = true
	b.strike = &ActiveStrike{
		Attacker:    a.ID,
		AttackerHex: a.Hex,
		Target:      d.ID,
		TargetHex:   d.Hex,
		ToHit:       toHit,
		Rolls:       slices.Clone(rolls),
		TotalHits:   hits,
		TargetHits:  applied,
		Ranged:      ranged,
	}
}

// CarryoverTargets returns the enemies that may take the unassigned hits of
// the active strike: engaged with the striker and hittable at the strike's
// threshold. It returns nil when carryover is not available.
func (b *Battle) CarryoverTargets() []Creature {
	targets := b.carryoverTargets()
	if len(targets) == 0 {
		return nil
	}
	out := make([]Creature, 0, len(targets))
	for _, target := range targets {
		out = append(out, *target)
	}
	return out
}

func (b *Battle) carryoverTargets() []*Creature {
	s := b.strike
	if s == nil || s.Ranged || s.CarryoverDeclined || s.UnassignedHits() <= 0 {
		return nil
	}
	a := &b.creatures[s.Attacker]
	var out []*Creature
	for _, enemy := range b.engagedWith(a, false) {
		if enemy.ID == s.Target || s.hasCarryover(enemy.ID) {
			continue
		}
		if b.toHitAdjusted(a, enemy) > s.ToHit {
			continue
		}
		out = append(out, enemy)
	}
	return out
}

func (s *ActiveStrike) hasCarryover(id CreatureID) bool {
	for _, hit := range s.Carryovers {
		if hit.Target == id {
			return true
		}
	}
	return false
}

// Carryover moves unassigned hits of the active strike onto another enemy, up
// to its remaining hit points.
func (b *Battle) Carryover(target CreatureID) error {
	t, err := b.lookup(target)
	if err != nil {
		return err
	}
	if b.strike == nil {
		return precondition("there is no strike to carry hits from")
	}
	if !slices.Contains(b.carryoverTargets(), t) {
		return precondition("%s %d cannot take carryover hits", t.Kind, int(t.ID))
	}
	hits := min(b.strike.UnassignedHits(), t.RemainingHP())
	t.Wounds += hits
	b.strike.Carryovers = append(b.strike.Carryovers, CarryoverHit{
		Target:    t.ID,
		TargetHex: t.Hex,
		Hits:      hits,
	})
	return nil
}

// DeclineCarryover gives up the unassigned hits of the active strike.
func (b *Battle) DeclineCarryover() error {
	s := b.strike
	if s == nil || s.Ranged {
		return precondition("there is no melee strike to decline carryover for")
	}
	if s.CarryoverDeclined {
		return precondition("carryover was already declined")
	}
	if s.UnassignedHits() <= 0 {
		return precondition("the strike has no hits left to carry over")
	}
	s.CarryoverDeclined = true
	return nil
}

// RangestrikeDice returns how many dice a rangestrike rolls: half the
// striker's strength, rounded down.
func (b *Battle) RangestrikeDice(attacker CreatureID) (int, error) {
	a, err := b.lookup(attacker)
	if err != nil {
		return 0, err
	}
	return a.Strength() / 2, nil
}

// Rangestrike resolves a ranged strike during a strike phase. The threshold is
// the raw to-hit lowered by the path adjustment. Rangestrikes never carry hits
// over.
func (b *Battle) Rangestrike(attacker, target CreatureID, rolls []int, toHit int) error {
	a, d, err := b.pair(attacker, target)
	if err != nil {
		return err
	}
	if b.phase.Type() != PhaseTypeStrike {
		return precondition("rangestrikes are only allowed in strike phases, not %s", b.phase)
	}
	if err := b.checkStriker(a); err != nil {
		return err
	}
	var path *RangestrikeTarget
	for _, candidate := range b.rangestrikeTargets(a) {
		if candidate.Target == d.ID {
			path = &candidate
			break
		}
	}
	if path == nil {
		return precondition("%s %d cannot rangestrike %s %d", a.Kind, int(a.ID), d.Kind, int(d.ID))
	}
	threshold, err := chooseToHit(clampToHit(toHitRaw(a, d)-path.Adjustment), toHit)
	if err != nil {
		return err
	}
	if err := checkRolls(rolls); err != nil {
		return err
	}
	b.resolve(a, d, rolls, threshold, true)
	return nil
}
