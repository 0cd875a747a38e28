// Package creature holds the catalog of creature kinds and their battle
// attributes.
package creature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
)

// ErrUnknownKind indicates a creature kind outside the catalog.
var ErrUnknownKind = errors.New("unknown creature kind")

// Kind identifies a creature type.
type Kind int

const (
	KindAngel Kind = iota
	KindArchangel
	KindBehemoth
	KindCentaur
	KindColossus
	KindCyclops
	KindDragon
	KindGargoyle
	KindGiant
	KindGorgon
	KindGriffon
	KindGuardian
	KindHydra
	KindLion
	KindMinotaur
	KindOgre
	KindRanger
	KindSerpent
	KindTitan
	KindTroll
	KindUnicorn
	KindWarbear
	KindWarlock
	KindWyvern
)

// Stats are the fixed attributes of a creature kind.
type Stats struct {
	Kind     Kind
	Name     string
	Strength int
	Skill    int
	// Quantity is the size of the recruiting pool; lords have none.
	Quantity    int
	Flies       bool
	Rangestrike bool
	Lord        bool
}

// Value is the point worth of the creature.
func (s Stats) Value() int {
	return s.Strength * s.Skill
}

var catalog = map[Kind]Stats{
	KindTitan:     {Kind: KindTitan, Name: "Titan", Strength: 6, Skill: 4, Lord: true},
	KindAngel:     {Kind: KindAngel, Name: "Angel", Strength: 6, Skill: 4, Flies: true, Lord: true},
	KindArchangel: {Kind: KindArchangel, Name: "Archangel", Strength: 9, Skill: 4, Flies: true, Lord: true},
	KindBehemoth:  {Kind: KindBehemoth, Name: "Behemoth", Strength: 8, Skill: 3, Quantity: 18},
	KindCentaur:   {Kind: KindCentaur, Name: "Centaur", Strength: 3, Skill: 4, Quantity: 25},
	KindColossus:  {Kind: KindColossus, Name: "Colossus", Strength: 10, Skill: 4, Quantity: 10},
	KindCyclops:   {Kind: KindCyclops, Name: "Cyclops", Strength: 9, Skill: 2, Quantity: 28},
	KindDragon:    {Kind: KindDragon, Name: "Dragon", Strength: 9, Skill: 3, Quantity: 18, Flies: true, Rangestrike: true},
	KindGargoyle:  {Kind: KindGargoyle, Name: "Gargoyle", Strength: 4, Skill: 3, Quantity: 21, Flies: true},
	KindGiant:     {Kind: KindGiant, Name: "Giant", Strength: 7, Skill: 4, Quantity: 18, Rangestrike: true},
	KindGorgon:    {Kind: KindGorgon, Name: "Gorgon", Strength: 6, Skill: 3, Quantity: 25, Flies: true, Rangestrike: true},
	KindGriffon:   {Kind: KindGriffon, Name: "Griffon", Strength: 5, Skill: 4, Quantity: 18, Flies: true},
	KindGuardian:  {Kind: KindGuardian, Name: "Guardian", Strength: 12, Skill: 2, Quantity: 6, Flies: true},
	KindHydra:     {Kind: KindHydra, Name: "Hydra", Strength: 10, Skill: 3, Quantity: 10, Rangestrike: true},
	KindLion:      {Kind: KindLion, Name: "Lion", Strength: 5, Skill: 3, Quantity: 28},
	KindMinotaur:  {Kind: KindMinotaur, Name: "Minotaur", Strength: 4, Skill: 4, Quantity: 21, Rangestrike: true},
	KindOgre:      {Kind: KindOgre, Name: "Ogre", Strength: 6, Skill: 2, Quantity: 25},
	KindRanger:    {Kind: KindRanger, Name: "Ranger", Strength: 4, Skill: 4, Quantity: 28, Flies: true, Rangestrike: true},
	KindSerpent:   {Kind: KindSerpent, Name: "Serpent", Strength: 18, Skill: 2, Quantity: 10},
	KindTroll:     {Kind: KindTroll, Name: "Troll", Strength: 8, Skill: 2, Quantity: 28},
	KindUnicorn:   {Kind: KindUnicorn, Name: "Unicorn", Strength: 6, Skill: 4, Quantity: 12},
	KindWarbear:   {Kind: KindWarbear, Name: "Warbear", Strength: 6, Skill: 3, Quantity: 21},
	KindWarlock:   {Kind: KindWarlock, Name: "Warlock", Strength: 5, Skill: 4, Quantity: 6, Rangestrike: true},
	KindWyvern:    {Kind: KindWyvern, Name: "Wyvern", Strength: 7, Skill: 3, Quantity: 18, Flies: true},
}

var hazardNatives = map[battleboard.Hazard][]Kind{
	battleboard.HazardBog:     {KindOgre, KindTroll, KindRanger, KindWyvern, KindHydra},
	battleboard.HazardBramble: {KindGargoyle, KindCyclops, KindGorgon, KindBehemoth, KindSerpent},
	battleboard.HazardDrift:   {KindTroll, KindWarbear, KindGiant, KindColossus},
	battleboard.HazardSand:    {KindLion, KindGriffon, KindHydra},
	battleboard.HazardVolcano: {KindDragon},
}

var edgeHazardNatives = map[battleboard.EdgeHazard][]Kind{
	battleboard.EdgeDune:  {KindLion, KindGriffon, KindHydra},
	battleboard.EdgeSlope: {KindOgre, KindLion, KindMinotaur, KindUnicorn, KindDragon, KindColossus},
}

// Kinds lists every creature kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalog))
	for kind := KindAngel; kind <= KindWyvern; kind++ {
		out = append(out, kind)
	}
	return out
}

// Lookup returns the attributes of kind.
func Lookup(kind Kind) (Stats, error) {
	stats, ok := catalog[kind]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return stats, nil
}

// MustLookup returns the attributes of a kind known to be in the catalog.
func MustLookup(kind Kind) Stats {
	stats, err := Lookup(kind)
	if err != nil {
		panic(err)
	}
	return stats
}

// ParseKind resolves a kind from its name, ignoring case.
func ParseKind(value string) (Kind, error) {
	needle := strings.TrimSpace(value)
	for kind, stats := range catalog {
		if strings.EqualFold(stats.Name, needle) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

func (k Kind) String() string {
	if stats, ok := catalog[k]; ok {
		return stats.Name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Strength returns the strength of kind for a player with the given score.
// Titans grow one point per hundred points scored.
func Strength(kind Kind, score int) int {
	stats, ok := catalog[kind]
	if !ok {
		return 0
	}
	if kind == KindTitan && score > 0 {
		return stats.Strength + score/100
	}
	return stats.Strength
}

// Native reports whether kind ignores the penalties of hazard.
func Native(kind Kind, hazard battleboard.Hazard) bool {
	for _, native := range hazardNatives[hazard] {
		if native == kind {
			return true
		}
	}
	return false
}

// EdgeNative reports whether kind ignores the penalties of an edge hazard.
func EdgeNative(kind Kind, hazard battleboard.EdgeHazard) bool {
	for _, native := range edgeHazardNatives[hazard] {
		if native == kind {
			return true
		}
	}
	return false
}

// StrikesLords reports whether kind may rangestrike lords. Its missiles also
// ignore line of sight.
func StrikesLords(kind Kind) bool {
	return kind == KindWarlock
}
