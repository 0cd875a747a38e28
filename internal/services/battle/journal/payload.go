package journal

import (
	"fmt"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

// RosterPayload is a roster with creature kinds by name.
type RosterPayload struct {
	Player string   `json:"player"`
	Kinds  []string `json:"kinds"`
}

// StartedPayload opens a battle.
type StartedPayload struct {
	Location  int            `json:"location"`
	EntryEdge string         `json:"entry_edge"`
	Attacker  RosterPayload  `json:"attacker"`
	Defender  RosterPayload  `json:"defender"`
	Scores    map[string]int `json:"scores,omitempty"`
}

// MovedPayload moves one creature.
type MovedPayload struct {
	Creature int `json:"creature"`
	Hex      int `json:"hex"`
}

// PhaseAdvancedPayload records where an advance landed. Replay checks the
// battle reaches the same phase.
type PhaseAdvancedPayload struct {
	Phase string `json:"phase"`
	Round int    `json:"round"`
}

// StrikePayload resolves a melee strike or a rangestrike. ToHit is the
// requested threshold; zero uses the computed one.
type StrikePayload struct {
	Attacker int   `json:"attacker"`
	Target   int   `json:"target"`
	Rolls    []int `json:"rolls"`
	ToHit    int   `json:"to_hit,omitempty"`
}

// CarryoverPayload carries hits over to another enemy.
type CarryoverPayload struct {
	Target int `json:"target"`
}

// NewRosterPayload converts a roster to its journal form.
func NewRosterPayload(r battle.Roster) RosterPayload {
	kinds := make([]string, 0, len(r.Kinds))
	for _, kind := range r.Kinds {
		kinds = append(kinds, kind.String())
	}
	return RosterPayload{Player: r.Player, Kinds: kinds}
}

// Roster converts the payload back to a battle roster.
func (p RosterPayload) Roster() (battle.Roster, error) {
	r := battle.Roster{Player: p.Player}
	for _, name := range p.Kinds {
		kind, err := creature.ParseKind(name)
		if err != nil {
			return battle.Roster{}, fmt.Errorf("roster of %q: %w", p.Player, err)
		}
		r.Kinds = append(r.Kinds, kind)
	}
	return r, nil
}

// ScoreLookup returns the scores as a battle score lookup.
func (p StartedPayload) ScoreLookup() battle.ScoreLookup {
	return func(player string) int {
		return p.Scores[player]
	}
}
