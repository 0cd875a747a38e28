package battle

import "fmt"

// MaxRounds is the number of rounds the attacker has to win.
const MaxRounds = 7

// Outcome is the state of a battle's resolution.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeAttackerWon
	OutcomeDefenderWon
	OutcomeMutualDestruction
)

var outcomeNames = map[Outcome]string{
	OutcomeOngoing:           "ongoing",
	OutcomeAttackerWon:       "attacker_won",
	OutcomeDefenderWon:       "defender_won",
	OutcomeMutualDestruction: "mutual_destruction",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome resolves an outcome from its snake_case name.
func ParseOutcome(value string) (Outcome, error) {
	for outcome, name := range outcomeNames {
		if name == value {
			return outcome, nil
		}
	}
	return 0, fmt.Errorf("outcome %q is not supported", value)
}

// Finished reports whether the battle is over.
func (o Outcome) Finished() bool {
	return o != OutcomeOngoing
}

// Outcome reports who won. A side whose creatures have all left the board is
// eliminated; the defender wins on time once MaxRounds have passed.
func (b *Battle) Outcome() Outcome {
	attackerGone := b.eliminated(SideAttacker)
	defenderGone := b.eliminated(SideDefender)
	switch {
	case attackerGone && defenderGone:
		return OutcomeMutualDestruction
	case attackerGone:
		return OutcomeDefenderWon
	case defenderGone:
		return OutcomeAttackerWon
	case b.round >= MaxRounds:
		return OutcomeDefenderWon
	default:
		return OutcomeOngoing
	}
}

func (b *Battle) eliminated(side Side) bool {
	for _, c := range b.sideCreatures(side) {
		if !c.Removed() {
			return false
		}
	}
	return true
}
