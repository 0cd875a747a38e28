package scenario

import "github.com/louisbranch/warlord/internal/services/battle/domain/battle"

// scenarioState tracks the battle a scenario is driving.
type scenarioState struct {
	battleID string
	// names maps script names to roster ids; a name with several ids is
	// ambiguous.
	names map[string][]battle.CreatureID
}

func newScenarioState() *scenarioState {
	return &scenarioState{names: map[string][]battle.CreatureID{}}
}
