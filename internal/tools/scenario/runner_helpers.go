package scenario

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/warlord/internal/platform/errors"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"google.golang.org/grpc/status"
)

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func (r *Runner) ensureBattle(state *scenarioState) error {
	if state.battleID == "" {
		return r.failf("battle is required")
	}
	return nil
}

// checkExpectedError compares a command error with the step's expect_error
// code and expect_status gRPC code. failed reports whether the command was
// rejected, in which case the step has nothing left to check.
func (r *Runner) checkExpectedError(args map[string]any, err error) (failed bool, _ error) {
	wantCode := optionalString(args, "expect_error", "")
	wantStatus := optionalString(args, "expect_status", "")
	if wantCode == "" && wantStatus == "" {
		if err != nil {
			return true, r.failf("%s", describeError(err))
		}
		return false, nil
	}
	if err == nil {
		return false, r.assertf("expected error %s, got none", strings.TrimSpace(wantCode+" "+wantStatus))
	}
	r.logf("expected error: %s", describeError(err))
	if wantCode != "" {
		if got := apperrors.GetCode(err); string(got) != wantCode {
			return true, r.assertf("error code = %s, want %s (%v)", got, wantCode, err)
		}
	}
	if wantStatus != "" {
		st, _ := status.FromError(apperrors.HandleError(err, apperrors.DefaultLocale))
		if got := st.Code().String(); got != wantStatus {
			return true, r.assertf("error status = %s, want %s (%v)", got, wantStatus, err)
		}
	}
	return true, nil
}

func describeError(err error) string {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", code, apperrors.UserMessage(err, apperrors.DefaultLocale))
}

// creatureArg resolves a creature given by script name or roster id.
func (r *Runner) creatureArg(state *scenarioState, args map[string]any, key string) (battle.CreatureID, error) {
	value, ok := args[key]
	if !ok {
		return 0, r.failf("%s is required", key)
	}
	return r.resolveCreature(state, value)
}

func (r *Runner) creatureList(state *scenarioState, args map[string]any, key string) ([]int, error) {
	values, ok := args[key].([]any)
	if !ok {
		return nil, r.failf("%s must be a list", key)
	}
	ids := make([]int, 0, len(values))
	for _, value := range values {
		id, err := r.resolveCreature(state, value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, int(id))
	}
	return ids, nil
}

func (r *Runner) resolveCreature(state *scenarioState, value any) (battle.CreatureID, error) {
	switch v := value.(type) {
	case int:
		return battle.CreatureID(v), nil
	case string:
		ids := state.names[strings.TrimSpace(v)]
		switch len(ids) {
		case 0:
			return 0, r.failf("unknown creature %q", v)
		case 1:
			return ids[0], nil
		default:
			return 0, r.failf("creature name %q is ambiguous; name the creatures in the roster", v)
		}
	default:
		return 0, r.failf("creature reference %v is invalid", value)
	}
}

// names renders roster ids with their script names for failure messages.
func (r *Runner) names(state *scenarioState, ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range sorted(ids) {
		label := fmt.Sprintf("#%d", id)
		for name, named := range state.names {
			if slices.Contains(named, battle.CreatureID(id)) {
				label = fmt.Sprintf("%s#%d", name, id)
				break
			}
		}
		out = append(out, label)
	}
	return out
}

func creatureIDs(creatures []battle.Creature) []int {
	ids := make([]int, 0, len(creatures))
	for _, c := range creatures {
		ids = append(ids, int(c.ID))
	}
	return ids
}

func sorted(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

func sameInts(a, b []int) bool {
	return slices.Equal(sorted(a), sorted(b))
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func readIntList(args map[string]any, key string) ([]int, error) {
	value, ok := args[key]
	if !ok {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errorf("%s must be a list of integers", key)
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		n, ok := item.(int)
		if !ok {
			return nil, errorf("%s must be a list of integers, got %v", key, item)
		}
		out = append(out, n)
	}
	return out, nil
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(text)
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := readInt(args, key); ok {
		return value
	}
	return fallback
}

func readBool(args map[string]any, key string) (bool, bool) {
	value, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}
