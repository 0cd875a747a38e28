package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
)

const defaultPageSize = 200

var (
	// ErrSourceRequired indicates a missing event source.
	ErrSourceRequired = errors.New("event source is required")
	// ErrBattleIDRequired indicates a missing battle id.
	ErrBattleIDRequired = errors.New("battle id is required")
	// ErrEmpty indicates a battle with no recorded events.
	ErrEmpty = errors.New("battle journal is empty")
)

// Source lists the events of one battle in sequence order.
type Source interface {
	ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]Event, error)
}

// Options configures replay.
type Options struct {
	// UntilSeq stops replay after this sequence; zero replays everything.
	UntilSeq uint64
	PageSize int
}

// Result captures the replayed battle and where the journal ended.
type Result struct {
	Battle   *battle.Battle
	LastSeq  uint64
	LastHash string
	Applied  int
}

// Replay rebuilds a battle from its journal. Sequence gaps, broken hash
// links and events the battle rejects all fail with ErrCorrupt.
func Replay(ctx context.Context, source Source, battleID string, options Options) (Result, error) {
	if source == nil {
		return Result{}, ErrSourceRequired
	}
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return Result{}, ErrBattleIDRequired
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var result Result
	for {
		events, err := source.ListEvents(ctx, battleID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			break
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return finish(result, battleID)
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("%w: event sequence gap: expected %d got %d", ErrCorrupt, expectedSeq, evt.Seq)
			}
			if err := Verify(evt, result.LastHash); err != nil {
				return result, err
			}
			next, err := Apply(result.Battle, evt)
			if err != nil {
				return result, fmt.Errorf("%w: apply %s at seq %d: %w", ErrCorrupt, evt.Type, evt.Seq, err)
			}
			result.Battle = next
			result.LastSeq = evt.Seq
			result.LastHash = evt.Hash
			result.Applied++
		}
		if len(events) < pageSize {
			break
		}
	}
	return finish(result, battleID)
}

func finish(result Result, battleID string) (Result, error) {
	if result.Battle == nil {
		return result, fmt.Errorf("%w: %s", ErrEmpty, battleID)
	}
	return result, nil
}
