// Package storage defines persistence contracts for battles and their
// journals.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/warlord/internal/services/battle/journal"
)

var (
	// ErrNotFound indicates a requested battle record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a battle id is already taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrFirstEvent indicates a journal that does not open with battle.started.
	ErrFirstEvent = errors.New("journal must start with battle.started")
)

// CheckStarted validates the opening event of a new battle journal.
func CheckStarted(record BattleRecord, started journal.Event) error {
	if started.Type != journal.TypeBattleStarted {
		return fmt.Errorf("%w: got %q", ErrFirstEvent, started.Type)
	}
	if started.BattleID != record.BattleID {
		return fmt.Errorf("started event belongs to battle %q, not %q", started.BattleID, record.BattleID)
	}
	return nil
}

// BattleRecord is the index entry for one stored battle.
type BattleRecord struct {
	BattleID  string
	Location  int
	EntryEdge string
	CreatedAt time.Time
}

// BattleStore persists battle index records.
type BattleStore interface {
	// CreateBattle stores record together with started, the first event of
	// its journal. Either both are stored or neither is.
	CreateBattle(ctx context.Context, record BattleRecord, started journal.Event) (journal.Event, error)
	GetBattle(ctx context.Context, battleID string) (BattleRecord, error)
	ListBattles(ctx context.Context, limit int) ([]BattleRecord, error)
}

// EventStore persists battle journals.
type EventStore interface {
	// AppendEvent assigns the next sequence number and chain hashes and
	// returns the stored event.
	AppendEvent(ctx context.Context, evt journal.Event) (journal.Event, error)
	// ListEvents returns up to limit events after afterSeq in sequence order.
	ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]journal.Event, error)
}

// Store is the full persistence surface used by the battle service.
type Store interface {
	BattleStore
	EventStore
}
