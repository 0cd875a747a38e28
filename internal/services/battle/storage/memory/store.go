// Package memory provides an in-process battle store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
)

// Store keeps battles and journals in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	battles map[string]storage.BattleRecord
	events  map[string][]journal.Event
}

// New returns an empty store.
func New() *Store {
	return &Store{
		battles: map[string]storage.BattleRecord{},
		events:  map[string][]journal.Event{},
	}
}

// CreateBattle stores one battle record and the first event of its journal.
func (s *Store) CreateBattle(ctx context.Context, record storage.BattleRecord, started journal.Event) (journal.Event, error) {
	if err := ctx.Err(); err != nil {
		return journal.Event{}, err
	}
	record.BattleID = strings.TrimSpace(record.BattleID)
	if record.BattleID == "" {
		return journal.Event{}, fmt.Errorf("battle id is required")
	}
	if err := storage.CheckStarted(record, started); err != nil {
		return journal.Event{}, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	if started.Timestamp.IsZero() {
		started.Timestamp = record.CreatedAt
	}
	sealed, err := journal.Seal(started, 0, "")
	if err != nil {
		return journal.Event{}, err
	}
	sealed.PayloadJSON = slices.Clone(sealed.PayloadJSON)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.battles[record.BattleID]; ok {
		return journal.Event{}, storage.ErrAlreadyExists
	}
	s.battles[record.BattleID] = record
	s.events[record.BattleID] = []journal.Event{sealed}
	return sealed, nil
}

// GetBattle returns one battle record.
func (s *Store) GetBattle(ctx context.Context, battleID string) (storage.BattleRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattleRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.battles[strings.TrimSpace(battleID)]
	if !ok {
		return storage.BattleRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// ListBattles returns up to limit battles, newest first.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]storage.BattleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	out := make([]storage.BattleRecord, 0, len(s.battles))
	for _, record := range s.battles {
		out = append(out, record)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].BattleID < out[j].BattleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppendEvent seals and stores an event for an existing battle.
func (s *Store) AppendEvent(ctx context.Context, evt journal.Event) (journal.Event, error) {
	if err := ctx.Err(); err != nil {
		return journal.Event{}, err
	}
	if !evt.Type.Valid() {
		return journal.Event{}, fmt.Errorf("%w: %q", journal.ErrUnknownType, evt.Type)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.battles[evt.BattleID]; !ok {
		return journal.Event{}, storage.ErrNotFound
	}
	existing := s.events[evt.BattleID]
	var prevSeq uint64
	prevHash := ""
	if n := len(existing); n > 0 {
		prevSeq = existing[n-1].Seq
		prevHash = existing[n-1].Hash
	}
	sealed, err := journal.Seal(evt, prevSeq, prevHash)
	if err != nil {
		return journal.Event{}, err
	}
	sealed.PayloadJSON = slices.Clone(sealed.PayloadJSON)
	s.events[evt.BattleID] = append(existing, sealed)
	return sealed, nil
}

// ListEvents returns up to limit events after afterSeq.
func (s *Store) ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]journal.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []journal.Event
	for _, evt := range s.events[strings.TrimSpace(battleID)] {
		if evt.Seq <= afterSeq {
			continue
		}
		evt.PayloadJSON = slices.Clone(evt.PayloadJSON)
		out = append(out, evt)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
