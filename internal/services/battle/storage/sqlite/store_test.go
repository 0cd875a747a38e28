package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetBattleRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 16, 40, 0, 0, time.UTC)
	input := storage.BattleRecord{BattleID: "b1", Location: 100, EntryEdge: "second", CreatedAt: now}
	first, err := store.CreateBattle(ctx, input, startedEvent(t, "b1"))
	if err != nil {
		t.Fatalf("create battle: %v", err)
	}
	if first.Seq != 1 || first.PrevHash != "" || !first.Timestamp.Equal(now) {
		t.Fatalf("first event = %+v", first)
	}
	got, err := store.GetBattle(ctx, " b1 ")
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if got.BattleID != input.BattleID || got.Location != input.Location || got.EntryEdge != input.EntryEdge || !got.CreatedAt.Equal(now) {
		t.Fatalf("battle = %+v, want %+v", got, input)
	}
	if _, err := store.CreateBattle(ctx, input, startedEvent(t, "b1")); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if _, err := store.GetBattle(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListBattlesNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		record := storage.BattleRecord{BattleID: id, Location: 1, EntryEdge: "first", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if _, err := store.CreateBattle(ctx, record, startedEvent(t, id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	got, err := store.ListBattles(ctx, 2)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(got) != 2 || got[0].BattleID != "new" || got[1].BattleID != "mid" {
		t.Fatalf("battles = %+v", got)
	}
}

func TestAppendListEvents(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	stamp := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	evt, err := journal.New("b1", journal.TypeCreatureMoved, stamp, journal.MovedPayload{Creature: 1, Hex: 15})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if _, err := store.AppendEvent(ctx, evt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("append to missing battle error = %v", err)
	}
	first, err := store.CreateBattle(ctx, storage.BattleRecord{BattleID: "b1", Location: 1, EntryEdge: "first"}, startedEvent(t, "b1"))
	if err != nil {
		t.Fatalf("create battle: %v", err)
	}

	var stored []journal.Event
	for i := 0; i < 3; i++ {
		evt.Timestamp = stamp.Add(time.Duration(i) * time.Minute)
		got, err := store.AppendEvent(ctx, evt)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		stored = append(stored, got)
	}
	if stored[0].Seq != 2 || stored[0].PrevHash != first.Hash {
		t.Fatalf("first appended event = %+v", stored[0])
	}
	if stored[2].Seq != 4 || stored[2].PrevHash != stored[1].Hash {
		t.Fatalf("last appended event = %+v", stored[2])
	}

	page, err := store.ListEvents(ctx, "b1", 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("page = %+v", page)
	}
	if page[0].Hash != stored[1].Hash || !page[0].Timestamp.Equal(stored[1].Timestamp) || string(page[0].PayloadJSON) != string(stored[1].PayloadJSON) {
		t.Fatalf("listed event = %+v, want %+v", page[0], stored[1])
	}
	if err := journal.Verify(page[1], page[0].Hash); err != nil {
		t.Fatalf("verify listed event: %v", err)
	}
}

func TestReopenKeepsJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "battles.db")
	ctx := context.Background()
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.CreateBattle(ctx, storage.BattleRecord{BattleID: "b1", Location: 1, EntryEdge: "first"}, startedEvent(t, "b1")); err != nil {
		t.Fatalf("create battle: %v", err)
	}
	evt, _ := journal.New("b1", journal.TypeCarryoverDeclined, time.Now(), struct{}{})
	if _, err := store.AppendEvent(ctx, evt); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	events, err := reopened.ListEvents(ctx, "b1", 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || events[0].Type != journal.TypeBattleStarted || events[1].Type != journal.TypeCarryoverDeclined {
		t.Fatalf("events = %+v", events)
	}
}

func TestCreateBattleRollsBackOnEventFailure(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	record := storage.BattleRecord{BattleID: "b1", Location: 1, EntryEdge: "first"}

	broken := journal.Event{BattleID: "b1", Type: journal.TypeBattleStarted, Timestamp: time.Now(), PayloadJSON: []byte("{")}
	if _, err := store.CreateBattle(ctx, record, broken); err == nil {
		t.Fatal("expected sealing error")
	}
	if _, err := store.GetBattle(ctx, "b1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("record survived failed create: %v", err)
	}

	moved, _ := journal.New("b1", journal.TypeCreatureMoved, time.Now(), journal.MovedPayload{Creature: 1, Hex: 15})
	if _, err := store.CreateBattle(ctx, record, moved); !errors.Is(err, storage.ErrFirstEvent) {
		t.Fatalf("wrong first event error = %v", err)
	}
	if _, err := store.CreateBattle(ctx, record, startedEvent(t, "b2")); err == nil {
		t.Fatal("expected battle id mismatch error")
	}

	first, err := store.CreateBattle(ctx, record, startedEvent(t, "b1"))
	if err != nil {
		t.Fatalf("retry create: %v", err)
	}
	events, err := store.ListEvents(ctx, "b1", 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Hash != first.Hash {
		t.Fatalf("events = %+v", events)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetBattle(ctx, "b1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get error = %v", err)
	}
	if _, err := store.AppendEvent(ctx, journal.Event{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("append error = %v", err)
	}
}

func startedEvent(t *testing.T, battleID string) journal.Event {
	t.Helper()

	evt, err := journal.New(battleID, journal.TypeBattleStarted, time.Time{}, journal.StartedPayload{Location: 1, EntryEdge: "first"})
	if err != nil {
		t.Fatalf("new started event: %v", err)
	}
	return evt
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "battles.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
