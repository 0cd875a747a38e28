// Package sqlite provides a SQLite-backed battle storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/warlord/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
	"github.com/louisbranch/warlord/internal/services/battle/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists battles and their journals in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite battle store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateBattle inserts one battle record and the first event of its journal
// in one transaction.
func (s *Store) CreateBattle(ctx context.Context, record storage.BattleRecord, started journal.Event) (journal.Event, error) {
	if err := s.ready(ctx); err != nil {
		return journal.Event{}, err
	}
	record.BattleID = strings.TrimSpace(record.BattleID)
	if record.BattleID == "" {
		return journal.Event{}, fmt.Errorf("battle id is required")
	}
	if err := storage.CheckStarted(record, started); err != nil {
		return journal.Event{}, err
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if started.Timestamp.IsZero() {
		started.Timestamp = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return journal.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO battles (battle_id, location, entry_edge, created_at) VALUES (?, ?, ?, ?)`,
		record.BattleID,
		record.Location,
		record.EntryEdge,
		toMillis(createdAt),
	); err != nil {
		if isUniqueViolation(err) {
			return journal.Event{}, storage.ErrAlreadyExists
		}
		return journal.Event{}, fmt.Errorf("create battle: %w", err)
	}
	sealed, err := insertEvent(ctx, tx, started, 0, "")
	if err != nil {
		return journal.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return journal.Event{}, fmt.Errorf("commit: %w", err)
	}
	return sealed, nil
}

// GetBattle returns one battle record.
func (s *Store) GetBattle(ctx context.Context, battleID string) (storage.BattleRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.BattleRecord{}, err
	}
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return storage.BattleRecord{}, fmt.Errorf("battle id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT battle_id, location, entry_edge, created_at FROM battles WHERE battle_id = ?`,
		battleID,
	)
	record, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BattleRecord{}, storage.ErrNotFound
		}
		return storage.BattleRecord{}, fmt.Errorf("get battle: %w", err)
	}
	return record, nil
}

// ListBattles returns up to limit battles, newest first.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]storage.BattleRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT battle_id, location, entry_edge, created_at
		   FROM battles
		  ORDER BY created_at DESC, battle_id ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	var out []storage.BattleRecord
	for rows.Next() {
		record, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("list battles: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBattle(row scanner) (storage.BattleRecord, error) {
	var record storage.BattleRecord
	var createdAt int64
	if err := row.Scan(&record.BattleID, &record.Location, &record.EntryEdge, &createdAt); err != nil {
		return storage.BattleRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// AppendEvent seals evt after the last stored event of its battle and
// inserts it in one transaction.
func (s *Store) AppendEvent(ctx context.Context, evt journal.Event) (journal.Event, error) {
	if err := s.ready(ctx); err != nil {
		return journal.Event{}, err
	}
	if !evt.Type.Valid() {
		return journal.Event{}, fmt.Errorf("%w: %q", journal.ErrUnknownType, evt.Type)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return journal.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM battles WHERE battle_id = ?`, evt.BattleID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return journal.Event{}, fmt.Errorf("load battle: %w", err)
	}

	var prevSeq int64
	prevHash := ""
	err = tx.QueryRowContext(
		ctx,
		`SELECT seq, hash FROM battle_events WHERE battle_id = ? ORDER BY seq DESC LIMIT 1`,
		evt.BattleID,
	).Scan(&prevSeq, &prevHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return journal.Event{}, fmt.Errorf("load previous event: %w", err)
	}

	sealed, err := insertEvent(ctx, tx, evt, uint64(prevSeq), prevHash)
	if err != nil {
		return journal.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return journal.Event{}, fmt.Errorf("commit: %w", err)
	}
	return sealed, nil
}

// insertEvent seals evt after prevSeq and prevHash and inserts it within tx.
func insertEvent(ctx context.Context, tx *sql.Tx, evt journal.Event, prevSeq uint64, prevHash string) (journal.Event, error) {
	sealed, err := journal.Seal(evt, prevSeq, prevHash)
	if err != nil {
		return journal.Event{}, err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO battle_events (battle_id, seq, type, timestamp, payload, prev_hash, hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sealed.BattleID,
		int64(sealed.Seq),
		string(sealed.Type),
		toMillis(sealed.Timestamp),
		string(sealed.PayloadJSON),
		sealed.PrevHash,
		sealed.Hash,
	); err != nil {
		if isUniqueViolation(err) {
			return journal.Event{}, fmt.Errorf("append event: sequence %d already taken: %w", sealed.Seq, storage.ErrAlreadyExists)
		}
		return journal.Event{}, fmt.Errorf("append event: %w", err)
	}
	return sealed, nil
}

// ListEvents returns up to limit events after afterSeq in sequence order.
func (s *Store) ListEvents(ctx context.Context, battleID string, afterSeq uint64, limit int) ([]journal.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT battle_id, seq, type, timestamp, payload, prev_hash, hash
		   FROM battle_events
		  WHERE battle_id = ? AND seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		strings.TrimSpace(battleID),
		int64(afterSeq),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []journal.Event
	for rows.Next() {
		var (
			evt       journal.Event
			seq       int64
			typ       string
			timestamp int64
			payload   string
		)
		if err := rows.Scan(&evt.BattleID, &seq, &typ, &timestamp, &payload, &evt.PrevHash, &evt.Hash); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Type = journal.Type(typ)
		evt.Timestamp = fromMillis(timestamp)
		evt.PayloadJSON = []byte(payload)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
