// Package journal records battle mutators as an ordered, hash-chained event
// log and replays them into a battle.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type names a journal event.
type Type string

const (
	TypeBattleStarted       Type = "battle.started"
	TypeCreatureMoved       Type = "creature.moved"
	TypePhaseAdvanced       Type = "phase.advanced"
	TypeStrikeResolved      Type = "strike.resolved"
	TypeRangestrikeResolved Type = "rangestrike.resolved"
	TypeCarryoverAssigned   Type = "carryover.assigned"
	TypeCarryoverDeclined   Type = "carryover.declined"
)

var knownTypes = map[Type]bool{
	TypeBattleStarted:       true,
	TypeCreatureMoved:       true,
	TypePhaseAdvanced:       true,
	TypeStrikeResolved:      true,
	TypeRangestrikeResolved: true,
	TypeCarryoverAssigned:   true,
	TypeCarryoverDeclined:   true,
}

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	return knownTypes[t]
}

var (
	// ErrUnknownType indicates an event type the journal does not know.
	ErrUnknownType = errors.New("unknown event type")
	// ErrCorrupt indicates a stored journal that no longer replays.
	ErrCorrupt = errors.New("battle journal is corrupt")
)

// Event is one entry of a battle journal. Seq, PrevHash and Hash are assigned
// when the event is appended to a store.
type Event struct {
	BattleID    string
	Seq         uint64
	Type        Type
	Timestamp   time.Time
	PayloadJSON []byte
	PrevHash    string
	Hash        string
}

// New builds an unsequenced event with a JSON payload.
func New(battleID string, typ Type, at time.Time, payload any) (Event, error) {
	if strings.TrimSpace(battleID) == "" {
		return Event{}, fmt.Errorf("battle id is required")
	}
	if !typ.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Event{
		BattleID:    battleID,
		Type:        typ,
		Timestamp:   at.UTC().Truncate(time.Millisecond),
		PayloadJSON: data,
	}, nil
}

// Decode unmarshals the event payload into target.
func (e Event) Decode(target any) error {
	if err := json.Unmarshal(e.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload at seq %d: %w", e.Type, e.Seq, err)
	}
	return nil
}

type envelope struct {
	BattleID  string          `json:"battle_id"`
	Seq       uint64          `json:"seq"`
	Type      Type            `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	PrevHash  string          `json:"prev_hash"`
}

// Hash computes the SHA-256 hash linking evt to prevHash. It covers the
// battle id, sequence, type, timestamp in milliseconds and payload.
func Hash(evt Event, prevHash string) (string, error) {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	data, err := json.Marshal(envelope{
		BattleID:  evt.BattleID,
		Seq:       evt.Seq,
		Type:      evt.Type,
		Timestamp: evt.Timestamp.UTC().UnixMilli(),
		Payload:   payload,
		PrevHash:  prevHash,
	})
	if err != nil {
		return "", fmt.Errorf("encode event envelope: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Seal assigns the sequence number and chain hashes for an event appended
// after an event with prevSeq and prevHash.
func Seal(evt Event, prevSeq uint64, prevHash string) (Event, error) {
	evt.Seq = prevSeq + 1
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
	hash, err := Hash(evt, prevHash)
	if err != nil {
		return Event{}, err
	}
	evt.PrevHash = prevHash
	evt.Hash = hash
	return evt, nil
}

// Verify checks that evt follows prevHash and that its hash matches its
// content.
func Verify(evt Event, prevHash string) error {
	if evt.PrevHash != prevHash {
		return fmt.Errorf("%w: event %d does not follow the previous hash", ErrCorrupt, evt.Seq)
	}
	want, err := Hash(evt, prevHash)
	if err != nil {
		return err
	}
	if evt.Hash != want {
		return fmt.Errorf("%w: event %d hash mismatch", ErrCorrupt, evt.Seq)
	}
	return nil
}
