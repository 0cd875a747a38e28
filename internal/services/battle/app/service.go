// Package app runs battles for drivers: it owns the live battles, records
// every accepted mutator in the journal and maps domain failures to platform
// error codes.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/warlord/internal/core/dice"
	"github.com/louisbranch/warlord/internal/platform/id"
	platformotel "github.com/louisbranch/warlord/internal/platform/otel"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/warlord/internal/services/battle/app"

// Service executes battle commands. It is safe for concurrent use; commands
// are serialized.
type Service struct {
	mu      sync.Mutex
	battles map[string]*battle.Battle
	store   storage.Store
	roller  *dice.Roller
	tracer  trace.Tracer
	logger  *log.Logger
	clock   func() time.Time
	newID   func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger that records committed events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRoller sets the roller used when a strike omits its dice.
func WithRoller(roller *dice.Roller) Option {
	return func(s *Service) {
		if roller != nil {
			s.roller = roller
		}
	}
}

// WithClock sets the event timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator sets the battle id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a battle service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		battles: map[string]*battle.Battle{},
		store:   store,
		roller:  dice.NewRoller(time.Now().UnixNano()),
		tracer:  platformotel.Tracer(tracerName),
		logger:  log.New(io.Discard, "", 0),
		clock:   time.Now,
		newID:   id.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRequest describes a new battle.
type StartRequest struct {
	// BattleID is optional; a fresh id is generated when empty.
	BattleID  string
	Location  int
	EntryEdge masterboard.HexEdge
	Attacker  battle.Roster
	Defender  battle.Roster
	Scores    map[string]int
}

// StartBattle creates and records a battle and returns its id.
func (s *Service) StartBattle(ctx context.Context, req StartRequest) (_ string, err error) {
	battleID := strings.TrimSpace(req.BattleID)
	ctx, span := s.startSpan(ctx, "StartBattle", battleID)
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return "", toAppError(fmt.Errorf("battle store is not configured"), battleID, nil)
	}
	if battleID == "" {
		battleID, err = s.newID()
		if err != nil {
			return "", toAppError(err, "", nil)
		}
	}
	span.SetAttributes(attribute.String("battle.id", battleID))
	if req.EntryEdge < masterboard.EdgeFirst || req.EntryEdge > masterboard.EdgeThird {
		return "", invalidRequest(battleID, fmt.Sprintf("entry edge %d is invalid", int(req.EntryEdge)))
	}
	meta := map[string]string{"Location": strconv.Itoa(req.Location)}

	payload := journal.StartedPayload{
		Location:  req.Location,
		EntryEdge: req.EntryEdge.String(),
		Attacker:  journal.NewRosterPayload(req.Attacker),
		Defender:  journal.NewRosterPayload(req.Defender),
		Scores:    req.Scores,
	}
	b, err := journal.Start(payload)
	if err != nil {
		return "", toAppError(err, battleID, meta)
	}
	payload.EntryEdge = b.EntryEdge().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.battles[battleID]; ok {
		return "", toAppError(storage.ErrAlreadyExists, battleID, nil)
	}
	now := s.clock().UTC()
	evt, err := journal.New(battleID, journal.TypeBattleStarted, now, payload)
	if err != nil {
		return "", toAppError(err, battleID, nil)
	}
	stored, err := s.store.CreateBattle(ctx, storage.BattleRecord{
		BattleID:  battleID,
		Location:  req.Location,
		EntryEdge: payload.EntryEdge,
		CreatedAt: now,
	}, evt)
	if err != nil {
		s.logger.Printf("battle %s: create failed: %v", battleID, err)
		return "", toAppError(err, battleID, nil)
	}
	s.logger.Printf("battle %s: seq %d %s %s", stored.BattleID, stored.Seq, stored.Type, stored.PayloadJSON)
	s.battles[battleID] = b
	return battleID, nil
}

// MoveRequest moves one creature.
type MoveRequest struct {
	BattleID string
	Creature battle.CreatureID
	Hex      int
}

// Move moves a creature during its side's move phase.
func (s *Service) Move(ctx context.Context, req MoveRequest) (err error) {
	ctx, span := s.startSpan(ctx, "Move", req.BattleID)
	defer func() { endSpan(span, err) }()

	return s.command(ctx, req.BattleID, map[string]string{"Hex": strconv.Itoa(req.Hex)},
		func(*battle.Battle) (journal.Type, any, error) {
			return journal.TypeCreatureMoved, journal.MovedPayload{Creature: int(req.Creature), Hex: req.Hex}, nil
		})
}

// Advance moves the battle to its next phase and returns where it landed.
func (s *Service) Advance(ctx context.Context, battleID string) (phase battle.Phase, err error) {
	ctx, span := s.startSpan(ctx, "Advance", battleID)
	defer func() { endSpan(span, err) }()

	err = s.command(ctx, battleID, nil, func(*battle.Battle) (journal.Type, any, error) {
		return journal.TypePhaseAdvanced, journal.PhaseAdvancedPayload{}, nil
	}, func(b *battle.Battle) any {
		phase = b.Phase()
		return journal.PhaseAdvancedPayload{Phase: b.Phase().String(), Round: b.Round()}
	})
	return phase, err
}

// StrikeRequest resolves a melee strike or rangestrike. Empty Rolls are
// rolled by the service; a zero ToHit uses the computed threshold.
type StrikeRequest struct {
	BattleID string
	Attacker battle.CreatureID
	Target   battle.CreatureID
	Rolls    []int
	ToHit    int
}

// Strike resolves a melee strike and returns the resulting active strike.
func (s *Service) Strike(ctx context.Context, req StrikeRequest) (battle.ActiveStrike, error) {
	return s.strike(ctx, "Strike", journal.TypeStrikeResolved, req)
}

// Rangestrike resolves a ranged strike and returns the resulting strike.
func (s *Service) Rangestrike(ctx context.Context, req StrikeRequest) (battle.ActiveStrike, error) {
	return s.strike(ctx, "Rangestrike", journal.TypeRangestrikeResolved, req)
}

func (s *Service) strike(ctx context.Context, name string, typ journal.Type, req StrikeRequest) (strike battle.ActiveStrike, err error) {
	ctx, span := s.startSpan(ctx, name, req.BattleID)
	defer func() { endSpan(span, err) }()

	err = s.command(ctx, req.BattleID, nil, func(b *battle.Battle) (journal.Type, any, error) {
		rolls := req.Rolls
		if len(rolls) == 0 {
			var count int
			var err error
			if typ == journal.TypeRangestrikeResolved {
				count, err = b.RangestrikeDice(req.Attacker)
			} else {
				count, err = b.StrikeDice(req.Attacker, req.Target)
			}
			if err != nil {
				return "", nil, err
			}
			if rolls, err = s.roller.Roll(count); err != nil {
				return "", nil, err
			}
		}
		span.SetAttributes(attribute.IntSlice("battle.rolls", rolls))
		return typ, journal.StrikePayload{
			Attacker: int(req.Attacker),
			Target:   int(req.Target),
			Rolls:    rolls,
			ToHit:    req.ToHit,
		}, nil
	}, func(b *battle.Battle) any {
		strike, _ = b.ActiveStrike()
		return nil
	})
	return strike, err
}

// Carryover assigns the unassigned hits of the active strike to target.
func (s *Service) Carryover(ctx context.Context, battleID string, target battle.CreatureID) (err error) {
	ctx, span := s.startSpan(ctx, "Carryover", battleID)
	defer func() { endSpan(span, err) }()

	return s.command(ctx, battleID, nil, func(*battle.Battle) (journal.Type, any, error) {
		return journal.TypeCarryoverAssigned, journal.CarryoverPayload{Target: int(target)}, nil
	})
}

// DeclineCarryover gives up the unassigned hits of the active strike.
func (s *Service) DeclineCarryover(ctx context.Context, battleID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeclineCarryover", battleID)
	defer func() { endSpan(span, err) }()

	return s.command(ctx, battleID, nil, func(*battle.Battle) (journal.Type, any, error) {
		return journal.TypeCarryoverDeclined, struct{}{}, nil
	})
}

// Inspect runs fn against the live battle, loading it from the journal when
// needed. fn must only query the battle.
func (s *Service) Inspect(ctx context.Context, battleID string, fn func(*battle.Battle) error) (err error) {
	ctx, span := s.startSpan(ctx, "Inspect", battleID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.live(ctx, battleID)
	if err != nil {
		return err
	}
	return toAppError(fn(b), battleID, nil)
}

// Load replays a stored battle into memory, replacing any live copy.
func (s *Service) Load(ctx context.Context, battleID string) (err error) {
	ctx, span := s.startSpan(ctx, "Load", battleID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.battles, strings.TrimSpace(battleID))
	_, err = s.live(ctx, battleID)
	return err
}

// Battles lists stored battles, newest first.
func (s *Service) Battles(ctx context.Context, limit int) ([]storage.BattleRecord, error) {
	if s.store == nil {
		return nil, toAppError(fmt.Errorf("battle store is not configured"), "", nil)
	}
	records, err := s.store.ListBattles(ctx, limit)
	if err != nil {
		return nil, toAppError(err, "", nil)
	}
	return records, nil
}

// command builds an event from the live battle, applies it and records it.
// finish hooks run after a successful apply; a non-nil result replaces the
// recorded payload.
func (s *Service) command(ctx context.Context, battleID string, meta map[string]string, build func(*battle.Battle) (journal.Type, any, error), finish ...func(*battle.Battle) any) error {
	battleID = strings.TrimSpace(battleID)
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.live(ctx, battleID)
	if err != nil {
		return err
	}
	typ, payload, err := build(b)
	if err != nil {
		return toAppError(err, battleID, meta)
	}
	evt, err := journal.New(battleID, typ, s.clock(), payload)
	if err != nil {
		return toAppError(err, battleID, meta)
	}
	if _, err := journal.Apply(b, evt); err != nil {
		return toAppError(err, battleID, meta)
	}
	for _, hook := range finish {
		if recorded := hook(b); recorded != nil {
			if evt, err = journal.New(battleID, typ, evt.Timestamp, recorded); err != nil {
				delete(s.battles, battleID)
				return toAppError(err, battleID, meta)
			}
		}
	}
	return s.append(ctx, evt)
}

// append records evt. A battle whose event could not be stored is dropped
// from memory so the next command reloads it from the journal.
func (s *Service) append(ctx context.Context, evt journal.Event) error {
	stored, err := s.store.AppendEvent(ctx, evt)
	if err != nil {
		delete(s.battles, evt.BattleID)
		s.logger.Printf("battle %s: append %s failed: %v", evt.BattleID, evt.Type, err)
		return toAppError(err, evt.BattleID, nil)
	}
	s.logger.Printf("battle %s: seq %d %s %s", stored.BattleID, stored.Seq, stored.Type, stored.PayloadJSON)
	return nil
}

// live returns the in-memory battle, replaying it from the store if needed.
// Callers hold s.mu.
func (s *Service) live(ctx context.Context, battleID string) (*battle.Battle, error) {
	battleID = strings.TrimSpace(battleID)
	if battleID == "" {
		return nil, invalidRequest(battleID, "battle id is required")
	}
	if b, ok := s.battles[battleID]; ok {
		return b, nil
	}
	if s.store == nil {
		return nil, toAppError(fmt.Errorf("battle store is not configured"), battleID, nil)
	}
	if _, err := s.store.GetBattle(ctx, battleID); err != nil {
		return nil, toAppError(err, battleID, nil)
	}
	result, err := journal.Replay(ctx, s.store, battleID, journal.Options{})
	if err != nil {
		return nil, toAppError(err, battleID, nil)
	}
	s.logger.Printf("battle %s: replayed %d events", battleID, result.Applied)
	s.battles[battleID] = result.Battle
	return result.Battle, nil
}

func (s *Service) startSpan(ctx context.Context, name, battleID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "battle."+name, trace.WithAttributes(attribute.String("battle.id", strings.TrimSpace(battleID))))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
