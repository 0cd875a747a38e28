package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battleboard"
)

const testBattleID = "battle-1"

var testStamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type step struct {
	typ     Type
	payload any
}

// duel fights an ogre against a centaur on the plains until the centaur dies
// in the second round.
func duel() []step {
	return []step{
		{TypeBattleStarted, StartedPayload{
			Location:  1,
			EntryEdge: "first",
			Attacker:  RosterPayload{Player: "red", Kinds: []string{"Ogre"}},
			Defender:  RosterPayload{Player: "blue", Kinds: []string{"centaur"}},
		}},
		{TypeCreatureMoved, MovedPayload{Creature: 1, Hex: 15}},
		{TypePhaseAdvanced, PhaseAdvancedPayload{Phase: "attacker_move", Round: 0}},
		{TypeCreatureMoved, MovedPayload{Creature: 0, Hex: 26}},
		{TypePhaseAdvanced, PhaseAdvancedPayload{Phase: "defender_move", Round: 1}},
		{TypeCreatureMoved, MovedPayload{Creature: 1, Hex: 20}},
		{TypePhaseAdvanced, PhaseAdvancedPayload{Phase: "defender_strike", Round: 1}},
		{TypeStrikeResolved, StrikePayload{Attacker: 1, Target: 0, Rolls: []int{6, 6, 1}}},
		{TypePhaseAdvanced, PhaseAdvancedPayload{Phase: "attacker_strikeback", Round: 1}},
		{TypeStrikeResolved, StrikePayload{Attacker: 0, Target: 1, Rolls: []int{6, 6, 6, 6, 1, 1}}},
		{TypeCarryoverDeclined, struct{}{}},
		{TypePhaseAdvanced, PhaseAdvancedPayload{Phase: "attacker_move", Round: 1}},
	}
}

func sealAll(t *testing.T, steps []step) []Event {
	t.Helper()
	var out []Event
	prevHash := ""
	for i, s := range steps {
		evt, err := New(testBattleID, s.typ, testStamp.Add(time.Duration(i)*time.Second), s.payload)
		if err != nil {
			t.Fatalf("new event %d: %v", i, err)
		}
		evt, err = Seal(evt, uint64(i), prevHash)
		if err != nil {
			t.Fatalf("seal event %d: %v", i, err)
		}
		prevHash = evt.Hash
		out = append(out, evt)
	}
	return out
}

type sliceSource struct {
	events []Event
	err    error
}

func (s sliceSource) ListEvents(_ context.Context, _ string, afterSeq uint64, limit int) ([]Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Event
	for _, evt := range s.events {
		if evt.Seq > afterSeq && len(out) < limit {
			out = append(out, evt)
		}
	}
	return out, nil
}

func TestSealChainsEvents(t *testing.T) {
	events := sealAll(t, duel()[:3])
	if events[0].Seq != 1 || events[0].PrevHash != "" || events[0].Hash == "" {
		t.Fatalf("first event = %+v", events[0])
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq != uint64(i+1) || events[i].PrevHash != events[i-1].Hash {
			t.Fatalf("event %d not chained: %+v", i, events[i])
		}
		if err := Verify(events[i], events[i-1].Hash); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}

	tampered := events[1]
	tampered.PayloadJSON = []byte(`{"creature":1,"hex":16}`)
	if err := Verify(tampered, events[0].Hash); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("tampered payload error = %v", err)
	}
	if err := Verify(events[1], "other"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("wrong previous hash error = %v", err)
	}
}

func TestNewValidatesEvent(t *testing.T) {
	if _, err := New("", TypeCreatureMoved, testStamp, MovedPayload{}); err == nil {
		t.Fatal("expected missing battle id error")
	}
	if _, err := New(testBattleID, Type("creature.flew"), testStamp, nil); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type error = %v", err)
	}
	if _, err := New(testBattleID, TypeCreatureMoved, testStamp, func() {}); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestReplayRebuildsBattle(t *testing.T) {
	events := sealAll(t, duel())
	for _, pageSize := range []int{0, 1, 5} {
		result, err := Replay(context.Background(), sliceSource{events: events}, testBattleID, Options{PageSize: pageSize})
		if err != nil {
			t.Fatalf("page size %d: replay: %v", pageSize, err)
		}
		if result.Applied != len(events) || result.LastSeq != uint64(len(events)) || result.LastHash != events[len(events)-1].Hash {
			t.Fatalf("page size %d: result = %d applied, seq %d", pageSize, result.Applied, result.LastSeq)
		}
		b := result.Battle
		if b.Outcome() != battle.OutcomeAttackerWon {
			t.Fatalf("outcome = %s", b.Outcome())
		}
		ogre, _ := b.Creature(0)
		centaur, _ := b.Creature(1)
		if ogre.Wounds != 2 || ogre.Hex != 26 {
			t.Fatalf("ogre = %+v", ogre)
		}
		if centaur.Hex != battleboard.Removed {
			t.Fatalf("centaur = %+v, want removed", centaur)
		}
	}
}

func TestReplayUntilSeq(t *testing.T) {
	events := sealAll(t, duel())
	result, err := Replay(context.Background(), sliceSource{events: events}, testBattleID, Options{UntilSeq: 8})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.LastSeq != 8 || result.Battle.Phase() != battle.PhaseDefenderStrike {
		t.Fatalf("replayed to seq %d phase %s", result.LastSeq, result.Battle.Phase())
	}
	strike, ok := result.Battle.ActiveStrike()
	if !ok || strike.TotalHits != 2 {
		t.Fatalf("strike = %+v", strike)
	}
}

func TestReplayFailures(t *testing.T) {
	events := sealAll(t, duel())

	gap := append([]Event{}, events[:2]...)
	gap = append(gap, events[3:]...)

	tampered := append([]Event{}, events...)
	tampered[4].PayloadJSON = []byte(`{"phase":"defender_move","round":2}`)

	resealed := sealAll(t, append(duel()[:2], step{TypeCreatureMoved, MovedPayload{Creature: 0, Hex: 4}}))

	unstarted := sealAll(t, duel()[1:3])

	tests := []struct {
		name   string
		source Source
		id     string
		want   error
	}{
		{"missing source", nil, testBattleID, ErrSourceRequired},
		{"missing id", sliceSource{}, " ", ErrBattleIDRequired},
		{"empty journal", sliceSource{}, testBattleID, ErrEmpty},
		{"sequence gap", sliceSource{events: gap}, testBattleID, ErrCorrupt},
		{"tampered payload", sliceSource{events: tampered}, testBattleID, ErrCorrupt},
		{"rejected mutator", sliceSource{events: resealed}, testBattleID, ErrCorrupt},
		{"not started", sliceSource{events: unstarted}, testBattleID, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replay(context.Background(), tt.source, tt.id, Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}

	boom := errors.New("boom")
	if _, err := Replay(context.Background(), sliceSource{err: boom}, testBattleID, Options{}); !errors.Is(err, boom) {
		t.Fatalf("source error = %v", err)
	}
}

func TestApplyRejectsSecondStart(t *testing.T) {
	events := sealAll(t, duel()[:1])
	b, err := Apply(nil, events[0])
	if err != nil {
		t.Fatalf("apply start: %v", err)
	}
	if _, err := Apply(b, events[0]); err == nil {
		t.Fatal("expected second start to fail")
	}
	if _, err := Apply(b, Event{Type: Type("creature.flew")}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type error = %v", err)
	}
}

func TestStartRejectsBadPayload(t *testing.T) {
	base := duel()[0].payload.(StartedPayload)
	tests := []struct {
		name   string
		mutate func(*StartedPayload)
	}{
		{"bad edge", func(p *StartedPayload) { p.EntryEdge = "fourth" }},
		{"bad attacker kind", func(p *StartedPayload) { p.Attacker.Kinds = []string{"Kraken"} }},
		{"bad defender kind", func(p *StartedPayload) { p.Defender.Kinds = []string{"Kraken"} }},
		{"bad location", func(p *StartedPayload) { p.Location = 9999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Attacker.Kinds = append([]string{}, base.Attacker.Kinds...)
			p.Defender.Kinds = append([]string{}, base.Defender.Kinds...)
			tt.mutate(&p)
			if _, err := Start(p); err == nil {
				t.Fatal("expected start to fail")
			}
		})
	}
}

func TestRosterPayloadRoundTrip(t *testing.T) {
	p := RosterPayload{Player: "red", Kinds: []string{"Titan", "ogre"}}
	r, err := p.Roster()
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	back := NewRosterPayload(r)
	if back.Player != "red" || len(back.Kinds) != 2 || back.Kinds[0] != "Titan" || back.Kinds[1] != "Ogre" {
		t.Fatalf("payload = %+v", back)
	}
}
