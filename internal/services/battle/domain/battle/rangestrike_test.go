package battle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/louisbranch/warlord/internal/services/battle/domain/creature"
)

const hillsHex = 4

func TestRangestrikeTargets(t *testing.T) {
	tests := []struct {
		name     string
		location int
		attacker creature.Kind
		from     int
		defender creature.Kind
		to       int
		blockers []int
		want     []RangestrikeTarget
	}{
		{
			name: "open ground", location: plainsHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindOgre, to: 20,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 20}},
		},
		{
			name: "both lines blocked", location: plainsHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindOgre, to: 20,
			blockers: []int{26, 27},
		},
		{
			name: "clear line preferred over bramble", location: brushHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindOgre, to: 20,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 20}},
		},
		{
			name: "line through bramble", location: brushHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindOgre, to: 20,
			blockers: []int{27},
			want:     []RangestrikeTarget{{Target: 2, TargetHex: 20, Adjustment: -1}},
		},
		{
			name: "lord out of reach", location: plainsHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindTitan, to: 20,
		},
		{
			name: "warlock strikes lords through anything", location: plainsHex,
			attacker: creature.KindWarlock, from: 32, defender: creature.KindTitan, to: 20,
			blockers: []int{26, 27},
			want:     []RangestrikeTarget{{Target: 3, TargetHex: 20}},
		},
		{
			name: "long range", location: plainsHex,
			attacker: creature.KindGiant, from: 32, defender: creature.KindOgre, to: 8,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 8, LongRange: true}},
		},
		{
			name: "long range needs skill", location: plainsHex,
			attacker: creature.KindGorgon, from: 32, defender: creature.KindOgre, to: 8,
		},
		{
			name: "not a rangestriker", location: plainsHex,
			attacker: creature.KindOgre, from: 32, defender: creature.KindOgre, to: 20,
		},
		{
			name: "cliff between others", location: desertHex,
			attacker: creature.KindGiant, from: 20, defender: creature.KindOgre, to: 9,
		},
		{
			name: "cliff below the striker", location: desertHex,
			attacker: creature.KindGiant, from: 15, defender: creature.KindOgre, to: 26,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 26}},
		},
		{
			name: "over a hill", location: hillsHex,
			attacker: creature.KindGiant, from: 13, defender: creature.KindOgre, to: 32,
		},
		{
			name: "dragon on its volcano", location: mountainsHex,
			attacker: creature.KindDragon, from: 15, defender: creature.KindOgre, to: 2,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 2, Adjustment: 1}},
		},
		{
			name: "out of the tower", location: towerHex,
			attacker: creature.KindGiant, from: 15, defender: creature.KindOgre, to: 18,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 18}},
		},
		{
			name: "into the tower", location: towerHex,
			attacker: creature.KindGiant, from: 18, defender: creature.KindOgre, to: 15,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 15, Adjustment: -2}},
		},
		{
			name: "around the tower", location: towerHex,
			attacker: creature.KindGiant, from: 2, defender: creature.KindOgre, to: 19,
			want: []RangestrikeTarget{{Target: 1, TargetHex: 19}},
		},
		{
			name: "across two walls", location: towerHex,
			attacker: creature.KindGiant, from: 2, defender: creature.KindOgre, to: 19,
			blockers: []int{13},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attackers := kinds(tt.attacker)
			for range tt.blockers {
				attackers = append(attackers, creature.KindCentaur)
			}
			b := newTestBattle(t, tt.location, attackers, kinds(tt.defender))
			place(b, 0, tt.from)
			for i, hex := range tt.blockers {
				place(b, CreatureID(i+1), hex)
			}
			target := CreatureID(len(attackers))
			place(b, target, tt.to)
			b.phase = PhaseAttackerStrike

			got, err := b.RangestrikeTargets(0)
			if err != nil {
				t.Fatalf("targets: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("targets = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRangestrikeTargetsNeedFreeStriker(t *testing.T) {
	b := newTestBattle(t, plainsHex, kinds(creature.KindGiant), kinds(creature.KindOgre, creature.KindTroll))
	place(b, 0, 32)
	place(b, 1, 20)
	place(b, 2, 33)
	got, _ := b.RangestrikeTargets(0)
	if len(got) != 0 {
		t.Fatalf("engaged giant has targets %+v", got)
	}

	place(b, 2, 2)
	b.creatures[0].Wounds = 7
	got, _ = b.RangestrikeTargets(0)
	if len(got) != 0 {
		t.Fatalf("dead giant has targets %+v", got)
	}
}

func TestRangestrike(t *testing.T) {
	b := newTestBattle(t, plainsHex, kinds(creature.KindGiant), kinds(creature.KindOgre, creature.KindOgre))
	place(b, 0, 32)
	place(b, 1, 20)
	place(b, 2, 2)

	if dice, _ := b.RangestrikeDice(0); dice != 3 {
		t.Fatalf("dice = %d, want 3", dice)
	}
	if err := b.Rangestrike(0, 1, []int{6, 6, 1}, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("rangestrike in move phase error = %v", err)
	}
	b.phase = PhaseAttackerStrikeback
	if err := b.Rangestrike(0, 1, []int{6, 6, 1}, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("rangestrike in strikeback error = %v", err)
	}

	b.phase = PhaseAttackerStrike
	if err := b.Rangestrike(0, 2, []int{6, 6, 1}, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("rangestrike out of range error = %v", err)
	}
	if err := b.Rangestrike(0, 1, []int{6, 6, 1}, 0); err != nil {
		t.Fatalf("rangestrike: %v", err)
	}
	ogre, _ := b.Creature(1)
	if ogre.Wounds != 2 {
		t.Fatalf("ogre wounds = %d, want 2", ogre.Wounds)
	}
	strike, _ := b.ActiveStrike()
	if !strike.Ranged || strike.ToHit != 2 {
		t.Fatalf("strike = %+v", strike)
	}
	if b.CarryoverTargets() != nil {
		t.Fatal("rangestrike offered carryover")
	}
	if err := b.DeclineCarryover(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("decline after rangestrike error = %v", err)
	}
	if err := b.Rangestrike(0, 1, []int{6}, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("second rangestrike error = %v", err)
	}
}

func TestRangestrikeUsesPathAdjustment(t *testing.T) {
	b := newTestBattle(t, mountainsHex, kinds(creature.KindDragon), kinds(creature.KindOgre))
	place(b, 0, 15)
	place(b, 1, 2)
	b.phase = PhaseAttackerStrike

	if err := b.Rangestrike(0, 1, []int{2}, 1); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("to-hit below the minimum error = %v", err)
	}
	if err := b.Rangestrike(0, 1, []int{2, 1}, 0); err != nil {
		t.Fatalf("rangestrike: %v", err)
	}
	strike, _ := b.ActiveStrike()
	if strike.ToHit != 2 || strike.TotalHits != 1 {
		t.Fatalf("strike = %+v, want one hit on 2", strike)
	}
}
