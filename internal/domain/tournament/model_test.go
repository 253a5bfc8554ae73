package tournament

import (
	"testing"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{from: StatusPlanned, to: StatusRegistration, want: true},
		{from: StatusPlanned, to: StatusInProgress, want: true},
		{from: StatusRegistration, to: StatusInProgress, want: true},
		{from: StatusInProgress, to: StatusFinished, want: true},
		{from: StatusInProgress, to: StatusCancelled, want: true},
		{from: StatusFinished, to: StatusCancelled, want: false},
		{from: StatusCancelled, to: StatusInProgress, want: false},
		{from: StatusRegistration, to: StatusPlanned, want: false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s,%s)=%v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTournament_ValidateBasic(t *testing.T) {
	end := 2
	valid := Tournament{
		ID:       "t1",
		Name:     "Friday",
		SeasonID: "s1",
		Schedule: blinds.Schedule{
			{Number: 1, SmallBlind: 25, BigBlind: 50, DurationMinutes: 15},
			{Number: 2, SmallBlind: 50, BigBlind: 100, DurationMinutes: 15},
		},
		RebuyEndLevel: &end,
		SeatsPerTable: 9,
	}
	if err := valid.ValidateBasic(); err != nil {
		t.Fatalf("expected valid tournament, got %v", err)
	}

	outside := 3
	invalid := valid
	invalid.RebuyEndLevel = &outside
	if err := invalid.ValidateBasic(); err == nil {
		t.Fatalf("expected error for rebuy end level outside schedule")
	}

	invalid = valid
	invalid.SeatsPerTable = 1
	if err := invalid.ValidateBasic(); err == nil {
		t.Fatalf("expected error for seats per table")
	}
}

func TestTournament_EffectiveLevelIgnoresCachedLevel(t *testing.T) {
	now := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	started := now.Add(-16 * time.Minute)
	tour := Tournament{
		Schedule: blinds.Schedule{
			{Number: 1, SmallBlind: 25, BigBlind: 50, DurationMinutes: 15},
			{Number: 2, SmallBlind: 50, BigBlind: 100, DurationMinutes: 15},
		},
		CurrentLevel: 1,
		Timer:        blinds.Timer{StartedAt: &started},
	}

	level, err := tour.EffectiveLevel(now)
	if err != nil {
		t.Fatalf("effective level: %v", err)
	}
	if level != 2 {
		t.Fatalf("expected level 2, got %d", level)
	}
}
