package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

func TestClockService_TimerTransitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(2, flatSchedule(4), intPtr(2))
	ctx := context.Background()

	_, err := f.clocks.StartTimer(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, f.publisher.Types(), "starting a running timer is a no-op")

	f.clock.Set(fixtureStart.Add(25 * time.Minute))
	paused, err := f.clocks.PauseTimer(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, paused.Running)
	require.Equal(t, int64(25*60), paused.ElapsedSeconds)
	require.Equal(t, 2, paused.Position.Number())
	require.Equal(t, int64(5*60), paused.Position.ElapsedInLevel)
	require.True(t, paused.RecavesOpen)

	f.clock.Set(fixtureStart.Add(2 * time.Hour))
	_, err = f.clocks.PauseTimer(ctx, item.ID)
	require.NoError(t, err)

	state, err := f.clocks.GetClock(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(25*60), state.ElapsedSeconds, "paused time must not accrue")

	resumed, err := f.clocks.ResumeTimer(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, resumed.Running)

	f.clock.Set(fixtureStart.Add(2*time.Hour + 20*time.Minute))
	state, err = f.clocks.GetClock(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 3, state.Position.Number())
	require.False(t, state.RecavesOpen)

	reset, err := f.clocks.ResetTimer(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, reset.Started)
	require.Equal(t, int64(0), reset.ElapsedSeconds)
	require.Equal(t, 1, reset.Position.Number())

	got, err := f.tournaments.GetTournament(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentLevel)

	require.Equal(t, []tournament.EventType{
		tournament.EventTimerPaused,
		tournament.EventTimerResumed,
		tournament.EventTimerReset,
	}, f.publisher.Types())
}

func TestClockService_ResumeRequiresStartedTimer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(2, flatSchedule(4), nil)
	ctx := context.Background()

	_, err := f.clocks.ResetTimer(ctx, item.ID)
	require.NoError(t, err)

	_, err = f.clocks.ResumeTimer(ctx, item.ID)
	require.ErrorIs(t, err, ErrTimerNotStarted)
	require.ErrorIs(t, err, ErrStateConflict)
}

func TestClockService_ExhaustedScheduleStaysOnLastLevel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(2, flatSchedule(3), nil)

	f.clock.Set(fixtureStart.Add(10 * time.Hour))
	state, err := f.clocks.GetClock(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 3, state.Position.Number())
	require.True(t, state.Position.Exhausted)
	require.Nil(t, state.Position.Next)
}

func TestClockService_RequiresInProgress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	item, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Planned",
		SeasonID: "default-season",
		Schedule: flatSchedule(4),
	})
	require.NoError(t, err)

	_, err = f.clocks.StartTimer(ctx, item.ID)
	require.ErrorIs(t, err, ErrTournamentNotInProgress)
}
