package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/memory"
)

func TestTournamentService_CreateWithGeneratedSchedule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item, err := f.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:     "  Sunday turbo ",
		SeasonID: memory.SeasonIDDefault,
		Generate: &blinds.GenerateInput{
			StartingStack:         20000,
			TargetDurationMinutes: 240,
			ExpectedPlayers:       18,
		},
		RebuyEndLevel: intPtr(4),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if item.Name != "Sunday turbo" {
		t.Fatalf("unexpected name: %q", item.Name)
	}
	if item.Status != tournament.StatusPlanned {
		t.Fatalf("unexpected status: %s", item.Status)
	}
	if item.SeatsPerTable != 9 {
		t.Fatalf("unexpected default seats: %d", item.SeatsPerTable)
	}
	if err := item.Schedule.Validate(); err != nil {
		t.Fatalf("generated schedule invalid: %v", err)
	}
}

func TestTournamentService_CreateRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tests := []struct {
		name  string
		input CreateTournamentInput
		want  error
	}{
		{
			name:  "missing season",
			input: CreateTournamentInput{Name: "x", SeasonID: "nope", Schedule: flatSchedule(3)},
			want:  ErrSeasonNotFound,
		},
		{
			name:  "no schedule",
			input: CreateTournamentInput{Name: "x", SeasonID: memory.SeasonIDDefault},
			want:  ErrInvalidInput,
		},
		{
			name:  "rebuy end outside schedule",
			input: CreateTournamentInput{Name: "x", SeasonID: memory.SeasonIDDefault, Schedule: flatSchedule(3), RebuyEndLevel: intPtr(4)},
			want:  ErrInvalidInput,
		},
		{
			name:  "missing name",
			input: CreateTournamentInput{SeasonID: memory.SeasonIDDefault, Schedule: flatSchedule(3)},
			want:  ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tournaments.CreateTournament(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTournamentService_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	item, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Weekly",
		SeasonID: memory.SeasonIDDefault,
		Schedule: flatSchedule(4),
	})
	require.NoError(t, err)

	_, err = f.tournaments.OpenRegistration(ctx, item.ID)
	require.NoError(t, err)

	_, err = f.tournaments.OpenRegistration(ctx, item.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	first, err := f.tournaments.EnrollPlayer(ctx, EnrollPlayerInput{TournamentID: item.ID, PlayerID: "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, first.EnrollmentOrder)
	require.Equal(t, "alice", first.DisplayName)

	_, err = f.tournaments.EnrollPlayer(ctx, EnrollPlayerInput{TournamentID: item.ID, PlayerID: "alice"})
	require.ErrorIs(t, err, ErrPlayerAlreadyEnrolled)

	_, err = f.tournaments.StartTournament(ctx, item.ID)
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	second, err := f.tournaments.EnrollPlayer(ctx, EnrollPlayerInput{TournamentID: item.ID, PlayerID: "bob", DisplayName: "Bob"})
	require.NoError(t, err)
	require.Equal(t, 2, second.EnrollmentOrder)

	started, err := f.tournaments.StartTournament(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, tournament.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	require.False(t, started.Timer.Started())

	_, err = f.tournaments.EnrollPlayer(ctx, EnrollPlayerInput{TournamentID: item.ID, PlayerID: "carol"})
	require.ErrorIs(t, err, ErrEnrollmentClosed)

	cancelled, err := f.tournaments.CancelTournament(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, tournament.StatusCancelled, cancelled.Status)

	require.Equal(t, []tournament.EventType{
		tournament.EventRegistrationOpened,
		tournament.EventPlayerEnrolled,
		tournament.EventPlayerEnrolled,
		tournament.EventTournamentStarted,
		tournament.EventTournamentCancelled,
	}, f.publisher.Types())
}

func TestTournamentService_CancelFinishedRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(2, flatSchedule(4), nil)
	f.eliminate(item.ID, playerID(2), playerID(1))

	_, err := f.tournaments.CancelTournament(context.Background(), item.ID)
	require.ErrorIs(t, err, ErrTournamentFinished)
}
