package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

func TestLeaderboardService_LiveOrdering(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(4, flatSchedule(6), nil)
	ctx := context.Background()

	f.bust(item.ID, playerID(4), playerID(3))
	f.eliminate(item.ID, playerID(4), playerID(2))

	board, err := f.boards.GetLiveLeaderboard(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, tournament.StatusInProgress, board.Status)
	require.Len(t, board.Entries, 4)

	got := make([]string, 0, len(board.Entries))
	for i, entry := range board.Entries {
		require.Equal(t, i+1, entry.CurrentRank)
		got = append(got, entry.Player.PlayerID)
	}
	// p02: 10 elimination + 5 leader; p04: rank 4 pays 55; p03: 5 bust bonus; p01: nothing.
	require.Equal(t, []string{playerID(4), playerID(2), playerID(3), playerID(1)}, got)

	_, err = f.boards.GetFinalResults(ctx, item.ID)
	require.ErrorIs(t, err, ErrTournamentNotFinished)
}

func TestLeaderboardService_FinishedIntegrityViolation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(3, flatSchedule(6), nil)
	ctx := context.Background()

	err := f.repo.WithinTx(ctx, func(ctx context.Context, tx tournament.Tx) error {
		locked, _, err := tx.LockTournament(ctx, item.ID)
		if err != nil {
			return err
		}
		locked.Status = tournament.StatusFinished
		return tx.UpdateTournament(ctx, locked)
	})
	require.NoError(t, err)

	_, err = f.boards.GetFinalResults(ctx, item.ID)
	require.ErrorIs(t, err, ErrIntegrityViolation)

	_, err = f.boards.GetLiveLeaderboard(ctx, item.ID)
	require.ErrorIs(t, err, ErrIntegrityViolation)
}
