package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedPtr(v uint64) *uint64 { return &v }

func TestTableService_GenerateAndRebalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	item := f.startTournament(23, flatSchedule(6), nil)
	ctx := context.Background()

	layout, err := f.tables.GenerateTables(ctx, GenerateTablesInput{TournamentID: item.ID, Seed: seedPtr(7)})
	require.NoError(t, err)
	require.Equal(t, 1, layout.Generation)
	require.Len(t, layout.Tables, 3)
	for _, table := range layout.Tables {
		require.GreaterOrEqual(t, len(table.Seats), 7)
		require.LessOrEqual(t, len(table.Seats), 8)
	}

	_, err = f.tables.GenerateTables(ctx, GenerateTablesInput{TournamentID: item.ID})
	require.ErrorIs(t, err, ErrAssignmentsExist)

	for i := 23; i >= 19; i-- {
		f.eliminate(item.ID, playerID(i), playerID(1))
	}

	rebalanced, err := f.tables.RebalanceTables(ctx, RebalanceTablesInput{TournamentID: item.ID, Seed: seedPtr(11)})
	require.NoError(t, err)
	require.Equal(t, 2, rebalanced.Generation)
	require.Len(t, rebalanced.Tables, 2)
	require.Equal(t, 1, rebalanced.Stats.Dissolved)

	seated := 0
	for _, table := range rebalanced.Tables {
		seated += len(table.Seats)
		require.LessOrEqual(t, len(table.Seats), 9)
	}
	require.Equal(t, 18, seated)

	listed, err := f.tables.ListTables(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, rebalanced.Generation, listed.Generation)
	require.Equal(t, rebalanced.Tables, listed.Tables)
}

func TestTableService_SeedReproducesSeating(t *testing.T) {
	t.Parallel()

	first := newFixture(t)
	second := newFixture(t)
	a := first.startTournament(12, flatSchedule(4), nil)
	b := second.startTournament(12, flatSchedule(4), nil)

	la, err := first.tables.GenerateTables(context.Background(), GenerateTablesInput{TournamentID: a.ID, Seed: seedPtr(42)})
	require.NoError(t, err)
	lb, err := second.tables.GenerateTables(context.Background(), GenerateTablesInput{TournamentID: b.ID, Seed: seedPtr(42)})
	require.NoError(t, err)
	require.Equal(t, la.Tables, lb.Tables)
}

func TestTableService_RebalanceRequiresInProgress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	item, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Planned",
		SeasonID: "default-season",
		Schedule: flatSchedule(4),
	})
	require.NoError(t, err)

	_, err = f.tables.RebalanceTables(ctx, RebalanceTablesInput{TournamentID: item.ID})
	require.ErrorIs(t, err, ErrTournamentNotInProgress)

	_, err = f.tables.GenerateTables(ctx, GenerateTablesInput{TournamentID: item.ID})
	require.ErrorIs(t, err, ErrTournamentNotInProgress)
}
