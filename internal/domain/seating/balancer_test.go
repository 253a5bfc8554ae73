package seating

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func playerIDs(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("p%d", i))
	}
	return out
}

func requireValidLayout(t *testing.T, layout Layout, players []string, seatsPerTable int) map[int]int {
	t.Helper()

	require.Len(t, layout, len(players))
	seen := make(map[string]struct{}, len(layout))
	seats := make(map[[2]int]struct{}, len(layout))
	sizes := make(map[int]int)
	for _, a := range layout {
		_, dup := seen[a.PlayerID]
		require.False(t, dup, "player %s seated twice", a.PlayerID)
		seen[a.PlayerID] = struct{}{}

		require.GreaterOrEqual(t, a.SeatNumber, 1)
		require.LessOrEqual(t, a.SeatNumber, seatsPerTable)
		key := [2]int{a.TableNumber, a.SeatNumber}
		_, clash := seats[key]
		require.False(t, clash, "seat %v assigned twice", key)
		seats[key] = struct{}{}
		sizes[a.TableNumber]++
	}
	for _, id := range players {
		_, ok := seen[id]
		require.True(t, ok, "player %s not seated", id)
	}
	return sizes
}

func requireBalanced(t *testing.T, sizes map[int]int) {
	t.Helper()
	minSize, maxSize := -1, 0
	for _, size := range sizes {
		if minSize == -1 || size < minSize {
			minSize = size
		}
		if size > maxSize {
			maxSize = size
		}
	}
	require.LessOrEqual(t, maxSize-minSize, 1, "table sizes %v not balanced", sizes)
}

func TestAssign_BalancedAndReproducible(t *testing.T) {
	players := playerIDs(23)

	first, err := Assign(players, 9, NewRand(42))
	require.NoError(t, err)
	sizes := requireValidLayout(t, first, players, 9)
	require.Len(t, sizes, 3)
	requireBalanced(t, sizes)

	second, err := Assign(players, 9, NewRand(42))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAssign_RejectsInvalidInput(t *testing.T) {
	_, err := Assign(nil, 9, NewRand(1))
	require.ErrorIs(t, err, ErrNoPlayers)

	_, err = Assign(playerIDs(4), 1, NewRand(1))
	require.ErrorIs(t, err, ErrInvalidSeats)

	_, err = Assign([]string{"p1", "p1"}, 9, NewRand(1))
	require.True(t, errors.Is(err, ErrDuplicatePlayer))
}

func TestTargetTables(t *testing.T) {
	tests := []struct {
		players, seats, minBreak int
		want                     int
	}{
		{players: 0, seats: 9, minBreak: 3, want: 0},
		{players: 8, seats: 9, minBreak: 3, want: 1},
		{players: 10, seats: 9, minBreak: 3, want: 2},
		{players: 23, seats: 9, minBreak: 3, want: 3},
		{players: 5, seats: 4, minBreak: 3, want: 2},
	}
	for _, tc := range tests {
		got := TargetTables(tc.players, tc.seats, tc.minBreak)
		require.Equal(t, tc.want, got, "players=%d seats=%d min=%d", tc.players, tc.seats, tc.minBreak)
	}
}

func TestRebalance_BreaksSmallestTableAndKeepsSeats(t *testing.T) {
	current := Layout{}
	add := func(table int, ids ...int) {
		for i, id := range ids {
			current = append(current, Assignment{PlayerID: fmt.Sprintf("p%d", id), TableNumber: table, SeatNumber: i + 1})
		}
	}
	add(1, 1, 2, 3, 4, 5, 6, 7, 8)
	add(2, 9, 10, 11, 12, 13, 14, 15, 16)
	add(3, 17, 18, 19, 20, 21, 22, 23)
	add(4, 24, 25, 26, 27)

	eliminated := map[string]bool{"p1": true, "p2": true, "p9": true, "p17": true}
	players := make([]string, 0, 23)
	for _, id := range playerIDs(27) {
		if !eliminated[id] {
			players = append(players, id)
		}
	}

	layout, stats, err := Rebalance(players, current, 9, 3, NewRand(7))
	require.NoError(t, err)

	sizes := requireValidLayout(t, layout, players, 9)
	require.Equal(t, map[int]int{1: 8, 2: 8, 3: 7}, sizes)
	require.Equal(t, Stats{Moved: 4, Dissolved: 1, Tables: 3}, stats)

	before := make(map[string]Assignment, len(current))
	for _, a := range current {
		before[a.PlayerID] = a
	}
	for _, a := range layout {
		prior := before[a.PlayerID]
		if prior.TableNumber == 4 {
			continue
		}
		require.Equal(t, prior, a, "player on kept table must keep seat")
	}
}

func TestRebalance_BalanceBoundFromScratch(t *testing.T) {
	players := playerIDs(23)

	layout, stats, err := Rebalance(players, nil, 9, 3, NewRand(99))
	require.NoError(t, err)

	sizes := requireValidLayout(t, layout, players, 9)
	requireBalanced(t, sizes)
	for table, size := range sizes {
		require.GreaterOrEqual(t, size, 3, "table %d below minimum", table)
	}
	require.Equal(t, 0, stats.Moved)
	require.Equal(t, 0, stats.Dissolved)
}

func TestRebalance_OverfullTableSheds(t *testing.T) {
	current := Layout{}
	for i := 1; i <= 9; i++ {
		current = append(current, Assignment{PlayerID: fmt.Sprintf("p%d", i), TableNumber: 1, SeatNumber: i})
	}
	for i := 10; i <= 11; i++ {
		current = append(current, Assignment{PlayerID: fmt.Sprintf("p%d", i), TableNumber: 2, SeatNumber: i - 9})
	}
	players := playerIDs(11)

	layout, stats, err := Rebalance(players, current, 9, 3, NewRand(3))
	require.NoError(t, err)

	sizes := requireValidLayout(t, layout, players, 9)
	require.Equal(t, map[int]int{1: 6, 2: 5}, sizes)
	require.Equal(t, 3, stats.Moved)
	require.Equal(t, 0, stats.Dissolved)
}

func TestLayoutTables(t *testing.T) {
	layout := Layout{
		{PlayerID: "b", TableNumber: 2, SeatNumber: 3},
		{PlayerID: "a", TableNumber: 1, SeatNumber: 5},
		{PlayerID: "c", TableNumber: 2, SeatNumber: 1},
	}
	tables := layout.Tables()
	require.Len(t, tables, 2)
	require.Equal(t, 1, tables[0].Number)
	require.Equal(t, "c", tables[1].Seats[0].PlayerID)
}
