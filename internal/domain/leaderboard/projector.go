package leaderboard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

var (
	ErrRanksIncomplete = errors.New("finished tournament has unranked players")
	ErrRanksInvalid    = errors.New("final ranks are not a permutation of 1..N")
)

type Entry struct {
	CurrentRank int
	Player      tournament.Player
	Points      scoring.Breakdown
}

// ValidateCompletion checks that final ranks are exactly {1..N}.
func ValidateCompletion(players []tournament.Player) error {
	n := len(players)
	seen := make([]bool, n+1)
	for _, p := range players {
		if p.FinalRank == nil {
			return fmt.Errorf("%w: player=%s", ErrRanksIncomplete, p.PlayerID)
		}
		rank := *p.FinalRank
		if rank < 1 || rank > n {
			return fmt.Errorf("%w: player=%s rank=%d outside 1..%d", ErrRanksInvalid, p.PlayerID, rank, n)
		}
		if seen[rank] {
			return fmt.Errorf("%w: rank %d assigned twice", ErrRanksInvalid, rank)
		}
		seen[rank] = true
	}
	return nil
}

// Project orders finished tournaments by final rank and live ones by points, then
// eliminations, then enrollment order.
func Project(status tournament.Status, players []tournament.Player, cfg scoring.Config) ([]Entry, error) {
	entries := make([]Entry, 0, len(players))
	for _, p := range players {
		entries = append(entries, Entry{Player: p, Points: scoring.Score(p.Stats(), cfg)})
	}

	if status == tournament.StatusFinished {
		if err := ValidateCompletion(players); err != nil {
			return nil, err
		}
		sort.Slice(entries, func(i, j int) bool {
			return *entries[i].Player.FinalRank < *entries[j].Player.FinalRank
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Points.TotalPoints != b.Points.TotalPoints {
				return a.Points.TotalPoints > b.Points.TotalPoints
			}
			if a.Player.EliminationsCount != b.Player.EliminationsCount {
				return a.Player.EliminationsCount > b.Player.EliminationsCount
			}
			return a.Player.EnrollmentOrder < b.Player.EnrollmentOrder
		})
	}

	for i := range entries {
		entries[i].CurrentRank = i + 1
	}
	return entries, nil
}
