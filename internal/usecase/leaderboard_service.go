package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/tournament-engine/internal/domain/leaderboard"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type Leaderboard struct {
	TournamentID string
	Status       tournament.Status
	Entries      []leaderboard.Entry
}

type LeaderboardService struct {
	engine
}

func NewLeaderboardService(
	repo tournament.Repository,
	seasons season.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *LeaderboardService {
	return &LeaderboardService{engine: newEngine(repo, seasons, nil, idGen, logger)}
}

// GetLiveLeaderboard projects any tournament. A finished one is ordered by final rank.
func (s *LeaderboardService) GetLiveLeaderboard(ctx context.Context, tournamentID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLiveLeaderboard", tournamentAttr(tournamentID))
	defer span.End()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return Leaderboard{}, err
	}
	return s.project(ctx, t)
}

func (s *LeaderboardService) GetFinalResults(ctx context.Context, tournamentID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetFinalResults", tournamentAttr(tournamentID))
	defer span.End()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return Leaderboard{}, err
	}
	if t.Status != tournament.StatusFinished {
		return Leaderboard{}, fmt.Errorf("%w: id=%s status=%s", ErrTournamentNotFinished, t.ID, t.Status)
	}
	return s.project(ctx, t)
}

func (s *LeaderboardService) project(ctx context.Context, t tournament.Tournament) (Leaderboard, error) {
	ssn, err := s.loadSeason(ctx, t.SeasonID)
	if err != nil {
		return Leaderboard{}, err
	}
	players, err := s.repo.ListPlayers(ctx, t.ID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list players: %w", err)
	}

	entries, err := leaderboard.Project(t.Status, players, ssn.Scoring)
	if err != nil {
		if errors.Is(err, leaderboard.ErrRanksIncomplete) || errors.Is(err, leaderboard.ErrRanksInvalid) {
			s.logger.ErrorContext(ctx, "finished tournament failed completion check", "tournament_id", t.ID, "error", err)
			return Leaderboard{}, fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
		}
		return Leaderboard{}, err
	}

	return Leaderboard{
		TournamentID: t.ID,
		Status:       t.Status,
		Entries:      entries,
	}, nil
}
