package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
)

type CreateSeasonInput struct {
	Name    string
	Scoring scoring.Config
	Payouts *payout.Paytable
}

type SeasonService struct {
	repo  season.Repository
	idGen idgen.Generator
	now   func() time.Time
}

func NewSeasonService(repo season.Repository, idGen idgen.Generator) *SeasonService {
	return &SeasonService{
		repo:  repo,
		idGen: idGen,
		now:   time.Now,
	}
}

func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CreateSeason")
	defer span.End()

	seasonID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}

	item := season.Season{
		ID:        seasonID,
		Name:      strings.TrimSpace(input.Name),
		Scoring:   input.Scoring,
		Payouts:   input.Payouts,
		CreatedAt: s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return season.Season{}, fmt.Errorf("create season: %w", err)
	}
	return item, nil
}

func (s *SeasonService) GetSeason(ctx context.Context, seasonID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.GetSeason")
	defer span.End()

	seasonID, err := requireID(seasonID, "season id")
	if err != nil {
		return season.Season{}, err
	}
	item, ok, err := s.repo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: id=%s", ErrSeasonNotFound, seasonID)
	}
	return item, nil
}

func (s *SeasonService) ListSeasons(ctx context.Context) ([]season.Season, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return items, nil
}
