package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

// NoopEventPublisher drops every event.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, ...tournament.Event) {}

// engine holds collaborators shared by the tournament services.
type engine struct {
	repo      tournament.Repository
	seasons   season.Repository
	publisher tournament.EventPublisher
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func newEngine(
	repo tournament.Repository,
	seasons season.Repository,
	publisher tournament.EventPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
) engine {
	if publisher == nil {
		publisher = NoopEventPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return engine{
		repo:      repo,
		seasons:   seasons,
		publisher: publisher,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

// withinTx runs fn inside one transaction with the tournament row locked.
func (e *engine) withinTx(
	ctx context.Context,
	tournamentID string,
	fn func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error,
) error {
	err := e.repo.WithinTx(ctx, func(ctx context.Context, tx tournament.Tx) error {
		t, ok, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: id=%s", ErrTournamentNotFound, tournamentID)
		}
		return fn(ctx, tx, &t)
	})
	return mapStoreError(err)
}

func (e *engine) getTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	t, ok, err := e.repo.GetTournament(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !ok {
		return tournament.Tournament{}, fmt.Errorf("%w: id=%s", ErrTournamentNotFound, tournamentID)
	}
	return t, nil
}

func (e *engine) loadSeason(ctx context.Context, seasonID string) (season.Season, error) {
	s, ok, err := e.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: id=%s", ErrSeasonNotFound, seasonID)
	}
	return s, nil
}

func (e *engine) newEvent(typ tournament.EventType, tournamentID string, at time.Time, payload any) (tournament.Event, error) {
	id, err := e.idGen.NewID()
	if err != nil {
		return tournament.Event{}, fmt.Errorf("generate event id: %w", err)
	}
	return tournament.Event{
		ID:           id,
		Type:         typ,
		TournamentID: tournamentID,
		OccurredAt:   at,
		Payload:      payload,
	}, nil
}

// publish must only be called after the producing transaction committed.
func (e *engine) publish(ctx context.Context, events []tournament.Event) {
	if len(events) == 0 {
		return
	}
	e.publisher.Publish(context.WithoutCancel(ctx), events...)
}

func requireInProgress(t tournament.Tournament) error {
	switch t.Status {
	case tournament.StatusInProgress:
		return nil
	case tournament.StatusFinished:
		return fmt.Errorf("%w: id=%s", ErrTournamentFinished, t.ID)
	default:
		return fmt.Errorf("%w: id=%s status=%s", ErrTournamentNotInProgress, t.ID, t.Status)
	}
}

func indexPlayers(players []tournament.Player) map[string]int {
	out := make(map[string]int, len(players))
	for i, p := range players {
		out[p.PlayerID] = i
	}
	return out
}

func effectiveLevel(t tournament.Tournament, now time.Time) (int, error) {
	level, err := t.EffectiveLevel(now)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve level: %v", ErrIntegrityViolation, err)
	}
	return level, nil
}

func rebuyEndLabel(t tournament.Tournament) string {
	if t.RebuyEndLevel == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *t.RebuyEndLevel)
}

func requireID(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return value, nil
}
