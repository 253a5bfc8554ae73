package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type ClockState struct {
	TournamentID   string
	Running        bool
	Started        bool
	ElapsedSeconds int64
	Position       blinds.Position
	RecavesOpen    bool
	RebuyEndLevel  *int
	At             time.Time
}

type ClockService struct {
	engine
}

func NewClockService(
	repo tournament.Repository,
	seasons season.Repository,
	publisher tournament.EventPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ClockService {
	return &ClockService{engine: newEngine(repo, seasons, publisher, idGen, logger)}
}

func (s *ClockService) GetClock(ctx context.Context, tournamentID string) (ClockState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.GetClock", tournamentAttr(tournamentID))
	defer span.End()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return ClockState{}, err
	}
	return clockState(t, s.now().UTC())
}

func (s *ClockService) StartTimer(ctx context.Context, tournamentID string) (ClockState, error) {
	return s.mutate(ctx, tournamentID, "usecase.ClockService.StartTimer", func(t *tournament.Tournament, now time.Time) (tournament.EventType, bool, error) {
		if t.Timer.Running() {
			return "", false, nil
		}
		eventType := tournament.EventTimerStarted
		if t.Timer.Started() {
			eventType = tournament.EventTimerResumed
		}
		t.Timer = t.Timer.Start(now)
		return eventType, true, nil
	})
}

func (s *ClockService) PauseTimer(ctx context.Context, tournamentID string) (ClockState, error) {
	return s.mutate(ctx, tournamentID, "usecase.ClockService.PauseTimer", func(t *tournament.Tournament, now time.Time) (tournament.EventType, bool, error) {
		if !t.Timer.Running() {
			return "", false, nil
		}
		t.Timer = t.Timer.Pause(now)
		return tournament.EventTimerPaused, true, nil
	})
}

func (s *ClockService) ResumeTimer(ctx context.Context, tournamentID string) (ClockState, error) {
	return s.mutate(ctx, tournamentID, "usecase.ClockService.ResumeTimer", func(t *tournament.Tournament, now time.Time) (tournament.EventType, bool, error) {
		if !t.Timer.Started() {
			return "", false, fmt.Errorf("%w: id=%s", ErrTimerNotStarted, t.ID)
		}
		if t.Timer.Running() {
			return "", false, nil
		}
		t.Timer = t.Timer.Start(now)
		return tournament.EventTimerResumed, true, nil
	})
}

func (s *ClockService) ResetTimer(ctx context.Context, tournamentID string) (ClockState, error) {
	return s.mutate(ctx, tournamentID, "usecase.ClockService.ResetTimer", func(t *tournament.Tournament, _ time.Time) (tournament.EventType, bool, error) {
		t.Timer = t.Timer.Reset()
		return tournament.EventTimerReset, true, nil
	})
}

// mutate applies op to the locked tournament. op reports false when the call is a no-op,
// in which case nothing is written and no event is emitted.
func (s *ClockService) mutate(
	ctx context.Context,
	tournamentID string,
	spanName string,
	op func(t *tournament.Tournament, now time.Time) (tournament.EventType, bool, error),
) (ClockState, error) {
	ctx, span := startUsecaseSpan(ctx, spanName, tournamentAttr(tournamentID))
	defer span.End()

	tournamentID, err := requireID(tournamentID, "tournament id")
	if err != nil {
		return ClockState{}, err
	}

	var (
		out    ClockState
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		if err := requireInProgress(*t); err != nil {
			return err
		}
		now := s.now().UTC()

		eventType, changed, err := op(t, now)
		if err != nil {
			return err
		}

		level, err := effectiveLevel(*t, now)
		if err != nil {
			return err
		}
		if changed || level != t.CurrentLevel {
			t.CurrentLevel = level
			t.UpdatedAt = now
			if err := tx.UpdateTournament(ctx, *t); err != nil {
				return fmt.Errorf("update tournament: %w", err)
			}
		}

		out, err = clockState(*t, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		event, err := s.newEvent(eventType, t.ID, now, TimerPayload{
			Running:        t.Timer.Running(),
			ElapsedSeconds: out.ElapsedSeconds,
			Level:          level,
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return ClockState{}, err
	}

	s.publish(ctx, events)
	return out, nil
}

func clockState(t tournament.Tournament, now time.Time) (ClockState, error) {
	elapsed := blinds.Elapsed(t.Timer, now)
	pos, err := blinds.Resolve(t.Schedule, elapsed)
	if err != nil {
		return ClockState{}, fmt.Errorf("%w: resolve level: %v", ErrIntegrityViolation, err)
	}
	return ClockState{
		TournamentID:   t.ID,
		Running:        t.Timer.Running(),
		Started:        t.Timer.Started(),
		ElapsedSeconds: elapsed,
		Position:       pos,
		RecavesOpen:    t.RecavesOpen(pos.Number()),
		RebuyEndLevel:  t.RebuyEndLevel,
		At:             now,
	}, nil
}
