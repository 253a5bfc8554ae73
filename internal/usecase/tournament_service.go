package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/seating"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type CreateTournamentInput struct {
	Name     string
	SeasonID string
	OwnerID  string
	// Schedule wins over Generate when both are set.
	Schedule        blinds.Schedule
	Generate        *blinds.GenerateInput
	RebuyEndLevel   *int
	MaxRebuys       int
	SeatsPerTable   int
	BuyIn           int64
	RebuyPrice      int64
	LightRebuyPrice int64
}

type EnrollPlayerInput struct {
	TournamentID string
	PlayerID     string
	DisplayName  string
}

type TournamentService struct {
	engine
	defaultSeats int
}

func NewTournamentService(
	repo tournament.Repository,
	seasons season.Repository,
	publisher tournament.EventPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
	defaultSeats int,
) *TournamentService {
	if defaultSeats < 2 {
		defaultSeats = seating.DefaultSeatsPerTable
	}
	return &TournamentService{
		engine:       newEngine(repo, seasons, publisher, idGen, logger),
		defaultSeats: defaultSeats,
	}
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CreateTournament")
	defer span.End()

	seasonID, err := requireID(input.SeasonID, "season id")
	if err != nil {
		return tournament.Tournament{}, err
	}
	if _, err := s.loadSeason(ctx, seasonID); err != nil {
		return tournament.Tournament{}, err
	}

	schedule := input.Schedule
	if len(schedule) == 0 {
		if input.Generate == nil {
			return tournament.Tournament{}, fmt.Errorf("%w: blind schedule or generator input is required", ErrInvalidInput)
		}
		schedule, err = blinds.Generate(*input.Generate)
		if err != nil {
			return tournament.Tournament{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	tournamentID, err := s.idGen.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}

	seats := input.SeatsPerTable
	if seats == 0 {
		seats = s.defaultSeats
	}

	now := s.now().UTC()
	item := tournament.Tournament{
		ID:              tournamentID,
		Name:            strings.TrimSpace(input.Name),
		SeasonID:        seasonID,
		OwnerID:         strings.TrimSpace(input.OwnerID),
		Status:          tournament.StatusPlanned,
		Schedule:        schedule,
		CurrentLevel:    1,
		RebuyEndLevel:   input.RebuyEndLevel,
		MaxRebuys:       input.MaxRebuys,
		SeatsPerTable:   seats,
		BuyIn:           input.BuyIn,
		RebuyPrice:      input.RebuyPrice,
		LightRebuyPrice: input.LightRebuyPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	if err := item.ValidateBasic(); err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.CreateTournament(ctx, item); err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", mapStoreError(err))
	}

	s.logger.InfoContext(ctx, "tournament created", "tournament_id", item.ID, "season_id", seasonID, "levels", len(schedule))
	return item, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetTournament", tournamentAttr(tournamentID))
	defer span.End()

	return s.getTournament(ctx, tournamentID)
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := s.repo.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return items, nil
}

func (s *TournamentService) OpenRegistration(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	return s.transition(ctx, tournamentID, tournament.StatusRegistration, tournament.EventRegistrationOpened)
}

func (s *TournamentService) StartTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	return s.transition(ctx, tournamentID, tournament.StatusInProgress, tournament.EventTournamentStarted)
}

func (s *TournamentService) CancelTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	return s.transition(ctx, tournamentID, tournament.StatusCancelled, tournament.EventTournamentCancelled)
}

func (s *TournamentService) transition(
	ctx context.Context,
	tournamentID string,
	to tournament.Status,
	eventType tournament.EventType,
) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Transition", tournamentAttr(tournamentID))
	defer span.End()

	tournamentID, err := requireID(tournamentID, "tournament id")
	if err != nil {
		return tournament.Tournament{}, err
	}

	var (
		out    tournament.Tournament
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		from := t.Status
		if from == tournament.StatusFinished {
			return fmt.Errorf("%w: id=%s", ErrTournamentFinished, t.ID)
		}
		if !tournament.CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		players, err := tx.ListPlayers(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if to == tournament.StatusInProgress && len(players) < 2 {
			return fmt.Errorf("%w: enrolled=%d need at least 2", ErrNotEnoughPlayers, len(players))
		}

		now := s.now().UTC()
		t.Status = to
		t.UpdatedAt = now
		switch to {
		case tournament.StatusInProgress:
			t.StartedAt = &now
			t.CurrentLevel = 1
		case tournament.StatusCancelled:
			t.Timer = t.Timer.Pause(now)
		}
		if err := tx.UpdateTournament(ctx, *t); err != nil {
			return fmt.Errorf("update tournament: %w", err)
		}

		event, err := s.newEvent(eventType, t.ID, now, StatusChangedPayload{
			From:    string(from),
			To:      string(to),
			Players: len(players),
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		out = *t
		return nil
	})
	if err != nil {
		return tournament.Tournament{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "tournament status changed", "tournament_id", out.ID, "status", out.Status)
	return out, nil
}

func (s *TournamentService) EnrollPlayer(ctx context.Context, input EnrollPlayerInput) (tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.EnrollPlayer", tournamentAttr(input.TournamentID))
	defer span.End()

	tournamentID, err := requireID(input.TournamentID, "tournament id")
	if err != nil {
		return tournament.Player{}, err
	}
	playerID, err := requireID(input.PlayerID, "player id")
	if err != nil {
		return tournament.Player{}, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = playerID
	}

	var (
		out    tournament.Player
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		switch t.Status {
		case tournament.StatusPlanned, tournament.StatusRegistration:
		case tournament.StatusFinished:
			return fmt.Errorf("%w: id=%s", ErrTournamentFinished, t.ID)
		default:
			return fmt.Errorf("%w: status=%s", ErrEnrollmentClosed, t.Status)
		}

		players, err := tx.ListPlayers(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if _, exists := indexPlayers(players)[playerID]; exists {
			return fmt.Errorf("%w: player=%s", ErrPlayerAlreadyEnrolled, playerID)
		}

		rowID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate player row id: %w", err)
		}
		now := s.now().UTC()
		out = tournament.Player{
			ID:              rowID,
			TournamentID:    t.ID,
			PlayerID:        playerID,
			DisplayName:     displayName,
			EnrollmentOrder: len(players) + 1,
			State:           tournament.PlayerActive,
			CreatedAt:       now,
			UpdatedAt:       now,
			Version:         1,
		}
		if err := tx.InsertPlayer(ctx, out); err != nil {
			return fmt.Errorf("insert player: %w", err)
		}

		event, err := s.newEvent(tournament.EventPlayerEnrolled, t.ID, now, PlayerEnrolledPayload{
			PlayerID:        out.PlayerID,
			DisplayName:     out.DisplayName,
			EnrollmentOrder: out.EnrollmentOrder,
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return tournament.Player{}, err
	}

	s.publish(ctx, events)
	return out, nil
}

func (s *TournamentService) ListPlayers(ctx context.Context, tournamentID string) ([]tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListPlayers", tournamentAttr(tournamentID))
	defer span.End()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.ListPlayers(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *TournamentService) ListEliminations(ctx context.Context, tournamentID string) ([]tournament.Elimination, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListEliminations(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list eliminations: %w", err)
	}
	return items, nil
}

func (s *TournamentService) ListBusts(ctx context.Context, tournamentID string) ([]tournament.Bust, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListBusts(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list busts: %w", err)
	}
	return items, nil
}
