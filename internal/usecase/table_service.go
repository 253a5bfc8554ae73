package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/seating"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type GenerateTablesInput struct {
	TournamentID  string
	SeatsPerTable int
	// Seed reproduces a seating; nil derives one from the clock.
	Seed *uint64
}

type RebalanceTablesInput struct {
	TournamentID      string
	SeatsPerTable     int
	MinPlayersToBreak int
	Seed              *uint64
}

type TableLayout struct {
	TournamentID string
	Generation   int
	Tables       []seating.Table
	Stats        seating.Stats
	Seed         uint64
}

type TableService struct {
	engine
	minPlayersToBreak int
}

func NewTableService(
	repo tournament.Repository,
	seasons season.Repository,
	publisher tournament.EventPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
	minPlayersToBreak int,
) *TableService {
	if minPlayersToBreak < 1 {
		minPlayersToBreak = seating.DefaultMinPlayersToBreak
	}
	return &TableService{
		engine:            newEngine(repo, seasons, publisher, idGen, logger),
		minPlayersToBreak: minPlayersToBreak,
	}
}

func (s *TableService) GenerateTables(ctx context.Context, input GenerateTablesInput) (TableLayout, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.GenerateTables", tournamentAttr(input.TournamentID))
	defer span.End()

	tournamentID, err := requireID(input.TournamentID, "tournament id")
	if err != nil {
		return TableLayout{}, err
	}

	var (
		out    TableLayout
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		switch t.Status {
		case tournament.StatusInProgress, tournament.StatusRegistration:
		case tournament.StatusFinished:
			return fmt.Errorf("%w: id=%s", ErrTournamentFinished, t.ID)
		default:
			return fmt.Errorf("%w: id=%s status=%s", ErrTournamentNotInProgress, t.ID, t.Status)
		}

		current, err := tx.ListActiveAssignments(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		if len(current) > 0 {
			return fmt.Errorf("%w: generation=%d, rebalance instead", ErrAssignmentsExist, current[0].Generation)
		}

		playerIDs, err := activePlayerIDs(ctx, tx, t.ID)
		if err != nil {
			return err
		}

		seats := s.seats(*t, input.SeatsPerTable)
		now := s.now().UTC()
		seed := s.seed(input.Seed)
		layout, err := seating.Assign(playerIDs, seats, seating.NewRand(seed))
		if err != nil {
			return mapSeatingError(err)
		}

		out = TableLayout{
			TournamentID: t.ID,
			Generation:   1,
			Tables:       layout.Tables(),
			Seed:         seed,
		}
		out.Stats.Tables = len(out.Tables)
		if err := tx.ReplaceAssignments(ctx, t.ID, toAssignments(t.ID, layout, out.Generation, now)); err != nil {
			return fmt.Errorf("replace assignments: %w", err)
		}

		event, err := s.newEvent(tournament.EventTablesGenerated, t.ID, now, TablesPayload{
			Generation: out.Generation,
			Tables:     out.Stats.Tables,
			Players:    len(layout),
			Seed:       seed,
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return TableLayout{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "tables generated", "tournament_id", tournamentID, "tables", out.Stats.Tables, "seed", out.Seed)
	return out, nil
}

func (s *TableService) RebalanceTables(ctx context.Context, input RebalanceTablesInput) (TableLayout, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.RebalanceTables", tournamentAttr(input.TournamentID))
	defer span.End()

	tournamentID, err := requireID(input.TournamentID, "tournament id")
	if err != nil {
		return TableLayout{}, err
	}
	minBreak := input.MinPlayersToBreak
	if minBreak == 0 {
		minBreak = s.minPlayersToBreak
	}

	var (
		out    TableLayout
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		if err := requireInProgress(*t); err != nil {
			return err
		}

		current, err := tx.ListActiveAssignments(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		generation := 0
		previous := make(seating.Layout, 0, len(current))
		for _, a := range current {
			if a.Generation > generation {
				generation = a.Generation
			}
			previous = append(previous, seating.Assignment{
				PlayerID:    a.PlayerID,
				TableNumber: a.TableNumber,
				SeatNumber:  a.SeatNumber,
			})
		}

		playerIDs, err := activePlayerIDs(ctx, tx, t.ID)
		if err != nil {
			return err
		}

		seats := s.seats(*t, input.SeatsPerTable)
		now := s.now().UTC()
		seed := s.seed(input.Seed)
		layout, stats, err := seating.Rebalance(playerIDs, previous, seats, minBreak, seating.NewRand(seed))
		if err != nil {
			return mapSeatingError(err)
		}

		out = TableLayout{
			TournamentID: t.ID,
			Generation:   generation + 1,
			Tables:       layout.Tables(),
			Stats:        stats,
			Seed:         seed,
		}
		if err := tx.ReplaceAssignments(ctx, t.ID, toAssignments(t.ID, layout, out.Generation, now)); err != nil {
			return fmt.Errorf("replace assignments: %w", err)
		}

		event, err := s.newEvent(tournament.EventTablesRebalanced, t.ID, now, TablesPayload{
			Generation: out.Generation,
			Tables:     stats.Tables,
			Players:    len(layout),
			Moved:      stats.Moved,
			Dissolved:  stats.Dissolved,
			Seed:       seed,
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return TableLayout{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "tables rebalanced",
		"tournament_id", tournamentID,
		"generation", out.Generation,
		"tables", out.Stats.Tables,
		"moved", out.Stats.Moved,
		"dissolved", out.Stats.Dissolved,
		"seed", out.Seed,
	)
	return out, nil
}

func (s *TableService) ListTables(ctx context.Context, tournamentID string) (TableLayout, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.ListTables", tournamentAttr(tournamentID))
	defer span.End()

	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return TableLayout{}, err
	}
	current, err := s.repo.ListActiveAssignments(ctx, t.ID)
	if err != nil {
		return TableLayout{}, fmt.Errorf("list assignments: %w", err)
	}

	out := TableLayout{TournamentID: t.ID}
	layout := make(seating.Layout, 0, len(current))
	for _, a := range current {
		out.Generation = a.Generation
		layout = append(layout, seating.Assignment{
			PlayerID:    a.PlayerID,
			TableNumber: a.TableNumber,
			SeatNumber:  a.SeatNumber,
		})
	}
	out.Tables = layout.Tables()
	out.Stats.Tables = len(out.Tables)
	return out, nil
}

func (s *TableService) seats(t tournament.Tournament, requested int) int {
	if requested != 0 {
		return requested
	}
	if t.SeatsPerTable != 0 {
		return t.SeatsPerTable
	}
	return seating.DefaultSeatsPerTable
}

func (s *TableService) seed(requested *uint64) uint64 {
	if requested != nil {
		return *requested
	}
	return uint64(s.now().UnixNano())
}

func activePlayerIDs(ctx context.Context, tx tournament.Tx, tournamentID string) ([]string, error) {
	players, err := tx.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make([]string, 0, len(players))
	for _, p := range players {
		if p.Active() {
			out = append(out, p.PlayerID)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: id=%s", ErrNoActivePlayers, tournamentID)
	}
	return out, nil
}

func toAssignments(tournamentID string, layout seating.Layout, generation int, now time.Time) []tournament.TableAssignment {
	out := make([]tournament.TableAssignment, 0, len(layout))
	for _, a := range layout {
		out = append(out, tournament.TableAssignment{
			TournamentID: tournamentID,
			PlayerID:     a.PlayerID,
			TableNumber:  a.TableNumber,
			SeatNumber:   a.SeatNumber,
			Generation:   generation,
			IsActive:     true,
			CreatedAt:    now,
		})
	}
	return out
}

func mapSeatingError(err error) error {
	switch {
	case errors.Is(err, seating.ErrNoPlayers):
		return fmt.Errorf("%w: %v", ErrNoActivePlayers, err)
	case errors.Is(err, seating.ErrInvalidSeats), errors.Is(err, seating.ErrInvalidMinBreak), errors.Is(err, seating.ErrDuplicatePlayer):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
