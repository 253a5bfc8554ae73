package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/leaderboard"
	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type RecordBustInput struct {
	TournamentID       string
	EliminatedPlayerID string
	KillerPlayerID     string
}

type RecaveInput struct {
	TournamentID string
	BustID       string
	Light        bool
}

type RecordEliminationInput struct {
	TournamentID       string
	EliminatedPlayerID string
	EliminatorPlayerID string
}

type RecaveResult struct {
	Bust   tournament.Bust
	Player tournament.Player
}

type EliminationResult struct {
	Elimination         tournament.Elimination
	TournamentCompleted bool
	RemainingPlayers    int
}

// LedgerService records busts, recaves and eliminations. Every call is one transaction
// against the locked tournament row.
type LedgerService struct {
	engine
}

func NewLedgerService(
	repo tournament.Repository,
	seasons season.Repository,
	publisher tournament.EventPublisher,
	idGen idgen.Generator,
	logger *logging.Logger,
) *LedgerService {
	return &LedgerService{engine: newEngine(repo, seasons, publisher, idGen, logger)}
}

func (s *LedgerService) RecordBust(ctx context.Context, input RecordBustInput) (tournament.Bust, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.RecordBust", tournamentAttr(input.TournamentID))
	defer span.End()

	tournamentID, eliminatedID, killerID, err := validatePair(input.TournamentID, input.EliminatedPlayerID, input.KillerPlayerID)
	if err != nil {
		return tournament.Bust{}, err
	}

	var (
		out    tournament.Bust
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		if err := requireInProgress(*t); err != nil {
			return err
		}
		now := s.now().UTC()
		level, err := effectiveLevel(*t, now)
		if err != nil {
			return err
		}
		if !t.RecavesOpen(level) {
			return fmt.Errorf("%w: level=%d rebuy_end_level=%s, record a hard elimination instead",
				ErrRebuyWindowClosed, level, rebuyEndLabel(*t))
		}

		players, err := tx.ListPlayers(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		index := indexPlayers(players)

		ei, ok := index[eliminatedID]
		if !ok {
			return fmt.Errorf("%w: player=%s", ErrPlayerNotEnrolled, eliminatedID)
		}
		eliminated := &players[ei]
		if !eliminated.Active() {
			return fmt.Errorf("%w: player=%s rank=%d", ErrPlayerAlreadyEliminated, eliminatedID, *eliminated.FinalRank)
		}
		if eliminated.State == tournament.PlayerBusted {
			return fmt.Errorf("%w: player=%s", ErrBustPendingDecision, eliminatedID)
		}

		ki, ok := index[killerID]
		if !ok {
			return fmt.Errorf("%w: player=%s", ErrKillerNotEnrolled, killerID)
		}
		killer := &players[ki]
		if !killer.Active() {
			return fmt.Errorf("%w: player=%s", ErrKillerAlreadyEliminated, killerID)
		}

		ssn, err := s.loadSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}

		bustID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate bust id: %w", err)
		}
		out = tournament.Bust{
			ID:                 bustID,
			TournamentID:       t.ID,
			EliminatedPlayerID: eliminatedID,
			KillerPlayerID:     killerID,
			Level:              level,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.InsertBust(ctx, out); err != nil {
			return fmt.Errorf("insert bust: %w", err)
		}

		killer.BustEliminations++
		killer.Rescore(ssn.Scoring)
		killer.UpdatedAt = now
		if err := tx.UpdatePlayer(ctx, *killer); err != nil {
			return fmt.Errorf("update killer: %w", err)
		}

		eliminated.State = tournament.PlayerBusted
		eliminated.UpdatedAt = now
		if err := tx.UpdatePlayer(ctx, *eliminated); err != nil {
			return fmt.Errorf("update eliminated player: %w", err)
		}

		paused := t.Timer.Running()
		t.Timer = t.Timer.Pause(now)
		t.CurrentLevel = level
		t.UpdatedAt = now
		if err := tx.UpdateTournament(ctx, *t); err != nil {
			return fmt.Errorf("update tournament: %w", err)
		}

		event, err := s.newEvent(tournament.EventBustRecorded, t.ID, now, BustPayload{
			BustID:             out.ID,
			EliminatedPlayerID: eliminatedID,
			KillerPlayerID:     killerID,
			Level:              level,
		})
		if err != nil {
			return err
		}
		events = append(events, event)

		if paused {
			event, err := s.newEvent(tournament.EventTimerPaused, t.ID, now, TimerPayload{
				ElapsedSeconds: t.Timer.ElapsedSeconds,
				Level:          level,
				Automatic:      true,
			})
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return tournament.Bust{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "bust recorded",
		"tournament_id", tournamentID,
		"bust_id", out.ID,
		"eliminated_player_id", eliminatedID,
		"killer_player_id", killerID,
		"level", out.Level,
	)
	return out, nil
}

func (s *LedgerService) ApplyRecave(ctx context.Context, input RecaveInput) (RecaveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.ApplyRecave", tournamentAttr(input.TournamentID))
	defer span.End()

	return s.toggleRecave(ctx, input, true)
}

func (s *LedgerService) CancelRecave(ctx context.Context, input RecaveInput) (RecaveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.CancelRecave", tournamentAttr(input.TournamentID))
	defer span.End()

	return s.toggleRecave(ctx, input, false)
}

func (s *LedgerService) toggleRecave(ctx context.Context, input RecaveInput, apply bool) (RecaveResult, error) {
	tournamentID, err := requireID(input.TournamentID, "tournament id")
	if err != nil {
		return RecaveResult{}, err
	}
	bustID, err := requireID(input.BustID, "bust id")
	if err != nil {
		return RecaveResult{}, err
	}

	var (
		out    RecaveResult
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		bust, ok, err := tx.GetBust(ctx, bustID)
		if err != nil {
			return fmt.Errorf("get bust: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: id=%s", ErrBustNotFound, bustID)
		}
		if bust.TournamentID != t.ID {
			return fmt.Errorf("%w: bust=%s tournament=%s", ErrBustWrongTournament, bustID, t.ID)
		}
		if err := requireInProgress(*t); err != nil {
			return err
		}
		if apply && bust.RecaveApplied {
			return fmt.Errorf("%w: bust=%s", ErrRecaveAlreadyApplied, bustID)
		}
		if !apply && !bust.RecaveApplied {
			return fmt.Errorf("%w: bust=%s", ErrRecaveNotApplied, bustID)
		}

		now := s.now().UTC()
		level, err := effectiveLevel(*t, now)
		if err != nil {
			return err
		}
		if !t.RecavesOpen(level) {
			return fmt.Errorf("%w: level=%d rebuy_end_level=%s", ErrRebuyWindowClosed, level, rebuyEndLabel(*t))
		}

		players, err := tx.ListPlayers(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		pi, ok := indexPlayers(players)[bust.EliminatedPlayerID]
		if !ok {
			return fmt.Errorf("%w: bust references player=%s", ErrIntegrityViolation, bust.EliminatedPlayerID)
		}
		player := &players[pi]
		if !player.Active() {
			return fmt.Errorf("%w: player=%s rank=%d", ErrPlayerAlreadyEliminated, player.PlayerID, *player.FinalRank)
		}

		if err := requireLatestBust(ctx, tx, bust); err != nil {
			return err
		}

		light := input.Light
		if apply {
			if light {
				if player.LightRebuyUsed {
					return fmt.Errorf("%w: player=%s", ErrLightRebuyUsed, player.PlayerID)
				}
				player.LightRebuyUsed = true
				bust.RecaveLight = true
			} else {
				if t.MaxRebuys > 0 && player.RebuysCount >= t.MaxRebuys {
					return fmt.Errorf("%w: player=%s rebuys=%d max=%d", ErrRebuyLimitReached, player.PlayerID, player.RebuysCount, t.MaxRebuys)
				}
				player.RebuysCount++
			}
			bust.RecaveApplied = true
			player.State = tournament.PlayerActive
		} else {
			light = bust.RecaveLight
			if light {
				player.LightRebuyUsed = false
			} else if player.RebuysCount > 0 {
				player.RebuysCount--
			}
			bust.RecaveApplied = false
			bust.RecaveLight = false
			player.State = tournament.PlayerBusted
		}

		ssn, err := s.loadSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}
		player.Rescore(ssn.Scoring)
		player.UpdatedAt = now
		bust.UpdatedAt = now

		if err := tx.UpdateBust(ctx, bust); err != nil {
			return fmt.Errorf("update bust: %w", err)
		}
		if err := tx.UpdatePlayer(ctx, *player); err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		if t.CurrentLevel != level {
			t.CurrentLevel = level
			t.UpdatedAt = now
			if err := tx.UpdateTournament(ctx, *t); err != nil {
				return fmt.Errorf("update tournament: %w", err)
			}
		}

		eventType := tournament.EventRecaveApplied
		if !apply {
			eventType = tournament.EventRecaveCancelled
		}
		event, err := s.newEvent(eventType, t.ID, now, RecavePayload{
			BustID:      bust.ID,
			PlayerID:    player.PlayerID,
			Light:       light,
			RebuysCount: player.RebuysCount,
			TotalPoints: player.Points.TotalPoints,
		})
		if err != nil {
			return err
		}
		events = append(events, event)
		out = RecaveResult{Bust: bust, Player: *player}
		return nil
	})
	if err != nil {
		return RecaveResult{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "recave toggled",
		"tournament_id", tournamentID,
		"bust_id", bustID,
		"applied", apply,
		"rebuys_count", out.Player.RebuysCount,
	)
	return out, nil
}

// requireLatestBust rejects decisions on a bust that a later bust of the same player replaced.
func requireLatestBust(ctx context.Context, tx tournament.Tx, bust tournament.Bust) error {
	busts, err := tx.ListBusts(ctx, bust.TournamentID)
	if err != nil {
		return fmt.Errorf("list busts: %w", err)
	}
	latest := ""
	for _, item := range busts {
		if item.EliminatedPlayerID == bust.EliminatedPlayerID {
			latest = item.ID
		}
	}
	if latest != bust.ID {
		return fmt.Errorf("%w: bust=%s latest=%s", ErrBustSuperseded, bust.ID, latest)
	}
	return nil
}

func (s *LedgerService) RecordElimination(ctx context.Context, input RecordEliminationInput) (EliminationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.RecordElimination", tournamentAttr(input.TournamentID))
	defer span.End()

	tournamentID, eliminatedID, eliminatorID, err := validatePair(input.TournamentID, input.EliminatedPlayerID, input.EliminatorPlayerID)
	if err != nil {
		return EliminationResult{}, err
	}

	var (
		out    EliminationResult
		events []tournament.Event
	)
	err = s.withinTx(ctx, tournamentID, func(ctx context.Context, tx tournament.Tx, t *tournament.Tournament) error {
		if err := requireInProgress(*t); err != nil {
			return err
		}

		players, err := tx.ListPlayers(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		index := indexPlayers(players)

		ei, ok := index[eliminatedID]
		if !ok {
			return fmt.Errorf("%w: player=%s", ErrPlayerNotEnrolled, eliminatedID)
		}
		ki, ok := index[eliminatorID]
		if !ok {
			return fmt.Errorf("%w: player=%s", ErrEliminatorNotEnrolled, eliminatorID)
		}
		eliminated, eliminator := &players[ei], &players[ki]
		if !eliminated.Active() {
			return fmt.Errorf("%w: player=%s rank=%d", ErrPlayerAlreadyEliminated, eliminatedID, *eliminated.FinalRank)
		}
		if !eliminator.Active() {
			return fmt.Errorf("%w: player=%s", ErrEliminatorAlreadyEliminated, eliminatorID)
		}

		now := s.now().UTC()
		level, err := effectiveLevel(*t, now)
		if err != nil {
			return err
		}
		ssn, err := s.loadSeason(ctx, t.SeasonID)
		if err != nil {
			return err
		}

		rank := 0
		for _, p := range players {
			if p.Active() {
				rank++
			}
		}

		dirty := map[int]struct{}{ei: {}, ki: {}}

		eliminated.FinalRank = &rank
		eliminated.State = tournament.PlayerEliminated
		eliminated.EliminatedAt = &now

		eliminator.EliminationsCount++
		maxKills := 0
		for _, p := range players {
			if p.EliminationsCount > maxKills {
				maxKills = p.EliminationsCount
			}
		}
		leaderKill := eliminator.EliminationsCount == maxKills
		if leaderKill {
			eliminator.LeaderKills++
		}

		remaining := rank - 1
		completed := false
		if remaining == 1 {
			for i := range players {
				if !players[i].Active() {
					continue
				}
				first := 1
				players[i].FinalRank = &first
				players[i].State = tournament.PlayerWinner
				players[i].EliminatedAt = nil
				dirty[i] = struct{}{}
			}
			if err := leaderboard.ValidateCompletion(players); err != nil {
				return fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
			}
			completed = true
			remaining = 0
			s.assignPrizes(ctx, *t, ssn, players, dirty)

			t.Status = tournament.StatusFinished
			t.FinishedAt = &now
			t.Timer = t.Timer.Pause(now)
		}

		for i := range dirty {
			players[i].Rescore(ssn.Scoring)
			players[i].UpdatedAt = now
			if err := tx.UpdatePlayer(ctx, players[i]); err != nil {
				return fmt.Errorf("update player %s: %w", players[i].PlayerID, err)
			}
		}

		eliminationID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate elimination id: %w", err)
		}
		elimination := tournament.Elimination{
			ID:                 eliminationID,
			TournamentID:       t.ID,
			EliminatedPlayerID: eliminatedID,
			EliminatorPlayerID: eliminatorID,
			Rank:               rank,
			Level:              level,
			IsLeaderKill:       leaderKill,
			CreatedAt:          now,
		}
		if err := tx.InsertElimination(ctx, elimination); err != nil {
			return fmt.Errorf("insert elimination: %w", err)
		}

		t.CurrentLevel = level
		t.UpdatedAt = now
		if err := tx.UpdateTournament(ctx, *t); err != nil {
			return fmt.Errorf("update tournament: %w", err)
		}

		event, err := s.newEvent(tournament.EventEliminationRecorded, t.ID, now, EliminationPayload{
			EliminationID:      elimination.ID,
			EliminatedPlayerID: eliminatedID,
			EliminatorPlayerID: eliminatorID,
			Rank:               rank,
			Level:              level,
			IsLeaderKill:       leaderKill,
			RemainingPlayers:   remaining,
		})
		if err != nil {
			return err
		}
		events = append(events, event)

		if completed {
			event, err := s.newEvent(tournament.EventTournamentFinished, t.ID, now, finishedPayload(*t, players, ssn))
			if err != nil {
				return err
			}
			events = append(events, event)
		}

		out = EliminationResult{
			Elimination:         elimination,
			TournamentCompleted: completed,
			RemainingPlayers:    remaining,
		}
		return nil
	})
	if err != nil {
		return EliminationResult{}, err
	}

	s.publish(ctx, events)
	s.logger.InfoContext(ctx, "elimination recorded",
		"tournament_id", tournamentID,
		"eliminated_player_id", eliminatedID,
		"eliminator_player_id", eliminatorID,
		"rank", out.Elimination.Rank,
		"leader_kill", out.Elimination.IsLeaderKill,
		"completed", out.TournamentCompleted,
	)
	return out, nil
}

// assignPrizes sets prize amounts from the season paytable. A field the paytable does not cover
// leaves prizes unset.
func (s *LedgerService) assignPrizes(
	ctx context.Context,
	t tournament.Tournament,
	ss season.Season,
	players []tournament.Player,
	dirty map[int]struct{},
) {
	if ss.Payouts == nil {
		return
	}
	rebuys, lights := 0, 0
	for _, p := range players {
		rebuys += p.RebuysCount
		if p.LightRebuyUsed {
			lights++
		}
	}
	pool := payout.Pool(t.BuyIn, t.RebuyPrice, t.LightRebuyPrice, len(players), rebuys, lights)
	prizes, err := ss.Payouts.Distribute(pool, len(players))
	if err != nil {
		level := s.logger.WarnContext
		if !errors.Is(err, payout.ErrNoRowForField) {
			level = s.logger.ErrorContext
		}
		level(ctx, "prize distribution skipped", "tournament_id", t.ID, "pool", pool, "error", err)
		return
	}
	for i := range players {
		amount, ok := prizes[*players[i].FinalRank]
		if !ok {
			continue
		}
		players[i].PrizeAmount = &amount
		dirty[i] = struct{}{}
	}
}

func finishedPayload(t tournament.Tournament, players []tournament.Player, ss season.Season) TournamentFinishedPayload {
	standings := make([]StandingPayload, len(players))
	for _, p := range players {
		rank := *p.FinalRank
		standings[rank-1] = StandingPayload{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			FinalRank:   rank,
			TotalPoints: p.Points.TotalPoints,
			PrizeAmount: p.PrizeAmount,
		}
	}
	var finishedAt time.Time
	if t.FinishedAt != nil {
		finishedAt = *t.FinishedAt
	}
	return TournamentFinishedPayload{
		Name:       t.Name,
		SeasonID:   ss.ID,
		FinishedAt: finishedAt,
		Standings:  standings,
	}
}

func validatePair(tournamentID, eliminatedID, otherID string) (string, string, string, error) {
	tournamentID, err := requireID(tournamentID, "tournament id")
	if err != nil {
		return "", "", "", err
	}
	eliminatedID, err = requireID(eliminatedID, "eliminated player id")
	if err != nil {
		return "", "", "", err
	}
	otherID, err = requireID(otherID, "killer player id")
	if err != nil {
		return "", "", "", err
	}
	if eliminatedID == otherID {
		return "", "", "", fmt.Errorf("%w: player=%s", ErrSelfElimination, eliminatedID)
	}
	return tournamentID, eliminatedID, otherID, nil
}
