package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrStateConflict         = errors.New("state conflict")
	ErrIntegrityViolation    = errors.New("integrity violation")
	ErrConcurrencyConflict   = errors.New("concurrency conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Reasons wrap a category so callers can match either.
var (
	ErrSelfElimination       = fmt.Errorf("%w: self-elimination", ErrInvalidInput)
	ErrPlayerNotEnrolled     = fmt.Errorf("%w: player not enrolled", ErrInvalidInput)
	ErrKillerNotEnrolled     = fmt.Errorf("%w: killer not enrolled", ErrInvalidInput)
	ErrEliminatorNotEnrolled = fmt.Errorf("%w: eliminator not enrolled", ErrInvalidInput)
	ErrBustWrongTournament   = fmt.Errorf("%w: bust belongs to another tournament", ErrInvalidInput)

	ErrTournamentNotFound = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrSeasonNotFound     = fmt.Errorf("%w: season not found", ErrNotFound)
	ErrBustNotFound       = fmt.Errorf("%w: bust not found", ErrNotFound)

	ErrTournamentNotInProgress     = fmt.Errorf("%w: tournament not in progress", ErrStateConflict)
	ErrTournamentFinished          = fmt.Errorf("%w: tournament finished", ErrStateConflict)
	ErrTournamentNotFinished       = fmt.Errorf("%w: tournament not finished", ErrStateConflict)
	ErrInvalidTransition           = fmt.Errorf("%w: invalid tournament status transition", ErrStateConflict)
	ErrEnrollmentClosed            = fmt.Errorf("%w: enrollment closed", ErrStateConflict)
	ErrPlayerAlreadyEnrolled       = fmt.Errorf("%w: player already enrolled", ErrStateConflict)
	ErrNotEnoughPlayers            = fmt.Errorf("%w: not enough players", ErrStateConflict)
	ErrRebuyWindowClosed           = fmt.Errorf("%w: rebuy window closed", ErrStateConflict)
	ErrPlayerAlreadyEliminated     = fmt.Errorf("%w: player already eliminated", ErrStateConflict)
	ErrEliminatorAlreadyEliminated = fmt.Errorf("%w: eliminator already eliminated", ErrStateConflict)
	ErrKillerAlreadyEliminated     = fmt.Errorf("%w: killer already eliminated", ErrStateConflict)
	ErrBustPendingDecision         = fmt.Errorf("%w: bust pending decision", ErrStateConflict)
	ErrBustSuperseded              = fmt.Errorf("%w: bust superseded by a later bust", ErrStateConflict)
	ErrRecaveAlreadyApplied        = fmt.Errorf("%w: recave already applied", ErrStateConflict)
	ErrRecaveNotApplied            = fmt.Errorf("%w: recave not applied", ErrStateConflict)
	ErrRebuyLimitReached           = fmt.Errorf("%w: rebuy limit reached", ErrStateConflict)
	ErrLightRebuyUsed              = fmt.Errorf("%w: light rebuy already used", ErrStateConflict)
	ErrTimerNotStarted             = fmt.Errorf("%w: timer not started", ErrStateConflict)
	ErrNoActivePlayers             = fmt.Errorf("%w: no active players", ErrStateConflict)
	ErrAssignmentsExist            = fmt.Errorf("%w: assignments already exist", ErrStateConflict)
)

// mapStoreError turns a lost storage race into a concurrency conflict.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, tournament.ErrConcurrentModification) {
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	}
	return err
}
