package tournament

import (
	"context"
	"errors"
)

// ErrConcurrentModification is returned when the store rejects a write that lost a race.
var ErrConcurrentModification = errors.New("concurrent modification")

type Repository interface {
	CreateTournament(ctx context.Context, t Tournament) error
	GetTournament(ctx context.Context, tournamentID string) (Tournament, bool, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	ListPlayers(ctx context.Context, tournamentID string) ([]Player, error)
	ListEliminations(ctx context.Context, tournamentID string) ([]Elimination, error)
	ListBusts(ctx context.Context, tournamentID string) ([]Bust, error)
	ListActiveAssignments(ctx context.Context, tournamentID string) ([]TableAssignment, error)

	// WithinTx runs fn atomically. Returning an error rolls every write back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the read-modify-write surface available inside one transaction.
type Tx interface {
	// LockTournament reads the tournament row and holds it until the transaction ends.
	LockTournament(ctx context.Context, tournamentID string) (Tournament, bool, error)
	UpdateTournament(ctx context.Context, t Tournament) error

	ListPlayers(ctx context.Context, tournamentID string) ([]Player, error)
	InsertPlayer(ctx context.Context, p Player) error
	UpdatePlayer(ctx context.Context, p Player) error

	GetBust(ctx context.Context, bustID string) (Bust, bool, error)
	ListBusts(ctx context.Context, tournamentID string) ([]Bust, error)
	InsertBust(ctx context.Context, b Bust) error
	UpdateBust(ctx context.Context, b Bust) error

	InsertElimination(ctx context.Context, e Elimination) error

	ListActiveAssignments(ctx context.Context, tournamentID string) ([]TableAssignment, error)
	// ReplaceAssignments deactivates the active generation and inserts next as a new one.
	ReplaceAssignments(ctx context.Context, tournamentID string, next []TableAssignment) error
}
