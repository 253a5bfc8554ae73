package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

const pqUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// mapWriteError turns a unique violation into the store's lost-race error so callers see the
// same failure the in-memory store reports.
func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%w: %s violates %s", tournament.ErrConcurrentModification, op, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
