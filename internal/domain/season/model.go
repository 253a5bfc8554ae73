package season

import (
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
)

// Season groups tournaments under one scoring rule set. Seasons are immutable once saved so
// cached totals never drift from their configuration.
type Season struct {
	ID        string
	Name      string
	Scoring   scoring.Config
	Payouts   *payout.Paytable
	CreatedAt time.Time
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}
	if err := s.Scoring.Validate(); err != nil {
		return err
	}
	if s.Payouts != nil {
		if err := s.Payouts.Validate(); err != nil {
			return err
		}
	}
	return nil
}
