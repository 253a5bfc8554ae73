package memory

import (
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
)

const SeasonIDDefault = "default-season"

func SeedSeasons() []season.Season {
	paytable := payout.DefaultPaytable()
	return []season.Season{
		{
			ID:        SeasonIDDefault,
			Name:      "Default season",
			Scoring:   scoring.DefaultConfig(),
			Payouts:   &paytable,
			CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
