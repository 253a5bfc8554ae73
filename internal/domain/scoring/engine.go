package scoring

// PlayerStats are the counters a player's points derive from.
type PlayerStats struct {
	FinalRank         *int
	EliminationsCount int
	BustEliminations  int
	LeaderKills       int
	RebuysCount       int
	LightRebuyUsed    bool
}

type Breakdown struct {
	RankPoints        int
	EliminationPoints int
	BonusPoints       int
	PenaltyPoints     int
	TotalPoints       int
}

// Score is pure; running it twice on the same input yields the same breakdown.
func Score(stats PlayerStats, cfg Config) Breakdown {
	out := Breakdown{
		RankPoints:        RankPoints(stats.FinalRank, cfg),
		EliminationPoints: stats.EliminationsCount*cfg.EliminationPoints + stats.BustEliminations*cfg.BustEliminationBonus,
		BonusPoints:       stats.LeaderKills * cfg.LeaderKillerBonus,
		PenaltyPoints:     Penalty(stats.RebuysCount, stats.LightRebuyUsed, cfg),
	}
	out.TotalPoints = out.RankPoints + out.EliminationPoints + out.BonusPoints + out.PenaltyPoints
	return out
}

func RankPoints(rank *int, cfg Config) int {
	if rank == nil || *rank < 1 {
		return 0
	}
	r := *rank

	if cfg.RankMode == RankModeDetailed {
		if points, ok := cfg.Detailed.ByRank[r]; ok {
			return points
		}
		return cfg.Detailed.DefaultPoints
	}

	switch {
	case r <= 10:
		return cfg.Legacy.TopTen[r-1]
	case r <= 15:
		return cfg.Legacy.Rank11To15
	default:
		return cfg.Legacy.Rank16Plus
	}
}

// Penalty works in half-rebuy units; a light rebuy is worth one half.
// Tiered mode selects on the absolute equivalent count, legacy mode on the payable overage,
// both rounded half away from zero.
func Penalty(rebuys int, lightUsed bool, cfg Config) int {
	equivalentHalves := 2 * rebuys
	if lightUsed {
		equivalentHalves++
	}
	payableHalves := equivalentHalves - 2*cfg.FreeRebuysCount
	if payableHalves <= 0 {
		return 0
	}

	if cfg.PenaltyMode == PenaltyModeLegacy {
		switch payable := roundHalves(payableHalves); {
		case payable == 3:
			return cfg.LegacyPenalty.Tier1
		case payable == 4:
			return cfg.LegacyPenalty.Tier2
		case payable >= 5:
			return cfg.LegacyPenalty.Tier3
		default:
			return 0
		}
	}

	absolute := roundHalves(equivalentHalves)
	penalty := 0
	for _, tier := range cfg.SortedTiers() {
		if tier.FromRecaves > absolute {
			break
		}
		penalty = tier.PenaltyPoints
	}
	return penalty
}

// roundHalves converts a non-negative half count to whole units, ties away from zero.
func roundHalves(halves int) int {
	return (halves + 1) / 2
}
