package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfig = errors.New("invalid scoring configuration")

type RankMode string

const (
	RankModeLegacy   RankMode = "legacy"
	RankModeDetailed RankMode = "detailed"
)

type PenaltyMode string

const (
	PenaltyModeLegacy PenaltyMode = "legacy"
	PenaltyModeTiered PenaltyMode = "tiered"
)

// LegacyRankTable holds explicit points for ranks 1-10 and two banded values.
type LegacyRankTable struct {
	TopTen     [10]int
	Rank11To15 int
	Rank16Plus int
}

type DetailedRankTable struct {
	ByRank        map[int]int `validate:"dive,keys,gte=1,endkeys"`
	DefaultPoints int
}

type LegacyPenalty struct {
	Tier1 int `validate:"lte=0"`
	Tier2 int `validate:"lte=0"`
	Tier3 int `validate:"lte=0"`
}

// PenaltyTier applies from an absolute recave count upward.
type PenaltyTier struct {
	FromRecaves   int `validate:"gte=1"`
	PenaltyPoints int `validate:"lte=0"`
}

// Config is a season's scoring rule set.
type Config struct {
	RankMode             RankMode `validate:"required,oneof=legacy detailed"`
	Legacy               LegacyRankTable
	Detailed             DetailedRankTable
	EliminationPoints    int         `validate:"gte=0"`
	BustEliminationBonus int         `validate:"gte=0"`
	LeaderKillerBonus    int         `validate:"gte=0"`
	FreeRebuysCount      int         `validate:"gte=0"`
	PenaltyMode          PenaltyMode `validate:"required,oneof=legacy tiered"`
	LegacyPenalty        LegacyPenalty
	Tiers                []PenaltyTier `validate:"dive"`
}

var configValidator = validator.New()

// Validate runs when a season configuration is saved; Score never validates.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for i := 1; i < len(c.Tiers); i++ {
		if c.Tiers[i].FromRecaves <= c.Tiers[i-1].FromRecaves {
			return fmt.Errorf("%w: tier fromRecaves must be strictly increasing (%d after %d)",
				ErrInvalidConfig, c.Tiers[i].FromRecaves, c.Tiers[i-1].FromRecaves)
		}
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		RankMode: RankModeLegacy,
		Legacy: LegacyRankTable{
			TopTen:     [10]int{100, 80, 65, 55, 45, 38, 32, 27, 23, 20},
			Rank11To15: 15,
			Rank16Plus: 10,
		},
		EliminationPoints:    10,
		BustEliminationBonus: 5,
		LeaderKillerBonus:    5,
		FreeRebuysCount:      2,
		PenaltyMode:          PenaltyModeTiered,
		Tiers: []PenaltyTier{
			{FromRecaves: 3, PenaltyPoints: -50},
			{FromRecaves: 4, PenaltyPoints: -100},
			{FromRecaves: 5, PenaltyPoints: -150},
		},
	}
}

// SortedTiers returns a copy of the tiers ordered by FromRecaves.
func (c Config) SortedTiers() []PenaltyTier {
	out := make([]PenaltyTier, len(c.Tiers))
	copy(out, c.Tiers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FromRecaves < out[j].FromRecaves
	})
	return out
}
