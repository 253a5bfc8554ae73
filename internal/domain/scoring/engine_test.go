package scoring

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestPenalty_TieredUsesAbsoluteCount(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		rebuys int
		light  bool
		want   int
	}{
		{name: "no rebuys", rebuys: 0, want: 0},
		{name: "within free allowance", rebuys: 2, want: 0},
		{name: "light rebuy over allowance rounds up", rebuys: 2, light: true, want: -50},
		{name: "three rebuys", rebuys: 3, want: -50},
		{name: "four rebuys", rebuys: 4, want: -100},
		{name: "three and a half rebuys", rebuys: 3, light: true, want: -100},
		{name: "beyond last tier", rebuys: 9, want: -150},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Penalty(tc.rebuys, tc.light, cfg); got != tc.want {
				t.Fatalf("Penalty(%d,%v)=%d want %d", tc.rebuys, tc.light, got, tc.want)
			}
		})
	}
}

func TestPenalty_TieredBelowFirstThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreeRebuysCount = 0

	if got := Penalty(2, false, cfg); got != 0 {
		t.Fatalf("expected no tier below threshold, got %d", got)
	}
}

func TestPenalty_LegacyUsesPayableCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PenaltyMode = PenaltyModeLegacy
	cfg.FreeRebuysCount = 1
	cfg.LegacyPenalty = LegacyPenalty{Tier1: -20, Tier2: -40, Tier3: -60}

	tests := []struct {
		rebuys int
		light  bool
		want   int
	}{
		{rebuys: 3, want: 0},
		{rebuys: 4, want: -20},
		{rebuys: 5, want: -40},
		{rebuys: 6, want: -60},
		{rebuys: 10, want: -60},
		{rebuys: 3, light: true, want: -20},
	}

	for _, tc := range tests {
		if got := Penalty(tc.rebuys, tc.light, cfg); got != tc.want {
			t.Fatalf("legacy Penalty(%d,%v)=%d want %d", tc.rebuys, tc.light, got, tc.want)
		}
	}
}

func TestRankPoints(t *testing.T) {
	legacy := DefaultConfig()
	detailed := DefaultConfig()
	detailed.RankMode = RankModeDetailed
	detailed.Detailed = DetailedRankTable{ByRank: map[int]int{1: 500, 2: 300}, DefaultPoints: 7}

	tests := []struct {
		name string
		rank *int
		cfg  Config
		want int
	}{
		{name: "active player", rank: nil, cfg: legacy, want: 0},
		{name: "legacy winner", rank: intPtr(1), cfg: legacy, want: 100},
		{name: "legacy tenth", rank: intPtr(10), cfg: legacy, want: 20},
		{name: "legacy eleventh", rank: intPtr(11), cfg: legacy, want: 15},
		{name: "legacy fifteenth", rank: intPtr(15), cfg: legacy, want: 15},
		{name: "legacy sixteenth", rank: intPtr(16), cfg: legacy, want: 10},
		{name: "detailed listed", rank: intPtr(2), cfg: detailed, want: 300},
		{name: "detailed default", rank: intPtr(40), cfg: detailed, want: 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RankPoints(tc.rank, tc.cfg); got != tc.want {
				t.Fatalf("RankPoints=%d want %d", got, tc.want)
			}
		})
	}
}

func TestScore_SumsComponentsAndIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	stats := PlayerStats{
		FinalRank:         intPtr(2),
		EliminationsCount: 3,
		BustEliminations:  2,
		LeaderKills:       1,
		RebuysCount:       4,
	}

	first := Score(stats, cfg)
	second := Score(stats, cfg)
	if first != second {
		t.Fatalf("score not idempotent: %+v vs %+v", first, second)
	}

	want := Breakdown{
		RankPoints:        80,
		EliminationPoints: 3*10 + 2*5,
		BonusPoints:       5,
		PenaltyPoints:     -100,
	}
	want.TotalPoints = want.RankPoints + want.EliminationPoints + want.BonusPoints + want.PenaltyPoints
	if first != want {
		t.Fatalf("unexpected breakdown: got %+v want %+v", first, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "empty tiers", mutate: func(c *Config) { c.Tiers = nil }},
		{name: "unknown rank mode", mutate: func(c *Config) { c.RankMode = "fancy" }, wantErr: true},
		{name: "unknown penalty mode", mutate: func(c *Config) { c.PenaltyMode = "" }, wantErr: true},
		{name: "negative free rebuys", mutate: func(c *Config) { c.FreeRebuysCount = -1 }, wantErr: true},
		{name: "positive tier penalty", mutate: func(c *Config) { c.Tiers[0].PenaltyPoints = 10 }, wantErr: true},
		{name: "zero tier threshold", mutate: func(c *Config) { c.Tiers[0].FromRecaves = 0 }, wantErr: true},
		{name: "non increasing tiers", mutate: func(c *Config) { c.Tiers[1].FromRecaves = 3 }, wantErr: true},
		{name: "positive legacy tier", mutate: func(c *Config) { c.LegacyPenalty.Tier2 = 5 }, wantErr: true},
		{name: "detailed rank zero", mutate: func(c *Config) {
			c.RankMode = RankModeDetailed
			c.Detailed.ByRank = map[int]int{0: 10}
		}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
