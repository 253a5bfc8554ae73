package httpapi

import (
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/seating"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

type levelDTO struct {
	Number          int   `json:"number" validate:"gte=1"`
	SmallBlind      int64 `json:"smallBlind" validate:"gte=0"`
	BigBlind        int64 `json:"bigBlind" validate:"gte=0"`
	Ante            int64 `json:"ante" validate:"gte=0"`
	DurationMinutes int   `json:"durationMinutes" validate:"gte=1"`
	IsBreak         bool  `json:"isBreak"`
}

type generateScheduleRequest struct {
	Preset                string `json:"preset" validate:"omitempty,oneof=turbo standard deepstack"`
	StartingStack         int64  `json:"startingStack" validate:"gte=0"`
	TargetDurationMinutes int    `json:"targetDurationMinutes" validate:"gte=0"`
	LevelDurationMinutes  int    `json:"levelDurationMinutes" validate:"gte=0"`
	ExpectedPlayers       int    `json:"expectedPlayers" validate:"gte=0"`
	BreakEvery            int    `json:"breakEvery"`
	BreakDurationMinutes  int    `json:"breakDurationMinutes" validate:"gte=0"`
	AnteFromLevel         int    `json:"anteFromLevel" validate:"gte=0"`
}

type createTournamentRequest struct {
	Name            string                   `json:"name" validate:"required,max=200"`
	SeasonID        string                   `json:"seasonId" validate:"required"`
	Schedule        []levelDTO               `json:"schedule" validate:"omitempty,dive"`
	Generate        *generateScheduleRequest `json:"generate"`
	RebuyEndLevel   *int                     `json:"rebuyEndLevel" validate:"omitempty,gte=1"`
	MaxRebuys       int                      `json:"maxRebuys" validate:"gte=0"`
	SeatsPerTable   int                      `json:"seatsPerTable" validate:"omitempty,gte=2,lte=12"`
	BuyIn           int64                    `json:"buyIn" validate:"gte=0"`
	RebuyPrice      int64                    `json:"rebuyPrice" validate:"gte=0"`
	LightRebuyPrice int64                    `json:"lightRebuyPrice" validate:"gte=0"`
}

type enrollPlayerRequest struct {
	PlayerID    string `json:"playerId" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"max=200"`
}

type recordBustRequest struct {
	EliminatedPlayerID string `json:"eliminatedPlayerId" validate:"required"`
	KillerPlayerID     string `json:"killerPlayerId" validate:"required"`
}

type recaveRequest struct {
	Light bool `json:"light"`
}

type recordEliminationRequest struct {
	EliminatedPlayerID string `json:"eliminatedPlayerId" validate:"required"`
	EliminatorPlayerID string `json:"eliminatorPlayerId" validate:"required"`
}

type generateTablesRequest struct {
	SeatsPerTable int     `json:"seatsPerTable" validate:"omitempty,gte=2,lte=12"`
	Seed          *uint64 `json:"seed"`
}

type rebalanceTablesRequest struct {
	SeatsPerTable     int     `json:"seatsPerTable" validate:"omitempty,gte=2,lte=12"`
	MinPlayersToBreak int     `json:"minPlayersToBreak" validate:"gte=0"`
	Seed              *uint64 `json:"seed"`
}

type createSeasonRequest struct {
	Name    string            `json:"name" validate:"required,max=200"`
	Scoring *scoringConfigDTO `json:"scoring"`
	Payouts *paytableDTO      `json:"payouts"`
}

type scoringConfigDTO struct {
	RankMode             string           `json:"rankMode"`
	Legacy               legacyRankDTO    `json:"legacy"`
	Detailed             detailedRankDTO  `json:"detailed"`
	EliminationPoints    int              `json:"eliminationPoints"`
	BustEliminationBonus int              `json:"bustEliminationBonus"`
	LeaderKillerBonus    int              `json:"leaderKillerBonus"`
	FreeRebuysCount      int              `json:"freeRebuysCount"`
	PenaltyMode          string           `json:"penaltyMode"`
	LegacyPenalty        legacyPenaltyDTO `json:"legacyPenalty"`
	Tiers                []penaltyTierDTO `json:"tiers"`
}

type legacyRankDTO struct {
	TopTen     [10]int `json:"topTen"`
	Rank11To15 int     `json:"rank11To15"`
	Rank16Plus int     `json:"rank16Plus"`
}

type detailedRankDTO struct {
	ByRank        map[int]int `json:"byRank,omitempty"`
	DefaultPoints int         `json:"defaultPoints"`
}

type legacyPenaltyDTO struct {
	Tier1 int `json:"tier1"`
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`
}

type penaltyTierDTO struct {
	FromRecaves   int `json:"fromRecaves"`
	PenaltyPoints int `json:"penaltyPoints"`
}

type paytableDTO struct {
	Name string           `json:"name"`
	Rows []paytableRowDTO `json:"rows"`
}

type paytableRowDTO struct {
	MinPlayers  int     `json:"minPlayers"`
	MaxPlayers  int     `json:"maxPlayers"`
	Percentages []int   `json:"percentages"`
	Fixed       []int64 `json:"fixed,omitempty"`
}

type seasonDTO struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Scoring   scoringConfigDTO `json:"scoring"`
	Payouts   *paytableDTO     `json:"payouts,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type timerDTO struct {
	Running        bool       `json:"running"`
	Started        bool       `json:"started"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	PausedAt       *time.Time `json:"pausedAt,omitempty"`
	ElapsedSeconds int64      `json:"elapsedSeconds"`
}

type tournamentDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SeasonID        string     `json:"seasonId"`
	OwnerID         string     `json:"ownerId,omitempty"`
	Status          string     `json:"status"`
	Schedule        []levelDTO `json:"schedule"`
	CurrentLevel    int        `json:"currentLevel"`
	RebuyEndLevel   *int       `json:"rebuyEndLevel,omitempty"`
	MaxRebuys       int        `json:"maxRebuys"`
	Timer           timerDTO   `json:"timer"`
	SeatsPerTable   int        `json:"seatsPerTable"`
	BuyIn           int64      `json:"buyIn"`
	RebuyPrice      int64      `json:"rebuyPrice"`
	LightRebuyPrice int64      `json:"lightRebuyPrice"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Version         int64      `json:"version"`
}

type pointsDTO struct {
	Rank        int `json:"rank"`
	Elimination int `json:"elimination"`
	Bonus       int `json:"bonus"`
	Penalty     int `json:"penalty"`
	Total       int `json:"total"`
}

type playerDTO struct {
	ID                string     `json:"id"`
	PlayerID          string     `json:"playerId"`
	DisplayName       string     `json:"displayName"`
	EnrollmentOrder   int        `json:"enrollmentOrder"`
	State             string     `json:"state"`
	FinalRank         *int       `json:"finalRank,omitempty"`
	RebuysCount       int        `json:"rebuysCount"`
	LightRebuyUsed    bool       `json:"lightRebuyUsed"`
	EliminationsCount int        `json:"eliminationsCount"`
	BustEliminations  int        `json:"bustEliminations"`
	LeaderKills       int        `json:"leaderKills"`
	Points            pointsDTO  `json:"points"`
	PrizeAmount       *int64     `json:"prizeAmount,omitempty"`
	EliminatedAt      *time.Time `json:"eliminatedAt,omitempty"`
}

type bustDTO struct {
	ID                 string    `json:"id"`
	EliminatedPlayerID string    `json:"eliminatedPlayerId"`
	KillerPlayerID     string    `json:"killerPlayerId"`
	Level              int       `json:"level"`
	RecaveApplied      bool      `json:"recaveApplied"`
	RecaveLight        bool      `json:"recaveLight"`
	CreatedAt          time.Time `json:"createdAt"`
}

type eliminationDTO struct {
	ID                 string    `json:"id"`
	EliminatedPlayerID string    `json:"eliminatedPlayerId"`
	EliminatorPlayerID string    `json:"eliminatorPlayerId"`
	Rank               int       `json:"rank"`
	Level              int       `json:"level"`
	IsLeaderKill       bool      `json:"isLeaderKill"`
	CreatedAt          time.Time `json:"createdAt"`
}

type recaveResultDTO struct {
	Bust   bustDTO   `json:"bust"`
	Player playerDTO `json:"player"`
}

type eliminationResultDTO struct {
	Elimination         eliminationDTO `json:"elimination"`
	TournamentCompleted bool           `json:"tournamentCompleted"`
	RemainingPlayers    int            `json:"remainingPlayers"`
}

type clockDTO struct {
	TournamentID     string    `json:"tournamentId"`
	Running          bool      `json:"running"`
	Started          bool      `json:"started"`
	ElapsedSeconds   int64     `json:"elapsedSeconds"`
	Level            levelDTO  `json:"level"`
	ElapsedInLevel   int64     `json:"elapsedInLevel"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	Exhausted        bool      `json:"exhausted"`
	NextLevel        *levelDTO `json:"nextLevel,omitempty"`
	RecavesOpen      bool      `json:"recavesOpen"`
	RebuyEndLevel    *int      `json:"rebuyEndLevel,omitempty"`
	At               time.Time `json:"at"`
}

type seatDTO struct {
	PlayerID   string `json:"playerId"`
	SeatNumber int    `json:"seatNumber"`
}

type tableDTO struct {
	Number int       `json:"number"`
	Seats  []seatDTO `json:"seats"`
}

type tableLayoutDTO struct {
	TournamentID string     `json:"tournamentId"`
	Generation   int        `json:"generation"`
	Seed         uint64     `json:"seed,omitempty"`
	Tables       []tableDTO `json:"tables"`
	Moved        int        `json:"moved"`
	Dissolved    int        `json:"dissolved"`
}

type leaderboardEntryDTO struct {
	CurrentRank int       `json:"currentRank"`
	Player      playerDTO `json:"player"`
}

type leaderboardDTO struct {
	TournamentID string                `json:"tournamentId"`
	Status       string                `json:"status"`
	Entries      []leaderboardEntryDTO `json:"entries"`
}

type schedulePreviewDTO struct {
	Levels        []levelDTO `json:"levels"`
	PlayingLevels int        `json:"playingLevels"`
	TotalMinutes  int64      `json:"totalMinutes"`
}

func (r generateScheduleRequest) toInput() blinds.GenerateInput {
	in, _ := blinds.Preset(r.Preset)
	if r.StartingStack != 0 {
		in.StartingStack = r.StartingStack
	}
	if r.TargetDurationMinutes != 0 {
		in.TargetDurationMinutes = r.TargetDurationMinutes
	}
	if r.LevelDurationMinutes != 0 {
		in.LevelDurationMinutes = r.LevelDurationMinutes
	}
	if r.ExpectedPlayers != 0 {
		in.ExpectedPlayers = r.ExpectedPlayers
	}
	if r.BreakEvery != 0 {
		in.BreakEvery = r.BreakEvery
	}
	if r.BreakDurationMinutes != 0 {
		in.BreakDurationMinutes = r.BreakDurationMinutes
	}
	if r.AnteFromLevel != 0 {
		in.AnteFromLevel = r.AnteFromLevel
	}
	return in
}

func (r createTournamentRequest) toInput(ownerID string) usecase.CreateTournamentInput {
	input := usecase.CreateTournamentInput{
		Name:            r.Name,
		SeasonID:        r.SeasonID,
		OwnerID:         ownerID,
		RebuyEndLevel:   r.RebuyEndLevel,
		MaxRebuys:       r.MaxRebuys,
		SeatsPerTable:   r.SeatsPerTable,
		BuyIn:           r.BuyIn,
		RebuyPrice:      r.RebuyPrice,
		LightRebuyPrice: r.LightRebuyPrice,
	}
	if len(r.Schedule) > 0 {
		input.Schedule = scheduleFromDTO(r.Schedule)
	}
	if r.Generate != nil {
		gen := r.Generate.toInput()
		input.Generate = &gen
	}
	return input
}

func (r createSeasonRequest) toInput() usecase.CreateSeasonInput {
	input := usecase.CreateSeasonInput{Name: r.Name, Scoring: scoring.DefaultConfig()}
	if r.Scoring != nil {
		input.Scoring = r.Scoring.toDomain()
	}
	if r.Payouts != nil {
		table := r.Payouts.toDomain()
		input.Payouts = &table
	}
	return input
}

func (d scoringConfigDTO) toDomain() scoring.Config {
	tiers := make([]scoring.PenaltyTier, 0, len(d.Tiers))
	for _, t := range d.Tiers {
		tiers = append(tiers, scoring.PenaltyTier{FromRecaves: t.FromRecaves, PenaltyPoints: t.PenaltyPoints})
	}
	return scoring.Config{
		RankMode: scoring.RankMode(d.RankMode),
		Legacy: scoring.LegacyRankTable{
			TopTen:     d.Legacy.TopTen,
			Rank11To15: d.Legacy.Rank11To15,
			Rank16Plus: d.Legacy.Rank16Plus,
		},
		Detailed: scoring.DetailedRankTable{
			ByRank:        d.Detailed.ByRank,
			DefaultPoints: d.Detailed.DefaultPoints,
		},
		EliminationPoints:    d.EliminationPoints,
		BustEliminationBonus: d.BustEliminationBonus,
		LeaderKillerBonus:    d.LeaderKillerBonus,
		FreeRebuysCount:      d.FreeRebuysCount,
		PenaltyMode:          scoring.PenaltyMode(d.PenaltyMode),
		LegacyPenalty: scoring.LegacyPenalty{
			Tier1: d.LegacyPenalty.Tier1,
			Tier2: d.LegacyPenalty.Tier2,
			Tier3: d.LegacyPenalty.Tier3,
		},
		Tiers: tiers,
	}
}

func scoringConfigToDTO(c scoring.Config) scoringConfigDTO {
	tiers := make([]penaltyTierDTO, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, penaltyTierDTO{FromRecaves: t.FromRecaves, PenaltyPoints: t.PenaltyPoints})
	}
	return scoringConfigDTO{
		RankMode: string(c.RankMode),
		Legacy: legacyRankDTO{
			TopTen:     c.Legacy.TopTen,
			Rank11To15: c.Legacy.Rank11To15,
			Rank16Plus: c.Legacy.Rank16Plus,
		},
		Detailed: detailedRankDTO{
			ByRank:        c.Detailed.ByRank,
			DefaultPoints: c.Detailed.DefaultPoints,
		},
		EliminationPoints:    c.EliminationPoints,
		BustEliminationBonus: c.BustEliminationBonus,
		LeaderKillerBonus:    c.LeaderKillerBonus,
		FreeRebuysCount:      c.FreeRebuysCount,
		PenaltyMode:          string(c.PenaltyMode),
		LegacyPenalty: legacyPenaltyDTO{
			Tier1: c.LegacyPenalty.Tier1,
			Tier2: c.LegacyPenalty.Tier2,
			Tier3: c.LegacyPenalty.Tier3,
		},
		Tiers: tiers,
	}
}

func (d paytableDTO) toDomain() payout.Paytable {
	rows := make([]payout.Row, 0, len(d.Rows))
	for _, r := range d.Rows {
		rows = append(rows, payout.Row{
			MinPlayers:  r.MinPlayers,
			MaxPlayers:  r.MaxPlayers,
			Percentages: r.Percentages,
			Fixed:       r.Fixed,
		})
	}
	return payout.Paytable{Name: d.Name, Rows: rows}
}

func seasonToDTO(s season.Season) seasonDTO {
	out := seasonDTO{
		ID:        s.ID,
		Name:      s.Name,
		Scoring:   scoringConfigToDTO(s.Scoring),
		CreatedAt: s.CreatedAt,
	}
	if s.Payouts != nil {
		rows := make([]paytableRowDTO, 0, len(s.Payouts.Rows))
		for _, r := range s.Payouts.Rows {
			rows = append(rows, paytableRowDTO{
				MinPlayers:  r.MinPlayers,
				MaxPlayers:  r.MaxPlayers,
				Percentages: r.Percentages,
				Fixed:       r.Fixed,
			})
		}
		out.Payouts = &paytableDTO{Name: s.Payouts.Name, Rows: rows}
	}
	return out
}

func scheduleFromDTO(levels []levelDTO) blinds.Schedule {
	out := make(blinds.Schedule, 0, len(levels))
	for _, l := range levels {
		out = append(out, blinds.Level{
			Number:          l.Number,
			SmallBlind:      l.SmallBlind,
			BigBlind:        l.BigBlind,
			Ante:            l.Ante,
			DurationMinutes: l.DurationMinutes,
			IsBreak:         l.IsBreak,
		})
	}
	return out
}

func levelToDTO(l blinds.Level) levelDTO {
	return levelDTO{
		Number:          l.Number,
		SmallBlind:      l.SmallBlind,
		BigBlind:        l.BigBlind,
		Ante:            l.Ante,
		DurationMinutes: l.DurationMinutes,
		IsBreak:         l.IsBreak,
	}
}

func scheduleToDTO(s blinds.Schedule) []levelDTO {
	out := make([]levelDTO, 0, len(s))
	for _, l := range s {
		out = append(out, levelToDTO(l))
	}
	return out
}

func schedulePreviewToDTO(s blinds.Schedule) schedulePreviewDTO {
	return schedulePreviewDTO{
		Levels:        scheduleToDTO(s),
		PlayingLevels: s.PlayingLevels(),
		TotalMinutes:  s.TotalSeconds() / 60,
	}
}

func tournamentToDTO(t tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		ID:            t.ID,
		Name:          t.Name,
		SeasonID:      t.SeasonID,
		OwnerID:       t.OwnerID,
		Status:        string(t.Status),
		Schedule:      scheduleToDTO(t.Schedule),
		CurrentLevel:  t.CurrentLevel,
		RebuyEndLevel: t.RebuyEndLevel,
		MaxRebuys:     t.MaxRebuys,
		Timer: timerDTO{
			Running:        t.Timer.Running(),
			Started:        t.Timer.Started(),
			StartedAt:      t.Timer.StartedAt,
			PausedAt:       t.Timer.PausedAt,
			ElapsedSeconds: t.Timer.ElapsedSeconds,
		},
		SeatsPerTable:   t.SeatsPerTable,
		BuyIn:           t.BuyIn,
		RebuyPrice:      t.RebuyPrice,
		LightRebuyPrice: t.LightRebuyPrice,
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.Version,
	}
}

func pointsToDTO(b scoring.Breakdown) pointsDTO {
	return pointsDTO{
		Rank:        b.RankPoints,
		Elimination: b.EliminationPoints,
		Bonus:       b.BonusPoints,
		Penalty:     b.PenaltyPoints,
		Total:       b.TotalPoints,
	}
}

func playerToDTO(p tournament.Player) playerDTO {
	return playerDTO{
		ID:                p.ID,
		PlayerID:          p.PlayerID,
		DisplayName:       p.DisplayName,
		EnrollmentOrder:   p.EnrollmentOrder,
		State:             string(p.State),
		FinalRank:         p.FinalRank,
		RebuysCount:       p.RebuysCount,
		LightRebuyUsed:    p.LightRebuyUsed,
		EliminationsCount: p.EliminationsCount,
		BustEliminations:  p.BustEliminations,
		LeaderKills:       p.LeaderKills,
		Points:            pointsToDTO(p.Points),
		PrizeAmount:       p.PrizeAmount,
		EliminatedAt:      p.EliminatedAt,
	}
}

func playersToDTO(items []tournament.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerToDTO(p))
	}
	return out
}

func bustToDTO(b tournament.Bust) bustDTO {
	return bustDTO{
		ID:                 b.ID,
		EliminatedPlayerID: b.EliminatedPlayerID,
		KillerPlayerID:     b.KillerPlayerID,
		Level:              b.Level,
		RecaveApplied:      b.RecaveApplied,
		RecaveLight:        b.RecaveLight,
		CreatedAt:          b.CreatedAt,
	}
}

func eliminationToDTO(e tournament.Elimination) eliminationDTO {
	return eliminationDTO{
		ID:                 e.ID,
		EliminatedPlayerID: e.EliminatedPlayerID,
		EliminatorPlayerID: e.EliminatorPlayerID,
		Rank:               e.Rank,
		Level:              e.Level,
		IsLeaderKill:       e.IsLeaderKill,
		CreatedAt:          e.CreatedAt,
	}
}

func clockToDTO(c usecase.ClockState) clockDTO {
	out := clockDTO{
		TournamentID:     c.TournamentID,
		Running:          c.Running,
		Started:          c.Started,
		ElapsedSeconds:   c.ElapsedSeconds,
		Level:            levelToDTO(c.Position.Level),
		ElapsedInLevel:   c.Position.ElapsedInLevel,
		RemainingSeconds: c.Position.RemainingSeconds,
		Exhausted:        c.Position.Exhausted,
		RecavesOpen:      c.RecavesOpen,
		RebuyEndLevel:    c.RebuyEndLevel,
		At:               c.At,
	}
	if c.Position.Next != nil {
		next := levelToDTO(*c.Position.Next)
		out.NextLevel = &next
	}
	return out
}

func tableLayoutToDTO(l usecase.TableLayout) tableLayoutDTO {
	return tableLayoutDTO{
		TournamentID: l.TournamentID,
		Generation:   l.Generation,
		Seed:         l.Seed,
		Tables:       tablesToDTO(l.Tables),
		Moved:        l.Stats.Moved,
		Dissolved:    l.Stats.Dissolved,
	}
}

func tablesToDTO(tables []seating.Table) []tableDTO {
	out := make([]tableDTO, 0, len(tables))
	for _, t := range tables {
		seats := make([]seatDTO, 0, len(t.Seats))
		for _, s := range t.Seats {
			seats = append(seats, seatDTO{PlayerID: s.PlayerID, SeatNumber: s.SeatNumber})
		}
		out = append(out, tableDTO{Number: t.Number, Seats: seats})
	}
	return out
}

func leaderboardToDTO(b usecase.Leaderboard) leaderboardDTO {
	entries := make([]leaderboardEntryDTO, 0, len(b.Entries))
	for _, e := range b.Entries {
		player := playerToDTO(e.Player)
		player.Points = pointsToDTO(e.Points)
		entries = append(entries, leaderboardEntryDTO{CurrentRank: e.CurrentRank, Player: player})
	}
	return leaderboardDTO{
		TournamentID: b.TournamentID,
		Status:       string(b.Status),
		Entries:      entries,
	}
}
