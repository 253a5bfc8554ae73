package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

const (
	tournamentsTable  = "tournaments"
	playersTable      = "tournament_players"
	bustsTable        = "tournament_busts"
	eliminationsTable = "tournament_eliminations"
	assignmentsTable  = "table_assignments"
)

type tournamentTableModel struct {
	PublicID            string     `db:"public_id"`
	Name                string     `db:"name"`
	SeasonID            string     `db:"season_public_id"`
	OwnerID             string     `db:"owner_id"`
	Status              string     `db:"status"`
	BlindSchedule       string     `db:"blind_schedule"`
	CurrentLevel        int        `db:"current_level"`
	RebuyEndLevel       *int       `db:"rebuy_end_level"`
	MaxRebuys           int        `db:"max_rebuys"`
	TimerStartedAt      *time.Time `db:"timer_started_at"`
	TimerPausedAt       *time.Time `db:"timer_paused_at"`
	TimerElapsedSeconds int64      `db:"timer_elapsed_seconds"`
	SeatsPerTable       int        `db:"seats_per_table"`
	BuyIn               int64      `db:"buy_in"`
	RebuyPrice          int64      `db:"rebuy_price"`
	LightRebuyPrice     int64      `db:"light_rebuy_price"`
	StartedAt           *time.Time `db:"started_at"`
	FinishedAt          *time.Time `db:"finished_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	Version             int64      `db:"version"`
}

func toTournamentModel(t tournament.Tournament) (tournamentTableModel, error) {
	schedule, err := sonic.MarshalString(t.Schedule)
	if err != nil {
		return tournamentTableModel{}, fmt.Errorf("encode blind schedule: %w", err)
	}
	return tournamentTableModel{
		PublicID:            t.ID,
		Name:                t.Name,
		SeasonID:            t.SeasonID,
		OwnerID:             t.OwnerID,
		Status:              string(t.Status),
		BlindSchedule:       schedule,
		CurrentLevel:        t.CurrentLevel,
		RebuyEndLevel:       t.RebuyEndLevel,
		MaxRebuys:           t.MaxRebuys,
		TimerStartedAt:      t.Timer.StartedAt,
		TimerPausedAt:       t.Timer.PausedAt,
		TimerElapsedSeconds: t.Timer.ElapsedSeconds,
		SeatsPerTable:       t.SeatsPerTable,
		BuyIn:               t.BuyIn,
		RebuyPrice:          t.RebuyPrice,
		LightRebuyPrice:     t.LightRebuyPrice,
		StartedAt:           t.StartedAt,
		FinishedAt:          t.FinishedAt,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		Version:             t.Version,
	}, nil
}

func (m tournamentTableModel) toDomain() (tournament.Tournament, error) {
	var schedule blinds.Schedule
	if err := sonic.UnmarshalString(m.BlindSchedule, &schedule); err != nil {
		return tournament.Tournament{}, fmt.Errorf("decode blind schedule tournament=%s: %w", m.PublicID, err)
	}
	return tournament.Tournament{
		ID:            m.PublicID,
		Name:          m.Name,
		SeasonID:      m.SeasonID,
		OwnerID:       m.OwnerID,
		Status:        tournament.Status(m.Status),
		Schedule:      schedule,
		CurrentLevel:  m.CurrentLevel,
		RebuyEndLevel: m.RebuyEndLevel,
		MaxRebuys:     m.MaxRebuys,
		Timer: blinds.Timer{
			StartedAt:      utcPtr(m.TimerStartedAt),
			PausedAt:       utcPtr(m.TimerPausedAt),
			ElapsedSeconds: m.TimerElapsedSeconds,
		},
		SeatsPerTable:   m.SeatsPerTable,
		BuyIn:           m.BuyIn,
		RebuyPrice:      m.RebuyPrice,
		LightRebuyPrice: m.LightRebuyPrice,
		StartedAt:       utcPtr(m.StartedAt),
		FinishedAt:      utcPtr(m.FinishedAt),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
		Version:         m.Version,
	}, nil
}

type playerTableModel struct {
	PublicID          string     `db:"public_id"`
	TournamentID      string     `db:"tournament_public_id"`
	PlayerID          string     `db:"player_id"`
	DisplayName       string     `db:"display_name"`
	EnrollmentOrder   int        `db:"enrollment_order"`
	State             string     `db:"state"`
	FinalRank         *int       `db:"final_rank"`
	RebuysCount       int        `db:"rebuys_count"`
	LightRebuyUsed    bool       `db:"light_rebuy_used"`
	EliminationsCount int        `db:"eliminations_count"`
	BustEliminations  int        `db:"bust_eliminations"`
	LeaderKills       int        `db:"leader_kills"`
	RankPoints        int        `db:"rank_points"`
	EliminationPoints int        `db:"elimination_points"`
	BonusPoints       int        `db:"bonus_points"`
	PenaltyPoints     int        `db:"penalty_points"`
	TotalPoints       int        `db:"total_points"`
	PrizeAmount       *int64     `db:"prize_amount"`
	EliminatedAt      *time.Time `db:"eliminated_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	Version           int64      `db:"version"`
}

func toPlayerModel(p tournament.Player) playerTableModel {
	return playerTableModel{
		PublicID:          p.ID,
		TournamentID:      p.TournamentID,
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
		RankPoints:        p.Points.RankPoints,
		EliminationPoints: p.Points.EliminationPoints,
		BonusPoints:       p.Points.BonusPoints,
		PenaltyPoints:     p.Points.PenaltyPoints,
		TotalPoints:       p.Points.TotalPoints,
		PrizeAmount:       p.PrizeAmount,
		EliminatedAt:      p.EliminatedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

func (m playerTableModel) toDomain() tournament.Player {
	return tournament.Player{
		ID:                m.PublicID,
		TournamentID:      m.TournamentID,
		PlayerID:          m.PlayerID,
		DisplayName:       m.DisplayName,
		EnrollmentOrder:   m.EnrollmentOrder,
		State:             tournament.PlayerState(m.State),
		FinalRank:         m.FinalRank,
		RebuysCount:       m.RebuysCount,
		LightRebuyUsed:    m.LightRebuyUsed,
		EliminationsCount: m.EliminationsCount,
		BustEliminations:  m.BustEliminations,
		LeaderKills:       m.LeaderKills,
		Points: scoring.Breakdown{
			RankPoints:        m.RankPoints,
			EliminationPoints: m.EliminationPoints,
			BonusPoints:       m.BonusPoints,
			PenaltyPoints:     m.PenaltyPoints,
			TotalPoints:       m.TotalPoints,
		},
		PrizeAmount:  m.PrizeAmount,
		EliminatedAt: utcPtr(m.EliminatedAt),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		Version:      m.Version,
	}
}

type bustTableModel struct {
	PublicID           string    `db:"public_id"`
	TournamentID       string    `db:"tournament_public_id"`
	EliminatedPlayerID string    `db:"eliminated_player_id"`
	KillerPlayerID     string    `db:"killer_player_id"`
	Level              int       `db:"level"`
	RecaveApplied      bool      `db:"recave_applied"`
	RecaveLight        bool      `db:"recave_light"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func toBustModel(b tournament.Bust) bustTableModel {
	return bustTableModel{
		PublicID:           b.ID,
		TournamentID:       b.TournamentID,
		EliminatedPlayerID: b.EliminatedPlayerID,
		KillerPlayerID:     b.KillerPlayerID,
		Level:              b.Level,
		RecaveApplied:      b.RecaveApplied,
		RecaveLight:        b.RecaveLight,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (m bustTableModel) toDomain() tournament.Bust {
	return tournament.Bust{
		ID:                 m.PublicID,
		TournamentID:       m.TournamentID,
		EliminatedPlayerID: m.EliminatedPlayerID,
		KillerPlayerID:     m.KillerPlayerID,
		Level:              m.Level,
		RecaveApplied:      m.RecaveApplied,
		RecaveLight:        m.RecaveLight,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type eliminationTableModel struct {
	PublicID           string    `db:"public_id"`
	TournamentID       string    `db:"tournament_public_id"`
	EliminatedPlayerID string    `db:"eliminated_player_id"`
	EliminatorPlayerID string    `db:"eliminator_player_id"`
	Rank               int       `db:"final_rank"`
	Level              int       `db:"level"`
	IsLeaderKill       bool      `db:"is_leader_kill"`
	CreatedAt          time.Time `db:"created_at"`
}

func (m eliminationTableModel) toDomain() tournament.Elimination {
	return tournament.Elimination{
		ID:                 m.PublicID,
		TournamentID:       m.TournamentID,
		EliminatedPlayerID: m.EliminatedPlayerID,
		EliminatorPlayerID: m.EliminatorPlayerID,
		Rank:               m.Rank,
		Level:              m.Level,
		IsLeaderKill:       m.IsLeaderKill,
		CreatedAt:          m.CreatedAt.UTC(),
	}
}

type assignmentTableModel struct {
	TournamentID string    `db:"tournament_public_id"`
	PlayerID     string    `db:"player_id"`
	TableNumber  int       `db:"table_number"`
	SeatNumber   int       `db:"seat_number"`
	Generation   int       `db:"generation"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m assignmentTableModel) toDomain() tournament.TableAssignment {
	return tournament.TableAssignment{
		TournamentID: m.TournamentID,
		PlayerID:     m.PlayerID,
		TableNumber:  m.TableNumber,
		SeatNumber:   m.SeatNumber,
		Generation:   m.Generation,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
