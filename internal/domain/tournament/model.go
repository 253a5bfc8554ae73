package tournament

import (
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
)

type Status string

const (
	StatusPlanned      Status = "PLANNED"
	StatusRegistration Status = "REGISTRATION"
	StatusInProgress   Status = "IN_PROGRESS"
	StatusFinished     Status = "FINISHED"
	StatusCancelled    Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPlanned:      {StatusRegistration, StatusInProgress, StatusCancelled},
	StatusRegistration: {StatusInProgress, StatusCancelled},
	StatusInProgress:   {StatusFinished, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Tournament is the aggregate root for one live event.
type Tournament struct {
	ID              string
	Name            string
	SeasonID        string
	OwnerID         string
	Status          Status
	Schedule        blinds.Schedule
	CurrentLevel    int
	RebuyEndLevel   *int
	MaxRebuys       int
	Timer           blinds.Timer
	SeatsPerTable   int
	BuyIn           int64
	RebuyPrice      int64
	LightRebuyPrice int64
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

// EffectiveLevel is authoritative; CurrentLevel is only a cache of it.
func (t Tournament) EffectiveLevel(now time.Time) (int, error) {
	return blinds.EffectiveLevel(t.Schedule, t.Timer, now)
}

func (t Tournament) Position(now time.Time) (blinds.Position, error) {
	return blinds.Resolve(t.Schedule, blinds.Elapsed(t.Timer, now))
}

func (t Tournament) RecavesOpen(effectiveLevel int) bool {
	return blinds.RecavesOpen(t.Schedule, t.RebuyEndLevel, effectiveLevel)
}

func (t Tournament) ValidateBasic() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}
	if t.SeasonID == "" {
		return fmt.Errorf("season id is required")
	}
	if err := t.Schedule.Validate(); err != nil {
		return err
	}
	if t.RebuyEndLevel != nil && (*t.RebuyEndLevel < 1 || *t.RebuyEndLevel > len(t.Schedule)) {
		return fmt.Errorf("rebuy end level %d outside schedule 1..%d", *t.RebuyEndLevel, len(t.Schedule))
	}
	if t.MaxRebuys < 0 {
		return fmt.Errorf("max rebuys must be >= 0")
	}
	if t.SeatsPerTable < 2 {
		return fmt.Errorf("seats per table must be >= 2")
	}
	if t.BuyIn < 0 || t.RebuyPrice < 0 || t.LightRebuyPrice < 0 {
		return fmt.Errorf("prices must be >= 0")
	}
	return nil
}

type PlayerState string

const (
	PlayerActive     PlayerState = "ACTIVE"
	PlayerBusted     PlayerState = "BUSTED"
	PlayerEliminated PlayerState = "ELIMINATED"
	// PlayerWinner is the sole survivor holding final rank 1.
	PlayerWinner PlayerState = "WINNER"
)

// Player is one enrolled entrant. Points is a cached projection of the scoring engine and is
// recomputed after every counter change.
type Player struct {
	ID                string
	TournamentID      string
	PlayerID          string
	DisplayName       string
	EnrollmentOrder   int
	State             PlayerState
	FinalRank         *int
	RebuysCount       int
	LightRebuyUsed    bool
	EliminationsCount int
	BustEliminations  int
	LeaderKills       int
	Points            scoring.Breakdown
	PrizeAmount       *int64
	EliminatedAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

// Active includes busted players still awaiting a recave decision.
func (p Player) Active() bool {
	return p.FinalRank == nil
}

func (p Player) Stats() scoring.PlayerStats {
	return scoring.PlayerStats{
		FinalRank:         p.FinalRank,
		EliminationsCount: p.EliminationsCount,
		BustEliminations:  p.BustEliminations,
		LeaderKills:       p.LeaderKills,
		RebuysCount:       p.RebuysCount,
		LightRebuyUsed:    p.LightRebuyUsed,
	}
}

func (p *Player) Rescore(cfg scoring.Config) {
	p.Points = scoring.Score(p.Stats(), cfg)
}

type Elimination struct {
	ID                 string
	TournamentID       string
	EliminatedPlayerID string
	EliminatorPlayerID string
	Rank               int
	Level              int
	IsLeaderKill       bool
	CreatedAt          time.Time
}

type Bust struct {
	ID                 string
	TournamentID       string
	EliminatedPlayerID string
	KillerPlayerID     string
	Level              int
	RecaveApplied      bool
	RecaveLight        bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type TableAssignment struct {
	TournamentID string
	PlayerID     string
	TableNumber  int
	SeatNumber   int
	Generation   int
	IsActive     bool
	CreatedAt    time.Time
}
