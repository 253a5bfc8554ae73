package usecase

import "time"

type PlayerEnrolledPayload struct {
	PlayerID        string `json:"playerId"`
	DisplayName     string `json:"displayName"`
	EnrollmentOrder int    `json:"enrollmentOrder"`
}

type StatusChangedPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Players int    `json:"players,omitempty"`
}

type TimerPayload struct {
	Running        bool  `json:"running"`
	ElapsedSeconds int64 `json:"elapsedSeconds"`
	Level          int   `json:"level"`
	Automatic      bool  `json:"automatic,omitempty"`
}

type BustPayload struct {
	BustID             string `json:"bustId"`
	EliminatedPlayerID string `json:"eliminatedPlayerId"`
	KillerPlayerID     string `json:"killerPlayerId"`
	Level              int    `json:"level"`
}

type RecavePayload struct {
	BustID      string `json:"bustId"`
	PlayerID    string `json:"playerId"`
	Light       bool   `json:"light"`
	RebuysCount int    `json:"rebuysCount"`
	TotalPoints int    `json:"totalPoints"`
}

type EliminationPayload struct {
	EliminationID      string `json:"eliminationId"`
	EliminatedPlayerID string `json:"eliminatedPlayerId"`
	EliminatorPlayerID string `json:"eliminatorPlayerId"`
	Rank               int    `json:"rank"`
	Level              int    `json:"level"`
	IsLeaderKill       bool   `json:"isLeaderKill"`
	RemainingPlayers   int    `json:"remainingPlayers"`
}

type StandingPayload struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	FinalRank   int    `json:"finalRank"`
	TotalPoints int    `json:"totalPoints"`
	PrizeAmount *int64 `json:"prizeAmount,omitempty"`
}

type TournamentFinishedPayload struct {
	Name       string            `json:"name"`
	SeasonID   string            `json:"seasonId"`
	FinishedAt time.Time         `json:"finishedAt"`
	Standings  []StandingPayload `json:"standings"`
}

type TablesPayload struct {
	Generation int    `json:"generation"`
	Tables     int    `json:"tables"`
	Players    int    `json:"players"`
	Moved      int    `json:"moved"`
	Dissolved  int    `json:"dissolved"`
	Seed       uint64 `json:"seed"`
}
