package events

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

// Envelope is the wire shape every sink receives.
type Envelope struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	TournamentID string    `json:"tournamentId"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      any       `json:"payload,omitempty"`
}

func NewEnvelope(e tournament.Event) Envelope {
	return Envelope{
		ID:           e.ID,
		Type:         string(e.Type),
		TournamentID: e.TournamentID,
		OccurredAt:   e.OccurredAt.UTC(),
		Payload:      e.Payload,
	}
}

func Encode(e tournament.Event) ([]byte, error) {
	return sonic.Marshal(NewEnvelope(e))
}
