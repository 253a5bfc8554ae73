package tournament

import (
	"context"
	"time"
)

type EventType string

const (
	EventRegistrationOpened  EventType = "registration.opened"
	EventPlayerEnrolled      EventType = "player.enrolled"
	EventTournamentStarted   EventType = "tournament.started"
	EventTournamentCancelled EventType = "tournament.cancelled"
	EventTournamentFinished  EventType = "tournament.finished"
	EventTimerStarted        EventType = "timer.started"
	EventTimerPaused         EventType = "timer.paused"
	EventTimerResumed        EventType = "timer.resumed"
	EventTimerReset          EventType = "timer.reset"
	EventBustRecorded        EventType = "bust.recorded"
	EventRecaveApplied       EventType = "recave.applied"
	EventRecaveCancelled     EventType = "recave.cancelled"
	EventEliminationRecorded EventType = "elimination.recorded"
	EventTablesGenerated     EventType = "tables.generated"
	EventTablesRebalanced    EventType = "tables.rebalanced"
)

// Event is emitted only after the transaction producing it has committed.
type Event struct {
	ID           string
	Type         EventType
	TournamentID string
	OccurredAt   time.Time
	Payload      any
}

// EventPublisher delivers events best-effort. It never reports failures to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}
