package blinds

import "time"

// Timer mirrors the persisted timer fields of a tournament.
// Elapsed time accumulates into ElapsedSeconds only when the timer is paused.
type Timer struct {
	StartedAt      *time.Time
	PausedAt       *time.Time
	ElapsedSeconds int64
}

func (t Timer) Running() bool {
	return t.StartedAt != nil && t.PausedAt == nil
}

func (t Timer) Started() bool {
	return t.StartedAt != nil
}

// Elapsed returns total elapsed seconds at now.
func Elapsed(t Timer, now time.Time) int64 {
	total := t.ElapsedSeconds
	if t.Running() {
		if delta := now.Sub(*t.StartedAt); delta > 0 {
			total += int64(delta / time.Second)
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

type Position struct {
	Index            int
	Level            Level
	ElapsedInLevel   int64
	RemainingSeconds int64
	// Exhausted is set once elapsed time runs past the whole schedule.
	Exhausted bool
	Next      *Level
}

func (p Position) Number() int {
	return p.Level.Number
}

// Resolve walks the schedule consuming whole levels. A level whose duration is exactly
// consumed is passed; past the end, the last level is returned with no time remaining.
func Resolve(s Schedule, elapsedSeconds int64) (Position, error) {
	if len(s) == 0 {
		return Position{}, ErrEmptySchedule
	}
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	remaining := elapsedSeconds
	for i, lvl := range s {
		duration := lvl.DurationSeconds()
		if remaining < duration {
			return Position{
				Index:            i,
				Level:            lvl,
				ElapsedInLevel:   remaining,
				RemainingSeconds: duration - remaining,
				Next:             nextLevel(s, i),
			}, nil
		}
		remaining -= duration
	}

	last := len(s) - 1
	return Position{
		Index:          last,
		Level:          s[last],
		ElapsedInLevel: s[last].DurationSeconds(),
		Exhausted:      true,
	}, nil
}

// EffectiveLevel resolves the authoritative level number for a timer at now.
func EffectiveLevel(s Schedule, t Timer, now time.Time) (int, error) {
	pos, err := Resolve(s, Elapsed(t, now))
	if err != nil {
		return 0, err
	}
	return pos.Number(), nil
}

func nextLevel(s Schedule, index int) *Level {
	if index+1 >= len(s) {
		return nil
	}
	next := s[index+1]
	return &next
}

// Start runs the timer from now. A running timer is returned unchanged.
func (t Timer) Start(now time.Time) Timer {
	if t.Running() {
		return t
	}
	started := now
	t.StartedAt = &started
	t.PausedAt = nil
	return t
}

// Pause folds the running stretch into ElapsedSeconds. A stopped timer is returned unchanged.
func (t Timer) Pause(now time.Time) Timer {
	if !t.Running() {
		return t
	}
	t.ElapsedSeconds = Elapsed(t, now)
	paused := now
	t.PausedAt = &paused
	return t
}

func (t Timer) Reset() Timer {
	return Timer{}
}
