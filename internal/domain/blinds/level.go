package blinds

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySchedule   = errors.New("blind schedule is empty")
	ErrInvalidSchedule = errors.New("invalid blind schedule")
	ErrLevelNotFound   = errors.New("blind level not found")
)

// Level is one entry of a blind schedule. Breaks are numbered levels with zero blinds.
type Level struct {
	Number          int
	SmallBlind      int64
	BigBlind        int64
	Ante            int64
	DurationMinutes int
	IsBreak         bool
}

func (l Level) DurationSeconds() int64 {
	return int64(l.DurationMinutes) * 60
}

// Schedule is ordered by play order; Number runs 1..len.
type Schedule []Level

func (s Schedule) TotalSeconds() int64 {
	var total int64
	for _, lvl := range s {
		total += lvl.DurationSeconds()
	}
	return total
}

func (s Schedule) Level(number int) (Level, bool) {
	if number < 1 || number > len(s) {
		return Level{}, false
	}
	return s[number-1], true
}

func (s Schedule) PlayingLevels() int {
	count := 0
	for _, lvl := range s {
		if !lvl.IsBreak {
			count++
		}
	}
	return count
}

func (s Schedule) Validate() error {
	if len(s) == 0 {
		return ErrEmptySchedule
	}
	if s[0].IsBreak {
		return fmt.Errorf("%w: schedule cannot start with a break", ErrInvalidSchedule)
	}
	if s[len(s)-1].IsBreak {
		return fmt.Errorf("%w: schedule cannot end with a break", ErrInvalidSchedule)
	}

	for i, lvl := range s {
		if lvl.Number != i+1 {
			return fmt.Errorf("%w: level at position %d has number %d", ErrInvalidSchedule, i+1, lvl.Number)
		}
		if lvl.DurationMinutes <= 0 {
			return fmt.Errorf("%w: level %d duration must be > 0", ErrInvalidSchedule, lvl.Number)
		}
		if lvl.IsBreak {
			continue
		}
		if lvl.SmallBlind <= 0 || lvl.BigBlind < lvl.SmallBlind {
			return fmt.Errorf("%w: level %d blinds %d/%d", ErrInvalidSchedule, lvl.Number, lvl.SmallBlind, lvl.BigBlind)
		}
		if lvl.Ante < 0 {
			return fmt.Errorf("%w: level %d ante must be >= 0", ErrInvalidSchedule, lvl.Number)
		}
	}

	return nil
}
