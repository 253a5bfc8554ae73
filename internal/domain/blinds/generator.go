package blinds

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGenerateInput = errors.New("invalid blind generator input")

const (
	DefaultLevelDurationMinutes = 20
	DefaultExpectedPlayers      = 10
	DefaultBreakEvery           = 4
	DefaultBreakDurationMinutes = 10

	startingDepthBigBlinds = 100
	finalDepthBigBlinds    = 10
)

// niceMantissas are expressed in tenths so 1.5, 2.5 and 7.5 stay integral.
var niceMantissas = []int64{10, 15, 20, 25, 30, 40, 50, 60, 75, 80}

type GenerateInput struct {
	StartingStack         int64
	TargetDurationMinutes int
	LevelDurationMinutes  int
	ExpectedPlayers       int
	// BreakEvery inserts a break after that many playing levels; negative disables breaks.
	BreakEvery           int
	BreakDurationMinutes int
	// AnteFromLevel is the playing-level ordinal from which antes apply; 0 disables antes.
	AnteFromLevel int
}

func (in GenerateInput) withDefaults() GenerateInput {
	if in.LevelDurationMinutes == 0 {
		in.LevelDurationMinutes = DefaultLevelDurationMinutes
	}
	if in.ExpectedPlayers == 0 {
		in.ExpectedPlayers = DefaultExpectedPlayers
	}
	if in.BreakEvery == 0 {
		in.BreakEvery = DefaultBreakEvery
	}
	if in.BreakDurationMinutes == 0 {
		in.BreakDurationMinutes = DefaultBreakDurationMinutes
	}
	return in
}

func (in GenerateInput) validate() error {
	switch {
	case in.StartingStack <= 0:
		return fmt.Errorf("%w: starting stack must be > 0", ErrInvalidGenerateInput)
	case in.TargetDurationMinutes <= 0:
		return fmt.Errorf("%w: target duration must be > 0", ErrInvalidGenerateInput)
	case in.LevelDurationMinutes <= 0:
		return fmt.Errorf("%w: level duration must be > 0", ErrInvalidGenerateInput)
	case in.ExpectedPlayers < 2:
		return fmt.Errorf("%w: expected players must be >= 2", ErrInvalidGenerateInput)
	case in.BreakDurationMinutes <= 0:
		return fmt.Errorf("%w: break duration must be > 0", ErrInvalidGenerateInput)
	case in.AnteFromLevel < 0:
		return fmt.Errorf("%w: ante level must be >= 0", ErrInvalidGenerateInput)
	case in.TargetDurationMinutes < in.LevelDurationMinutes:
		return fmt.Errorf("%w: target duration %dm shorter than one level (%dm)",
			ErrInvalidGenerateInput, in.TargetDurationMinutes, in.LevelDurationMinutes)
	}
	return nil
}

// Generate builds a schedule that fits the target duration. Blinds grow geometrically from
// a 100 big blind starting depth to roughly 10 big blinds per player heads-up.
func Generate(in GenerateInput) (Schedule, error) {
	in = in.withDefaults()
	if err := in.validate(); err != nil {
		return nil, err
	}

	playing := fitPlayingLevels(in)

	startSB := niceNearest(float64(in.StartingStack) / float64(2*startingDepthBigBlinds))
	totalChips := float64(in.StartingStack) * float64(in.ExpectedPlayers)
	endSB := niceNearest(totalChips / float64(2*2*finalDepthBigBlinds))

	ratio := 1.0
	if playing > 1 && endSB > startSB {
		ratio = math.Pow(float64(endSB)/float64(startSB), 1/float64(playing-1))
	}

	out := make(Schedule, 0, playing+breaksFor(in, playing))
	var prevSB int64
	for i := 0; i < playing; i++ {
		sb := niceNearest(float64(startSB) * math.Pow(ratio, float64(i)))
		if sb <= prevSB {
			sb = niceAbove(prevSB)
		}
		prevSB = sb

		bb := 2 * sb
		var ante int64
		if in.AnteFromLevel > 0 && i+1 >= in.AnteFromLevel {
			ante = niceNearest(float64(bb) / 8)
		}

		out = append(out, Level{
			Number:          len(out) + 1,
			SmallBlind:      sb,
			BigBlind:        bb,
			Ante:            ante,
			DurationMinutes: in.LevelDurationMinutes,
		})

		if in.BreakEvery > 0 && (i+1)%in.BreakEvery == 0 && i+1 < playing {
			out = append(out, Level{
				Number:          len(out) + 1,
				DurationMinutes: in.BreakDurationMinutes,
				IsBreak:         true,
			})
		}
	}

	return out, nil
}

func breaksFor(in GenerateInput, playing int) int {
	if in.BreakEvery <= 0 || playing <= 1 {
		return 0
	}
	return (playing - 1) / in.BreakEvery
}

func fitPlayingLevels(in GenerateInput) int {
	n := 1
	for {
		next := n + 1
		total := next*in.LevelDurationMinutes + breaksFor(in, next)*in.BreakDurationMinutes
		if total > in.TargetDurationMinutes {
			return n
		}
		n = next
	}
}

// niceNearest rounds v to the closest value of the 1-1.5-2-2.5-3-4-5-6-7.5-8 series. Ties go low.
func niceNearest(v float64) int64 {
	if v <= 1 {
		return 1
	}
	below := int64(1)
	above := niceAbove(below)
	for float64(above) <= v {
		below = above
		above = niceAbove(below)
	}
	if float64(above)-v < v-float64(below) {
		return above
	}
	return below
}

// niceAbove returns the smallest series value strictly greater than v.
func niceAbove(v int64) int64 {
	for scale := int64(1); ; scale *= 10 {
		for _, m := range niceMantissas {
			tenths := m * scale
			if tenths%10 != 0 {
				continue
			}
			if candidate := tenths / 10; candidate > v {
				return candidate
			}
		}
	}
}
