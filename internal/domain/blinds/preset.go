package blinds

import "strings"

var presets = map[string]GenerateInput{
	"turbo": {
		StartingStack:         10000,
		TargetDurationMinutes: 180,
		LevelDurationMinutes:  10,
		ExpectedPlayers:       10,
		BreakEvery:            6,
		BreakDurationMinutes:  5,
		AnteFromLevel:         5,
	},
	"standard": {
		StartingStack:         20000,
		TargetDurationMinutes: 300,
		LevelDurationMinutes:  20,
		ExpectedPlayers:       15,
		BreakEvery:            4,
		BreakDurationMinutes:  10,
		AnteFromLevel:         5,
	},
	"deepstack": {
		StartingStack:         30000,
		TargetDurationMinutes: 480,
		LevelDurationMinutes:  30,
		ExpectedPlayers:       20,
		BreakEvery:            3,
		BreakDurationMinutes:  15,
		AnteFromLevel:         4,
	},
}

func Preset(name string) (GenerateInput, bool) {
	in, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return in, ok
}
