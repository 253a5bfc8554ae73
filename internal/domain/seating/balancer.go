package seating

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

const (
	DefaultSeatsPerTable     = 9
	DefaultMinPlayersToBreak = 3
)

var (
	ErrNoPlayers       = errors.New("no active players")
	ErrInvalidSeats    = errors.New("seats per table must be >= 2")
	ErrInvalidMinBreak = errors.New("min players to break table must be >= 1")
	ErrDuplicatePlayer = errors.New("duplicate player in seating input")
)

type Assignment struct {
	PlayerID    string
	TableNumber int
	SeatNumber  int
}

type Layout []Assignment

type Table struct {
	Number int
	Seats  []Assignment
}

// Tables groups the layout by table number, seats ordered by seat number.
func (l Layout) Tables() []Table {
	byTable := make(map[int][]Assignment)
	for _, a := range l {
		byTable[a.TableNumber] = append(byTable[a.TableNumber], a)
	}
	out := make([]Table, 0, len(byTable))
	for number, seats := range byTable {
		sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
		out = append(out, Table{Number: number, Seats: seats})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

type Stats struct {
	Moved     int
	Dissolved int
	Tables    int
}

// NewRand returns a seeded generator so seatings can be reproduced from the seed alone.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Assign seats players on ceil(n/seats) tables whose sizes differ by at most one.
func Assign(players []string, seatsPerTable int, rng *rand.Rand) (Layout, error) {
	if err := validateInput(players, seatsPerTable); err != nil {
		return nil, err
	}

	shuffled := make([]string, len(players))
	copy(shuffled, players)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	tables := ceilDiv(len(shuffled), seatsPerTable)
	out := make(Layout, 0, len(shuffled))
	next := 0
	for table := 1; table <= tables; table++ {
		remaining := len(shuffled) - next
		size := ceilDiv(remaining, tables-table+1)
		seats := rng.Perm(seatsPerTable)
		for i := 0; i < size; i++ {
			out = append(out, Assignment{
				PlayerID:    shuffled[next],
				TableNumber: table,
				SeatNumber:  seats[i] + 1,
			})
			next++
		}
	}

	return out, nil
}

// TargetTables is the smallest balanced table count that keeps every table at or above
// minPlayersToBreak. Seat capacity wins over the minimum.
func TargetTables(players, seatsPerTable, minPlayersToBreak int) int {
	if players <= 0 {
		return 0
	}
	tables := ceilDiv(players, seatsPerTable)
	for tables > 1 && players/tables < minPlayersToBreak && ceilDiv(players, tables-1) <= seatsPerTable {
		tables--
	}
	return tables
}

// Rebalance redistributes players over the target table count. Players on kept tables keep
// their seats unless their table is over its target size; everyone else is moved to a random
// free seat.
func Rebalance(players []string, current Layout, seatsPerTable, minPlayersToBreak int, rng *rand.Rand) (Layout, Stats, error) {
	if err := validateInput(players, seatsPerTable); err != nil {
		return nil, Stats{}, err
	}
	if minPlayersToBreak < 1 {
		return nil, Stats{}, ErrInvalidMinBreak
	}

	active := make(map[string]struct{}, len(players))
	for _, id := range players {
		active[id] = struct{}{}
	}

	previous := make(map[string]Assignment, len(current))
	occupancy := make(map[int][]Assignment)
	for _, a := range current {
		if _, ok := active[a.PlayerID]; !ok {
			continue
		}
		if _, dup := previous[a.PlayerID]; dup {
			continue
		}
		previous[a.PlayerID] = a
		occupancy[a.TableNumber] = append(occupancy[a.TableNumber], a)
	}

	targetCount := TargetTables(len(players), seatsPerTable, minPlayersToBreak)
	kept := pickTables(occupancy, targetCount)
	targets := targetSizes(kept, occupancy, len(players))

	keptSet := make(map[int]struct{}, len(kept))
	for _, number := range kept {
		keptSet[number] = struct{}{}
	}
	stats := Stats{Tables: targetCount}
	for number := range occupancy {
		if _, ok := keptSet[number]; !ok {
			stats.Dissolved++
		}
	}

	out := make(Layout, 0, len(players))
	seated := make(map[string]struct{}, len(players))
	taken := make(map[int]map[int]struct{}, len(kept))

	for _, number := range kept {
		stayers := make([]Assignment, 0, len(occupancy[number]))
		seatsUsed := make(map[int]struct{})
		candidates := append([]Assignment(nil), occupancy[number]...)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].SeatNumber < candidates[j].SeatNumber })
		for _, a := range candidates {
			if a.SeatNumber < 1 || a.SeatNumber > seatsPerTable {
				continue
			}
			if _, clash := seatsUsed[a.SeatNumber]; clash {
				continue
			}
			seatsUsed[a.SeatNumber] = struct{}{}
			stayers = append(stayers, a)
		}

		if len(stayers) > targets[number] {
			rng.Shuffle(len(stayers), func(i, j int) { stayers[i], stayers[j] = stayers[j], stayers[i] })
			for _, overflow := range stayers[targets[number]:] {
				delete(seatsUsed, overflow.SeatNumber)
			}
			stayers = stayers[:targets[number]]
		}

		for _, a := range stayers {
			out = append(out, a)
			seated[a.PlayerID] = struct{}{}
		}
		taken[number] = seatsUsed
	}

	movers := make([]string, 0, len(players))
	for _, id := range players {
		if _, ok := seated[id]; !ok {
			movers = append(movers, id)
		}
	}
	rng.Shuffle(len(movers), func(i, j int) { movers[i], movers[j] = movers[j], movers[i] })

	next := 0
	for _, number := range kept {
		deficit := targets[number] - len(taken[number])
		if deficit <= 0 {
			continue
		}
		for _, seat := range rng.Perm(seatsPerTable) {
			if deficit == 0 {
				break
			}
			if _, used := taken[number][seat+1]; used {
				continue
			}
			id := movers[next]
			next++
			deficit--
			taken[number][seat+1] = struct{}{}
			out = append(out, Assignment{PlayerID: id, TableNumber: number, SeatNumber: seat + 1})
			if prior, ok := previous[id]; ok && prior.TableNumber != number {
				stats.Moved++
			}
		}
	}
	if next != len(movers) {
		return nil, Stats{}, fmt.Errorf("seating: %d players left unseated", len(movers)-next)
	}

	return out, stats, nil
}

// pickTables keeps the fullest existing tables and adds the lowest unused numbers if more are needed.
func pickTables(occupancy map[int][]Assignment, count int) []int {
	existing := make([]int, 0, len(occupancy))
	for number := range occupancy {
		existing = append(existing, number)
	}
	sort.Slice(existing, func(i, j int) bool {
		li, lj := len(occupancy[existing[i]]), len(occupancy[existing[j]])
		if li != lj {
			return li > lj
		}
		return existing[i] < existing[j]
	})
	if len(existing) > count {
		existing = existing[:count]
	}

	used := make(map[int]struct{}, len(existing))
	for _, number := range existing {
		used[number] = struct{}{}
	}
	for candidate := 1; len(existing) < count; candidate++ {
		if _, ok := used[candidate]; ok {
			continue
		}
		existing = append(existing, candidate)
		used[candidate] = struct{}{}
	}

	sort.Ints(existing)
	return existing
}

// targetSizes splits players evenly; the larger sizes go to the tables currently holding more players.
func targetSizes(kept []int, occupancy map[int][]Assignment, players int) map[int]int {
	ordered := append([]int(nil), kept...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(occupancy[ordered[i]]) > len(occupancy[ordered[j]])
	})

	base := players / len(kept)
	extra := players % len(kept)
	out := make(map[int]int, len(kept))
	for i, number := range ordered {
		out[number] = base
		if i < extra {
			out[number]++
		}
	}
	return out
}

func validateInput(players []string, seatsPerTable int) error {
	if len(players) == 0 {
		return ErrNoPlayers
	}
	if seatsPerTable < 2 {
		return ErrInvalidSeats
	}
	seen := make(map[string]struct{}, len(players))
	for _, id := range players {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
