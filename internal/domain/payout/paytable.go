package payout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPaytable = errors.New("invalid paytable")
	ErrNoRowForField   = errors.New("no paytable row covers field size")
	ErrPoolTooSmall    = errors.New("prize pool smaller than fixed payouts")
)

const fullBasisPoints = 10000

// Row pays either percentages of the pool in basis points or fixed amounts, per finishing rank.
type Row struct {
	MinPlayers  int
	MaxPlayers  int
	Percentages []int
	Fixed       []int64
}

func (r Row) Places() int {
	if len(r.Fixed) > 0 {
		return len(r.Fixed)
	}
	return len(r.Percentages)
}

type Paytable struct {
	Name string
	Rows []Row
}

func (p Paytable) Validate() error {
	if len(p.Rows) == 0 {
		return fmt.Errorf("%w: at least one row is required", ErrInvalidPaytable)
	}

	for i, row := range p.Rows {
		if row.MinPlayers < 1 || row.MaxPlayers < row.MinPlayers {
			return fmt.Errorf("%w: row %d has range %d-%d", ErrInvalidPaytable, i, row.MinPlayers, row.MaxPlayers)
		}
		if (len(row.Percentages) == 0) == (len(row.Fixed) == 0) {
			return fmt.Errorf("%w: row %d must set exactly one of percentages or fixed", ErrInvalidPaytable, i)
		}
		if row.Places() > row.MinPlayers {
			return fmt.Errorf("%w: row %d pays %d places for %d players", ErrInvalidPaytable, i, row.Places(), row.MinPlayers)
		}

		sum := 0
		for _, pct := range row.Percentages {
			if pct <= 0 {
				return fmt.Errorf("%w: row %d has non-positive percentage", ErrInvalidPaytable, i)
			}
			sum += pct
		}
		if len(row.Percentages) > 0 && sum != fullBasisPoints {
			return fmt.Errorf("%w: row %d percentages sum to %d, want %d", ErrInvalidPaytable, i, sum, fullBasisPoints)
		}
		for _, amount := range row.Fixed {
			if amount <= 0 {
				return fmt.Errorf("%w: row %d has non-positive fixed amount", ErrInvalidPaytable, i)
			}
		}

		for j := 0; j < i; j++ {
			if row.MinPlayers <= p.Rows[j].MaxPlayers && p.Rows[j].MinPlayers <= row.MaxPlayers {
				return fmt.Errorf("%w: rows %d and %d overlap", ErrInvalidPaytable, j, i)
			}
		}
	}

	return nil
}

func (p Paytable) RowFor(entrants int) (Row, bool) {
	for _, row := range p.Rows {
		if entrants >= row.MinPlayers && entrants <= row.MaxPlayers {
			return row, true
		}
	}
	return Row{}, false
}

// Distribute maps finishing rank to prize amount. Percentage shares are floored and the
// rounding remainder goes to rank 1.
func (p Paytable) Distribute(pool int64, entrants int) (map[int]int64, error) {
	row, ok := p.RowFor(entrants)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoRowForField, entrants)
	}

	out := make(map[int]int64, row.Places())
	if len(row.Fixed) > 0 {
		var total int64
		for i, amount := range row.Fixed {
			out[i+1] = amount
			total += amount
		}
		if total > pool {
			return nil, fmt.Errorf("%w: pool=%d fixed=%d", ErrPoolTooSmall, pool, total)
		}
		return out, nil
	}

	var paid int64
	for i, pct := range row.Percentages {
		amount := pool * int64(pct) / fullBasisPoints
		out[i+1] = amount
		paid += amount
	}
	out[1] += pool - paid
	return out, nil
}

// Pool is the total collected from buy-ins and rebuys, in minor units.
func Pool(buyIn, rebuyPrice, lightRebuyPrice int64, entrants, rebuys, lightRebuys int) int64 {
	return buyIn*int64(entrants) + rebuyPrice*int64(rebuys) + lightRebuyPrice*int64(lightRebuys)
}

func DefaultPaytable() Paytable {
	return Paytable{
		Name: "standard",
		Rows: []Row{
			{MinPlayers: 1, MaxPlayers: 4, Percentages: []int{10000}},
			{MinPlayers: 5, MaxPlayers: 8, Percentages: []int{6500, 3500}},
			{MinPlayers: 9, MaxPlayers: 15, Percentages: []int{5000, 3000, 2000}},
			{MinPlayers: 16, MaxPlayers: 24, Percentages: []int{4200, 2600, 1800, 1400}},
			{MinPlayers: 25, MaxPlayers: 35, Percentages: []int{3600, 2400, 1700, 1300, 1000}},
			{MinPlayers: 36, MaxPlayers: 60, Percentages: []int{3100, 2200, 1700, 1300, 1000, 700}},
		},
	}
}
