// Package stringer picks stock boards for the two side stringers of a flight.
//
// Only two candidate plans are compared (all 4000mm boards, or 4000mm boards
// topped up with 3000mm ones). It is not a general cutting-stock solver and
// is not meant to become one: changing the search changes the BOM.
package stringer

import "math"

const (
	Short = 3000
	Long  = 4000

	DefaultSides = 2
)

type Strategy string

const (
	StrategySingle  Strategy = "single"
	StrategyUniform Strategy = "uniform"
	StrategyMixed   Strategy = "mixed"
)

type Cut struct {
	StockLengthMM int `json:"stock_length_mm"`
	Quantity      int `json:"quantity"`
}

type Plan struct {
	Cuts         []Cut    `json:"cuts"`
	TotalPieces  int      `json:"total_pieces"`
	RequiredMM   float64  `json:"required_mm"`
	StockTotalMM float64  `json:"stock_total_mm"`
	WasteMM      float64  `json:"waste_mm"`
	Strategy     Strategy `json:"strategy"`
}

// Optimize returns the cheapest-in-waste plan covering runMM on every side.
func Optimize(runMM float64, sides int) Plan {
	if sides <= 0 {
		sides = DefaultSides
	}
	required := runMM * float64(sides)

	switch {
	case runMM <= Short:
		return newPlan(required, StrategySingle, Cut{Short, sides})
	case runMM <= Long:
		return newPlan(required, StrategySingle, Cut{Long, sides})
	}

	uniform := newPlan(required, StrategyUniform,
		Cut{Long, int(math.Ceil(runMM/Long)) * sides})

	longs := int(math.Floor(runMM/Long)) * sides
	rest := required - float64(longs*Long)
	shorts := 0
	if rest > 0 {
		shorts = int(math.Ceil(rest / Short))
	}
	mixed := newPlan(required, StrategyMixed, Cut{Long, longs}, Cut{Short, shorts})

	// Uniform wins ties: one board size is simpler to order and store.
	if mixed.WasteMM < uniform.WasteMM {
		return mixed
	}
	return uniform
}

func newPlan(required float64, s Strategy, cuts ...Cut) Plan {
	p := Plan{RequiredMM: required, Strategy: s}
	for _, c := range cuts {
		if c.Quantity <= 0 {
			continue
		}
		p.Cuts = append(p.Cuts, c)
		p.TotalPieces += c.Quantity
		p.StockTotalMM += float64(c.StockLengthMM * c.Quantity)
	}
	p.WasteMM = p.StockTotalMM - required
	return p
}

// Quantity returns how many boards of the given length the plan uses.
func (p Plan) Quantity(lengthMM int) int {
	n := 0
	for _, c := range p.Cuts {
		if c.StockLengthMM == lengthMM {
			n += c.Quantity
		}
	}
	return n
}
