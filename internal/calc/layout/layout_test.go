package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_StraightRiseConservation(t *testing.T) {
	for h := 1000.0; h <= 5000.0; h += 37.5 {
		res := Resolve(Input{HeightMM: h, Config: Straight, StepHeightMM: 225})
		require.GreaterOrEqual(t, res.StepsCount, 1)
		assert.InDelta(t, h, float64(res.StepsCount)*res.ActualStepHeightMM, 0.01, "height %.1f", h)
		assert.LessOrEqual(t, res.ActualStepHeightMM, 225.0)
	}
}

func TestResolve_MonotonicStepCount(t *testing.T) {
	for _, cfg := range []Config{Straight, LShape, UShape} {
		prev := 0
		for h := 1000.0; h <= 5000.0; h += 10 {
			res := Resolve(Input{HeightMM: h, Config: cfg, StepHeightMM: 225})
			assert.GreaterOrEqual(t, res.StepsCount, prev, "%s at %.0f", cfg, h)
			prev = res.StepsCount
		}
	}
}

func TestResolve_StraightScenario(t *testing.T) {
	res := Resolve(Input{HeightMM: 2800, Config: Straight})

	assert.Equal(t, 13, res.StepsCount)
	assert.Equal(t, 0, res.PlatformsCount)
	assert.InDelta(t, 215.38, res.ActualStepHeightMM, 0.01)
	assert.InDelta(t, math.Sqrt(2800*2800+3600*3600), res.StringerRunLengthMM, 1e-9)
	assert.Equal(t, []int{13}, res.FlightSteps)
}

func TestResolve_LShape(t *testing.T) {
	res := Resolve(Input{HeightMM: 3000, Config: LShape, StepHeightMM: 225})

	assert.Equal(t, 13, res.StepsCount)
	assert.Equal(t, 1, res.PlatformsCount)
	assert.Equal(t, []int{7, 6}, res.FlightSteps)
	require.Len(t, res.FlightRunMM, 2)

	var rise float64
	for _, r := range res.FlightRiseMM() {
		rise += r
	}
	assert.InDelta(t, 3000, rise, 1e-6)

	first := math.Hypot(3000*7.0/13.0, 6*300)
	second := math.Hypot(3000*6.0/13.0, 5*300)
	assert.InDelta(t, first+second, res.StringerRunLengthMM, 1e-6)
}

func TestResolve_UShapeThreeFlights(t *testing.T) {
	res := Resolve(Input{HeightMM: 3000, Config: UShape, StepHeightMM: 225})

	assert.Equal(t, 12, res.StepsCount)
	assert.Equal(t, 2, res.PlatformsCount)
	assert.Equal(t, []int{4, 4, 4}, res.FlightSteps)
	hyp := math.Hypot(1000, 900)
	assert.InDelta(t, hyp*3, res.StringerRunLengthMM, 1e-6)
}

func TestResolve_UShapeUnevenSplitUsesLongestFlight(t *testing.T) {
	// 2900 / 225 -> 13 risers, 11 steps -> 4, 4, 3
	res := Resolve(Input{HeightMM: 2900, Config: UShape, StepHeightMM: 225})

	assert.Equal(t, []int{4, 4, 3}, res.FlightSteps)
	hyp := math.Hypot(2900*4.0/11.0, 900)
	assert.InDelta(t, hyp*3, res.StringerRunLengthMM, 1e-6)
}

func TestResolve_SmallStepCountsDegrade(t *testing.T) {
	// A tall fixed step forces tiny step counts.
	u := Resolve(Input{HeightMM: 1000, Config: UShape, StepHeightMM: 250})
	assert.Equal(t, 2, u.StepsCount)
	assert.Equal(t, []int{1, 1}, u.FlightSteps)

	u1 := Resolve(Input{HeightMM: 1000, Config: UShape, StepHeightMM: 1000})
	assert.Equal(t, 1, u1.StepsCount)
	assert.Equal(t, []int{1}, u1.FlightSteps)
	assert.InDelta(t, 1000, u1.StringerRunLengthMM, 1e-9)

	l := Resolve(Input{HeightMM: 1000, Config: LShape, StepHeightMM: 1000})
	assert.Equal(t, 1, l.StepsCount)
	assert.Equal(t, []int{1, 0}, l.FlightSteps)
	assert.InDelta(t, 1000, l.StringerRunLengthMM, 1e-9)
}

func TestResolve_DefaultStepHeight(t *testing.T) {
	a := Resolve(Input{HeightMM: 2250, Config: Straight})
	b := Resolve(Input{HeightMM: 2250, Config: Straight, StepHeightMM: DefaultStepHeightMM})
	assert.Equal(t, b, a)
	assert.Equal(t, 10, a.StepsCount)
}

func TestResolve_UnknownConfigPanics(t *testing.T) {
	assert.Panics(t, func() {
		Resolve(Input{HeightMM: 2000, Config: "spiral"})
	})
}
