package layout

import "math"

type Config string

const (
	Straight Config = "straight"
	LShape   Config = "l_shape"
	UShape   Config = "u_shape"
)

func (c Config) Valid() bool {
	switch c {
	case Straight, LShape, UShape:
		return true
	}
	return false
}

const (
	DefaultStepHeightMM = 225.0
	TreadDepthMM        = 300.0
)

type Input struct {
	HeightMM     float64 `json:"height_mm"`
	Config       Config  `json:"config"`
	StairType    string  `json:"stair_type"`
	StepHeightMM float64 `json:"step_height_mm"`
}

type Result struct {
	HeightMM            float64   `json:"height_mm"`
	Config              Config    `json:"config"`
	StairType           string    `json:"stair_type"`
	StepsCount          int       `json:"steps_count"`
	ActualStepHeightMM  float64   `json:"actual_step_height_mm"`
	PlatformsCount      int       `json:"platforms_count"`
	FlightSteps         []int     `json:"flight_steps"`
	FlightRunMM         []float64 `json:"flight_run_mm"`
	StringerRunLengthMM float64   `json:"stringer_run_length_mm"`
}

// Resolve lays out the steps for a given rise. Input ranges are checked by
// the caller; an unknown Config panics.
func Resolve(in Input) Result {
	fixed := in.StepHeightMM
	if fixed <= 0 {
		fixed = DefaultStepHeightMM
	}
	raw := int(math.Ceil(in.HeightMM / fixed))
	if raw < 1 {
		raw = 1
	}

	res := Result{
		HeightMM:           in.HeightMM,
		Config:             in.Config,
		StairType:          in.StairType,
		ActualStepHeightMM: in.HeightMM / float64(raw),
	}

	// A landing takes the place of one riser.
	steps := raw
	switch in.Config {
	case Straight:
	case LShape:
		res.PlatformsCount = 1
		steps = max(1, raw-1)
	case UShape:
		res.PlatformsCount = 2
		steps = max(1, raw-2)
	default:
		panic("layout: unknown configuration " + string(in.Config))
	}
	res.StepsCount = steps

	switch in.Config {
	case Straight:
		run := math.Hypot(in.HeightMM, float64(steps-1)*TreadDepthMM)
		res.FlightSteps = []int{steps}
		res.FlightRunMM = []float64{run}
		res.StringerRunLengthMM = run
	case LShape:
		first := (steps + 1) / 2
		res.FlightSteps = []int{first, steps - first}
		for _, n := range res.FlightSteps {
			run := flightRun(in.HeightMM, n, steps)
			res.FlightRunMM = append(res.FlightRunMM, run)
			res.StringerRunLengthMM += run
		}
	case UShape:
		flights := min(3, steps)
		res.FlightSteps = split(steps, flights)
		// Equal flights share one stringer length: the longest one.
		run := flightRun(in.HeightMM, res.FlightSteps[0], steps)
		for range res.FlightSteps {
			res.FlightRunMM = append(res.FlightRunMM, run)
		}
		res.StringerRunLengthMM = run * float64(flights)
	}
	return res
}

// flightRun is the stringer length of a flight of n steps out of total, its
// rise being the flight's share of the full height.
func flightRun(heightMM float64, n, total int) float64 {
	if n <= 0 {
		return 0
	}
	rise := heightMM * float64(n) / float64(total)
	horiz := float64(max(0, n-1)) * TreadDepthMM
	return math.Hypot(rise, horiz)
}

// split spreads n steps over k flights, remainder to the first ones.
func split(n, k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = n / k
		if i < n%k {
			out[i]++
		}
	}
	return out
}

// FlightRiseMM returns the rise covered by each flight.
func (r Result) FlightRiseMM() []float64 {
	out := make([]float64, len(r.FlightSteps))
	for i, n := range r.FlightSteps {
		out[i] = r.HeightMM * float64(n) / float64(r.StepsCount)
	}
	return out
}
