package rules

import "math"

// Recommend derives a target temperature for the band from the external temperature.
//
// Hot weather biases toward the cold end without crossing the floor, cold
// weather biases toward the warm end without crossing the ceiling, anything
// in between (bounds included) yields the exact midpoint. The boolean is false
// when no band is known.
func Recommend(rng *Range, externalTemp float64, th Thresholds) (float64, bool, error) {
	if rng == nil {
		return 0, false, nil
	}
	if err := rng.Validate(); err != nil {
		return 0, false, err
	}

	mid := rng.Midpoint()
	switch {
	case externalTemp > th.HotExternal:
		return math.Max(rng.Min, mid-th.Bias), true, nil
	case externalTemp < th.ColdExternal:
		return math.Min(rng.Max, mid+th.Bias), true, nil
	default:
		return mid, true, nil
	}
}
