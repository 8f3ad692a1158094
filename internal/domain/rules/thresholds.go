// Package rules holds the pure decision logic of the monitoring system: the
// target-temperature recommendation and the room alert evaluation.
package rules

import (
	"math"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Thresholds parameterizes the recommendation and alert rules.
type Thresholds struct {
	// HotExternal is the external temperature above which rooms run colder.
	HotExternal float64
	// ColdExternal is the external temperature below which rooms run warmer.
	ColdExternal float64
	// Bias is how far from the midpoint the biased recommendations move.
	Bias float64
	// HumidityTolerance is the allowed absolute deviation from the ideal humidity.
	HumidityTolerance float64
}

// DefaultThresholds returns the operational defaults (30 °C, 10 °C, 1 °C, 10 points).
func DefaultThresholds() Thresholds {
	return Thresholds{
		HotExternal:       30,
		ColdExternal:      10,
		Bias:              1,
		HumidityTolerance: 10,
	}
}

// Range is an allowed temperature band.
type Range struct {
	Min float64
	Max float64
}

// RangeOf returns the product's band, or nil when no product is known.
func RangeOf(p *models.Product) *Range {
	if p == nil {
		return nil
	}
	return &Range{Min: p.MinTemp, Max: p.MaxTemp}
}

// Validate rejects non-finite bounds and negative-width bands.
func (r Range) Validate() error {
	if !finite(r.Min) || !finite(r.Max) || r.Min > r.Max {
		return models.InvalidRange(r.Min, r.Max)
	}
	return nil
}

// Midpoint returns the center of the band.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
