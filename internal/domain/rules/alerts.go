package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AlertKind classifies an alert.
type AlertKind string

const (
	AlertLowTemperature    AlertKind = "low_temperature"
	AlertHighTemperature   AlertKind = "high_temperature"
	AlertHumidityDeviation AlertKind = "humidity_deviation"
	AlertManualOverride    AlertKind = "manual_override"
)

// Alert is one human-readable finding about a room.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// Input is the room state the evaluator inspects. Range and IdealHumidity are
// nil when the room has no resolvable product.
type Input struct {
	Temperature    float64
	Humidity       float64
	Range          *Range
	IdealHumidity  *float64
	ManualOverride bool
}

// Evaluate returns the alerts for the input in a fixed order: low temperature,
// high temperature, humidity deviation, manual override notice. Every
// applicable alert is reported.
func Evaluate(in Input, th Thresholds) ([]Alert, error) {
	alerts := make([]Alert, 0, 4)

	if in.Range != nil {
		if err := in.Range.Validate(); err != nil {
			return nil, err
		}
		if in.Temperature < in.Range.Min {
			alerts = append(alerts, Alert{
				Kind:    AlertLowTemperature,
				Message: fmt.Sprintf("Temperature too low! Current: %.1f°C, Minimum: %s°C", in.Temperature, formatLimit(in.Range.Min)),
			})
		}
		if in.Temperature > in.Range.Max {
			alerts = append(alerts, Alert{
				Kind:    AlertHighTemperature,
				Message: fmt.Sprintf("Temperature too high! Current: %.1f°C, Maximum: %s°C", in.Temperature, formatLimit(in.Range.Max)),
			})
		}
	}

	if in.IdealHumidity != nil && math.Abs(in.Humidity-*in.IdealHumidity) > th.HumidityTolerance {
		alerts = append(alerts, Alert{
			Kind:    AlertHumidityDeviation,
			Message: fmt.Sprintf("Humidity deviation! Current: %.1f%%, Ideal: %s%%", in.Humidity, formatLimit(*in.IdealHumidity)),
		})
	}

	if in.ManualOverride {
		alerts = append(alerts, Alert{
			Kind:    AlertManualOverride,
			Message: "Manual override active - automated controls disabled",
		})
	}

	return alerts, nil
}

// formatLimit renders a product limit exactly, with at least one decimal.
func formatLimit(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eEN") {
		out += ".0"
	}
	return out
}

// Messages flattens alerts into their display strings, preserving order.
func Messages(alerts []Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Message)
	}
	return out
}
