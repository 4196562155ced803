// Package risk folds five thresholded checks into one 0-100 score.
package risk

import "Plant3D/internal/calc/margin"

const (
	BandSafe    = "safe"
	BandCaution = "caution"
	BandDanger  = "danger"
)

type Input struct {
	PressureMarginPct    float64 `json:"pressure_margin_pct"`
	TemperatureMarginPct float64 `json:"temperature_margin_pct"`
	InletVelocity        float64 `json:"inlet_velocity"`
	PressureDrop         float64 `json:"pressure_drop"`
	Efficiency           float64 `json:"efficiency"`
}

type Score struct {
	Factor string  `json:"factor"`
	Value  float64 `json:"value"`
	Score  int     `json:"score"`
}

type Result struct {
	Scores  []Score `json:"scores"`
	Average float64 `json:"average"`
	Band    string  `json:"band"`
	Notes   string  `json:"notes"`
}

func above(v, high, mid float64) int {
	switch {
	case v > high:
		return 100
	case v > mid:
		return 50
	default:
		return 20
	}
}

func below(v, low, mid float64) int {
	switch {
	case v < low:
		return 100
	case v < mid:
		return 50
	default:
		return 20
	}
}

func Classify(avg float64) string {
	switch {
	case avg > 70:
		return BandSafe
	case avg > 40:
		return BandCaution
	default:
		return BandDanger
	}
}

func Calculate(in Input) (Result, error) {
	eff := 50
	if in.Efficiency > 95 {
		eff = 100
	}
	scores := []Score{
		{Factor: "pressure_margin", Value: in.PressureMarginPct, Score: above(in.PressureMarginPct, 100, 50)},
		{Factor: "temperature_margin", Value: in.TemperatureMarginPct, Score: above(in.TemperatureMarginPct, 50, 30)},
		{Factor: "inlet_velocity", Value: in.InletVelocity, Score: below(in.InletVelocity, 20, 22)},
		{Factor: "pressure_drop", Value: in.PressureDrop, Score: below(in.PressureDrop, 0.5, 0.7)},
		{Factor: "efficiency", Value: in.Efficiency, Score: eff},
	}
	total := 0
	for _, s := range scores {
		total += s.Score
	}
	avg := float64(total) / float64(len(scores))
	return Result{
		Scores:  scores,
		Average: avg,
		Band:    Classify(avg),
		Notes:   "Mean of five thresholded checks.",
	}, nil
}

// FromMargins builds the input from a margin result and the operating point.
func FromMargins(m margin.Result, velocity, pressureDrop, efficiency float64) Input {
	return Input{
		PressureMarginPct:    m.PressureMarginPct,
		TemperatureMarginPct: m.TemperatureMarginPct,
		InletVelocity:        velocity,
		PressureDrop:         pressureDrop,
		Efficiency:           efficiency,
	}
}
