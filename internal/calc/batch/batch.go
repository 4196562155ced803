// Package batch evaluates a list of scenarios against one baseline.
package batch

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

const workers = 8

// MaxScenarios caps one batch request.
const MaxScenarios = 500

type Input struct {
	Params    equipment.Parameters `json:"params"`
	Scenarios []review.Scenario    `json:"scenarios"`
}

// Row is the headline figures of one evaluated scenario.
type Row struct {
	Index         int             `json:"index"`
	Scenario      review.Scenario `json:"scenario"`
	InletVelocity float64         `json:"inlet_velocity"`
	PressureDrop  float64         `json:"pressure_drop"`
	D50Micron     float64         `json:"d50_micron"`
	Efficiency    float64         `json:"efficiency"`
	ErosionStatus string          `json:"erosion_status"`
	RiskAverage   float64         `json:"risk_average"`
	RiskBand      string          `json:"risk_band"`
}

type Result struct {
	Baseline equipment.Baseline  `json:"baseline"`
	Warnings []equipment.Warning `json:"warnings,omitempty"`
	Rows     []Row               `json:"rows"`
}

// Summarize reduces an outcome to a table row.
func Summarize(index int, out review.Outcome) Row {
	return Row{
		Index:         index,
		Scenario:      out.Scenario,
		InletVelocity: out.Blockage.InletVelocity,
		PressureDrop:  out.Blockage.PressureDrop * float64(out.Series.Stages),
		D50Micron:     out.Separation.D50Micron,
		Efficiency:    out.Erosion.PredictedEfficiency,
		ErosionStatus: out.Erosion.Status,
		RiskAverage:   out.Risk.Average,
		RiskBand:      out.Risk.Band,
	}
}

func Calculate(in Input, d equipment.Defaults) (Result, error) {
	if len(in.Scenarios) == 0 {
		return Result{}, calcerr.Invalid("scenarios", "no items")
	}
	if len(in.Scenarios) > MaxScenarios {
		return Result{}, calcerr.Invalid("scenarios", "at most %d items, got %d", MaxScenarios, len(in.Scenarios))
	}
	base, warns := review.Resolve(in.Params, d)
	out := Result{Baseline: base, Warnings: warns, Rows: make([]Row, len(in.Scenarios))}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, sc := range in.Scenarios {
		g.Go(func() error {
			res, err := review.Evaluate(base, sc)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			out.Rows[i] = Summarize(i, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return out, nil
}
