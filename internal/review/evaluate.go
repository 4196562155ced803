package review

import (
	"fmt"
	"math"

	"Plant3D/internal/calc/blockage"
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/erosion"
	"Plant3D/internal/calc/flow"
	"Plant3D/internal/calc/geometry"
	"Plant3D/internal/calc/margin"
	"Plant3D/internal/calc/parallel"
	"Plant3D/internal/calc/risk"
	"Plant3D/internal/calc/separation"
	"Plant3D/internal/calc/series"
	"Plant3D/internal/equipment"
)

// Scenario perturbs the baseline. Zero values leave the baseline as is.
type Scenario struct {
	FlowRate       float64 `json:"flow_rate"`
	Parallel       int     `json:"parallel"`
	Series         int     `json:"series"`
	D50Factor      float64 `json:"d50_factor"`
	BlockagePct    float64 `json:"blockage_pct"`
	OperatingHours float64 `json:"operating_hours"`
	Variant        string  `json:"variant"`
}

type Outcome struct {
	Scenario   Scenario          `json:"scenario"`
	Geometry   geometry.Result   `json:"geometry"`
	Flow       flow.Result       `json:"flow"`
	Parallel   parallel.Result   `json:"parallel"`
	Series     series.Result     `json:"series"`
	Separation separation.Result `json:"separation"`
	Blockage   blockage.Result   `json:"blockage"`
	Erosion    erosion.Result    `json:"erosion"`
	Margin     margin.Result     `json:"margin"`
	Risk       risk.Result       `json:"risk"`
}

// Evaluate runs every calculator for one scenario. Each stage works from the
// operating point the previous one produced: flow change, then the split
// across parallel units, then blockage of each unit's inlet.
func Evaluate(b equipment.Baseline, s Scenario) (Outcome, error) {
	if s.FlowRate == 0 {
		s.FlowRate = b.FlowRate
	}
	if s.Parallel == 0 {
		s.Parallel = 1
	}
	if s.Series == 0 {
		s.Series = 1
	}
	if s.D50Factor == 0 {
		s.D50Factor = 1
	}
	if s.D50Factor < 0 {
		return Outcome{}, calcerr.Invalid("d50_factor", "must be positive, got %g", s.D50Factor)
	}
	out := Outcome{Scenario: s}

	var err error
	out.Geometry, err = geometry.Calculate(geometry.Input{
		CylinderDiameterMM: b.CylinderDiameterMM,
		InletWidthMM:       b.InletWidthMM,
		InletHeightMM:      b.InletHeightMM,
		Variant:            s.Variant,
		Nozzles:            b.Nozzles,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("geometry: %w", err)
	}

	out.Flow, err = flow.Calculate(flow.Input{
		BaseFlowRate:     b.FlowRate,
		NewFlowRate:      s.FlowRate,
		BaseVelocity:     b.InletVelocity,
		BasePressureDrop: b.PressureDrop,
		BaseEfficiency:   b.Efficiency,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("flow: %w", err)
	}

	d50 := b.D50Micron
	if out.Flow.FlowRatio > 0 {
		d50, err = separation.CutSize(out.Flow.FlowRatio, b.D50Micron)
		if err != nil {
			return Outcome{}, fmt.Errorf("cut size: %w", err)
		}
	}

	out.Parallel, err = parallel.Calculate(parallel.Input{
		Units:            s.Parallel,
		BaseFlowRate:     s.FlowRate,
		BaseVelocity:     out.Flow.InletVelocity,
		BasePressureDrop: out.Flow.PressureDrop,
		BaseD50Micron:    d50 * s.D50Factor,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("parallel: %w", err)
	}

	out.Separation, err = separation.Calculate(separation.Input{D50Micron: out.Parallel.D50Micron})
	if err != nil {
		return Outcome{}, fmt.Errorf("separation: %w", err)
	}

	out.Series, err = series.Calculate(series.Input{
		Stages:           s.Series,
		BasePressureDrop: out.Parallel.PressureDrop,
		StageEfficiency:  stageFraction(out.Flow.Efficiency),
		BaseD50Micron:    out.Parallel.D50Micron,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("series: %w", err)
	}

	out.Blockage, err = blockage.Calculate(blockage.Input{
		BlockagePct:      s.BlockagePct,
		BaseVelocity:     out.Parallel.VelocityPerUnit,
		BasePressureDrop: out.Parallel.PressureDrop,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("blockage: %w", err)
	}

	out.Erosion, err = erosion.Calculate(erosion.Input{
		Velocity:       out.Blockage.InletVelocity,
		OperatingHours: s.OperatingHours,
		BaseEfficiency: out.Flow.Efficiency,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("erosion: %w", err)
	}

	out.Margin, err = margin.Calculate(margin.Input{
		DesignPressure:    b.DesignPressure,
		Pressure:          b.Pressure,
		DesignTemperature: b.DesignTemperature,
		Temperature:       b.Temperature,
		Material:          b.Material,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("margin: %w", err)
	}

	// Series stages stack pressure drop on top of any blockage.
	dp := out.Blockage.PressureDrop * float64(out.Series.Stages)
	out.Risk, err = risk.Calculate(risk.FromMargins(out.Margin, out.Blockage.InletVelocity, dp, out.Erosion.PredictedEfficiency))
	if err != nil {
		return Outcome{}, fmt.Errorf("risk: %w", err)
	}
	return out, nil
}

// stageFraction turns a percentage into a fraction for compounding. Datasheet
// efficiencies outside 0..100 are only warned about, so they are clamped here.
func stageFraction(pct float64) float64 {
	return math.Min(1, math.Max(0, pct/100))
}
