// Package series compounds identical cyclone stages arranged in series.
package series

import (
	"math"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/separation"
)

const (
	pressureDropLimit = 1.5
	defaultD50        = 5.0
)

var stageSizesMicron = []float64{1, 5, 10, 20}

type Input struct {
	Stages           int     `json:"stages"`
	BasePressureDrop float64 `json:"base_pressure_drop"`
	// StageEfficiency is a fraction in [0,1].
	StageEfficiency float64 `json:"stage_efficiency"`
	BaseD50Micron   float64 `json:"base_d50_micron"`
}

type Particle struct {
	SizeMicron    float64 `json:"size_micron"`
	EfficiencyPct float64 `json:"efficiency_pct"`
}

type Result struct {
	Stages                int        `json:"stages"`
	TotalPressureDrop     float64    `json:"total_pressure_drop"`
	TotalEfficiency       float64    `json:"total_efficiency"`
	Particles             []Particle `json:"particles"`
	ExcessivePressureDrop bool       `json:"excessive_pressure_drop"`
	Notes                 string     `json:"notes"`
}

// Compound returns the overall fraction removed by n stages that each remove
// the same fraction of what reaches them.
func Compound(stage float64, n int) float64 {
	return 1 - math.Pow(1-stage, float64(n))
}

func Calculate(in Input) (Result, error) {
	if in.Stages == 0 {
		in.Stages = 1
	}
	if in.BaseD50Micron == 0 {
		in.BaseD50Micron = defaultD50
	}
	if in.Stages < 1 {
		return Result{}, calcerr.Invalid("stages", "must be at least 1, got %d", in.Stages)
	}
	if in.StageEfficiency < 0 || in.StageEfficiency > 1 {
		return Result{}, calcerr.Invalid("stage_efficiency", "must be a fraction in [0,1], got %g", in.StageEfficiency)
	}

	res := Result{
		Stages:            in.Stages,
		TotalPressureDrop: in.BasePressureDrop * float64(in.Stages),
		TotalEfficiency:   Compound(in.StageEfficiency, in.Stages),
		Notes:             "Independent stages, pressure drop stacks linearly.",
	}
	for _, size := range stageSizesMicron {
		eff, err := separation.Efficiency(size, in.BaseD50Micron)
		if err != nil {
			return Result{}, err
		}
		res.Particles = append(res.Particles, Particle{
			SizeMicron:    size,
			EfficiencyPct: Compound(eff/100, in.Stages) * 100,
		})
	}
	res.ExcessivePressureDrop = res.TotalPressureDrop > pressureDropLimit
	if res.ExcessivePressureDrop {
		res.Notes += " Total pressure drop above 1.5 kg/cm2."
	}
	return res, nil
}
