// Package blockage estimates the operating point with a partly blocked inlet.
package blockage

import "Plant3D/internal/calc/calcerr"

const (
	severeVelocity    = 25.0
	cautionVelocity   = 22.0
	pressureDropLimit = 1.0
)

type Input struct {
	BlockagePct      float64 `json:"blockage_pct"`
	BaseVelocity     float64 `json:"base_velocity"`
	BasePressureDrop float64 `json:"base_pressure_drop"`
}

type Result struct {
	AreaFactor            float64 `json:"area_factor"`
	InletVelocity         float64 `json:"inlet_velocity"`
	PressureDrop          float64 `json:"pressure_drop"`
	ErosionLevel          string  `json:"erosion_level"`
	ExcessivePressureDrop bool    `json:"excessive_pressure_drop"`
	Notes                 string  `json:"notes"`
}

func Calculate(in Input) (Result, error) {
	if in.BlockagePct < 0 || in.BlockagePct >= 100 {
		return Result{}, calcerr.Invalid("blockage_pct", "must be in [0,100), got %g", in.BlockagePct)
	}
	area := 1 - in.BlockagePct/100
	res := Result{
		AreaFactor:    area,
		InletVelocity: in.BaseVelocity / area,
		PressureDrop:  in.BasePressureDrop / (area * area),
		ErosionLevel:  "normal",
		Notes:         "Same flow through the reduced open area.",
	}
	switch {
	case res.InletVelocity > severeVelocity:
		res.ErosionLevel = "severe"
	case res.InletVelocity > cautionVelocity:
		res.ErosionLevel = "caution"
	}
	res.ExcessivePressureDrop = res.PressureDrop > pressureDropLimit
	return res, nil
}
