// Package parallel splits the base duty across identical cyclones in parallel.
package parallel

import (
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/separation"
)

const (
	lowVelocity     = 15.0
	referenceMicron = 10.0
	defaultD50      = 5.0
)

type Input struct {
	Units            int     `json:"units"`
	BaseFlowRate     float64 `json:"base_flow_rate"`
	BaseVelocity     float64 `json:"base_velocity"`
	BasePressureDrop float64 `json:"base_pressure_drop"`
	BaseD50Micron    float64 `json:"base_d50_micron"`
}

type Result struct {
	Units           int     `json:"units"`
	FlowPerUnit     float64 `json:"flow_per_unit"`
	VelocityPerUnit float64 `json:"velocity_per_unit"`
	PressureDrop    float64 `json:"pressure_drop"`
	D50Micron       float64 `json:"d50_micron"`
	Efficiency10um  float64 `json:"efficiency_10um"`
	VelocityTooLow  bool    `json:"velocity_too_low"`
	Notes           string  `json:"notes"`
}

func Calculate(in Input) (Result, error) {
	if in.Units == 0 {
		in.Units = 1
	}
	if in.BaseD50Micron == 0 {
		in.BaseD50Micron = defaultD50
	}
	if in.Units < 1 {
		return Result{}, calcerr.Invalid("units", "must be at least 1, got %d", in.Units)
	}
	if in.BaseFlowRate < 0 {
		return Result{}, calcerr.Invalid("base_flow_rate", "must not be negative, got %g", in.BaseFlowRate)
	}

	n := float64(in.Units)
	share := 1 / n
	d50, err := separation.CutSize(share, in.BaseD50Micron)
	if err != nil {
		return Result{}, err
	}
	eff, err := separation.Efficiency(referenceMicron, d50)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Units:           in.Units,
		FlowPerUnit:     in.BaseFlowRate / n,
		VelocityPerUnit: in.BaseVelocity / n,
		PressureDrop:    in.BasePressureDrop * share * share,
		D50Micron:       d50,
		Efficiency10um:  eff,
		Notes:           "Identical units sharing the flow evenly.",
	}
	res.VelocityTooLow = in.Units > 1 && res.VelocityPerUnit < lowVelocity
	if res.VelocityTooLow {
		res.Notes += " Per-unit inlet velocity below 15 m/s."
	}
	return res, nil
}
