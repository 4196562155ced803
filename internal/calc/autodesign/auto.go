// Package autodesign sizes a cyclone body for a required duty.
package autodesign

import (
	"math"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/geometry"
)

const (
	defaultVelocity = 20.0
	// Stairmand inlet: height 0.5 D, width 0.2 D.
	inletHeightRate = 0.5
	inletWidthRate  = 0.2
	roundToMM       = 10.0
)

type Input struct {
	VolumeFlowM3H  float64 `json:"volume_flow_m3h"`
	MassFlowKgH    float64 `json:"mass_flow_kg_h"`
	DensityKgM3    float64 `json:"density_kg_m3"`
	TargetVelocity float64 `json:"target_velocity"`
	Variant        string  `json:"variant"`
}

type Result struct {
	VolumeFlowM3H      float64         `json:"volume_flow_m3h"`
	RequiredDiameterMM float64         `json:"required_diameter_mm"`
	InletVelocity      float64         `json:"inlet_velocity"`
	Geometry           geometry.Result `json:"geometry"`
	Notes              string          `json:"notes"`
}

// Diameter returns the cylinder diameter in metres whose Stairmand inlet
// carries q m3/s at velocity v m/s.
func Diameter(q, v float64) float64 {
	return math.Sqrt(q / (v * inletHeightRate * inletWidthRate))
}

func Calculate(in Input) (Result, error) {
	if in.TargetVelocity == 0 {
		in.TargetVelocity = defaultVelocity
	}
	if in.TargetVelocity < 0 {
		return Result{}, calcerr.Invalid("target_velocity", "must be positive, got %g", in.TargetVelocity)
	}
	q := in.VolumeFlowM3H
	if q == 0 && in.MassFlowKgH > 0 {
		if in.DensityKgM3 <= 0 {
			return Result{}, calcerr.Invalid("density_kg_m3", "needed to convert mass flow, got %g", in.DensityKgM3)
		}
		q = in.MassFlowKgH / in.DensityKgM3
	}
	if q <= 0 {
		return Result{}, calcerr.Invalid("volume_flow_m3h", "must be positive, got %g", q)
	}

	exact := Diameter(q/3600, in.TargetVelocity) * 1000
	d := math.Ceil(exact/roundToMM) * roundToMM
	g, err := geometry.Calculate(geometry.Input{
		CylinderDiameterMM: d,
		InletWidthMM:       d * inletWidthRate,
		InletHeightMM:      d * inletHeightRate,
		Variant:            in.Variant,
	})
	if err != nil {
		return Result{}, err
	}
	area := g.InletWidthMM * g.InletHeightMM / 1e6
	return Result{
		VolumeFlowM3H:      q,
		RequiredDiameterMM: exact,
		InletVelocity:      q / 3600 / area,
		Geometry:           g,
		Notes:              "Diameter rounded up to 10 mm; inlet velocity is for the rounded body.",
	}, nil
}
