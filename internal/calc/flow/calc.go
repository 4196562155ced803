// Package flow scales the operating point of a cyclone to a new flow rate.
package flow

import (
	"math"

	"Plant3D/internal/calc/calcerr"
)

const (
	efficiencyPenalty   = 2.0
	efficiencyFloor     = 85.0
	erosionVelocity     = 25.0
	pressureDropLimit   = 1.0
	defaultCurvePoints  = 50
	curveLow, curveHigh = 0.3, 1.7
)

type Input struct {
	BaseFlowRate     float64 `json:"base_flow_rate"`
	NewFlowRate      float64 `json:"new_flow_rate"`
	BaseVelocity     float64 `json:"base_velocity"`
	BasePressureDrop float64 `json:"base_pressure_drop"`
	BaseEfficiency   float64 `json:"base_efficiency"`
	CurvePoints      int     `json:"curve_points"`
}

type Point struct {
	FlowRate     float64 `json:"flow_rate"`
	PressureDrop float64 `json:"pressure_drop"`
}

type Result struct {
	FlowRatio             float64 `json:"flow_ratio"`
	InletVelocity         float64 `json:"inlet_velocity"`
	PressureDrop          float64 `json:"pressure_drop"`
	Efficiency            float64 `json:"efficiency"`
	ErosionRisk           bool    `json:"erosion_risk"`
	ExcessivePressureDrop bool    `json:"excessive_pressure_drop"`
	Curve                 []Point `json:"curve"`
	Notes                 string  `json:"notes"`
}

// Ratio is new/base flow. A zero base flow has no defined ratio.
func Ratio(base, next float64) (float64, error) {
	if base == 0 {
		return 0, calcerr.Undefined("flow ratio", "base flow rate is zero")
	}
	if base < 0 {
		return 0, calcerr.Invalid("base_flow_rate", "must be positive, got %g", base)
	}
	if next < 0 {
		return 0, calcerr.Invalid("new_flow_rate", "must not be negative, got %g", next)
	}
	return next / base, nil
}

// ScalePressureDrop applies the square law for turbulent flow.
func ScalePressureDrop(base, ratio float64) float64 {
	return base * ratio * ratio
}

func Calculate(in Input) (Result, error) {
	ratio, err := Ratio(in.BaseFlowRate, in.NewFlowRate)
	if err != nil {
		return Result{}, err
	}
	if in.CurvePoints == 0 {
		in.CurvePoints = defaultCurvePoints
	}
	if in.CurvePoints < 2 {
		return Result{}, calcerr.Invalid("curve_points", "need at least 2, got %d", in.CurvePoints)
	}

	res := Result{
		FlowRatio:     ratio,
		InletVelocity: in.BaseVelocity * ratio,
		PressureDrop:  ScalePressureDrop(in.BasePressureDrop, ratio),
		Efficiency:    math.Max(efficiencyFloor, in.BaseEfficiency-efficiencyPenalty*math.Abs(ratio-1)),
		Notes:         "Square-law pressure drop.",
	}
	res.ErosionRisk = res.InletVelocity > erosionVelocity
	res.ExcessivePressureDrop = res.PressureDrop > pressureDropLimit
	if res.ErosionRisk {
		res.Notes += " Inlet velocity above 25 m/s, erosion risk."
	}
	if res.ExcessivePressureDrop {
		res.Notes += " Pressure drop above 1.0 kg/cm2."
	}

	step := (curveHigh - curveLow) / float64(in.CurvePoints-1)
	res.Curve = make([]Point, 0, in.CurvePoints)
	for i := 0; i < in.CurvePoints; i++ {
		f := in.BaseFlowRate * (curveLow + step*float64(i))
		res.Curve = append(res.Curve, Point{
			FlowRate:     f,
			PressureDrop: ScalePressureDrop(in.BasePressureDrop, f/in.BaseFlowRate),
		})
	}
	return res, nil
}
