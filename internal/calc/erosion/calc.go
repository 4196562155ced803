// Package erosion predicts wall loss and efficiency decay from inlet velocity.
package erosion

import (
	"math"

	"Plant3D/internal/calc/calcerr"
)

const (
	hoursPerYear      = 8760.0
	referenceVelocity = 20.0
	maxDegradation    = 10.0
	degradationPerMM  = 0.5
	efficiencyFloor   = 80.0
	immediateLossMM   = 5.0
	planLossMM        = 3.0
)

const (
	StatusNormal    = "normal"
	StatusPlan      = "plan_inspection"
	StatusImmediate = "inspect_immediately"
)

type Input struct {
	Velocity       float64 `json:"velocity"`
	OperatingHours float64 `json:"operating_hours"`
	BaseEfficiency float64 `json:"base_efficiency"`
}

type Result struct {
	RateMMPerYear            float64 `json:"rate_mm_per_year"`
	ThicknessLossMM          float64 `json:"thickness_loss_mm"`
	EfficiencyDegradation    float64 `json:"efficiency_degradation"`
	PredictedEfficiency      float64 `json:"predicted_efficiency"`
	Status                   string  `json:"status"`
	InspectionIntervalMonths int     `json:"inspection_interval_months"`
	Notes                    string  `json:"notes"`
}

// Rate is the wall loss in mm per year at the given inlet velocity.
func Rate(velocity float64) float64 {
	return math.Pow(velocity/referenceVelocity, 3)
}

// InspectionInterval returns the recommended months between inspections.
func InspectionInterval(velocity float64) int {
	switch {
	case velocity > 22:
		return 3
	case velocity > 20:
		return 6
	default:
		return 12
	}
}

func Calculate(in Input) (Result, error) {
	if in.OperatingHours < 0 {
		return Result{}, calcerr.Invalid("operating_hours", "must not be negative, got %g", in.OperatingHours)
	}
	if in.Velocity < 0 {
		return Result{}, calcerr.Invalid("velocity", "must not be negative, got %g", in.Velocity)
	}

	rate := Rate(in.Velocity)
	loss := rate * in.OperatingHours / hoursPerYear
	deg := math.Min(maxDegradation, loss*degradationPerMM)
	res := Result{
		RateMMPerYear:            rate,
		ThicknessLossMM:          loss,
		EfficiencyDegradation:    deg,
		PredictedEfficiency:      math.Max(efficiencyFloor, in.BaseEfficiency-deg),
		Status:                   StatusNormal,
		InspectionIntervalMonths: InspectionInterval(in.Velocity),
		Notes:                    "Cubic velocity erosion correlation.",
	}
	switch {
	case loss > immediateLossMM:
		res.Status = StatusImmediate
	case loss > planLossMM:
		res.Status = StatusPlan
	}
	return res, nil
}
