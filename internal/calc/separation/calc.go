// Package separation evaluates the Barth grade-efficiency curve.
package separation

import (
	"math"

	"Plant3D/internal/calc/calcerr"
)

const (
	barthExponent = 2.5
	defaultD50    = 5.0
	defaultPoints = 100
	// d90 is approximated as a fixed multiple of the cut size.
	d90Multiple = 3.0
)

var KeySizesMicron = []float64{1, 5, 10, 20, 50}

type Input struct {
	D50Micron           float64   `json:"d50_micron"`
	D50Factor           float64   `json:"d50_factor"`
	ParticleSizesMicron []float64 `json:"particle_sizes_micron"`
	CurvePoints         int       `json:"curve_points"`
}

type Point struct {
	SizeMicron    float64 `json:"size_micron"`
	EfficiencyPct float64 `json:"efficiency_pct"`
}

type Result struct {
	D50Micron float64 `json:"d50_micron"`
	D90Micron float64 `json:"d90_micron"`
	KeySizes  []Point `json:"key_sizes"`
	Curve     []Point `json:"curve"`
	Notes     string  `json:"notes"`
}

// Efficiency returns the percentage of particles of the given size that are
// separated by a cyclone with cut size d50.
func Efficiency(sizeMicron, d50Micron float64) (float64, error) {
	if sizeMicron <= 0 {
		return 0, calcerr.Undefined("separation efficiency", "particle size must be positive, got %g", sizeMicron)
	}
	if d50Micron <= 0 {
		return 0, calcerr.Undefined("separation efficiency", "cut size must be positive, got %g", d50Micron)
	}
	return 100 / (1 + math.Pow(d50Micron/sizeMicron, barthExponent)), nil
}

// CutSize scales the base cut size for a changed flow through the same body.
func CutSize(flowRatio, baseD50 float64) (float64, error) {
	if flowRatio <= 0 {
		return 0, calcerr.Undefined("cut size", "flow ratio must be positive, got %g", flowRatio)
	}
	if baseD50 <= 0 {
		return 0, calcerr.Invalid("d50_micron", "must be positive, got %g", baseD50)
	}
	return baseD50 / math.Sqrt(flowRatio), nil
}

func Calculate(in Input) (Result, error) {
	if in.D50Micron == 0 {
		in.D50Micron = defaultD50
	}
	if in.D50Factor == 0 {
		in.D50Factor = 1
	}
	if in.CurvePoints == 0 {
		in.CurvePoints = defaultPoints
	}
	if in.D50Micron < 0 {
		return Result{}, calcerr.Invalid("d50_micron", "must be positive, got %g", in.D50Micron)
	}
	if in.D50Factor < 0 {
		return Result{}, calcerr.Invalid("d50_factor", "must be positive, got %g", in.D50Factor)
	}
	if in.CurvePoints < 2 {
		return Result{}, calcerr.Invalid("curve_points", "need at least 2, got %d", in.CurvePoints)
	}
	sizes := in.ParticleSizesMicron
	if len(sizes) == 0 {
		sizes = KeySizesMicron
	}

	d50 := in.D50Micron * in.D50Factor
	res := Result{
		D50Micron: d50,
		D90Micron: d50 * d90Multiple,
		Notes:     "Barth model, exponent 2.5.",
	}
	for _, s := range sizes {
		eff, err := Efficiency(s, d50)
		if err != nil {
			return Result{}, err
		}
		res.KeySizes = append(res.KeySizes, Point{SizeMicron: s, EfficiencyPct: eff})
	}

	curve, err := Curve(d50, in.CurvePoints)
	if err != nil {
		return Result{}, err
	}
	res.Curve = curve
	return res, nil
}

// Curve samples the efficiency on a log scale from 10^-0.5 to 10^2.5 micron.
func Curve(d50 float64, points int) ([]Point, error) {
	out := make([]Point, 0, points)
	for i := 0; i < points; i++ {
		size := math.Pow(10, -0.5+3*float64(i)/float64(points-1))
		eff, err := Efficiency(size, d50)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{SizeMicron: size, EfficiencyPct: eff})
	}
	return out, nil
}
