// Package recommend picks the parallel/series arrangement with the best risk
// index for a required duty.
package recommend

import (
	"Plant3D/internal/calc/batch"
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

const (
	defaultMaxParallel = 4
	defaultMaxSeries   = 3
	limitUnits         = 12
)

type Input struct {
	Params      equipment.Parameters `json:"params"`
	Scenario    review.Scenario      `json:"scenario"`
	MaxParallel int                  `json:"max_parallel"`
	MaxSeries   int                  `json:"max_series"`
}

type Result struct {
	Parallel    int         `json:"parallel"`
	Series      int         `json:"series"`
	RiskAverage float64     `json:"risk_average"`
	RiskBand    string      `json:"risk_band"`
	Candidates  []batch.Row `json:"candidates"`
	Notes       string      `json:"notes"`
}

// better ranks by risk index, then fewer cyclones, then lower pressure drop.
func better(a, b batch.Row) bool {
	if a.RiskAverage != b.RiskAverage {
		return a.RiskAverage > b.RiskAverage
	}
	ua, ub := a.Scenario.Parallel*a.Scenario.Series, b.Scenario.Parallel*b.Scenario.Series
	if ua != ub {
		return ua < ub
	}
	return a.PressureDrop < b.PressureDrop
}

func Arrangement(in Input, d equipment.Defaults) (Result, error) {
	if in.MaxParallel == 0 {
		in.MaxParallel = defaultMaxParallel
	}
	if in.MaxSeries == 0 {
		in.MaxSeries = defaultMaxSeries
	}
	if in.MaxParallel < 1 || in.MaxParallel > limitUnits {
		return Result{}, calcerr.Invalid("max_parallel", "must be in 1..%d, got %d", limitUnits, in.MaxParallel)
	}
	if in.MaxSeries < 1 || in.MaxSeries > limitUnits {
		return Result{}, calcerr.Invalid("max_series", "must be in 1..%d, got %d", limitUnits, in.MaxSeries)
	}

	base, _ := review.Resolve(in.Params, d)
	var res Result
	best := -1
	for p := 1; p <= in.MaxParallel; p++ {
		for s := 1; s <= in.MaxSeries; s++ {
			sc := in.Scenario
			sc.Parallel, sc.Series = p, s
			out, err := review.Evaluate(base, sc)
			if err != nil {
				return Result{}, err
			}
			row := batch.Summarize(len(res.Candidates), out)
			res.Candidates = append(res.Candidates, row)
			if best < 0 || better(row, res.Candidates[best]) {
				best = len(res.Candidates) - 1
			}
		}
	}
	top := res.Candidates[best]
	res.Parallel = top.Scenario.Parallel
	res.Series = top.Scenario.Series
	res.RiskAverage = top.RiskAverage
	res.RiskBand = top.RiskBand
	res.Notes = "Highest risk index; ties go to fewer cyclones, then lower pressure drop."
	return res, nil
}
