// Package importer reads scenario tables from Excel workbooks.
package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Plant3D/internal/calc/batch"
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

// Columns recognised in the header row, case-insensitive. Unknown columns
// are ignored.
var columns = map[string]func(*review.Scenario, string) error{
	"flow_rate": func(s *review.Scenario, v string) (err error) {
		s.FlowRate, err = toFloat(v)
		return err
	},
	"parallel": func(s *review.Scenario, v string) (err error) {
		s.Parallel, err = toInt(v)
		return err
	},
	"series": func(s *review.Scenario, v string) (err error) {
		s.Series, err = toInt(v)
		return err
	},
	"d50_factor": func(s *review.Scenario, v string) (err error) {
		s.D50Factor, err = toFloat(v)
		return err
	},
	"blockage_pct": func(s *review.Scenario, v string) (err error) {
		s.BlockagePct, err = toFloat(v)
		return err
	},
	"operating_hours": func(s *review.Scenario, v string) (err error) {
		s.OperatingHours, err = toFloat(v)
		return err
	},
	"variant": func(s *review.Scenario, v string) error {
		s.Variant = strings.ToLower(v)
		return nil
	},
}

type Skipped struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Result struct {
	Count    int                `json:"count"`
	Baseline equipment.Baseline `json:"baseline"`
	Rows     []batch.Row        `json:"rows"`
	Skipped  []Skipped          `json:"skipped,omitempty"`
}

// ReadScenarios parses the first sheet. Row numbers in Skipped are 1-based
// as shown in Excel.
func ReadScenarios(r io.Reader) ([]review.Scenario, []int, []Skipped, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, nil, calcerr.Invalid("file", "not a workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil, nil, nil, calcerr.Invalid("file", "empty sheet")
	}

	header := make([]string, len(rows[0]))
	known := 0
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if _, ok := columns[key]; ok {
			header[i] = key
			known++
		}
	}
	if known == 0 {
		return nil, nil, nil, calcerr.Invalid("file", "no scenario columns in header %q", rows[0])
	}

	var scenarios []review.Scenario
	var lines []int
	var skipped []Skipped
	for i := 1; i < len(rows); i++ {
		sc, empty, err := parseRow(header, rows[i])
		if empty {
			continue
		}
		if err != nil {
			skipped = append(skipped, Skipped{Row: i + 1, Reason: err.Error()})
			continue
		}
		if len(scenarios) == batch.MaxScenarios {
			return nil, nil, nil, calcerr.Invalid("file", "more than %d scenario rows", batch.MaxScenarios)
		}
		scenarios = append(scenarios, sc)
		lines = append(lines, i+1)
	}
	return scenarios, lines, skipped, nil
}

func parseRow(header, row []string) (review.Scenario, bool, error) {
	var sc review.Scenario
	empty := true
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if i >= len(header) || header[i] == "" || cell == "" {
			continue
		}
		empty = false
		if err := columns[header[i]](&sc, cell); err != nil {
			return review.Scenario{}, false, fmt.Errorf("%s: %q is not a number", header[i], cell)
		}
	}
	return sc, empty, nil
}

// Import evaluates every readable row against the baseline built from p.
// Rows that fail to parse or evaluate are reported in Skipped.
func Import(r io.Reader, p equipment.Parameters, d equipment.Defaults) (Result, error) {
	scenarios, lines, skipped, err := ReadScenarios(r)
	if err != nil {
		return Result{}, err
	}
	base, _ := review.Resolve(p, d)
	res := Result{Baseline: base, Skipped: skipped}
	for i, sc := range scenarios {
		out, err := review.Evaluate(base, sc)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Row: lines[i], Reason: err.Error()})
			continue
		}
		res.Rows = append(res.Rows, batch.Summarize(lines[i], out))
	}
	res.Count = len(res.Rows)
	return res, nil
}

func toFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return v, nil
}

func toInt(s string) (int, error) {
	v, err := toFloat(s)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(v), nil
}
