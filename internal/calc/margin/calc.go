// Package margin compares the operating point against the design limits.
package margin

import (
	"strings"

	"Plant3D/internal/calc/calcerr"
)

const carbonSteelMaxTemp = 400.0

type Input struct {
	DesignPressure    float64 `json:"design_pressure"`
	Pressure          float64 `json:"pressure"`
	DesignTemperature float64 `json:"design_temperature"`
	Temperature       float64 `json:"temperature"`
	Material          string  `json:"material"`
}

type Result struct {
	PressureMarginPct    float64 `json:"pressure_margin_pct"`
	PressureStatus       string  `json:"pressure_status"`
	TemperatureMarginPct float64 `json:"temperature_margin_pct"`
	TemperatureStatus    string  `json:"temperature_status"`
	Material             string  `json:"material"`
	MaterialSuitable     bool    `json:"material_suitable"`
	Notes                string  `json:"notes"`
}

// Percent returns (design - operating) / operating in percent.
func Percent(design, operating float64, field string) (float64, error) {
	if operating == 0 {
		return 0, calcerr.Undefined(field+" margin", "operating value is zero")
	}
	return (design - operating) / operating * 100, nil
}

func band(v, high, mid float64) string {
	switch {
	case v > high:
		return "sufficient"
	case v > mid:
		return "adequate"
	default:
		return "insufficient"
	}
}

func Calculate(in Input) (Result, error) {
	if in.Material == "" {
		in.Material = "CS"
	}
	mp, err := Percent(in.DesignPressure, in.Pressure, "pressure")
	if err != nil {
		return Result{}, err
	}
	mt, err := Percent(in.DesignTemperature, in.Temperature, "temperature")
	if err != nil {
		return Result{}, err
	}
	res := Result{
		PressureMarginPct:    mp,
		PressureStatus:       band(mp, 100, 50),
		TemperatureMarginPct: mt,
		TemperatureStatus:    band(mt, 50, 30),
		Material:             in.Material,
		MaterialSuitable:     strings.EqualFold(in.Material, "CS") && in.Temperature <= carbonSteelMaxTemp,
	}
	if res.MaterialSuitable {
		res.Notes = "Carbon steel within temperature limit."
	} else {
		res.Notes = "Material needs review for the operating temperature."
	}
	return res, nil
}
