package geometry

import (
	"math"
	"strconv"
	"strings"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
)

const (
	VariantStandard = "standard"
	VariantPrecise  = "precise"

	mmPerInch          = 25.4
	defaultNozzleMM    = 50.0
	standardWallMM     = 10.0
	preciseWallMM      = 12.7
	cylinderHeightRate = 1.5
	coneHeightRate     = 2.5
	coneOutletRate     = 0.375
	gasOutletRate      = 0.5
)

type Input struct {
	CylinderDiameterMM float64            `json:"cylinder_diameter_mm"`
	InletWidthMM       float64            `json:"inlet_width_mm"`
	InletHeightMM      float64            `json:"inlet_height_mm"`
	Variant            string             `json:"variant"`
	Nozzles            []equipment.Nozzle `json:"nozzles,omitempty"`
}

type Nozzle struct {
	Tag        string  `json:"tag"`
	Service    string  `json:"service"`
	DiameterMM float64 `json:"diameter_mm"`
	Rating     string  `json:"rating"`
	Type       string  `json:"type"`
}

// Result holds every body dimension in millimetres.
type Result struct {
	Variant              string   `json:"variant"`
	CylinderDiameterMM   float64  `json:"cylinder_diameter_mm"`
	CylinderHeightMM     float64  `json:"cylinder_height_mm"`
	ConeHeightMM         float64  `json:"cone_height_mm"`
	ConeOutletDiameterMM float64  `json:"cone_outlet_diameter_mm"`
	GasOutletDiameterMM  float64  `json:"gas_outlet_diameter_mm"`
	GasOutletHeightMM    float64  `json:"gas_outlet_height_mm"`
	GasOutletExtensionMM float64  `json:"gas_outlet_extension_mm,omitempty"`
	SolidsOutletDiameter float64  `json:"solids_outlet_diameter_mm"`
	InletWidthMM         float64  `json:"inlet_width_mm"`
	InletHeightMM        float64  `json:"inlet_height_mm"`
	InletLengthMM        float64  `json:"inlet_length_mm"`
	WallThicknessMM      float64  `json:"wall_thickness_mm"`
	TotalHeightMM        float64  `json:"total_height_mm"`
	Nozzles              []Nozzle `json:"nozzles"`
	Notes                string   `json:"notes"`
}

func Calculate(in Input) (Result, error) {
	d := in.CylinderDiameterMM
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return Result{}, calcerr.Invalid("cylinder_diameter_mm", "must be positive, got %g", d)
	}
	if in.InletWidthMM <= 0 {
		return Result{}, calcerr.Invalid("inlet_width_mm", "must be positive, got %g", in.InletWidthMM)
	}
	if in.InletHeightMM <= 0 {
		return Result{}, calcerr.Invalid("inlet_height_mm", "must be positive, got %g", in.InletHeightMM)
	}
	if in.Variant == "" {
		in.Variant = VariantStandard
	}
	if in.Variant != VariantStandard && in.Variant != VariantPrecise {
		return Result{}, calcerr.Invalid("variant", "unknown variant %q", in.Variant)
	}

	res := Result{
		Variant:              in.Variant,
		CylinderDiameterMM:   d,
		CylinderHeightMM:     d * cylinderHeightRate,
		ConeHeightMM:         d * coneHeightRate,
		ConeOutletDiameterMM: d * coneOutletRate,
		GasOutletDiameterMM:  d * gasOutletRate,
		GasOutletHeightMM:    d * 0.5,
		InletWidthMM:         in.InletWidthMM,
		InletHeightMM:        in.InletHeightMM,
		InletLengthMM:        d * 0.5,
		WallThicknessMM:      standardWallMM,
		Notes:                "Stairmand high-efficiency proportions.",
	}
	if in.Variant == VariantPrecise {
		res.GasOutletHeightMM = d * 0.625
		res.GasOutletExtensionMM = d * 0.5
		res.InletLengthMM = d * 0.4
		res.WallThicknessMM = preciseWallMM
	}
	if res.ConeOutletDiameterMM >= d {
		return Result{}, calcerr.Invalid("cone_outlet_diameter_mm", "%g must be smaller than cylinder diameter %g", res.ConeOutletDiameterMM, d)
	}
	if in.InletWidthMM >= d/2 {
		res.Notes += " Inlet width exceeds the annulus between wall and vortex finder."
	}
	res.SolidsOutletDiameter = res.ConeOutletDiameterMM
	res.TotalHeightMM = res.CylinderHeightMM + res.ConeHeightMM

	res.Nozzles = make([]Nozzle, 0, len(in.Nozzles))
	for _, n := range in.Nozzles {
		res.Nozzles = append(res.Nozzles, Nozzle{
			Tag:        n.Tag,
			Service:    n.Service,
			DiameterMM: NozzleDiameterMM(n.Size),
			Rating:     n.Rating,
			Type:       NozzleType(n.Service),
		})
	}
	return res, nil
}

// NozzleDiameterMM converts a schedule size such as `8"` to millimetres.
// Unreadable sizes fall back to 50 mm.
func NozzleDiameterMM(size string) float64 {
	s := strings.TrimSpace(size)
	s = strings.TrimSuffix(s, "inch")
	s = strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return defaultNozzleMM
	}
	return v * mmPerInch
}

func NozzleType(service string) string {
	s := strings.ToLower(service)
	switch {
	case strings.Contains(s, "inlet"):
		return "inlet"
	case strings.Contains(s, "outlet") && strings.Contains(s, "gas"):
		return "gas_outlet"
	case strings.Contains(s, "outlet") && strings.Contains(s, "solid"):
		return "solids_outlet"
	default:
		return "other"
	}
}

// DiameterFromModelSize reads a vendor model size given in inches, e.g. "11" or "Size 11".
func DiameterFromModelSize(model string) (float64, error) {
	fields := strings.Fields(model)
	for i := len(fields) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(strings.Trim(fields[i], `"`), 64)
		if err == nil && v > 0 {
			return v * mmPerInch, nil
		}
	}
	return 0, calcerr.Invalid("model", "no size in %q", model)
}
