package equipment

import "fmt"

// Defaults are the literal fallbacks used when a datasheet omits a value.
type Defaults struct {
	D50Micron          float64 `yaml:"d50_micron" json:"d50_micron"`
	Efficiency         float64 `yaml:"efficiency" json:"efficiency"`
	FlowRate           float64 `yaml:"flow_rate" json:"flow_rate"`
	PressureDrop       float64 `yaml:"pressure_drop" json:"pressure_drop"`
	InletVelocity      float64 `yaml:"inlet_velocity" json:"inlet_velocity"`
	Pressure           float64 `yaml:"pressure" json:"pressure"`
	Temperature        float64 `yaml:"temperature" json:"temperature"`
	DesignPressure     float64 `yaml:"design_pressure" json:"design_pressure"`
	DesignTemperature  float64 `yaml:"design_temperature" json:"design_temperature"`
	Material           string  `yaml:"material" json:"material"`
	CylinderDiameterMM float64 `yaml:"cylinder_diameter_mm" json:"cylinder_diameter_mm"`
	InletHeightMM      float64 `yaml:"inlet_height_mm" json:"inlet_height_mm"`
	InletWidthMM       float64 `yaml:"inlet_width_mm" json:"inlet_width_mm"`
}

func DefaultFallbacks() Defaults {
	return Defaults{
		D50Micron:          5.0,
		Efficiency:         99.2,
		FlowRate:           671,
		PressureDrop:       0.357,
		InletVelocity:      20,
		Pressure:           10.2,
		Temperature:        82.2,
		DesignPressure:     24.6,
		DesignTemperature:  140,
		Material:           "CS",
		CylinderDiameterMM: 279,
		InletHeightMM:      279,
		InletWidthMM:       140,
	}
}

// Baseline is the fully resolved operating point of one review session.
// It is built once and passed by value; nothing mutates it afterwards.
type Baseline struct {
	TagNumber          string   `json:"tag_number"`
	D50Micron          float64  `json:"d50_micron"`
	Efficiency         float64  `json:"efficiency"`
	FlowRate           float64  `json:"flow_rate"`
	PressureDrop       float64  `json:"pressure_drop"`
	InletVelocity      float64  `json:"inlet_velocity"`
	Pressure           float64  `json:"pressure"`
	Temperature        float64  `json:"temperature"`
	DesignPressure     float64  `json:"design_pressure"`
	DesignTemperature  float64  `json:"design_temperature"`
	Material           string   `json:"material"`
	CylinderDiameterMM float64  `json:"cylinder_diameter_mm"`
	InletHeightMM      float64  `json:"inlet_height_mm"`
	InletWidthMM       float64  `json:"inlet_width_mm"`
	Nozzles            []Nozzle `json:"nozzles"`
}

// Resolve fills every absent field of p from d and reports one
// missing-data warning per substituted value.
func Resolve(p Parameters, d Defaults) (Baseline, []Warning) {
	var warns []Warning
	pick := func(field string, v *float64, fallback float64) float64 {
		if v != nil {
			return *v
		}
		warns = append(warns, Warning{
			Kind:    KindMissingData,
			Field:   field,
			Message: fmt.Sprintf("%s not in datasheet, using %g", field, fallback),
		})
		return fallback
	}

	b := Baseline{
		TagNumber:          p.TagNumber,
		D50Micron:          d.D50Micron,
		Efficiency:         pick("efficiency", p.Efficiency, d.Efficiency),
		FlowRate:           pick("flow_rate", p.FlowRate, d.FlowRate),
		PressureDrop:       pick("pressure_drop", p.PressureDrop, d.PressureDrop),
		InletVelocity:      pick("inlet_velocity", p.InletVelocity, d.InletVelocity),
		Pressure:           pick("pressure", p.Pressure, d.Pressure),
		Temperature:        pick("temperature", p.Temperature, d.Temperature),
		DesignPressure:     pick("design_pressure", p.DesignPressure, d.DesignPressure),
		DesignTemperature:  pick("design_temperature", p.DesignTemperature, d.DesignTemperature),
		CylinderDiameterMM: pick("cylinder_diameter_mm", p.Dimensions.CylinderDiameterMM, d.CylinderDiameterMM),
		InletHeightMM:      pick("inlet_height_mm", p.Dimensions.InletHeightMM, d.InletHeightMM),
		InletWidthMM:       pick("inlet_width_mm", p.Dimensions.InletWidthMM, d.InletWidthMM),
		Material:           p.Material,
		Nozzles:            append([]Nozzle(nil), p.Nozzles...),
	}
	if b.Material == "" {
		b.Material = d.Material
		warns = append(warns, Warning{
			Kind:    KindMissingData,
			Field:   "material",
			Message: "material not in datasheet, using " + d.Material,
		})
	}
	return b, warns
}
