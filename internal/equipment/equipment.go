// Package equipment holds the datasheet parameters of a cyclone separator
// and the resolved operating baseline the calculators work from.
package equipment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Nozzle struct {
	Tag     string `json:"tag"`
	Service string `json:"service"`
	Size    string `json:"size"`
	Rating  string `json:"rating"`
	Facing  string `json:"facing"`
}

// Dimensions stores only what the body geometry is derived from.
type Dimensions struct {
	InletHeightMM      *float64 `json:"inlet_height_mm,omitempty"`
	InletWidthMM       *float64 `json:"inlet_width_mm,omitempty"`
	CylinderDiameterMM *float64 `json:"cylinder_diameter_mm,omitempty"`
}

// Parameters is the flat record extracted from a datasheet. Numeric fields
// are nil when the datasheet did not carry them.
type Parameters struct {
	TagNumber     string `json:"tag_number,omitempty"`
	Service       string `json:"service,omitempty"`
	EquipmentType string `json:"equipment_type,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	Model         string `json:"model,omitempty"`

	FlowRate    *float64 `json:"flow_rate,omitempty"`
	FlowUnit    string   `json:"flow_unit,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	Density     *float64 `json:"density,omitempty"`

	DesignPressure    *float64 `json:"design_pressure,omitempty"`
	DesignTemperature *float64 `json:"design_temperature,omitempty"`
	Material          string   `json:"material,omitempty"`

	Efficiency    *float64 `json:"efficiency,omitempty"`
	PressureDrop  *float64 `json:"pressure_drop,omitempty"`
	InletVelocity *float64 `json:"inlet_velocity,omitempty"`

	Dimensions Dimensions `json:"dimensions"`
	Nozzles    []Nozzle   `json:"nozzles"`
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float64) *float64 { return &v }

// Merge returns p with every field set in o taking precedence.
func (p Parameters) Merge(o Parameters) Parameters {
	str := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	num := func(dst **float64, src *float64) {
		if src != nil {
			*dst = Float(*src)
		}
	}
	str(&p.TagNumber, o.TagNumber)
	str(&p.Service, o.Service)
	str(&p.EquipmentType, o.EquipmentType)
	str(&p.Manufacturer, o.Manufacturer)
	str(&p.Model, o.Model)
	str(&p.FlowUnit, o.FlowUnit)
	str(&p.Material, o.Material)
	num(&p.FlowRate, o.FlowRate)
	num(&p.Temperature, o.Temperature)
	num(&p.Pressure, o.Pressure)
	num(&p.Density, o.Density)
	num(&p.DesignPressure, o.DesignPressure)
	num(&p.DesignTemperature, o.DesignTemperature)
	num(&p.Efficiency, o.Efficiency)
	num(&p.PressureDrop, o.PressureDrop)
	num(&p.InletVelocity, o.InletVelocity)
	num(&p.Dimensions.InletHeightMM, o.Dimensions.InletHeightMM)
	num(&p.Dimensions.InletWidthMM, o.Dimensions.InletWidthMM)
	num(&p.Dimensions.CylinderDiameterMM, o.Dimensions.CylinderDiameterMM)
	if len(o.Nozzles) > 0 {
		p.Nozzles = append([]Nozzle(nil), o.Nozzles...)
	}
	return p
}

func Load(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("read parameters: %w", err)
	}
	var p Parameters
	if err := json.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("parse parameters %s: %w", path, err)
	}
	return p, nil
}

func Save(path string, p Parameters) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Summary renders the parameters the way they are printed after extraction.
func (p Parameters) Summary() string {
	var b strings.Builder
	text := func(label, v string) {
		if v == "" {
			v = "N/A"
		}
		fmt.Fprintf(&b, "%-20s %s\n", label+":", v)
	}
	num := func(label string, v *float64, unit string) {
		if v == nil {
			text(label, "")
			return
		}
		text(label, strings.TrimSpace(fmt.Sprintf("%g %s", *v, unit)))
	}

	b.WriteString("=== Equipment parameters ===\n")
	text("Tag", p.TagNumber)
	text("Service", p.Service)
	text("Manufacturer", p.Manufacturer)
	text("Model", p.Model)
	flowUnit := p.FlowUnit
	if flowUnit == "" {
		flowUnit = "kg/hr"
	}
	num("Flow rate", p.FlowRate, flowUnit)
	num("Temperature", p.Temperature, "°C")
	num("Pressure", p.Pressure, "kg/cm²g")
	num("Density", p.Density, "kg/m³")
	num("Design pressure", p.DesignPressure, "kg/cm²g")
	num("Design temperature", p.DesignTemperature, "°C")
	text("Material", p.Material)
	num("Efficiency", p.Efficiency, "%")
	num("Pressure drop", p.PressureDrop, "kg/cm²")
	num("Inlet velocity", p.InletVelocity, "m/s")
	num("Inlet height", p.Dimensions.InletHeightMM, "mm")
	num("Inlet width", p.Dimensions.InletWidthMM, "mm")
	fmt.Fprintf(&b, "%-20s %d\n", "Nozzles:", len(p.Nozzles))
	for _, n := range p.Nozzles {
		fmt.Fprintf(&b, "  - %s %s %s %s %s\n", n.Tag, n.Service, n.Size, n.Rating, n.Facing)
	}
	return b.String()
}
