// Package report renders a cyclone engineering review as PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

type Document struct {
	Title    string
	Project  string
	Author   string
	Date     time.Time
	Params   equipment.Parameters
	Baseline equipment.Baseline
	Warnings []equipment.Warning
	Outcome  review.Outcome
	Notes    string
}

const (
	labelW = 70.0
	lineH  = 6.0
)

func na(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Write renders doc to w.
func Write(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = "Cyclone Engineering Review"
	}
	o := doc.Outcome
	b := doc.Baseline

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	// Core fonts are cp1252; free text may carry UTF-8 such as degree signs.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, lineH, tr(fmt.Sprintf("Project: %s", na(doc.Project))))
	pdf.Ln(lineH)
	pdf.Cell(0, lineH, tr(fmt.Sprintf("Author: %s", na(doc.Author))))
	pdf.Ln(lineH)
	pdf.Cell(0, lineH, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02")))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(label, format string, args ...any) {
		pdf.CellFormat(labelW, lineH, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineH, tr(fmt.Sprintf(format, args...)), "B", 1, "L", false, 0, "")
	}

	section("Equipment")
	row("Tag number", "%s", na(doc.Params.TagNumber))
	row("Service", "%s", na(doc.Params.Service))
	row("Manufacturer", "%s", na(doc.Params.Manufacturer))
	row("Model", "%s", na(doc.Params.Model))
	row("Material", "%s", b.Material)
	pdf.Ln(4)

	section("Operating baseline")
	row("Flow rate", "%.1f kg/hr", b.FlowRate)
	row("Operating pressure / temperature", "%.2f kg/cm2g / %.1f C", b.Pressure, b.Temperature)
	row("Design pressure / temperature", "%.2f kg/cm2g / %.1f C", b.DesignPressure, b.DesignTemperature)
	row("Efficiency", "%.2f %%", b.Efficiency)
	row("Pressure drop", "%.3f kg/cm2", b.PressureDrop)
	row("Inlet velocity", "%.1f m/s", b.InletVelocity)
	pdf.Ln(4)

	g := o.Geometry
	section("Derived geometry (" + g.Variant + ")")
	row("Cylinder diameter x height", "%.1f x %.1f mm", g.CylinderDiameterMM, g.CylinderHeightMM)
	row("Cone height / outlet", "%.1f / %.1f mm", g.ConeHeightMM, g.ConeOutletDiameterMM)
	row("Gas outlet diameter / height", "%.1f / %.1f mm", g.GasOutletDiameterMM, g.GasOutletHeightMM)
	row("Inlet W x H x L", "%.1f x %.1f x %.1f mm", g.InletWidthMM, g.InletHeightMM, g.InletLengthMM)
	row("Total height", "%.1f mm", g.TotalHeightMM)
	pdf.Ln(4)

	section("Scenario")
	s := o.Scenario
	row("Flow / parallel / series", "%.1f kg/hr / %d / %d", s.FlowRate, s.Parallel, s.Series)
	row("Blockage / operating hours", "%.0f %% / %.0f h", s.BlockagePct, s.OperatingHours)
	row("Inlet velocity", "%.2f m/s", o.Blockage.InletVelocity)
	row("Pressure drop (all stages)", "%.3f kg/cm2", o.Blockage.PressureDrop*float64(o.Series.Stages))
	row("Cut size d50 / d90", "%.2f / %.2f um", o.Separation.D50Micron, o.Separation.D90Micron)
	row("Predicted efficiency", "%.2f %%", o.Erosion.PredictedEfficiency)
	row("Erosion", "%.3f mm/yr, %s", o.Erosion.RateMMPerYear, o.Erosion.Status)
	row("Pressure margin", "%.1f %% (%s)", o.Margin.PressureMarginPct, o.Margin.PressureStatus)
	row("Temperature margin", "%.1f %% (%s)", o.Margin.TemperatureMarginPct, o.Margin.TemperatureStatus)
	pdf.Ln(4)

	section("Risk")
	for _, sc := range o.Risk.Scores {
		row(sc.Factor, "%.3g -> %d", sc.Value, sc.Score)
	}
	pdf.SetFont("Helvetica", "B", 11)
	row("Risk index", "%.1f (%s)", o.Risk.Average, o.Risk.Band)

	if len(doc.Warnings) > 0 {
		pdf.Ln(4)
		section("Data warnings")
		for _, wn := range doc.Warnings {
			pdf.MultiCell(0, 5, tr("- "+wn.String()), "", "L", false)
		}
	}
	if doc.Notes != "" {
		pdf.Ln(4)
		section("Notes")
		pdf.MultiCell(0, lineH, tr(doc.Notes), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
