package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Plant3D/internal/calc/geometry"
	"Plant3D/internal/equipment"
	"Plant3D/internal/extractor"
	"Plant3D/internal/modeler"
	"Plant3D/internal/review"
	"Plant3D/internal/tools"
)

var (
	pdfPath   string
	outputDir string
	formats   []string
	variant   string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract a datasheet, derive the body and export the mesh",
	Long: `process reads one datasheet (PDF, XLSX or text), saves the extracted
parameters as JSON, derives the cyclone body and writes STL and OBJ meshes.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&pdfPath, "pdf", "", "Datasheet to process (required)")
	processCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: configured paths)")
	processCmd.Flags().StringSliceVar(&formats, "formats", modeler.DefaultFormats, "Mesh formats to write")
	processCmd.Flags().StringVar(&variant, "variant", "", "Geometry variant: standard or precise (default: config)")
	processCmd.MarkFlagRequired("pdf")
}

// ProcessReport is printed as JSON at the end of a run.
type ProcessReport struct {
	ParamsFile   string              `json:"params_file"`
	ModelFiles   []string            `json:"model_files"`
	Model        modeler.Info        `json:"model"`
	Warnings     []equipment.Warning `json:"warnings"`
	Capabilities tools.Capabilities  `json:"capabilities"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	extractedDir, modelsDir := cfg.Paths.Extracted, cfg.Paths.Models
	if outputDir != "" {
		extractedDir, modelsDir = outputDir, outputDir
	}
	if variant == "" {
		variant = cfg.Variant
	}

	res, err := extractor.New(logger).ExtractFile(cmd.Context(), pdfPath)
	if err != nil {
		return fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	p := res.Params

	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	paramsFile := filepath.Join(extractedDir, stem+"_parameters.json")
	if err := equipment.Save(paramsFile, p); err != nil {
		return err
	}
	logger.Info("parameters saved", zap.String("path", paramsFile))

	base, warns := review.Resolve(p, cfg.Defaults)
	equipment.LogWarnings(logger, p.TagNumber, warns)

	g, err := geometry.Calculate(geometry.Input{
		CylinderDiameterMM: base.CylinderDiameterMM,
		InletWidthMM:       base.InletWidthMM,
		InletHeightMM:      base.InletHeightMM,
		Variant:            variant,
		Nozzles:            base.Nozzles,
	})
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	mesh := modeler.Build(g)
	files, err := modeler.NewExporter(modelsDir, logger).Save(p.TagNumber, mesh, formats)
	if err != nil {
		return fmt.Errorf("export model: %w", err)
	}

	caps := tools.Detect(cfg.Programs)
	if !caps.CAD.Available && !caps.GameEngine.Available {
		logger.Info("no external viewer configured, mesh files only")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.Summary())
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ProcessReport{
		ParamsFile:   paramsFile,
		ModelFiles:   files,
		Model:        modeler.Describe(p.TagNumber, p.Service, g, mesh),
		Warnings:     warns,
		Capabilities: caps,
	}); err != nil {
		return err
	}
	if len(files) < len(formats) {
		return errors.New("some model formats could not be written, see log")
	}
	return nil
}
