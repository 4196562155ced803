package modeler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hschendel/stl"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"Plant3D/internal/calc/geometry"
)

const (
	FormatSTL = "stl"
	FormatOBJ = "obj"
)

var DefaultFormats = []string{FormatSTL, FormatOBJ}

// WriteSTL writes m as a binary STL solid.
func WriteSTL(w io.Writer, name string, m Mesh) error {
	header := make([]byte, 80)
	copy(header, "binary STL "+name)
	solid := stl.Solid{Name: name, BinaryHeader: header, Triangles: make([]stl.Triangle, 0, len(m.Faces))}
	for _, f := range m.Faces {
		var t stl.Triangle
		for i, idx := range f {
			v := m.Vertices[idx]
			t.Vertices[i] = stl.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
		}
		solid.Triangles = append(solid.Triangles, t)
	}
	solid.RecalculateNormals()
	return solid.WriteAll(w)
}

// WriteOBJ writes m as a Wavefront OBJ with 1-based face indices.
func WriteOBJ(w io.Writer, name string, m Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %.4f %.4f %.4f\n", v[0], v[1], v[2])
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}

type Exporter struct {
	Dir    string
	Clock  clockwork.Clock
	Logger *zap.Logger
}

func NewExporter(dir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{Dir: dir, Clock: clockwork.NewRealClock(), Logger: logger}
}

// BaseName returns cyclone_<tag>_<YYYYMMDD_HHMMSS>.
func (e *Exporter) BaseName(tag string) string {
	if tag == "" {
		tag = "unknown"
	}
	tag = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(tag)
	return fmt.Sprintf("cyclone_%s_%s", tag, e.Clock.Now().Format("20060102_150405"))
}

// Save writes one file per format and returns the paths written. A format
// that fails is logged and skipped; the error is returned only when nothing
// could be written.
func (e *Exporter) Save(tag string, m Mesh, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	base := e.BaseName(tag)
	var saved []string
	var lastErr error
	for _, format := range formats {
		path := filepath.Join(e.Dir, base+"."+format)
		if err := e.writeFile(path, base, format, m); err != nil {
			e.Logger.Error("model export failed", zap.String("format", format), zap.Error(err))
			lastErr = err
			continue
		}
		e.Logger.Info("model saved", zap.String("format", format), zap.String("path", path))
		saved = append(saved, path)
	}
	if len(saved) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return saved, nil
}

func (e *Exporter) writeFile(path, name, format string, m Mesh) error {
	if format != FormatSTL && format != FormatOBJ {
		return fmt.Errorf("unsupported model format %q", format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if format == FormatSTL {
		err = WriteSTL(f, name, m)
	} else {
		err = WriteOBJ(f, name, m)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

type Info struct {
	TagNumber          string  `json:"tag_number"`
	Service            string  `json:"service"`
	CylinderDiameterMM float64 `json:"cylinder_diameter_mm"`
	TotalHeightMM      float64 `json:"total_height_mm"`
	InletSize          string  `json:"inlet_size"`
	NozzleCount        int     `json:"nozzle_count"`
	Vertices           int     `json:"vertices"`
	Faces              int     `json:"faces"`
	SurfaceAreaMM2     float64 `json:"surface_area_mm2"`
	Bounds             Bounds  `json:"bounds"`
}

func Describe(tag, service string, g geometry.Result, m Mesh) Info {
	if tag == "" {
		tag = "N/A"
	}
	if service == "" {
		service = "N/A"
	}
	return Info{
		TagNumber:          tag,
		Service:            service,
		CylinderDiameterMM: g.CylinderDiameterMM,
		TotalHeightMM:      g.TotalHeightMM,
		InletSize:          fmt.Sprintf("%g x %g mm", g.InletWidthMM, g.InletHeightMM),
		NozzleCount:        len(g.Nozzles),
		Vertices:           len(m.Vertices),
		Faces:              len(m.Faces),
		SurfaceAreaMM2:     m.SurfaceArea(),
		Bounds:             m.Bounds(),
	}
}
