// Package extractor pulls equipment parameters out of datasheet text by
// looking for labelled fields and the numbers that follow them.
package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"Plant3D/internal/equipment"
)

const mmPerInch = 25.4

type pickRule int

const (
	// pickNormal takes the middle of a min/normal/max triple.
	pickNormal pickRule = iota
	pickFirst
)

type numericField struct {
	name    string
	labels  []string
	exclude []string
	unit    string
	pick    pickRule
	set     func(*equipment.Parameters, float64)
}

var numericFields = []numericField{
	{
		name:    "temperature",
		labels:  []string{"operating temperature", "temperature"},
		exclude: []string{"design"},
		set:     func(p *equipment.Parameters, v float64) { p.Temperature = equipment.Float(v) },
	},
	{
		name:    "pressure",
		labels:  []string{"operating pressure", "pressure"},
		exclude: []string{"design", "drop"},
		set:     func(p *equipment.Parameters, v float64) { p.Pressure = equipment.Float(v) },
	},
	{
		name:   "density",
		labels: []string{"density"},
		set:    func(p *equipment.Parameters, v float64) { p.Density = equipment.Float(v) },
	},
	{
		name:   "flow_rate",
		labels: []string{"solids", "flow rate", "flowrate"},
		unit:   "kg/h",
		set: func(p *equipment.Parameters, v float64) {
			p.FlowRate = equipment.Float(v)
			p.FlowUnit = "kg/hr"
		},
	},
	{
		name:   "design_pressure",
		labels: []string{"design pressure"},
		pick:   pickFirst,
		set:    func(p *equipment.Parameters, v float64) { p.DesignPressure = equipment.Float(v) },
	},
	{
		name:   "design_temperature",
		labels: []string{"design temperature"},
		pick:   pickFirst,
		set:    func(p *equipment.Parameters, v float64) { p.DesignTemperature = equipment.Float(v) },
	},
	{
		name:   "efficiency",
		labels: []string{"efficiency"},
		pick:   pickFirst,
		set:    func(p *equipment.Parameters, v float64) { p.Efficiency = equipment.Float(v) },
	},
	{
		name:   "pressure_drop",
		labels: []string{"pressure drop"},
		pick:   pickFirst,
		set:    func(p *equipment.Parameters, v float64) { p.PressureDrop = equipment.Float(v) },
	},
	{
		name:   "inlet_velocity",
		labels: []string{"inlet velocity"},
		unit:   "m/s",
		pick:   pickFirst,
		set:    func(p *equipment.Parameters, v float64) { p.InletVelocity = equipment.Float(v) },
	},
}

var (
	tagRe          = regexp.MustCompile(`(?i)\b(?:item|tag)\s*no\.?\s*[:\-]?\s*([0-9A-Z][0-9A-Z\-]*[0-9A-Z])`)
	tagShapeRe     = regexp.MustCompile(`\b\d{1,3}-[A-Z]{1,3}-\d{2,5}[A-Z]?\b`)
	serviceUnitRe  = regexp.MustCompile(`(?i)service\s+of\s+unit\s*[:\-]?\s*(.+)`)
	serviceRe      = regexp.MustCompile(`(?i)^\s*service\s*[:\-]\s*(.+)`)
	lineSuffixRe   = regexp.MustCompile(`(?i)\s*\b(?:line\s*numbers?|tag|item)\b.*$`)
	manufacturerRe = regexp.MustCompile(`(?i)(?:manufacturer|vendor)\s*:\s*([^(\n]+)`)
	sizeRe         = regexp.MustCompile(`(?i)\bsize\s*:\s*(\d+(?:\.\d+)?)`)
	modelRe        = regexp.MustCompile(`(?i)\bmodel\s*:\s*([^\s(]+)`)
	materialRe     = regexp.MustCompile(`(?i)\bmaterial(?:\s+of\s+construction)?\s*[:\-]\s*([A-Za-z0-9 \-]+)`)
	nozzleRe       = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)"\s+(\d+#)\s+([A-Za-z]+)\s*$`)
	inletMMRe      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm\s*tall\s*by\s*(\d+(?:\.\d+)?)\s*mm\s*wide`)
	inletInchRe    = regexp.MustCompile(`(?i)rectangular\s+inlet.*?(\d+(?:\.\d+)?)\s*inch(?:es)?\s*x\s*(\d+(?:\.\d+)?)\s*inch`)
)

type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

type Result struct {
	Params   equipment.Parameters `json:"params"`
	Warnings []equipment.Warning  `json:"warnings"`
	Found    []string             `json:"found"`
}

// ExtractFile reads the datasheet at path and extracts its parameters.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	text, err := ReadText(ctx, path)
	if err != nil {
		return Result{}, err
	}
	e.logger.Debug("datasheet text loaded", zap.String("path", path), zap.Int("bytes", len(text)))
	return e.Extract(text), nil
}

// Extract parses datasheet text. Missing fields stay nil and are reported
// as warnings rather than errors.
func (e *Extractor) Extract(text string) Result {
	lines := splitLines(text)
	p := equipment.Parameters{EquipmentType: "cyclone"}
	var found []string

	for _, f := range numericFields {
		if v, ok := findNumber(lines, f); ok {
			f.set(&p, v)
			found = append(found, f.name)
			e.logger.Debug("field extracted", zap.String("field", f.name), zap.Float64("value", v))
		}
	}

	p.TagNumber = findTag(text)
	p.Service = findService(lines)
	if m := manufacturerRe.FindStringSubmatch(text); m != nil {
		p.Manufacturer = strings.TrimSpace(m[1])
	}
	if m := sizeRe.FindStringSubmatch(text); m != nil {
		p.Model = m[1]
	} else if m := modelRe.FindStringSubmatch(text); m != nil {
		p.Model = m[1]
	}
	if m := materialRe.FindStringSubmatch(text); m != nil {
		p.Material = normalizeMaterial(m[1])
	}
	p.Nozzles = findNozzles(lines)
	p.Dimensions = findInlet(text)

	warnings := equipment.Validate(p)
	equipment.LogWarnings(e.logger, p.TagNumber, warnings)
	e.logger.Info("datasheet extracted",
		zap.String("tag", p.TagNumber),
		zap.Int("fields", len(found)),
		zap.Int("nozzles", len(p.Nozzles)),
		zap.Int("warnings", len(warnings)),
	)
	return Result{Params: p, Warnings: warnings, Found: found}
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// findNumber looks for the first line carrying one of the field labels and
// reads the numbers after it. A label line without numbers borrows them from
// the following line, which is how tabular datasheets wrap.
func findNumber(lines []string, f numericField) (float64, bool) {
	for i, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, f.exclude) {
			continue
		}
		for _, label := range f.labels {
			idx := strings.Index(lower, label)
			if idx < 0 {
				continue
			}
			rest := line[idx+len(label):]
			nums := numbers(rest)
			if len(nums) == 0 && i+1 < len(lines) {
				rest += " " + lines[i+1]
				nums = numbers(lines[i+1])
			}
			if f.unit != "" && !strings.Contains(strings.ToLower(rest), f.unit) {
				break
			}
			if len(nums) == 0 {
				break
			}
			return pick(nums, f.pick), true
		}
	}
	return 0, false
}

func pick(nums []float64, rule pickRule) float64 {
	if rule == pickNormal && len(nums) >= 3 {
		return nums[1]
	}
	return nums[0]
}

// numbers returns the numeric tokens of s. Unit tokens such as kg/cm2(g)
// or m3/h never parse as numbers.
func numbers(s string) []float64 {
	var out []float64
	for _, field := range strings.Fields(s) {
		for _, tok := range strings.Split(field, "/") {
			tok = strings.Trim(tok, ":;,()%@=~")
			if tok == "" || !strings.ContainsAny(tok[:1], "0123456789+-.") {
				continue
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err == nil {
				out = append(out, v)
			}
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func findTag(text string) string {
	if m := tagRe.FindStringSubmatch(text); m != nil && strings.ContainsAny(m[1], "0123456789") {
		return m[1]
	}
	return tagShapeRe.FindString(text)
}

func findService(lines []string) string {
	for _, re := range []*regexp.Regexp{serviceUnitRe, serviceRe} {
		for _, line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			s := lineSuffixRe.ReplaceAllString(m[1], "")
			s = strings.Join(strings.Fields(s), " ")
			if len(s) > 2 && len(s) < 100 {
				return s
			}
		}
	}
	return ""
}

func normalizeMaterial(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "carbon steel", "cs", "c.s":
		return "CS"
	}
	return strings.ToUpper(s)
}

// findNozzles reads nozzle schedule rows: optional mark, service, size in
// inches, rating and facing.
func findNozzles(lines []string) []equipment.Nozzle {
	var out []equipment.Nozzle
	for _, line := range lines {
		m := nozzleRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		words := strings.Fields(m[1])
		var tag string
		if strings.ContainsAny(words[0], "0123456789") {
			tag, words = words[0], words[1:]
		}
		if len(words) >= 2 && strings.EqualFold(words[0], words[1]) {
			words = words[1:]
		}
		if len(words) == 0 {
			continue
		}
		out = append(out, equipment.Nozzle{
			Tag:     tag,
			Service: strings.Join(words, " "),
			Size:    m[2] + `"`,
			Rating:  m[3],
			Facing:  strings.ToUpper(m[4]),
		})
	}
	return out
}

func findInlet(text string) equipment.Dimensions {
	var d equipment.Dimensions
	if m := inletMMRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		w, _ := strconv.ParseFloat(m[2], 64)
		d.InletHeightMM, d.InletWidthMM = equipment.Float(h), equipment.Float(w)
		return d
	}
	if m := inletInchRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		w, _ := strconv.ParseFloat(m[2], 64)
		d.InletHeightMM, d.InletWidthMM = equipment.Float(h*mmPerInch), equipment.Float(w*mmPerInch)
	}
	return d
}
