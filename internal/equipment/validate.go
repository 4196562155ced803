package equipment

import (
	"fmt"

	"go.uber.org/zap"
)

// Warning is a non-fatal finding about the parameters. Kind is "validation"
// for out-of-range values and "missing_data" when a fallback was used.
type Warning struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	KindValidation  = "validation"
	KindMissingData = "missing_data"
)

func (w Warning) String() string { return w.Field + ": " + w.Message }

// Validate checks ranges on the extracted values. Nothing here is fatal.
func Validate(p Parameters) []Warning {
	var out []Warning
	add := func(field, format string, args ...any) {
		out = append(out, Warning{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)})
	}
	if p.TagNumber == "" {
		add("tag_number", "tag number was not found")
	}
	if p.Service == "" {
		add("service", "service description was not found")
	}
	if p.FlowRate != nil && *p.FlowRate <= 0 {
		add("flow_rate", "flow rate must be positive, got %g", *p.FlowRate)
	}
	if p.Temperature != nil && (*p.Temperature < -50 || *p.Temperature > 500) {
		add("temperature", "temperature %g °C is outside -50..500", *p.Temperature)
	}
	if p.Pressure != nil && (*p.Pressure < 0 || *p.Pressure > 100) {
		add("pressure", "pressure %g is outside 0..100", *p.Pressure)
	}
	if p.Efficiency != nil && (*p.Efficiency < 0 || *p.Efficiency > 100) {
		add("efficiency", "efficiency %g%% is outside 0..100", *p.Efficiency)
	}
	if len(p.Nozzles) == 0 {
		add("nozzles", "no nozzle schedule was found")
	}
	return out
}

// LogWarnings writes each warning to the logger at warn level.
func LogWarnings(logger *zap.Logger, tag string, warnings []Warning) {
	for _, w := range warnings {
		logger.Warn(w.Message,
			zap.String("tag", tag),
			zap.String("field", w.Field),
			zap.String("kind", w.Kind),
		)
	}
}
