package review

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/risk"
	"Plant3D/internal/equipment"
)

func baseline(t *testing.T) equipment.Baseline {
	t.Helper()
	b, _ := equipment.Resolve(equipment.Parameters{}, equipment.DefaultFallbacks())
	return b
}

func TestNewUsesModelSizeForDiameter(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	r := New(7, "datasheet.pdf", equipment.Parameters{Model: "Size 11"}, equipment.DefaultFallbacks(), clock)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, 7, r.OwnerID)
	assert.InDelta(t, 279.4, r.Baseline.CylinderDiameterMM, 1e-9)
	assert.Equal(t, clock.Now(), r.CreatedAt)

	var missing, invalid int
	for _, w := range r.Warnings {
		switch w.Kind {
		case equipment.KindMissingData:
			missing++
			assert.NotEqual(t, "cylinder_diameter_mm", w.Field)
		case equipment.KindValidation:
			invalid++
		}
	}
	assert.Equal(t, 11, missing)
	assert.Equal(t, 3, invalid)
}

func TestOverrideRebuildsBaseline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := New(1, "a.txt", equipment.Parameters{FlowRate: equipment.Float(500)}, equipment.DefaultFallbacks(), clock)
	clock.Advance(time.Hour)

	next := r.Override(equipment.Parameters{FlowRate: equipment.Float(800)}, equipment.DefaultFallbacks(), clock)

	assert.Equal(t, 800.0, next.Baseline.FlowRate)
	assert.Equal(t, 500.0, r.Baseline.FlowRate, "original review untouched")
	assert.Equal(t, 500.0, *next.Params.FlowRate)
	assert.Equal(t, r.ID, next.ID)
	assert.Equal(t, time.Hour, next.UpdatedAt.Sub(next.CreatedAt))
}

func TestEvaluateBaselineScenario(t *testing.T) {
	out, err := Evaluate(baseline(t), Scenario{})
	require.NoError(t, err)

	assert.Equal(t, 671.0, out.Scenario.FlowRate)
	assert.InDelta(t, 1.0, out.Flow.FlowRatio, 1e-12)
	assert.InDelta(t, 20.0, out.Blockage.InletVelocity, 1e-9)
	assert.InDelta(t, 0.357, out.Series.TotalPressureDrop, 1e-12)
	assert.InDelta(t, 5.0, out.Separation.D50Micron, 1e-12)
	assert.InDelta(t, 99.2, out.Erosion.PredictedEfficiency, 1e-12)
	assert.InDelta(t, 4*279.0, out.Geometry.TotalHeightMM, 1e-9)
	assert.InDelta(t, 90.0, out.Risk.Average, 1e-12)
	assert.Equal(t, risk.BandSafe, out.Risk.Band)
}

func TestEvaluateFlowIncrease(t *testing.T) {
	b := baseline(t)
	out, err := Evaluate(b, Scenario{FlowRate: b.FlowRate * 1.2})
	require.NoError(t, err)

	assert.InDelta(t, 0.51408, out.Flow.PressureDrop, 1e-9)
	assert.InDelta(t, 24.0, out.Flow.InletVelocity, 1e-9)
	assert.InDelta(t, 5/1.0954451150103321, out.Separation.D50Micron, 1e-9)
	assert.InDelta(t, 74.0, out.Risk.Average, 1e-12)
}

func TestEvaluateParallelAndBlockage(t *testing.T) {
	b := baseline(t)

	out, err := Evaluate(b, Scenario{Parallel: 2})
	require.NoError(t, err)
	assert.InDelta(t, 7.0710678, out.Parallel.D50Micron, 1e-6)
	assert.InDelta(t, 10.0, out.Blockage.InletVelocity, 1e-9)
	assert.True(t, out.Parallel.VelocityTooLow)

	out, err = Evaluate(b, Scenario{BlockagePct: 50})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, out.Blockage.InletVelocity, 1e-9)
	assert.InDelta(t, 0.357*4, out.Blockage.PressureDrop, 1e-9)
	assert.Equal(t, "severe", out.Blockage.ErosionLevel)
	assert.Equal(t, risk.BandCaution, out.Risk.Band)
}

func TestEvaluateSeriesStacksPressureDrop(t *testing.T) {
	out, err := Evaluate(baseline(t), Scenario{Series: 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.714, out.Series.TotalPressureDrop, 1e-9)
	assert.InDelta(t, 1-0.008*0.008, out.Series.TotalEfficiency, 1e-9)
}

func TestEvaluateErrors(t *testing.T) {
	b := baseline(t)

	_, err := Evaluate(b, Scenario{BlockagePct: 100})
	assert.True(t, calcerr.IsValidation(err))

	_, err = Evaluate(b, Scenario{OperatingHours: -1})
	assert.True(t, calcerr.IsValidation(err))

	_, err = Evaluate(b, Scenario{D50Factor: -2})
	assert.True(t, calcerr.IsValidation(err))

	b.FlowRate = 0
	_, err = Evaluate(b, Scenario{FlowRate: 100})
	assert.True(t, calcerr.IsDomain(err))
}

func TestEvaluateOutOfRangeEfficiencyIsNotFatal(t *testing.T) {
	b, warns := Resolve(equipment.Parameters{Efficiency: equipment.Float(100.5)}, equipment.DefaultFallbacks())
	var flagged bool
	for _, w := range warns {
		if w.Kind == equipment.KindValidation && w.Field == "efficiency" {
			flagged = true
		}
	}
	assert.True(t, flagged)

	out, err := Evaluate(b, Scenario{Series: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Series.TotalEfficiency)
	assert.Equal(t, 2, out.Series.Stages)
}
