package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
)

func TestCompoundTwoHalfStages(t *testing.T) {
	assert.Equal(t, 0.75, Compound(0.5, 2))
}

func TestTwoStages(t *testing.T) {
	res, err := Calculate(Input{Stages: 2, BasePressureDrop: 0.357, StageEfficiency: 0.992})
	require.NoError(t, err)
	assert.InDelta(t, 0.714, res.TotalPressureDrop, 1e-12)
	assert.InDelta(t, 0.999936, res.TotalEfficiency, 1e-9)
	assert.False(t, res.ExcessivePressureDrop)

	require.Len(t, res.Particles, 4)
	// the 5 micron cut separates half per stage
	assert.InDelta(t, 75.0, res.Particles[1].EfficiencyPct, 1e-9)
	for i := 1; i < len(res.Particles); i++ {
		assert.Greater(t, res.Particles[i].EfficiencyPct, res.Particles[i-1].EfficiencyPct)
	}
}

func TestManyStagesExceedLimit(t *testing.T) {
	res, err := Calculate(Input{Stages: 5, BasePressureDrop: 0.357, StageEfficiency: 0.9})
	require.NoError(t, err)
	assert.True(t, res.ExcessivePressureDrop)
}

func TestRejectsPercentEfficiency(t *testing.T) {
	_, err := Calculate(Input{Stages: 2, StageEfficiency: 99.2})
	assert.True(t, calcerr.IsValidation(err))
}
