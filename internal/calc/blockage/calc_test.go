package blockage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
)

func TestHalfBlocked(t *testing.T) {
	res, err := Calculate(Input{BlockagePct: 50, BaseVelocity: 20, BasePressureDrop: 0.357})
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.AreaFactor)
	assert.Equal(t, 40.0, res.InletVelocity)
	assert.Equal(t, 0.357*4, res.PressureDrop)
	assert.Equal(t, "severe", res.ErosionLevel)
	assert.True(t, res.ExcessivePressureDrop)
}

func TestNoBlockage(t *testing.T) {
	res, err := Calculate(Input{BaseVelocity: 20, BasePressureDrop: 0.357})
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.InletVelocity)
	assert.Equal(t, "normal", res.ErosionLevel)
	assert.False(t, res.ExcessivePressureDrop)
}

func TestCautionBand(t *testing.T) {
	res, err := Calculate(Input{BlockagePct: 10, BaseVelocity: 20, BasePressureDrop: 0.357})
	require.NoError(t, err)
	assert.Equal(t, "caution", res.ErosionLevel)
}

func TestRejectsFullBlockage(t *testing.T) {
	for _, b := range []float64{-1, 100, 120} {
		_, err := Calculate(Input{BlockagePct: b, BaseVelocity: 20})
		assert.True(t, calcerr.IsValidation(err), "blockage %g", b)
	}
}
