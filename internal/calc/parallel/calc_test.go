package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
)

func TestTwoUnits(t *testing.T) {
	res, err := Calculate(Input{Units: 2, BaseFlowRate: 671, BaseVelocity: 20, BasePressureDrop: 0.357, BaseD50Micron: 5.0})
	require.NoError(t, err)
	assert.Equal(t, 335.5, res.FlowPerUnit)
	assert.Equal(t, 10.0, res.VelocityPerUnit)
	assert.InDelta(t, 0.08925, res.PressureDrop, 1e-12)
	assert.InDelta(t, 7.0711, res.D50Micron, 1e-4)
	assert.True(t, res.VelocityTooLow)
	assert.Less(t, res.Efficiency10um, 100.0)
	assert.Greater(t, res.Efficiency10um, 50.0)
}

func TestSingleUnitIsBase(t *testing.T) {
	res, err := Calculate(Input{BaseFlowRate: 671, BaseVelocity: 20, BasePressureDrop: 0.357})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Units)
	assert.Equal(t, 5.0, res.D50Micron)
	assert.Equal(t, 0.357, res.PressureDrop)
	assert.False(t, res.VelocityTooLow)
}

func TestMoreUnitsCoarserCut(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 4; n++ {
		res, err := Calculate(Input{Units: n, BaseFlowRate: 671, BaseVelocity: 20, BasePressureDrop: 0.357})
		require.NoError(t, err)
		assert.Greater(t, res.D50Micron, prev)
		prev = res.D50Micron
	}
}

func TestRejectsNegativeUnits(t *testing.T) {
	_, err := Calculate(Input{Units: -2})
	assert.True(t, calcerr.IsValidation(err))
}
