package margin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
)

func TestDatasheetMargins(t *testing.T) {
	res, err := Calculate(Input{DesignPressure: 24.6, Pressure: 10.2, DesignTemperature: 140, Temperature: 82.2})
	require.NoError(t, err)
	assert.InDelta(t, 141.176, res.PressureMarginPct, 1e-3)
	assert.Equal(t, "sufficient", res.PressureStatus)
	assert.InDelta(t, 70.316, res.TemperatureMarginPct, 1e-3)
	assert.Equal(t, "sufficient", res.TemperatureStatus)
	assert.Equal(t, "CS", res.Material)
	assert.True(t, res.MaterialSuitable)
}

func TestBands(t *testing.T) {
	res, err := Calculate(Input{DesignPressure: 16, Pressure: 10, DesignTemperature: 120, Temperature: 100, Material: "SS304"})
	require.NoError(t, err)
	assert.Equal(t, "adequate", res.PressureStatus)
	assert.Equal(t, "insufficient", res.TemperatureStatus)
	assert.False(t, res.MaterialSuitable)
}

func TestHotCarbonSteelNeedsReview(t *testing.T) {
	res, err := Calculate(Input{DesignPressure: 30, Pressure: 10, DesignTemperature: 650, Temperature: 450})
	require.NoError(t, err)
	assert.False(t, res.MaterialSuitable)
}

func TestZeroOperatingPressure(t *testing.T) {
	_, err := Calculate(Input{DesignPressure: 24.6, DesignTemperature: 140, Temperature: 82.2})
	assert.True(t, calcerr.IsDomain(err))
}
