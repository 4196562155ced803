package autodesign

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
)

func TestDiameter(t *testing.T) {
	// 0.2 m3/s at 20 m/s needs a 0.01 m2 inlet, 0.1 D^2 = 0.01.
	assert.InDelta(t, 0.31622776, Diameter(0.2, 20), 1e-8)
}

func TestCalculate(t *testing.T) {
	res, err := Calculate(Input{VolumeFlowM3H: 720})
	require.NoError(t, err)

	assert.InDelta(t, 316.22776, res.RequiredDiameterMM, 1e-5)
	assert.Equal(t, 320.0, res.Geometry.CylinderDiameterMM)
	assert.Equal(t, 160.0, res.Geometry.InletHeightMM)
	assert.Equal(t, 64.0, res.Geometry.InletWidthMM)
	assert.Less(t, res.InletVelocity, 20.0)
	assert.InDelta(t, 0.2/(0.16*0.064), res.InletVelocity, 1e-9)
}

func TestCalculateFromMassFlow(t *testing.T) {
	res, err := Calculate(Input{MassFlowKgH: 671, DensityKgM3: 2.5, TargetVelocity: 18, Variant: "precise"})
	require.NoError(t, err)
	assert.InDelta(t, 268.4, res.VolumeFlowM3H, 1e-9)
	assert.Equal(t, "precise", res.Geometry.Variant)
}

func TestCalculateErrors(t *testing.T) {
	_, err := Calculate(Input{})
	assert.True(t, calcerr.IsValidation(err))
	_, err = Calculate(Input{MassFlowKgH: 100})
	assert.True(t, calcerr.IsValidation(err))
	_, err = Calculate(Input{VolumeFlowM3H: 100, TargetVelocity: -1})
	assert.True(t, calcerr.IsValidation(err))
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"volume_flow_m3h":720}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cylinder_diameter_mm":320`)

	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"volume_flow_m3h":-5}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
