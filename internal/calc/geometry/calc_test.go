package geometry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
)

func TestCalculateStandard(t *testing.T) {
	res, err := Calculate(Input{CylinderDiameterMM: 279, InletWidthMM: 140, InletHeightMM: 279})
	require.NoError(t, err)

	want := Result{
		Variant:              VariantStandard,
		CylinderDiameterMM:   279,
		CylinderHeightMM:     418.5,
		ConeHeightMM:         697.5,
		ConeOutletDiameterMM: 104.625,
		GasOutletDiameterMM:  139.5,
		GasOutletHeightMM:    139.5,
		SolidsOutletDiameter: 104.625,
		InletWidthMM:         140,
		InletHeightMM:        279,
		InletLengthMM:        139.5,
		WallThicknessMM:      10,
		TotalHeightMM:        1116,
		Nozzles:              []Nozzle{},
	}
	opts := []cmp.Option{cmpopts.EquateApprox(0, 1e-9), cmpopts.IgnoreFields(Result{}, "Notes")}
	if diff := cmp.Diff(want, res, opts...); diff != "" {
		t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculatePrecise(t *testing.T) {
	res, err := Calculate(Input{CylinderDiameterMM: 400, InletWidthMM: 80, InletHeightMM: 200, Variant: VariantPrecise})
	require.NoError(t, err)
	assert.InDelta(t, 250.0, res.GasOutletHeightMM, 1e-9)
	assert.InDelta(t, 200.0, res.GasOutletExtensionMM, 1e-9)
	assert.InDelta(t, 160.0, res.InletLengthMM, 1e-9)
	assert.InDelta(t, 12.7, res.WallThicknessMM, 1e-9)
}

func TestRatioLawsHoldForPositiveDiameters(t *testing.T) {
	for _, d := range []float64{0.001, 1, 50, 279, 1200, 1e6} {
		res, err := Calculate(Input{CylinderDiameterMM: d, InletWidthMM: 1, InletHeightMM: 1})
		require.NoError(t, err)
		assert.Less(t, res.ConeOutletDiameterMM, d)
		assert.Greater(t, res.CylinderHeightMM, d)
		assert.Equal(t, res.ConeOutletDiameterMM, res.SolidsOutletDiameter)
	}
}

func TestCalculateRejectsBadInput(t *testing.T) {
	cases := map[string]Input{
		"zero diameter":     {CylinderDiameterMM: 0, InletWidthMM: 10, InletHeightMM: 10},
		"negative diameter": {CylinderDiameterMM: -5, InletWidthMM: 10, InletHeightMM: 10},
		"zero inlet width":  {CylinderDiameterMM: 100, InletHeightMM: 10},
		"zero inlet height": {CylinderDiameterMM: 100, InletWidthMM: 10},
		"unknown variant":   {CylinderDiameterMM: 100, InletWidthMM: 10, InletHeightMM: 10, Variant: "rough"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(in)
			require.Error(t, err)
			assert.True(t, calcerr.IsValidation(err))
		})
	}
}

func TestNozzleConversion(t *testing.T) {
	res, err := Calculate(Input{
		CylinderDiameterMM: 279, InletWidthMM: 140, InletHeightMM: 279,
		Nozzles: []equipment.Nozzle{
			{Tag: "N1", Service: "Gas Inlet", Size: `8"`, Rating: "150#"},
			{Tag: "N2", Service: "Gas Outlet", Size: "6"},
			{Tag: "N3", Service: "Solids Outlet", Size: "?"},
			{Tag: "N4", Service: "Vent", Size: `2"`},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Nozzles, 4)
	assert.InDelta(t, 203.2, res.Nozzles[0].DiameterMM, 1e-9)
	assert.Equal(t, "inlet", res.Nozzles[0].Type)
	assert.Equal(t, "gas_outlet", res.Nozzles[1].Type)
	assert.Equal(t, 50.0, res.Nozzles[2].DiameterMM)
	assert.Equal(t, "solids_outlet", res.Nozzles[2].Type)
	assert.Equal(t, "other", res.Nozzles[3].Type)
}

func TestDiameterFromModelSize(t *testing.T) {
	d, err := DiameterFromModelSize("Size 11")
	require.NoError(t, err)
	assert.InDelta(t, 279.4, d, 1e-9)

	_, err = DiameterFromModelSize("XQ")
	assert.True(t, calcerr.IsValidation(err))
}

func TestHandlerCalc(t *testing.T) {
	body, _ := json.Marshal(Input{CylinderDiameterMM: 279, InletWidthMM: 140, InletHeightMM: 279})
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/tools/geometry/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.InDelta(t, 1116.0, res.TotalHeightMM, 1e-9)

	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"cylinder_diameter_mm":-1}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
