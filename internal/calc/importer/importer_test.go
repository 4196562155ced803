package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Plant3D/internal/calc/batch"
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport(t *testing.T) {
	buf := workbook(t,
		[]any{"Flow Rate", "Parallel", "Blockage %", "Blockage_pct", "Comment"},
		[]any{671, 1, "", 0, "base"},
		[]any{805.2, 1, "", 0, "plus 20"},
		[]any{"lots", 1, "", 0, "bad number"},
		[]any{"2x", 1, "", 0, "trailing junk"},
		[]any{671, 1, "", 100, "fully blocked"},
		[]any{"", "", "", "", ""},
		[]any{671, 2, "", 0, "split"},
	)

	res, err := Import(buf, equipment.Parameters{}, equipment.DefaultFallbacks())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 2, res.Rows[0].Index)
	assert.InDelta(t, 0.51408, res.Rows[1].PressureDrop, 1e-9)
	assert.Equal(t, 8, res.Rows[2].Index)
	assert.Equal(t, 2, res.Rows[2].Scenario.Parallel)

	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 4, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Reason, "flow_rate")
	assert.Equal(t, 5, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Reason, `"2x"`)
	assert.Equal(t, 6, res.Skipped[2].Row)
	assert.Contains(t, res.Skipped[2].Reason, "blockage_pct")
}

func TestToFloatRejectsJunk(t *testing.T) {
	for _, s := range []string{"2x", "1.5.2", "NaN", "Inf", "abc"} {
		_, err := toFloat(s)
		assert.Error(t, err, s)
	}
	v, err := toFloat(" 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestImportRejectsTooManyRows(t *testing.T) {
	rows := [][]any{{"Flow Rate"}}
	for i := 0; i <= batch.MaxScenarios; i++ {
		rows = append(rows, []any{600})
	}
	_, err := Import(workbook(t, rows...), equipment.Parameters{}, equipment.DefaultFallbacks())
	assert.True(t, calcerr.IsValidation(err))
}

func TestImportRejectsUnknownLayout(t *testing.T) {
	_, err := Import(workbook(t, []any{"a", "b"}, []any{1, 2}), equipment.Parameters{}, equipment.DefaultFallbacks())
	assert.True(t, calcerr.IsValidation(err))

	_, err = Import(bytes.NewBufferString("not a zip"), equipment.Parameters{}, equipment.DefaultFallbacks())
	assert.True(t, calcerr.IsValidation(err))
}

func TestHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "scenarios.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(workbook(t, []any{"flow_rate"}, []any{600}).Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("params", `{"flow_rate":500}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tools/import/xlsx", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{Defaults: equipment.DefaultFallbacks()}).Scenarios(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 1, res.Count)
	assert.InDelta(t, 1.2, res.Rows[0].Scenario.FlowRate/res.Baseline.FlowRate, 1e-9)
}
