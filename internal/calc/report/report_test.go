package report

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

func TestWrite(t *testing.T) {
	p := equipment.Parameters{TagNumber: "CY-101", Service: "Catalyst Fines"}
	base, warns := review.Resolve(p, equipment.DefaultFallbacks())
	out, err := review.Evaluate(base, review.Scenario{BlockagePct: 20})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Document{
		Project:  "FCC revamp",
		Date:     time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Params:   p,
		Baseline: base,
		Warnings: warns,
		Outcome:  out,
	}))

	body := buf.String()
	assert.True(t, strings.HasPrefix(body, "%PDF-"))
	assert.Contains(t, body, "CY-101")
	assert.Contains(t, body, "2024-05-02")
	assert.Contains(t, body, "Cyclone Engineering Review")
}

func TestWriteTranslatesUTF8(t *testing.T) {
	base, _ := review.Resolve(equipment.Parameters{}, equipment.DefaultFallbacks())
	out, err := review.Evaluate(base, review.Scenario{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Document{
		Baseline: base,
		Outcome:  out,
		Warnings: []equipment.Warning{{Kind: equipment.KindValidation, Field: "temperature", Message: "temperature 450 °C above carbon steel limit"}},
		Notes:    "Inlet duct at 420 °C",
	}))

	body := buf.String()
	assert.Contains(t, body, "420 \xb0C")
	assert.Contains(t, body, "450 \xb0C")
	assert.NotContains(t, body, "\xc2\xb0")
}

func TestHandler(t *testing.T) {
	h := &Handler{
		Defaults: equipment.DefaultFallbacks(),
		Clock:    clockwork.NewFakeClockAt(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)),
	}

	rec := httptest.NewRecorder()
	body := `{"project":"Unit 12","params":{"tag_number":"CY-7"},"scenario":{"parallel":2}}`
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/tools/report/pdf", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "2024-01-15")

	rec = httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"scenario":{"blockage_pct":120}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
