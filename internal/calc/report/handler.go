package report

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jonboulle/clockwork"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

type Input struct {
	Project  string               `json:"project"`
	Author   string               `json:"author"`
	Title    string               `json:"title"`
	Notes    string               `json:"notes"`
	Params   equipment.Parameters `json:"params"`
	Scenario review.Scenario      `json:"scenario"`
}

type Handler struct {
	Defaults equipment.Defaults
	Clock    clockwork.Clock
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	base, warns := review.Resolve(input.Params, h.Defaults)
	out, err := review.Evaluate(base, input.Scenario)
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}

	var buf bytes.Buffer
	err = Write(&buf, Document{
		Title:    input.Title,
		Project:  input.Project,
		Author:   input.Author,
		Date:     h.Clock.Now(),
		Params:   input.Params,
		Baseline: base,
		Warnings: warns,
		Outcome:  out,
		Notes:    input.Notes,
	})
	if err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
