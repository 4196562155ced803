package importer

import (
	"encoding/json"
	"net/http"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
)

const MaxUploadSize = 10 << 20

type Handler struct {
	Defaults equipment.Defaults
}

// Scenarios takes a multipart form with the workbook in "file" and an
// optional "params" field holding the equipment record as JSON.
func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var params equipment.Parameters
	if raw := r.FormValue("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			http.Error(w, "Invalid params", http.StatusBadRequest)
			return
		}
	}

	res, err := Import(file, params, h.Defaults)
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
