package batch

import (
	"encoding/json"
	"net/http"

	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/equipment"
)

type Handler struct {
	Defaults equipment.Defaults
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input, h.Defaults)
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
