// Package datasheet serves the authenticated review workflow: upload a
// datasheet, inspect and correct the extracted parameters, then evaluate
// scenarios, export the body mesh and print the review.
package datasheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"Plant3D/internal/auth"
	"Plant3D/internal/calc/calcerr"
	"Plant3D/internal/calc/geometry"
	"Plant3D/internal/calc/report"
	"Plant3D/internal/equipment"
	"Plant3D/internal/extractor"
	"Plant3D/internal/modeler"
	"Plant3D/internal/observability"
	"Plant3D/internal/repo"
	"Plant3D/internal/review"
)

const MaxUploadSize = 10 << 20

var allowedExt = map[string]string{
	".pdf":  "pdf",
	".xlsx": "xlsx",
	".xlsm": "xlsx",
	".txt":  "text",
}

type Handler struct {
	Repo      repo.ReviewRepository
	Extractor *extractor.Extractor
	Exporter  *modeler.Exporter
	Defaults  equipment.Defaults
	Variant   string
	UploadDir string
	MaxUpload int64
	Clock     clockwork.Clock
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

func (h *Handler) maxUpload() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return MaxUploadSize
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Upload stores the file from form field "datasheet", extracts it and
// creates a review owned by the caller.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("datasheet")
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	source, ok := allowedExt[ext]
	if !ok {
		http.Error(w, "Unsupported file type "+ext, http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.Logger.Error("create upload dir", zap.Error(err))
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}
	fullPath := filepath.Join(h.UploadDir, uuid.NewString()+ext)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		h.Logger.Error("create upload file", zap.Error(err))
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}
	_, err = io.Copy(f, file)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		h.Logger.Error("store upload", zap.Error(err))
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}

	extracted, err := h.Extractor.ExtractFile(r.Context(), fullPath)
	if err != nil {
		h.Logger.Warn("datasheet unreadable", zap.String("file", header.Filename), zap.Error(err))
		http.Error(w, "Datasheet could not be read", http.StatusUnprocessableEntity)
		return
	}
	h.Metrics.DatasheetsProcessed.WithLabelValues(source).Inc()

	rev := review.New(userID, header.Filename, extracted.Params, h.Defaults, h.Clock)
	for _, wn := range rev.Warnings {
		h.Metrics.ExtractionWarnings.WithLabelValues(wn.Kind).Inc()
	}
	if err := h.Repo.CreateReview(r.Context(), rev); err != nil {
		h.Logger.Error("create review", zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	h.Logger.Info("review created",
		zap.String("review", rev.ID.String()),
		zap.Int("user_id", userID),
		zap.String("source", source),
		zap.Int("warnings", len(rev.Warnings)),
	)
	writeJSON(w, http.StatusCreated, rev)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListReviews(r.Context(), userID)
	if err != nil {
		h.Logger.Error("list reviews", zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []review.Review{}
	}
	writeJSON(w, http.StatusOK, list)
}

// load fetches the review named in the path. Reviews of other users are
// reported as missing.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (review.Review, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return review.Review{}, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid review id", http.StatusBadRequest)
		return review.Review{}, false
	}
	rev, err := h.Repo.GetReview(r.Context(), id)
	if errors.Is(err, review.ErrNotFound) || (err == nil && rev.OwnerID != userID) {
		http.Error(w, "Review not found", http.StatusNotFound)
		return review.Review{}, false
	}
	if err != nil {
		h.Logger.Error("get review", zap.String("review", id.String()), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return review.Review{}, false
	}
	return rev, true
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

// Update merges the posted parameters into the review's overrides.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.load(w, r)
	if !ok {
		return
	}
	var o equipment.Parameters
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	rev = rev.Override(o, h.Defaults, h.Clock)
	if err := h.Repo.UpdateReview(r.Context(), rev); err != nil {
		h.Logger.Error("update review", zap.String("review", rev.ID.String()), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *Handler) scenario(w http.ResponseWriter, r *http.Request) (review.Scenario, bool) {
	var sc review.Scenario
	if r.ContentLength == 0 {
		return sc, true
	}
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return sc, false
	}
	return sc, true
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.load(w, r)
	if !ok {
		return
	}
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	if sc.Variant == "" {
		sc.Variant = h.Variant
	}
	out, err := review.Evaluate(rev.Baseline, sc)
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}
	h.Metrics.ScenariosEvaluated.WithLabelValues(out.Risk.Band).Inc()
	writeJSON(w, http.StatusOK, out)
}

// Model streams the body mesh. ?format=stl (default) or obj.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.load(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = modeler.FormatSTL
	}
	if format != modeler.FormatSTL && format != modeler.FormatOBJ {
		http.Error(w, "Unsupported format "+format, http.StatusBadRequest)
		return
	}
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = h.Variant
	}
	b := rev.Baseline
	g, err := geometry.Calculate(geometry.Input{
		CylinderDiameterMM: b.CylinderDiameterMM,
		InletWidthMM:       b.InletWidthMM,
		InletHeightMM:      b.InletHeightMM,
		Variant:            variant,
		Nozzles:            b.Nozzles,
	})
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}
	m := modeler.Build(g)
	name := h.Exporter.BaseName(b.TagNumber)

	if format == modeler.FormatSTL {
		w.Header().Set("Content-Type", "model/stl")
	} else {
		w.Header().Set("Content-Type", "model/obj")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	if format == modeler.FormatSTL {
		err = modeler.WriteSTL(w, name, m)
	} else {
		err = modeler.WriteOBJ(w, name, m)
	}
	if err != nil {
		h.Logger.Warn("stream model", zap.String("review", rev.ID.String()), zap.Error(err))
		return
	}
	h.Metrics.ModelsExported.WithLabelValues(format).Inc()
}

// Report renders the review with the posted scenario as PDF.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.load(w, r)
	if !ok {
		return
	}
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	if sc.Variant == "" {
		sc.Variant = h.Variant
	}
	out, err := review.Evaluate(rev.Baseline, sc)
	if err != nil {
		calcerr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "review_"+rev.ID.String()+".pdf"))
	err = report.Write(w, report.Document{
		Project:  rev.Source,
		Author:   auth.UserLogin(r.Context()),
		Date:     h.Clock.Now(),
		Params:   rev.Effective(),
		Baseline: rev.Baseline,
		Warnings: rev.Warnings,
		Outcome:  out,
	})
	if err != nil {
		h.Logger.Error("render report", zap.String("review", rev.ID.String()), zap.Error(err))
	}
}
