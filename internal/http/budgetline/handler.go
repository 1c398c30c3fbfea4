package budgetline

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type lineResponse struct {
	ID                uuid.UUID  `json:"id"`
	Code              string     `json:"code"`
	Label             string     `json:"label"`
	Exercice          int        `json:"exercice"`
	DotationInitiale  float64    `json:"dotation_initiale"`
	DotationModifiee  float64    `json:"dotation_modifiee"`
	DisponibleCalcule float64    `json:"disponible_calcule"`
	SourceFinancement string     `json:"source_financement"`
	OSID              *uuid.UUID `json:"os_id,omitempty"`
	DirectionID       *uuid.UUID `json:"direction_id,omitempty"`
	ActiviteID        *uuid.UUID `json:"activite_id,omitempty"`
	SousActiviteID    *uuid.UUID `json:"sous_activite_id,omitempty"`
	NBEID             *uuid.UUID `json:"nbe_id,omitempty"`
	LegacyImport      bool       `json:"legacy_import"`
	ImportRunID       *uuid.UUID `json:"import_run_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	exercice, err := strconv.Atoi(r.URL.Query().Get("exercice"))
	if err != nil {
		http.Error(w, "exercice query parameter is required", http.StatusBadRequest)
		return
	}

	lines, err := h.svc.ListByExercice(r.Context(), exercice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]lineResponse, 0, len(lines))
	for _, line := range lines {
		resp = append(resp, toResponse(line))
	}

	writeJSON(w, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}

	line, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget line not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, toResponse(line))
}

func toResponse(line *budget.Line) lineResponse {
	return lineResponse{
		ID:                line.ID,
		Code:              line.Code,
		Label:             line.Label,
		Exercice:          line.Exercice,
		DotationInitiale:  line.DotationInitiale,
		DotationModifiee:  line.DotationModifiee,
		DisponibleCalcule: line.DisponibleCalcule,
		SourceFinancement: line.SourceFinancement,
		OSID:              line.OSID,
		DirectionID:       line.DirectionID,
		ActiviteID:        line.ActiviteID,
		SousActiviteID:    line.SousActiviteID,
		NBEID:             line.NBEID,
		LegacyImport:      line.LegacyImport,
		ImportRunID:       line.ImportRunID,
		CreatedAt:         line.CreatedAt,
		UpdatedAt:         line.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
