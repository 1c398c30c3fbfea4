// Package importbudget exposes the legacy ARTI budget import over HTTP:
// upload and preview, execution under an explicit write mode, and the
// per-job audit trail.
package importbudget

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/importer"
	"github.com/arti-ci/sygfp/internal/importer/arti"
	"github.com/arti-ci/sygfp/internal/importjob"
)

type Handler struct {
	parseSvc *importer.Service
	executor *importer.Executor
	jobs     importjob.Repository

	maxFileSize int64
}

func NewHandler(parseSvc *importer.Service, executor *importer.Executor, jobs importjob.Repository, maxFileSizeMB int) *Handler {
	return &Handler{
		parseSvc:    parseSvc,
		executor:    executor,
		jobs:        jobs,
		maxFileSize: int64(maxFileSizeMB) << 20,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.preview)
	r.Post("/execute", h.execute)
	r.Get("/jobs", h.listJobs)
	r.Get("/jobs/{id}", h.getJob)
	r.Get("/jobs/{id}/report", h.downloadReport)
}

// preview parses the uploaded file and returns the classified rows for
// operator review. A job is opened immediately so that a file broken
// beyond parsing still leaves an audit record.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	exercice, err := strconv.Atoi(r.FormValue("exercice"))
	if err != nil || exercice < 2000 || exercice > 2100 {
		http.Error(w, "exercice field is required (ex: 2025)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		http.Error(w, fmt.Sprintf("le fichier dépasse la taille maximale (%d Mo)", h.maxFileSize>>20), http.StatusRequestEntityTooLarge)
		return
	}

	job := &importjob.Job{
		ID:       uuid.New(),
		Exercice: exercice,
		Filename: header.Filename,
		FileSize: header.Size,
		Status:   importjob.StatusRunning,
	}

	if err := h.jobs.CreateJob(r.Context(), job); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := h.parseSvc.Parse(r.Context(), file, header.Filename, exercice)
	if err != nil {
		if failErr := h.jobs.MarkJobFailed(r.Context(), job.ID, err.Error()); failErr != nil {
			slog.Error("failed to mark job failed", "job_id", job.ID, "error", failErr)
		}

		http.Error(w, err.Error(), http.StatusUnprocessableEntity)

		return
	}

	writeJSON(w, http.StatusOK, toPreviewResponse(job.ID, result))
}

// execute persists the rows the operator confirmed. The client sends back
// the previewed rows, possibly after deselecting some.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := importer.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Rows) == 0 {
		http.Error(w, "aucune ligne à importer", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, importjob.ErrNotFound) {
			http.Error(w, "import job not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	if job.Status != importjob.StatusRunning {
		http.Error(w, "import job already settled", http.StatusConflict)
		return
	}

	rows := make([]arti.ParsedRow, 0, len(req.Rows))
	for _, dto := range req.Rows {
		rows = append(rows, fromRowDTO(dto))
	}

	result, err := h.executor.Execute(r.Context(), rows, req.Exercice, job, importer.Options{Mode: mode})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		JobID:  job.ID,
		Status: job.Status,
		Result: result,
	})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	exercice := 0

	if v := r.URL.Query().Get("exercice"); v != "" {
		var err error

		exercice, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid exercice", http.StatusBadRequest)
			return
		}
	}

	jobs, err := h.jobs.ListJobs(r.Context(), exercice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, importjob.ErrNotFound) {
			http.Error(w, "import job not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	logs, err := h.jobs.ListRowLogs(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toJobDetailResponse(job, logs))
}

// downloadReport streams the per-row audit trail as a semicolon CSV, the
// format the finance operators open directly in Excel.
func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, importjob.ErrNotFound) {
			http.Error(w, "import job not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	logs, err := h.jobs.ListRowLogs(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("import_%d_%s.csv", job.Exercice, job.CreatedAt.Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	_ = cw.Write([]string{"Ligne", "Onglet", "Statut", "Code", "Libellé", "Montant", "Erreurs"})

	for _, log := range logs {
		code, label, montant := "", "", ""

		if n := log.Normalized; n != nil {
			code, _ = n["code"].(string)
			label, _ = n["label"].(string)

			if f, ok := n["dotation_initiale"].(float64); ok {
				montant = strconv.FormatFloat(f, 'f', -1, 64)
			}
		}

		_ = cw.Write([]string{
			strconv.Itoa(log.RowIndex),
			log.SheetName,
			string(log.Status),
			code,
			label,
			montant,
			strings.Join(log.Errors, " | "),
		})
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		slog.Error("failed to write report", "job_id", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
