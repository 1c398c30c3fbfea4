package importbudget

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arti-ci/sygfp/internal/budget"
	"github.com/arti-ci/sygfp/internal/importer"
	"github.com/arti-ci/sygfp/internal/importjob"
	"github.com/arti-ci/sygfp/internal/refdata"
)

type memLineRepo struct {
	inserted []*budget.Line
}

func (r *memLineRepo) Insert(_ context.Context, line *budget.Line) error {
	line.ID = uuid.New()
	r.inserted = append(r.inserted, line)

	return nil
}

func (r *memLineRepo) Update(_ context.Context, _ *budget.Line) error { return nil }

func (r *memLineRepo) UpdateAmounts(_ context.Context, _ uuid.UUID, _ float64) error { return nil }

func (r *memLineRepo) Get(_ context.Context, _ uuid.UUID) (*budget.Line, error) {
	return nil, budget.ErrNotFound
}

func (r *memLineRepo) ListByExercice(_ context.Context, _ int) ([]*budget.Line, error) {
	return nil, nil
}

type memJobRepo struct {
	jobs    map[uuid.UUID]*importjob.Job
	rowLogs []*importjob.RowLog
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[uuid.UUID]*importjob.Job)}
}

func (r *memJobRepo) CreateJob(_ context.Context, job *importjob.Job) error {
	r.jobs[job.ID] = job

	return nil
}

func (r *memJobRepo) FinishJob(_ context.Context, job *importjob.Job) error {
	r.jobs[job.ID] = job

	return nil
}

func (r *memJobRepo) MarkJobFailed(_ context.Context, id uuid.UUID, reason string) error {
	if job, ok := r.jobs[id]; ok {
		job.Status = importjob.StatusFailed
		job.Summary = reason
	}

	return nil
}

func (r *memJobRepo) AppendRowLog(_ context.Context, log *importjob.RowLog) error {
	r.rowLogs = append(r.rowLogs, log)

	return nil
}

func (r *memJobRepo) GetJob(_ context.Context, id uuid.UUID) (*importjob.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, importjob.ErrNotFound
	}

	return job, nil
}

func (r *memJobRepo) ListJobs(_ context.Context, _ int) ([]*importjob.Job, error) {
	jobs := make([]*importjob.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (r *memJobRepo) ListRowLogs(_ context.Context, jobID uuid.UUID) ([]*importjob.RowLog, error) {
	var logs []*importjob.RowLog

	for _, log := range r.rowLogs {
		if log.JobID == jobID {
			logs = append(logs, log)
		}
	}

	return logs, nil
}

type stubRefReader struct{}

func (stubRefReader) Snapshot(_ context.Context, _ int) (*refdata.Snapshot, error) {
	return &refdata.Snapshot{}, nil
}

func newTestRouter(lineRepo *memLineRepo, jobRepo *memJobRepo) http.Handler {
	parseSvc := importer.NewService(stubRefReader{})
	executor := importer.NewExecutor(lineRepo, jobRepo, slog.Default())
	handler := NewHandler(parseSvc, executor, jobRepo, 20)

	r := chi.NewRouter()
	r.Route("/import", handler.Routes)

	return r
}

func uploadCSV(t *testing.T, content, filename, exercice string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	require.NoError(t, w.WriteField("exercice", exercice))

	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

const validCSV = "OS;Action;ACTIVITE;SOUS ACTIVITE;DIRECTION;NATURE DEPENSE;NATURE ECO;MONTANT;LIB_PROJET\n" +
	"01;02;003;01;04;4;671700;2 500 000;Entretien routier\n"

func TestPreviewAndExecute(t *testing.T) {
	lineRepo := &memLineRepo{}
	jobRepo := newMemJobRepo()
	router := newTestRouter(lineRepo, jobRepo)

	body, contentType := uploadCSV(t, validCSV, "budget.csv", "2025")

	req := httptest.NewRequest(http.MethodPost, "/import/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview previewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))

	assert.Equal(t, "CSV", preview.SheetUsed)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, "010200301044671700", preview.Rows[0].Normalized.Code)
	assert.Equal(t, 1, preview.Stats.New)

	execBody, err := json.Marshal(executeRequest{
		JobID:    preview.JobID,
		Exercice: 2025,
		Mode:     "safe",
		Rows:     preview.Rows,
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/import/execute", bytes.NewReader(execBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp executeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, importjob.StatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.Result.Inserted)
	require.Len(t, lineRepo.inserted, 1)
	assert.Equal(t, "010200301044671700", lineRepo.inserted[0].Code)
}

func TestPreviewUnparsableFileFailsJob(t *testing.T) {
	jobRepo := newMemJobRepo()
	router := newTestRouter(&memLineRepo{}, jobRepo)

	body, contentType := uploadCSV(t, "not a workbook", "budget.xlsx", "2025")

	req := httptest.NewRequest(http.MethodPost, "/import/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.Len(t, jobRepo.jobs, 1)
	for _, job := range jobRepo.jobs {
		assert.Equal(t, importjob.StatusFailed, job.Status)
	}
}

func TestPreviewValidation(t *testing.T) {
	router := newTestRouter(&memLineRepo{}, newMemJobRepo())

	t.Run("missing exercice", func(t *testing.T) {
		body, contentType := uploadCSV(t, validCSV, "budget.csv", "")

		req := httptest.NewRequest(http.MethodPost, "/import/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		body, contentType := uploadCSV(t, validCSV, "budget.pdf", "2025")

		req := httptest.NewRequest(http.MethodPost, "/import/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestExecuteRejectsSettledJob(t *testing.T) {
	jobRepo := newMemJobRepo()
	router := newTestRouter(&memLineRepo{}, jobRepo)

	job := &importjob.Job{ID: uuid.New(), Status: importjob.StatusCompleted}
	require.NoError(t, jobRepo.CreateJob(context.Background(), job))

	execBody, err := json.Marshal(executeRequest{
		JobID:    job.ID,
		Exercice: 2025,
		Mode:     "safe",
		Rows:     []rowDTO{{RowIndex: 2, IsValid: true, Decision: "NEW"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/import/execute", bytes.NewReader(execBody))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDownloadReport(t *testing.T) {
	lineRepo := &memLineRepo{}
	jobRepo := newMemJobRepo()
	router := newTestRouter(lineRepo, jobRepo)

	body, contentType := uploadCSV(t, validCSV, "budget.csv", "2025")

	req := httptest.NewRequest(http.MethodPost, "/import/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview previewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))

	execBody, err := json.Marshal(executeRequest{
		JobID: preview.JobID, Exercice: 2025, Mode: "safe", Rows: preview.Rows,
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/import/execute", bytes.NewReader(execBody))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/import/jobs/"+preview.JobID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var detail jobDetailResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, importjob.StatusCompleted, detail.Status)
	require.Len(t, detail.Rows, 1)
	assert.Equal(t, importjob.RowInserted, detail.Rows[0].Status)

	req = httptest.NewRequest(http.MethodGet, "/import/jobs/"+preview.JobID.String()+"/report", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Ligne;Onglet;Statut")
	assert.Contains(t, lines[1], "inserted")
	assert.Contains(t, lines[1], "010200301044671700")
}
