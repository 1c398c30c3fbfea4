package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arti-ci/sygfp/internal/budget"
	"github.com/arti-ci/sygfp/internal/importer/arti"
	"github.com/arti-ci/sygfp/internal/importjob"
)

// Mode controls what happens when an imported row targets a line that
// already exists for the exercice.
type Mode string

const (
	// ModeSafe never touches existing lines.
	ModeSafe Mode = "safe"
	// ModeSafeUpdateAmount patches the dotation of existing lines and
	// leaves every other attribute alone.
	ModeSafeUpdateAmount Mode = "safe_update_amount"
	// ModeReplace overwrites existing lines with the imported values.
	ModeReplace Mode = "replace"
)

// ParseMode validates an operator-supplied mode string. The empty string
// defaults to safe.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSafe:
		return ModeSafe, nil
	case ModeSafeUpdateAmount:
		return ModeSafeUpdateAmount, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("mode d'import inconnu: %q", s)
	}
}

// Options tunes one execution.
type Options struct {
	Mode Mode
}

// Result totals one execution. ErrorDetails carries one operator-facing
// message per failed row.
type Result struct {
	Inserted     int      `json:"inserted"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details,omitempty"`
}

// Executor persists parsed rows. Each row is written independently: a
// failing row is recorded and the batch continues, matching the
// operator's expectation that one bad line never voids a whole import.
type Executor struct {
	lines  budget.Repository
	jobs   importjob.Repository
	logger *slog.Logger
}

func NewExecutor(lines budget.Repository, jobs importjob.Repository, logger *slog.Logger) *Executor {
	return &Executor{lines: lines, jobs: jobs, logger: logger}
}

// Execute writes every row of the batch and settles the job into its
// terminal state. The caller creates the job beforehand; Execute owns it
// from there.
func (e *Executor) Execute(ctx context.Context, rows []arti.ParsedRow, exercice int, job *importjob.Job, opts Options) (*Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeSafe
	}

	result := &Result{}

	for _, row := range rows {
		e.executeRow(ctx, row, exercice, job, mode, result)
	}

	job.TotalRows = len(rows)
	job.NewRows = result.Inserted
	job.UpdatedRows = result.Updated
	job.SkippedRows = result.Skipped
	job.ErrorRows = result.Errors
	job.Summary = fmt.Sprintf("%d lignes traitées: %d créées, %d mises à jour, %d ignorées, %d en erreur",
		job.TotalRows, job.NewRows, job.UpdatedRows, job.SkippedRows, job.ErrorRows)

	job.Status = importjob.StatusCompleted
	if result.Errors > 0 {
		job.Status = importjob.StatusCompletedWithErrors
	}

	if err := e.jobs.FinishJob(ctx, job); err != nil {
		return result, fmt.Errorf("finishing import job: %w", err)
	}

	return result, nil
}

func (e *Executor) executeRow(ctx context.Context, row arti.ParsedRow, exercice int, job *importjob.Job, mode Mode, result *Result) {
	// Invalid rows were already reported during normalization. They keep
	// their audit entry but do not count against the execution.
	if !row.IsValid || row.Normalized == nil {
		e.logRow(ctx, job, row, importjob.RowError, row.Errors)

		return
	}

	n := row.Normalized

	if n.Decision == arti.DecisionUpdate && n.ExistingID == nil {
		msg := fmt.Sprintf("Ligne %d: ligne existante introuvable pour la mise à jour", row.RowIndex)
		result.Errors++
		result.ErrorDetails = append(result.ErrorDetails, msg)
		e.logRow(ctx, job, row, importjob.RowError, []string{msg})

		return
	}

	var err error

	var status importjob.RowStatus

	switch {
	case n.Decision == arti.DecisionUpdate && mode == ModeSafe:
		result.Skipped++
		e.logRow(ctx, job, row, importjob.RowSkippedExisting, nil)

		return
	case n.Decision == arti.DecisionUpdate && mode == ModeSafeUpdateAmount:
		err = e.lines.UpdateAmounts(ctx, *n.ExistingID, n.DotationInitiale)
		status = importjob.RowUpdatedAmount
	case n.Decision == arti.DecisionUpdate && mode == ModeReplace:
		line := e.buildLine(n, exercice, job)
		line.ID = *n.ExistingID
		err = e.lines.Update(ctx, line)
		status = importjob.RowUpdated
	default:
		err = e.lines.Insert(ctx, e.buildLine(n, exercice, job))
		status = importjob.RowInserted
	}

	if err != nil {
		result.Errors++
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("Ligne %d: %v", row.RowIndex, err))
		e.logRow(ctx, job, row, importjob.RowError, []string{err.Error()})

		return
	}

	switch status {
	case importjob.RowInserted:
		result.Inserted++
	default:
		result.Updated++
	}

	e.logRow(ctx, job, row, status, nil)
}

func (e *Executor) buildLine(n *arti.NormalizedRow, exercice int, job *importjob.Job) *budget.Line {
	return &budget.Line{
		Code:              n.Code,
		Label:             n.Label,
		Exercice:          exercice,
		DotationInitiale:  n.DotationInitiale,
		DotationModifiee:  n.DotationInitiale,
		DisponibleCalcule: n.DotationInitiale,
		SourceFinancement: n.SourceFinancement,
		OSID:              n.OSID,
		DirectionID:       n.DirectionID,
		ActiviteID:        n.ActiviteID,
		SousActiviteID:    n.SousActiviteID,
		NBEID:             n.NBEID,
		LegacyImport:      true,
		ImportRunID:       &job.ID,
	}
}

// logRow writes the audit entry. Audit failures are logged and swallowed:
// the row outcome already counted, and losing one audit line must not
// fail an otherwise successful import.
func (e *Executor) logRow(ctx context.Context, job *importjob.Job, row arti.ParsedRow, status importjob.RowStatus, errs []string) {
	log := &importjob.RowLog{
		JobID:     job.ID,
		RowIndex:  row.RowIndex,
		SheetName: row.SheetName,
		Raw:       row.Raw.Cells,
		Status:    status,
		Errors:    errs,
	}

	if n := row.Normalized; n != nil {
		log.Normalized = map[string]any{
			"code":               n.Code,
			"label":              n.Label,
			"dotation_initiale":  n.DotationInitiale,
			"source_financement": n.SourceFinancement,
			"decision":           string(n.Decision),
		}
	}

	if err := e.jobs.AppendRowLog(ctx, log); err != nil {
		e.logger.WarnContext(ctx, "row audit log write failed",
			slog.String("job_id", job.ID.String()),
			slog.Int("row", row.RowIndex),
			slog.String("error", err.Error()))
	}
}
