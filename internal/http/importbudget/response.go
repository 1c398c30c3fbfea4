package importbudget

import (
	"time"

	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/importer"
	"github.com/arti-ci/sygfp/internal/importer/arti"
	"github.com/arti-ci/sygfp/internal/importjob"
)

type normalizedDTO struct {
	Code              string     `json:"code"`
	Label             string     `json:"label"`
	DotationInitiale  float64    `json:"dotation_initiale"`
	OSCode            string     `json:"os_code"`
	OSID              *uuid.UUID `json:"os_id,omitempty"`
	ActionCode        string     `json:"action_code"`
	ActiviteCode      string     `json:"activite_code"`
	ActiviteID        *uuid.UUID `json:"activite_id,omitempty"`
	SousActiviteCode  string     `json:"sous_activite_code"`
	SousActiviteID    *uuid.UUID `json:"sous_activite_id,omitempty"`
	DirectionCode     string     `json:"direction_code"`
	DirectionID       *uuid.UUID `json:"direction_id,omitempty"`
	NatureDepense     string     `json:"nature_depense"`
	NBECode           string     `json:"nbe_code"`
	NBEID             *uuid.UUID `json:"nbe_id,omitempty"`
	SourceFinancement string     `json:"source_financement"`
	Decision          string     `json:"decision"`
	ExistingID        *uuid.UUID `json:"existing_id,omitempty"`
}

type rowDTO struct {
	RowIndex   int               `json:"row_index"`
	SheetName  string            `json:"sheet_name"`
	IsValid    bool              `json:"is_valid"`
	Errors     []string          `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Decision   string            `json:"decision"`
	Raw        map[string]string `json:"raw,omitempty"`
	Normalized *normalizedDTO    `json:"normalized,omitempty"`
}

type statsDTO struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	New     int `json:"new"`
	Update  int `json:"update"`
}

type previewResponse struct {
	JobID       uuid.UUID         `json:"job_id"`
	SheetUsed   string            `json:"sheet_used"`
	SheetReason string            `json:"sheet_reason"`
	AllSheets   []string          `json:"all_sheets"`
	Headers     []string          `json:"headers"`
	Mapping     map[string]string `json:"mapping"`
	Stats       statsDTO          `json:"stats"`
	Rows        []rowDTO          `json:"rows"`
}

type executeRequest struct {
	JobID    uuid.UUID `json:"job_id"`
	Exercice int       `json:"exercice"`
	Mode     string    `json:"mode"`
	Rows     []rowDTO  `json:"rows"`
}

type executeResponse struct {
	JobID  uuid.UUID        `json:"job_id"`
	Status importjob.Status `json:"status"`
	Result *importer.Result `json:"result"`
}

type jobResponse struct {
	ID          uuid.UUID        `json:"id"`
	Exercice    int              `json:"exercice"`
	Filename    string           `json:"filename"`
	FileSize    int64            `json:"file_size"`
	Status      importjob.Status `json:"status"`
	TotalRows   int              `json:"total_rows"`
	NewRows     int              `json:"new_rows"`
	UpdatedRows int              `json:"updated_rows"`
	SkippedRows int              `json:"skipped_rows"`
	ErrorRows   int              `json:"error_rows"`
	Summary     string           `json:"summary,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func toPreviewResponse(jobID uuid.UUID, result *importer.ParseResult) previewResponse {
	mapping := make(map[string]string, len(result.Mapping))
	for field, header := range result.Mapping {
		mapping[string(field)] = header
	}

	rows := make([]rowDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, toRowDTO(row))
	}

	return previewResponse{
		JobID:       jobID,
		SheetUsed:   result.SheetUsed,
		SheetReason: result.SheetReason,
		AllSheets:   result.AllSheets,
		Headers:     result.Headers,
		Mapping:     mapping,
		Stats:       toStatsDTO(result.Stats),
		Rows:        rows,
	}
}

func toStatsDTO(s arti.Stats) statsDTO {
	return statsDTO{
		Total:   s.Total,
		OK:      s.OK,
		Warning: s.Warning,
		Error:   s.Error,
		New:     s.New,
		Update:  s.Update,
	}
}

func toRowDTO(row arti.ParsedRow) rowDTO {
	dto := rowDTO{
		RowIndex:  row.RowIndex,
		SheetName: row.SheetName,
		IsValid:   row.IsValid,
		Errors:    row.Errors,
		Warnings:  row.Warnings,
		Decision:  string(row.Decision),
		Raw:       row.Raw.Cells,
	}

	if n := row.Normalized; n != nil {
		dto.Normalized = &normalizedDTO{
			Code:              n.Code,
			Label:             n.Label,
			DotationInitiale:  n.DotationInitiale,
			OSCode:            n.OSCode,
			OSID:              n.OSID,
			ActionCode:        n.ActionCode,
			ActiviteCode:      n.ActiviteCode,
			ActiviteID:        n.ActiviteID,
			SousActiviteCode:  n.SousActiviteCode,
			SousActiviteID:    n.SousActiviteID,
			DirectionCode:     n.DirectionCode,
			DirectionID:       n.DirectionID,
			NatureDepense:     n.NatureDepense,
			NBECode:           n.NBECode,
			NBEID:             n.NBEID,
			SourceFinancement: n.SourceFinancement,
			Decision:          string(n.Decision),
			ExistingID:        n.ExistingID,
		}
	}

	return dto
}

func fromRowDTO(dto rowDTO) arti.ParsedRow {
	row := arti.ParsedRow{
		RowIndex:  dto.RowIndex,
		SheetName: dto.SheetName,
		IsValid:   dto.IsValid,
		Errors:    dto.Errors,
		Warnings:  dto.Warnings,
		Decision:  arti.Decision(dto.Decision),
		Raw:       arti.RawRow{RowIndex: dto.RowIndex, SheetName: dto.SheetName, Cells: dto.Raw},
	}

	if n := dto.Normalized; n != nil {
		row.Normalized = &arti.NormalizedRow{
			Code:              n.Code,
			Label:             n.Label,
			DotationInitiale:  n.DotationInitiale,
			OSCode:            n.OSCode,
			OSID:              n.OSID,
			ActionCode:        n.ActionCode,
			ActiviteCode:      n.ActiviteCode,
			ActiviteID:        n.ActiviteID,
			SousActiviteCode:  n.SousActiviteCode,
			SousActiviteID:    n.SousActiviteID,
			DirectionCode:     n.DirectionCode,
			DirectionID:       n.DirectionID,
			NatureDepense:     n.NatureDepense,
			NBECode:           n.NBECode,
			NBEID:             n.NBEID,
			SourceFinancement: n.SourceFinancement,
			Decision:          arti.Decision(n.Decision),
			ExistingID:        n.ExistingID,
		}
	}

	return row
}

type rowLogResponse struct {
	RowIndex   int                 `json:"row_index"`
	SheetName  string              `json:"sheet_name"`
	Status     importjob.RowStatus `json:"status"`
	Raw        map[string]string   `json:"raw,omitempty"`
	Normalized map[string]any      `json:"normalized,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
}

type jobDetailResponse struct {
	jobResponse
	Rows []rowLogResponse `json:"rows"`
}

func toJobDetailResponse(job *importjob.Job, logs []*importjob.RowLog) jobDetailResponse {
	rows := make([]rowLogResponse, 0, len(logs))

	for _, log := range logs {
		rows = append(rows, rowLogResponse{
			RowIndex:   log.RowIndex,
			SheetName:  log.SheetName,
			Status:     log.Status,
			Raw:        log.Raw,
			Normalized: log.Normalized,
			Errors:     log.Errors,
		})
	}

	return jobDetailResponse{jobResponse: toJobResponse(job), Rows: rows}
}

func toJobResponse(job *importjob.Job) jobResponse {
	return jobResponse{
		ID:          job.ID,
		Exercice:    job.Exercice,
		Filename:    job.Filename,
		FileSize:    job.FileSize,
		Status:      job.Status,
		TotalRows:   job.TotalRows,
		NewRows:     job.NewRows,
		UpdatedRows: job.UpdatedRows,
		SkippedRows: job.SkippedRows,
		ErrorRows:   job.ErrorRows,
		Summary:     job.Summary,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}
