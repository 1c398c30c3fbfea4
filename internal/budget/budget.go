package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("budget line not found")

// Line is one budget line, identified by (code, exercice). The import
// pipeline only inserts or patches lines, never deletes them.
type Line struct {
	ID                uuid.UUID
	Code              string
	Label             string
	Exercice          int
	DotationInitiale  float64
	DotationModifiee  float64
	DisponibleCalcule float64
	SourceFinancement string
	OSID              *uuid.UUID
	DirectionID       *uuid.UUID
	ActiviteID        *uuid.UUID
	SousActiviteID    *uuid.UUID
	NBEID             *uuid.UUID
	// LegacyImport marks lines created or touched by the ARTI legacy
	// spreadsheet import; ImportRunID links back to the import job.
	LegacyImport bool
	ImportRunID  *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
