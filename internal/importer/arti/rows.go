package arti

import "github.com/google/uuid"

// Decision classifies what the import will do with a row.
type Decision string

const (
	DecisionNew    Decision = "NEW"
	DecisionUpdate Decision = "UPDATE"
	DecisionSkip   Decision = "SKIP"
	DecisionError  Decision = "ERROR"
)

// RawRow keeps the extracted (cleaned, padded) values of one spreadsheet
// row plus the full original cell map for audit and error reporting.
// Empty strings mean the component could not be extracted.
type RawRow struct {
	RowIndex      int
	SheetName     string
	Imputation    string
	OS            string
	Action        string
	Activite      string
	SousActivite  string
	Direction     string
	NatureDepense string
	NBE           string
	Montant       string
	Libelle       string
	Cells         map[string]string
}

// NormalizedRow is only built for rows with zero validation errors.
type NormalizedRow struct {
	Code              string
	Label             string
	DotationInitiale  float64
	OSCode            string
	OSID              *uuid.UUID
	ActionCode        string
	ActiviteCode      string
	ActiviteID        *uuid.UUID
	SousActiviteCode  string
	SousActiviteID    *uuid.UUID
	DirectionCode     string
	DirectionID       *uuid.UUID
	NatureDepense     string
	NBECode           string
	NBEID             *uuid.UUID
	SourceFinancement string
	Decision          Decision
	ExistingID        *uuid.UUID
}

// ParsedRow is the unit of work threaded through the pipeline: built once
// during normalization, never mutated afterward, consumed exactly once by
// the executor.
type ParsedRow struct {
	RowIndex   int
	SheetName  string
	Raw        RawRow
	Normalized *NormalizedRow
	IsValid    bool
	Errors     []string
	Warnings   []string
	Decision   Decision
}

// Stats aggregates one normalization pass.
type Stats struct {
	Total   int
	OK      int
	Warning int
	Error   int
	New     int
	Update  int
}
