package refdata

import (
	"context"

	"github.com/google/uuid"
)

// Entry is one row of a reference table (objectif stratégique, direction,
// activité, sous-activité or NBE nomenclature).
type Entry struct {
	ID    uuid.UUID
	Code  string
	Label string
}

// ExistingLine identifies a budget line already present for an exercice.
type ExistingLine struct {
	ID       uuid.UUID
	Code     string
	Exercice int
}

// Snapshot is an immutable read of the reference tables taken once per
// import run. Concurrent edits to the underlying tables during a run are
// not reconciled.
type Snapshot struct {
	ObjectifsStrategiques []Entry
	Directions            []Entry
	Activites             []Entry
	SousActivites         []Entry
	NomenclatureNBE       []Entry
	ExistingLines         []ExistingLine
}

type Reader interface {
	Snapshot(ctx context.Context, exercice int) (*Snapshot, error)
}

// ExistingByCode finds a budget line of the snapshot's exercice by exact
// imputation code.
func (s *Snapshot) ExistingByCode(code string) *ExistingLine {
	for i := range s.ExistingLines {
		if s.ExistingLines[i].Code == code {
			return &s.ExistingLines[i]
		}
	}

	return nil
}
