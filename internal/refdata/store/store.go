package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arti-ci/sygfp/internal/refdata"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot reads every reference table once, plus the existing budget lines
// of the exercice. The result is treated as frozen for the whole import run.
func (s *Store) Snapshot(ctx context.Context, exercice int) (*refdata.Snapshot, error) {
	snap := &refdata.Snapshot{}

	var err error

	if snap.ObjectifsStrategiques, err = s.readEntries(ctx,
		`SELECT id, code, libelle FROM objectifs_strategiques ORDER BY code`); err != nil {
		return nil, fmt.Errorf("reading objectifs stratégiques: %w", err)
	}

	if snap.Directions, err = s.readEntries(ctx,
		`SELECT id, code, label FROM directions WHERE est_active ORDER BY code`); err != nil {
		return nil, fmt.Errorf("reading directions: %w", err)
	}

	if snap.Activites, err = s.readEntries(ctx,
		`SELECT id, code, libelle FROM activites ORDER BY code`); err != nil {
		return nil, fmt.Errorf("reading activités: %w", err)
	}

	if snap.SousActivites, err = s.readEntries(ctx,
		`SELECT id, code, libelle FROM sous_activites ORDER BY code`); err != nil {
		return nil, fmt.Errorf("reading sous-activités: %w", err)
	}

	if snap.NomenclatureNBE, err = s.readEntries(ctx,
		`SELECT id, code, libelle FROM nomenclature_nbe ORDER BY code`); err != nil {
		return nil, fmt.Errorf("reading nomenclature NBE: %w", err)
	}

	if snap.ExistingLines, err = s.readExistingLines(ctx, exercice); err != nil {
		return nil, fmt.Errorf("reading existing budget lines: %w", err)
	}

	return snap, nil
}

func (s *Store) readEntries(ctx context.Context, query string) ([]refdata.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []refdata.Entry

	for rows.Next() {
		var e refdata.Entry

		var label sql.NullString

		if err := rows.Scan(&e.ID, &e.Code, &label); err != nil {
			return nil, err
		}

		e.Label = label.String

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) readExistingLines(ctx context.Context, exercice int) ([]refdata.ExistingLine, error) {
	query := `SELECT id, code, exercice FROM budget_lines WHERE exercice = $1`

	rows, err := s.db.QueryContext(ctx, query, exercice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []refdata.ExistingLine

	for rows.Next() {
		var l refdata.ExistingLine

		if err := rows.Scan(&l.ID, &l.Code, &l.Exercice); err != nil {
			return nil, err
		}

		lines = append(lines, l)
	}

	return lines, rows.Err()
}
