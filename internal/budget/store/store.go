package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectLineColumns = `
	id, code, label, exercice, dotation_initiale, dotation_modifiee, disponible_calcule,
	source_financement, os_id, direction_id, activite_id, sous_activite_id, nbe_id,
	legacy_import, import_run_id, created_at, updated_at
`

func scanLine(s scanner) (*budget.Line, error) {
	var line budget.Line

	var srcFin sql.NullString

	if err := s.Scan(
		&line.ID, &line.Code, &line.Label, &line.Exercice,
		&line.DotationInitiale, &line.DotationModifiee, &line.DisponibleCalcule,
		&srcFin, &line.OSID, &line.DirectionID, &line.ActiviteID,
		&line.SousActiviteID, &line.NBEID,
		&line.LegacyImport, &line.ImportRunID,
		&line.CreatedAt, &line.UpdatedAt,
	); err != nil {
		return nil, err
	}

	line.SourceFinancement = srcFin.String

	return &line, nil
}

func (s *Store) Insert(ctx context.Context, line *budget.Line) error {
	query := `
		INSERT INTO budget_lines (
			code, label, exercice, dotation_initiale, dotation_modifiee, disponible_calcule,
			source_financement, os_id, direction_id, activite_id, sous_activite_id, nbe_id,
			level, is_active, code_budgetaire, legacy_import, import_run_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'line', TRUE, $1, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		line.Code,
		line.Label,
		line.Exercice,
		line.DotationInitiale,
		line.DotationModifiee,
		line.DisponibleCalcule,
		line.SourceFinancement,
		line.OSID,
		line.DirectionID,
		line.ActiviteID,
		line.SousActiviteID,
		line.NBEID,
		line.LegacyImport,
		line.ImportRunID,
	).Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting budget line: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, line *budget.Line) error {
	query := `
		UPDATE budget_lines
		SET label = $1, dotation_initiale = $2, dotation_modifiee = $3,
		    source_financement = $4, os_id = $5, direction_id = $6, activite_id = $7,
		    sous_activite_id = $8, nbe_id = $9, legacy_import = $10, updated_at = NOW()
		WHERE id = $11
	`

	_, err := s.db.ExecContext(ctx, query,
		line.Label,
		line.DotationInitiale,
		line.DotationModifiee,
		line.SourceFinancement,
		line.OSID,
		line.DirectionID,
		line.ActiviteID,
		line.SousActiviteID,
		line.NBEID,
		line.LegacyImport,
		line.ID,
	)
	if err != nil {
		return fmt.Errorf("updating budget line: %w", err)
	}

	return nil
}

func (s *Store) UpdateAmounts(ctx context.Context, id uuid.UUID, dotation float64) error {
	query := `
		UPDATE budget_lines
		SET dotation_initiale = $1, dotation_modifiee = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, dotation, id)
	if err != nil {
		return fmt.Errorf("updating budget line amounts: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*budget.Line, error) {
	query := `SELECT ` + selectLineColumns + ` FROM budget_lines WHERE id = $1`

	line, err := scanLine(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget line: %w", err)
	}

	return line, nil
}

func (s *Store) ListByExercice(ctx context.Context, exercice int) ([]*budget.Line, error) {
	query := `SELECT ` + selectLineColumns + `
		FROM budget_lines
		WHERE exercice = $1
		ORDER BY code ASC`

	rows, err := s.db.QueryContext(ctx, query, exercice)
	if err != nil {
		return nil, fmt.Errorf("listing budget lines: %w", err)
	}
	defer rows.Close()

	var lines []*budget.Line

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget line: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}
