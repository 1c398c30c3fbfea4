package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/arti-ci/sygfp/internal/importer/arti"
	"github.com/arti-ci/sygfp/internal/refdata"
	"github.com/arti-ci/sygfp/internal/xlsx"
)

// ParseResult is the preview of an import: classified rows plus enough
// context (sheet choice, detected mapping, headers) for an operator to
// review and correct before execution.
type ParseResult struct {
	Rows        []arti.ParsedRow
	SheetUsed   string
	SheetReason string
	AllSheets   []string
	Headers     []string
	Mapping     arti.Mapping
	Stats       arti.Stats
}

// Service parses ARTI exports against a frozen reference snapshot.
type Service struct {
	refs refdata.Reader
}

func NewService(refs refdata.Reader) *Service {
	return &Service{refs: refs}
}

// Parse dispatches on the filename extension.
func (s *Service) Parse(ctx context.Context, r io.Reader, filename string, exercice int) (*ParseResult, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	if format == FormatCSV {
		return s.ParseCSV(ctx, r, exercice)
	}

	return s.ParseWorkbook(ctx, r, exercice)
}

// ParseWorkbook runs the full pipeline over an Excel export: sheet
// selection, column mapping and row normalization.
func (s *Service) ParseWorkbook(ctx context.Context, r io.Reader, exercice int) (*ParseResult, error) {
	wb, err := xlsx.Open(r)
	if err != nil {
		return nil, fmt.Errorf("le fichier Excel est illisible ou corrompu: %w", err)
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("le classeur ne contient aucun onglet")
	}

	choice := arti.SelectSheet(sheets)

	grid, err := wb.Rows(choice.Sheet)
	if err != nil {
		return nil, err
	}

	result, err := s.parseGrid(ctx, choice.Sheet, grid, exercice)
	if err != nil {
		return nil, err
	}

	result.SheetReason = choice.Reason
	result.AllSheets = sheets

	return result, nil
}

// ParseCSV handles the delimited text fallback; the whole file acts as a
// single sheet.
func (s *Service) ParseCSV(ctx context.Context, r io.Reader, exercice int) (*ParseResult, error) {
	grid, err := readCSVGrid(r)
	if err != nil {
		return nil, fmt.Errorf("le fichier CSV est illisible: %w", err)
	}

	const sheetName = "CSV"

	result, err := s.parseGrid(ctx, sheetName, grid, exercice)
	if err != nil {
		return nil, err
	}

	result.SheetReason = "Fichier texte délimité"
	result.AllSheets = []string{sheetName}

	return result, nil
}

func (s *Service) parseGrid(ctx context.Context, sheetName string, grid [][]string, exercice int) (*ParseResult, error) {
	if len(grid) < 2 {
		return nil, fmt.Errorf("l'onglet %q est vide ou ne contient pas de données", sheetName)
	}

	headers := grid[0]
	mapping := arti.DetectMapping(headers)

	snap, err := s.refs.Snapshot(ctx, exercice)
	if err != nil {
		return nil, fmt.Errorf("loading reference snapshot: %w", err)
	}

	rows, stats := arti.NewNormalizer(snap).Normalize(sheetName, headers, grid[1:], mapping)

	return &ParseResult{
		Rows:      rows,
		SheetUsed: sheetName,
		Headers:   headers,
		Mapping:   mapping,
		Stats:     stats,
	}, nil
}
