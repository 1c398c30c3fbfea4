package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook is a read-only view over an Excel file: ordered sheet names and
// per-sheet cell grids. Cells are returned as displayed text so codes like
// "01" keep their leading zeros instead of being coerced to numbers.
type Workbook struct {
	file *excelize.File
}

func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	return &Workbook{file: f}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows reads a sheet as a 2-D grid of trimmed-right rows. The first row is
// the header row; excelize already drops trailing empty cells per row.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	return rows, nil
}
