package xlsx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arti-ci/sygfp/internal/xlsx"
)

// buildWorkbook writes an xlsx file in memory with the given sheets.
func buildWorkbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()

	first := true

	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))

			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer

	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	return buf.Bytes()
}

func TestWorkbook_RowsPreservesText(t *testing.T) {
	data := buildWorkbook(t, map[string][][]any{
		"Données": {
			{"OS", "DIRECTION", "MONTANT"},
			{"01", "04", "2500000"},
		},
	})

	wb, err := xlsx.Open(bytes.NewReader(data))
	require.NoError(t, err)

	defer wb.Close()

	rows, err := wb.Rows("Données")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Text cells keep their leading zeros.
	assert.Equal(t, "01", rows[1][0])
	assert.Equal(t, "04", rows[1][1])
}

func TestWorkbook_SheetNames(t *testing.T) {
	data := buildWorkbook(t, map[string][][]any{
		"Feuil3": {{"a"}},
	})

	wb, err := xlsx.Open(bytes.NewReader(data))
	require.NoError(t, err)

	defer wb.Close()

	assert.Contains(t, wb.SheetNames(), "Feuil3")
}

func TestWorkbook_UnknownSheet(t *testing.T) {
	data := buildWorkbook(t, map[string][][]any{
		"Feuil3": {{"a"}},
	})

	wb, err := xlsx.Open(bytes.NewReader(data))
	require.NoError(t, err)

	defer wb.Close()

	_, err = wb.Rows("Inconnu")
	assert.Error(t, err)
}
