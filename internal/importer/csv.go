package importer

import (
	"bytes"
	encsv "encoding/csv"
	"fmt"
	"io"

	"github.com/arti-ci/sygfp/internal/encoding"
)

// readCSVGrid reads a delimited text export into the same cell grid shape
// a workbook sheet produces. The separator is sniffed from the header
// line: the legacy exports use semicolons, but comma and tab variants
// circulate too.
func readCSVGrid(r io.Reader) ([][]string, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	reader := encsv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffSeparator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	return grid, nil
}

func sniffSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, sep := 0, ';'

	for _, candidate := range []byte{';', ',', '\t'} {
		if n := bytes.Count(line, []byte{candidate}); n > best {
			best, sep = n, rune(candidate)
		}
	}

	return sep
}
