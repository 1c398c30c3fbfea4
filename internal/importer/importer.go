// Package importer orchestrates the SYGFP legacy budget import: it reads
// ARTI spreadsheet exports, normalizes their rows against the reference
// tables and persists the accepted lines under one of three write modes.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the accepted source file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat infers the source format from the uploaded filename.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("format de fichier non supporté: %q (xlsx ou csv attendu)", filepath.Ext(filename))
	}
}
