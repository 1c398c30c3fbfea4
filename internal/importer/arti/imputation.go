package arti

import "strings"

// Components holds the seven padded component codes of an imputation.
// An empty string means the component is missing from the source row.
type Components struct {
	OS            string
	Action        string
	Activite      string
	SousActivite  string
	Direction     string
	NatureDepense string
	NBE           string
}

// Imputation is a reconstructed 18-digit budget-line code. Code is always
// populated, with zero placeholders standing in for missing components so
// the attempted code can be shown in error reports; Missing lists the
// component names that had to be substituted.
type Imputation struct {
	Code    string
	Missing []string
}

// CalculateImputation rebuilds the canonical imputation from components:
// OS(2) + Action(2) + Activité(3) + SousActivité(2) + Direction(2) +
// NatureDépense(1) + NBE(6) = 18 digits. The raw imputation cell is never
// trusted: spreadsheet tools corrupt 18-digit integers into scientific
// notation or drop significant digits, so the component-wise rebuild is
// the only source of truth.
func CalculateImputation(c Components) Imputation {
	var missing []string

	if c.OS == "" {
		missing = append(missing, "OS")
	}

	if c.Action == "" {
		missing = append(missing, "Action")
	}

	if c.Activite == "" {
		missing = append(missing, "Activité")
	}

	if c.SousActivite == "" {
		missing = append(missing, "Sous-Activité")
	}

	if c.Direction == "" {
		missing = append(missing, "Direction")
	}

	if c.NatureDepense == "" {
		missing = append(missing, "Nature Dépense")
	}

	if c.NBE == "" {
		missing = append(missing, "NBE")
	}

	code := padComponent(c.OS, 2) +
		padComponent(c.Action, 2) +
		padComponent(c.Activite, 3) +
		padComponent(c.SousActivite, 2) +
		padComponent(c.Direction, 2) +
		firstChar(padComponent(c.NatureDepense, 1)) +
		padComponent(c.NBE, 6)

	return Imputation{Code: code, Missing: missing}
}

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

func padComponent(code string, width int) string {
	if code == "" {
		code = "0"
	}

	if len(code) >= width {
		return code
	}

	return strings.Repeat("0", width-len(code)) + code
}

func firstChar(s string) string {
	if s == "" {
		return s
	}

	return s[:1]
}
