package arti

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// The extraction rules below implement the strict cleaning business rules
// of the ARTI legacy exports. Cells arrive as displayed text; a cell that
// held a true numeric value therefore parses as a number here and follows
// the numeric branch of each rule.

// ExtractIntegerCode pulls an integer component code from a raw cell.
// Numeric values are floored; strings contribute their leading digit run.
//
//	"2 Biens et services" → 2
//	"01"                  → 1
//	"2.0"                 → 2
func ExtractIntegerCode(value string) (int, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(math.Floor(f)), true
	}

	digits := leadingDigits(s)
	if digits == "" {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}

// ExtractNatureDepenseCode keeps the first digit found anywhere in the
// value ("4 Investissements" → "4").
func ExtractNatureDepenseCode(value string) (string, bool) {
	for _, r := range strings.TrimSpace(value) {
		if r >= '0' && r <= '9' {
			return string(r), true
		}
	}

	return "", false
}

// ExtractNBECode extracts the 6-digit economic nature code. The segment
// before the first colon or space is preferred; shorter digit runs are
// left-padded to 6, longer ones truncated to the first 6.
//
//	"221100 : Achats de matériel" → "221100"
//	"671700: Services"            → "671700"
//	"22110"                       → "022110"
func ExtractNBECode(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return padNBE(strconv.FormatInt(int64(math.Floor(f)), 10)), true
	}

	sep := strings.IndexFunc(s, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})

	segment := s
	if sep >= 0 {
		segment = s[:sep]
	}

	if digits := digitsOnly(segment); digits != "" {
		return padNBE(digits), true
	}

	// Fallback: digits from the whole value.
	if digits := digitsOnly(s); digits != "" {
		return padNBE(digits), true
	}

	return "", false
}

// CleanMontant parses an amount, stripping whitespace thousands separators
// (including non-breaking spaces) and converting the decimal comma. Only
// strictly positive amounts are kept.
func CleanMontant(value string) (float64, bool) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, value)

	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, false
	}

	f, _ := d.Float64()

	return f, true
}

// PadCode left-pads an integer code to the given width.
func PadCode(value, width int) string {
	return fmt.Sprintf("%0*d", width, value)
}

func padNBE(digits string) string {
	if len(digits) >= 6 {
		return digits[:6]
	}

	return strings.Repeat("0", 6-len(digits)) + digits
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	return s[:end]
}

func digitsOnly(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
