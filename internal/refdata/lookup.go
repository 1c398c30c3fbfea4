package refdata

import "strings"

// Lookup resolves a raw spreadsheet value against one reference table.
// Matching never blocks an import; a miss only produces a warning upstream.
type Lookup struct {
	entries []Entry
	byCode  map[string]int
}

func NewLookup(entries []Entry) *Lookup {
	byCode := make(map[string]int, len(entries))
	for i, e := range entries {
		byCode[strings.ToLower(e.Code)] = i
	}

	return &Lookup{entries: entries, byCode: byCode}
}

// ByCode matches by exact case-insensitive code equality.
func (l *Lookup) ByCode(code string) *Entry {
	i, ok := l.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil
	}

	return &l.entries[i]
}

// Find applies the full matching cascade:
//  1. exact case-insensitive code equality,
//  2. the leading digit run of the search value against the entry code,
//     as-is or zero-padded to 2 digits,
//  3. label containment in either direction.
func (l *Lookup) Find(search string) *Entry {
	cleaned := strings.ToLower(strings.TrimSpace(search))
	if cleaned == "" {
		return nil
	}

	if e := l.ByCode(cleaned); e != nil {
		return e
	}

	if digits := leadingDigits(strings.TrimSpace(search)); digits != "" {
		padded := digits
		if len(padded) < 2 {
			padded = strings.Repeat("0", 2-len(padded)) + padded
		}

		for i := range l.entries {
			if l.entries[i].Code == digits || l.entries[i].Code == padded {
				return &l.entries[i]
			}
		}
	}

	for i := range l.entries {
		label := strings.ToLower(l.entries[i].Label)
		if label == "" {
			continue
		}

		if strings.Contains(label, cleaned) || strings.Contains(cleaned, label) {
			return &l.entries[i]
		}
	}

	return nil
}

// leadingDigits returns the run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	return s[:end]
}
