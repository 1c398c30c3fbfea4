package arti

import (
	"fmt"
	"strings"
)

// preferredSheets is the ordered list of sheet names the ARTI exports are
// known to put the usable data in. More recent export layouts come first.
var preferredSheets = []string{"Groupé (2)", "Groupe (2)", "Feuil3", "Sheet3", "Données"}

// ignoredSheets contains worksheets known to carry broken #REF formulas.
var ignoredSheets = []string{"Groupé", "Groupe"}

// SheetChoice is the selected worksheet and a human-readable reason.
type SheetChoice struct {
	Sheet  string
	Reason string
}

// SelectSheet picks the worksheet to import from. Ignored sheets are
// removed first, then the preference list is scanned in order; failing
// that, the first remaining sheet wins. When everything is filtered out
// the original first sheet is returned as a last-resort degradation; the
// caller still treats an empty workbook as fatal.
func SelectSheet(sheetNames []string) SheetChoice {
	var candidates []string

	for _, name := range sheetNames {
		ignored := false

		for _, ig := range ignoredSheets {
			if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(ig)) {
				ignored = true
				break
			}
		}

		if !ignored {
			candidates = append(candidates, name)
		}
	}

	for _, preferred := range preferredSheets {
		for _, name := range candidates {
			if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(preferred)) {
				return SheetChoice{
					Sheet:  name,
					Reason: fmt.Sprintf("Onglet prioritaire %q détecté", name),
				}
			}
		}
	}

	if len(candidates) > 0 {
		return SheetChoice{
			Sheet:  candidates[0],
			Reason: fmt.Sprintf("Premier onglet valide %q utilisé", candidates[0]),
		}
	}

	first := ""
	if len(sheetNames) > 0 {
		first = sheetNames[0]
	}

	return SheetChoice{Sheet: first, Reason: "Aucun onglet valide trouvé"}
}
