package arti

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arti-ci/sygfp/internal/refdata"
)

// SourceFinancementDefault is stamped on every imported line; the legacy
// exports carry no funding-source column.
const SourceFinancementDefault = "Budget État"

const maxLabelLen = 255

// Normalizer turns raw spreadsheet rows into classified ParsedRows against
// a frozen reference snapshot. Rows are independent; the normalizer holds
// no per-row state.
type Normalizer struct {
	snap          *refdata.Snapshot
	os            *refdata.Lookup
	directions    *refdata.Lookup
	activites     *refdata.Lookup
	sousActivites *refdata.Lookup
	nbe           *refdata.Lookup
}

func NewNormalizer(snap *refdata.Snapshot) *Normalizer {
	return &Normalizer{
		snap:          snap,
		os:            refdata.NewLookup(snap.ObjectifsStrategiques),
		directions:    refdata.NewLookup(snap.Directions),
		activites:     refdata.NewLookup(snap.Activites),
		sousActivites: refdata.NewLookup(snap.SousActivites),
		nbe:           refdata.NewLookup(snap.NomenclatureNBE),
	}
}

// Normalize processes the data rows of a sheet (headers excluded) in a
// single pass. Wholly blank rows and pivot/summary rows are dropped
// without producing a ParsedRow; everything else yields exactly one.
// Row indices are 1-based spreadsheet positions, the header being row 1.
func (n *Normalizer) Normalize(sheetName string, headers []string, dataRows [][]string, mapping Mapping) ([]ParsedRow, Stats) {
	var parsed []ParsedRow

	var stats Stats

	for i, row := range dataRows {
		rowIndex := i + 2

		if isBlank(row) {
			continue
		}

		pr, ok := n.normalizeRow(sheetName, rowIndex, headers, row, mapping)
		if !ok {
			continue
		}

		parsed = append(parsed, pr)

		stats.Total++

		switch {
		case !pr.IsValid:
			stats.Error++
		case len(pr.Warnings) > 0:
			stats.Warning++
		default:
			stats.OK++
		}

		switch pr.Decision {
		case DecisionNew:
			stats.New++
		case DecisionUpdate:
			stats.Update++
		}
	}

	return parsed, stats
}

// normalizeRow applies the extraction, padding, validation, reference
// matching and reconstruction rules to one row. The second return value
// is false when the row is a blank/pivot artifact to drop silently.
func (n *Normalizer) normalizeRow(sheetName string, rowIndex int, headers, row []string, mapping Mapping) (ParsedRow, bool) {
	get := func(field Field) string {
		colName, ok := mapping[field]
		if !ok {
			return ""
		}

		for idx, h := range headers {
			if h == colName {
				if idx < len(row) {
					return row[idx]
				}

				return ""
			}
		}

		return ""
	}

	rawImputation := strings.TrimSpace(get(FieldImputation))

	osInt, osOK := ExtractIntegerCode(get(FieldOS))
	actionInt, actionOK := ExtractIntegerCode(get(FieldAction))
	activiteInt, activiteOK := ExtractIntegerCode(get(FieldActivite))
	sousActiviteInt, sousActiviteOK := ExtractIntegerCode(get(FieldSousActivite))
	directionInt, directionOK := ExtractIntegerCode(get(FieldDirection))

	natureDepense, _ := ExtractNatureDepenseCode(get(FieldNatureDepense))
	nbeCode, _ := ExtractNBECode(get(FieldNBE))
	montant, montantOK := CleanMontant(get(FieldMontant))
	rawLibelle := strings.TrimSpace(get(FieldLibelle))

	// Pivot/summary artifacts: drop when OS, Direction and Montant are
	// all absent, and independently whenever OS itself is absent. The
	// first check is subsumed by the second but kept deliberately.
	if !osOK && !directionOK && !montantOK {
		return ParsedRow{}, false
	}

	if !osOK {
		return ParsedRow{}, false
	}

	var osCode, actionCode, activiteCode, sousActiviteCode, directionCode string

	if osOK {
		osCode = PadCode(osInt, 2)
	}

	if actionOK {
		actionCode = PadCode(actionInt, 2)
	}

	if activiteOK {
		activiteCode = PadCode(activiteInt, 3)
	}

	if sousActiviteOK {
		sousActiviteCode = PadCode(sousActiviteInt, 2)
	}

	if directionOK {
		directionCode = PadCode(directionInt, 2)
	}

	var errs, warnings []string

	if !montantOK {
		errs = append(errs, "Montant invalide, manquant ou ≤ 0")
	}

	if nbeCode == "" || len(nbeCode) != 6 || !IsDigits(nbeCode) {
		errs = append(errs, "NBE invalide ou manquant (6 chiffres attendus)")
	}

	if osCode == "" {
		errs = append(errs, "OS manquant")
	}

	if directionCode == "" {
		errs = append(errs, "Direction manquante")
	}

	if natureDepense == "" {
		errs = append(errs, "Nature de dépense manquante")
	}

	// Reference matching is advisory: a miss warns but never blocks,
	// the missing referential is created at import time.
	osRef := n.os.Find(osCode)
	dirRef := n.directions.Find(directionCode)
	actRef := n.activites.Find(activiteCode)
	sousActRef := n.sousActivites.Find(sousActiviteCode)
	nbeRef := n.nbe.Find(nbeCode)

	if osCode != "" && osRef == nil {
		warnings = append(warnings, fmt.Sprintf("Référentiel manquant: OS %q (sera créé à l'import)", osCode))
	}

	if directionCode != "" && dirRef == nil {
		warnings = append(warnings, fmt.Sprintf("Référentiel manquant: Direction %q (sera créé à l'import)", directionCode))
	}

	if nbeCode != "" && nbeRef == nil {
		warnings = append(warnings, fmt.Sprintf("Référentiel manquant: NBE %q (sera créé à l'import)", nbeCode))
	}

	imputation := CalculateImputation(Components{
		OS:            osCode,
		Action:        actionCode,
		Activite:      activiteCode,
		SousActivite:  sousActiviteCode,
		Direction:     directionCode,
		NatureDepense: natureDepense,
		NBE:           nbeCode,
	})

	if len(imputation.Missing) > 0 {
		errs = append(errs, "Composants manquants pour l'imputation: "+strings.Join(imputation.Missing, ", "))
	}

	if len(imputation.Code) != 18 || !IsDigits(imputation.Code) {
		errs = append(errs, fmt.Sprintf("Imputation invalide: %q (18 chiffres attendus)", imputation.Code))
	}

	// The raw imputation cell is a cross-check only, never the code.
	if len(rawImputation) >= 17 {
		rawDigits := digitsOnly(rawImputation)
		if len(rawDigits) >= 17 && rawDigits != digitsOnly(imputation.Code) {
			warnings = append(warnings, fmt.Sprintf("Imputation recalculée: %q (fichier: %q)", imputation.Code, rawImputation))
		}
	}

	label := rawLibelle
	if len([]rune(label)) < 2 {
		label = fallbackLabel(nbeCode, natureDepense, rowIndex)

		warnings = append(warnings, "Libellé projet vide, généré automatiquement")
	}

	if runes := []rune(label); len(runes) > maxLabelLen {
		label = string(runes[:maxLabelLen])
	}

	montantStr := ""
	if montantOK {
		montantStr = strconv.FormatFloat(montant, 'f', -1, 64)
	}

	raw := RawRow{
		RowIndex:      rowIndex,
		SheetName:     sheetName,
		Imputation:    rawImputation,
		OS:            osCode,
		Action:        actionCode,
		Activite:      activiteCode,
		SousActivite:  sousActiviteCode,
		Direction:     directionCode,
		NatureDepense: natureDepense,
		NBE:           nbeCode,
		Montant:       montantStr,
		Libelle:       rawLibelle,
		Cells:         cellMap(headers, row),
	}

	pr := ParsedRow{
		RowIndex:  rowIndex,
		SheetName: sheetName,
		Raw:       raw,
		IsValid:   len(errs) == 0,
		Errors:    errs,
		Warnings:  warnings,
		Decision:  DecisionError,
	}

	if !pr.IsValid {
		return pr, true
	}

	decision := DecisionNew

	var existingID *refdata.ExistingLine

	if existing := n.snap.ExistingByCode(imputation.Code); existing != nil {
		decision = DecisionUpdate
		existingID = existing
	}

	normalized := &NormalizedRow{
		Code:              imputation.Code,
		Label:             label,
		DotationInitiale:  montant,
		OSCode:            osCode,
		ActionCode:        actionCode,
		ActiviteCode:      activiteCode,
		SousActiviteCode:  sousActiviteCode,
		DirectionCode:     directionCode,
		NatureDepense:     natureDepense,
		NBECode:           nbeCode,
		SourceFinancement: SourceFinancementDefault,
		Decision:          decision,
	}

	if osRef != nil {
		normalized.OSID = &osRef.ID
	}

	if dirRef != nil {
		normalized.DirectionID = &dirRef.ID
	}

	if actRef != nil {
		normalized.ActiviteID = &actRef.ID
	}

	if sousActRef != nil {
		normalized.SousActiviteID = &sousActRef.ID
	}

	if nbeRef != nil {
		normalized.NBEID = &nbeRef.ID
	}

	if existingID != nil {
		normalized.ExistingID = &existingID.ID
	}

	pr.Normalized = normalized
	pr.Decision = decision

	return pr, true
}

func fallbackLabel(nbeCode, natureDepense string, rowIndex int) string {
	var parts []string

	if nbeCode != "" {
		parts = append(parts, "NBE "+nbeCode)
	}

	if natureDepense != "" {
		parts = append(parts, "Nat. "+natureDepense)
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Ligne %d", rowIndex)
	}

	return strings.Join(parts, " - ")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cellMap(headers, row []string) map[string]string {
	cells := make(map[string]string, len(headers))

	for i, h := range headers {
		if h == "" {
			continue
		}

		if i < len(row) {
			cells[h] = row[i]
		} else {
			cells[h] = ""
		}
	}

	return cells
}
