package arti

import "strings"

// Field is one of the ten semantic columns of an ARTI budget export.
type Field string

const (
	FieldImputation    Field = "imputation"
	FieldOS            Field = "os"
	FieldAction        Field = "action"
	FieldActivite      Field = "activite"
	FieldSousActivite  Field = "sousActivite"
	FieldDirection     Field = "direction"
	FieldNatureDepense Field = "natureDepense"
	FieldNBE           Field = "nbe"
	FieldMontant       Field = "montant"
	FieldLibelle       Field = "libelle"
)

// Fields lists every semantic field in a stable order.
var Fields = []Field{
	FieldImputation,
	FieldOS,
	FieldAction,
	FieldActivite,
	FieldSousActivite,
	FieldDirection,
	FieldNatureDepense,
	FieldNBE,
	FieldMontant,
	FieldLibelle,
}

// columnAliases maps each field to the header spellings seen in the wild,
// in priority order. The ARTI exports are hand-maintained spreadsheets, so
// the list grows whenever a new variant shows up.
var columnAliases = map[Field][]string{
	FieldImputation:    {"N° imputation", "N°imputation", "Imputation", "CODE IMPUTATION", "N° IMPUTATION"},
	FieldOS:            {"OS", "O.S.", "Objectif Stratégique", "OBJECTIF STRATEGIQUE"},
	FieldAction:        {"Action", "ACTION", "Act"},
	FieldActivite:      {"ACTIVITE", "Activité", "ACT", "ACTIVITÉ"},
	FieldSousActivite:  {"SOUS ACTIVITE", "SOUS-ACTIVITE", "Sous-activité", "Sous activité", "S/ACTIVITE", "SOUS_ACTIVITE"},
	FieldDirection:     {"DIRECTION", "Direction", "DIR", "Direction charge exécution"},
	FieldNatureDepense: {"NATURE DEPENSE", "Nature dépense", "NAT DEPENSE", "NATURE_DEPENSE", "Nature de dépense"},
	FieldNBE:           {"NATURE ECO", "Nature éco", "NBE", "NATURE_ECO", "Nature économique", "N.B.E"},
	FieldMontant:       {"MONTANT", "Montant", "Budget initial", "BUDGET", "Dotation", "DOTATION INITIALE"},
	FieldLibelle:       {"LIB_PROJET", "Libellé projet", "LIBELLE", "Libellé", "LIB PROJET", "LIBELLE_PROJET"},
}

// Mapping associates semantic fields with the matched header string.
// Unmatched fields are absent. The mapping produced by DetectMapping is
// advisory: a caller may adjust it before normalization runs.
type Mapping map[Field]string

// DetectMapping matches the sheet headers against the known alias lists.
// Exact (case and whitespace insensitive) matches are tried for every
// alias first; only then is substring containment allowed. First hit wins.
func DetectMapping(headers []string) Mapping {
	mapping := make(Mapping, len(Fields))

	for _, field := range Fields {
		aliases := columnAliases[field]

		matched := ""

		for _, alias := range aliases {
			for _, h := range headers {
				if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(alias)) {
					matched = h
					break
				}
			}

			if matched != "" {
				break
			}
		}

		if matched == "" {
			for _, alias := range aliases {
				for _, h := range headers {
					if strings.Contains(strings.ToLower(h), strings.ToLower(alias)) {
						matched = h
						break
					}
				}

				if matched != "" {
					break
				}
			}
		}

		if matched != "" {
			mapping[field] = matched
		}
	}

	return mapping
}
