package arti

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arti-ci/sygfp/internal/refdata"
)

var testHeaders = []string{
	"N° imputation", "OS", "Action", "ACTIVITE", "SOUS ACTIVITE",
	"DIRECTION", "NATURE DEPENSE", "NATURE ECO", "MONTANT", "LIB_PROJET",
}

func testSnapshot() *refdata.Snapshot {
	return &refdata.Snapshot{
		ObjectifsStrategiques: []refdata.Entry{
			{ID: uuid.New(), Code: "01", Label: "Pilotage"},
		},
		Directions: []refdata.Entry{
			{ID: uuid.New(), Code: "04", Label: "Direction Administrative et Financière"},
		},
		Activites: []refdata.Entry{
			{ID: uuid.New(), Code: "003", Label: "Gestion budgétaire"},
		},
		NomenclatureNBE: []refdata.Entry{
			{ID: uuid.New(), Code: "671700", Label: "Charges exceptionnelles"},
		},
	}
}

func normalizeOne(t *testing.T, snap *refdata.Snapshot, row []string) ParsedRow {
	t.Helper()

	n := NewNormalizer(snap)
	mapping := DetectMapping(testHeaders)

	rows, _ := n.Normalize("Feuil3", testHeaders, [][]string{row}, mapping)
	require.Len(t, rows, 1)

	return rows[0]
}

func TestNormalizeEndToEnd(t *testing.T) {
	snap := testSnapshot()

	pr := normalizeOne(t, snap, []string{
		"", "1 Pilotage", "02", "3", "01",
		"4 DAF", "4 Investissements", "671700 : Charges exceptionnelles", "2 500 000", "",
	})

	require.True(t, pr.IsValid)
	require.NotNil(t, pr.Normalized)

	assert.Equal(t, "010200301044671700", pr.Normalized.Code)
	assert.Equal(t, "NBE 671700 - Nat. 4", pr.Normalized.Label)
	assert.InDelta(t, 2500000.0, pr.Normalized.DotationInitiale, 1e-9)
	assert.Equal(t, "Budget État", pr.Normalized.SourceFinancement)
	assert.Equal(t, DecisionNew, pr.Decision)
	assert.Equal(t, 2, pr.RowIndex)

	assert.Contains(t, pr.Warnings, "Libellé projet vide, généré automatiquement")
	assert.NotNil(t, pr.Normalized.OSID)
	assert.NotNil(t, pr.Normalized.DirectionID)
	assert.NotNil(t, pr.Normalized.NBEID)
	assert.NotNil(t, pr.Normalized.ActiviteID)
	assert.Nil(t, pr.Normalized.SousActiviteID)
}

func TestNormalizePivotRows(t *testing.T) {
	n := NewNormalizer(testSnapshot())
	mapping := DetectMapping(testHeaders)

	rows, stats := n.Normalize("Feuil3", testHeaders, [][]string{
		{"", "", "", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "Total", "", ""},
		{"", "", "02", "3", "01", "4 DAF", "4", "671700", "1000", "Ligne sans OS"},
		{"", "1", "02", "3", "01", "4 DAF", "4", "671700", "1000", "Ligne valide"},
	}, mapping)

	// Only the last row survives: blank rows, pivot remnants and rows
	// without an OS are dropped without a trace.
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].RowIndex)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.New)
}

func TestNormalizeUpdateDecision(t *testing.T) {
	snap := testSnapshot()
	existingID := uuid.New()
	snap.ExistingLines = []refdata.ExistingLine{
		{ID: existingID, Code: "010200301044671700", Exercice: 2025},
	}

	pr := normalizeOne(t, snap, []string{
		"", "01", "02", "003", "01", "04", "4", "671700", "500", "Projet existant",
	})

	require.True(t, pr.IsValid)
	assert.Equal(t, DecisionUpdate, pr.Decision)
	require.NotNil(t, pr.Normalized.ExistingID)
	assert.Equal(t, existingID, *pr.Normalized.ExistingID)
}

func TestNormalizeValidationErrors(t *testing.T) {
	t.Run("invalid montant", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"", "01", "02", "003", "01", "04", "4", "671700", "-5", "Projet",
		})

		assert.False(t, pr.IsValid)
		assert.Equal(t, DecisionError, pr.Decision)
		assert.Nil(t, pr.Normalized)
		assert.Contains(t, pr.Errors, "Montant invalide, manquant ou ≤ 0")
	})

	t.Run("missing nbe", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"", "01", "02", "003", "01", "04", "4", "", "1000", "Projet",
		})

		assert.False(t, pr.IsValid)
		assert.Contains(t, pr.Errors, "NBE invalide ou manquant (6 chiffres attendus)")
		assert.Contains(t, pr.Errors, "Composants manquants pour l'imputation: NBE")
	})

	t.Run("missing direction and nature", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"", "01", "02", "003", "01", "", "", "671700", "1000", "Projet",
		})

		assert.False(t, pr.IsValid)
		assert.Contains(t, pr.Errors, "Direction manquante")
		assert.Contains(t, pr.Errors, "Nature de dépense manquante")
	})
}

func TestNormalizeReferenceWarnings(t *testing.T) {
	pr := normalizeOne(t, testSnapshot(), []string{
		"", "01", "02", "003", "01", "99", "4", "123456", "1000", "Projet",
	})

	require.True(t, pr.IsValid)
	assert.Contains(t, pr.Warnings, `Référentiel manquant: Direction "99" (sera créé à l'import)`)
	assert.Contains(t, pr.Warnings, `Référentiel manquant: NBE "123456" (sera créé à l'import)`)
	assert.Nil(t, pr.Normalized.DirectionID)
	assert.Nil(t, pr.Normalized.NBEID)
}

func TestNormalizeImputationCrossCheck(t *testing.T) {
	t.Run("diverging raw imputation warns", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"010200301044671799", "01", "02", "003", "01", "04", "4", "671700", "1000", "Projet",
		})

		require.True(t, pr.IsValid)
		assert.Contains(t, pr.Warnings,
			`Imputation recalculée: "010200301044671700" (fichier: "010200301044671799")`)
	})

	t.Run("matching raw imputation is silent", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"010200301044671700", "01", "02", "003", "01", "04", "4", "671700", "1000", "Projet",
		})

		require.True(t, pr.IsValid)
		assert.Empty(t, pr.Warnings)
	})

	t.Run("short raw imputation ignored", func(t *testing.T) {
		pr := normalizeOne(t, testSnapshot(), []string{
			"1,02E+17", "01", "02", "003", "01", "04", "4", "671700", "1000", "Projet",
		})

		require.True(t, pr.IsValid)
		assert.Empty(t, pr.Warnings)
	})
}

func TestNormalizeLabelTruncation(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'é'
	}

	pr := normalizeOne(t, testSnapshot(), []string{
		"", "01", "02", "003", "01", "04", "4", "671700", "1000", string(long),
	})

	require.True(t, pr.IsValid)
	assert.Len(t, []rune(pr.Normalized.Label), 255)
}
