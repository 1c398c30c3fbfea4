package arti

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectSheet(t *testing.T) {
	tests := []struct {
		name   string
		sheets []string
		want   string
		reason string
	}{
		{
			name:   "preferred sheet wins over order",
			sheets: []string{"Feuil1", "Groupé (2)", "Feuil3"},
			want:   "Groupé (2)",
			reason: `Onglet prioritaire "Groupé (2)" détecté`,
		},
		{
			name:   "ignored sheet skipped",
			sheets: []string{"Groupé", "Feuil3"},
			want:   "Feuil3",
			reason: `Onglet prioritaire "Feuil3" détecté`,
		},
		{
			name:   "first valid sheet as fallback",
			sheets: []string{"Export 2024", "Récap"},
			want:   "Export 2024",
			reason: `Premier onglet valide "Export 2024" utilisé`,
		},
		{
			name:   "everything filtered falls back to first",
			sheets: []string{"Groupé"},
			want:   "Groupé",
			reason: "Aucun onglet valide trouvé",
		},
		{
			name:   "case insensitive preference",
			sheets: []string{"feuil3"},
			want:   "feuil3",
			reason: `Onglet prioritaire "feuil3" détecté`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectSheet(tt.sheets)

			assert.Equal(t, tt.want, got.Sheet)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}
