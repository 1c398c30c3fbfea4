package arti

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateImputation(t *testing.T) {
	t.Run("complete components", func(t *testing.T) {
		got := CalculateImputation(Components{
			OS:            "01",
			Action:        "02",
			Activite:      "003",
			SousActivite:  "01",
			Direction:     "04",
			NatureDepense: "4",
			NBE:           "671700",
		})

		assert.Equal(t, "010200301044671700", got.Code)
		assert.Len(t, got.Code, 18)
		assert.Empty(t, got.Missing)
	})

	t.Run("missing components still produce a code", func(t *testing.T) {
		got := CalculateImputation(Components{
			OS:            "01",
			NatureDepense: "4",
			NBE:           "671700",
		})

		assert.Len(t, got.Code, 18)
		assert.Equal(t, []string{"Action", "Activité", "Sous-Activité", "Direction"}, got.Missing)
	})

	t.Run("all missing", func(t *testing.T) {
		got := CalculateImputation(Components{})

		assert.Equal(t, "000000000000000000", got.Code)
		assert.Len(t, got.Missing, 7)
	})

	t.Run("nature depense truncated to first digit", func(t *testing.T) {
		got := CalculateImputation(Components{
			OS:            "01",
			Action:        "02",
			Activite:      "003",
			SousActivite:  "01",
			Direction:     "04",
			NatureDepense: "42",
			NBE:           "671700",
		})

		assert.Equal(t, "010200301044671700", got.Code)
	})
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("010200301044671700"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("01a2"))
	assert.False(t, IsDigits("12 34"))
}
