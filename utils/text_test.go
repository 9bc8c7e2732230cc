package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "designation", FoldASCII("Désignation"))
	assert.Equal(t, "emetteur", FoldASCII("Émetteur"))
	assert.Equal(t, "deja la", FoldASCII("déjà là"))
}

func TestNormalizeHeaderCell(t *testing.T) {
	assert.Equal(t, "pu", NormalizeHeaderCell("P.U."))
	assert.Equal(t, "qte", NormalizeHeaderCell("Qté :"))
	assert.Equal(t, "montantht", NormalizeHeaderCell("Montant HT"))
}

func TestCleanBlock(t *testing.T) {
	block := "\nACME Conseil SARL\n\n12 rue de la Paix\n75002 Paris\nligne4\nligne5\nligne6\nligne7\n"
	got := CleanBlock(block, 6)

	assert.Equal(t, "ACME Conseil SARL\n12 rue de la Paix\n75002 Paris\nligne4\nligne5\nligne6", got)
}
