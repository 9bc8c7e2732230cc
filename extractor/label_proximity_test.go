package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturex/invoice-extractor/dto"
)

func TestLabelProximityTotals(t *testing.T) {
	text := `Total HT
1 000,00 €
TVA 20 %       200,00 €
Total TTC    1 200,00 €`

	e := NewLabelProximityExtractor()
	cands := e.Extract(&dto.Document{Text: text})

	if c := candidateFor(cands, "total_ht"); assert.NotNil(t, c) {
		// The amount sits on the line after the label, inside the window.
		assert.Equal(t, 1000.00, c.Value)
		assert.Equal(t, dto.SourceLabelProx, c.Source)
		assert.Equal(t, 0.75, c.Confidence)
	}
	if c := candidateFor(cands, "total_tva"); assert.NotNil(t, c) {
		assert.Equal(t, 200.00, c.Value)
	}
	if c := candidateFor(cands, "total_ttc"); assert.NotNil(t, c) {
		assert.Equal(t, 1200.00, c.Value)
	}
}

func TestLabelProximityToleratesOCRDamage(t *testing.T) {
	e := NewLabelProximityExtractor()

	cands := e.Extract(&dto.Document{Text: "Total H1   450,00"})
	if c := candidateFor(cands, "total_ht"); assert.NotNil(t, c) {
		assert.Equal(t, 450.00, c.Value)
	}
}

func TestLabelProximityPrefersDecimalAmountOverRate(t *testing.T) {
	e := NewLabelProximityExtractor()
	cands := e.Extract(&dto.Document{Text: "TVA 20 % 84,50"})

	if c := candidateFor(cands, "total_tva"); assert.NotNil(t, c) {
		assert.Equal(t, 84.50, c.Value)
	}
}

func TestLabelProximityPartyBlock(t *testing.T) {
	text := `Émetteur :
ACME Conseil SARL
12 rue de la Paix
75002 Paris

Client :
Durand Industrie
69006 Lyon`

	e := NewLabelProximityExtractor()
	cands := e.Extract(&dto.Document{Text: text})

	if c := candidateFor(cands, "seller"); assert.NotNil(t, c) {
		assert.Contains(t, c.Value.(string), "ACME Conseil SARL")
		assert.Contains(t, c.Value.(string), "75002 Paris")
	}
	if c := candidateFor(cands, "buyer"); assert.NotNil(t, c) {
		assert.Contains(t, c.Value.(string), "Durand Industrie")
	}
}

func TestLabelProximityBlockStopsAtNextLabel(t *testing.T) {
	text := `Vendeur :
ACME Conseil SARL
Total HT 100,00`

	e := NewLabelProximityExtractor()
	cands := e.Extract(&dto.Document{Text: text})

	if c := candidateFor(cands, "seller"); assert.NotNil(t, c) {
		assert.Equal(t, "ACME Conseil SARL", c.Value)
	}
}

func TestLabelProximityNoLabelsNoCandidates(t *testing.T) {
	e := NewLabelProximityExtractor()
	assert.Empty(t, e.Extract(&dto.Document{Text: "Lorem ipsum dolor sit amet\n123,45"}))
}
