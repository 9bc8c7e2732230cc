package extractor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturex/invoice-extractor/dto"
)

func tok(text string, x0, x1, y float64) dto.Token {
	return dto.Token{Text: text, X0: x0, X1: x1, Top: y, Bottom: y + 10}
}

func invoiceTableTokens() []dto.Token {
	return []dto.Token{
		// Header row.
		tok("Réf", 50, 70, 100),
		tok("Désignation", 120, 180, 100),
		tok("Qté", 300, 320, 100),
		tok("PU", 380, 395, 100),
		tok("Montant", 450, 500, 100),
		// Body row.
		tok("A1", 50, 65, 120),
		tok("Service", 120, 160, 120),
		tok("X", 165, 172, 120),
		tok("2", 305, 312, 120),
		tok("50,00", 375, 400, 120),
		tok("100,00", 460, 495, 120),
		// Totals row caps the body.
		tok("Total", 120, 150, 140),
		tok("HT", 155, 170, 140),
		tok("100,00", 460, 495, 140),
		// Below the cap: must never become a line item.
		tok("B2", 50, 65, 160),
		tok("Remise", 120, 160, 160),
		tok("1", 305, 310, 160),
		tok("10,00", 375, 400, 160),
		tok("10,00", 460, 495, 160),
	}
}

func TestReconstructSingleRow(t *testing.T) {
	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{invoiceTableTokens()})

	if assert.Equal(t, 1, len(items)) {
		item := items[0]
		assert.Equal(t, "A1", item.Ref)
		assert.Equal(t, "Service X", item.Label)
		if assert.NotNil(t, item.Qty) {
			assert.Equal(t, 2, *item.Qty)
		}
		if assert.NotNil(t, item.UnitPrice) {
			assert.Equal(t, 50.00, *item.UnitPrice)
		}
		if assert.NotNil(t, item.Amount) {
			assert.Equal(t, 100.00, *item.Amount)
		}
	}
}

func TestReconstructComputesMissingAmount(t *testing.T) {
	tokens := invoiceTableTokens()
	// Drop the body row's amount cell.
	filtered := tokens[:0:0]
	for _, tk := range tokens {
		if tk.Top == 120 && tk.Text == "100,00" {
			continue
		}
		filtered = append(filtered, tk)
	}

	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{filtered})

	if assert.Equal(t, 1, len(items)) && assert.NotNil(t, items[0].Amount) {
		assert.Equal(t, 100.00, *items[0].Amount)
	}
}

func TestReconstructDiscardsFooterNoise(t *testing.T) {
	tokens := invoiceTableTokens()[:11]
	tokens = append(tokens,
		tok("IBAN", 50, 80, 130),
		tok("FR7630004000031234567890143", 120, 350, 130),
		tok("Merci", 50, 80, 135),
		tok("de", 85, 95, 135),
		tok("votre", 100, 130, 135),
		tok("confiance", 135, 190, 135),
	)

	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{tokens})

	for _, item := range items {
		assert.NotContains(t, item.Label, "IBAN")
		assert.NotContains(t, item.Label, "Merci")
	}
	assert.Equal(t, 1, len(items))
}

func TestReconstructSkipsPageWithoutHeader(t *testing.T) {
	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{{
		tok("Facture", 50, 100, 50),
		tok("2024-001", 120, 180, 50),
	}})
	assert.Empty(t, items)
}

func TestReconstructDiscardsStrayQuantity(t *testing.T) {
	tokens := invoiceTableTokens()[:5]
	tokens = append(tokens, tok("30", 305, 315, 120))

	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{tokens})
	assert.Empty(t, items)
}

func TestBuildBoundariesPartitionsAxis(t *testing.T) {
	bounds := BuildBoundaries(map[ColumnRole]float64{
		RoleRef:    60,
		RoleLabel:  150,
		RoleQty:    310,
		RoleUnit:   387.5,
		RoleAmount: 475,
	})

	if assert.Equal(t, 5, len(bounds)) {
		assert.True(t, math.IsInf(bounds[0].Left, -1))
		assert.True(t, math.IsInf(bounds[len(bounds)-1].Right, 1))
		for i := 1; i < len(bounds); i++ {
			assert.Equal(t, bounds[i-1].Right, bounds[i].Left)
			assert.Less(t, bounds[i].Left, bounds[i].Right)
		}
		assert.Equal(t, RoleRef, bounds[0].Role)
		assert.Equal(t, RoleAmount, bounds[4].Role)
	}
}

func TestReconstructDeduplicatesAcrossPages(t *testing.T) {
	tr := NewTableReconstructor()
	items := tr.Reconstruct([][]dto.Token{invoiceTableTokens(), invoiceTableTokens()})
	assert.Equal(t, 1, len(items))
}
