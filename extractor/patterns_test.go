package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVATRate(t *testing.T) {
	p := DefaultRegistry()

	if rate := p.ParseVATRate("TVA 20 %"); assert.NotNil(t, rate) {
		assert.Equal(t, 20.0, *rate)
	}
	if rate := p.ParseVATRate("TVA 5,5%"); assert.NotNil(t, rate) {
		assert.Equal(t, 5.5, *rate)
	}
	// A discount percentage is not a VAT rate.
	assert.Nil(t, p.ParseVATRate("Remise 15 %"))
	assert.Nil(t, p.ParseVATRate("aucun taux ici"))
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "EUR", DetectCurrency("Total 100,00 €"))
	assert.Equal(t, "GBP", DetectCurrency("Total £100.00"))
	assert.Equal(t, "USD", DetectCurrency("Total $100.00"))
	assert.Equal(t, "EUR", DetectCurrency("Total 100,00"))
}

func TestValidatorScore(t *testing.T) {
	assert.Equal(t, 1.0, ValidatorScore("total_ttc", 1200.00))
	assert.Equal(t, 0.6, ValidatorScore("total_ttc", 9_000_000.00))
	assert.Equal(t, 0.9, ValidatorScore("invoice_date", "2024-03-15"))
	assert.Equal(t, 0.6, ValidatorScore("invoice_date", "15/03/2024"))
	assert.Equal(t, 1.0, ValidatorScore("seller_iban", "FR7630004000031234567890143"))
	assert.Equal(t, 1.0, ValidatorScore("seller_siret", "84432109800021"))
	assert.Equal(t, 0.0, ValidatorScore("seller", ""))
}
