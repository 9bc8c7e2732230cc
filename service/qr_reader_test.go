package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturex/invoice-extractor/dto"
)

const epcPayload = "BCD\n002\n1\nSCT\nBNPAFRPP\nACME Conseil SARL\nFR7630004000031234567890143\nEUR1200.00\n\n\nFacture F-2024-0042"

func TestParseEPCPayload(t *testing.T) {
	p, err := ParseEPCPayload(epcPayload)

	assert.NoError(t, err)
	assert.Equal(t, "BNPAFRPP", p.BIC)
	assert.Equal(t, "ACME Conseil SARL", p.Name)
	assert.Equal(t, "FR7630004000031234567890143", p.IBAN)
	assert.Equal(t, "EUR", p.Currency)
	if assert.NotNil(t, p.Amount) {
		assert.Equal(t, 1200.00, *p.Amount)
	}
	assert.Equal(t, "Facture F-2024-0042", p.Remittance)
}

func TestParseEPCPayloadSpacedIBAN(t *testing.T) {
	p, err := ParseEPCPayload("BCD\n002\n1\nSCT\nBNPAFRPP\nACME\nFR76 3000 4000 0312 3456 7890 143\nEUR50.00")

	assert.NoError(t, err)
	assert.Equal(t, "FR7630004000031234567890143", p.IBAN)
}

func TestParseEPCPayloadRejectsOtherQRContent(t *testing.T) {
	_, err := ParseEPCPayload("https://example.com/invoice/42")
	assert.Error(t, err)

	_, err = ParseEPCPayload("BCD\n002\n1\nSDD\nBIC\nName\nFR76...")
	assert.Error(t, err)
}

func TestEPCPaymentCandidates(t *testing.T) {
	amount := 1200.00
	p := &EPCPayment{IBAN: "FR7630004000031234567890143", Name: "ACME Conseil SARL", Amount: &amount}

	cands := p.Candidates()

	if assert.Equal(t, 3, len(cands)) {
		assert.Equal(t, "seller_iban", cands[0].Field)
		assert.Equal(t, dto.SourceQR, cands[0].Source)
		assert.Equal(t, 0.95, cands[0].Confidence)
		assert.Equal(t, "seller", cands[1].Field)
		assert.Equal(t, "total_ttc", cands[2].Field)
		assert.Equal(t, 1200.00, cands[2].Value)
	}
}
