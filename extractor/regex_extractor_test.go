package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturex/invoice-extractor/dto"
)

const sampleInvoice = `FACTURE N° F-2024-0042
Date : 15/03/2024

Vendeur :
ACME Conseil SARL
12 rue de la Paix
75002 Paris
SIRET : 84432109800021
TVA Intracommunautaire : FR32844321098

Client :
Durand Industrie
8 avenue Victor Hugo
69006 Lyon

REF  Prestation de conseil  2  500,00  1 000,00

Total HT     1 000,00 €
TVA 20 %       200,00 €
Total TTC    1 200,00 €

IBAN : FR76 3000 4000 0312 3456 7890 143
`

func candidateFor(cands []dto.Candidate, field string) *dto.Candidate {
	for i := range cands {
		if cands[i].Field == field {
			return &cands[i]
		}
	}
	return nil
}

func TestRegexExtractorFullInvoice(t *testing.T) {
	e := NewRegexExtractor(DefaultRegistry())
	cands := e.Extract(&dto.Document{Text: sampleInvoice})

	if c := candidateFor(cands, "invoice_number"); assert.NotNil(t, c) {
		assert.Equal(t, "F-2024-0042", c.Value)
		assert.Equal(t, dto.SourceRegex, c.Source)
		assert.Equal(t, 0.9, c.Confidence)
	}
	if c := candidateFor(cands, "invoice_date"); assert.NotNil(t, c) {
		assert.Equal(t, "2024-03-15", c.Value)
	}
	if c := candidateFor(cands, "total_ht"); assert.NotNil(t, c) {
		assert.Equal(t, 1000.00, c.Value)
	}
	if c := candidateFor(cands, "total_tva"); assert.NotNil(t, c) {
		assert.Equal(t, 200.00, c.Value)
	}
	if c := candidateFor(cands, "total_ttc"); assert.NotNil(t, c) {
		assert.Equal(t, 1200.00, c.Value)
	}
	if c := candidateFor(cands, "seller"); assert.NotNil(t, c) {
		assert.Contains(t, c.Value.(string), "ACME Conseil SARL")
	}
	if c := candidateFor(cands, "buyer"); assert.NotNil(t, c) {
		assert.Contains(t, c.Value.(string), "Durand Industrie")
	}
	if c := candidateFor(cands, "seller_tva"); assert.NotNil(t, c) {
		assert.Equal(t, "FR32844321098", c.Value)
	}
	if c := candidateFor(cands, "seller_siret"); assert.NotNil(t, c) {
		assert.Equal(t, "84432109800021", c.Value)
	}
	if c := candidateFor(cands, "seller_iban"); assert.NotNil(t, c) {
		assert.Equal(t, "FR7630004000031234567890143", c.Value)
	}
	if c := candidateFor(cands, "currency"); assert.NotNil(t, c) {
		assert.Equal(t, "EUR", c.Value)
	}
}

func TestRegexExtractorEmptyText(t *testing.T) {
	e := NewRegexExtractor(DefaultRegistry())
	assert.Empty(t, e.Extract(&dto.Document{Text: "   \n  "}))
}

func TestRegexExtractorSIRENFallback(t *testing.T) {
	e := NewRegexExtractor(DefaultRegistry())
	cands := e.Extract(&dto.Document{Text: "Facture 2024-07\nSIREN : 844321098\nTotal 10,00"})

	if c := candidateFor(cands, "seller_siret"); assert.NotNil(t, c) {
		assert.Equal(t, "844321098", c.Value)
	}
}

func TestRegexExtractorSiretNeverBecomesTotal(t *testing.T) {
	e := NewRegexExtractor(DefaultRegistry())
	cands := e.Extract(&dto.Document{Text: "SIRET : 84432109800021\nTotal TTC 84432109800021"})
	assert.Nil(t, candidateFor(cands, "total_ttc"))
}

func TestPipelineResolvesSampleInvoice(t *testing.T) {
	amount := 1000.00
	qty := 2
	doc := &dto.Document{
		Text: sampleInvoice,
		LineItems: []dto.LineItem{
			{Ref: "REF", Label: "Prestation de conseil", Qty: &qty, Amount: &amount},
		},
	}

	p := NewPipeline(nil, DefaultRegistry())
	fields := p.Run(doc)

	got := fields.Fields()
	assert.Equal(t, "F-2024-0042", got["invoice_number"])
	assert.Equal(t, "2024-03-15", got["invoice_date"])
	assert.Equal(t, 1000.00, got["total_ht"])
	assert.Equal(t, 200.00, got["total_tva"])
	assert.Equal(t, 1200.00, got["total_ttc"])
	assert.Equal(t, "EUR", got["currency"])
	assert.Equal(t, 1, got["lines_count"])

	confs := fields.Confidences()
	assert.Equal(t, dto.SourceRegex, confs["total_ttc"].Source)
}
