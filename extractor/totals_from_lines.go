package extractor

import (
	"github.com/facturex/invoice-extractor/dto"
)

// TotalsFromLines sums the reconstructed line-item amounts and offers the
// result as a tax-excluded total. Weak evidence (invoice tables usually list
// HT amounts, but not always), hence the low base confidence.
type TotalsFromLines struct{}

func (TotalsFromLines) Name() string { return "totals-from-lines" }

func (TotalsFromLines) Extract(doc *dto.Document) []dto.Candidate {
	var sum float64
	for _, item := range doc.LineItems {
		if item.Amount != nil {
			sum += *item.Amount
		}
	}
	if sum <= 0 {
		return nil
	}
	return []dto.Candidate{{
		Field:      "total_ht",
		Value:      Round2(sum),
		Confidence: 0.65,
		Source:     dto.SourceTable,
	}}
}
