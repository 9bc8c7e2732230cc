package extractor

import (
	"strings"

	"github.com/facturex/invoice-extractor/dto"
	"github.com/facturex/invoice-extractor/utils"
)

// regexBaseConfidence is the base confidence of direct-pattern hits.
const regexBaseConfidence = 0.9

// RegexExtractor applies the pattern registry directly to the document text:
// invoice number, date, party blocks, identifiers and label-adjacent totals.
type RegexExtractor struct {
	patterns *PatternRegistry
}

func NewRegexExtractor(patterns *PatternRegistry) *RegexExtractor {
	return &RegexExtractor{patterns: patterns}
}

func (e *RegexExtractor) Name() string { return "regex" }

func (e *RegexExtractor) Extract(doc *dto.Document) []dto.Candidate {
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var cands []dto.Candidate
	emit := func(field string, value any) {
		if value == nil {
			return
		}
		if s, ok := value.(string); ok && s == "" {
			return
		}
		cands = append(cands, dto.Candidate{
			Field:      field,
			Value:      value,
			Confidence: regexBaseConfidence,
			Source:     dto.SourceRegex,
			Meta:       map[string]any{"patterns": e.patterns.Version},
		})
	}

	emit("invoice_number", e.invoiceNumber(text))
	if d := utils.ParseDate(text); d != "" {
		emit("invoice_date", d)
	}

	totals := e.totals(text)
	for _, field := range []string{"total_ht", "total_tva", "total_ttc"} {
		if v, ok := totals[field]; ok {
			emit(field, v)
		}
	}

	seller, buyer := e.parties(text)
	emit("seller", seller)
	emit("buyer", buyer)

	if tva := e.patterns.VATID.FindString(text); tva != "" {
		emit("seller_tva", strings.ReplaceAll(tva, " ", ""))
	}
	emit("seller_siret", e.siret(text))
	if iban := e.iban(text); iban != "" {
		emit("seller_iban", iban)
	}
	emit("currency", DetectCurrency(text))

	return cands
}

func (e *RegexExtractor) invoiceNumber(text string) string {
	if n := FirstGroup(e.patterns.InvoiceNumber, text); n != "" {
		return n
	}
	return FirstGroup(e.patterns.AltNumber, text)
}

// totals scans line by line: a line naming a total gets its amount captured
// from the same line. TTC wins over HT wins over TVA when a line matches
// several vocabularies ("Total TTC" contains both).
func (e *RegexExtractor) totals(text string) map[string]float64 {
	out := make(map[string]float64, 3)
	for _, line := range strings.Split(text, "\n") {
		var field string
		switch {
		case e.patterns.TotalTTCNear.MatchString(line):
			field = "total_ttc"
		case e.patterns.TotalHTNear.MatchString(line):
			field = "total_ht"
		case e.patterns.TVANear.MatchString(line):
			field = "total_tva"
		default:
			continue
		}
		if _, seen := out[field]; seen {
			continue
		}
		raw := e.patterns.AmountStrict.FindString(line)
		if raw == "" {
			continue
		}
		if v := NormalizeAmount(raw); v != nil {
			out[field] = *v
		}
	}
	return out
}

func (e *RegexExtractor) parties(text string) (seller, buyer string) {
	if block := FirstGroup(e.patterns.SellerBlock, text); block != "" {
		seller = utils.CleanBlock(block, 6)
	}
	if block := FirstGroup(e.patterns.BuyerBlock, text); block != "" {
		buyer = utils.CleanBlock(block, 6)
	}
	return seller, buyer
}

// siret prefers a labeled SIRET, then any bare 14-digit group, then a
// 9-digit SIREN as a weaker stand-in.
func (e *RegexExtractor) siret(text string) string {
	if s := FirstGroup(e.patterns.SIRET, text); s != "" {
		return s
	}
	if s := e.patterns.SIRETBare.FindString(text); s != "" {
		return s
	}
	return FirstGroup(e.patterns.SIREN, text)
}

func (e *RegexExtractor) iban(text string) string {
	if m := e.patterns.IBAN.FindString(text); m != "" {
		return strings.ReplaceAll(m, " ", "")
	}
	return e.patterns.IBANLoose.FindString(text)
}
