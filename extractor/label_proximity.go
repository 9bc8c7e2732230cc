package extractor

import (
	"regexp"
	"strings"

	"github.com/facturex/invoice-extractor/dto"
)

// labelRule binds a field to its label vocabulary. Amount rules capture a
// number near the label; block rules capture the following lines.
type labelRule struct {
	field  string
	re     *regexp.Regexp
	base   float64
	amount bool
	window int
}

// LabelProximityExtractor scans the document line by line; a line matching a
// field's label vocabulary yields the value found in a bounded window after
// it. The vocabularies tolerate common OCR damage ("Total H1" for "Total HT").
type LabelProximityExtractor struct {
	rules    []labelRule
	anyLabel *regexp.Regexp
	amountRe *regexp.Regexp
}

func NewLabelProximityExtractor() *LabelProximityExtractor {
	rules := []labelRule{
		// Leading \b is avoided on purpose: RE2 word boundaries are ASCII-only
		// and never match next to "É".
		{field: "seller", re: regexp.MustCompile(`(?i)(?:Émetteur|Emetteur|Vendeur|Seller|From)\b`), base: 0.70, window: 4},
		{field: "buyer", re: regexp.MustCompile(`(?i)\b(?:Client|Acheteur|Buyer|Destinataire)\b`), base: 0.70, window: 4},
		{field: "total_ht", re: regexp.MustCompile(`(?i)\bTotal\s*[HNM][T1]\b`), base: 0.75, amount: true, window: 2},
		{field: "total_ttc", re: regexp.MustCompile(`(?i)\bTotal\s*(?:T\s*T\s*[C€]|à\s*payer)`), base: 0.80, amount: true, window: 2},
		{field: "total_tva", re: regexp.MustCompile(`(?i)\bTVA\b`), base: 0.70, amount: true, window: 2},
	}
	return &LabelProximityExtractor{
		rules:    rules,
		anyLabel: regexp.MustCompile(`(?i)(?:Émetteur|Emetteur|Vendeur|Seller|From|Client|Acheteur|Buyer|Destinataire|Total|TVA|Date|Facture|Invoice|SIRET|IBAN)\b`),
		amountRe: regexp.MustCompile(`[0-9][0-9., \x{00A0}\x{202F}]*`),
	}
}

func (e *LabelProximityExtractor) Name() string { return "label-prox" }

func (e *LabelProximityExtractor) Extract(doc *dto.Document) []dto.Candidate {
	lines := strings.Split(doc.Text, "\n")
	var cands []dto.Candidate

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, rule := range e.rules {
			if !rule.re.MatchString(line) {
				continue
			}
			if rule.amount {
				// Strip the label itself so a damaged label ("Total H1")
				// cannot leak its digits into the amount scan.
				stripped := rule.re.ReplaceAllString(line, " ")
				if v := e.nearAmount(stripped, lines, i, rule.window); v != nil {
					cands = append(cands, dto.Candidate{
						Field:      rule.field,
						Value:      *v,
						Confidence: rule.base,
						Source:     dto.SourceLabelProx,
					})
				}
			} else if chunk := e.blockAfter(lines, i, rule.window); chunk != "" {
				cands = append(cands, dto.Candidate{
					Field:      rule.field,
					Value:      chunk,
					Confidence: rule.base,
					Source:     dto.SourceLabelProx,
				})
			}
		}
	}
	return cands
}

// nearAmount looks for an amount on the label line or the few lines after it.
func (e *LabelProximityExtractor) nearAmount(labelLine string, lines []string, idx, window int) *float64 {
	end := idx + window + 1
	if end > len(lines) {
		end = len(lines)
	}
	buf := strings.Join(append([]string{labelLine}, lines[idx+1:end]...), " ")
	matches := e.amountRe.FindAllString(buf, -1)
	// Decimal-bearing matches first: "TVA 20 % 200,00" should yield 200.00,
	// not the rate.
	for _, raw := range matches {
		if strings.ContainsAny(raw, ",.") {
			if v := NormalizeAmount(raw); v != nil {
				return v
			}
		}
	}
	for _, raw := range matches {
		if v := NormalizeAmount(raw); v != nil {
			return v
		}
	}
	return nil
}

// blockAfter captures the lines following a party label, stopping at a blank
// line or the next recognized label. Capped at 220 characters: beyond that
// it is body text, not an address block.
func (e *LabelProximityExtractor) blockAfter(lines []string, idx, window int) string {
	var parts []string
	for j := idx + 1; j < len(lines) && len(parts) < window; j++ {
		l := strings.TrimSpace(lines[j])
		if l == "" || e.anyLabel.MatchString(l) {
			break
		}
		parts = append(parts, l)
	}
	chunk := strings.Join(parts, " ")
	if r := []rune(chunk); len(r) > 220 {
		chunk = string(r[:220])
	}
	return strings.TrimSpace(chunk)
}
