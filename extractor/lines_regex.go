package extractor

import (
	"strconv"
	"strings"

	"github.com/facturex/invoice-extractor/dto"
)

// LineParser is the fallback line-item strategy for when positional tokens
// are missing or the table reconstruction found no header: it reads rows of
// the shape "[REF] LABEL  QTY  UNIT  AMOUNT" straight out of the raw text.
type LineParser struct {
	patterns *PatternRegistry
	noise    *footerNoise
}

func NewLineParser(patterns *PatternRegistry) *LineParser {
	return &LineParser{patterns: patterns, noise: newFooterNoise()}
}

// Parse extracts line items from raw text. Rows hitting the footer-noise
// vocabulary are dropped, survivors are deduplicated like table rows.
func (p *LineParser) Parse(text string) []dto.LineItem {
	re := p.patterns.Line
	names := re.SubexpNames()
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if n != "" {
			idx[n] = i
		}
	}

	var items []dto.LineItem
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		ref := strings.TrimSpace(m[idx["ref"]])
		label := strings.TrimSpace(m[idx["label"]])
		if p.noise.Hit(ref + " " + label) {
			continue
		}
		// A label that is itself a total or label keyword is a summary row.
		if strings.Contains(strings.ToLower(label), "total") {
			continue
		}

		item := dto.LineItem{Ref: ref, Label: label}
		if q, err := strconv.Atoi(m[idx["qty"]]); err == nil && q > 0 {
			item.Qty = &q
		}
		item.UnitPrice = NormalizeAmount(m[idx["pu"]])
		item.Amount = NormalizeAmount(m[idx["amt"]])

		if item.Label == "" {
			continue
		}
		if item.Amount == nil && item.UnitPrice != nil && item.Qty != nil {
			v := Round2(*item.UnitPrice * float64(*item.Qty))
			item.Amount = &v
		}
		if item.UnitPrice == nil && item.Amount == nil {
			continue
		}
		items = append(items, item)
	}
	return dedupeRows(items)
}
