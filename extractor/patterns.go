package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// PatternsVersion identifies the pattern set compiled by DefaultRegistry.
const PatternsVersion = "v1.0.0"

// PatternRegistry is an immutable set of compiled patterns handed explicitly
// to the extractors. Keeping it a value passed around (instead of package
// globals) lets tests run different pattern versions side by side.
type PatternRegistry struct {
	Version string

	InvoiceNumber *regexp.Regexp
	AltNumber     *regexp.Regexp
	Date          *regexp.Regexp

	AmountStrict *regexp.Regexp
	AmountLoose  *regexp.Regexp
	TotalTTCNear *regexp.Regexp
	TotalHTNear  *regexp.Regexp
	TVANear      *regexp.Regexp
	VATRate      *regexp.Regexp

	SellerBlock *regexp.Regexp
	BuyerBlock  *regexp.Regexp

	VATID     *regexp.Regexp
	SIRET     *regexp.Regexp
	SIRETBare *regexp.Regexp
	SIREN     *regexp.Regexp
	IBAN      *regexp.Regexp
	IBANLoose *regexp.Regexp

	Line *regexp.Regexp
}

// DefaultRegistry compiles the v1 pattern set. French labels first, English
// fallbacks where invoices commonly mix both.
func DefaultRegistry() *PatternRegistry {
	return &PatternRegistry{
		Version: PatternsVersion,

		InvoiceNumber: regexp.MustCompile(`(?i)(?:facture\s*(?:n°|no|num(?:éro)?|#)?\s*[:\-\s]*|invoice\s*(?:no|#)?\s*[:\-\s]*)([A-Za-z0-9._\-/]{3,})`),
		AltNumber:     regexp.MustCompile(`(?i)\b(?:n°|no|num(?:éro)?|#)\s*[:\-\s]*([A-Za-z0-9._\-/]{3,})`),
		Date:          regexp.MustCompile(`(?:^|[^0-9])((?:\d{1,2}[./-]){2}\d{2,4}|\d{4}-\d{2}-\d{2})(?:$|[^0-9])`),

		AmountStrict: regexp.MustCompile(`\b\d{1,3}(?:[ \x{00A0}\x{202F}.]\d{3})*[.,]\d{2}\b`),
		AmountLoose:  regexp.MustCompile(`([0-9][0-9., \x{00A0}\x{202F}]*)\s*€?`),
		TotalTTCNear: regexp.MustCompile(`(?i)(total\s*t\s*t\s*c|\bttc\b|montant\s*ttc|total\s+amount|grand\s+total|total\s*à\s*payer)`),
		TotalHTNear:  regexp.MustCompile(`(?i)(total\s*h\s*t|\bht\b|montant\s*ht|subtotal|sous-total)`),
		TVANear:      regexp.MustCompile(`(?i)(\btva\b|\btaxe\b|\bvat\b)`),
		VATRate:      regexp.MustCompile(`(\d{1,2}(?:[.,]\d)?)\s*%`),

		SellerBlock: regexp.MustCompile(`(?is)(?:vendeur|société|entreprise|émetteur|emetteur|from)\s*[:\n]+(.{10,300})`),
		BuyerBlock:  regexp.MustCompile(`(?is)(?:client|destinataire|acheteur|to)\s*[:\n]+(.{10,300})`),

		VATID:     regexp.MustCompile(`\bFR[A-Z0-9]{2}\s?\d{9}\b`),
		SIRET:     regexp.MustCompile(`(?i)\bSIRET\b\s*:?\s*(\d{14})`),
		SIRETBare: regexp.MustCompile(`\b\d{14}\b`),
		SIREN:     regexp.MustCompile(`(?i)\bSIREN\b\s*:?\s*(\d{9})`),
		IBAN:      regexp.MustCompile(`\bFR\d{2}(?:\s?\d{4}){5}\s?\d{3}\b`),
		IBANLoose: regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`),

		// Fallback line-item shape: [REF] LABEL QTY UNIT AMOUNT on one line.
		// Inside an amount a space must be followed by a digit (thousands
		// grouping), so the column gap between unit price and amount is never
		// swallowed.
		Line: regexp.MustCompile(`(?m)^\s*(?:(?P<ref>[A-Z][A-Z0-9\-]{1,11})\s+)?(?P<label>\S.{2,59}?)\s{2,}(?P<qty>\d{1,3})\s+(?P<pu>\d(?:[\d\x{00A0}.,]| \d)*)\s+(?P<amt>\d(?:[\d\x{00A0}.,]| \d)*)\s*$`),
	}
}

// FirstGroup returns the first capture group of the first match, trimmed,
// or "" when the pattern does not match.
func FirstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseVATRate finds a VAT rate mention ("20 %", "5,5%") and returns the
// percentage, or nil when no plausible rate appears.
func (p *PatternRegistry) ParseVATRate(text string) *float64 {
	for _, m := range p.VATRate.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", ".")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		// Standard French rates; anything else is likely a discount mention.
		switch v {
		case 20, 10, 8.5, 5.5, 2.1:
			return &v
		}
	}
	return nil
}

// DetectCurrency picks a currency code from symbols or codes in the text.
// Defaults to EUR, matching the documents this pipeline is built for.
func DetectCurrency(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "GBP"
	case strings.Contains(text, "$") || strings.Contains(text, "USD"):
		return "USD"
	}
	return "EUR"
}
