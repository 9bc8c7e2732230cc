package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxPlausibleAmount caps parsed amounts; anything above is an identifier or
// OCR garbage, not an invoice total.
const maxPlausibleAmount = 2_000_000.0

var (
	nonDigitRe    = regexp.MustCompile(`[^0-9]`)
	ibanGroupedRe = regexp.MustCompile(`\b\d{4}(?:[ \x{00A0}]\d{4}){2,}`)
	ibanPrefixRe  = regexp.MustCompile(`^[A-Z]{2}\d{2}`)
)

// NormalizeAmount turns a locale-ambiguous numeric string ("1 234,56",
// "1.234,56", "1234.56") into a 2-decimal amount. It returns nil for strings
// that look like identifiers rather than amounts (SIRET, phone numbers,
// IBANs) and for values outside the plausible invoice range.
func NormalizeAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// A long run of digits with no separator and no currency mark is an ID,
	// not an amount (SIRET is 14 digits, phone numbers 10+).
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) >= 11 && !strings.ContainsAny(s, ",.") && !hasCurrencyMark(s) {
		return nil
	}
	// IBAN shapes: "FR76 3000 4000 ..." or grouped 4-digit blocks.
	if ibanPrefixRe.MatchString(strings.ReplaceAll(s, " ", "")) || ibanGroupedRe.MatchString(s) {
		return nil
	}

	for _, sym := range []string{"€", "$", "£", "EUR"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00A0', '\u202F':
			return -1
		}
		return r
	}, s)
	s = strings.Trim(s, ".,-:")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The last-occurring separator is the decimal mark.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if v < 0 || v > maxPlausibleAmount {
		return nil
	}
	v = Round2(v)
	return &v
}

// RescaleSuspect corrects lost-decimal-point OCR errors: a value that is
// ≥ 100 000, ends in 000 and lands near the reference once divided by 100
// ("624000" read where "6240.00" was printed) is scaled back down. The
// reference is a trusted amount from the same document, typically the HT
// total. Returns the input unchanged when the heuristic does not apply.
func RescaleSuspect(v float64, reference float64) float64 {
	if v < 100_000 || reference <= 0 {
		return v
	}
	if math.Mod(v, 1000) != 0 {
		return v
	}
	scaled := v / 100
	if scaled >= reference/10 && scaled <= reference*10 {
		return Round2(scaled)
	}
	return v
}

// Round2 rounds to 2 decimal places without binary-float drift.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func hasCurrencyMark(s string) bool {
	return strings.ContainsAny(s, "€$£") || strings.Contains(s, "EUR")
}
