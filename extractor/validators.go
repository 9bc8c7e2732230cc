package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDateRe  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	frIBANRe   = regexp.MustCompile(`\bFR\d{12,}\b`)
	siretishRe = regexp.MustCompile(`\b\d{9,14}\b`)
)

// ValidatorScore returns a plausibility multiplier in [0,1] for a candidate
// value. It never rejects outright except for empty values; implausible but
// conceivable values just lose weight against better-shaped competitors.
func ValidatorScore(field string, value any) float64 {
	if value == nil {
		return 0
	}
	s := strings.TrimSpace(fmt.Sprint(value))
	if s == "" {
		return 0
	}

	switch field {
	case "total_ht", "total_tva", "total_ttc":
		v, ok := toFloat(value)
		if !ok {
			return 0
		}
		if v >= 0 && v <= 5_000_000 {
			return 1.0
		}
		return 0.6
	case "invoice_date":
		if isoDateRe.MatchString(s) {
			return 0.9
		}
		return 0.6
	case "seller_iban":
		if frIBANRe.MatchString(strings.ReplaceAll(s, " ", "")) {
			return 1.0
		}
		return 0.7
	case "seller_siret":
		if siretishRe.MatchString(s) {
			return 1.0
		}
		return 0.6
	case "seller", "buyer":
		// Address blocks need some substance.
		if len(s) >= 8 {
			return 0.9
		}
		return 0.5
	}
	return 0.8
}

// toFloat coerces the value shapes candidates carry (parsed floats, raw
// strings from loose captures) into a float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
