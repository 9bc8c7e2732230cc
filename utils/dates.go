package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericDateRe = regexp.MustCompile(`\b(?:\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})\b`)
	textualDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:er)?\s+(janv|janvier|févr|fevr|février|fevrier|mars|avr|avril|mai|juin|juil|juillet|août|aout|sept|septembre|oct|octobre|nov|novembre|déc|dec|décembre|decembre)\.?\s+(\d{2,4})\b`)
	nearInvoiceRe = regexp.MustCompile(`(?i)facture.{0,40}?(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})`)
)

// ParseDate finds a plausible invoice date in free text and returns it in ISO
// form (YYYY-MM-DD), or "" when nothing reasonable is found. A date sitting
// next to the word "facture" wins; otherwise the most recent valid date in
// the document does, since invoices usually quote older dates (orders,
// delivery) alongside their own.
func ParseDate(text string) string {
	s := strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(text)

	if m := nearInvoiceRe.FindStringSubmatch(s); m != nil {
		if d, ok := parseNumericDate(m[1]); ok {
			return d.Format("2006-01-02")
		}
	}

	var dates []time.Time
	for _, raw := range numericDateRe.FindAllString(s, -1) {
		if d, ok := parseNumericDate(raw); ok {
			dates = append(dates, d)
		}
	}
	for _, m := range textualDateRe.FindAllStringSubmatch(s, -1) {
		if d, ok := parseTextualDate(m[1], m[2], m[3]); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return ""
	}
	latest := dates[0]
	for _, d := range dates[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest.Format("2006-01-02")
}

func parseNumericDate(raw string) (time.Time, bool) {
	d := strings.NewReplacer(".", "/", "-", "/").Replace(raw)
	parts := strings.Split(d, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var t time.Time
	var err error
	if len(parts[0]) == 4 {
		t, err = time.Parse("2006/1/2", d)
	} else {
		year := parts[2]
		if len(year) == 2 {
			if y, convErr := strconv.Atoi(year); convErr == nil {
				year = strconv.Itoa(2000 + y)
			}
		}
		// French order: day first.
		t, err = time.Parse("2/1/2006", parts[0]+"/"+parts[1]+"/"+year)
	}
	if err != nil || !plausibleYear(t) {
		return time.Time{}, false
	}
	return t, true
}

func parseTextualDate(dayStr, monthName, yearStr string) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	month := frenchMonth(monthName)
	if month == 0 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow ("31 février" becomes March); reject it.
	if t.Day() != day || t.Month() != month || !plausibleYear(t) {
		return time.Time{}, false
	}
	return t, true
}

func frenchMonth(name string) time.Month {
	n := FoldASCII(name)
	switch {
	case strings.HasPrefix(n, "juil"):
		return time.July
	case strings.HasPrefix(n, "juin"):
		return time.June
	}
	prefixes := map[string]time.Month{
		"jan": time.January, "fev": time.February, "mar": time.March,
		"avr": time.April, "mai": time.May, "aou": time.August,
		"sep": time.September, "oct": time.October, "nov": time.November,
		"dec": time.December,
	}
	if len(n) >= 3 {
		if m, ok := prefixes[n[:3]]; ok {
			return m
		}
	}
	return 0
}

func plausibleYear(t time.Time) bool {
	return t.Year() >= 1990 && t.Year() <= 2100
}
