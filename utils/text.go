package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanBlock trims a captured multi-line block (seller/buyer address zone) to
// its first maxLines non-empty lines.
func CleanBlock(block string, maxLines int) string {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == maxLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII lowercases and strips diacritics: "Désignation" -> "designation".
func FoldASCII(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// NormalizeHeaderCell folds a table header cell down to bare lowercase
// letters and digits so OCR punctuation ("P.U.", "Qté :") does not hide the
// column role.
func NormalizeHeaderCell(s string) string {
	folded := FoldASCII(s)
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
