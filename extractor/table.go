package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/facturex/invoice-extractor/dto"
	"github.com/facturex/invoice-extractor/utils"
)

// ColumnRole is the semantic role of one invoice table column.
type ColumnRole string

const (
	RoleRef    ColumnRole = "ref"
	RoleLabel  ColumnRole = "label"
	RoleQty    ColumnRole = "qty"
	RoleUnit   ColumnRole = "unit"
	RoleAmount ColumnRole = "amount"
)

// ColumnBoundary is the x-interval owned by one column. The boundaries of a
// page partition the x-axis: adjacent boundaries share exactly one edge, the
// first Left is -Inf and the last Right is +Inf.
type ColumnBoundary struct {
	Role  ColumnRole
	Left  float64
	Right float64
}

// roleVocabulary is ordered: when a header cell could plausibly match two
// roles the earlier one wins, so reconstruction is deterministic.
type roleVocabulary struct {
	role  ColumnRole
	terms []string
}

// TableReconstructor infers line items from positioned word tokens when the
// document has no explicit table grid: it clusters tokens into rows, locates
// a header naming the column roles, derives column boundaries from the header
// token midpoints and assigns body tokens to columns by x position.
type TableReconstructor struct {
	rowTolerance float64
	headerMin    int
	vocab        []roleVocabulary
	noise        *footerNoise
}

func NewTableReconstructor() *TableReconstructor {
	return &TableReconstructor{
		rowTolerance: 6,
		headerMin:    3,
		vocab: []roleVocabulary{
			{RoleRef, []string{"ref", "reference", "code"}},
			{RoleLabel, []string{"designation", "description", "libelle", "article", "prestation", "detail"}},
			{RoleQty, []string{"qte", "quantite", "qty", "quantity"}},
			{RoleUnit, []string{"pu", "prixunitaire", "unitaire", "unitprice", "tarif"}},
			{RoleAmount, []string{"montant", "total", "amount"}},
		},
		noise: newFooterNoise(),
	}
}

// Reconstruct builds deduplicated line items from per-page token slices.
// Structural trouble on a page (no header, no parsable rows) just skips the
// page; the regex line parser downstream gets its chance instead. A panic in
// here must never reach the caller.
func (t *TableReconstructor) Reconstruct(pages [][]dto.Token) (items []dto.LineItem) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
		}
	}()
	var rows []dto.LineItem
	for _, tokens := range pages {
		rows = append(rows, t.reconstructPage(tokens)...)
	}
	return dedupeRows(rows)
}

func (t *TableReconstructor) reconstructPage(tokens []dto.Token) []dto.LineItem {
	if len(tokens) == 0 {
		return nil
	}
	rows := t.clusterRows(tokens)

	headerIdx, mids := t.findHeader(rows)
	if headerIdx < 0 {
		return nil
	}
	bounds := BuildBoundaries(mids)

	// The table body stops at the first "total" row below the header.
	end := len(rows)
	for i := headerIdx + 1; i < len(rows); i++ {
		if strings.Contains(utils.FoldASCII(rowText(rows[i])), "total") {
			end = i
			break
		}
	}

	var items []dto.LineItem
	for _, row := range rows[headerIdx+1 : end] {
		if item, ok := t.rowToItem(row, bounds); ok {
			items = append(items, item)
		}
	}
	return items
}

type tokenRow struct {
	y      float64
	tokens []dto.Token
}

// clusterRows groups tokens into horizontal bands by vertical midpoint.
// Tokens closer than the tolerance to the current band belong to it.
func (t *TableReconstructor) clusterRows(tokens []dto.Token) []tokenRow {
	sorted := make([]dto.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi := (sorted[i].Top + sorted[i].Bottom) / 2
		mj := (sorted[j].Top + sorted[j].Bottom) / 2
		if mi != mj {
			return mi < mj
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var rows []tokenRow
	for _, tok := range sorted {
		mid := (tok.Top + tok.Bottom) / 2
		if len(rows) > 0 && mid-rows[len(rows)-1].y <= t.rowTolerance {
			last := &rows[len(rows)-1]
			last.tokens = append(last.tokens, tok)
			continue
		}
		rows = append(rows, tokenRow{y: mid, tokens: []dto.Token{tok}})
	}
	for i := range rows {
		row := rows[i].tokens
		sort.SliceStable(row, func(a, b int) bool { return row[a].X0 < row[b].X0 })
	}
	return rows
}

// findHeader returns the first row matching at least headerMin of the five
// role vocabularies, with the horizontal midpoint of each matched role.
func (t *TableReconstructor) findHeader(rows []tokenRow) (int, map[ColumnRole]float64) {
	for i, row := range rows {
		hits := make(map[ColumnRole]float64, len(t.vocab))
		for _, tok := range row.tokens {
			cell := utils.NormalizeHeaderCell(tok.Text)
			if cell == "" {
				continue
			}
			for _, rv := range t.vocab {
				if _, taken := hits[rv.role]; taken {
					continue
				}
				if matchesRole(cell, rv.terms) {
					hits[rv.role] = (tok.X0 + tok.X1) / 2
					break
				}
			}
		}
		if len(hits) >= t.headerMin {
			return i, hits
		}
	}
	return -1, nil
}

// matchesRole accepts exact substring hits first, then near-misses one edit
// away, which is what OCR typically does to short header words ("Qte" read
// as "Qle").
func matchesRole(cell string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(cell, term) {
			return true
		}
	}
	for _, term := range terms {
		if len(term) >= 3 && fuzzy.LevenshteinDistance(cell, term) <= 1 {
			return true
		}
	}
	return false
}

// BuildBoundaries turns role midpoints into a gap-free partition of the
// x-axis: the boundary between adjacent roles sits halfway between their
// midpoints, the outermost roles extend to infinity.
func BuildBoundaries(mids map[ColumnRole]float64) []ColumnBoundary {
	type roleMid struct {
		role ColumnRole
		x    float64
	}
	cols := make([]roleMid, 0, len(mids))
	for role, x := range mids {
		cols = append(cols, roleMid{role, x})
	}
	sort.SliceStable(cols, func(i, j int) bool {
		if cols[i].x != cols[j].x {
			return cols[i].x < cols[j].x
		}
		return cols[i].role < cols[j].role
	})

	bounds := make([]ColumnBoundary, len(cols))
	for i, c := range cols {
		left := math.Inf(-1)
		if i > 0 {
			left = (cols[i-1].x + c.x) / 2
		}
		right := math.Inf(1)
		if i < len(cols)-1 {
			right = (c.x + cols[i+1].x) / 2
		}
		bounds[i] = ColumnBoundary{Role: c.role, Left: left, Right: right}
	}
	return bounds
}

// rowToItem assigns each token of a body row to its column and validates the
// assembled cells into a line item.
func (t *TableReconstructor) rowToItem(row tokenRow, bounds []ColumnBoundary) (dto.LineItem, bool) {
	full := rowText(row)
	if t.noise.Hit(full) {
		return dto.LineItem{}, false
	}

	cells := make(map[ColumnRole][]string, len(bounds))
	for _, tok := range row.tokens {
		mid := (tok.X0 + tok.X1) / 2
		for _, b := range bounds {
			if mid >= b.Left && mid < b.Right {
				cells[b.Role] = append(cells[b.Role], tok.Text)
				break
			}
		}
	}

	ref := strings.TrimSpace(strings.Join(cells[RoleRef], " "))
	label := strings.TrimSpace(strings.Join(cells[RoleLabel], " "))
	qty := parseQty(strings.Join(cells[RoleQty], " "))
	unit := NormalizeAmount(strings.Join(cells[RoleUnit], " "))
	amount := NormalizeAmount(strings.Join(cells[RoleAmount], " "))

	if t.noise.Hit(label + " " + ref) {
		return dto.LineItem{}, false
	}
	if label == "" && ref == "" && qty == nil && unit == nil && amount == nil {
		return dto.LineItem{}, false
	}
	if label == "" && ref != "" {
		label = ref
	}
	if amount == nil && unit != nil && qty != nil {
		v := Round2(*unit * float64(*qty))
		amount = &v
	}
	// A quantity alone is a stray number ("30 jours"), not a line item.
	if qty != nil && label == "" && unit == nil && amount == nil {
		return dto.LineItem{}, false
	}

	return dto.LineItem{Ref: ref, Label: label, Qty: qty, UnitPrice: unit, Amount: amount}, true
}

// parseQty reads a small positive integer; invoice quantities above 999 are
// OCR artifacts, not quantities.
func parseQty(s string) *int {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" || len(digits) > 3 {
		return nil
	}
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return &n
}

func rowText(row tokenRow) string {
	parts := make([]string, len(row.tokens))
	for i, tok := range row.tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

func dedupeRows(rows []dto.LineItem) []dto.LineItem {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		key := fmt.Sprintf("%s|%s|%v|%v|%v", r.Ref, r.Label, fmtPtr(r.Qty), fmtPtr(r.UnitPrice), fmtPtr(r.Amount))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func fmtPtr[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

// footerNoise recognizes boilerplate that positionally lands inside the
// table zone: payment terms, bank details, thanks, legal mentions.
type footerNoise struct {
	matcher *ahocorasick.Matcher
}

func newFooterNoise() *footerNoise {
	terms := []string{
		"iban", "bic", "merci", "condition", "penalite", "escompte",
		"reglement", "paiement", "siret", "rcs", "capital", "echeance",
		"tva non applicable", "net a payer", "delai de",
	}
	return &footerNoise{matcher: ahocorasick.NewStringMatcher(terms)}
}

// Hit reports whether the text contains any noise term. Input is folded so
// the vocabulary stays accent-free and lowercase.
func (f *footerNoise) Hit(s string) bool {
	return len(f.matcher.Match([]byte(utils.FoldASCII(s)))) > 0
}
