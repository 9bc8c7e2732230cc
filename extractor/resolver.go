package extractor

import (
	"math"
	"sort"

	"github.com/facturex/invoice-extractor/dto"
)

// sourceWeights ranks extraction strategies. Direct pattern hits are the most
// trustworthy; positional and label heuristics slightly less; entity
// recognition less again. Unlisted sources get the default.
var sourceWeights = map[dto.Source]float64{
	dto.SourceRegex:     1.00,
	dto.SourceLabelProx: 0.95,
	dto.SourceTable:     0.95,
	dto.SourceXPos:      0.95,
	dto.SourceNER:       0.90,
}

const defaultSourceWeight = 0.85

func sourceWeight(s dto.Source) float64 {
	if w, ok := sourceWeights[s]; ok {
		return w
	}
	return defaultSourceWeight
}

// FieldSet accumulates resolved fields. The single write rule lives here:
// the first resolved value for a field wins unless the resolver itself
// supersedes it, so callers never need overwrite guards.
type FieldSet struct {
	fields map[string]any
	conf   map[string]dto.ResolvedField
}

func NewFieldSet() *FieldSet {
	return &FieldSet{
		fields: make(map[string]any),
		conf:   make(map[string]dto.ResolvedField),
	}
}

// SetIfAbsent records a field with its audit trail. A later call for the
// same field is a no-op.
func (fs *FieldSet) SetIfAbsent(field string, value any, prov dto.ResolvedField) {
	if _, ok := fs.fields[field]; ok {
		return
	}
	fs.fields[field] = value
	fs.conf[field] = prov
}

// SetDerived records a computed value with no provenance of its own. Used for
// counts and algebraic completions; absent-only like SetIfAbsent.
func (fs *FieldSet) SetDerived(field string, value any) {
	if _, ok := fs.fields[field]; ok {
		return
	}
	fs.fields[field] = value
}

// Supersede overwrites a field's value while keeping the original audit
// record, so a reconciled total still shows where the raw candidate came from.
func (fs *FieldSet) Supersede(field string, value any) {
	fs.fields[field] = value
}

// Float returns the field as a float pointer, or nil when absent or not
// numeric.
func (fs *FieldSet) Float(field string) *float64 {
	v, ok := fs.fields[field]
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func (fs *FieldSet) Fields() map[string]any                    { return fs.fields }
func (fs *FieldSet) Confidences() map[string]dto.ResolvedField { return fs.conf }

// Resolver reduces a merged candidate list to one value per field. Stateless;
// resolving the same list twice yields identical fields and alternate order.
type Resolver struct {
	maxAlternates int
}

func NewResolver() *Resolver {
	return &Resolver{maxAlternates: 2}
}

// ResolveSet weights and ranks candidates per field, keeps the winner plus up
// to two alternates, then completes the totals triple when two of its three
// members resolved.
func (r *Resolver) ResolveSet(cands []dto.Candidate, lines []dto.LineItem) *FieldSet {
	byField := make(map[string][]dto.Candidate)
	var order []string
	for _, c := range cands {
		if c.Field == "" || c.Value == nil {
			continue
		}
		if _, seen := byField[c.Field]; !seen {
			order = append(order, c.Field)
		}
		byField[c.Field] = append(byField[c.Field], c)
	}

	fs := NewFieldSet()
	for _, field := range order {
		group := byField[field]
		weighted := make([]dto.Candidate, len(group))
		copy(weighted, group)
		for i := range weighted {
			weighted[i].Confidence = weightCandidate(weighted[i])
		}
		// Stable sort: equal weights keep extractor emission order, which is
		// itself fixed, so ranking is deterministic.
		sort.SliceStable(weighted, func(i, j int) bool {
			return weighted[i].Confidence > weighted[j].Confidence
		})

		best := weighted[0]
		if best.Confidence <= 0 {
			continue
		}
		prov := dto.ResolvedField{
			Value:      best.Value,
			Confidence: best.Confidence,
			Source:     best.Source,
		}
		for _, alt := range weighted[1:] {
			if len(prov.Alternates) == r.maxAlternates {
				break
			}
			if alt.Confidence <= 0 {
				continue
			}
			prov.Alternates = append(prov.Alternates, dto.Alternate{
				Value:      alt.Value,
				Confidence: alt.Confidence,
				Source:     alt.Source,
			})
		}
		fs.SetIfAbsent(field, best.Value, prov)
	}

	r.completeTotals(fs)
	if len(lines) > 0 {
		fs.SetDerived("lines_count", len(lines))
	}
	return fs
}

// Resolve is the map-pair form of ResolveSet for callers that only want the
// final output contract.
func (r *Resolver) Resolve(cands []dto.Candidate, lines []dto.LineItem) (map[string]any, map[string]dto.ResolvedField) {
	fs := r.ResolveSet(cands, lines)
	return fs.Fields(), fs.Confidences()
}

// completeTotals fills the single missing member of the HT/TVA/TTC triple by
// addition or subtraction. Runs once, after per-field resolution.
func (r *Resolver) completeTotals(fs *FieldSet) {
	ht := fs.Float("total_ht")
	tva := fs.Float("total_tva")
	ttc := fs.Float("total_ttc")

	switch {
	case ht != nil && tva != nil && ttc == nil:
		fs.SetDerived("total_ttc", Round2(*ht+*tva))
	case ttc != nil && tva != nil && ht == nil:
		fs.SetDerived("total_ht", Round2(*ttc-*tva))
	case ttc != nil && ht != nil && tva == nil:
		if d := Round2(*ttc - *ht); d >= 0 {
			fs.SetDerived("total_tva", d)
		}
	}
}

// weightCandidate computes the resolver's weighted confidence. Rounded to 3
// decimals so float noise cannot flip the ranking between runs.
func weightCandidate(c dto.Candidate) float64 {
	w := c.Confidence * sourceWeight(c.Source) * ValidatorScore(c.Field, c.Value)
	return round3(clamp01(w))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
