package extractor

import (
	"math"

	"github.com/facturex/invoice-extractor/dto"
)

// Reconciler enforces the arithmetic relationship between the three invoice
// totals: HT + TVA = TTC. It fills missing members from a known VAT rate or
// by pairwise subtraction, and cross-checks the result against the summed
// line-item amounts.
type Reconciler struct {
	tolAbs float64
	tolPct float64
}

func NewReconciler() *Reconciler {
	return &Reconciler{tolAbs: 1.5, tolPct: 0.01}
}

// Reconcile completes a totals triple. vatRate is the percentage (20 for
// 20%), nil when unknown. Inputs are never mutated; the returned triple holds
// fresh values. With fewer than one known member and no rate this is a no-op.
func (r *Reconciler) Reconcile(in dto.TotalsTriple, vatRate *float64) dto.TotalsTriple {
	out := dto.TotalsTriple{
		HT:  copyFloat(in.HT),
		TVA: copyFloat(in.TVA),
		TTC: copyFloat(in.TTC),
	}

	if vatRate != nil && *vatRate > 0 {
		rate := *vatRate / 100
		switch {
		case out.TTC != nil && out.HT == nil && out.TVA == nil:
			ht := Round2(*out.TTC / (1 + rate))
			tva := Round2(*out.TTC - ht)
			out.HT, out.TVA = &ht, &tva
		case out.HT != nil && out.TVA == nil && out.TTC == nil:
			tva := Round2(*out.HT * rate)
			ttc := Round2(*out.HT + tva)
			out.TVA, out.TTC = &tva, &ttc
		}
	}

	// Pairwise completion works without a rate.
	switch {
	case out.HT != nil && out.TVA != nil && out.TTC == nil:
		v := Round2(*out.HT + *out.TVA)
		out.TTC = &v
	case out.TTC != nil && out.TVA != nil && out.HT == nil:
		v := Round2(*out.TTC - *out.TVA)
		out.HT = &v
	case out.TTC != nil && out.HT != nil && out.TVA == nil:
		if v := Round2(*out.TTC - *out.HT); v >= 0 {
			out.TVA = &v
		}
	}
	return out
}

// ReconcileWithLines reconciles the triple, then uses the summed line-item
// amounts as a basis check: a line sum within tolerance of the stated TTC is
// treated as the TTC; a sum further off is treated as the HT (tables usually
// list tax-excluded amounts). The triple is then rebuilt from that basis.
func (r *Reconciler) ReconcileWithLines(in dto.TotalsTriple, vatRate *float64, lineSum float64) dto.TotalsTriple {
	out := r.Reconcile(in, vatRate)
	if lineSum <= 0 {
		return out
	}
	sum := Round2(lineSum)

	if out.TTC != nil && r.withinTolerance(sum, *out.TTC) {
		out.TTC = &sum
		if out.HT != nil {
			v := Round2(sum - *out.HT)
			if v >= 0 {
				out.TVA = &v
			}
		}
		return r.Reconcile(out, vatRate)
	}

	if out.HT == nil {
		out.HT = &sum
		return r.Reconcile(out, vatRate)
	}
	return out
}

// Apply writes a reconciled triple back into the field set. Raw candidate
// values the reconciliation corrected are superseded; members that were
// missing are filled as derived values. A suspect stated TTC is rescaled
// against the HT total before reconciling.
func (r *Reconciler) Apply(fs *FieldSet, vatRate *float64, lineSum float64) dto.TotalsTriple {
	stated := dto.TotalsTriple{
		HT:  fs.Float("total_ht"),
		TVA: fs.Float("total_tva"),
		TTC: fs.Float("total_ttc"),
	}
	in := stated
	if in.TTC != nil && in.HT != nil {
		v := RescaleSuspect(*in.TTC, *in.HT)
		in.TTC = &v
	}

	out := r.ReconcileWithLines(in, vatRate, lineSum)

	write := func(field string, prev, next *float64) {
		if next == nil {
			return
		}
		if prev == nil {
			fs.SetDerived(field, *next)
			return
		}
		if *prev != *next {
			fs.Supersede(field, *next)
		}
	}
	write("total_ht", stated.HT, out.HT)
	write("total_tva", stated.TVA, out.TVA)
	write("total_ttc", stated.TTC, out.TTC)
	return out
}

// withinTolerance accepts a and b as equal when they differ by at most 1.5
// absolute or 1% of the larger value.
func (r *Reconciler) withinTolerance(a, b float64) bool {
	diff := math.Abs(a - b)
	larger := math.Max(math.Abs(a), math.Abs(b))
	return diff <= r.tolAbs || diff <= r.tolPct*larger
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
