package dto

// Source identifies the extraction strategy that produced a candidate.
type Source string

const (
	SourceRegex     Source = "regex"
	SourceLabelProx Source = "label-prox"
	SourceTable     Source = "table"
	SourceXPos      Source = "xpos"
	SourceNER       Source = "ner"
	// SourceQR is emitted by the payment-QR reader. It is not part of the
	// weighted source table and falls back to the default weight.
	SourceQR Source = "qr"
)

// BBox is a positional bounding box: page index plus coordinates.
type BBox struct {
	Page int     `json:"page"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
}

// Candidate is an unresolved field guess. Candidates are immutable once
// created; the resolver's weighting pass is the only place Confidence is
// rewritten, exactly once.
type Candidate struct {
	Field      string         `json:"field"`
	Value      any            `json:"value"`
	Confidence float64        `json:"confidence"`
	Source     Source         `json:"source"`
	BBox       *BBox          `json:"bbox,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Token is one positioned word from the PDF layout extractor.
// Coordinates follow the usual layout convention: y grows downward,
// Top < Bottom.
type Token struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// LineItem is one reconstructed invoice table row. Qty, UnitPrice and Amount
// are pointers because any of them may be unreadable on a given document.
type LineItem struct {
	Ref       string   `json:"ref,omitempty" csv:"ref"`
	Label     string   `json:"label" csv:"label"`
	Qty       *int     `json:"qty,omitempty" csv:"qty"`
	UnitPrice *float64 `json:"unit_price,omitempty" csv:"unit_price"`
	Amount    *float64 `json:"amount,omitempty" csv:"amount"`
}

// Alternate is a runner-up candidate kept for audit.
type Alternate struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// ResolvedField is the per-field audit record produced by the resolver:
// the winning value plus up to two alternates.
type ResolvedField struct {
	Value      any         `json:"value"`
	Confidence float64     `json:"confidence"`
	Source     Source      `json:"source"`
	Alternates []Alternate `json:"alternates,omitempty"`
}

// TotalsTriple holds the three invoice totals. Nil means unknown. Soft
// invariant: HT + TVA ≈ TTC within tolerance whenever two members are known.
type TotalsTriple struct {
	HT  *float64 `json:"ht,omitempty"`
	TVA *float64 `json:"tva,omitempty"`
	TTC *float64 `json:"ttc,omitempty"`
}

// Document is the typed input handed to the candidate extractors: the raw
// document text plus the line items reconstructed upstream. Extractors never
// see files, images or tokens.
type Document struct {
	Text      string
	LineItems []LineItem
}
