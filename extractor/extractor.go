package extractor

import (
	"go.uber.org/zap"

	"github.com/facturex/invoice-extractor/dto"
)

// Extractor is one candidate-producing strategy. Strategies are independent:
// each reads the document and emits zero or more candidates, and never
// returns an error. A miss is an empty slice.
type Extractor interface {
	Name() string
	Extract(doc *dto.Document) []dto.Candidate
}

// Pipeline runs an ordered list of strategies over a document and resolves
// their merged candidates. The order is fixed at construction so the same
// document always yields the same candidate list.
type Pipeline struct {
	extractors []Extractor
	resolver   *Resolver
	log        *zap.SugaredLogger
}

// NewPipeline wires the standard strategy chain: direct patterns, label
// proximity, totals-from-lines.
func NewPipeline(log *zap.SugaredLogger, patterns *PatternRegistry) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		extractors: []Extractor{
			NewRegexExtractor(patterns),
			NewLabelProximityExtractor(),
			TotalsFromLines{},
		},
		resolver: NewResolver(),
		log:      log,
	}
}

// Collect runs every strategy in order and returns the merged raw candidates.
func (p *Pipeline) Collect(doc *dto.Document) []dto.Candidate {
	var cands []dto.Candidate
	for _, ex := range p.extractors {
		got := ex.Extract(doc)
		p.log.Debugw("extractor finished", "extractor", ex.Name(), "candidates", len(got))
		cands = append(cands, got...)
	}
	return cands
}

// Run collects candidates, merges any externally produced ones (payment QR)
// and resolves the lot into a field set.
func (p *Pipeline) Run(doc *dto.Document, extra ...dto.Candidate) *FieldSet {
	cands := append(p.Collect(doc), extra...)
	return p.resolver.ResolveSet(cands, doc.LineItems)
}
