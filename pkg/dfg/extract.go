package dfg

import "github.com/l3aro/rdflow/pkg/cfg"

// Extractor numbers definitions D1, D2, ... scanning blocks in id order and
// statements in order within a block. The counter belongs to the extractor
// and restarts on every Extract call.
type Extractor struct {
	classifier Classifier
	next       int
}

// NewExtractor creates an Extractor. A nil classifier selects RegexClassifier.
func NewExtractor(c Classifier) *Extractor {
	if c == nil {
		c = RegexClassifier{}
	}
	return &Extractor{classifier: c}
}

// Extract returns every definition in g in discovery order.
func (e *Extractor) Extract(g *cfg.CFG) []Definition {
	e.next = 0
	defs := make([]Definition, 0)
	if g == nil {
		return defs
	}

	for _, block := range g.Blocks {
		for _, stmt := range block.Statements {
			variable, ok := e.classifier.AssignedVariable(stmt)
			if !ok {
				continue
			}
			defs = append(defs, Definition{
				ID:        definitionID(e.next),
				Index:     e.next,
				Variable:  variable,
				Statement: stmt,
				BlockID:   block.ID,
			})
			e.next++
		}
	}
	return defs
}
