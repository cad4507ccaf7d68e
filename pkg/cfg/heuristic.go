package cfg

// HeuristicLinker links each block by inspecting only its last statement.
// Successor targets are adjacent block ids, not structural join points:
//
//	if without '{'      -> i+1 (true), i+2 (false)
//	else                -> i+1
//	while / for         -> i+1 (true), i+2 (false)
//	return              -> none
//	break / continue    -> none
//	anything else       -> i+1
//
// The first matching rule wins. Targets past the last block are dropped.
type HeuristicLinker struct {
	classifier StatementClassifier
}

// NewHeuristicLinker creates a HeuristicLinker. A nil classifier selects
// KeywordClassifier.
func NewHeuristicLinker(c StatementClassifier) *HeuristicLinker {
	if c == nil {
		c = KeywordClassifier{}
	}
	return &HeuristicLinker{classifier: c}
}

// Link implements Linker.
func (l *HeuristicLinker) Link(g *CFG) {
	for i, block := range g.Blocks {
		if len(block.Statements) == 0 {
			continue
		}
		t := l.classifier.Traits(block.LastStatement())

		switch {
		case t.Has(TraitIf) && !t.Has(TraitOpenBrace):
			g.AddEdge(i, i+1, EdgeTypeTrue)
			g.AddEdge(i, i+2, EdgeTypeFalse)
		case t.Has(TraitElse):
			g.AddEdge(i, i+1, EdgeTypeUnconditional)
		case t.Has(TraitWhile | TraitFor):
			g.AddEdge(i, i+1, EdgeTypeTrue)
			g.AddEdge(i, i+2, EdgeTypeFalse)
		case t.Has(TraitReturn):
		case t.Has(TraitBreak | TraitContinue):
		default:
			g.AddEdge(i, i+1, EdgeTypeUnconditional)
		}
	}
}
