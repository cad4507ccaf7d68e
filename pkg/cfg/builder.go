package cfg

import (
	"fmt"
	"strings"
)

// LinkMode selects the linker used to add edges between blocks.
type LinkMode string

const (
	// LinkHeuristic looks only at each block's last statement and the
	// adjacent block ids.
	LinkHeuristic LinkMode = "heuristic"
	// LinkStructured tracks brace nesting to find join points, loop headers
	// and else targets.
	LinkStructured LinkMode = "structured"
)

// ParseLinkMode converts a config or flag value into a LinkMode.
// The empty string selects LinkHeuristic.
func ParseLinkMode(s string) (LinkMode, error) {
	switch LinkMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LinkHeuristic:
		return LinkHeuristic, nil
	case LinkStructured:
		return LinkStructured, nil
	default:
		return "", fmt.Errorf("unknown linker %q: must be %q or %q", s, LinkHeuristic, LinkStructured)
	}
}

// Linker adds edges to a partitioned CFG.
type Linker interface {
	Link(g *CFG)
}

// Builder turns statement sequences into CFGs. The block id counter lives on
// the builder and restarts for every build, so ids are always 0..K-1.
type Builder struct {
	classifier StatementClassifier
	mode       LinkMode
	nextID     int
}

// Option configures a Builder.
type Option func(*Builder)

// WithClassifier replaces the classifier DefaultClassifier picks for the
// link mode.
func WithClassifier(c StatementClassifier) Option {
	return func(b *Builder) {
		if c != nil {
			b.classifier = c
		}
	}
}

// WithLinkMode selects the linker.
func WithLinkMode(mode LinkMode) Option {
	return func(b *Builder) {
		if mode != "" {
			b.mode = mode
		}
	}
}

// NewBuilder creates a Builder using the heuristic linker unless told otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{mode: LinkHeuristic}
	for _, opt := range opts {
		opt(b)
	}
	if b.classifier == nil {
		b.classifier = DefaultClassifier(b.mode)
	}
	return b
}

// Mode returns the configured link mode.
func (b *Builder) Mode() LinkMode {
	return b.mode
}

// Classifier returns the statement classifier in use.
func (b *Builder) Classifier() StatementClassifier {
	return b.classifier
}

// Build preprocesses source and builds its CFG.
func (b *Builder) Build(source string) *CFG {
	return b.BuildStatements(Preprocess(source))
}

// BuildStatements builds a CFG from an already preprocessed sequence.
func (b *Builder) BuildStatements(statements []string) *CFG {
	leaders := IdentifyLeaders(statements, b.classifier)
	g := &CFG{
		Statements: statements,
		Blocks:     b.Partition(statements, leaders),
		Edges:      make([]Edge, 0),
		Entry:      0,
		Linker:     b.mode,
	}
	g.Exit = len(g.Blocks) - 1

	b.linker().Link(g)
	return g
}

// Partition splits statements at leader indices. Every statement lands in
// exactly one block and statement order is preserved.
func (b *Builder) Partition(statements []string, leaders LeaderSet) []*BasicBlock {
	b.nextID = 0
	blocks := make([]*BasicBlock, 0)

	var current *BasicBlock
	for i, stmt := range statements {
		if current == nil || leaders.Has(i) {
			current = b.newBlock(i)
			current.Leader = leaders.Reasons(i)
			blocks = append(blocks, current)
		}
		current.AddStatement(stmt)
	}
	return blocks
}

func (b *Builder) newBlock(start int) *BasicBlock {
	block := newBasicBlock(b.nextID, start)
	b.nextID++
	return block
}

func (b *Builder) linker() Linker {
	if b.mode == LinkStructured {
		return &StructuredLinker{classifier: b.classifier}
	}
	return &HeuristicLinker{classifier: b.classifier}
}

// Build is a convenience wrapper around NewBuilder(opts...).Build(source).
func Build(source string, opts ...Option) *CFG {
	return NewBuilder(opts...).Build(source)
}
