package dfg

import (
	"fmt"

	"github.com/l3aro/rdflow/internal/log"
	"github.com/l3aro/rdflow/pkg/cfg"
)

// DefaultMaxRounds bounds the number of solver rounds.
const DefaultMaxRounds = 100

// ReachingDefsAnalyzer performs reaching definitions analysis on a control
// flow graph:
//
//	in[B]  = ∪ out[P] for every predecessor P of B
//	out[B] = gen[B] ∪ (in[B] − kill[B])
//
// Each round visits blocks in ascending id order and reads the out sets as
// already updated in that round. Solving stops after the first round that
// changes nothing.
type ReachingDefsAnalyzer struct {
	extractor *Extractor
	maxRounds int
	logger    log.Logger
}

// Option configures a ReachingDefsAnalyzer.
type Option func(*ReachingDefsAnalyzer)

// WithClassifier sets the statement classifier used to find definitions.
func WithClassifier(c Classifier) Option {
	return func(r *ReachingDefsAnalyzer) {
		r.extractor = NewExtractor(c)
	}
}

// WithMaxRounds overrides DefaultMaxRounds. Values below 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(r *ReachingDefsAnalyzer) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithLogger sets the logger that receives the non-convergence warning.
func WithLogger(l log.Logger) Option {
	return func(r *ReachingDefsAnalyzer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReachingDefsAnalyzer creates a new ReachingDefsAnalyzer.
func NewReachingDefsAnalyzer(opts ...Option) *ReachingDefsAnalyzer {
	r := &ReachingDefsAnalyzer{
		extractor: NewExtractor(nil),
		maxRounds: DefaultMaxRounds,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Solution holds the solved in/out sets and the per-round history.
type Solution struct {
	In         []DefSet   `json:"in"`
	Out        []DefSet   `json:"out"`
	History    []Snapshot `json:"history"`    // Post-round snapshot of every executed round
	Iterations int        `json:"iterations"` // Last round that changed a set, at least 1 for a non-empty graph
	Converged  bool       `json:"converged"`  // False when the round cap stopped the solver
}

// ReachingDefs is the complete analysis result for one CFG.
type ReachingDefs struct {
	Definitions []Definition `json:"definitions"`
	Gen         []DefSet     `json:"gen"`
	Kill        []DefSet     `json:"kill"`
	Solution
	Findings []Finding `json:"findings"`
}

// Analyze extracts definitions from g, computes gen/kill, solves the
// equations and interprets the result.
func (r *ReachingDefsAnalyzer) Analyze(g *cfg.CFG) *ReachingDefs {
	defs := r.extractor.Extract(g)
	gen, kill := ComputeGenKill(defs, g.Len())
	sol := r.Solve(g, gen, kill)

	return &ReachingDefs{
		Definitions: defs,
		Gen:         gen,
		Kill:        kill,
		Solution:    sol,
		Findings:    Interpret(defs, kill, sol.In, sol.Out, g.Exit),
	}
}

// Solve iterates the dataflow equations to a fixpoint, or until the round
// cap is hit. On the cap the sets computed so far are returned with
// Converged set to false.
func (r *ReachingDefsAnalyzer) Solve(g *cfg.CFG, gen, kill []DefSet) Solution {
	n := g.Len()
	in := make([]DefSet, n)
	out := make([]DefSet, n)
	sol := Solution{In: in, Out: out, History: make([]Snapshot, 0), Converged: true}
	if n == 0 {
		return sol
	}

	lastChange := 0
	for round := 1; ; round++ {
		if round > r.maxRounds {
			sol.Converged = false
			r.logger.Warn("reaching definitions did not converge", "rounds", r.maxRounds, "blocks", n)
			break
		}

		changed := false
		for _, block := range g.Blocks {
			id := block.ID

			var newIn DefSet
			for _, p := range block.Predecessors {
				newIn = newIn.Union(out[p])
			}
			newOut := gen[id].Union(newIn.Difference(kill[id]))

			if !newIn.Equal(in[id]) || !newOut.Equal(out[id]) {
				changed = true
			}
			in[id], out[id] = newIn, newOut
		}

		sol.History = append(sol.History, takeSnapshot(round, in, out))
		if !changed {
			break
		}
		lastChange = round
	}

	sol.Iterations = lastChange
	if sol.Iterations == 0 {
		sol.Iterations = 1
	}
	r.logger.Debug("reaching definitions solved", "iterations", sol.Iterations, "rounds", len(sol.History), "blocks", n)
	return sol
}

func takeSnapshot(round int, in, out []DefSet) Snapshot {
	s := Snapshot{
		Round: round,
		In:    make([]DefSet, len(in)),
		Out:   make([]DefSet, len(out)),
	}
	for i := range in {
		s.In[i] = in[i].Clone()
		s.Out[i] = out[i].Clone()
	}
	return s
}

// Definition looks up a definition by id.
func (r *ReachingDefs) Definition(id string) (Definition, bool) {
	idx, err := parseDefinitionID(id)
	if err != nil || idx >= len(r.Definitions) {
		return Definition{}, false
	}
	return r.Definitions[idx], true
}

// DefinitionMapping maps each definition id to "var in 'statement'".
func (r *ReachingDefs) DefinitionMapping() map[string]string {
	m := make(map[string]string, len(r.Definitions))
	for _, d := range r.Definitions {
		m[d.ID] = fmt.Sprintf("%s in '%s'", d.Variable, d.Statement)
	}
	return m
}

// Table returns one row per block with the final gen, kill, in and out sets.
func (r *ReachingDefs) Table() []Row {
	rows := make([]Row, len(r.Gen))
	for id := range r.Gen {
		rows[id] = Row{
			Block: fmt.Sprintf("B%d", id),
			Gen:   r.Gen[id].IDs(),
			Kill:  r.Kill[id].IDs(),
			In:    r.In[id].IDs(),
			Out:   r.Out[id].IDs(),
		}
	}
	return rows
}

// FindingsOf returns the findings of one kind, in order.
func (r *ReachingDefs) FindingsOf(kind FindingKind) []Finding {
	var found []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			found = append(found, f)
		}
	}
	return found
}
