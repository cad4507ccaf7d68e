package analysis

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/rdflow/pkg/cfg"
)

// TestProgramProperties checks the structural and dataflow properties that
// hold for any input, on the three sample programs under both linkers.
func TestProgramProperties(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "programs", "*.c"))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, mode := range []cfg.LinkMode{cfg.LinkHeuristic, cfg.LinkStructured} {
		results, err := New(Options{Linker: mode}, WithParallel(3)).Batch(context.Background(), paths, nil)
		require.NoError(t, err)

		for _, r := range results {
			t.Run(string(mode)+"/"+strings.TrimSuffix(r.Name, ".c"), func(t *testing.T) {
				g, rd := r.CFG, r.Reaching
				require.NotEmpty(t, g.Blocks)
				require.NotEmpty(t, rd.Definitions)

				// blocks partition the statement sequence
				var flat []string
				for i, b := range g.Blocks {
					require.Equal(t, i, b.ID)
					flat = append(flat, b.Statements...)
				}
				assert.Equal(t, g.Statements, flat)

				m := g.Metrics()
				assert.Equal(t, m.Edges-m.Nodes+2, m.CyclomaticComplexity)

				// a block kills its own definition only when it assigns the
				// same variable again
				for _, d := range rd.Definitions {
					require.True(t, rd.Gen[d.BlockID].Has(d.Index))
					redefined := false
					for _, idx := range rd.Gen[d.BlockID].Indices() {
						if idx != d.Index && rd.Definitions[idx].Variable == d.Variable {
							redefined = true
						}
					}
					assert.Equal(t, redefined, rd.Kill[d.BlockID].Has(d.Index), "%s in its own block's kill set", d.ID)
				}

				// in and out only grow from round to round
				require.True(t, rd.Converged)
				for k := 1; k < len(rd.History); k++ {
					prev, cur := rd.History[k-1], rd.History[k]
					for b := range g.Blocks {
						assert.True(t, prev.In[b].IsSubset(cur.In[b]), "in[B%d] shrank in round %d", b, cur.Round)
						assert.True(t, prev.Out[b].IsSubset(cur.Out[b]), "out[B%d] shrank in round %d", b, cur.Round)
					}
				}
				assert.LessOrEqual(t, rd.Iterations, len(rd.History))

				if mode == cfg.LinkHeuristic {
					// only forward edges, so one round settles every block
					for _, e := range g.Edges {
						assert.Less(t, e.From, e.To)
					}
					assert.LessOrEqual(t, rd.Iterations, m.Nodes)
					assert.Equal(t, 1, rd.Iterations)
				}
			})
		}
	}
}

// TestProgramMetricsHeuristic pins the default pipeline's graph shape and
// definition count on the sample programs.
func TestProgramMetricsHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		nodes int
		edges int
		cc    int
		defs  int
	}{
		{name: "program1_calculator.c", nodes: 132, edges: 124, cc: -6, defs: 63},
		{name: "program2_matrix.c", nodes: 173, edges: 194, cc: 23, defs: 89},
		{name: "program3_student.c", nodes: 157, edges: 165, cc: 10, defs: 104},
	}

	p := New(Options{})
	for _, tt := range tests {
		t.Run(strings.TrimSuffix(tt.name, ".c"), func(t *testing.T) {
			r, err := p.AnalyzeFile(context.Background(), filepath.Join("testdata", "programs", tt.name))
			require.NoError(t, err)
			require.Equal(t, cfg.LinkHeuristic, r.CFG.Linker)

			assert.Equal(t, tt.nodes, r.Metrics.Nodes)
			assert.Equal(t, tt.edges, r.Metrics.Edges)
			assert.Equal(t, tt.cc, r.Metrics.CyclomaticComplexity)
			assert.Len(t, r.Reaching.Definitions, tt.defs)
		})
	}
}

func TestProgramsAreDeterministic(t *testing.T) {
	path := filepath.Join("testdata", "programs", "program2_matrix.c")
	p := New(Options{Linker: cfg.LinkStructured})

	first, err := p.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	second, err := p.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first.CFG.Edges, second.CFG.Edges)
	assert.Equal(t, first.Reaching.Definitions, second.Reaching.Definitions)
	assert.Equal(t, first.Reaching.Findings, second.Reaching.Findings)
}
