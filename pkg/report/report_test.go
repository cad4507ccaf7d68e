package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/rdflow/pkg/analysis"
	"github.com/l3aro/rdflow/pkg/cfg"
)

const ifElseSource = `int x = 1;
if (x > 0) {
    x = 2;
} else {
    x = 3;
}
return x;
`

func analyse(t *testing.T, mode cfg.LinkMode, src string) *analysis.Result {
	t.Helper()
	r := analysis.New(analysis.Options{Linker: mode}).Analyze(context.Background(), "ifelse.c", src)
	require.NotNil(t, r)
	return r
}

func TestDOT(t *testing.T) {
	r := analyse(t, cfg.LinkStructured, ifElseSource)
	dot := DOT(r.CFG)

	assert.True(t, strings.HasPrefix(dot, "digraph CFG {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `0 [label="B0:\nint x = 1;\n", fillcolor=lightgreen];`)
	assert.Contains(t, dot, `5 [label="B5:\nreturn x;\n", fillcolor=lightcoral];`)
	assert.Contains(t, dot, `2 [label="B2:\nx = 2;\n"];`)
	assert.Contains(t, dot, `4 [label="B4:\nx = 3;\n}\n"];`)
	assert.Contains(t, dot, `1 -> 2 [label="true"];`)
	assert.Contains(t, dot, `1 -> 3 [label="false"];`)
	assert.Contains(t, dot, "0 -> 1;")
}

func TestDOTEscapesAndTruncates(t *testing.T) {
	long := `printf("` + strings.Repeat("a", 80) + `");`
	g := cfg.Build("int a = 1;\n"+long+"\nwhile (a) {\na--;\n}\nreturn a;\n", cfg.WithLinkMode(cfg.LinkStructured))
	dot := DOT(g)

	assert.Contains(t, dot, `printf(\"`+strings.Repeat("a", 51)+`...\n`)
	assert.NotContains(t, dot, strings.Repeat("a", 52))
	assert.Contains(t, dot, `1 -> 2 [label="true"];`)
	assert.Contains(t, dot, `1 -> 3 [label="false"];`)
	assert.Contains(t, dot, `2 -> 1 [style=dashed];`, "loop tails are dashed")
}

func TestMarkdown(t *testing.T) {
	r := analyse(t, cfg.LinkStructured, ifElseSource)
	md := Markdown(r)

	for _, want := range []string{
		"# Reaching Definitions: ifelse.c",
		"**Linker:** structured",
		"| ifelse.c | 6 | 6 | 2 |",
		"**Note:** Cyclomatic Complexity (CC) = E - N + 2",
		"- **B1:** 1 statement(s), Successors: [2 3]",
		"- **B5:** 1 statement(s), Successors: None (exit)",
		"| D1 | x | int x = 1; |",
		"| B0 | {D1} | {D2, D3} |",
		"### Iteration 1",
		"### Iteration 2",
		"**Convergence achieved after 1 iteration(s).**",
		"| B5 | ∅ | ∅ | {D2, D3} | {D2, D3} |",
		"1. At entry to block B5, variable 'x' has 2 possible reaching definitions: D2, D3.",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "No multiple reaching definitions detected")
}

func TestMarkdownWithoutMultipleDefinitions(t *testing.T) {
	r := analyse(t, cfg.LinkHeuristic, "int x = 5;")
	md := Markdown(r)

	assert.Contains(t, md, "No multiple reaching definitions detected.")
	assert.Contains(t, md, "1. ", "the never-killed finding is still listed")
}

func TestMarkdownEscapesPipes(t *testing.T) {
	r := analyse(t, cfg.LinkHeuristic, "flags = a | b;")
	assert.Contains(t, Markdown(r), `| D1 | flags | flags = a \| b; |`)
}

func TestSummary(t *testing.T) {
	results := []*analysis.Result{
		analyse(t, cfg.LinkStructured, ifElseSource),
		analyse(t, cfg.LinkHeuristic, "int x = 5;"),
	}
	results[1].Name = "single.c"

	md := Summary(results)
	assert.Contains(t, md, "2 program(s) analysed.")
	assert.Contains(t, md, "| single.c | 1 | 0 | 1 |")
	assert.Contains(t, md, "| ifelse.c | 3 | 1 | true | 1 |")
	assert.Contains(t, md, "- **ifelse.c:** CC = 2, indicating low to moderate complexity")
}

func TestComplexityNote(t *testing.T) {
	assert.Contains(t, complexityNote(10), "low")
	assert.Contains(t, complexityNote(11), "moderate complexity")
	assert.Contains(t, complexityNote(21), "high")
}

func TestText(t *testing.T) {
	r := analyse(t, cfg.LinkStructured, ifElseSource)

	var buf bytes.Buffer
	text := NewText(&buf)
	text.CFG(r)
	text.Reach(r, true)
	text.Metrics([]*analysis.Result{r})
	out := buf.String()

	for _, want := range []string{
		"=== CFG for ifelse.c (structured linker) ===",
		"Nodes: 6  Edges: 6  Cyclomatic Complexity: 2",
		"Exit Block: B5",
		"\n    x = 3;\n    }\n",
		"B1 --true--> B2",
		"Definitions (3):",
		"Iteration 2",
		"{D2, D3}",
		"Converged after 1 iteration(s)",
		"[multiple_reaching_definitions]",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "no escape codes when writing to a buffer")
}

func TestTextEmptyProgram(t *testing.T) {
	r := analyse(t, cfg.LinkHeuristic, "// empty")

	var buf bytes.Buffer
	NewText(&buf).CFG(r)
	assert.Contains(t, buf.String(), "No statements.")
}
