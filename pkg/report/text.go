package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/l3aro/rdflow/pkg/analysis"
	"github.com/l3aro/rdflow/pkg/dfg"
)

// Text writes human-readable results to a terminal. Colours are used only
// when the writer is a terminal that supports them.
type Text struct {
	w       io.Writer
	re      *lipgloss.Renderer
	title   lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
	border  lipgloss.Style
}

// NewText creates a Text renderer writing to w.
func NewText(w io.Writer) *Text {
	re := lipgloss.NewRenderer(w)
	return &Text{
		w:       w,
		re:      re,
		title:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		heading: re.NewStyle().Bold(true),
		dim:     re.NewStyle().Foreground(lipgloss.Color("8")),
		warn:    re.NewStyle().Foreground(lipgloss.Color("11")),
		border:  re.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (t *Text) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := t.re.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})
}

// CFG prints the blocks, edges and metrics of one result.
func (t *Text) CFG(r *analysis.Result) {
	g := r.CFG
	fmt.Fprintln(t.w, t.title.Render(fmt.Sprintf("=== CFG for %s (%s linker) ===", r.Name, g.Linker)))
	fmt.Fprintf(t.w, "Nodes: %d  Edges: %d  Cyclomatic Complexity: %d\n",
		r.Metrics.Nodes, r.Metrics.Edges, r.Metrics.CyclomaticComplexity)
	if len(g.Blocks) == 0 {
		fmt.Fprintln(t.w, t.dim.Render("No statements."))
		return
	}
	fmt.Fprintf(t.w, "Entry Block: B%d\n", g.Entry)
	fmt.Fprintf(t.w, "Exit Block: B%d\n", g.Exit)

	fmt.Fprintf(t.w, "\n%s\n", t.heading.Render(fmt.Sprintf("Blocks (%d):", len(g.Blocks))))
	for _, b := range g.Blocks {
		reasons := make([]string, len(b.Leader))
		for i, k := range b.Leader {
			reasons[i] = string(k)
		}
		fmt.Fprintf(t.w, "  %s %s\n", b.Label, t.dim.Render("("+strings.Join(reasons, ", ")+")"))
		fmt.Fprintf(t.w, "    %s\n", strings.ReplaceAll(b.Code(), "\n", "\n    "))
		fmt.Fprintf(t.w, "    %s\n", t.dim.Render(fmt.Sprintf("pred %v  succ %v", b.Predecessors, b.Successors)))
	}

	fmt.Fprintf(t.w, "\n%s\n", t.heading.Render(fmt.Sprintf("Edges (%d):", len(g.Edges))))
	for _, e := range g.Edges {
		fmt.Fprintf(t.w, "  B%d --%s--> B%d\n", e.From, e.Type, e.To)
	}
}

// Reach prints definitions, the final gen/kill/in/out table and findings.
// With iterations set every solver round is printed as well.
func (t *Text) Reach(r *analysis.Result, iterations bool) {
	rd := r.Reaching
	fmt.Fprintln(t.w, t.title.Render(fmt.Sprintf("=== Reaching definitions for %s ===", r.Name)))

	fmt.Fprintf(t.w, "\n%s\n", t.heading.Render(fmt.Sprintf("Definitions (%d):", len(rd.Definitions))))
	for _, d := range rd.Definitions {
		fmt.Fprintf(t.w, "  %-4s %-12s B%-3d %s\n", d.ID, d.Variable, d.BlockID, d.Statement)
	}

	if iterations {
		for _, snap := range rd.History {
			fmt.Fprintf(t.w, "\n%s\n", t.heading.Render("Iteration "+strconv.Itoa(snap.Round)))
			tbl := t.table("Block", "in[B]", "out[B]")
			for b := range snap.In {
				tbl.Row(fmt.Sprintf("B%d", b), snap.In[b].String(), snap.Out[b].String())
			}
			fmt.Fprintln(t.w, tbl.Render())
		}
	}

	fmt.Fprintf(t.w, "\n%s\n", t.heading.Render("Final sets:"))
	tbl := t.table("Block", "gen[B]", "kill[B]", "in[B]", "out[B]")
	for _, row := range rd.Table() {
		tbl.Row(row.Block, formatIDs(row.Gen), formatIDs(row.Kill), formatIDs(row.In), formatIDs(row.Out))
	}
	fmt.Fprintln(t.w, tbl.Render())

	if rd.Converged {
		fmt.Fprintf(t.w, "Converged after %d iteration(s)\n", rd.Iterations)
	} else {
		fmt.Fprintln(t.w, t.warn.Render(fmt.Sprintf("Did not converge within %d round(s)", len(rd.History))))
	}

	fmt.Fprintf(t.w, "\n%s\n", t.heading.Render(fmt.Sprintf("Findings (%d):", len(rd.Findings))))
	for _, f := range rd.Findings {
		style := t.dim
		if f.Kind == dfg.FindingMultipleReaching {
			style = t.warn
		}
		fmt.Fprintf(t.w, "  %s %s\n", style.Render("["+string(f.Kind)+"]"), f.Message)
	}
}

// Metrics prints one N/E/CC row per result.
func (t *Text) Metrics(results []*analysis.Result) {
	tbl := t.table("Program", "N", "E", "CC", "Definitions", "Iterations")
	for _, r := range results {
		tbl.Row(
			r.Name,
			strconv.Itoa(r.Metrics.Nodes),
			strconv.Itoa(r.Metrics.Edges),
			strconv.Itoa(r.Metrics.CyclomaticComplexity),
			strconv.Itoa(len(r.Reaching.Definitions)),
			strconv.Itoa(r.Reaching.Iterations),
		)
	}
	fmt.Fprintln(t.w, tbl.Render())
}
