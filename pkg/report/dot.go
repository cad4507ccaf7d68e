package report

import (
	"fmt"
	"strings"

	"github.com/l3aro/rdflow/pkg/cfg"
)

// MaxStatementWidth is the number of characters of a statement shown in a
// DOT label or a Markdown table before it is cut with "...".
const MaxStatementWidth = 60

// DOT renders g as a Graphviz digraph. The entry block is filled light
// green, the exit block light coral and every other block light blue. When
// a block has several successors each edge is labelled with its type.
func DOT(g *cfg.CFG) string {
	var sb strings.Builder
	sb.WriteString("digraph CFG {\n")
	sb.WriteString("    node [shape=box, style=filled, fillcolor=lightblue];\n")
	sb.WriteString("    rankdir=TB;\n\n")

	for _, b := range g.Blocks {
		label := b.Label + ":\\n"
		for _, stmt := range b.Statements {
			label += truncate(escapeDOT(stmt), MaxStatementWidth) + "\\n"
		}

		switch b.ID {
		case g.Entry:
			fmt.Fprintf(&sb, "    %d [label=\"%s\", fillcolor=lightgreen];\n", b.ID, label)
		case g.Exit:
			fmt.Fprintf(&sb, "    %d [label=\"%s\", fillcolor=lightcoral];\n", b.ID, label)
		default:
			fmt.Fprintf(&sb, "    %d [label=\"%s\"];\n", b.ID, label)
		}
	}
	sb.WriteString("\n")

	for _, b := range g.Blocks {
		for _, succ := range b.Successors {
			e, _ := g.EdgeBetween(b.ID, succ)
			var attrs []string
			if len(b.Successors) > 1 {
				attrs = append(attrs, fmt.Sprintf("label=\"%s\"", edgeLabel(e.Type)))
			}
			if e.Type == cfg.EdgeTypeBackEdge || e.Type == cfg.EdgeTypeContinue {
				attrs = append(attrs, "style=dashed")
			}
			if len(attrs) == 0 {
				fmt.Fprintf(&sb, "    %d -> %d;\n", b.ID, succ)
				continue
			}
			fmt.Fprintf(&sb, "    %d -> %d [%s];\n", b.ID, succ, strings.Join(attrs, ", "))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func edgeLabel(t cfg.EdgeType) string {
	if t == cfg.EdgeTypeBackEdge {
		return "back"
	}
	return string(t)
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}
