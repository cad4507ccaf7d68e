// Package cfg builds Control Flow Graphs (CFGs) for single-function C sources.
// It works on plain text: statements are grouped into basic blocks at leader
// boundaries and linked by textual control-flow rules. No AST is built.
package cfg

import (
	"fmt"
	"strings"
)

// EdgeType represents the type of a CFG edge.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional" // Sequential fall-through or join
	EdgeTypeTrue          EdgeType = "true"          // True branch of conditional / loop body
	EdgeTypeFalse         EdgeType = "false"         // False branch of conditional / loop exit
	EdgeTypeBackEdge      EdgeType = "back_edge"     // Back edge (loop continuation)
	EdgeTypeBreak         EdgeType = "break"         // Break from loop/switch
	EdgeTypeContinue      EdgeType = "continue"      // Continue to next iteration
)

// LeaderKind records why a statement starts a new basic block.
type LeaderKind string

const (
	LeaderEntry           LeaderKind = "entry"             // First statement
	LeaderControl         LeaderKind = "control"           // Statement holds a control-flow keyword
	LeaderAfterControl    LeaderKind = "after_control"     // Follows a control-flow statement
	LeaderAfterOpenBrace  LeaderKind = "after_open_brace"  // Follows a statement with '{'
	LeaderAfterCloseBrace LeaderKind = "after_close_brace" // Follows a statement with '}'
	LeaderAfterReturn     LeaderKind = "after_return"      // Follows a return
	LeaderAfterJump       LeaderKind = "after_jump"        // Follows a break or continue
)

// BasicBlock is a maximal straight-line run of statements.
// Blocks are created once by the Builder and only gain edges afterwards.
type BasicBlock struct {
	ID           int          `json:"id"`               // Sequential id, 0 is the entry
	Label        string       `json:"label"`            // Display name, "B{id}"
	Start        int          `json:"start"`            // Index of the first statement in the preprocessed sequence
	Statements   []string     `json:"statements"`       // Statements in source order
	Successors   []int        `json:"successors"`       // Insertion order approximates true/false order
	Predecessors []int        `json:"predecessors"`     // Blocks with an edge into this block
	Leader       []LeaderKind `json:"leader,omitempty"` // Why the first statement is a leader
}

func newBasicBlock(id, start int) *BasicBlock {
	return &BasicBlock{
		ID:           id,
		Label:        fmt.Sprintf("B%d", id),
		Start:        start,
		Statements:   make([]string, 0),
		Successors:   make([]int, 0),
		Predecessors: make([]int, 0),
	}
}

// AddStatement appends a statement to the block.
func (b *BasicBlock) AddStatement(stmt string) {
	b.Statements = append(b.Statements, stmt)
}

// AddSuccessor adds id to the successor list unless already present.
func (b *BasicBlock) AddSuccessor(id int) bool {
	if containsInt(b.Successors, id) {
		return false
	}
	b.Successors = append(b.Successors, id)
	return true
}

// AddPredecessor adds id to the predecessor list unless already present.
func (b *BasicBlock) AddPredecessor(id int) bool {
	if containsInt(b.Predecessors, id) {
		return false
	}
	b.Predecessors = append(b.Predecessors, id)
	return true
}

// LastStatement returns the terminating statement, or "" for an empty block.
func (b *BasicBlock) LastStatement() string {
	if len(b.Statements) == 0 {
		return ""
	}
	return b.Statements[len(b.Statements)-1]
}

// Code joins the statements with newlines.
func (b *BasicBlock) Code() string {
	return strings.Join(b.Statements, "\n")
}

func (b *BasicBlock) String() string {
	return fmt.Sprintf("%s: %d statements", b.Label, len(b.Statements))
}

// Edge is a directed control-flow edge between two blocks.
type Edge struct {
	From int      `json:"from"`
	To   int      `json:"to"`
	Type EdgeType `json:"type"`
}

// CFG is the block map plus its designated entry and exit blocks.
// Blocks are indexed by id, so Blocks[i].ID == i.
type CFG struct {
	Statements []string      `json:"statements"` // Preprocessed statement sequence
	Blocks     []*BasicBlock `json:"blocks"`     // Blocks in id order
	Edges      []Edge        `json:"edges"`      // Edges in insertion order
	Entry      int           `json:"entry"`      // Always 0
	Exit       int           `json:"exit"`       // Maximum block id, -1 when there are no blocks
	Linker     LinkMode      `json:"linker"`     // Linker that produced the edges
}

// Len returns the number of blocks.
func (g *CFG) Len() int {
	return len(g.Blocks)
}

// Block returns the block with the given id, or nil.
func (g *CFG) Block(id int) *BasicBlock {
	if id < 0 || id >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

// AddEdge links from -> to in both directions. Duplicate edges are ignored
// and reported as false.
func (g *CFG) AddEdge(from, to int, edgeType EdgeType) bool {
	src, dst := g.Block(from), g.Block(to)
	if src == nil || dst == nil {
		return false
	}
	if !src.AddSuccessor(to) {
		return false
	}
	dst.AddPredecessor(from)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Type: edgeType})
	return true
}

// EdgeBetween returns the edge from -> to if one exists.
func (g *CFG) EdgeBetween(from, to int) (Edge, bool) {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Metrics holds the size and cyclomatic complexity of a CFG.
type Metrics struct {
	Nodes                int `json:"n"`  // Number of basic blocks
	Edges                int `json:"e"`  // Successor edges summed over all blocks
	CyclomaticComplexity int `json:"cc"` // E - N + 2
}

// Metrics computes (N, E, CC) with CC = E - N + 2.
func (g *CFG) Metrics() Metrics {
	n := len(g.Blocks)
	e := 0
	for _, b := range g.Blocks {
		e += len(b.Successors)
	}
	return Metrics{Nodes: n, Edges: e, CyclomaticComplexity: e - n + 2}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
