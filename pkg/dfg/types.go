// Package dfg computes reaching definitions over a cfg.CFG.
// Definitions are found by a statement Classifier, gen/kill sets are derived
// from variable names, and the dataflow equations are solved by round-robin
// iteration in block id order.
package dfg

import "fmt"

// Definition is a statement that assigns a variable.
// Two definitions are the same definition when their IDs match.
type Definition struct {
	ID        string `json:"id"`        // "D{n}", n counts from 1 in discovery order
	Index     int    `json:"index"`     // n-1, the position in the definition list
	Variable  string `json:"variable"`  // Assigned variable name
	Statement string `json:"statement"` // Exact text of the defining statement
	BlockID   int    `json:"block_id"`  // Block containing the statement
}

// Equal reports whether d and other are the same definition.
func (d Definition) Equal(other Definition) bool {
	return d.ID == other.ID
}

func (d Definition) String() string {
	return fmt.Sprintf("%s: %s in '%s'", d.ID, d.Variable, d.Statement)
}

func definitionID(index int) string {
	return fmt.Sprintf("D%d", index+1)
}

// FindingKind classifies an interpretation finding.
type FindingKind string

const (
	FindingMultipleReaching FindingKind = "multiple_reaching_definitions" // Several definitions of one variable reach a block
	FindingNeverKilled      FindingKind = "never_killed"                  // Variable is assigned exactly once
	FindingPotentiallyDead  FindingKind = "potentially_dead"              // Definition never leaves any block
)

// Finding is one advisory observation about the analysis result.
type Finding struct {
	Kind          FindingKind `json:"kind"`
	BlockID       int         `json:"block_id"` // Block the finding is about, -1 when not block specific
	Variable      string      `json:"variable"`
	DefinitionIDs []string    `json:"definition_ids"`
	Message       string      `json:"message"`
}

func (f Finding) String() string {
	return f.Message
}

// Snapshot is a copy of every block's in and out set after one solver round.
type Snapshot struct {
	Round int      `json:"round"` // 1-based round number
	In    []DefSet `json:"in"`    // Indexed by block id
	Out   []DefSet `json:"out"`   // Indexed by block id
}

// Row is one line of the final analysis table.
type Row struct {
	Block string   `json:"block"`
	Gen   []string `json:"gen"`
	Kill  []string `json:"kill"`
	In    []string `json:"in"`
	Out   []string `json:"out"`
}
