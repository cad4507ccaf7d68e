package dfg

import (
	"fmt"
	"strings"
)

// Interpret turns solved sets into advisory findings:
//
//   - multiple_reaching_definitions: a variable with two or more definitions
//     in in[B], reported per block in block order;
//   - never_killed: a definition absent from every kill set, reported once
//     per variable with its first such definition;
//   - potentially_dead: a definition absent from every out set whose block
//     is not the exit block.
func Interpret(defs []Definition, kill, in, out []DefSet, exit int) []Finding {
	findings := make([]Finding, 0)
	findings = append(findings, multipleReaching(defs, in)...)
	findings = append(findings, neverKilled(defs, kill)...)
	findings = append(findings, potentiallyDead(defs, out, exit)...)
	return findings
}

func multipleReaching(defs []Definition, in []DefSet) []Finding {
	var findings []Finding
	for blockID, set := range in {
		var order []string
		byVar := make(map[string][]string)
		for _, idx := range set.Indices() {
			if idx >= len(defs) {
				continue
			}
			d := defs[idx]
			if _, ok := byVar[d.Variable]; !ok {
				order = append(order, d.Variable)
			}
			byVar[d.Variable] = append(byVar[d.Variable], d.ID)
		}

		for _, v := range order {
			ids := byVar[v]
			if len(ids) < 2 {
				continue
			}
			findings = append(findings, Finding{
				Kind:          FindingMultipleReaching,
				BlockID:       blockID,
				Variable:      v,
				DefinitionIDs: ids,
				Message: fmt.Sprintf(
					"At entry to block B%d, variable '%s' has %d possible reaching definitions: %s. "+
						"This indicates multiple paths where '%s' may have been defined.",
					blockID, v, len(ids), strings.Join(ids, ", "), v),
			})
		}
	}
	return findings
}

func neverKilled(defs []Definition, kill []DefSet) []Finding {
	var findings []Finding
	reported := make(map[string]bool)
	for _, d := range defs {
		if reported[d.Variable] || inAny(d, kill) {
			continue
		}
		reported[d.Variable] = true
		findings = append(findings, Finding{
			Kind:          FindingNeverKilled,
			BlockID:       d.BlockID,
			Variable:      d.Variable,
			DefinitionIDs: []string{d.ID},
			Message:       fmt.Sprintf("Variable '%s' is never killed (single assignment): %s", d.Variable, d.ID),
		})
	}
	return findings
}

func potentiallyDead(defs []Definition, out []DefSet, exit int) []Finding {
	var findings []Finding
	for _, d := range defs {
		if d.BlockID == exit || inAny(d, out) {
			continue
		}
		findings = append(findings, Finding{
			Kind:          FindingPotentiallyDead,
			BlockID:       d.BlockID,
			Variable:      d.Variable,
			DefinitionIDs: []string{d.ID},
			Message:       fmt.Sprintf("Definition %s of '%s' is potentially dead (never reaches the exit of any block)", d.ID, d.Variable),
		})
	}
	return findings
}

func inAny(d Definition, sets []DefSet) bool {
	for _, s := range sets {
		if s.Has(d.Index) {
			return true
		}
	}
	return false
}
