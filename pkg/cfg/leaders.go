package cfg

import "sort"

// LeaderSet maps statement indices that start a basic block to the rules
// that marked them. Indices may point one past the last statement; such
// entries never start a block.
type LeaderSet map[int][]LeaderKind

func (s LeaderSet) add(index int, kind LeaderKind) {
	for _, k := range s[index] {
		if k == kind {
			return
		}
	}
	s[index] = append(s[index], kind)
}

// Has reports whether index is a leader.
func (s LeaderSet) Has(index int) bool {
	_, ok := s[index]
	return ok
}

// Reasons returns the rules that marked index.
func (s LeaderSet) Reasons(index int) []LeaderKind {
	return s[index]
}

// Indices returns the leader indices in ascending order.
func (s LeaderSet) Indices() []int {
	indices := make([]int, 0, len(s))
	for i := range s {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// IdentifyLeaders applies the leader rules to a statement sequence.
// An empty sequence has no leaders.
func IdentifyLeaders(statements []string, classifier StatementClassifier) LeaderSet {
	leaders := make(LeaderSet)
	if len(statements) == 0 {
		return leaders
	}
	leaders.add(0, LeaderEntry)

	for i, stmt := range statements {
		t := classifier.Traits(stmt)
		if t.Has(TraitControl) {
			leaders.add(i, LeaderControl)
			leaders.add(i+1, LeaderAfterControl)
		}
		if t.Has(TraitOpenBrace) {
			leaders.add(i+1, LeaderAfterOpenBrace)
		}
		if t.Has(TraitCloseBrace) {
			leaders.add(i+1, LeaderAfterCloseBrace)
		}
		if t.Has(TraitReturn) {
			leaders.add(i+1, LeaderAfterReturn)
		}
		if t.Has(TraitBreak | TraitContinue) {
			leaders.add(i+1, LeaderAfterJump)
		}
	}

	return leaders
}
