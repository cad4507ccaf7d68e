package dfg

// ComputeGenKill builds gen and kill sets for blocks 0..numBlocks-1.
//
// gen[B] holds every definition made in B. kill[B] holds, for each
// definition d in gen[B], every other definition of d's variable anywhere in
// the program. Variables are compared by name only.
func ComputeGenKill(defs []Definition, numBlocks int) (gen, kill []DefSet) {
	gen = make([]DefSet, numBlocks)
	kill = make([]DefSet, numBlocks)

	byVariable := make(map[string]DefSet)
	for _, d := range defs {
		s := byVariable[d.Variable]
		s.Add(d.Index)
		byVariable[d.Variable] = s
	}

	for _, d := range defs {
		if d.BlockID < 0 || d.BlockID >= numBlocks {
			continue
		}
		gen[d.BlockID].Add(d.Index)
		others := byVariable[d.Variable].Difference(NewDefSet(d))
		kill[d.BlockID] = kill[d.BlockID].Union(others)
	}
	return gen, kill
}
