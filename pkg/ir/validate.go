package ir

// CheckValid enforces every graph-shape invariant (bipartite tensor/
// operator coherence, no orphan tensors, unique fuids, topological
// order when known sorted), failing on the first breach with an
// InvariantViolated error naming which one. Intended to be callable
// after every mutation in a debug build or test.
func (g *Graph) CheckValid() error {
	tensorSet := make(map[*Tensor]bool, len(g.tensors))
	for _, t := range g.tensors {
		tensorSet[t] = true
	}
	opSet := make(map[*Operator]bool, len(g.ops))
	for _, op := range g.ops {
		opSet[op] = true
	}

	for _, t := range g.tensors {
		// A tensor marked as a graph output is retained by the caller
		// regardless of internal adjacency; a graph that reduces to a
		// single input tensor that is also its own output is valid.
		if t.source == nil && len(t.targets) == 0 && !g.outputs[t] {
			return errInvariantViolated("CheckValid", "no-orphan-tensor", "tensor has neither a source nor any consumer")
		}
		if t.source != nil && !opSet[t.source] {
			return errInvariantViolated("CheckValid", "source-in-ops", "tensor's source operator is not in the graph")
		}
		for _, consumer := range t.targets {
			if !opSet[consumer] {
				return errInvariantViolated("CheckValid", "target-in-ops", "tensor's consumer is not in the graph")
			}
			if !tensorInSlice(consumer.Inputs, t) {
				return errInvariantViolated("CheckValid", "bipartite-coherence", "tensor's consumer does not list it as an input")
			}
		}
		if t.source != nil && !tensorInSlice(t.source.Outputs, t) {
			return errInvariantViolated("CheckValid", "bipartite-coherence", "tensor's source does not list it as an output")
		}
	}

	for _, op := range g.ops {
		for _, in := range op.Inputs {
			if in != nil && !tensorSet[in] {
				return errInvariantViolated("CheckValid", "input-in-tensors", "operator input is not in the graph's tensor list")
			}
		}
		for _, out := range op.Outputs {
			if out != nil && !tensorSet[out] {
				return errInvariantViolated("CheckValid", "output-in-tensors", "operator output is not in the graph's tensor list")
			}
		}
		for _, p := range op.predecessors {
			if !opSet[p] {
				return errInvariantViolated("CheckValid", "predecessor-in-ops", "operator predecessor is not in the graph")
			}
		}
		for _, s := range op.successors {
			if !opSet[s] {
				return errInvariantViolated("CheckValid", "successor-in-ops", "operator successor is not in the graph")
			}
		}
	}

	seen := make(map[FUID]bool, len(g.tensors))
	for _, t := range g.tensors {
		if seen[t.FUID] {
			return errInvariantViolated("CheckValid", "unique-fuid", "duplicate fuid across tensors")
		}
		seen[t.FUID] = true
	}

	if g.sorted {
		index := make(map[*Operator]int, len(g.ops))
		for i, op := range g.ops {
			index[op] = i
		}
		for _, op := range g.ops {
			for _, in := range op.Inputs {
				if src := in.Source(); src != nil && index[src] >= index[op] {
					return errInvariantViolated("CheckValid", "topological-order", "an input's source does not precede its consumer")
				}
			}
		}
	}

	return nil
}

func tensorInSlice(s []*Tensor, t *Tensor) bool {
	for _, x := range s {
		if x == t {
			return true
		}
	}
	return false
}
