package ir

// TopoSort orders the graph's operators so that every operator
// producing another's input precedes it. Idempotent: if the graph is
// already known sorted, it returns immediately. Uses a Kahn-style
// layered scan: repeatedly admit every operator whose inputs are all
// already produced, until nothing is left or nothing can progress.
func (g *Graph) TopoSort() error {
	if g.sorted {
		return nil
	}

	admitted := make(map[*Operator]bool, len(g.ops))
	order := make([]*Operator, 0, len(g.ops))

	for len(order) < len(g.ops) {
		progressed := false
		for _, op := range g.ops {
			if admitted[op] {
				continue
			}
			ready := true
			for _, in := range op.Inputs {
				if src := in.Source(); src != nil && !admitted[src] {
					ready = false
					break
				}
			}
			if ready {
				admitted[op] = true
				order = append(order, op)
				progressed = true
			}
		}
		if !progressed {
			return errCycleDetected("TopoSort")
		}
	}

	g.ops = order
	g.sorted = true
	return nil
}
