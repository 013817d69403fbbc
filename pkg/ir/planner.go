package ir

// DataMalloc assigns every tensor exactly one pool offset and
// materializes the arena. Preconditions: TopoSort has succeeded and
// Operators() is in topological order.
func (g *Graph) DataMalloc() error {
	if g.alloc.Sealed() {
		// Planning already ran and materialized the pool: every
		// tensor still carries the storage DataMalloc installed last
		// time, so a second call is a no-op success rather than an
		// AllocatorSealed error.
		return nil
	}

	offsets := make(map[*Tensor]int64, len(g.tensors))
	refs := make(map[*Tensor]int, len(g.tensors))

	for _, t := range g.tensors {
		if t.Source() == nil {
			off, err := g.alloc.Alloc(t.Bytes())
			if err != nil {
				return err
			}
			offsets[t] = off
		}
	}

	for _, op := range g.ops {
		for _, in := range op.Inputs {
			if in != nil {
				refs[in]++
			}
		}
	}

	for _, op := range g.ops {
		for _, out := range op.Outputs {
			if out == nil {
				continue
			}
			if _, assigned := offsets[out]; !assigned {
				off, err := g.alloc.Alloc(out.Bytes())
				if err != nil {
					return err
				}
				offsets[out] = off
			}
		}
		for _, in := range op.Inputs {
			if in == nil {
				continue
			}
			refs[in]--
			if refs[in] == 0 && !g.IsOutput(in) {
				if err := g.alloc.Free(offsets[in], in.Bytes()); err != nil {
					return err
				}
			}
		}
	}

	base, err := g.alloc.GetPtr()
	if err != nil {
		return err
	}
	for _, t := range g.tensors {
		off, ok := offsets[t]
		if !ok {
			continue
		}
		t.storage = &Storage{Base: base, Offset: off}
	}

	return nil
}
