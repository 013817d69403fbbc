package ir

import "github.com/infinicore/tengraph/pkg/metrics"

// Optimize runs the three algebraic rewrite rules to a fixpoint: try
// rule 1, then rule 2, then rule 3; restart from rule 1 after any
// single successful rewrite, so patterns stay local and a rewrite can
// open up a new match for an earlier rule. Rewrites invalidate
// Sorted(); callers must re-run TopoSort before re-planning.
func (g *Graph) Optimize() error {
	for {
		if g.tryFuseChainedTransposes() {
			continue
		}
		if g.tryFuseTransposeIntoMatMul() {
			continue
		}
		if g.tryEliminateIdentityTranspose() {
			continue
		}
		break
	}
	return nil
}

// tryFuseChainedTransposes implements rule 1: a Transpose whose
// successors are all Transposes gets folded into each of them via
// permutation composition, eliminating the intermediate tensor.
func (g *Graph) tryFuseChainedTransposes() bool {
	for _, op := range g.ops {
		if op.Opcode() != OpTranspose {
			continue
		}
		if !op.hasOnlySuccessorsOfOpcode(OpTranspose) {
			continue
		}
		p := op.Attrs.(*TransposeAttrs).Perm
		in := op.Inputs[0]
		succs := append([]*Operator(nil), op.Successors()...)
		for _, s := range succs {
			q := s.Attrs.(*TransposeAttrs).Perm
			out := s.Output()
			g.addTransposeWithOutputs(in, out, composePerm(p, q))
			g.RemoveOperator(s)
		}
		g.RemoveTensor(op.Output())
		g.RemoveOperator(op)
		metrics.OptimizeRewritesTotal.WithLabelValues("fuse-chained-transpose").Inc()
		g.logf("fuse-chained-transpose", "fused chained transposes")
		return true
	}
	return false
}

// tryFuseTransposeIntoMatMul implements rule 2: a Transpose that
// swaps only the last two axes, feeding exclusively into MatMuls, is
// absorbed into each MatMul's transA/transB flag.
func (g *Graph) tryFuseTransposeIntoMatMul() bool {
	for _, op := range g.ops {
		if op.Opcode() != OpTranspose {
			continue
		}
		perm := op.Attrs.(*TransposeAttrs).Perm
		if !isLastTwoSwapPerm(perm) {
			continue
		}
		if !op.hasOnlySuccessorsOfOpcode(OpMatMul) {
			continue
		}
		in := op.Inputs[0]
		tOut := op.Output()
		succs := append([]*Operator(nil), op.Successors()...)
		for _, m := range succs {
			attrs := m.Attrs.(*MatMulAttrs)
			out := m.Output()

			if m.Inputs[0] == tOut {
				g.addMatMulWithOutputs(in, m.Inputs[1], out, !attrs.TransA, attrs.TransB)
			} else {
				g.addMatMulWithOutputs(m.Inputs[0], in, out, attrs.TransA, !attrs.TransB)
			}
			g.RemoveOperator(m)
		}
		g.RemoveTensor(tOut)
		g.RemoveOperator(op)
		metrics.OptimizeRewritesTotal.WithLabelValues("fuse-transpose-matmul").Inc()
		g.logf("fuse-transpose-matmul", "fused last-two-dim transpose into matmul")
		return true
	}
	return false
}

// tryEliminateIdentityTranspose implements rule 3: a Transpose whose
// permutation is the identity is spliced out entirely.
func (g *Graph) tryEliminateIdentityTranspose() bool {
	for _, op := range g.ops {
		if op.Opcode() != OpTranspose {
			continue
		}
		perm := op.Attrs.(*TransposeAttrs).Perm
		if !isIdentityPerm(perm) {
			continue
		}

		in := op.Inputs[0]
		out := op.Output()
		in.removeTarget(op)

		succs := append([]*Operator(nil), op.Successors()...)
		for _, s := range succs {
			in.addTarget(s)
			s.removePredecessor(op)
			for i, x := range s.Inputs {
				if x == out {
					s.Inputs[i] = in
				}
			}
		}

		// out is about to be deleted outright; if it was the graph's
		// designated output, that identity has to carry forward onto
		// the surviving tensor rather than vanish with it.
		if g.IsOutput(out) {
			g.MarkOutput(in)
		}

		g.RemoveTensor(out)
		g.RemoveOperator(op)
		metrics.OptimizeRewritesTotal.WithLabelValues("eliminate-identity-transpose").Inc()
		g.logf("eliminate-identity-transpose", "eliminated identity transpose")
		return true
	}
	return false
}
