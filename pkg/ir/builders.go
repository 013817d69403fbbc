package ir

// AddMatMul registers a MatMul operator over a, b. If out is nil, a
// fresh output tensor is allocated, sized by InferShape.
func (g *Graph) AddMatMul(a, b, out *Tensor, transA, transB bool) (*Operator, error) {
	attrs := &MatMulAttrs{TransA: transA, TransB: transB}
	shapes, err := attrs.InferShape([]*Tensor{a, b})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = g.AddTensor(shapes[0], a.DType)
	}
	return g.newOperator(attrs, []*Tensor{a, b}, []*Tensor{out}), nil
}

// AddTranspose registers a Transpose operator over in with the given
// permutation. If out is nil, a fresh output tensor is allocated,
// sized by InferShape.
func (g *Graph) AddTranspose(in, out *Tensor, perm []int) (*Operator, error) {
	attrs := &TransposeAttrs{Perm: append([]int(nil), perm...)}
	shapes, err := attrs.InferShape([]*Tensor{in})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = g.AddTensor(shapes[0], in.DType)
	}
	return g.newOperator(attrs, []*Tensor{in}, []*Tensor{out}), nil
}

// addMatMulWithOutputs is the rewriter's entry point: it reuses an
// existing output tensor (and its FUID) rather than minting a new one,
// so a fused operator can step into an existing consumer's place
// without disturbing tensor identity downstream.
func (g *Graph) addMatMulWithOutputs(a, b, out *Tensor, transA, transB bool) *Operator {
	attrs := &MatMulAttrs{TransA: transA, TransB: transB}
	return g.newOperator(attrs, []*Tensor{a, b}, []*Tensor{out})
}

func (g *Graph) addTransposeWithOutputs(in, out *Tensor, perm []int) *Operator {
	attrs := &TransposeAttrs{Perm: perm}
	return g.newOperator(attrs, []*Tensor{in}, []*Tensor{out})
}
