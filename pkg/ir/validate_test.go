package ir

import "testing"

// TestCheckValidCatchesDanglingInput checks that an operator whose
// input tensor was never registered with the graph fails CheckValid
// with InvariantViolated rather than panicking.
func TestCheckValidCatchesDanglingInput(t *testing.T) {
	g := newTestGraph()
	a := g.AddTensor([]int64{2, 2}, Float32)
	if _, err := g.AddTranspose(a, nil, []int{1, 0}); err != nil {
		t.Fatalf("AddTranspose: %v", err)
	}

	dangling := &Tensor{UID: 9999, FUID: 9999, Shape: []int64{2, 2}, DType: Float32}
	g.newOperator(&TransposeAttrs{Perm: []int{1, 0}}, []*Tensor{dangling}, []*Tensor{})

	err := g.CheckValid()
	if !Is(err, KindInvariantViolated) {
		t.Fatalf("CheckValid() = %v, want InvariantViolated", err)
	}
}

func TestCheckValidAcceptsWellFormedGraph(t *testing.T) {
	g := newTestGraph()
	a := g.AddTensor([]int64{2, 3}, Float32)
	b := g.AddTensor([]int64{3, 4}, Float32)
	if _, err := g.AddMatMul(a, b, nil, false, false); err != nil {
		t.Fatalf("AddMatMul: %v", err)
	}
	if err := g.CheckValid(); err != nil {
		t.Fatalf("CheckValid: %v", err)
	}
}
