package ir

import (
	"testing"
)

func newTestGraph() *Graph {
	return NewGraph(fakeRuntime{})
}

func opInSlice(s []*Operator, op *Operator) bool {
	for _, x := range s {
		if x == op {
			return true
		}
	}
	return false
}

func TestAddTensorHasSharedUIDAndFUID(t *testing.T) {
	g := newTestGraph()
	tn := g.AddTensor([]int64{2, 2}, Float32)
	if FUID(tn.UID) != tn.FUID {
		t.Fatalf("fresh tensor FUID = %d, want %d (same as UID)", tn.FUID, tn.UID)
	}
}

func TestAddOperatorWiresBipartiteEdges(t *testing.T) {
	g := newTestGraph()
	a := g.AddTensor([]int64{2, 3}, Float32)
	b := g.AddTensor([]int64{3, 4}, Float32)

	op, err := g.AddMatMul(a, b, nil, false, false)
	if err != nil {
		t.Fatalf("AddMatMul: %v", err)
	}

	out := op.Output()
	if out.Source() != op {
		t.Fatalf("output's source = %v, want %v", out.Source(), op)
	}
	if !opInSlice(a.Targets(), op) || !opInSlice(b.Targets(), op) {
		t.Fatalf("operator not registered as a target of its inputs")
	}
	if err := g.CheckValid(); err != nil {
		t.Fatalf("CheckValid: %v", err)
	}
}

func TestRemoveOperatorScrubsTargets(t *testing.T) {
	g := newTestGraph()
	a := g.AddTensor([]int64{2, 2}, Float32)

	op, err := g.AddTranspose(a, nil, []int{1, 0})
	if err != nil {
		t.Fatalf("AddTranspose: %v", err)
	}
	g.RemoveOperator(op)

	if opInSlice(a.Targets(), op) {
		t.Fatalf("a still lists removed operator as a target")
	}
}

func TestMarkOutput(t *testing.T) {
	g := newTestGraph()
	a := g.AddTensor([]int64{1}, Float32)
	if g.IsOutput(a) {
		t.Fatalf("fresh tensor should not be marked output")
	}
	g.MarkOutput(a)
	if !g.IsOutput(a) {
		t.Fatalf("tensor should be marked output after MarkOutput")
	}
}
