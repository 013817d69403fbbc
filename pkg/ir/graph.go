package ir

import (
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/infinicore/tengraph/pkg/metrics"
)

// Graph owns a set of tensors and operators, enforces the
// producer/consumer invariants between them, and drives shape
// inference, rewriting and memory planning over that structure. The
// zero value is not usable; construct with NewGraph.
type Graph struct {
	tensors []*Tensor
	ops     []*Operator
	sorted  bool
	outputs map[*Tensor]bool

	runtime Runtime
	alloc   *Allocator

	nextUID uint64
}

// NewGraph creates an empty graph backed by the given runtime façade.
// Each graph owns exactly one Allocator; graphs are not meant to share
// a pool.
func NewGraph(rt Runtime) *Graph {
	g := &Graph{
		runtime: rt,
		outputs: make(map[*Tensor]bool),
	}
	g.alloc = newAllocator(rt)
	return g
}

func (g *Graph) nextUid() UID {
	g.nextUID++
	return UID(g.nextUID)
}

// AddTensor creates a fresh graph-input tensor: no source, no
// targets yet, so the caller must connect it via an operator or mark
// it with MarkOutput, or it will fail CheckValid's no-orphan invariant.
func (g *Graph) AddTensor(shape []int64, dtype DType) *Tensor {
	uid := g.nextUid()
	t := &Tensor{
		UID:   uid,
		FUID:  FUID(uid),
		Shape: append([]int64(nil), shape...),
		DType: dtype,
	}
	g.tensors = append(g.tensors, t)
	metrics.GraphTensorsTotal.Set(float64(len(g.tensors)))
	return t
}

// MarkOutput retains tensor t as a graph output: DataMalloc will
// never free it during the planning walk, regardless of its ref
// count reaching zero.
func (g *Graph) MarkOutput(t *Tensor) { g.outputs[t] = true }

// IsOutput reports whether t has been marked as a graph output.
func (g *Graph) IsOutput(t *Tensor) bool { return g.outputs[t] }

// Tensors returns the graph's tensors in insertion order. Must not be
// mutated by the caller.
func (g *Graph) Tensors() []*Tensor { return g.tensors }

// Operators returns the graph's operators, in topological order once
// Sorted() is true. Must not be mutated by the caller.
func (g *Graph) Operators() []*Operator { return g.ops }

// Sorted reports whether Operators() is currently known to be in
// topological order.
func (g *Graph) Sorted() bool { return g.sorted }

// GetTensor returns the tensor with the given forwarded identity, or
// nil if none exists.
func (g *Graph) GetTensor(fuid FUID) *Tensor {
	for _, t := range g.tensors {
		if t.FUID == fuid {
			return t
		}
	}
	return nil
}

// newOperator is the single constructor funnel for every op-specific
// Add* method: it allocates the Operator, registers it, and wires
// its edges via addOperatorAndConnect.
func (g *Graph) newOperator(attrs Attrs, inputs, outputs []*Tensor) *Operator {
	op := &Operator{
		UID:     g.nextUid(),
		Attrs:   attrs,
		Inputs:  inputs,
		Outputs: outputs,
	}
	g.addOperatorAndConnect(op)
	metrics.GraphOperatorsTotal.Set(float64(len(g.ops)))
	return op
}

// addOperatorAndConnect is the only place a new operator's edges are
// wired; every higher-level constructor funnels through it.
func (g *Graph) addOperatorAndConnect(op *Operator) {
	g.sorted = false
	g.ops = append(g.ops, op)
	for _, in := range op.Inputs {
		if in == nil {
			continue
		}
		in.addTarget(op)
		if pred := in.Source(); pred != nil {
			pred.addSuccessor(op)
			op.addPredecessor(pred)
		}
	}
	for _, out := range op.Outputs {
		if out == nil {
			continue
		}
		out.setSource(op)
		for _, succ := range out.Targets() {
			succ.addPredecessor(op)
			op.addSuccessor(succ)
		}
	}
}

// RemoveOperator deletes op from the graph and from the
// predecessor/successor sets of its neighbors, and drops op from its
// input tensors' target lists. It removes no tensor and leaves its
// outputs' source unchanged; callers detach tensors with RemoveTensor.
func (g *Graph) RemoveOperator(op *Operator) {
	for i, o := range g.ops {
		if o == op {
			g.ops = append(g.ops[:i], g.ops[i+1:]...)
			break
		}
	}
	for _, p := range op.predecessors {
		p.removeSuccessor(op)
	}
	for _, s := range op.successors {
		s.removePredecessor(op)
	}
	for _, in := range op.Inputs {
		if in != nil {
			in.removeTarget(op)
		}
	}
	g.sorted = false
	metrics.GraphOperatorsTotal.Set(float64(len(g.ops)))
}

// RemoveTensor deletes t from the graph, defensively scrubbing any
// operator input/output list that still references it — a
// well-formed caller has already detached t via RemoveOperator or a
// rewrite helper, so this is a backstop, not the primary path.
func (g *Graph) RemoveTensor(t *Tensor) {
	for i, x := range g.tensors {
		if x == t {
			g.tensors = append(g.tensors[:i], g.tensors[i+1:]...)
			break
		}
	}
	delete(g.outputs, t)
	for _, op := range g.ops {
		op.Inputs = removeTensorFromSlice(op.Inputs, t)
		op.Outputs = removeTensorFromSlice(op.Outputs, t)
	}
	metrics.GraphTensorsTotal.Set(float64(len(g.tensors)))
}

func removeTensorFromSlice(s []*Tensor, t *Tensor) []*Tensor {
	for i, x := range s {
		if x == t {
			out := append([]*Tensor(nil), s[:i]...)
			out = append(out, s[i+1:]...)
			return out
		}
	}
	return s
}

// String renders an unstable diagnostic dump of the graph, for
// logging only; it is not a serialization format and callers must not
// depend on its layout.
func (g *Graph) String() string {
	var sb strings.Builder
	sb.WriteString("Graph Tensors:\n")
	for _, t := range g.tensors {
		fmt.Fprintf(&sb, "  t%d(fuid=%d) shape=%v dtype=%s\n", t.UID, t.FUID, t.Shape, t.DType)
	}
	sb.WriteString("Graph Operators:\n")
	for _, op := range g.ops {
		var preds, succs []UID
		for _, p := range op.predecessors {
			preds = append(preds, p.UID)
		}
		for _, s := range op.successors {
			succs = append(succs, s.UID)
		}
		fmt.Fprintf(&sb, "  op%d %s pred=%v succ=%v\n", op.UID, op.Opcode(), preds, succs)
	}
	return sb.String()
}

func (g *Graph) logf(rule, msg string) {
	klog.V(2).InfoS(msg, "rule", rule)
}
