package ir

// UID identifies an Operator (or, as FUID, a Tensor) uniquely within
// the Graph that created it. Both are simple monotonic counters
// scoped to one Graph — a single graph's own mutations are expected
// to stay single-threaded, so an atomic counter would be overkill.
type UID uint64

// FUID is a Tensor's "forwarded" identity: it survives graph rewrites
// that substitute one tensor for a semantically equivalent one, while
// UID never changes and is retired along with the tensor it named.
type FUID uint64

// Storage is the address a Tensor has been assigned by DataMalloc:
// the runtime-relative base the pool was materialized at, plus this
// tensor's byte offset within the pool.
type Storage struct {
	Base   uintptr
	Offset int64
}

// Tensor is a node in the bipartite tensor/operator graph. A Tensor
// with no source is a graph input; its Shape is fixed at creation and
// only ShapeInfer is allowed to revise it (by FUID, so a replacement
// tensor introduced by a rewrite keeps inheriting inference results
// under the original's identity).
type Tensor struct {
	UID   UID
	FUID  FUID
	Shape []int64
	DType DType

	source  *Operator
	targets []*Operator

	storage *Storage
}

// Bytes returns the tensor's footprint: product(Shape) * DType.Size().
func (t *Tensor) Bytes() int64 {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n * t.DType.Size()
}

// Source returns the operator that produces this tensor, or nil if
// the tensor is a graph input.
func (t *Tensor) Source() *Operator { return t.source }

// Targets returns the operators that consume this tensor as an input.
// The returned slice must not be mutated by the caller.
func (t *Tensor) Targets() []*Operator { return t.targets }

// DataPtr returns the tensor's assigned address, if DataMalloc has
// run and installed one.
func (t *Tensor) DataPtr() (uintptr, bool) {
	if t.storage == nil {
		return 0, false
	}
	return t.storage.Base + uintptr(t.storage.Offset), true
}

func (t *Tensor) addTarget(op *Operator) {
	for _, o := range t.targets {
		if o == op {
			return
		}
	}
	t.targets = append(t.targets, op)
}

func (t *Tensor) removeTarget(op *Operator) {
	for i, o := range t.targets {
		if o == op {
			t.targets = append(t.targets[:i], t.targets[i+1:]...)
			return
		}
	}
}

func (t *Tensor) setSource(op *Operator) { t.source = op }
