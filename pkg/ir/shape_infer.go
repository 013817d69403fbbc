package ir

import "fmt"

// ShapeInfer walks the operators in their current order — the caller
// is responsible for sorting first — and recomputes each operator's
// output shapes via its Attrs.InferShape. A changed shape is written
// back to the tensor looked up by FUID, so a tensor substituted by a
// rewrite still receives inference results under its surviving
// identity.
func (g *Graph) ShapeInfer() error {
	for _, op := range g.ops {
		shapes, err := op.Attrs.InferShape(op.Inputs)
		if err != nil {
			return err
		}
		if len(shapes) != len(op.Outputs) {
			return errShapeMismatch("ShapeInfer", fmt.Sprintf("operator %d produced %d shapes, expected %d", op.UID, len(shapes), len(op.Outputs)))
		}
		for i, newShape := range shapes {
			out := op.Outputs[i]
			if !shapeEqual(out.Shape, newShape) {
				t := g.GetTensor(out.FUID)
				if t == nil {
					return errUnknownTensor("ShapeInfer", out.FUID)
				}
				t.Shape = newShape
			}
		}
	}
	return nil
}

func shapeEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
