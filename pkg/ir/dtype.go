package ir

import "fmt"

// DType is the element type of a Tensor. The module owns only enough
// of this to size a buffer; conversion/quantization tables live outside
// the core, in the runtime backend a kernel author provides.
type DType int

const (
	Float32 DType = iota
	Float16
	Int64
	Int32
	Int8
)

// Size returns the element's size in bytes.
func (d DType) Size() int64 {
	switch d {
	case Float32:
		return 4
	case Float16:
		return 2
	case Int64:
		return 8
	case Int32:
		return 4
	case Int8:
		return 1
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int64:
		return "int64"
	case Int32:
		return "int32"
	case Int8:
		return "int8"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}
