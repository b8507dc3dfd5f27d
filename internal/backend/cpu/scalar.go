package cpu

import (
	"fmt"
	"math"

	"fortio.org/safecast"

	"github.com/born-ml/structtensor/internal/tensor"
)

// ScalarAt reads element i of x as float64.
func (cpu *CPUBackend) ScalarAt(x *tensor.RawTensor, i int) float64 {
	checkIndex("scalarAt", x, i)

	switch x.DType() {
	case tensor.Float32:
		return float64(x.AsFloat32()[i])
	case tensor.Float64:
		return x.AsFloat64()[i]
	case tensor.Int32:
		return float64(x.AsInt32()[i])
	case tensor.Int64:
		return float64(x.AsInt64()[i])
	case tensor.Uint8:
		return float64(x.AsUint8()[i])
	case tensor.Bool:
		if x.AsBool()[i] {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("scalarAt: unsupported dtype %s", x.DType()))
	}
}

// SetScalar stores v at element i of x.
//
// Floating-point tensors take v as is (float32 rounds to nearest). Integer
// tensors only accept values that convert exactly; bool tensors only accept 0 and 1.
func (cpu *CPUBackend) SetScalar(x *tensor.RawTensor, i int, v float64) error {
	checkIndex("setScalar", x, i)

	switch x.DType() {
	case tensor.Float32:
		if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > math.MaxFloat32 {
			return fmt.Errorf("setScalar: %v overflows float32: %w", v, safecast.ErrOutOfRange)
		}
		x.AsFloat32()[i] = float32(v)
	case tensor.Float64:
		x.AsFloat64()[i] = v
	case tensor.Int32:
		n, err := safecast.Convert[int32](v)
		if err != nil {
			return fmt.Errorf("setScalar: %v as int32: %w", v, err)
		}
		x.AsInt32()[i] = n
	case tensor.Int64:
		n, err := safecast.Convert[int64](v)
		if err != nil {
			return fmt.Errorf("setScalar: %v as int64: %w", v, err)
		}
		x.AsInt64()[i] = n
	case tensor.Uint8:
		n, err := safecast.Convert[uint8](v)
		if err != nil {
			return fmt.Errorf("setScalar: %v as uint8: %w", v, err)
		}
		x.AsUint8()[i] = n
	case tensor.Bool:
		switch v {
		case 0:
			x.AsBool()[i] = false
		case 1:
			x.AsBool()[i] = true
		default:
			return fmt.Errorf("setScalar: %v as bool: %w", v, safecast.ErrOutOfRange)
		}
	default:
		panic(fmt.Sprintf("setScalar: unsupported dtype %s", x.DType()))
	}
	return nil
}
