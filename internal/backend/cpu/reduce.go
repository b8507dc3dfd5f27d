package cpu

import (
	"fmt"

	"github.com/born-ml/structtensor/internal/tensor"
)

type ordered interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Argmax returns the index of the maximum element of x in [start, end),
// relative to start. The first maximum wins, so ties resolve to the lowest index.
// For bool tensors true ranks above false.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, start, end int) int {
	checkRange("argmax", x, start, end)

	switch x.DType() {
	case tensor.Float32:
		return argmaxRange(x.AsFloat32()[start:end])
	case tensor.Float64:
		return argmaxRange(x.AsFloat64()[start:end])
	case tensor.Int32:
		return argmaxRange(x.AsInt32()[start:end])
	case tensor.Int64:
		return argmaxRange(x.AsInt64()[start:end])
	case tensor.Uint8:
		return argmaxRange(x.AsUint8()[start:end])
	case tensor.Bool:
		return argmaxBool(x.AsBool()[start:end])
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}
}

func argmaxRange[T ordered](data []T) int {
	maxVal := data[0]
	maxIdx := 0
	for i := 1; i < len(data); i++ {
		// A NaN maximum is replaced by the next element.
		if data[i] > maxVal || maxVal != maxVal {
			maxVal = data[i]
			maxIdx = i
		}
	}
	return maxIdx
}

func argmaxBool(data []bool) int {
	for i, v := range data {
		if v {
			return i
		}
	}
	return 0
}
