// Package cpu implements the pure Go CPU backend for record tensors.
package cpu

import (
	"fmt"

	"github.com/born-ml/structtensor/internal/tensor"
)

// CPUBackend implements the record codec's tensor capabilities in host memory.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Zeros allocates a zero-filled tensor on the CPU.
func (cpu *CPUBackend) Zeros(shape tensor.Shape, dtype tensor.DataType) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		return nil, fmt.Errorf("zeros: %w", err)
	}
	return raw, nil
}

// checkRange panics when [start, end) does not fit inside x.
// Range errors are programming errors in the caller, as with born's
// other tensor ops.
func checkRange(op string, x *tensor.RawTensor, start, end int) {
	if start < 0 || end > x.NumElements() || start >= end {
		panic(fmt.Sprintf("%s: range [%d, %d) invalid for %d elements", op, start, end, x.NumElements()))
	}
}

func checkIndex(op string, x *tensor.RawTensor, i int) {
	if i < 0 || i >= x.NumElements() {
		panic(fmt.Sprintf("%s: index %d out of bounds for %d elements", op, i, x.NumElements()))
	}
}
