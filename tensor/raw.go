// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/structtensor/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Row views of batches via Row()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()  // Type-safe access
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions, outermost first.
type Shape = tensor.Shape

// DataType identifies a tensor element type.
type DataType = tensor.DataType

// DType is the constraint satisfied by Go element types.
type DType = tensor.DType

// Device identifies where a tensor's memory lives.
type Device = tensor.Device

// Element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// DefaultDataType is the element type records encode to unless told otherwise.
const DefaultDataType = tensor.DefaultDataType

// CPU is the host memory device.
const CPU = tensor.CPU

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice copies data into a new CPU tensor of the given shape.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// ParseDataType resolves an element type name such as "float32" or "int".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}
