// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the flat tensor buffers that records are encoded into.
//
// # Overview
//
// A RawTensor is a typed byte buffer with a shape, an element type and a
// device. Encoded records are one-dimensional tensors of the record's layout
// length; encoded batches are (batch, length) tensors.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/structtensor/backend/cpu"
//	    "github.com/born-ml/structtensor/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := backend.Zeros(tensor.Shape{2, 3}, tensor.Float32)
//	    row, _ := x.Row(1)      // shares x's buffer
//	    _ = row.AsFloat32()     // []float32 of length 3
//
//	    y, _ := tensor.FromSlice([]int64{1, 2, 3}, tensor.Shape{3})
//	    _ = y.DType()           // tensor.Int64
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool
//
// Integer and bool tensors hold one-hot slots as 0 and 1; records with
// fractional fields need a floating-point element type.
package tensor
