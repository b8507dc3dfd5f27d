// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/structtensor/internal/tensor"

// Backend is the numeric capability the record codec runs on.
//
// Implementations:
//   - backend/cpu: Pure Go, all element types
//
// The codec allocates zero-filled buffers, selects categories by arg-max
// over sub-ranges and reads and writes single elements; it never relies on
// anything else. Argmax returns the index relative to start and breaks ties
// by the lowest index.
//
// Example:
//
//	import (
//	    "github.com/born-ml/structtensor/tensor"
//	    "github.com/born-ml/structtensor/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x, _ := backend.Zeros(tensor.Shape{4}, tensor.Float32)
//	_ = backend.SetScalar(x, 2, 1)
//	i := backend.Argmax(x, 0, 4) // 2
type Backend = tensor.Backend
