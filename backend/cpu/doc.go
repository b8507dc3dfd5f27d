// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for record tensors.
//
// # Overview
//
// This package implements the codec's numeric capability with:
//   - Pure Go implementation (no CGO)
//   - All six element types (float32, float64, int32, int64, uint8, bool)
//   - Exact element writes: integer and bool tensors reject values they
//     cannot hold instead of truncating them
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/structtensor/backend/cpu"
//	    "github.com/born-ml/structtensor/record"
//	)
//
//	func main() {
//	    codec, err := record.New[Watch](cpu.New())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    x, _ := codec.ToTensor(Watch{...})
//	}
//
// # Thread Safety
//
// The backend holds no mutable state. Concurrent calls are safe as long as
// they write disjoint elements of a tensor.
package cpu
