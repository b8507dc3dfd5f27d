// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package record converts Go structs to and from flat tensors.
//
// # Overview
//
// The layout of a struct type is compiled once from its declaration:
//   - bool, integer and float fields take one element each
//   - enums (named types with a method Options() []T) take one element per
//     option, holding a one-hot vector
//   - *T fields are optional: an "absent" slot followed by T's elements
//   - [N]T arrays and []T slices tagged `tensor:"shape=N"` repeat T's block
//     N times; short slices of optional elements are padded with absent ones
//   - interfaces registered with RegisterUnion are tagged unions: one slot
//     per alternative followed by a block for every alternative
//   - nested structs lay out their exported fields in order
//
// Decoding selects enum options, union alternatives and absence by arg-max,
// so scores from a model decode to the most likely value.
//
// # Basic Usage
//
//	type Movie int
//
//	const (
//	    Matrix Movie = iota
//	    Towers
//	)
//
//	func (Movie) Options() []Movie { return []Movie{Matrix, Towers} }
//
//	type Watch struct {
//	    Movies []*Movie `tensor:"shape=3"`
//	    Rating float32
//	}
//
//	codec, err := record.New[Watch](cpu.New())
//	towers := Towers
//	x, err := codec.ToTensor(Watch{Movies: []*Movie{&towers}, Rating: 4})
//	w, err := codec.FromTensor(x) // Movies: [&Towers, nil, nil]
//
// # Layout Stability
//
// A layout depends only on the type declaration. A tensor written by one
// process decodes in another that declares the same type; compare
// Codec.Fingerprint values to check.
package record
