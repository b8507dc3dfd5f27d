// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package record

import (
	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/record"
	"github.com/born-ml/structtensor/tensor"
)

// Codec converts values of T to and from flat tensors.
// A Codec is immutable and safe for concurrent use.
type Codec[T any] = record.Codec[T]

// Option configures a Codec.
type Option = record.Option

// ParallelConfig controls how batch rows are spread over goroutines.
type ParallelConfig = parallel.Config

// Slot describes the range one field, element or alternative covers in a layout.
type Slot = layout.Slot

// New compiles the layout of T and returns a codec running on backend.
//
// Example:
//
//	codec, err := record.New[Watch](cpu.New(), record.WithDType(tensor.Float64))
func New[T any](backend tensor.Backend, opts ...Option) (*Codec[T], error) {
	return record.New[T](backend, opts...)
}

// WithDType sets the element type tensors are encoded to (default float32).
func WithDType(dtype tensor.DataType) Option {
	return record.WithDType(dtype)
}

// WithParallel sets how batch rows are spread over goroutines.
func WithParallel(cfg ParallelConfig) Option {
	return record.WithParallel(cfg)
}

// DefaultParallelConfig uses one worker per available CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// WithoutCache compiles a private layout instead of sharing the
// process-wide one.
func WithoutCache() Option {
	return record.WithoutCache()
}

// Precompile compiles and caches the layout of T so that the first New
// does not pay for it.
func Precompile[T any]() error {
	return record.Precompile[T]()
}

// Describe returns the layout plan of T: one slot per field, element,
// optional payload and union alternative, in offset order.
func Describe[T any]() ([]Slot, error) {
	return record.Describe[T]()
}

// ResetCache forgets every cached layout.
func ResetCache() {
	layout.ResetCache()
}

// RegisterUnion declares the ordered alternatives of the interface type I.
// Each alternative is given as a value of its concrete type; the order
// defines the layout and a union can be registered only once.
//
// Example:
//
//	type Pet interface{ isPet() }
//	_ = record.RegisterUnion[Pet](Cat{}, Dog{})
func RegisterUnion[I any](alts ...I) error {
	return record.RegisterUnion(alts...)
}
