// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset persists encoded records in a bbolt database.
//
// Rows of one record type live in a bucket named after the type's layout
// fingerprint, so a store can hold several record types and rows are only
// ever decoded with the layout they were written with.
//
// Example:
//
//	store, err := dataset.Open("watches.db", dataset.Options{})
//	defer store.Close()
//
//	codec, _ := record.New[Watch](cpu.New())
//	_, err = dataset.AppendRecords(ctx, store, codec, watches)
//	all, err := dataset.LoadRecords(ctx, store, codec, cpu.New())
package dataset

import (
	"context"

	"github.com/born-ml/structtensor/internal/dataset"
	"github.com/born-ml/structtensor/record"
	"github.com/born-ml/structtensor/tensor"
)

// Store is an append-only row store.
type Store = dataset.Store

// Options configures Open.
type Options = dataset.Options

// Manifest describes the layout a bucket's rows were encoded with.
type Manifest = dataset.Manifest

// BucketStats summarizes one layout's rows.
type BucketStats = dataset.BucketStats

// Errors.
var (
	ErrNotFound      = dataset.ErrNotFound
	ErrDTypeMismatch = dataset.ErrDTypeMismatch
)

// Open opens or creates the database at path.
func Open(path string, opt Options) (*Store, error) {
	return dataset.Open(path, opt)
}

// AppendRecords encodes values with c and stores them as rows.
func AppendRecords[T any](ctx context.Context, s *Store, c *record.Codec[T], values []T) (int, error) {
	return dataset.AppendRecords(ctx, s, c, values)
}

// LoadRecords decodes every row stored for c's layout.
func LoadRecords[T any](ctx context.Context, s *Store, c *record.Codec[T], b tensor.Backend) ([]T, error) {
	return dataset.LoadRecords(ctx, s, c, b)
}
