// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package record

import (
	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/record"
	"github.com/born-ml/structtensor/internal/schema"
)

// Layout errors, returned when a type cannot be compiled. They are
// permanent for a given type.
var (
	ErrUnsupportedType = schema.ErrUnsupportedType
	ErrShapeRequired   = schema.ErrShapeRequired
	ErrUnionRegistered = schema.ErrUnionRegistered
	ErrNilBackend      = record.ErrNilBackend
)

// Value errors, returned by encoding and decoding.
var (
	ErrInvalidCategoryValue    = layout.ErrInvalidCategoryValue
	ErrInvalidUnionValue       = layout.ErrInvalidUnionValue
	ErrShapeMismatch           = layout.ErrShapeMismatch
	ErrPaddingRequiresOptional = layout.ErrPaddingRequiresOptional
	ErrScalarOutOfRange        = layout.ErrScalarOutOfRange
	ErrTypeMismatch            = layout.ErrTypeMismatch
)

// FieldError locates a value error inside a record, e.g. "Movies[2]".
// Use errors.As to retrieve it and errors.Is to classify it.
type FieldError = layout.FieldError
