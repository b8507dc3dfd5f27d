package schema

import "errors"

// Compile-time errors. They are permanent for a given type: describing or
// compiling the same type again fails the same way.
var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrShapeRequired   = errors.New("fixed-size list requires a shape")
	ErrUnionRegistered = errors.New("union already registered")
)
