package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Encode-time errors.
var (
	ErrInvalidCategoryValue    = errors.New("value is not a declared enum option")
	ErrInvalidUnionValue       = errors.New("value matches no union alternative")
	ErrShapeMismatch           = errors.New("shape mismatch")
	ErrPaddingRequiresOptional = errors.New("padding a short list requires optional elements")
	ErrScalarOutOfRange        = errors.New("scalar not representable")
	ErrTypeMismatch            = errors.New("value type does not match layout")
)

// FieldError locates a failure inside a record.
type FieldError struct {
	Path  string // dotted path such as "Movies[2]" or "Pick.(main.Show)"
	Value any    // offending value, if any
	Err   error
}

func (e *FieldError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Err.Error())
	if e.Value != nil {
		fmt.Fprintf(&sb, " (value %v)", e.Value)
	}
	return sb.String()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErrf(value any, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
	}
	return &FieldError{Value: value, Err: err}
}

// within prefixes the path of err with a path segment. Segments starting
// with "[" attach without a dot.
func within(err error, segment string) error {
	var fe *FieldError
	if !errors.As(err, &fe) {
		return &FieldError{Path: segment, Err: err}
	}
	switch {
	case fe.Path == "":
		fe.Path = segment
	case strings.HasPrefix(fe.Path, "["):
		fe.Path = segment + fe.Path
	default:
		fe.Path = segment + "." + fe.Path
	}
	return fe
}
