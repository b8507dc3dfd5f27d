// Package record binds compiled layouts to Go record types.
package record

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/schema"
	"github.com/born-ml/structtensor/internal/tensor"
)

// ErrNilBackend is returned by New when no backend is given.
var ErrNilBackend = errors.New("record: nil backend")

// Codec converts values of T to and from flat tensors.
// A Codec is immutable and safe for concurrent use.
type Codec[T any] struct {
	backend  tensor.Backend
	chunk    layout.Chunk
	dtype    tensor.DataType
	parallel parallel.Config
}

// New compiles the layout of T and returns a codec running on backend.
func New[T any](backend tensor.Backend, opts ...Option) (*Codec[T], error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.dtype.Valid() {
		return nil, fmt.Errorf("record: invalid element type %v", o.dtype)
	}

	t := reflect.TypeFor[T]()
	var (
		c   layout.Chunk
		err error
	)
	if o.uncached {
		c, err = layout.CompileType(t)
	} else {
		c, err = layout.ForType(t)
	}
	if err != nil {
		return nil, err
	}
	return &Codec[T]{backend: backend, chunk: c, dtype: o.dtype, parallel: o.parallel}, nil
}

// Len is the number of tensor elements one record occupies.
func (c *Codec[T]) Len() int {
	return c.chunk.Len()
}

// DType is the element type the codec encodes to by default.
func (c *Codec[T]) DType() tensor.DataType {
	return c.dtype
}

// Layout returns the flattened layout of T.
func (c *Codec[T]) Layout() []layout.Slot {
	return layout.Plan(c.chunk)
}

// Fingerprint identifies the layout of T; see layout.Fingerprint.
func (c *Codec[T]) Fingerprint() uint64 {
	return layout.Fingerprint(c.chunk)
}

// ToTensor encodes v into a new tensor of shape (Len()).
func (c *Codec[T]) ToTensor(v T) (*tensor.RawTensor, error) {
	return c.ToTensorDType(v, c.dtype)
}

// ToTensorDType encodes v into a new tensor of shape (Len()) and element type dtype.
func (c *Codec[T]) ToTensorDType(v T, dtype tensor.DataType) (*tensor.RawTensor, error) {
	return layout.Encode(c.backend, c.chunk, reflect.ValueOf(&v).Elem(), dtype)
}

// FromTensor decodes a tensor of shape (Len()).
func (c *Codec[T]) FromTensor(x *tensor.RawTensor) (T, error) {
	var zero T
	v, err := layout.Decode(c.backend, c.chunk, x)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// ToTensorBatch encodes values as the rows of a (len(values), Len()) tensor.
func (c *Codec[T]) ToTensorBatch(ctx context.Context, values []T) (*tensor.RawTensor, error) {
	return c.ToTensorBatchSize(ctx, values, 0)
}

// ToTensorBatchSize encodes values as the rows of a (batchSize, Len())
// tensor. Rows past len(values) stay zero; zero means len(values).
func (c *Codec[T]) ToTensorBatchSize(ctx context.Context, values []T, batchSize int) (*tensor.RawTensor, error) {
	return layout.EncodeBatch(ctx, c.backend, c.chunk, reflect.ValueOf(values), batchSize, c.dtype, c.parallel)
}

// ToTensorSeq collects seq and encodes it like ToTensorBatch.
func (c *Codec[T]) ToTensorSeq(ctx context.Context, seq iter.Seq[T]) (*tensor.RawTensor, error) {
	return c.ToTensorBatch(ctx, slices.Collect(seq))
}

// FromTensorBatch decodes every row of a (rows, Len()) tensor.
func (c *Codec[T]) FromTensorBatch(ctx context.Context, x *tensor.RawTensor) ([]T, error) {
	return c.FromTensorBatchSize(ctx, x, 0)
}

// FromTensorBatchSize is FromTensorBatch with the row count checked against batchSize.
func (c *Codec[T]) FromTensorBatchSize(ctx context.Context, x *tensor.RawTensor, batchSize int) ([]T, error) {
	v, err := layout.DecodeBatch(ctx, c.backend, c.chunk, x, batchSize, c.parallel)
	if err != nil {
		return nil, err
	}
	return v.Interface().([]T), nil
}

// Precompile compiles and caches the layout of T.
func Precompile[T any]() error {
	return layout.Precompile(reflect.TypeFor[T]())
}

// RegisterUnion declares the ordered alternatives of the interface type I.
// Fields of type I become tagged unions with one tag slot per alternative.
func RegisterUnion[I any](alts ...I) error {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return schema.RegisterUnion(iface)
	}
	types := make([]reflect.Type, len(alts))
	for i, alt := range alts {
		v := reflect.ValueOf(&alt).Elem()
		if v.IsNil() {
			return fmt.Errorf("%w: union %v: alternative %d is nil", schema.ErrUnsupportedType, iface, i)
		}
		types[i] = v.Elem().Type()
	}
	return schema.RegisterUnion(iface, types...)
}

// Describe returns the layout plan of T from the shared cache, without a
// backend.
func Describe[T any]() ([]layout.Slot, error) {
	c, err := layout.ForType(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return layout.Plan(c), nil
}
