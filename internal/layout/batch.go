package layout

import (
	"context"
	"fmt"
	"reflect"

	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/tensor"
)

// EncodeBatch writes the elements of values, a slice or array of c's Go
// type, as rows of a new (batchSize, c.Len()) tensor. A batchSize of zero
// means one row per value; a larger one leaves the trailing rows zero.
func EncodeBatch(ctx context.Context, b tensor.Backend, c Chunk, values reflect.Value, batchSize int,
	dtype tensor.DataType, cfg parallel.Config) (*tensor.RawTensor, error) {
	if values.Kind() != reflect.Slice && values.Kind() != reflect.Array {
		return nil, fieldErrf(nil, ErrTypeMismatch, "batch needs a slice or array, got %v", typeOf(values))
	}
	n := values.Len()
	if batchSize == 0 {
		batchSize = n
	}
	if batchSize < n {
		return nil, fmt.Errorf("%w: %d values for batch size %d", ErrShapeMismatch, n, batchSize)
	}

	buf, err := b.Zeros(tensor.Shape{batchSize, c.Len()}, dtype)
	if err != nil {
		return nil, err
	}
	row := c.Len()
	err = parallel.ForErr(ctx, n, func(_ context.Context, i int) error {
		if err := WriteAt(b, buf, i*row, c, values.Index(i)); err != nil {
			return within(err, fmt.Sprintf("[%d]", i))
		}
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeBatch reads every row of a (rows, c.Len()) tensor and returns a
// slice of c's Go type. A non-zero batchSize must equal the row count.
func DecodeBatch(ctx context.Context, b tensor.Backend, c Chunk, buf *tensor.RawTensor, batchSize int,
	cfg parallel.Config) (reflect.Value, error) {
	t := c.Descriptor().GoType
	if t == nil {
		return reflect.Value{}, checkValueType(c, reflect.Value{})
	}
	shape := buf.Shape()
	if len(shape) != 2 || shape[1] != c.Len() {
		return reflect.Value{}, fmt.Errorf("%w: layout needs (rows, %d), tensor is %v", ErrShapeMismatch, c.Len(), shape)
	}
	rows := shape[0]
	if batchSize != 0 && batchSize != rows {
		return reflect.Value{}, fmt.Errorf("%w: batch size %d for %d rows", ErrShapeMismatch, batchSize, rows)
	}

	out := reflect.MakeSlice(reflect.SliceOf(t), rows, rows)
	row := c.Len()
	err := parallel.ForErr(ctx, rows, func(_ context.Context, i int) error {
		v, err := ReadAt(b, buf, i*row, c)
		if err != nil {
			return within(err, fmt.Sprintf("[%d]", i))
		}
		out.Index(i).Set(v)
		return nil
	}, cfg)
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}
