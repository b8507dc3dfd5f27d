package dataset

import (
	"context"

	"github.com/born-ml/structtensor/internal/record"
	"github.com/born-ml/structtensor/internal/tensor"
)

// ManifestFor describes the layout codec c encodes with.
func ManifestFor[T any](c *record.Codec[T]) Manifest {
	return Manifest{
		Fingerprint: c.Fingerprint(),
		Len:         c.Len(),
		DType:       c.DType().String(),
		Slots:       c.Layout(),
	}
}

// AppendRecords encodes values with c and stores them as rows.
func AppendRecords[T any](ctx context.Context, s *Store, c *record.Codec[T], values []T) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	x, err := c.ToTensorBatch(ctx, values)
	if err != nil {
		return 0, err
	}
	return s.Append(ManifestFor(c), x)
}

// LoadRecords decodes every row stored for c's layout.
func LoadRecords[T any](ctx context.Context, s *Store, c *record.Codec[T], b tensor.Backend) ([]T, error) {
	x, err := s.Load(c.Fingerprint(), b)
	if err != nil {
		return nil, err
	}
	return c.FromTensorBatch(ctx, x)
}
