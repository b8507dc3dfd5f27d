package record

import (
	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/tensor"
)

// Option configures a Codec.
type Option func(*options)

type options struct {
	dtype    tensor.DataType
	parallel parallel.Config
	uncached bool
}

func defaultOptions() options {
	return options{
		dtype:    tensor.DefaultDataType,
		parallel: parallel.DefaultConfig(),
	}
}

// WithDType sets the element type ToTensor and ToTensorBatch allocate.
func WithDType(dtype tensor.DataType) Option {
	return func(o *options) {
		o.dtype = dtype
	}
}

// WithParallel sets how batch rows are spread over goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

// WithoutCache compiles the layout for this codec alone instead of sharing
// the process-wide compiled layout of the type.
func WithoutCache() Option {
	return func(o *options) {
		o.uncached = true
	}
}
