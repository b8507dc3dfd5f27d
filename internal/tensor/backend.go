package tensor

// Backend defines the capability set the record codec needs from a numeric
// backend. The codec never assumes anything beyond these operations and only
// ever computes offsets itself.
//
// All indices are flat element indices into the tensor, independent of its shape.
//
// Implementations:
//   - CPU: pure Go, all data types (internal/backend/cpu)
type Backend interface {
	// Zeros allocates a zero-filled tensor.
	Zeros(shape Shape, dtype DataType) (*RawTensor, error)

	// Argmax returns the index of the maximum element in [start, end),
	// relative to start. Ties are broken by the lowest index.
	Argmax(x *RawTensor, start, end int) int

	// ScalarAt reads element i as float64.
	ScalarAt(x *RawTensor, i int) float64

	// SetScalar stores v at element i. It fails when v is not exactly
	// representable in the tensor's data type.
	SetScalar(x *RawTensor, i int, v float64) error

	// Metadata
	Name() string
	Device() Device
}
