package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/born-ml/structtensor/internal/tensor"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		x    func() (*tensor.RawTensor, error)
	}{
		{"float32", func() (*tensor.RawTensor, error) {
			return tensor.FromSlice([]float32{0, 1, 0, 2.5, -3, 1}, tensor.Shape{2, 3})
		}},
		{"int64", func() (*tensor.RawTensor, error) {
			return tensor.FromSlice([]int64{1 << 40, -1}, tensor.Shape{2})
		}},
		{"bool", func() (*tensor.RawTensor, error) {
			return tensor.FromSlice([]bool{true, false, true}, tensor.Shape{3})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := tt.x()
			require.NoError(t, err)

			data, err := Marshal(x, 0xfeed)
			require.NoError(t, err)

			got, err := Unmarshal(data, 0xfeed)
			require.NoError(t, err)
			assert.Equal(t, x.Shape(), got.Shape())
			assert.Equal(t, x.DType(), got.DType())
			assert.Equal(t, x.Data(), got.Data())
		})
	}
}

func TestUnmarshal_Row(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	row, err := x.Row(1)
	require.NoError(t, err)

	data, err := Marshal(row, 7)
	require.NoError(t, err)
	got, err := Unmarshal(data, 7)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, got.AsFloat64())
}

func TestUnmarshal_Errors(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	data, err := Marshal(x, 1)
	require.NoError(t, err)

	_, err = Unmarshal(data, 2)
	assert.ErrorIs(t, err, ErrLayoutMismatch)

	_, err = Unmarshal([]byte{0xc1}, 1)
	assert.ErrorIs(t, err, ErrCorrupt)

	short, err := msgpack.Marshal(&Envelope{Fingerprint: 1, DType: "float32", Shape: []int{2}, Data: []byte{0, 0}})
	require.NoError(t, err)
	_, err = Unmarshal(short, 1)
	assert.ErrorIs(t, err, ErrCorrupt)

	badType, err := msgpack.Marshal(&Envelope{Fingerprint: 1, DType: "complex64", Shape: []int{1}})
	require.NoError(t, err)
	_, err = Unmarshal(badType, 1)
	assert.ErrorIs(t, err, ErrCorrupt)
}
