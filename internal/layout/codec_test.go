package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/structtensor/internal/backend/cpu"
	"github.com/born-ml/structtensor/internal/schema"
	"github.com/born-ml/structtensor/internal/tensor"
)

func vec(t *testing.T, data ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape{len(data)})
	require.NoError(t, err)
	return raw
}

func encode[T any](t *testing.T, v T, dtype tensor.DataType) (*tensor.RawTensor, error) {
	t.Helper()
	return Encode(cpu.New(), mustCompile[T](t), reflect.ValueOf(&v).Elem(), dtype)
}

func decode[T any](t *testing.T, buf *tensor.RawTensor) (T, error) {
	t.Helper()
	var zero T
	v, err := Decode(cpu.New(), mustCompile[T](t), buf)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

func roundTrip[T any](t *testing.T, v T, dtype tensor.DataType) T {
	t.Helper()
	buf, err := encode(t, v, dtype)
	require.NoError(t, err)
	got, err := decode[T](t, buf)
	require.NoError(t, err)
	return got
}

func TestEnum_XYZ(t *testing.T) {
	buf, err := encode(t, pick{Choice: Y}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3}, buf.Shape())
	assert.Equal(t, []float32{0, 1, 0}, buf.AsFloat32())

	got, err := decode[pick](t, vec(t, 0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, pick{Choice: Y}, got)
}

func TestCollection_PadsOptionals(t *testing.T) {
	buf, err := encode(t, picks{Items: []*xyz{ptr(X)}}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		0, 1, 0, 0, // present X
		1, 0, 0, 0, // absent
	}, buf.AsFloat32())

	got, err := decode[picks](t, buf)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0])
	assert.Equal(t, X, *got.Items[0])
	assert.Nil(t, got.Items[1])
}

func TestEnum_OneHot(t *testing.T) {
	b := cpu.New()
	for _, opt := range X.Options() {
		buf, err := encode(t, pick{Choice: opt}, tensor.Float64)
		require.NoError(t, err)

		ones := 0
		for _, f := range buf.AsFloat64() {
			if f == 1 {
				ones++
			}
		}
		assert.Equal(t, 1, ones)
		assert.Equal(t, int(opt), b.Argmax(buf, 0, 3))
	}
}

func sampleScene() scene {
	return scene{
		Kind:   Z,
		Weight: 2.5,
		Count:  -7,
		Shapes: [2]shape{circle{Radius: 1.5}, square{Side: 3, Fill: "green"}},
		Maybe:  ptr(float32(0)),
		Viewer: &viewer{Age: 42, Premium: true},
		Pair:   &pair{A: Z, B: "green"},
		Grid:   [2][2]int8{{1, -2}, {3, 4}},
		Tags:   []*color{ptr(color("red")), nil},
	}
}

func TestRoundTrip_Scene(t *testing.T) {
	in := sampleScene()
	want := in
	want.Tags = []*color{ptr(color("red")), nil, nil}

	for _, dtype := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		t.Run(dtype.String(), func(t *testing.T) {
			assert.Equal(t, want, roundTrip(t, in, dtype))
		})
	}
}

func TestRoundTrip_IntegerDTypes(t *testing.T) {
	in := scene{
		Kind:   Y,
		Weight: 3,
		Count:  100,
		Shapes: [2]shape{square{Side: 9, Fill: "red"}, circle{Radius: 2}},
		Viewer: &viewer{},
		Grid:   [2][2]int8{{-1, 0}, {0, 1}},
		Tags:   []*color{nil, ptr(color("green")), nil},
	}
	for _, dtype := range []tensor.DataType{tensor.Int32, tensor.Int64} {
		t.Run(dtype.String(), func(t *testing.T) {
			assert.Equal(t, in, roundTrip(t, in, dtype))
		})
	}
}

func TestOptional_ColdElement(t *testing.T) {
	type rec struct {
		Maybe  *float32
		Viewer *viewer
	}

	// A present zero element encodes to all-zero slots and must not read back absent.
	got := roundTrip(t, rec{Maybe: ptr(float32(0)), Viewer: &viewer{}}, tensor.Float32)
	require.NotNil(t, got.Maybe)
	require.NotNil(t, got.Viewer)
	assert.Equal(t, float32(0), *got.Maybe)
	assert.Equal(t, viewer{}, *got.Viewer)

	// A negative element leaves the tag slot as the arg-max; it is still present.
	got = roundTrip(t, rec{Maybe: ptr(float32(-3))}, tensor.Float32)
	require.NotNil(t, got.Maybe)
	assert.Equal(t, float32(-3), *got.Maybe)
	assert.Nil(t, got.Viewer)
}

func TestOptional_ColdTagThreshold(t *testing.T) {
	got, err := decode[*float32](t, vec(t, 0.3, 0.1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.1, *got, 1e-6)

	got, err = decode[*float32](t, vec(t, 0.6, 0.9))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOptional_NestedColdElement(t *testing.T) {
	type twice struct{ P **float32 }
	type list struct{ L *[2]*float32 }

	for _, f := range []float32{0, -3} {
		got := roundTrip(t, twice{P: ptr(ptr(f))}, tensor.Float32)
		require.NotNil(t, got.P)
		require.NotNil(t, *got.P)
		assert.Equal(t, f, **got.P)
	}

	inner := twice{P: new(*float32)}
	buf, err := encode(t, inner, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, buf.AsFloat32())
	got, err := decode[twice](t, buf)
	require.NoError(t, err)
	require.NotNil(t, got.P)
	assert.Nil(t, *got.P)

	assert.Nil(t, roundTrip(t, twice{}, tensor.Float32).P)

	buf, err = encode(t, list{L: &[2]*float32{ptr(float32(-3)), ptr(float32(0))}}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, -3, 0, 0}, buf.AsFloat32())
	gotList, err := decode[list](t, buf)
	require.NoError(t, err)
	require.NotNil(t, gotList.L)
	require.NotNil(t, gotList.L[0])
	require.NotNil(t, gotList.L[1])
	assert.Equal(t, float32(-3), *gotList.L[0])
	assert.Equal(t, float32(0), *gotList.L[1])
}

func TestOptional_HotRecord(t *testing.T) {
	type rec struct{ Pair *pair }

	buf, err := encode(t, rec{Pair: &pair{A: X, B: "red"}}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 0, 1, 0}, buf.AsFloat32())

	got, err := decode[rec](t, buf)
	require.NoError(t, err)
	require.NotNil(t, got.Pair)
	assert.Equal(t, pair{A: X, B: "red"}, *got.Pair)

	got = roundTrip(t, rec{}, tensor.Float32)
	assert.Nil(t, got.Pair)
}

func TestDecode_SoftScores(t *testing.T) {
	// Model outputs are not one-hot; the arg-max still selects.
	got, err := decode[picks](t, vec(t,
		0.1, 0.2, 0.6, 0.1,
		0.7, 0.1, 0.1, 0.1,
	))
	require.NoError(t, err)
	require.NotNil(t, got.Items[0])
	assert.Equal(t, Y, *got.Items[0])
	assert.Nil(t, got.Items[1])

	// Ties go to the lowest index.
	got2, err := decode[pick](t, vec(t, 0.5, 0.5, 0.5))
	require.NoError(t, err)
	assert.Equal(t, X, got2.Choice)
}

func TestDecode_HintIsAdvisory(t *testing.T) {
	b := cpu.New()
	c := mustCompile[*xyz](t).(*Optional)

	for _, data := range [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{0.2, 0.1, 0.9, 0.3},
	} {
		buf := vec(t, data...)
		whole, err := read(b, buf, 0, c, noHint)
		require.NoError(t, err)

		idx := b.Argmax(buf, 0, 4)
		if idx == 0 {
			assert.True(t, whole.IsNil())
			continue
		}
		withHint, err := read(b, buf, 1, c.elem, idx-1)
		require.NoError(t, err)
		without, err := read(b, buf, 1, c.elem, noHint)
		require.NoError(t, err)
		assert.Equal(t, without.Interface(), withHint.Interface())
		assert.Equal(t, without.Interface(), whole.Elem().Interface())
	}

	// A record ignores a hint that does not apply to it.
	pc := mustCompile[pair](t)
	buf := vec(t, 0, 0, 1, 0, 1)
	v, err := read(b, buf, 0, pc, 0)
	require.NoError(t, err)
	assert.Equal(t, pair{A: Z, B: "green"}, v.Interface())
}

func TestUnion_SelectsByTag(t *testing.T) {
	type rec struct{ S shape }

	buf, err := encode(t, rec{S: square{Side: 5, Fill: "green"}}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 5, 0, 1}, buf.AsFloat32())

	// The tag decides even when an unselected block holds larger values.
	got, err := decode[rec](t, vec(t, 0, 1, 9, 5, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, square{Side: 5, Fill: "green"}, got.S)
}

func fieldPath(t *testing.T, err error) string {
	t.Helper()
	var fe *FieldError
	require.True(t, errors.As(err, &fe), "not a FieldError: %v", err)
	return fe.Path
}

func TestEncode_Errors(t *testing.T) {
	t.Run("invalid enum", func(t *testing.T) {
		_, err := encode(t, pick{Choice: xyz(7)}, tensor.Float32)
		require.ErrorIs(t, err, ErrInvalidCategoryValue)
		assert.Equal(t, "Choice", fieldPath(t, err))

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, xyz(7), fe.Value)
	})

	t.Run("nil union", func(t *testing.T) {
		s := sampleScene()
		s.Shapes[1] = nil
		_, err := encode(t, s, tensor.Float32)
		require.ErrorIs(t, err, ErrInvalidUnionValue)
		assert.Equal(t, "Shapes[1]", fieldPath(t, err))
	})

	t.Run("invalid enum inside union", func(t *testing.T) {
		s := sampleScene()
		s.Shapes[0] = square{Fill: "blue"}
		_, err := encode(t, s, tensor.Float32)
		require.ErrorIs(t, err, ErrInvalidCategoryValue)
		assert.Equal(t, "Shapes[0].(layout.square).Fill", fieldPath(t, err))
	})

	t.Run("over-length list", func(t *testing.T) {
		_, err := encode(t, picks{Items: []*xyz{ptr(X), ptr(Y), ptr(Z)}}, tensor.Float32)
		require.ErrorIs(t, err, ErrShapeMismatch)
		assert.Equal(t, "Items", fieldPath(t, err))
	})

	t.Run("padding needs optional", func(t *testing.T) {
		type rec struct {
			Items []xyz `tensor:"shape=3"`
		}
		_, err := encode(t, rec{Items: []xyz{X}}, tensor.Float32)
		require.ErrorIs(t, err, ErrPaddingRequiresOptional)
		assert.Equal(t, "Items[1]", fieldPath(t, err))
	})

	t.Run("fractional into integer dtype", func(t *testing.T) {
		_, err := encode(t, sampleScene(), tensor.Int32)
		require.ErrorIs(t, err, ErrScalarOutOfRange)
		assert.Equal(t, "Weight", fieldPath(t, err))
	})

	t.Run("integer overflows dtype", func(t *testing.T) {
		_, err := encode(t, counter{Count: 1 << 40}, tensor.Int32)
		require.ErrorIs(t, err, ErrScalarOutOfRange)
		assert.Equal(t, "Count", fieldPath(t, err))
	})

	t.Run("integer loses precision", func(t *testing.T) {
		_, err := encode(t, counter{Count: 1<<25 + 1}, tensor.Float32)
		require.ErrorIs(t, err, ErrScalarOutOfRange)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Encode(cpu.New(), mustCompile[pick](t), reflect.ValueOf(counter{}), tensor.Float32)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("document layout", func(t *testing.T) {
		c, err := Compile(schema.Enum("XYZ", "X", "Y", "Z"))
		require.NoError(t, err)
		_, err = Encode(cpu.New(), c, reflect.ValueOf("X"), tensor.Float32)
		assert.ErrorIs(t, err, schema.ErrUnsupportedType)
	})
}

func TestDecode_Errors(t *testing.T) {
	_, err := decode[pick](t, vec(t, 0, 1))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	two, err := tensor.FromSlice([]float32{0, 1, 0}, tensor.Shape{1, 3})
	require.NoError(t, err)
	_, err = decode[pick](t, two)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	type small struct{ N int8 }
	_, err = decode[small](t, vec(t, 300))
	require.ErrorIs(t, err, ErrScalarOutOfRange)
	assert.Equal(t, "N", fieldPath(t, err))

	type unsigned struct{ N uint16 }
	_, err = decode[unsigned](t, vec(t, -1))
	assert.ErrorIs(t, err, ErrScalarOutOfRange)

	_, err = decode[small](t, vec(t, float32(math.NaN())))
	assert.ErrorIs(t, err, ErrScalarOutOfRange)
}

func TestDecode_RoundsIntegers(t *testing.T) {
	type rec struct {
		N int16
		B bool
	}
	got, err := decode[rec](t, vec(t, 2.6, 0.3))
	require.NoError(t, err)
	assert.Equal(t, rec{N: 3, B: true}, got)
}

func TestWriteAtReadAt(t *testing.T) {
	b := cpu.New()
	c := mustCompile[pick](t)
	buf, err := b.Zeros(tensor.Shape{7}, tensor.Float32)
	require.NoError(t, err)

	require.NoError(t, WriteAt(b, buf, 4, c, reflect.ValueOf(pick{Choice: Z})))
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0, 1}, buf.AsFloat32())

	v, err := ReadAt(b, buf, 4, c)
	require.NoError(t, err)
	assert.Equal(t, pick{Choice: Z}, v.Interface())

	assert.ErrorIs(t, WriteAt(b, buf, 5, c, reflect.ValueOf(pick{})), ErrShapeMismatch)
	_, err = ReadAt(b, buf, -1, c)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFieldError_Message(t *testing.T) {
	_, err := encode(t, pick{Choice: xyz(7)}, tensor.Float32)
	require.Error(t, err)
	assert.Equal(t, "Choice: value is not a declared enum option: layout.xyz (value xyz(?))", err.Error())
}
