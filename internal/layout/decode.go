package layout

import (
	"fmt"
	"reflect"

	"fortio.org/safecast"

	"github.com/born-ml/structtensor/internal/schema"
	"github.com/born-ml/structtensor/internal/tensor"
)

// absentThreshold decides absence of an Optional whose element can encode
// to all-zero or negative slots (see Optional.hot): the tag slot alone is
// read and compared against it. Soft tag scores at or below it read as
// present even when they exceed every element slot, so [0.3, 0.1] for a
// *float32 decodes to 0.1.
const absentThreshold = 0.5

// noHint marks a read without an arg-max computed by the enclosing chunk.
const noHint = -1

// Decode reads a value of c's Go type from buf, which must hold exactly c.Len() elements in one dimension.
func Decode(b tensor.Backend, c Chunk, buf *tensor.RawTensor) (reflect.Value, error) {
	if c.Descriptor().GoType == nil {
		return reflect.Value{}, fmt.Errorf("%w: layout %s is not bound to a Go type", schema.ErrUnsupportedType, c.Descriptor().Name)
	}
	if shape := buf.Shape(); len(shape) != 1 || shape[0] != c.Len() {
		return reflect.Value{}, fmt.Errorf("%w: layout needs (%d), tensor is %v", ErrShapeMismatch, c.Len(), shape)
	}
	return read(b, buf, 0, c, noHint)
}

// ReadAt reads a value of c's Go type from buf starting at element off.
func ReadAt(b tensor.Backend, buf *tensor.RawTensor, off int, c Chunk) (reflect.Value, error) {
	if c.Descriptor().GoType == nil {
		return reflect.Value{}, fmt.Errorf("%w: layout %s is not bound to a Go type", schema.ErrUnsupportedType, c.Descriptor().Name)
	}
	if off < 0 || off+c.Len() > buf.NumElements() {
		return reflect.Value{}, fmt.Errorf("%w: layout of %d elements at offset %d does not fit tensor %v",
			ErrShapeMismatch, c.Len(), off, buf.Shape())
	}
	return read(b, buf, off, c, noHint)
}

// read decodes chunk c at off. hint is an arg-max over c's own slots that
// the caller already computed, or noHint. Only enums use it; every chunk
// decodes identically without it.
func read(b tensor.Backend, buf *tensor.RawTensor, off int, c Chunk, hint int) (reflect.Value, error) {
	t := c.Descriptor().GoType
	switch c := c.(type) {
	case *Primitive:
		return readScalar(b.ScalarAt(buf, off), t)

	case *Enum:
		idx := hint
		if idx < 0 || idx >= len(c.options) {
			idx = b.Argmax(buf, off, off+c.length)
		}
		out := reflect.New(t).Elem()
		out.Set(c.options[idx])
		return out, nil

	case *Optional:
		if t.Kind() != reflect.Pointer {
			return reflect.Value{}, fieldErrf(nil, ErrTypeMismatch, "optional needs a pointer, got %v", t)
		}
		elemHint := noHint
		if c.hot {
			idx := b.Argmax(buf, off, off+c.length)
			if idx == 0 {
				return reflect.Zero(t), nil
			}
			elemHint = idx - 1
		} else if b.ScalarAt(buf, off) > absentThreshold {
			return reflect.Zero(t), nil
		}
		v, err := read(b, buf, off+1, c.elem, elemHint)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil

	case *Collection:
		var out reflect.Value
		switch t.Kind() {
		case reflect.Slice:
			out = reflect.MakeSlice(t, c.arity, c.arity)
		case reflect.Array:
			if t.Len() != c.arity {
				return reflect.Value{}, fieldErrf(nil, ErrShapeMismatch, "%v for %d slots", t, c.arity)
			}
			out = reflect.New(t).Elem()
		default:
			return reflect.Value{}, fieldErrf(nil, ErrTypeMismatch, "list needs a slice or array, got %v", t)
		}
		step := c.elem.Len()
		for i := 0; i < c.arity; i++ {
			v, err := read(b, buf, off+i*step, c.elem, noHint)
			if err != nil {
				return reflect.Value{}, within(err, fmt.Sprintf("[%d]", i))
			}
			out.Index(i).Set(v)
		}
		return out, nil

	case *Union:
		idx := b.Argmax(buf, off, off+len(c.alts))
		alt := c.alts[idx]
		v, err := read(b, buf, off+c.offsets[idx], alt, noHint)
		if err != nil {
			return reflect.Value{}, within(err, "("+alt.Descriptor().GoType.String()+")")
		}
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil

	case *Record:
		out := reflect.New(t).Elem()
		for _, f := range c.fields {
			v, err := read(b, buf, off+f.offset, f.chunk, noHint)
			if err != nil {
				return reflect.Value{}, within(err, f.name)
			}
			out.FieldByIndex(f.index).Set(v)
		}
		return out, nil

	default:
		panic(fmt.Sprintf("layout: unknown chunk %T", c))
	}
}

// readScalar converts an element to the primitive type t. Integers are
// rounded to the nearest value; results that do not fit t are errors.
func readScalar(f float64, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		out.SetBool(f != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := safecast.Round[int64](f)
		if err != nil || out.OverflowInt(n) {
			return reflect.Value{}, fieldErrf(f, ErrScalarOutOfRange, "as %v", t)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := safecast.Round[uint64](f)
		if err != nil || out.OverflowUint(n) {
			return reflect.Value{}, fieldErrf(f, ErrScalarOutOfRange, "as %v", t)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		out.SetFloat(f)
	default:
		return reflect.Value{}, fieldErrf(nil, ErrTypeMismatch, "%v is not a scalar", t)
	}
	return out, nil
}
