package layout

import (
	"fmt"
	"reflect"

	"fortio.org/safecast"

	"github.com/born-ml/structtensor/internal/schema"
	"github.com/born-ml/structtensor/internal/tensor"
)

// Encode writes v into a new zero-filled tensor of shape (c.Len()) and element type dtype.
// v must have the Go type c was compiled from.
func Encode(b tensor.Backend, c Chunk, v reflect.Value, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if err := checkValueType(c, v); err != nil {
		return nil, err
	}
	buf, err := b.Zeros(tensor.Shape{c.Len()}, dtype)
	if err != nil {
		return nil, err
	}
	if err := write(b, buf, 0, c, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteAt writes v into buf starting at element off. The covered range
// [off, off+c.Len()) must be zero.
func WriteAt(b tensor.Backend, buf *tensor.RawTensor, off int, c Chunk, v reflect.Value) error {
	if err := checkValueType(c, v); err != nil {
		return err
	}
	if off < 0 || off+c.Len() > buf.NumElements() {
		return fmt.Errorf("%w: layout of %d elements at offset %d does not fit tensor %v",
			ErrShapeMismatch, c.Len(), off, buf.Shape())
	}
	return write(b, buf, off, c, v)
}

func checkValueType(c Chunk, v reflect.Value) error {
	t := c.Descriptor().GoType
	if t == nil {
		return fmt.Errorf("%w: layout %s is not bound to a Go type", schema.ErrUnsupportedType, c.Descriptor().Name)
	}
	if !v.IsValid() || v.Type() != t {
		return fieldErrf(nil, ErrTypeMismatch, "want %v, got %v", t, typeOf(v))
	}
	return nil
}

func write(b tensor.Backend, buf *tensor.RawTensor, off int, c Chunk, v reflect.Value) error {
	switch c := c.(type) {
	case *Primitive:
		return writeScalar(b, buf, off, v)

	case *Enum:
		for i, opt := range c.options {
			if v.Type() == opt.Type() && v.Equal(opt) {
				return setOne(b, buf, off+i)
			}
		}
		return fieldErrf(v.Interface(), ErrInvalidCategoryValue, "%s", c.desc.Name)

	case *Optional:
		if v.Kind() != reflect.Pointer {
			return fieldErrf(nil, ErrTypeMismatch, "optional needs a pointer, got %v", v.Type())
		}
		if v.IsNil() {
			return setOne(b, buf, off)
		}
		return write(b, buf, off+1, c.elem, v.Elem())

	case *Collection:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return fieldErrf(nil, ErrTypeMismatch, "list needs a slice or array, got %v", v.Type())
		}
		n := v.Len()
		if n > c.arity {
			return fieldErrf(nil, ErrShapeMismatch, "%d elements for %d slots", n, c.arity)
		}
		step := c.elem.Len()
		for i := 0; i < c.arity; i++ {
			pos := off + i*step
			if i < n {
				if err := write(b, buf, pos, c.elem, v.Index(i)); err != nil {
					return within(err, fmt.Sprintf("[%d]", i))
				}
				continue
			}
			if _, ok := c.elem.(*Optional); !ok {
				return within(fieldErrf(nil, ErrPaddingRequiresOptional, "%d elements for %d slots", n, c.arity),
					fmt.Sprintf("[%d]", i))
			}
			if err := setOne(b, buf, pos); err != nil {
				return within(err, fmt.Sprintf("[%d]", i))
			}
		}
		return nil

	case *Union:
		if v.Kind() == reflect.Interface {
			if v.IsNil() {
				return fieldErrf(nil, ErrInvalidUnionValue, "nil %s", c.desc.Name)
			}
			v = v.Elem()
		}
		for i, alt := range c.alts {
			if alt.Descriptor().GoType != v.Type() {
				continue
			}
			if err := setOne(b, buf, off+i); err != nil {
				return err
			}
			if err := write(b, buf, off+c.offsets[i], alt, v); err != nil {
				return within(err, "("+v.Type().String()+")")
			}
			return nil
		}
		return fieldErrf(v.Interface(), ErrInvalidUnionValue, "%v is not an alternative of %s", v.Type(), c.desc.Name)

	case *Record:
		if v.Kind() != reflect.Struct {
			return fieldErrf(nil, ErrTypeMismatch, "record needs a struct, got %v", v.Type())
		}
		for _, f := range c.fields {
			if err := write(b, buf, off+f.offset, f.chunk, v.FieldByIndex(f.index)); err != nil {
				return within(err, f.name)
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("layout: unknown chunk %T", c))
	}
}

func setOne(b tensor.Backend, buf *tensor.RawTensor, i int) error {
	if err := b.SetScalar(buf, i, 1); err != nil {
		return fieldErrf(nil, ErrScalarOutOfRange, "%v", err)
	}
	return nil
}

// writeScalar stores a primitive. Integer and boolean values must survive
// the element type unchanged; floats are rounded by the backend.
func writeScalar(b tensor.Backend, buf *tensor.RawTensor, i int, v reflect.Value) error {
	var f float64
	exact := true
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			f = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := safecast.Convert[float64](v.Int())
		if err != nil {
			return fieldErrf(v.Interface(), ErrScalarOutOfRange, "%v", err)
		}
		f = n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := safecast.Convert[float64](v.Uint())
		if err != nil {
			return fieldErrf(v.Interface(), ErrScalarOutOfRange, "%v", err)
		}
		f = n
	case reflect.Float32, reflect.Float64:
		f = v.Float()
		exact = false
	default:
		return fieldErrf(nil, ErrTypeMismatch, "%v is not a scalar", v.Type())
	}

	if err := b.SetScalar(buf, i, f); err != nil {
		return fieldErrf(v.Interface(), ErrScalarOutOfRange, "%v", err)
	}
	if exact && b.ScalarAt(buf, i) != f {
		return fieldErrf(v.Interface(), ErrScalarOutOfRange, "%s element loses precision", buf.DType())
	}
	return nil
}

func typeOf(v reflect.Value) any {
	if !v.IsValid() {
		return "invalid value"
	}
	return v.Type()
}
