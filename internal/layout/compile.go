package layout

import (
	"fmt"
	"reflect"

	"github.com/born-ml/structtensor/internal/schema"
)

// Compile builds the chunk tree of d. It is deterministic and uncached; use
// ForType to share compiled layouts of Go types.
func Compile(d *schema.Descriptor) (Chunk, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil descriptor", schema.ErrUnsupportedType)
	}
	switch d.Kind {
	case schema.KindPrimitive:
		if !schema.IsScalar(d.Scalar) {
			return nil, fmt.Errorf("%w: %s", schema.ErrUnsupportedType, d)
		}
		return &Primitive{base: base{desc: d, length: 1}}, nil

	case schema.KindEnum:
		if len(d.Options) == 0 {
			return nil, fmt.Errorf("%w: enum %s declares no options", schema.ErrUnsupportedType, d.Name)
		}
		return &Enum{base: base{desc: d, length: len(d.Options)}, options: d.Options}, nil

	case schema.KindOptional:
		elem, err := Compile(d.Elem)
		if err != nil {
			return nil, err
		}
		return &Optional{base: base{desc: d, length: 1 + elem.Len()}, elem: elem, hot: hot(elem)}, nil

	case schema.KindList:
		return compileList(d)

	case schema.KindUnion:
		if len(d.Alternatives) == 0 {
			return nil, fmt.Errorf("%w: union %s has no alternatives", schema.ErrUnsupportedType, d.Name)
		}
		c := &Union{base: base{desc: d}, alts: make([]Chunk, len(d.Alternatives)), offsets: make([]int, len(d.Alternatives))}
		cursor := len(d.Alternatives)
		for i, ad := range d.Alternatives {
			alt, err := Compile(ad)
			if err != nil {
				return nil, fmt.Errorf("union %s: %w", d.Name, err)
			}
			c.alts[i] = alt
			c.offsets[i] = cursor
			cursor += alt.Len()
		}
		c.length = cursor
		return c, nil

	case schema.KindRecord:
		c := &Record{base: base{desc: d}, fields: make([]recordField, len(d.Fields))}
		cursor := 0
		for i, f := range d.Fields {
			fc, err := Compile(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", d.Name, f.Name, err)
			}
			c.fields[i] = recordField{name: f.Name, index: f.Index, chunk: fc, offset: cursor}
			cursor += fc.Len()
		}
		c.length = cursor
		return c, nil

	default:
		return nil, fmt.Errorf("%w: %s", schema.ErrUnsupportedType, d)
	}
}

// compileList peels shape dimensions off one at a time, outermost first:
// shape [n, m] becomes a collection of n collections of m elements.
func compileList(d *schema.Descriptor) (Chunk, error) {
	if len(d.Shape) == 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrShapeRequired, d)
	}
	for _, dim := range d.Shape {
		if dim <= 0 {
			return nil, fmt.Errorf("%w: %s has non-positive dimension %d", schema.ErrShapeRequired, d, dim)
		}
	}

	var elem Chunk
	var err error
	if len(d.Shape) == 1 {
		elem, err = Compile(d.Elem)
	} else {
		inner := &schema.Descriptor{
			Kind:  schema.KindList,
			Name:  d.Name,
			Elem:  d.Elem,
			Shape: d.Shape[1:],
		}
		if d.GoType != nil && (d.GoType.Kind() == reflect.Slice || d.GoType.Kind() == reflect.Array) {
			inner.GoType = d.GoType.Elem()
		}
		elem, err = compileList(inner)
	}
	if err != nil {
		return nil, err
	}

	arity := d.Shape[0]
	return &Collection{base: base{desc: d, length: arity * elem.Len()}, elem: elem, arity: arity}, nil
}

// hot reports whether every encoding of c holds at least one strictly
// positive slot. Enums and union tags are one-hot. An absent Optional sets
// its tag but a present one writes a zero tag, so it is only as hot as its
// element.
func hot(c Chunk) bool {
	switch c := c.(type) {
	case *Primitive:
		return false
	case *Enum, *Union:
		return true
	case *Optional:
		return hot(c.elem)
	case *Collection:
		return c.arity > 0 && hot(c.elem)
	case *Record:
		for _, f := range c.fields {
			if hot(f.chunk) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("layout: unknown chunk %T", c))
	}
}
