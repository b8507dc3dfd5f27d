// Package schema describes record types as trees of layout-relevant shapes:
// primitives, enums, optionals, fixed lists, tagged unions and records.
//
// Descriptors come from Go types (Describe) or from TOML schema documents
// (ParseDocument). The layout compiler consumes them without caring which.
package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind classifies a Descriptor.
type Kind uint8

// Descriptor kinds.
const (
	KindPrimitive Kind = iota
	KindEnum
	KindOptional
	KindList
	KindUnion
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindUnion:
		return "union"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Descriptor is a type description. Only the fields relevant to Kind are set.
//
// GoType is the Go type values of this descriptor have. It is nil for
// descriptors built from schema documents, which can be compiled but not
// used to encode or decode values.
type Descriptor struct {
	Kind   Kind
	Name   string
	GoType reflect.Type

	// KindPrimitive: one of reflect.Bool, reflect.Int..., reflect.Float64.
	Scalar reflect.Kind

	// KindEnum: the declared options and their display labels, same order.
	Options []reflect.Value
	Labels  []string

	// KindOptional, KindList: the element type.
	Elem *Descriptor

	// KindList: the declared shape, outermost dimension first. Nil when the
	// declaration carries none.
	Shape []int

	// KindUnion: the alternatives in declaration order.
	Alternatives []*Descriptor

	// KindRecord: the fields in declaration order.
	Fields []Field
}

// Field is a named record member.
type Field struct {
	Name  string
	Index []int // struct field index for reflect.Value.FieldByIndex; nil for documents
	Type  *Descriptor
}

// Primitive returns a descriptor of a numeric or boolean scalar.
func Primitive(scalar reflect.Kind) *Descriptor {
	d := &Descriptor{Kind: KindPrimitive, Scalar: scalar, Name: scalar.String()}
	if !IsScalar(scalar) {
		d.Name = "unsupported:" + scalar.String()
	}
	return d
}

// Enum returns a descriptor of an enumeration identified by labels.
// Option values are the labels themselves.
func Enum(name string, labels ...string) *Descriptor {
	opts := make([]reflect.Value, len(labels))
	for i, l := range labels {
		opts[i] = reflect.ValueOf(l)
	}
	return &Descriptor{Kind: KindEnum, Name: name, Options: opts, Labels: append([]string(nil), labels...)}
}

// Optional returns a descriptor of a nullable elem.
func Optional(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindOptional, Name: "?" + elem.Name, Elem: elem}
}

// List returns a descriptor of a fixed-size list of elem with the given shape.
func List(elem *Descriptor, shape ...int) *Descriptor {
	return &Descriptor{Kind: KindList, Name: "[]" + elem.Name, Elem: elem, Shape: shape}
}

// Union returns a descriptor of a tagged union over alts.
func Union(name string, alts ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindUnion, Name: name, Alternatives: alts}
}

// Record returns a descriptor of a record with the given fields.
func Record(name string, fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindRecord, Name: name, Fields: fields}
}

// String renders the descriptor for error messages, e.g. "Watch{Movies []?Movie[2]}".
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.write(&sb, 0)
	return sb.String()
}

func (d *Descriptor) write(sb *strings.Builder, depth int) {
	if d == nil {
		sb.WriteString("<nil>")
		return
	}
	if depth > 4 {
		sb.WriteString(d.Name)
		return
	}
	switch d.Kind {
	case KindOptional:
		sb.WriteByte('?')
		d.Elem.write(sb, depth+1)
	case KindList:
		sb.WriteString("[]")
		d.Elem.write(sb, depth+1)
		if d.Shape != nil {
			fmt.Fprintf(sb, "%v", d.Shape)
		}
	case KindUnion:
		sb.WriteString(d.Name)
		sb.WriteByte('(')
		for i, alt := range d.Alternatives {
			if i > 0 {
				sb.WriteString(" | ")
			}
			alt.write(sb, depth+1)
		}
		sb.WriteByte(')')
	case KindRecord:
		sb.WriteString(d.Name)
		sb.WriteByte('{')
		for i, f := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteByte(' ')
			f.Type.write(sb, depth+1)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(d.Name)
	}
}

// IsScalar reports whether values of kind k can be stored as a single tensor element.
func IsScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
