// Package layout compiles record descriptors into flat tensor layouts and
// converts values to and from tensors laid out that way.
//
// A compiled layout is a tree of chunks. Every chunk covers a fixed number of
// tensor elements that depends only on its type; children occupy disjoint,
// contiguous ranges of their parent in declaration order. Chunk trees are
// never modified after Compile returns and may be shared between goroutines.
//
// The layout of a record is stable: a buffer written by one process can be
// read by another that compiled the same type (compare Fingerprint values).
package layout

import (
	"fmt"
	"reflect"

	"github.com/born-ml/structtensor/internal/schema"
)

// Kind identifies a chunk variant.
type Kind uint8

// Chunk kinds. Adding a kind requires handling it in compile, write, read,
// hot and Plan; each of those panics on a kind it does not know.
const (
	KindPrimitive Kind = iota
	KindEnum
	KindOptional
	KindCollection
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
	case KindCollection:
		return "collection"
	case KindUnion:
		return "union"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Chunk is a compiled layout node. The set of implementations is closed:
// *Primitive, *Enum, *Optional, *Collection, *Union and *Record.
type Chunk interface {
	// Len is the number of tensor elements the chunk covers.
	Len() int
	// Kind identifies the variant.
	Kind() Kind
	// Descriptor is the type description the chunk was compiled from.
	Descriptor() *schema.Descriptor

	sealed()
}

type base struct {
	desc   *schema.Descriptor
	length int
}

func (b *base) Len() int                       { return b.length }
func (b *base) Descriptor() *schema.Descriptor { return b.desc }
func (b *base) sealed()                        {}

// Primitive stores one scalar verbatim.
type Primitive struct {
	base
}

// Kind implements Chunk.
func (*Primitive) Kind() Kind { return KindPrimitive }

// Enum stores a one-hot vector over its declared options.
type Enum struct {
	base
	options []reflect.Value
}

// Kind implements Chunk.
func (*Enum) Kind() Kind { return KindEnum }

// Options returns the number of declared options.
func (c *Enum) Options() int { return len(c.options) }

// Optional stores an "is absent" tag slot followed by its element.
type Optional struct {
	base
	elem Chunk
	// hot is set when every present encoding of elem holds a strictly
	// positive slot, so a span-wide arg-max can tell absence apart.
	hot bool
}

// Kind implements Chunk.
func (*Optional) Kind() Kind { return KindOptional }

// Elem returns the element chunk.
func (c *Optional) Elem() Chunk { return c.elem }

// Collection stores arity contiguous element blocks.
type Collection struct {
	base
	elem  Chunk
	arity int
}

// Kind implements Chunk.
func (*Collection) Kind() Kind { return KindCollection }

// Elem returns the element chunk.
func (c *Collection) Elem() Chunk { return c.elem }

// Arity returns the number of element blocks.
func (c *Collection) Arity() int { return c.arity }

// Union stores one tag slot per alternative followed by every alternative's
// own block. Blocks are reserved whether or not their alternative is active.
type Union struct {
	base
	alts    []Chunk
	offsets []int // offset of each alternative's block, relative to the union
}

// Kind implements Chunk.
func (*Union) Kind() Kind { return KindUnion }

// Alternatives returns the number of alternatives.
func (c *Union) Alternatives() int { return len(c.alts) }

// Record stores its fields contiguously in declaration order.
type Record struct {
	base
	fields []recordField
}

type recordField struct {
	name   string
	index  []int
	chunk  Chunk
	offset int // relative to the record
}

// Kind implements Chunk.
func (*Record) Kind() Kind { return KindRecord }

// Fields returns the number of fields.
func (c *Record) Fields() int { return len(c.fields) }
