package layout

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Slot describes the range one chunk covers inside a flattened layout.
type Slot struct {
	Path   string `msgpack:"path"`
	Kind   Kind   `msgpack:"kind"`
	Offset int    `msgpack:"offset"`
	Len    int    `msgpack:"len"`
	// Detail is the scalar kind of a primitive or the "|"-joined option
	// labels of an enum; empty otherwise.
	Detail string `msgpack:"detail,omitempty"`
}

func (s Slot) String() string {
	if s.Detail == "" {
		return fmt.Sprintf("%s %s [%d:%d]", s.Path, s.Kind, s.Offset, s.Offset+s.Len)
	}
	return fmt.Sprintf("%s %s(%s) [%d:%d]", s.Path, s.Kind, s.Detail, s.Offset, s.Offset+s.Len)
}

// Plan flattens c into one slot per chunk, parents before children.
// Offsets are absolute. Paths name record fields, list elements ("[i]"),
// optional elements ("?") and union alternatives ("(Name)"); the root is ".".
func Plan(c Chunk) []Slot {
	var slots []Slot
	plan(c, "", 0, &slots)
	return slots
}

func plan(c Chunk, path string, off int, slots *[]Slot) {
	s := Slot{Path: path, Kind: c.Kind(), Offset: off, Len: c.Len()}
	if s.Path == "" {
		s.Path = "."
	}
	switch c := c.(type) {
	case *Primitive:
		s.Detail = c.desc.Scalar.String()
		*slots = append(*slots, s)
	case *Enum:
		s.Detail = strings.Join(c.desc.Labels, "|")
		*slots = append(*slots, s)
	case *Optional:
		*slots = append(*slots, s)
		plan(c.elem, path+"?", off+1, slots)
	case *Collection:
		*slots = append(*slots, s)
		for i := 0; i < c.arity; i++ {
			plan(c.elem, fmt.Sprintf("%s[%d]", path, i), off+i*c.elem.Len(), slots)
		}
	case *Union:
		*slots = append(*slots, s)
		for i, alt := range c.alts {
			plan(alt, path+"("+shortName(alt.Descriptor().Name)+")", off+c.offsets[i], slots)
		}
	case *Record:
		*slots = append(*slots, s)
		for _, f := range c.fields {
			p := f.name
			if path != "" {
				p = path + "." + f.name
			}
			plan(f.chunk, p, off+f.offset, slots)
		}
	default:
		panic(fmt.Sprintf("layout: unknown chunk %T", c))
	}
}

// Fingerprint hashes the plan of c. Two chunks with equal fingerprints lay
// out the same paths, kinds, option labels and offsets.
func Fingerprint(c Chunk) uint64 {
	h := xxhash.New()
	var n [8]byte
	for _, s := range Plan(c) {
		_, _ = h.WriteString(s.Path)
		_, _ = h.Write([]byte{0, byte(s.Kind)})
		binary.BigEndian.PutUint64(n[:], uint64(s.Offset))
		_, _ = h.Write(n[:])
		binary.BigEndian.PutUint64(n[:], uint64(s.Len))
		_, _ = h.Write(n[:])
		_, _ = h.WriteString(s.Detail)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// shortName drops the package qualifier of a Go type name.
func shortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
