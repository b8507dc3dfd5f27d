package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Document is a schema declared in TOML rather than Go:
//
//	[enums.Movie]
//	options = ["MATRIX", "TOWERS"]
//
//	[unions.Next]
//	alternatives = ["Movie", "Show"]
//
//	[records.Watch]
//	fields = [
//	  { name = "movies", type = "[]?Movie", shape = [2] },
//	  { name = "rating", type = "float32" },
//	]
//
// Type expressions are primitive names (bool, int8..int64, uint8..uint64,
// float32, float64), declared enum/union/record names, "?T" for an optional
// and "[]T" for a list taking its dimensions from the field's shape.
type Document struct {
	file  documentFile
	built map[string]*Descriptor
}

type documentFile struct {
	Enums   map[string]enumDecl   `toml:"enums"`
	Unions  map[string]unionDecl  `toml:"unions"`
	Records map[string]recordDecl `toml:"records"`
}

type enumDecl struct {
	Options []string `toml:"options"`
}

type unionDecl struct {
	Alternatives []string `toml:"alternatives"`
}

type recordDecl struct {
	Fields []fieldDecl `toml:"fields"`
}

type fieldDecl struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Shape []int  `toml:"shape"`
}

var primitiveNames = map[string]reflect.Kind{
	"bool":    reflect.Bool,
	"int":     reflect.Int,
	"int8":    reflect.Int8,
	"int16":   reflect.Int16,
	"int32":   reflect.Int32,
	"int64":   reflect.Int64,
	"uint":    reflect.Uint,
	"uint8":   reflect.Uint8,
	"uint16":  reflect.Uint16,
	"uint32":  reflect.Uint32,
	"uint64":  reflect.Uint64,
	"float32": reflect.Float32,
	"float64": reflect.Float64,
}

// LoadDocument reads a TOML schema document from path.
func LoadDocument(path string) (*Document, error) {
	var file documentFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	doc, err := newDocument(file, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument parses a TOML schema document.
func ParseDocument(data string) (*Document, error) {
	var file documentFile
	meta, err := toml.Decode(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return newDocument(file, meta)
}

func newDocument(file documentFile, meta toml.MetaData) (*Document, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown schema keys: %v", undecoded)
	}
	seen := make(map[string]string)
	declare := func(section, name string) error {
		if _, ok := primitiveNames[name]; ok {
			return fmt.Errorf("%s %q shadows a primitive type", section, name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s %q is already declared as %s", section, name, prev)
		}
		seen[name] = section
		return nil
	}
	for name := range file.Enums {
		if err := declare("enum", name); err != nil {
			return nil, err
		}
	}
	for name := range file.Unions {
		if err := declare("union", name); err != nil {
			return nil, err
		}
	}
	for name := range file.Records {
		if err := declare("record", name); err != nil {
			return nil, err
		}
	}
	return &Document{file: file, built: make(map[string]*Descriptor)}, nil
}

// Records returns the declared record names in sorted order.
func (doc *Document) Records() []string {
	names := make([]string, 0, len(doc.file.Records))
	for name := range doc.file.Records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Record builds the descriptor of the named record.
// A Document is not safe for concurrent use.
func (doc *Document) Record(name string) (*Descriptor, error) {
	if _, ok := doc.file.Records[name]; !ok {
		return nil, fmt.Errorf("%w: no record %q in schema", ErrUnsupportedType, name)
	}
	return doc.named(name, make(map[string]bool))
}

func (doc *Document) named(name string, visiting map[string]bool) (*Descriptor, error) {
	if d, ok := doc.built[name]; ok {
		return d, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: %s is recursive and has no fixed size", ErrUnsupportedType, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var desc *Descriptor
	if e, ok := doc.file.Enums[name]; ok {
		if len(e.Options) == 0 {
			return nil, fmt.Errorf("%w: enum %s declares no options", ErrUnsupportedType, name)
		}
		desc = Enum(name, e.Options...)
	} else if u, ok := doc.file.Unions[name]; ok {
		if len(u.Alternatives) == 0 {
			return nil, fmt.Errorf("%w: union %s has no alternatives", ErrUnsupportedType, name)
		}
		alts := make([]*Descriptor, len(u.Alternatives))
		for i, expr := range u.Alternatives {
			alt, err := doc.resolve(expr, nil, visiting)
			if err != nil {
				return nil, fmt.Errorf("union %s: %w", name, err)
			}
			alts[i] = alt
		}
		desc = Union(name, alts...)
	} else if r, ok := doc.file.Records[name]; ok {
		fields := make([]Field, len(r.Fields))
		for i, f := range r.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("%w: record %s: field %d has no name", ErrUnsupportedType, name, i)
			}
			ft, err := doc.resolve(f.Type, f.Shape, visiting)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		desc = Record(name, fields...)
	} else {
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnsupportedType, name)
	}
	doc.built[name] = desc
	return desc, nil
}

func (doc *Document) resolve(expr string, shape []int, visiting map[string]bool) (*Descriptor, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return nil, fmt.Errorf("%w: empty type expression", ErrUnsupportedType)
	case strings.HasPrefix(expr, "?"):
		elem, err := doc.resolve(expr[1:], shape, visiting)
		if err != nil {
			return nil, err
		}
		return Optional(elem), nil
	case strings.HasPrefix(expr, "[]"):
		var dims, rest []int
		if len(shape) > 0 {
			dims, rest = shape[:1], shape[1:]
		}
		elem, err := doc.resolve(expr[2:], rest, visiting)
		if err != nil {
			return nil, err
		}
		return List(elem, dims...), nil
	}

	if len(shape) > 0 {
		return nil, fmt.Errorf("%w: shape %v has more dimensions than %s has lists", ErrUnsupportedType, shape, expr)
	}
	if kind, ok := primitiveNames[expr]; ok {
		return Primitive(kind), nil
	}
	return doc.named(expr, visiting)
}
