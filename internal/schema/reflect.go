package schema

import (
	"fmt"
	"reflect"
)

// Describe classifies the Go type t:
//
//   - bool, integer and float kinds are primitives;
//   - a type T with a method Options() []T is an enum, options in returned order;
//   - *T is an optional T;
//   - [N]T is a list of shape [N]; []T needs a shape from its field's tensor tag;
//   - interfaces registered with RegisterUnion are unions;
//   - structs are records over their exported fields.
//
// Everything else fails with ErrUnsupportedType.
func Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	d := describer{visiting: make(map[reflect.Type]bool)}
	return d.describe(t, nil)
}

type describer struct {
	visiting map[reflect.Type]bool
}

// describe classifies t. shape holds the tag dimensions not yet consumed by
// enclosing slices.
func (d *describer) describe(t reflect.Type, shape []int) (*Descriptor, error) {
	opts, isEnum, err := enumOptions(t)
	if err != nil {
		return nil, err
	}
	if isEnum {
		if err := noShapeLeft(t, shape); err != nil {
			return nil, err
		}
		labels := make([]string, len(opts))
		for i, o := range opts {
			labels[i] = fmt.Sprint(o.Interface())
		}
		return &Descriptor{Kind: KindEnum, Name: t.String(), GoType: t, Options: opts, Labels: labels}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := d.describe(t.Elem(), shape)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindOptional, Name: t.String(), GoType: t, Elem: elem}, nil

	case reflect.Array:
		elem, err := d.describe(t.Elem(), shape)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindList, Name: t.String(), GoType: t, Elem: elem, Shape: []int{t.Len()}}, nil

	case reflect.Slice:
		var dims, rest []int
		if len(shape) > 0 {
			dims, rest = shape[:1], shape[1:]
		}
		elem, err := d.describe(t.Elem(), rest)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindList, Name: t.String(), GoType: t, Elem: elem, Shape: dims}, nil

	case reflect.Interface:
		if err := noShapeLeft(t, shape); err != nil {
			return nil, err
		}
		return d.describeUnion(t)

	case reflect.Struct:
		if err := noShapeLeft(t, shape); err != nil {
			return nil, err
		}
		return d.describeRecord(t)

	default:
		if !IsScalar(t.Kind()) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
		}
		if err := noShapeLeft(t, shape); err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindPrimitive, Name: t.String(), GoType: t, Scalar: t.Kind()}, nil
	}
}

func (d *describer) describeUnion(t reflect.Type) (*Descriptor, error) {
	alts, ok := UnionAlternatives(t)
	if !ok {
		return nil, fmt.Errorf("%w: interface %v is not a registered union", ErrUnsupportedType, t)
	}
	desc := &Descriptor{Kind: KindUnion, Name: t.String(), GoType: t, Alternatives: make([]*Descriptor, len(alts))}
	for i, alt := range alts {
		ad, err := d.describe(alt, nil)
		if err != nil {
			return nil, fmt.Errorf("union %v: %w", t, err)
		}
		desc.Alternatives[i] = ad
	}
	return desc, nil
}

func (d *describer) describeRecord(t reflect.Type) (*Descriptor, error) {
	if d.visiting[t] {
		return nil, fmt.Errorf("%w: %v is recursive and has no fixed size", ErrUnsupportedType, t)
	}
	d.visiting[t] = true
	defer delete(d.visiting, t)

	desc := &Descriptor{Kind: KindRecord, Name: t.String(), GoType: t}
	exported := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		exported++
		tag, err := parseFieldTag(f.Tag.Get(TagName))
		if err != nil {
			return nil, fmt.Errorf("%v.%s: %w", t, f.Name, err)
		}
		if tag.skip {
			continue
		}
		name := f.Name
		if tag.name != "" {
			name = tag.name
		}
		ft, err := d.describe(f.Type, tag.shape)
		if err != nil {
			return nil, fmt.Errorf("%v.%s: %w", t, f.Name, err)
		}
		desc.Fields = append(desc.Fields, Field{Name: name, Index: f.Index, Type: ft})
	}
	if exported == 0 && t.NumField() > 0 {
		return nil, fmt.Errorf("%w: %v has no exported fields", ErrUnsupportedType, t)
	}
	return desc, nil
}

// enumOptions reports whether t declares its options through a method
// Options() []T and returns them.
func enumOptions(t reflect.Type) ([]reflect.Value, bool, error) {
	if t.Kind() == reflect.Interface {
		return nil, false, nil
	}
	m, ok := t.MethodByName("Options")
	if !ok {
		return nil, false, nil
	}
	mt := m.Type
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != reflect.SliceOf(t) {
		return nil, false, nil
	}
	if !t.Comparable() {
		return nil, false, fmt.Errorf("%w: enum %v is not comparable", ErrUnsupportedType, t)
	}
	list := m.Func.Call([]reflect.Value{reflect.Zero(t)})[0]
	if list.Len() == 0 {
		return nil, false, fmt.Errorf("%w: enum %v declares no options", ErrUnsupportedType, t)
	}
	opts := make([]reflect.Value, list.Len())
	for i := range opts {
		opts[i] = list.Index(i)
	}
	return opts, true, nil
}

func noShapeLeft(t reflect.Type, shape []int) error {
	if len(shape) == 0 {
		return nil
	}
	return fmt.Errorf("%w: shape %v has more dimensions than %v has lists", ErrUnsupportedType, shape, t)
}
