package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// TagName is the struct tag key read by Describe.
//
//	Movies []Movie `tensor:"shape=2"`
//	Grid   [][]int `tensor:"shape=3,3;name=grid"`
//	Cache  []byte  `tensor:"-"`
const TagName = "tensor"

type fieldTag struct {
	skip  bool
	name  string
	shape []int
}

func parseFieldTag(tag string) (fieldTag, error) {
	var ft fieldTag
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ft, nil
	}
	if tag == "-" {
		ft.skip = true
		return ft, nil
	}
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ft, fmt.Errorf("tag %q: expected key=value, got %q", tag, part)
		}
		switch strings.TrimSpace(key) {
		case "name":
			ft.name = strings.TrimSpace(value)
		case "shape":
			shape, err := ParseShape(value)
			if err != nil {
				return ft, fmt.Errorf("tag %q: %w", tag, err)
			}
			ft.shape = shape
		default:
			return ft, fmt.Errorf("tag %q: unknown key %q", tag, key)
		}
	}
	return ft, nil
}

// ParseShape parses "2", "2,3" or "(2, 3)" into a shape. Every dimension
// must be a positive integer.
func ParseShape(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	if strings.TrimSpace(s) == "" {
		return nil, ErrShapeRequired
	}
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: dimension %q is not a positive integer", ErrShapeRequired, p)
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 {
		return nil, ErrShapeRequired
	}
	return shape, nil
}
