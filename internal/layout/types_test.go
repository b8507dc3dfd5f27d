package layout

import (
	"reflect"

	"github.com/born-ml/structtensor/internal/schema"
)

type xyz int

const (
	X xyz = iota
	Y
	Z
)

func (xyz) Options() []xyz { return []xyz{X, Y, Z} }

func (v xyz) String() string {
	switch v {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return "xyz(?)"
}

type color string

func (color) Options() []color { return []color{"red", "green"} }

type shape interface{ isShape() }

type circle struct {
	Radius float32
}

type square struct {
	Side int16
	Fill color
}

func (circle) isShape() {}
func (square) isShape() {}

func init() {
	if err := schema.RegisterUnion(reflect.TypeFor[shape](), reflect.TypeFor[circle](), reflect.TypeFor[square]()); err != nil {
		panic(err)
	}
}

type pick struct {
	Choice xyz
}

type picks struct {
	Items []*xyz `tensor:"shape=2"`
}

type viewer struct {
	Age     uint8
	Premium bool
}

type pair struct {
	A xyz
	B color
}

type scene struct {
	Kind   xyz
	Weight float64
	Count  int32
	Shapes [2]shape
	Maybe  *float32
	Viewer *viewer
	Pair   *pair
	Grid   [2][2]int8
	Tags   []*color `tensor:"shape=3"`
}

type counter struct {
	Count int64
}

type unshaped struct {
	Items []xyz
}

func ptr[T any](v T) *T { return &v }
