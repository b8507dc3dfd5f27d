package schema

import (
	"fmt"
	"reflect"
	"sync"
)

var unions = struct {
	sync.RWMutex
	alts map[reflect.Type][]reflect.Type
}{alts: make(map[reflect.Type][]reflect.Type)}

// RegisterUnion declares the ordered alternatives of the interface type
// iface. Fields of type iface are then laid out as tagged unions with one tag
// slot per alternative, in the order given here.
//
// A union can be registered only once: its order defines the layout.
func RegisterUnion(iface reflect.Type, alts ...reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("%w: union type %v is not an interface", ErrUnsupportedType, iface)
	}
	if len(alts) == 0 {
		return fmt.Errorf("%w: union %v has no alternatives", ErrUnsupportedType, iface)
	}
	seen := make(map[reflect.Type]bool, len(alts))
	for i, alt := range alts {
		switch {
		case alt == nil:
			return fmt.Errorf("%w: union %v: alternative %d is nil", ErrUnsupportedType, iface, i)
		case alt.Kind() == reflect.Interface:
			return fmt.Errorf("%w: union %v: alternative %v is an interface", ErrUnsupportedType, iface, alt)
		case !alt.Implements(iface):
			return fmt.Errorf("%w: union %v: %v does not implement it", ErrUnsupportedType, iface, alt)
		case seen[alt]:
			return fmt.Errorf("%w: union %v: duplicate alternative %v", ErrUnsupportedType, iface, alt)
		}
		seen[alt] = true
	}

	unions.Lock()
	defer unions.Unlock()
	if _, ok := unions.alts[iface]; ok {
		return fmt.Errorf("%w: %v", ErrUnionRegistered, iface)
	}
	unions.alts[iface] = append([]reflect.Type(nil), alts...)
	return nil
}

// UnionAlternatives returns the registered alternatives of iface.
func UnionAlternatives(iface reflect.Type) ([]reflect.Type, bool) {
	unions.RLock()
	defer unions.RUnlock()
	alts, ok := unions.alts[iface]
	return alts, ok
}
