package layout

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/born-ml/structtensor/internal/schema"
)

// cacheEntry holds the outcome of compiling one Go type. Failures are
// cached too: describing and compiling a type is deterministic.
type cacheEntry struct {
	chunk Chunk
	err   error
}

var (
	typeCache sync.Map // reflect.Type -> *cacheEntry
	compiling singleflight.Group
)

// ForType returns the compiled layout of t, compiling it on first use.
// Concurrent first requests for the same type compile it once.
func ForType(t reflect.Type) (Chunk, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", schema.ErrUnsupportedType)
	}
	if e, ok := typeCache.Load(t); ok {
		entry := e.(*cacheEntry)
		return entry.chunk, entry.err
	}

	v, _, _ := compiling.Do(fmt.Sprintf("%p", t), func() (any, error) {
		if e, ok := typeCache.Load(t); ok {
			return e, nil
		}
		entry := &cacheEntry{}
		entry.chunk, entry.err = CompileType(t)
		if entry.err != nil {
			Logger().Debug("layout compile failed", zap.Stringer("type", t), zap.Error(entry.err))
		} else {
			Logger().Debug("layout compiled",
				zap.Stringer("type", t),
				zap.Int("len", entry.chunk.Len()),
				zap.String("fingerprint", fmt.Sprintf("%016x", Fingerprint(entry.chunk))))
		}
		actual, _ := typeCache.LoadOrStore(t, entry)
		return actual, nil
	})
	entry := v.(*cacheEntry)
	return entry.chunk, entry.err
}

// CompileType describes and compiles t without consulting the cache.
func CompileType(t reflect.Type) (Chunk, error) {
	d, err := schema.Describe(t)
	if err != nil {
		return nil, err
	}
	return Compile(d)
}

// Precompile fills the cache for the given types and returns the first error.
func Precompile(types ...reflect.Type) error {
	for _, t := range types {
		if _, err := ForType(t); err != nil {
			return err
		}
	}
	return nil
}

// ResetCache forgets every compiled layout. Union registrations made after
// a type was first compiled only take effect once the cache is reset.
func ResetCache() {
	typeCache.Range(func(k, _ any) bool {
		typeCache.Delete(k)
		return true
	})
}
