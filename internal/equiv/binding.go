package equiv

import (
	"hash/fnv"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// BindingKeysEqual delegates index-parameter comparison to the entity
// comparer; binding names compare by (isExtension, name); binding
// indices compare element-wise.
func BindingKeysEqual(r Resolver, a, b ast.BindingKey) bool {
	switch av := a.(type) {
	case *ast.BindingName:
		bv, ok := b.(*ast.BindingName)
		return ok && av.IsExtension == bv.IsExtension && av.Name == bv.Name
	case *ast.BindingIndex:
		bv, ok := b.(*ast.BindingIndex)
		if !ok || len(av.Parameters) != len(bv.Parameters) {
			return false
		}
		for i := range av.Parameters {
			if !EntitiesEqual(r, av.Parameters[i], bv.Parameters[i]) {
				return false
			}
		}
		return true
	default:
		panic(core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"}))
	}
}

// BindingKeyHash mirrors BindingKeysEqual's comparison shape, mixing in
// small primes per key element to avoid trivial collisions between a
// single-parameter index and a same-valued name.
func BindingKeyHash(r Resolver, k ast.BindingKey) uint64 {
	h := fnv.New64a()
	switch v := k.(type) {
	case *ast.BindingName:
		h.Write([]byte{0x4e}) // 'N'
		if v.IsExtension {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		h.Write([]byte(v.Name))
	case *ast.BindingIndex:
		h.Write([]byte{0x49}) // 'I'
		for _, p := range v.Parameters {
			eh := EntityHash(r, p)
			var buf [8]byte
			for i := range buf {
				buf[i] = byte(eh >> (8 * i))
			}
			h.Write(buf[:])
			h.Write([]byte{0x97}) // mixing byte between elements
		}
	default:
		panic(core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"}))
	}
	return h.Sum64()
}
