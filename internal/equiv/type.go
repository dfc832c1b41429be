// Package equiv implements the structural and document-aware
// equivalence comparers of spec.md §4.6: type equivalence, binding-key
// equivalence, and semantic (reference-resolving) entity equivalence.
package equiv

import (
	"hash/fnv"
	"io"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// TypesEqual reports whether two type expressions are structurally
// equivalent: named types compare (isExtension, name, ordered
// parameters); collection types compare element type; union types
// compare ordered permitted types.
func TypesEqual(a, b ast.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case *ast.NamedType:
		bt, ok := b.(*ast.NamedType)
		if !ok || at.IsExtension != bt.IsExtension || at.Name != bt.Name || len(at.Parameters) != len(bt.Parameters) {
			return false
		}
		for i := range at.Parameters {
			if !TypesEqual(at.Parameters[i], bt.Parameters[i]) {
				return false
			}
		}
		return true
	case *ast.CollectionType:
		bt, ok := b.(*ast.CollectionType)
		return ok && TypesEqual(at.Element, bt.Element)
	case *ast.UnionType:
		bt, ok := b.(*ast.UnionType)
		if !ok || len(at.Permitted) != len(bt.Permitted) {
			return false
		}
		for i := range at.Permitted {
			if !TypesEqual(at.Permitted[i], bt.Permitted[i]) {
				return false
			}
		}
		return true
	default:
		panic(core.NewImplementationError("ast.Type", "unknown", []string{"NamedType", "CollectionType", "UnionType"}))
	}
}

// TypeHash mirrors TypesEqual's comparison shape so that TypesEqual(a,b)
// implies TypeHash(a) == TypeHash(b).
func TypeHash(t ast.Type) uint64 {
	h := fnv.New64a()
	hashType(h, t)
	return h.Sum64()
}

func hashType(w io.Writer, t ast.Type) {
	if t == nil {
		w.Write([]byte{0})
		return
	}
	switch v := t.(type) {
	case *ast.NamedType:
		w.Write([]byte{1})
		if v.IsExtension {
			w.Write([]byte{1})
		} else {
			w.Write([]byte{0})
		}
		io.WriteString(w, v.Name)
		for _, p := range v.Parameters {
			hashType(w, p)
		}
	case *ast.CollectionType:
		w.Write([]byte{2})
		hashType(w, v.Element)
	case *ast.UnionType:
		w.Write([]byte{3})
		for _, p := range v.Permitted {
			hashType(w, p)
		}
	default:
		panic(core.NewImplementationError("ast.Type", "unknown", []string{"NamedType", "CollectionType", "UnionType"}))
	}
}
