package equiv

import (
	"hash/fnv"
	"reflect"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
)

// Resolver is the minimal surface the entity comparer needs from a
// document: the ability to follow a reference to the valued entity it
// ultimately denotes. internal/document implements this; equiv takes it
// as a parameter rather than importing internal/document so the two
// packages don't form a cycle (document needs the comparers to build its
// member maps).
type Resolver interface {
	ReferencedValue(ref *ast.ReferenceEntity) (ast.Entity, bool)
}

// Resolve follows e to the valued entity it denotes: a reference follows
// its chain (through the resolver) to its target; any other entity
// resolves to itself. It returns ok=false only for a reference that
// cannot be resolved by r.
func Resolve(r Resolver, e ast.Entity) (ast.Entity, bool) {
	ref, ok := e.(*ast.ReferenceEntity)
	if !ok {
		return e, true
	}
	target, ok := r.ReferencedValue(ref)
	if !ok {
		return nil, false
	}
	return Resolve(r, target)
}

// EntitiesEqual reports whether a and b are semantically equivalent: an
// unresolved reference compares equal only to itself (by identity); two
// resolvable entities are equivalent iff their resolved values are
// equivalent. Two resolved simple values are equivalent iff their
// declared types, data types, and contents match (Null values match on
// data type alone). Two resolved complex values are equivalent iff they
// are the same object.
func EntitiesEqual(r Resolver, a, b ast.Entity) bool {
	ra, aok := Resolve(r, a)
	rb, bok := Resolve(r, b)
	if !aok || !bok {
		return !aok && !bok && a == b
	}
	switch av := ra.(type) {
	case *ast.SimpleEntity:
		bv, ok := rb.(*ast.SimpleEntity)
		if !ok {
			return false
		}
		if !TypesEqual(av.DeclaredType(), bv.DeclaredType()) {
			return false
		}
		if av.Value.DataType != bv.Value.DataType {
			return false
		}
		if av.Value.DataType == ast.Null {
			return true
		}
		return av.Value.Content == bv.Value.Content
	case *ast.ComplexEntity:
		bv, ok := rb.(*ast.ComplexEntity)
		return ok && av == bv
	default:
		panic(core.NewImplementationError("ast.Entity (resolved)", reflect.TypeOf(ra).String(), []string{"*ast.SimpleEntity", "*ast.ComplexEntity"}))
	}
}

// EntityHash mirrors EntitiesEqual's comparison shape.
func EntityHash(r Resolver, e ast.Entity) uint64 {
	resolved, ok := Resolve(r, e)
	if !ok {
		// Unresolved reference: hash by identity.
		h := fnv.New64a()
		ptr := reflect.ValueOf(e).Pointer()
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(ptr >> (8 * i))
		}
		h.Write(buf[:])
		return h.Sum64()
	}
	switch v := resolved.(type) {
	case *ast.SimpleEntity:
		h := fnv.New64a()
		hashType(h, v.DeclaredType())
		h.Write([]byte{byte(v.Value.DataType)})
		if v.Value.DataType != ast.Null {
			h.Write([]byte(v.Value.Content))
		}
		return h.Sum64()
	case *ast.ComplexEntity:
		ptr := reflect.ValueOf(v).Pointer()
		h := fnv.New64a()
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(ptr >> (8 * i))
		}
		h.Write(buf[:])
		return h.Sum64()
	default:
		panic(core.NewImplementationError("ast.Entity (resolved)", reflect.TypeOf(resolved).String(), []string{"*ast.SimpleEntity", "*ast.ComplexEntity"}))
	}
}
