package ast

import "github.com/oxhq/ston/internal/core"

// InitialContext is the sealed family identifying where a reference
// address begins resolution: an ancestor of the reference-defining
// entity, or a globally identified entity (possibly the document core).
type InitialContext interface {
	sealInitialContext()
	Clone() InitialContext
}

// AncestorInitialContext walks Order parents up from the entity that
// owns the reference; Order 0 denotes the reference-defining entity
// itself.
type AncestorInitialContext struct {
	Order int
}

func (*AncestorInitialContext) sealInitialContext() {}

func (c *AncestorInitialContext) Clone() InitialContext {
	return &AncestorInitialContext{Order: c.Order}
}

func NewAncestorInitialContext(order int) (*AncestorInitialContext, error) {
	if order < 0 {
		return nil, core.NewValueError("An ancestor initial context's order must be non-negative.")
	}
	return &AncestorInitialContext{Order: order}, nil
}

// GlobalInitialContext resolves to the globally identified entity named
// by ID; the empty string denotes the document core.
type GlobalInitialContext struct {
	ID string
}

func (*GlobalInitialContext) sealInitialContext() {}

func (c *GlobalInitialContext) Clone() InitialContext {
	return &GlobalInitialContext{ID: c.ID}
}

func NewGlobalInitialContext(id string) *GlobalInitialContext {
	return &GlobalInitialContext{ID: id}
}

// PathSegment is the sealed family of address path segments.
type PathSegment interface {
	sealPathSegment()
	Clone() PathSegment
}

// AncestorSegment walks Order (>=1) parents up from the current context.
type AncestorSegment struct {
	Order int
}

func (*AncestorSegment) sealPathSegment() {}

func (s *AncestorSegment) Clone() PathSegment { return &AncestorSegment{Order: s.Order} }

func NewAncestorSegment(order int) (*AncestorSegment, error) {
	if order < 1 {
		return nil, core.NewValueError("An ancestor path segment's order must be at least 1.")
	}
	return &AncestorSegment{Order: order}, nil
}

// MemberSegment looks up a binding key in the current context's member map.
type MemberSegment struct {
	Key BindingKey
}

func (*MemberSegment) sealPathSegment() {}

func (s *MemberSegment) Clone() PathSegment { return &MemberSegment{Key: s.Key.Clone()} }

func NewMemberSegment(key BindingKey) (*MemberSegment, error) {
	if key == nil {
		return nil, core.NewValueError("A member path segment must carry a binding key.")
	}
	return &MemberSegment{Key: key.Clone()}, nil
}

// CollectionElementSegment indexes into the current context's
// collection-init by a resolved non-negative integer. Index must be
// implicitly typed (structural check here); the deeper "resolves to a
// non-negative non-fractional Number/Binary" rule is enforced by the
// document resolver, since it requires resolution.
type CollectionElementSegment struct {
	Index Entity
}

func (*CollectionElementSegment) sealPathSegment() {}

func (s *CollectionElementSegment) Clone() PathSegment {
	return &CollectionElementSegment{Index: s.Index.Clone()}
}

func NewCollectionElementSegment(index Entity) (*CollectionElementSegment, error) {
	if index == nil {
		return nil, core.NewValueError("A collection element segment must carry an index entity.")
	}
	if index.DeclaredType() != nil {
		return nil, core.NewValueError("A collection element segment's index must be implicitly typed.")
	}
	switch v := index.(type) {
	case *ComplexEntity:
		return nil, core.NewValueError("A collection element segment's index may not be complex-valued.")
	case *SimpleEntity:
		if v.Value.DataType != Number && v.Value.DataType != Binary {
			return nil, core.NewValueError("A collection element segment's index must be a Number or Binary value.")
		}
	}
	return &CollectionElementSegment{Index: index.Clone()}, nil
}

// Address is an initial context plus an ordered sequence of path
// segments.
type Address struct {
	Initial  InitialContext
	Segments []PathSegment
}

func (a Address) Clone() Address {
	segs := make([]PathSegment, len(a.Segments))
	for i, s := range a.Segments {
		segs[i] = s.Clone()
	}
	return Address{Initial: a.Initial.Clone(), Segments: segs}
}

func NewAddress(initial InitialContext, segments []PathSegment) (Address, error) {
	if initial == nil {
		return Address{}, core.NewValueError("A reference address must declare an initial context.")
	}
	segs := make([]PathSegment, len(segments))
	for i, s := range segments {
		segs[i] = s.Clone()
	}
	return Address{Initial: initial.Clone(), Segments: segs}, nil
}
