package ast

import "github.com/oxhq/ston/internal/core"

// Entity is the sealed family of entities: SimpleEntity, ComplexEntity,
// and ReferenceEntity. A valued entity (the union of simple and complex)
// is recognized with the ValuedEntity helper below rather than a
// separate interface, since Go has no sum-of-interfaces subtraction.
type Entity interface {
	sealEntity()
	Clone() Entity
	DeclaredType() Type
	GlobalIdentifier() *string
}

// ValuedEntity reports whether e is a SimpleEntity or ComplexEntity and,
// if so, returns it unchanged (valued entities have no further
// unwrapping — unlike references, they do not resolve to anything else).
func ValuedEntity(e Entity) (Entity, bool) {
	switch e.(type) {
	case *SimpleEntity, *ComplexEntity:
		return e, true
	default:
		return nil, false
	}
}

// SimpleEntity carries a simple value, an optional declared type, and an
// optional global identifier.
type SimpleEntity struct {
	Value    SimpleValue
	Type     Type    // nil when implicitly typed
	GlobalID *string // nil when absent
}

func (*SimpleEntity) sealEntity() {}

func (e *SimpleEntity) DeclaredType() Type        { return e.Type }
func (e *SimpleEntity) GlobalIdentifier() *string { return e.GlobalID }

func (e *SimpleEntity) Clone() Entity {
	clone := &SimpleEntity{Value: e.Value}
	if e.Type != nil {
		clone.Type = e.Type.Clone()
	}
	if e.GlobalID != nil {
		id := *e.GlobalID
		clone.GlobalID = &id
	}
	return clone
}

// NewSimpleEntity constructs a SimpleEntity. value must already be
// constructed via NewSimpleValue (so its per-data-type invariant has
// been checked); the Null-content invariant (content must be empty) is
// re-asserted here because it is cheap and central to spec.md §3.
func NewSimpleEntity(value SimpleValue, declaredType Type, globalID *string) (*SimpleEntity, error) {
	if value.DataType == Null && value.Content != "" {
		return nil, core.NewValueError("A simple value with data type Null must have empty content.")
	}
	e := &SimpleEntity{Value: value}
	if declaredType != nil {
		e.Type = declaredType.Clone()
	}
	if globalID != nil {
		id := *globalID
		e.GlobalID = &id
	}
	return e, nil
}

// ComplexEntity carries up to three optional components (at least one
// must be present), an optional declared type, and an optional global
// identifier.
type ComplexEntity struct {
	Construction   *Construction
	MemberInit     *MemberInit
	CollectionInit *CollectionInit
	Type           Type
	GlobalID       *string
}

func (*ComplexEntity) sealEntity() {}

func (e *ComplexEntity) DeclaredType() Type        { return e.Type }
func (e *ComplexEntity) GlobalIdentifier() *string { return e.GlobalID }

func (e *ComplexEntity) Clone() Entity {
	clone := &ComplexEntity{}
	if e.Construction != nil {
		c := e.Construction.Clone()
		clone.Construction = &c
	}
	if e.MemberInit != nil {
		m := e.MemberInit.Clone()
		clone.MemberInit = &m
	}
	if e.CollectionInit != nil {
		l := e.CollectionInit.Clone()
		clone.CollectionInit = &l
	}
	if e.Type != nil {
		clone.Type = e.Type.Clone()
	}
	if e.GlobalID != nil {
		id := *e.GlobalID
		clone.GlobalID = &id
	}
	return clone
}

// NewComplexEntity validates that at least one component is present.
func NewComplexEntity(construction *Construction, memberInit *MemberInit, collectionInit *CollectionInit, declaredType Type, globalID *string) (*ComplexEntity, error) {
	if construction == nil && memberInit == nil && collectionInit == nil {
		return nil, core.NewValueError("A complex entity must have at least one of construction, member init, or collection init.")
	}
	e := &ComplexEntity{}
	if construction != nil {
		c := construction.Clone()
		e.Construction = &c
	}
	if memberInit != nil {
		m := memberInit.Clone()
		e.MemberInit = &m
	}
	if collectionInit != nil {
		l := collectionInit.Clone()
		e.CollectionInit = &l
	}
	if declaredType != nil {
		e.Type = declaredType.Clone()
	}
	if globalID != nil {
		id := *globalID
		e.GlobalID = &id
	}
	return e, nil
}

// ReferenceEntity carries a reference address and an optional global
// identifier; it never has a declared type.
type ReferenceEntity struct {
	Address  Address
	GlobalID *string
}

func (*ReferenceEntity) sealEntity() {}

func (e *ReferenceEntity) DeclaredType() Type        { return nil }
func (e *ReferenceEntity) GlobalIdentifier() *string { return e.GlobalID }

func (e *ReferenceEntity) Clone() Entity {
	clone := &ReferenceEntity{Address: e.Address.Clone()}
	if e.GlobalID != nil {
		id := *e.GlobalID
		clone.GlobalID = &id
	}
	return clone
}

func NewReferenceEntity(address Address, globalID *string) *ReferenceEntity {
	e := &ReferenceEntity{Address: address.Clone()}
	if globalID != nil {
		id := *globalID
		e.GlobalID = &id
	}
	return e
}
