package ast

import "github.com/oxhq/ston/internal/core"

// Type is the sealed family of type expressions: NamedType, CollectionType,
// and UnionType. It mirrors spec.md §9's recommendation of a tagged sum
// per family rather than an open interface hierarchy — sealType is
// unexported so no type outside this package can implement Type.
type Type interface {
	sealType()
	Clone() Type
}

// NamedType is a name plus an ordered sequence of type parameters, e.g.
// map<string,int> or the extension form !custom.
type NamedType struct {
	Name        string
	Parameters  []Type
	IsExtension bool
}

func (*NamedType) sealType() {}

func (t *NamedType) Clone() Type {
	params := make([]Type, len(t.Parameters))
	for i, p := range t.Parameters {
		params[i] = p.Clone()
	}
	return &NamedType{Name: t.Name, Parameters: params, IsExtension: t.IsExtension}
}

// NewNamedType constructs a NamedType. The name need not be a CANUN
// path (quoted type names may contain arbitrary text), only non-empty.
func NewNamedType(name string, parameters []Type, isExtension bool) (*NamedType, error) {
	if name == "" {
		return nil, core.NewValueError("A named type must have a non-empty name.")
	}
	params := make([]Type, len(parameters))
	for i, p := range parameters {
		params[i] = p.Clone()
	}
	return &NamedType{Name: name, Parameters: params, IsExtension: isExtension}, nil
}

// CollectionType wraps a single element type, written <elem>[...].
type CollectionType struct {
	Element Type
}

func (*CollectionType) sealType() {}

func (t *CollectionType) Clone() Type {
	return &CollectionType{Element: t.Element.Clone()}
}

func NewCollectionType(element Type) (*CollectionType, error) {
	if element == nil {
		return nil, core.NewValueError("A collection type must declare an element type.")
	}
	return &CollectionType{Element: element.Clone()}, nil
}

// UnionType is an ordered sequence of at least two permitted types,
// written t1|t2|....
type UnionType struct {
	Permitted []Type
}

func (*UnionType) sealType() {}

func (t *UnionType) Clone() Type {
	permitted := make([]Type, len(t.Permitted))
	for i, p := range t.Permitted {
		permitted[i] = p.Clone()
	}
	return &UnionType{Permitted: permitted}
}

func NewUnionType(permitted []Type) (*UnionType, error) {
	if len(permitted) < 2 {
		return nil, core.NewValueError("A union type must have at least two permitted types.")
	}
	cloned := make([]Type, len(permitted))
	for i, p := range permitted {
		cloned[i] = p.Clone()
	}
	return &UnionType{Permitted: cloned}, nil
}
