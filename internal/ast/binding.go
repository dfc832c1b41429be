package ast

import "github.com/oxhq/ston/internal/core"

// BindingKey is the sealed family used to key member-init bindings: a
// name (regular or extension) or an index made of one or more parameter
// entities.
type BindingKey interface {
	sealBindingKey()
	Clone() BindingKey
}

// BindingName keys a member by a plain or extension ("!"-prefixed) name.
type BindingName struct {
	Name        string
	IsExtension bool
}

func (*BindingName) sealBindingKey() {}

func (b *BindingName) Clone() BindingKey {
	return &BindingName{Name: b.Name, IsExtension: b.IsExtension}
}

func NewBindingName(name string, isExtension bool) (*BindingName, error) {
	if name == "" {
		return nil, core.NewValueError("A binding name must be non-empty.")
	}
	return &BindingName{Name: name, IsExtension: isExtension}, nil
}

// BindingIndex keys a member by a nonempty ordered list of parameter
// entities. None of the parameters may declare a global identifier or be
// complex-valued (spec.md §3).
type BindingIndex struct {
	Parameters []Entity
}

func (*BindingIndex) sealBindingKey() {}

func (b *BindingIndex) Clone() BindingKey {
	params := make([]Entity, len(b.Parameters))
	for i, p := range b.Parameters {
		params[i] = p.Clone()
	}
	return &BindingIndex{Parameters: params}
}

func NewBindingIndex(parameters []Entity) (*BindingIndex, error) {
	if len(parameters) == 0 {
		return nil, core.NewValueError("A member binding index must be neither non-existing nor empty.")
	}
	params := make([]Entity, len(parameters))
	for i, p := range parameters {
		if p.GlobalIdentifier() != nil {
			return nil, core.NewValueError("A member binding index parameter may not declare a global identifier.")
		}
		if _, ok := p.(*ComplexEntity); ok {
			return nil, core.NewValueError("A member binding index parameter may not be complex-valued.")
		}
		params[i] = p.Clone()
	}
	return &BindingIndex{Parameters: params}, nil
}
