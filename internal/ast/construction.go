package ast

import "github.com/oxhq/ston/internal/core"

// NamedParameter is a (name, entity) pair supplied to a construction.
type NamedParameter struct {
	Name  string
	Value Entity
}

// Construction is the ordered positional-parameter list plus ordered
// named-parameter list supplied to a complex entity. Named-parameter
// names must be unique; positional parameters carry no name.
type Construction struct {
	Positional []Entity
	Named      []NamedParameter
}

func (c Construction) Clone() Construction {
	pos := make([]Entity, len(c.Positional))
	for i, p := range c.Positional {
		pos[i] = p.Clone()
	}
	named := make([]NamedParameter, len(c.Named))
	for i, n := range c.Named {
		named[i] = NamedParameter{Name: n.Name, Value: n.Value.Clone()}
	}
	return Construction{Positional: pos, Named: named}
}

// NewConstruction validates that named-parameter names are unique and
// deep-copies every parameter entity.
func NewConstruction(positional []Entity, named []NamedParameter) (Construction, error) {
	seen := make(map[string]bool, len(named))
	for _, n := range named {
		if n.Name == "" {
			return Construction{}, core.NewValueError("A named construction parameter must have a non-empty name.")
		}
		if seen[n.Name] {
			return Construction{}, core.NewValueError("A construction cannot declare the same named parameter twice.")
		}
		seen[n.Name] = true
	}
	return Construction{Positional: positional, Named: named}.Clone(), nil
}

// MemberBinding pairs a binding key with the entity it is bound to.
type MemberBinding struct {
	Key   BindingKey
	Value Entity
}

// MemberInit is the ordered sequence of member bindings of a complex
// entity. Duplicate detection (under the binding-key comparer) is a
// document-level concern, not a per-node structural one, so it is not
// enforced here.
type MemberInit struct {
	Bindings []MemberBinding
}

func (m MemberInit) Clone() MemberInit {
	bindings := make([]MemberBinding, len(m.Bindings))
	for i, b := range m.Bindings {
		bindings[i] = MemberBinding{Key: b.Key.Clone(), Value: b.Value.Clone()}
	}
	return MemberInit{Bindings: bindings}
}

func NewMemberInit(bindings []MemberBinding) (MemberInit, error) {
	for _, b := range bindings {
		if b.Key == nil {
			return MemberInit{}, core.NewValueError("A member binding must carry a key.")
		}
		if b.Value == nil {
			return MemberInit{}, core.NewValueError("A member binding must carry a value.")
		}
	}
	return MemberInit{Bindings: bindings}.Clone(), nil
}

// CollectionInit is the ordered sequence of element entities of a
// complex entity.
type CollectionInit struct {
	Elements []Entity
}

func (c CollectionInit) Clone() CollectionInit {
	elems := make([]Entity, len(c.Elements))
	for i, e := range c.Elements {
		elems[i] = e.Clone()
	}
	return CollectionInit{Elements: elems}
}

func NewCollectionInit(elements []Entity) (CollectionInit, error) {
	return CollectionInit{Elements: elements}.Clone(), nil
}
