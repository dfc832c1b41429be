// Package validate walks an already-constructed entity tree and checks
// the invariants of spec.md §3 that span more than one node — chiefly
// union-type distinctness, which needs the type comparer and which the
// per-node constructors in internal/ast cannot check on their own. Most
// single-node invariants (simple-value content, the
// collection-element-segment index shape) are already enforced by the
// internal/ast constructors; Entity re-walks them here too so a tree assembled by any
// other means (e.g. a future manipulation API) can still be checked in
// one pass, matching spec.md §4.3.
package validate

import (
	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/equiv"
)

// Entity walks e and every component it contains, returning the first
// invariant violation found, or nil if e is structurally valid.
func Entity(e ast.Entity) error {
	if e == nil {
		return core.NewValueError("An entity cannot be nil.")
	}
	if t := e.DeclaredType(); t != nil {
		if err := Type(t); err != nil {
			return err
		}
	}
	switch v := e.(type) {
	case *ast.SimpleEntity:
		return simpleValue(v.Value)
	case *ast.ComplexEntity:
		return complexEntity(v)
	case *ast.ReferenceEntity:
		return address(v.Address)
	default:
		return core.NewImplementationError("ast.Entity", "unknown", []string{"*ast.SimpleEntity", "*ast.ComplexEntity", "*ast.ReferenceEntity"})
	}
}

func simpleValue(v ast.SimpleValue) error {
	// Re-run the per-data-type content check of ast.NewSimpleValue.
	_, err := ast.NewSimpleValue(v.DataType, v.Content)
	return err
}

func complexEntity(e *ast.ComplexEntity) error {
	if e.Construction == nil && e.MemberInit == nil && e.CollectionInit == nil {
		return core.NewValueError("A complex entity must have at least one of construction, member init, or collection init.")
	}
	if e.Construction != nil {
		for _, p := range e.Construction.Positional {
			if err := Entity(p); err != nil {
				return err
			}
		}
		for _, n := range e.Construction.Named {
			if err := Entity(n.Value); err != nil {
				return err
			}
		}
	}
	if e.MemberInit != nil {
		for _, b := range e.MemberInit.Bindings {
			if err := bindingKey(b.Key); err != nil {
				return err
			}
			if err := Entity(b.Value); err != nil {
				return err
			}
		}
	}
	if e.CollectionInit != nil {
		for _, el := range e.CollectionInit.Elements {
			if err := Entity(el); err != nil {
				return err
			}
		}
	}
	return nil
}

func bindingKey(k ast.BindingKey) error {
	switch v := k.(type) {
	case *ast.BindingName:
		if v.Name == "" {
			return core.NewValueError("A binding name must be non-empty.")
		}
		return nil
	case *ast.BindingIndex:
		if len(v.Parameters) == 0 {
			return core.NewValueError("A member binding index must be neither non-existing nor empty.")
		}
		for _, p := range v.Parameters {
			if p.GlobalIdentifier() != nil {
				return core.NewValueError("A member binding index parameter may not declare a global identifier.")
			}
			if _, ok := p.(*ast.ComplexEntity); ok {
				return core.NewValueError("A member binding index parameter may not be complex-valued.")
			}
			if err := Entity(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"})
	}
}

// Type walks a type expression checking the union-distinctness
// invariant (spec.md §3: "a union type must have at least two distinct
// permitted types").
func Type(t ast.Type) error {
	switch v := t.(type) {
	case *ast.NamedType:
		for _, p := range v.Parameters {
			if err := Type(p); err != nil {
				return err
			}
		}
		return nil
	case *ast.CollectionType:
		return Type(v.Element)
	case *ast.UnionType:
		if len(v.Permitted) < 2 {
			return core.NewValueError("A union type must have at least two permitted types.")
		}
		for i, p := range v.Permitted {
			if err := Type(p); err != nil {
				return err
			}
			for j := i + 1; j < len(v.Permitted); j++ {
				if equiv.TypesEqual(p, v.Permitted[j]) {
					return core.NewValueError("A union type's permitted types must be pairwise distinct.")
				}
			}
		}
		return nil
	default:
		return core.NewImplementationError("ast.Type", "unknown", []string{"*ast.NamedType", "*ast.CollectionType", "*ast.UnionType"})
	}
}

func address(a ast.Address) error {
	switch ic := a.Initial.(type) {
	case *ast.AncestorInitialContext:
		if ic.Order < 0 {
			return core.NewValueError("An ancestor initial context's order must be non-negative.")
		}
	case *ast.GlobalInitialContext:
		// no further structural constraint
	default:
		return core.NewImplementationError("ast.InitialContext", "unknown", []string{"*ast.AncestorInitialContext", "*ast.GlobalInitialContext"})
	}
	for _, seg := range a.Segments {
		switch s := seg.(type) {
		case *ast.AncestorSegment:
			if s.Order < 1 {
				return core.NewValueError("An ancestor path segment's order must be at least 1.")
			}
		case *ast.MemberSegment:
			if err := bindingKey(s.Key); err != nil {
				return err
			}
		case *ast.CollectionElementSegment:
			if s.Index.DeclaredType() != nil {
				return core.NewValueError("A collection element segment's index must be implicitly typed.")
			}
			switch idx := s.Index.(type) {
			case *ast.ComplexEntity:
				return core.NewValueError("A collection element segment's index may not be complex-valued.")
			case *ast.SimpleEntity:
				if idx.Value.DataType != ast.Number && idx.Value.DataType != ast.Binary {
					return core.NewValueError("A collection element segment's index must be a Number or Binary value.")
				}
			}
			if err := Entity(s.Index); err != nil {
				return err
			}
		default:
			return core.NewImplementationError("ast.PathSegment", "unknown", []string{"*ast.AncestorSegment", "*ast.MemberSegment", "*ast.CollectionElementSegment"})
		}
	}
	return nil
}
