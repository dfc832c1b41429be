// Package document implements the document resolver of spec.md §4.7: the
// orchestrator that deep-copies a validated entity tree, indexes global
// identifiers and parent contexts, builds member maps (deferring
// reference-keyed indices), resolves references with cycle detection,
// and verifies the construction-dependency graph has no cycle.
package document

import (
	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/equiv"
	"github.com/oxhq/ston/internal/validate"
)

// Options configures extension-name acceptance and the lenient-mode
// extension described in SPEC_FULL.md (diagnostics instead of aborting
// on duplicate conditions).
type Options struct {
	ExtensionTypesAllowed    map[string]bool
	ExtensionMembersAllowed  map[string]bool
	ExtensionTypePredicate   func(string) bool
	ExtensionMemberPredicate func(string) bool
	Lenient                  bool
}

func (o Options) acceptType(name string) bool {
	if o.ExtensionTypesAllowed != nil && o.ExtensionTypesAllowed[name] {
		return true
	}
	return o.ExtensionTypePredicate != nil && o.ExtensionTypePredicate(name)
}

func (o Options) acceptMember(name string) bool {
	if o.ExtensionMembersAllowed != nil && o.ExtensionMembersAllowed[name] {
		return true
	}
	return o.ExtensionMemberPredicate != nil && o.ExtensionMemberPredicate(name)
}

// contextFlags are the three per-context booleans spec.md §4.7 and §9
// use to disambiguate a single-parameter indexed-member path segment
// from the "index-as-element" shortcut.
type contextFlags struct {
	definesReferenceIndices      bool
	definesImplicitNumberIndices bool
	definesImplicitBinaryIndices bool
}

// depEdge is one construction-dependency edge out of a complex entity:
// a positional (Index >= 0) or named (Index == -1, Name set) parameter
// whose value is a reference or another complex entity.
type depEdge struct {
	Value ast.Entity
	Index int
	Name  string
}

// Document owns a deep copy of a source valued entity plus every index
// the resolver derives from it.
type Document struct {
	root    ast.Entity
	opts    Options
	globals map[string]ast.Entity
	// parents maps every indexed entity to the nearest enclosing complex
	// entity ("context"), or nil for the document root.
	parents map[ast.Entity]ast.Entity
	members map[*ast.ComplexEntity]*memberMap
	// deferred holds, per complex entity and per index-parameter count,
	// binding-index entries whose parameters include references not yet
	// resolved.
	deferred map[*ast.ComplexEntity]map[int][]ast.MemberBinding
	flags    map[*ast.ComplexEntity]*contextFlags
	consDeps map[*ast.ComplexEntity][]depEdge
	// consOrder lists every complex entity with a construction component,
	// in declaration order, so Step E's DFS visits them in declaration
	// order instead of Go's randomized map iteration order.
	// ConstructionOrder does not use it; it walks the tree from the root.
	consOrder []*ast.ComplexEntity

	allRefs     []*ast.ReferenceEntity
	resolvedRef map[*ast.ReferenceEntity]ast.Entity

	// Diagnostics collects non-fatal duplicate-condition messages when
	// Options.Lenient is set, instead of aborting resolution.
	Diagnostics []string
}

// New builds a Document from a validated valued-entity tree, per spec.md
// §4.7 Steps A-E.
func New(root ast.Entity, opts Options) (*Document, error) {
	if root == nil {
		return nil, core.NewValueError("A document's core entity cannot be nil.")
	}
	if _, ok := ast.ValuedEntity(root); !ok {
		return nil, core.NewValueError("A document's core entity must be simple or complex.")
	}
	if err := validate.Entity(root); err != nil {
		return nil, err
	}

	d := &Document{
		root:        root.Clone(),
		opts:        opts,
		globals:     map[string]ast.Entity{},
		parents:     map[ast.Entity]ast.Entity{},
		members:     map[*ast.ComplexEntity]*memberMap{},
		deferred:    map[*ast.ComplexEntity]map[int][]ast.MemberBinding{},
		flags:       map[*ast.ComplexEntity]*contextFlags{},
		consDeps:    map[*ast.ComplexEntity][]depEdge{},
		resolvedRef: map[*ast.ReferenceEntity]ast.Entity{},
	}

	// Step A (globals + parent contexts) and Step B (member maps,
	// deferral, flags, construction deps) are done together in one walk.
	if err := d.index(d.root, nil); err != nil {
		return nil, err
	}

	// The pseudo-identifier "" resolves initial-context lookups for the
	// document core through the same globals table; it is removed again
	// once resolution completes so it never leaks to callers.
	d.globals[""] = d.root
	defer delete(d.globals, "")

	// Step C.
	if err := d.resolveAllReferences(); err != nil {
		return nil, err
	}

	// Step D: drain deferred index buckets now that every reference is
	// resolved.
	if err := d.drainDeferred(); err != nil {
		return nil, err
	}

	// Step E.
	if err := d.verifyConstructionOrder(); err != nil {
		return nil, err
	}

	return d, nil
}

// index performs Step A/B's single recursive traversal in natural
// declaration order.
func (d *Document) index(e ast.Entity, parent ast.Entity) error {
	if e == nil {
		return nil
	}
	if err := d.checkTypeExtensions(e.DeclaredType()); err != nil {
		return err
	}
	if id := e.GlobalIdentifier(); id != nil {
		if existing, ok := d.globals[*id]; ok {
			if d.opts.Lenient {
				d.Diagnostics = append(d.Diagnostics, "duplicate global identifier: "+*id)
			} else {
				return core.NewDuplicateGlobalEntityError(*id, existing, e)
			}
		} else {
			d.globals[*id] = e
		}
	}
	d.parents[e] = parent

	switch v := e.(type) {
	case *ast.SimpleEntity:
		return nil
	case *ast.ComplexEntity:
		return d.indexComplex(v)
	case *ast.ReferenceEntity:
		d.allRefs = append(d.allRefs, v)
		return d.indexAddressEntities(v.Address, parent)
	default:
		return core.NewImplementationError("ast.Entity", "unknown", []string{"*ast.SimpleEntity", "*ast.ComplexEntity", "*ast.ReferenceEntity"})
	}
}

func (d *Document) checkTypeExtensions(t ast.Type) error {
	switch v := t.(type) {
	case nil:
		return nil
	case *ast.NamedType:
		if v.IsExtension && !d.opts.acceptType(v.Name) {
			return core.NewExtensionTypeError(v.Name)
		}
		for _, p := range v.Parameters {
			if err := d.checkTypeExtensions(p); err != nil {
				return err
			}
		}
		return nil
	case *ast.CollectionType:
		return d.checkTypeExtensions(v.Element)
	case *ast.UnionType:
		for _, p := range v.Permitted {
			if err := d.checkTypeExtensions(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return core.NewImplementationError("ast.Type", "unknown", []string{"*ast.NamedType", "*ast.CollectionType", "*ast.UnionType"})
	}
}

func (d *Document) indexComplex(ce *ast.ComplexEntity) error {
	d.members[ce] = newMemberMap()
	d.deferred[ce] = map[int][]ast.MemberBinding{}
	d.flags[ce] = &contextFlags{}

	if ce.Construction != nil {
		d.consOrder = append(d.consOrder, ce)
		var deps []depEdge
		for i, p := range ce.Construction.Positional {
			if err := d.index(p, ce); err != nil {
				return err
			}
			if isRefOrComplex(p) {
				deps = append(deps, depEdge{Value: p, Index: i})
			}
		}
		for _, n := range ce.Construction.Named {
			if err := d.index(n.Value, ce); err != nil {
				return err
			}
			if isRefOrComplex(n.Value) {
				deps = append(deps, depEdge{Value: n.Value, Index: -1, Name: n.Name})
			}
		}
		d.consDeps[ce] = deps
	}

	if ce.MemberInit != nil {
		for _, b := range ce.MemberInit.Bindings {
			if err := d.indexMemberBinding(ce, b); err != nil {
				return err
			}
		}
	}

	if ce.CollectionInit != nil {
		for _, el := range ce.CollectionInit.Elements {
			if err := d.index(el, ce); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Document) indexMemberBinding(ce *ast.ComplexEntity, b ast.MemberBinding) error {
	if err := d.index(b.Value, ce); err != nil {
		return err
	}
	switch key := b.Key.(type) {
	case *ast.BindingName:
		if key.IsExtension && !d.opts.acceptMember(key.Name) {
			return core.NewExtensionMemberError(key.Name)
		}
		return d.insertMember(ce, b)
	case *ast.BindingIndex:
		for _, p := range key.Parameters {
			if err := d.index(p, ce); err != nil {
				return err
			}
		}
		d.recordIndexFlags(ce, key)
		if bindingIndexHasReference(key) {
			n := len(key.Parameters)
			d.deferred[ce][n] = append(d.deferred[ce][n], b)
			return nil
		}
		return d.insertMember(ce, b)
	default:
		return core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"})
	}
}

func (d *Document) recordIndexFlags(ce *ast.ComplexEntity, key *ast.BindingIndex) {
	if len(key.Parameters) != 1 {
		return
	}
	f := d.flags[ce]
	switch p := key.Parameters[0].(type) {
	case *ast.ReferenceEntity:
		f.definesReferenceIndices = true
	case *ast.SimpleEntity:
		if p.Type != nil {
			return
		}
		switch p.Value.DataType {
		case ast.Number:
			f.definesImplicitNumberIndices = true
		case ast.Binary:
			f.definesImplicitBinaryIndices = true
		}
	}
}

func bindingIndexHasReference(key *ast.BindingIndex) bool {
	for _, p := range key.Parameters {
		if _, ok := p.(*ast.ReferenceEntity); ok {
			return true
		}
	}
	return false
}

func isRefOrComplex(e ast.Entity) bool {
	switch e.(type) {
	case *ast.ReferenceEntity, *ast.ComplexEntity:
		return true
	default:
		return false
	}
}

// indexAddressEntities indexes the nested entities carried by a
// reference's address (binding-index parameters, collection-element
// indices) under the reference's own enclosing context. The reference
// itself is recorded for Step C by index, not here.
func (d *Document) indexAddressEntities(addr ast.Address, parent ast.Entity) error {
	for _, seg := range addr.Segments {
		switch s := seg.(type) {
		case *ast.MemberSegment:
			if idx, ok := s.Key.(*ast.BindingIndex); ok {
				for _, p := range idx.Parameters {
					if err := d.index(p, parent); err != nil {
						return err
					}
				}
			}
		case *ast.CollectionElementSegment:
			if err := d.index(s.Index, parent); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Document) insertMember(ce *ast.ComplexEntity, b ast.MemberBinding) error {
	if existing, dup := d.members[ce].insert(d, b); dup {
		if d.opts.Lenient {
			d.Diagnostics = append(d.Diagnostics, "duplicate member binding")
			return nil
		}
		return core.NewDuplicateMemberError(ce, existing.Key, b.Key)
	}
	return nil
}

// ReferencedValue implements equiv.Resolver: it returns the valued
// entity a reference resolves to, if already resolved. It is also used
// by in-progress resolution to test whether a reference's prerequisite
// has been satisfied yet.
func (d *Document) ReferencedValue(ref *ast.ReferenceEntity) (ast.Entity, bool) {
	v, ok := d.resolvedRef[ref]
	return v, ok
}

// Core returns the document's owned root valued entity.
func (d *Document) Core() ast.Entity { return d.root }

// GlobalEntity looks up an entity by global identifier.
func (d *Document) GlobalEntity(id string) (ast.Entity, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := d.globals[id]
	return e, ok
}

// ParentContext returns the nearest enclosing complex entity of e, or
// nil if e is the document root or not part of this document.
func (d *Document) ParentContext(e ast.Entity) (ast.Entity, bool) {
	p, ok := d.parents[e]
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// Member looks up a binding key on a complex entity using the
// document-scoped binding-key comparer.
func (d *Document) Member(ce *ast.ComplexEntity, key ast.BindingKey) (ast.Entity, bool) {
	mm, ok := d.members[ce]
	if !ok {
		return nil, false
	}
	return mm.lookup(d, key)
}

// GlobalCount returns the number of distinct global identifiers
// declared in the document (excluding the internal "" pseudo-identifier
// used during resolution).
func (d *Document) GlobalCount() int { return len(d.globals) }

// ConstructionCount returns the number of complex entities in the
// document that carry a construction component.
func (d *Document) ConstructionCount() int { return len(d.consOrder) }

// ReferencedValueOf is the exported counterpart of ReferencedValue for
// resolved documents, returning the fully resolved valued entity a
// reference denotes.
func (d *Document) ReferencedValueOf(ref *ast.ReferenceEntity) (ast.Entity, bool) {
	return d.ReferencedValue(ref)
}

var _ equiv.Resolver = (*Document)(nil)
