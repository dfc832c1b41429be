package document

import (
	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/equiv"
)

// drainDeferred implements Step D: now that every reference is resolved,
// every deferred binding-index entry can be compared, so each is moved
// into its owner's member map. A collision raised here is a genuine
// "duplicate member" rather than a parked retry.
func (d *Document) drainDeferred() error {
	for ce, buckets := range d.deferred {
		for n, bucket := range buckets {
			for _, b := range bucket {
				if err := d.insertMember(ce, b); err != nil {
					return err
				}
			}
			delete(buckets, n)
		}
	}
	return nil
}

// verifyConstructionOrder implements Step E: a depth-first walk of the
// construction-dependency graph (declaration order, via consOrder) that
// fails with "circular construction" the first time it revisits a node
// still on the current path.
func (d *Document) verifyConstructionOrder() error {
	visited := map[*ast.ComplexEntity]bool{}
	onPath := map[*ast.ComplexEntity]bool{}
	var path []core.CircularConstructionStep

	var visit func(ce *ast.ComplexEntity) error
	visit = func(ce *ast.ComplexEntity) error {
		if visited[ce] {
			return nil
		}
		if onPath[ce] {
			// Trim any acyclic prefix so the reported cycle starts at the
			// revisited entity.
			start := 0
			for i, step := range path {
				if step.Entity == ast.Entity(ce) {
					start = i
					break
				}
			}
			cycle := make([]core.CircularConstructionStep, len(path)-start)
			copy(cycle, path[start:])
			return core.NewCircularConstructionError(d, cycle)
		}
		onPath[ce] = true
		for _, edge := range d.consDeps[ce] {
			target, ok := equiv.Resolve(d, edge.Value)
			if !ok {
				continue
			}
			dep, ok := target.(*ast.ComplexEntity)
			if !ok {
				continue
			}
			path = append(path, core.CircularConstructionStep{Entity: ce, ParameterIndex: edge.Index, ParameterName: edge.Name})
			if err := visit(dep); err != nil {
				return err
			}
			path = path[:len(path)-1]
		}
		onPath[ce] = false
		visited[ce] = true
		return nil
	}

	for _, ce := range d.consOrder {
		if err := visit(ce); err != nil {
			return err
		}
	}
	return nil
}

// ConstructionOrder returns the document's entities in one valid
// construction order, per the definition at the end of spec.md §4.7: for
// each complex entity, its construction-parameter values first
// (recursively), then the entity itself, then its member-binding index
// parameters and values (recursively), then its collection elements
// (recursively); a visited set prevents re-emission, and a reference is
// followed to the valued entity it denotes rather than emitted itself.
// Step E has already proven this traversal terminates without a cycle.
func (d *Document) ConstructionOrder() []ast.Entity {
	visited := map[ast.Entity]bool{}
	var order []ast.Entity

	var visit func(e ast.Entity)
	visit = func(e ast.Entity) {
		if e == nil || visited[e] {
			return
		}
		switch v := e.(type) {
		case *ast.SimpleEntity:
			visited[e] = true
			order = append(order, e)

		case *ast.ReferenceEntity:
			if target, ok := equiv.Resolve(d, v); ok {
				visit(target)
			}

		case *ast.ComplexEntity:
			visited[e] = true
			if v.Construction != nil {
				for _, p := range v.Construction.Positional {
					visit(p)
				}
				for _, n := range v.Construction.Named {
					visit(n.Value)
				}
			}
			order = append(order, e)
			if v.MemberInit != nil {
				for _, b := range v.MemberInit.Bindings {
					if idx, ok := b.Key.(*ast.BindingIndex); ok {
						for _, p := range idx.Parameters {
							visit(p)
						}
					}
					visit(b.Value)
				}
			}
			if v.CollectionInit != nil {
				for _, el := range v.CollectionInit.Elements {
					visit(el)
				}
			}
		}
	}

	visit(d.root)
	return order
}
