package document

import (
	"errors"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/equiv"
)

// parkedError marks a reference whose resolution cannot make progress
// this pass because some prerequisite reference is itself unresolved
// (spec.md §4.7 Step C). It carries the farthest context/segment reached
// so a final "unknown reference" error can report them if the reference
// never becomes resolvable.
type parkedError struct {
	ctx ast.Entity
	seg ast.PathSegment
}

func (*parkedError) Error() string { return "reference resolution parked pending a prerequisite" }

// resolveAllReferences implements Step C: a fixed-point iteration over
// every reference entity, parking those that cannot yet make progress
// and retrying until a pass makes no further progress.
func (d *Document) resolveAllReferences() error {
	for {
		progress := false
		for _, ref := range d.allRefs {
			if _, done := d.resolvedRef[ref]; done {
				continue
			}
			target, err := d.resolveReference(ref)
			var pe *parkedError
			if errors.As(err, &pe) {
				continue
			}
			if err != nil {
				return err
			}
			d.resolvedRef[ref] = target
			progress = true
		}
		if !progress {
			break
		}
	}

	for _, ref := range d.allRefs {
		if _, done := d.resolvedRef[ref]; done {
			continue
		}
		_, err := d.resolveReference(ref)
		var pe *parkedError
		if errors.As(err, &pe) {
			return core.NewUnknownReferenceError(ref, pe.ctx, pe.seg)
		}
		if err != nil {
			return err
		}
		return core.NewUnknownReferenceError(ref, nil, nil)
	}
	return nil
}

// resolveReference walks ref's address from its initial context through
// every path segment, chasing intermediate references (with cycle
// detection) whenever a segment's result must itself serve as the next
// context, and finally chasing the last segment's result down to the
// valued entity the reference denotes.
func (d *Document) resolveReference(ref *ast.ReferenceEntity) (ast.Entity, error) {
	return d.resolveRefBranch(ref, []*ast.ReferenceEntity{ref})
}

func (d *Document) resolveRefBranch(ref *ast.ReferenceEntity, branch []*ast.ReferenceEntity) (ast.Entity, error) {
	cur, err := d.resolveInitialContext(ref)
	if err != nil {
		return nil, err
	}
	for _, seg := range ref.Address.Segments {
		if _, isAncestor := seg.(*ast.AncestorSegment); !isAncestor {
			cur, err = d.chase(cur, branch, seg)
			if err != nil {
				return nil, err
			}
		}
		cur, err = d.resolveSegment(ref, cur, seg)
		if err != nil {
			return nil, err
		}
	}
	return d.chase(cur, branch, nil)
}

// resolveInitialContext dispatches on the address's initial context.
func (d *Document) resolveInitialContext(ref *ast.ReferenceEntity) (ast.Entity, error) {
	switch ic := ref.Address.Initial.(type) {
	case *ast.AncestorInitialContext:
		cur, _ := d.parents[ref]
		for i := 0; i < ic.Order; i++ {
			p, ok := d.parents[cur]
			if !ok || p == nil {
				return nil, core.NewUnknownReferenceError(ref, cur, nil)
			}
			cur = p
		}
		return cur, nil
	case *ast.GlobalInitialContext:
		target, ok := d.globals[ic.ID]
		if !ok {
			return nil, core.NewUnknownReferenceError(ref, nil, nil)
		}
		return target, nil
	default:
		return nil, core.NewImplementationError("ast.InitialContext", "unknown", []string{"*ast.AncestorInitialContext", "*ast.GlobalInitialContext"})
	}
}

// chase dereferences e until it is no longer a reference, pushing each
// hop onto branch (a per-resolution-attempt chain) to detect a reference
// that loops back onto itself. A hop that is not yet resolved is
// resolved on the spot, on the same branch, so a chain of references
// that closes a loop is reported as circular rather than left parked
// forever.
func (d *Document) chase(e ast.Entity, branch []*ast.ReferenceEntity, seg ast.PathSegment) (ast.Entity, error) {
	ref, ok := e.(*ast.ReferenceEntity)
	if !ok {
		return e, nil
	}
	for _, b := range branch {
		if b == ref {
			cycle := make([]core.CircularReferenceStep, 0, len(branch)+1)
			for _, r := range branch {
				cycle = append(cycle, core.CircularReferenceStep{Reference: r})
			}
			cycle = append(cycle, core.CircularReferenceStep{Reference: ref, Segment: seg})
			return nil, core.NewCircularReferenceError(cycle)
		}
	}
	if target, done := d.resolvedRef[ref]; done {
		return target, nil
	}
	next := make([]*ast.ReferenceEntity, len(branch), len(branch)+1)
	copy(next, branch)
	next = append(next, ref)
	target, err := d.resolveRefBranch(ref, next)
	if err != nil {
		return nil, err
	}
	d.resolvedRef[ref] = target
	return target, nil
}

// resolveSegment advances cur across a single path segment.
func (d *Document) resolveSegment(ref *ast.ReferenceEntity, cur ast.Entity, seg ast.PathSegment) (ast.Entity, error) {
	switch v := seg.(type) {
	case *ast.AncestorSegment:
		next := cur
		for i := 0; i < v.Order; i++ {
			p, ok := d.parents[next]
			if !ok || p == nil {
				return nil, core.NewUnknownReferenceError(ref, next, seg)
			}
			next = p
		}
		return next, nil

	case *ast.MemberSegment:
		ce, ok := cur.(*ast.ComplexEntity)
		if !ok {
			return nil, core.NewUnknownReferenceError(ref, cur, seg)
		}
		switch key := v.Key.(type) {
		case *ast.BindingName:
			val, ok := d.Member(ce, key)
			if !ok {
				return nil, core.NewUnknownReferenceError(ref, cur, seg)
			}
			return val, nil
		case *ast.BindingIndex:
			return d.resolveIndexSegment(ref, ce, key, seg)
		default:
			return nil, core.NewImplementationError("ast.BindingKey", "unknown", []string{"*ast.BindingName", "*ast.BindingIndex"})
		}

	case *ast.CollectionElementSegment:
		ce, ok := cur.(*ast.ComplexEntity)
		if !ok {
			return nil, core.NewUnknownReferenceError(ref, cur, seg)
		}
		idxVal, ok := d.resolveIndexParam(v.Index)
		if !ok {
			return nil, &parkedError{ctx: cur, seg: seg}
		}
		return d.resolveCollectionElementByIndex(ref, ce, idxVal, seg)

	default:
		return nil, core.NewImplementationError("ast.PathSegment", "unknown", []string{"*ast.AncestorSegment", "*ast.MemberSegment", "*ast.CollectionElementSegment"})
	}
}

// resolveIndexParam returns the valued entity an index-key or
// collection-element-segment parameter denotes, chasing through any
// reference. ok is false when some prerequisite reference is not yet
// resolved.
func (d *Document) resolveIndexParam(p ast.Entity) (ast.Entity, bool) {
	if ref, isRef := p.(*ast.ReferenceEntity); isRef {
		if _, done := d.resolvedRef[ref]; !done {
			return nil, false
		}
	}
	return equiv.Resolve(d, p)
}

// resolveIndexSegment implements the member-segment-with-binding-index
// branch of Step C, including the index-as-element shortcut.
func (d *Document) resolveIndexSegment(ref *ast.ReferenceEntity, ce *ast.ComplexEntity, key *ast.BindingIndex, seg ast.PathSegment) (ast.Entity, error) {
	resolved := make([]ast.Entity, len(key.Parameters))
	for i, p := range key.Parameters {
		v, ok := d.resolveIndexParam(p)
		if !ok {
			return nil, &parkedError{ctx: ce, seg: seg}
		}
		resolved[i] = v
	}

	if len(key.Parameters) == 1 {
		if elem, ok := indexAsElementCandidate(d.flags[ce], key.Parameters[0], resolved[0]); ok {
			return d.resolveCollectionElementByIndex(ref, ce, elem, seg)
		}
	}

	if err := d.promoteDeferred(ce, len(key.Parameters)); err != nil {
		return nil, err
	}
	val, ok := d.Member(ce, key)
	if !ok {
		return nil, &parkedError{ctx: ce, seg: seg}
	}
	return val, nil
}

// indexAsElementCandidate reports whether a single-parameter index
// lookup must be reinterpreted as a collection-element lookup, per
// spec.md §4.7/§9: the context's own indexed members must be incapable
// of ever matching a key shaped like this one.
func indexAsElementCandidate(flags *contextFlags, rawParam ast.Entity, resolvedParam ast.Entity) (ast.Entity, bool) {
	if _, isRef := rawParam.(*ast.ReferenceEntity); isRef {
		if flags.definesReferenceIndices {
			return nil, false
		}
	}
	se, ok := resolvedParam.(*ast.SimpleEntity)
	if !ok || se.Type != nil {
		return nil, false
	}
	switch se.Value.DataType {
	case ast.Number:
		if flags.definesImplicitNumberIndices {
			return nil, false
		}
	case ast.Binary:
		if flags.definesImplicitBinaryIndices {
			return nil, false
		}
	default:
		return nil, false
	}
	return resolvedParam, true
}

// resolveCollectionElementByIndex converts a resolved index/element
// entity into an integer and looks it up in ce's collection-init.
func (d *Document) resolveCollectionElementByIndex(ref *ast.ReferenceEntity, ce *ast.ComplexEntity, elem ast.Entity, seg ast.PathSegment) (ast.Entity, error) {
	se, ok := elem.(*ast.SimpleEntity)
	if !ok || se.Type != nil {
		return nil, core.NewUnknownReferenceError(ref, ce, seg)
	}
	idx, err := elementIndexToInt(se)
	if err != nil {
		return nil, err
	}
	if ce.CollectionInit == nil || idx < 0 || idx >= len(ce.CollectionInit.Elements) {
		return nil, core.NewUnknownReferenceError(ref, ce, seg)
	}
	return ce.CollectionInit.Elements[idx], nil
}

// promoteDeferred repeatedly attempts to move binding-index keys with n
// parameters (on ce) out of the deferred bucket and into the member map,
// as long as doing so makes progress; it stops once every remaining
// entry still has an unresolved reference parameter.
func (d *Document) promoteDeferred(ce *ast.ComplexEntity, n int) error {
	bucket := d.deferred[ce][n]
	if len(bucket) == 0 {
		return nil
	}
	for {
		progress := false
		var remaining []ast.MemberBinding
		for _, b := range bucket {
			ready, err := bindingIndexReady(d, b.Key.(*ast.BindingIndex))
			if err != nil {
				return err
			}
			if !ready {
				remaining = append(remaining, b)
				continue
			}
			if err := d.insertMember(ce, b); err != nil {
				return err
			}
			progress = true
		}
		bucket = remaining
		if !progress || len(bucket) == 0 {
			break
		}
	}
	d.deferred[ce][n] = bucket
	return nil
}

func bindingIndexReady(d *Document, idx *ast.BindingIndex) (bool, error) {
	for _, p := range idx.Parameters {
		ref, ok := p.(*ast.ReferenceEntity)
		if !ok {
			continue
		}
		if _, done := d.resolvedRef[ref]; !done {
			return false, nil
		}
	}
	return true, nil
}
