package document

import (
	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/equiv"
)

// memberMap is a hash map over ast.BindingKey using the document-scoped
// binding-key comparer of internal/equiv (BindingKey is not itself a
// comparable Go type once it wraps reference-valued index parameters).
type memberMap struct {
	buckets map[uint64][]ast.MemberBinding
}

func newMemberMap() *memberMap {
	return &memberMap{buckets: map[uint64][]ast.MemberBinding{}}
}

// insert adds b if no equivalent key is already present, reporting the
// colliding binding otherwise.
func (m *memberMap) insert(d *Document, b ast.MemberBinding) (existing ast.MemberBinding, duplicate bool) {
	h := equiv.BindingKeyHash(d, b.Key)
	for _, e := range m.buckets[h] {
		if equiv.BindingKeysEqual(d, e.Key, b.Key) {
			return e, true
		}
	}
	m.buckets[h] = append(m.buckets[h], b)
	return ast.MemberBinding{}, false
}

func (m *memberMap) lookup(d *Document, key ast.BindingKey) (ast.Entity, bool) {
	h := equiv.BindingKeyHash(d, key)
	for _, e := range m.buckets[h] {
		if equiv.BindingKeysEqual(d, e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}
