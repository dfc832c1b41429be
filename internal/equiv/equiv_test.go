package equiv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/ston/internal/ast"
)

type fakeResolver map[*ast.ReferenceEntity]ast.Entity

func (r fakeResolver) ReferencedValue(ref *ast.ReferenceEntity) (ast.Entity, bool) {
	e, ok := r[ref]
	return e, ok
}

func namedEntity(t *testing.T, content string) ast.Entity {
	t.Helper()
	v, err := ast.NewSimpleValue(ast.Named, content)
	require.NoError(t, err)
	e, err := ast.NewSimpleEntity(v, nil, nil)
	require.NoError(t, err)
	return e
}

func TestTypesEqual_NamedTypeNameAndExtensionSensitive(t *testing.T) {
	a, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	b, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	require.True(t, TypesEqual(a, b))

	ext, err := ast.NewNamedType("int", nil, true)
	require.NoError(t, err)
	require.False(t, TypesEqual(a, ext))
}

func TestTypesEqual_UnionIsOrderSensitive(t *testing.T) {
	str, err := ast.NewNamedType("string", nil, false)
	require.NoError(t, err)
	i, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)

	u1, err := ast.NewUnionType([]ast.Type{str, i})
	require.NoError(t, err)
	u2, err := ast.NewUnionType([]ast.Type{i, str})
	require.NoError(t, err)

	require.False(t, TypesEqual(u1, u2), "spec.md §4.6 compares union permitted types as an ordered sequence")
	require.True(t, TypesEqual(u1, u1.Clone()))
}

func TestTypesEqual_NilHandling(t *testing.T) {
	require.True(t, TypesEqual(nil, nil))
	typ, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	require.False(t, TypesEqual(nil, typ))
	require.False(t, TypesEqual(typ, nil))
}

func TestEntitiesEqual_SimpleValuesByTypeAndContent(t *testing.T) {
	a := namedEntity(t, "foo")
	b := namedEntity(t, "foo")
	c := namedEntity(t, "bar")

	r := fakeResolver{}
	require.True(t, EntitiesEqual(r, a, b))
	require.False(t, EntitiesEqual(r, a, c))
}

func TestEntitiesEqual_ComplexValuesByIdentity(t *testing.T) {
	col, err := ast.NewCollectionInit([]ast.Entity{namedEntity(t, "x")})
	require.NoError(t, err)
	a, err := ast.NewComplexEntity(nil, nil, &col, nil, nil)
	require.NoError(t, err)
	b, err := ast.NewComplexEntity(nil, nil, &col, nil, nil)
	require.NoError(t, err)

	r := fakeResolver{}
	require.True(t, EntitiesEqual(r, a, a), "same object is equal to itself")
	require.False(t, EntitiesEqual(r, a, b), "structurally-identical complex entities are distinct objects")
}

func TestEntitiesEqual_ReferenceResolvesThroughResolver(t *testing.T) {
	target := namedEntity(t, "resolved")
	addr, err := ast.NewAddress(&ast.AncestorInitialContext{Order: 0}, nil)
	require.NoError(t, err)
	ref := ast.NewReferenceEntity(addr, nil)

	r := fakeResolver{ref: target}
	require.True(t, EntitiesEqual(r, ref, namedEntity(t, "resolved")))
}

func TestEntitiesEqual_UnresolvedReferenceEqualsOnlyItself(t *testing.T) {
	addr, err := ast.NewAddress(&ast.AncestorInitialContext{Order: 0}, nil)
	require.NoError(t, err)
	ref := ast.NewReferenceEntity(addr, nil)

	r := fakeResolver{}
	require.True(t, EntitiesEqual(r, ref, ref))
	require.False(t, EntitiesEqual(r, ref, namedEntity(t, "anything")))
}

func TestEntityHash_MatchesEqualEntities(t *testing.T) {
	a := namedEntity(t, "foo")
	b := namedEntity(t, "foo")
	r := fakeResolver{}
	require.Equal(t, EntityHash(r, a), EntityHash(r, b))
}

func TestBindingKeysEqual_NamesCompareByExtensionAndName(t *testing.T) {
	a, err := ast.NewBindingName("x", false)
	require.NoError(t, err)
	b, err := ast.NewBindingName("x", false)
	require.NoError(t, err)
	ext, err := ast.NewBindingName("x", true)
	require.NoError(t, err)

	r := fakeResolver{}
	require.True(t, BindingKeysEqual(r, a, b))
	require.False(t, BindingKeysEqual(r, a, ext))
}

func TestBindingKeysEqual_IndicesCompareElementwise(t *testing.T) {
	i1, err := ast.NewBindingIndex([]ast.Entity{namedEntity(t, "a"), namedEntity(t, "b")})
	require.NoError(t, err)
	i2, err := ast.NewBindingIndex([]ast.Entity{namedEntity(t, "a"), namedEntity(t, "b")})
	require.NoError(t, err)
	i3, err := ast.NewBindingIndex([]ast.Entity{namedEntity(t, "a")})
	require.NoError(t, err)

	r := fakeResolver{}
	require.True(t, BindingKeysEqual(r, i1, i2))
	require.False(t, BindingKeysEqual(r, i1, i3))
}
