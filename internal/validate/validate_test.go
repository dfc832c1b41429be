package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/ston/internal/ast"
)

func numberEntity(t *testing.T, content string) ast.Entity {
	t.Helper()
	v, err := ast.NewSimpleValue(ast.Number, content)
	require.NoError(t, err)
	e, err := ast.NewSimpleEntity(v, nil, nil)
	require.NoError(t, err)
	return e
}

func TestEntity_NilIsInvalid(t *testing.T) {
	require.Error(t, Entity(nil))
}

func TestEntity_ValidSimpleEntity(t *testing.T) {
	require.NoError(t, Entity(numberEntity(t, "0")))
}

func TestType_UnionRejectsDuplicatePermittedTypes(t *testing.T) {
	a, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	b, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	union := &ast.UnionType{Permitted: []ast.Type{a, b}}

	require.Error(t, Type(union))
}

func TestType_UnionAcceptsDistinctPermittedTypes(t *testing.T) {
	a, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	b, err := ast.NewNamedType("string", nil, false)
	require.NoError(t, err)
	union, err := ast.NewUnionType([]ast.Type{a, b})
	require.NoError(t, err)

	require.NoError(t, Type(union))
}

func TestEntity_CollectionElementSegmentIndexMustBeImplicitlyTyped(t *testing.T) {
	typ, err := ast.NewNamedType("int", nil, false)
	require.NoError(t, err)
	v, err := ast.NewSimpleValue(ast.Number, "0")
	require.NoError(t, err)
	typed, err := ast.NewSimpleEntity(v, typ, nil)
	require.NoError(t, err)
	seg := &ast.CollectionElementSegment{Index: typed}
	addr, err := ast.NewAddress(&ast.AncestorInitialContext{Order: 0}, []ast.PathSegment{seg})
	require.NoError(t, err)
	ref := ast.NewReferenceEntity(addr, nil)

	require.Error(t, Entity(ref))
}

func TestEntity_CollectionElementSegmentWithImplicitIndexIsValid(t *testing.T) {
	idx := numberEntity(t, "0")
	seg, err := ast.NewCollectionElementSegment(idx)
	require.NoError(t, err)
	addr, err := ast.NewAddress(&ast.AncestorInitialContext{Order: 0}, []ast.PathSegment{seg})
	require.NoError(t, err)
	ref := ast.NewReferenceEntity(addr, nil)

	require.NoError(t, Entity(ref))
}

func TestEntity_BindingIndexMustBeNonEmpty(t *testing.T) {
	binding := ast.MemberBinding{Key: &ast.BindingIndex{Parameters: nil}, Value: numberEntity(t, "0")}
	mi := &ast.MemberInit{Bindings: []ast.MemberBinding{binding}}
	ce, err := ast.NewComplexEntity(nil, mi, nil, nil, nil)
	require.NoError(t, err)

	require.Error(t, Entity(ce))
}

func TestEntity_ComplexEntityRequiresAtLeastOneComponent(t *testing.T) {
	ce := &ast.ComplexEntity{}
	require.Error(t, Entity(ce))
}
