package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSimpleValue_NumberNormalizationInvariants(t *testing.T) {
	valid := []string{"0", "1e0", "-1e0", "9e-3", "123e4"}
	for _, c := range valid {
		_, err := NewSimpleValue(Number, c)
		require.NoError(t, err, "content=%q", c)
	}

	invalid := []string{"00", "01e0", "1e00", "10e0", "-0", "0e0", "1"}
	for _, c := range invalid {
		_, err := NewSimpleValue(Number, c)
		require.Error(t, err, "content=%q", c)
	}
}

func TestNewSimpleValue_NullMustBeEmpty(t *testing.T) {
	_, err := NewSimpleValue(Null, "")
	require.NoError(t, err)

	_, err = NewSimpleValue(Null, "x")
	require.Error(t, err)
}

func TestNewSimpleValue_BinaryContentRules(t *testing.T) {
	_, err := NewSimpleValue(Binary, "")
	require.NoError(t, err)

	_, err = NewSimpleValue(Binary, "ab01")
	require.NoError(t, err)

	_, err = NewSimpleValue(Binary, "-ab01")
	require.NoError(t, err)

	_, err = NewSimpleValue(Binary, "-")
	require.Error(t, err, "negative sign with empty magnitude is invalid")

	_, err = NewSimpleValue(Binary, "abc")
	require.Error(t, err, "odd length is invalid")

	_, err = NewSimpleValue(Binary, "AB01")
	require.Error(t, err, "uppercase hex is rejected when constructing directly")
}

func TestNewSimpleValue_NamedContentMustBeCanunPath(t *testing.T) {
	_, err := NewSimpleValue(Named, "foo.bar_baz")
	require.NoError(t, err)

	_, err = NewSimpleValue(Named, "")
	require.Error(t, err)

	_, err = NewSimpleValue(Named, "1abc")
	require.Error(t, err)

	_, err = NewSimpleValue(Named, "foo..bar")
	require.Error(t, err)
}

func TestNewComplexEntity_RequiresAtLeastOneComponent(t *testing.T) {
	_, err := NewComplexEntity(nil, nil, nil, nil, nil)
	require.Error(t, err)

	col, err := NewCollectionInit(nil)
	require.NoError(t, err)
	_, err = NewComplexEntity(nil, nil, &col, nil, nil)
	require.NoError(t, err)
}

func TestComplexEntity_CloneIsDeepAndIndependent(t *testing.T) {
	val, err := NewSimpleValue(Named, "a")
	require.NoError(t, err)
	inner, err := NewSimpleEntity(val, nil, nil)
	require.NoError(t, err)
	col, err := NewCollectionInit([]Entity{inner})
	require.NoError(t, err)
	id := "ID"
	orig, err := NewComplexEntity(nil, nil, &col, nil, &id)
	require.NoError(t, err)

	clone := orig.Clone().(*ComplexEntity)
	*clone.GlobalID = "CHANGED"
	require.Equal(t, "ID", *orig.GlobalID, "mutating the clone's global id must not affect the original")

	clone.CollectionInit.Elements[0] = inner
	require.NotSame(t, orig.CollectionInit, clone.CollectionInit)
}

func TestNewBindingIndex_RequiresNonEmptyParameters(t *testing.T) {
	_, err := NewBindingIndex(nil)
	require.Error(t, err)

	val, err := NewSimpleValue(Number, "0")
	require.NoError(t, err)
	e, err := NewSimpleEntity(val, nil, nil)
	require.NoError(t, err)
	_, err = NewBindingIndex([]Entity{e})
	require.NoError(t, err)
}

func TestNewUnionType_RequiresAtLeastTwoPermitted(t *testing.T) {
	a, err := NewNamedType("int", nil, false)
	require.NoError(t, err)
	_, err = NewUnionType([]Type{a})
	require.Error(t, err)

	b, err := NewNamedType("string", nil, false)
	require.NoError(t, err)
	_, err = NewUnionType([]Type{a, b})
	require.NoError(t, err)
}

func TestAncestorOrderInvariants(t *testing.T) {
	_, err := NewAncestorInitialContext(-1)
	require.Error(t, err, "ancestor initial context order must be >= 0")

	ic, err := NewAncestorInitialContext(0)
	require.NoError(t, err)

	_, err = NewAddress(ic, nil)
	require.NoError(t, err)

	_, err = NewAncestorSegment(0)
	require.Error(t, err, "ancestor path segment order must be >= 1")

	_, err = NewAncestorSegment(1)
	require.NoError(t, err)
}
