package ston

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/ston/internal/ast"
)

func TestParseEntity_WriteEntity_RoundTripsThroughCanonicalForm(t *testing.T) {
	inputs := []string{
		`[cheerful, friendly entity]`,
		`(a, b, 'parameter x':c, y:d, 'z e e':e)[ one, two, three ]`,
		`map<string,int>[...] {}`,
		`null`,
		`-12e3`,
	}
	for _, in := range inputs {
		e, err := ParseEntity(in)
		require.NoError(t, err, "input=%q", in)

		first, err := ToCanonicalForm(e)
		require.NoError(t, err, "input=%q", in)

		reparsed, err := ParseEntity(first)
		require.NoError(t, err, "canonical form %q failed to reparse", first)

		second, err := ToCanonicalForm(reparsed)
		require.NoError(t, err)
		require.Equal(t, first, second, "canonical form must be idempotent under reparse")
	}
}

func TestReadEntity_MatchesParseEntity(t *testing.T) {
	text := `[cheerful, friendly entity]`
	viaParse, err := ParseEntity(text)
	require.NoError(t, err)

	viaRead, err := ReadEntity(strings.NewReader(text))
	require.NoError(t, err)

	parseCanon, err := ToCanonicalForm(viaParse)
	require.NoError(t, err)
	readCanon, err := ToCanonicalForm(viaRead)
	require.NoError(t, err)
	require.Equal(t, parseCanon, readCanon)
}

func TestParseDocument_ReferenceResolutionScenario(t *testing.T) {
	doc, err := ParseDocument(
		`{ a: { a: { a: { a: &TEST = ^^.b, b: SELF}, b: PAR1 }, b: OK }, b: PAR3 }`,
		nil, nil, nil, nil,
	)
	require.NoError(t, err)

	target, ok := doc.GlobalEntity("TEST")
	require.True(t, ok)
	ref, ok := target.(*ast.ReferenceEntity)
	require.True(t, ok)

	resolved, ok := doc.ReferencedValueOf(ref)
	require.True(t, ok)
	simple, ok := resolved.(*ast.SimpleEntity)
	require.True(t, ok)
	require.Equal(t, ast.Named, simple.Value.DataType)
	require.Equal(t, "OK", simple.Value.Content)
}

func TestToCanonicalForm_SameOutputForStructurallyEqualEntities(t *testing.T) {
	a, err := ParseEntity(`[one,two]`)
	require.NoError(t, err)
	b, err := ParseEntity(`[one, two]`)
	require.NoError(t, err)

	aCanon, err := ToCanonicalForm(a)
	require.NoError(t, err)
	bCanon, err := ToCanonicalForm(b)
	require.NoError(t, err)
	require.Equal(t, aCanon, bCanon)
}

func TestParseDocument_CircularConstructionScenario(t *testing.T) {
	_, err := ParseDocument(
		`&NODE0_0 = (&NODE1_1 = (a, &NODE2_2 = (b, c, &LAST3_3 = (d, e, f, ^*))))`,
		nil, nil, nil, nil,
	)
	require.Error(t, err)
}

func TestToPlainForm_ExpandsNumbers(t *testing.T) {
	e, err := ParseEntity(`[1.5, 2 000]`)
	require.NoError(t, err)

	plain, err := ToPlainForm(e)
	require.NoError(t, err)
	require.Equal(t, `[1.5,2000]`, plain)

	canon, err := ToCanonicalForm(e)
	require.NoError(t, err)
	require.Equal(t, `[15e-1,2e3]`, canon)
}

func TestParseDocument_ExtensionPredicateAccepted(t *testing.T) {
	_, err := ParseDocument(`<!custom>null`, nil, nil, func(name string) bool {
		return name == "custom"
	}, nil)
	require.NoError(t, err)
}

func TestParseDocument_ExtensionRejectedWithoutPolicy(t *testing.T) {
	_, err := ParseDocument(`<!custom>null`, nil, nil, nil, nil)
	require.Error(t, err)
}
