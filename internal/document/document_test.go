package document_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/document"
	"github.com/oxhq/ston/internal/parser"
)

func parseRoot(t *testing.T, text string) ast.Entity {
	t.Helper()
	e, err := parser.ParseEntity(text)
	require.NoError(t, err)
	return e
}

func TestNew_ReferenceResolutionInNestedMembers(t *testing.T) {
	root := parseRoot(t, `{ a: { a: { a: { a: &TEST = ^^.b, b: SELF}, b: PAR1 }, b: OK }, b: PAR3 }`)
	doc, err := document.New(root, document.Options{})
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

func TestNew_IndexAsElementShortcut_NegativeWhenContextDefinesImplicitIndices(t *testing.T) {
	root := parseRoot(t, `{ a: &TEST = $[0], [0]: NOPE }[ OK ]`)
	doc, err := document.New(root, document.Options{})
	require.NoError(t, err)

	target, ok := doc.GlobalEntity("TEST")
	require.True(t, ok)
	ref := target.(*ast.ReferenceEntity)

	resolved, ok := doc.ReferencedValueOf(ref)
	require.True(t, ok)
	simple := resolved.(*ast.SimpleEntity)
	require.Equal(t, "NOPE", simple.Value.Content)
}

func TestNew_IndexAsElementShortcut_PositiveWhenNoConflictingIndex(t *testing.T) {
	root := parseRoot(t, `{ a: &TEST = $[0] }[ OK ]`)
	doc, err := document.New(root, document.Options{})
	require.NoError(t, err)

	target, ok := doc.GlobalEntity("TEST")
	require.True(t, ok)
	ref := target.(*ast.ReferenceEntity)

	resolved, ok := doc.ReferencedValueOf(ref)
	require.True(t, ok)
	simple := resolved.(*ast.SimpleEntity)
	require.Equal(t, "OK", simple.Value.Content)
}

func TestNew_DuplicateIndexedMemberAfterReferenceResolution(t *testing.T) {
	root := parseRoot(t, `&DOUBLE = { idx: &IDX = 'a', ['a']: 0, [@IDX]: 1 }`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var dupErr *core.DuplicateMemberError
	require.ErrorAs(t, err, &dupErr)
}

func TestNew_CircularConstruction(t *testing.T) {
	root := parseRoot(t, `&NODE0_0 = (&NODE1_1 = (a, &NODE2_2 = (b, c, &LAST3_3 = (d, e, f, ^*))))`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var cycErr *core.CircularConstructionError
	require.ErrorAs(t, err, &cycErr)
	require.Len(t, cycErr.Cycle, 4)
}

func TestNew_DirectReferenceLoopIsCircular(t *testing.T) {
	root := parseRoot(t, `{ a: &SELF = $.a }`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var cycErr *core.CircularReferenceError
	require.ErrorAs(t, err, &cycErr)
}

func TestNew_MutualReferenceLoopIsCircular(t *testing.T) {
	root := parseRoot(t, `{ a: &A = $.b, b: &B = $.a }`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var cycErr *core.CircularReferenceError
	require.ErrorAs(t, err, &cycErr)
}

func TestNew_CollectionElementIndexMaxInt32IsAcceptedButOutOfRange(t *testing.T) {
	root := parseRoot(t, `{ a: $[#2147483647] }[ x ]`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var unkErr *core.UnknownReferenceError
	require.ErrorAs(t, err, &unkErr, "2^31-1 is in the supported index range, so the failure is out-of-range, not unsupported")
}

func TestNew_CollectionElementIndexBeyondInt32IsUnsupported(t *testing.T) {
	root := parseRoot(t, `{ a: $[#2147483648] }[ x ]`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var unsErr *core.UnsupportedError
	require.ErrorAs(t, err, &unsErr)
}

func TestNew_CollectionElementHugeExponentIsUnsupported(t *testing.T) {
	root := parseRoot(t, `{ a: $[#1e999999999999999999999999] }[ x ]`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var unsErr *core.UnsupportedError
	require.ErrorAs(t, err, &unsErr)
}

func TestNew_UnknownReference(t *testing.T) {
	root := parseRoot(t, `{ a: $.nope }`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var unkErr *core.UnknownReferenceError
	require.ErrorAs(t, err, &unkErr)
}

func TestNew_DuplicateGlobalIdentifier(t *testing.T) {
	root := parseRoot(t, `{ a: &X = one, b: &X = two }`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var dupErr *core.DuplicateGlobalEntityError
	require.ErrorAs(t, err, &dupErr)
}

func TestNew_LenientDuplicateGlobalIdentifierCollectsDiagnostic(t *testing.T) {
	root := parseRoot(t, `{ a: &X = one, b: &X = two }`)
	doc, err := document.New(root, document.Options{Lenient: true})
	require.NoError(t, err)
	require.NotEmpty(t, doc.Diagnostics)
}

func TestNew_ConstructionOrderVisitsDependenciesBeforeDependents(t *testing.T) {
	root := parseRoot(t, `&A = (&B = (one))`)
	doc, err := document.New(root, document.Options{})
	require.NoError(t, err)

	order := doc.ConstructionOrder()
	indexOf := func(id string) int {
		for i, e := range order {
			if e.GlobalIdentifier() != nil && *e.GlobalIdentifier() == id {
				return i
			}
		}
		return -1
	}
	bIdx, aIdx := indexOf("B"), indexOf("A")
	require.GreaterOrEqual(t, bIdx, 0)
	require.GreaterOrEqual(t, aIdx, 0)
	require.Less(t, bIdx, aIdx)
}

func TestNew_ExtensionTypeRejectedWithoutPolicy(t *testing.T) {
	root := parseRoot(t, `<!custom>null`)
	_, err := document.New(root, document.Options{})
	require.Error(t, err)
	var extErr *core.ExtensionTypeError
	require.ErrorAs(t, err, &extErr)
}

func TestNew_ExtensionTypeAcceptedByAllowlist(t *testing.T) {
	root := parseRoot(t, `<!custom>null`)
	doc, err := document.New(root, document.Options{
		ExtensionTypesAllowed: map[string]bool{"custom": true},
	})
	require.NoError(t, err)
	require.NotNil(t, doc.Core())
}
