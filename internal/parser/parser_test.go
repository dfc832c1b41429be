package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/ston/internal/ast"
	"github.com/oxhq/ston/internal/core"
	"github.com/oxhq/ston/internal/writer"
)

func canon(t *testing.T, text string) string {
	t.Helper()
	e, err := ParseEntity(text)
	require.NoError(t, err)
	out, err := writer.CanonicalString(e)
	require.NoError(t, err)
	return out
}

func TestParseEntity_SimpleRoundTripScenario(t *testing.T) {
	require.Equal(t, `[cheerful,<"friendly">entity]`, canon(t, `[cheerful, friendly entity]`))
}

func TestParseEntity_NamedConstructionScenario(t *testing.T) {
	require.Equal(t,
		`(:a,:b,"parameter x":c,"y":d,"z e e":e)[one,two,three]`,
		canon(t, `(a, b, 'parameter x':c, y:d, 'z e e':e)[ one, two, three ]`),
	)
}

func TestParseEntity_NullIsReservedWord(t *testing.T) {
	e, err := ParseEntity("null")
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	require.Equal(t, ast.Null, se.Value.DataType)
}

func TestParseEntity_BareTypeThenValue(t *testing.T) {
	e, err := ParseEntity("int 0")
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	nt := se.Type.(*ast.NamedType)
	require.Equal(t, "int", nt.Name)
	require.Equal(t, ast.Number, se.Value.DataType)
	require.Equal(t, "0", se.Value.Content)
}

func TestParseEntity_BareCollectionTypeSuffixThenMemberInit(t *testing.T) {
	e, err := ParseEntity(`map<string,int>[...] {}`)
	require.NoError(t, err)
	se := e.(*ast.ComplexEntity)
	_, ok := se.Type.(*ast.CollectionType)
	require.True(t, ok)
	require.NotNil(t, se.MemberInit)
}

func TestParseEntity_BareLeadingBracketIsCollectionInitNotSuffix(t *testing.T) {
	// `[` not immediately followed by `...]` starts a collection-init
	// component rather than a collection-type suffix (spec.md §4.4).
	e, err := ParseEntity(`string [a,b]`)
	require.NoError(t, err)
	ce := e.(*ast.ComplexEntity)
	require.NotNil(t, ce.CollectionInit)
	require.Len(t, ce.CollectionInit.Elements, 2)
	nt := ce.Type.(*ast.NamedType)
	require.Equal(t, "string", nt.Name)
}

func TestParseEntity_BareTypeThenConstruction(t *testing.T) {
	e, err := ParseEntity(`Point(1, 2)`)
	require.NoError(t, err)
	ce := e.(*ast.ComplexEntity)
	nt := ce.Type.(*ast.NamedType)
	require.Equal(t, "Point", nt.Name)
	require.NotNil(t, ce.Construction)
	require.Len(t, ce.Construction.Positional, 2)
}

func TestParseEntity_GlobalIdentifierWithoutSigil(t *testing.T) {
	e, err := ParseEntity(`FOO = one`)
	require.NoError(t, err)
	require.NotNil(t, e.GlobalIdentifier())
	require.Equal(t, "FOO", *e.GlobalIdentifier())
	se := e.(*ast.SimpleEntity)
	require.Equal(t, "one", se.Value.Content)
}

func TestParseEntity_ImplicitTypeAtTopLevelOfBareForm(t *testing.T) {
	e, err := ParseEntity(`<>null`)
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	require.Nil(t, se.Type)
}

func TestParseEntity_NestedEmptyWrappedTypeIsError(t *testing.T) {
	_, err := ParseEntity(`map<<>>{}`)
	require.Error(t, err)
}

func TestParseEntity_UnionWithDuplicatePermittedTypesIsRejected(t *testing.T) {
	_, err := ParseEntity(`<int|int>null`)
	require.Error(t, err)
	var verr *core.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestParseEntity_ComplexOrderingRejectsMemberBeforeConstruction(t *testing.T) {
	_, err := ParseEntity(`{a:1}(1)`)
	require.Error(t, err)
}

func TestParseEntity_ComplexOrderingAcceptsConstructionThenMemberThenCollection(t *testing.T) {
	e, err := ParseEntity(`(1){a:1}[1]`)
	require.NoError(t, err)
	ce := e.(*ast.ComplexEntity)
	require.NotNil(t, ce.Construction)
	require.NotNil(t, ce.MemberInit)
	require.NotNil(t, ce.CollectionInit)
}

func TestParseEntity_ComplexOrderingAcceptsConstructionThenCollectionThenMember(t *testing.T) {
	e, err := ParseEntity(`(1)[1]{a:1}`)
	require.NoError(t, err)
	ce := e.(*ast.ComplexEntity)
	require.NotNil(t, ce.Construction)
	require.NotNil(t, ce.MemberInit)
	require.NotNil(t, ce.CollectionInit)
}

func TestParseEntity_GlobalIdentifierPrefix(t *testing.T) {
	e, err := ParseEntity(`&ID=one`)
	require.NoError(t, err)
	require.NotNil(t, e.GlobalIdentifier())
	require.Equal(t, "ID", *e.GlobalIdentifier())
}

func TestParseEntity_ReferenceEntityForbidsDeclaredType(t *testing.T) {
	// References never carry a declared type; the grammar never offers a
	// `<...>` slot after `$`/`^`/`@`, so this just confirms the produced
	// entity reports no type rather than attempting to parse one.
	e, err := ParseEntity(`$.a`)
	require.NoError(t, err)
	require.Nil(t, e.DeclaredType())
}

func TestParseEntity_NegativeCollectionElementIndexIsRejected(t *testing.T) {
	_, err := ParseEntity(`$[#-1]`)
	require.Error(t, err)
}

func TestParseEntity_StringChainOpenInsertsLeadingLF(t *testing.T) {
	e, err := ParseEntity(`>"a"`)
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	require.Equal(t, "\na", se.Value.Content)
}

func TestParseEntity_TrailingContentIsError(t *testing.T) {
	_, err := ParseEntity(`null null`)
	require.Error(t, err)
	var perr *core.ParsingError
	require.ErrorAs(t, err, &perr)
}

func TestParseEntity_EmptyInputIsParsingError(t *testing.T) {
	_, err := ParseEntity("")
	require.Error(t, err)
	var perr *core.ParsingError
	require.ErrorAs(t, err, &perr)
}

func TestParseEntity_WhitespaceOnlyInputIsParsingError(t *testing.T) {
	for _, src := range []string{"   ", "\t", "\r", "\n", "\r\n", "// line"} {
		_, err := ParseEntity(src)
		require.Error(t, err, "src=%q", src)
		var perr *core.ParsingError
		require.ErrorAs(t, err, &perr, "src=%q", src)
	}
}

func TestParseEntity_CRLFEndsAtLineOneColumnZero(t *testing.T) {
	p := New("\r\n")
	_, err := p.Entity()
	require.Error(t, err)
	var perr *core.ParsingError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 2, perr.Pos.Line)
	require.Equal(t, 0, perr.Pos.Column)
	require.Equal(t, 2, perr.Pos.Offset)
}

func TestParseEntity_CanunIdentifierWithDigits(t *testing.T) {
	e, err := ParseEntity("abc123")
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	require.Equal(t, ast.Named, se.Value.DataType)
	require.Equal(t, "abc123", se.Value.Content)
}

func TestParseEntity_LargeExponentPreservedLosslessly(t *testing.T) {
	e, err := ParseEntity("1e999999999999999999999999")
	require.NoError(t, err)
	se := e.(*ast.SimpleEntity)
	require.Equal(t, "1e999999999999999999999999", se.Value.Content)
}
