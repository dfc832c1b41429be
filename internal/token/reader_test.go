package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_AdvancePosition(t *testing.T) {
	r := NewReader("ab\r\ncd")
	for i := 0; i < 2; i++ {
		r.Advance()
	}
	require.Equal(t, 0, r.Pos().Line-1)
	ru, ok := r.Advance() // consumes CRLF as one break
	require.True(t, ok)
	assert.Equal(t, '\n', ru)
	assert.Equal(t, 2, r.Pos().Line)
	assert.Equal(t, 0, r.Pos().Column)
}

func TestReader_PeekSignificant_SkipsCommentsAndWhitespace(t *testing.T) {
	r := NewReader("  // a line comment\n/* block */  x")
	ru, ok, err := r.PeekSignificant()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 'x', ru)
}

func TestReader_PeekSignificant_UnterminatedBlockComment(t *testing.T) {
	r := NewReader("/* never closes")
	_, _, err := r.PeekSignificant()
	require.Error(t, err)
}

func TestReader_ReadCanun(t *testing.T) {
	r := NewReader("  foo_Bar9 rest")
	id, err := r.ReadCanun()
	require.NoError(t, err)
	assert.Equal(t, "foo_Bar9", id)
}

func TestReader_ReadCanun_RejectsLeadingDigit(t *testing.T) {
	r := NewReader("9abc")
	_, err := r.ReadCanun()
	require.Error(t, err)
}

func TestReader_ReadStringLiteral_Escapes(t *testing.T) {
	r := NewReader(`"a\nbAc"`)
	s, delim, err := r.ReadStringLiteral()
	require.NoError(t, err)
	assert.Equal(t, '"', delim)
	assert.Equal(t, "a\nbAc", s)
}

func TestReader_ReadStringLiteral_ChainInsertsLF(t *testing.T) {
	r := NewReader(`"a" > "b"`)
	s, _, err := r.ReadStringLiteral()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", s)
}

func TestReader_ReadStringLiteral_PlusChainNoLF(t *testing.T) {
	r := NewReader(`"a" + "b"`)
	s, _, err := r.ReadStringLiteral()
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
}

func TestReader_ReadStringLiteral_ChainKindMismatch(t *testing.T) {
	r := NewReader("\"a\" > `b`")
	_, _, err := r.ReadStringLiteral()
	require.Error(t, err)
}

func TestReader_ReadStringLiteral_ChainAcrossTextDelimiters(t *testing.T) {
	r := NewReader(`"a" + 'b'`)
	s, delim, err := r.ReadStringLiteral()
	require.NoError(t, err)
	assert.Equal(t, '"', delim)
	assert.Equal(t, "ab", s)
}

func TestReader_ReadStringLiteral_ControlCharForbidden(t *testing.T) {
	r := NewReader("\"a\x01b\"")
	_, _, err := r.ReadStringLiteral()
	require.Error(t, err)
}

func TestReader_ReadStringLiteral_Unterminated(t *testing.T) {
	r := NewReader(`"abc`)
	_, _, err := r.ReadStringLiteral()
	require.Error(t, err)
}

func TestReader_ReadBinaryContent(t *testing.T) {
	tests := []struct {
		name    string
		base    rune
		src     string
		want    string
		wantErr bool
	}{
		{name: "empty_n", base: 'n', src: "", want: ""},
		{name: "bits_byte_aligned", base: 'b', src: "00000001", want: "01"},
		{name: "bits_not_aligned", base: 'b', src: "0001", wantErr: true},
		{name: "octal_byte_aligned", base: 'o', src: "00000000", want: "000000"},
		{name: "octal_not_aligned", base: 'o', src: "001", wantErr: true},
		{name: "hex_even_length", base: 'x', src: "FF", want: "ff"},
		{name: "hex_odd_length", base: 'x', src: "f", wantErr: true},
		{name: "base64_with_padding", base: 'z', src: "AAAAAA==", want: "00000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.src)
			got, err := r.ReadBinaryContent(tt.base)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ReadNumberContent_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "zero", src: "0", want: "0"},
		{name: "leading_zeros_stripped", src: "007", want: "7e0"},
		{name: "fraction_shifts_exponent", src: "1.50", want: "15e-1"},
		{name: "negative_zero_normalizes", src: "-0", want: "0"},
		{name: "internal_space_separator", src: "1 000", want: "1e3"},
		{name: "explicit_exponent", src: "12e3", want: "12e3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.src)
			got, err := r.ReadNumberContent()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ProbeCollectionTypeSuffix(t *testing.T) {
	r := NewReader("[...] rest")
	ok, err := r.ProbeCollectionTypeSuffix()
	require.NoError(t, err)
	assert.True(t, ok)

	r2 := NewReader("[1,2]")
	ok2, err := r2.ProbeCollectionTypeSuffix()
	require.NoError(t, err)
	assert.False(t, ok2)
	// The '[' must still be there for the caller to resume from.
	ru, _ := r2.Peek()
	assert.Equal(t, '[', ru)
}
