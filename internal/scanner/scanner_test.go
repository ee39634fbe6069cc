package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	return New(src, 0).ScanAll()
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestScanFunHeader(t *testing.T) {
	toks := scan(t, "fun add(a Int32, b Int32) Int32 = a + b;")
	assert.Equal(t, []token.Kind{
		token.KwFun, token.Ident, token.LParen,
		token.Ident, token.Ident, token.Comma,
		token.Ident, token.Ident, token.RParen,
		token.Ident, token.Eq, token.Ident, token.Plus, token.Ident,
		token.Semicolon, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "add", toks[1].Lit)
}

func TestScanPunctuation(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{":=", token.ColonEq},
		{"::", token.ColonColon},
		{":$", token.ColonDollar},
		{"..", token.DotDot},
		{"...", token.DotDotDot},
		{"->", token.Arrow},
		{"<-", token.ArrowBack},
		{"=>", token.FatArrow},
		{"==", token.EqEq},
		{"!=", token.BangEq},
		{"<=", token.LtEq},
		{">=", token.GtEq},
		{"<<", token.Shl},
		{">>", token.Shr},
		{"&&", token.AmpAmp},
		{"||", token.PipePipe},
		{"++", token.PlusPlus},
		{"**", token.StarStar},
		{"${", token.DollarBrace},
	}
	for _, tt := range tests {
		toks := scan(t, tt.src)
		require.Len(t, toks, 2, tt.src)
		assert.Equal(t, tt.kind, toks[0].Kind, tt.src)
	}
}

func TestScanIntegerBases(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
		lit  string
	}{
		{"123", token.LitInt10, "123"},
		{"0b1010", token.LitInt2, "0b1010"},
		{"0o777", token.LitInt8, "0o777"},
		{"0xff", token.LitInt16, "0xff"},
		{"1_000_000", token.LitInt10, "1000000"},
		{"1.5", token.LitFloat, "1.5"},
		{"1e9", token.LitFloat, "1e9"},
	}
	for _, tt := range tests {
		toks := scan(t, tt.src)
		require.Len(t, toks, 2, tt.src)
		assert.Equal(t, tt.kind, toks[0].Kind, tt.src)
		assert.Equal(t, tt.lit, toks[0].Lit, tt.src)
	}
}

func TestScanSuffixedLiterals(t *testing.T) {
	tests := []struct {
		src    string
		suffix token.SuffixKind
	}{
		{"10u8", token.SuffixU8},
		{"10i64", token.SuffixI64},
		{"3.14f32", token.SuffixF32},
		{"1usize", token.SuffixUsize},
	}
	for _, tt := range tests {
		toks := scan(t, tt.src)
		require.Len(t, toks, 2, tt.src)
		assert.Equal(t, token.LitSuffix, toks[0].Kind, tt.src)
		assert.Equal(t, tt.suffix, toks[0].Suffix, tt.src)
	}
}

func TestScanStringForms(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
		lit  string
	}{
		{`"hello"`, token.LitStr, "hello"},
		{`c"hello"`, token.LitCStr, "hello"},
		{`b"hello"`, token.LitBytes, "hello"},
		{`'a'`, token.LitChar, "a"},
		{`b'a'`, token.LitByte, "a"},
		{`"a\nb"`, token.LitStr, "a\nb"},
	}
	for _, tt := range tests {
		toks := scan(t, tt.src)
		require.Len(t, toks, 2, tt.src)
		assert.Equal(t, tt.kind, toks[0].Kind, tt.src)
		assert.Equal(t, tt.lit, toks[0].Lit, tt.src)
	}
}

func TestScanIdentifierForms(t *testing.T) {
	toks := scan(t, "foo $bar baz! Self self Global")
	assert.Equal(t, []token.Kind{
		token.Ident, token.IdentDollar, token.IdentMacro,
		token.KwSelfUpper, token.KwSelfLower, token.KwGlobal, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "bar", toks[1].Lit)
	assert.Equal(t, "baz", toks[2].Lit)
}

func TestScanComments(t *testing.T) {
	toks := scan(t, "a // comment\nb /* multi\nline */ c /* nested /* deep */ */ d")
	assert.Equal(t, []token.Kind{
		token.Ident, token.Ident, token.Ident, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestScanLocations(t *testing.T) {
	toks := scan(t, "a\n  bb")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Loc.StartLine)
	assert.Equal(t, 1, toks[0].Loc.StartCol)
	assert.Equal(t, 2, toks[1].Loc.StartLine)
	assert.Equal(t, 3, toks[1].Loc.StartCol)
	// EOF sits one position past the end of the file.
	assert.Equal(t, len("a\n  bb"), toks[2].Loc.StartPos)
}

func TestScanBangDisambiguation(t *testing.T) {
	toks := scan(t, "a != b ! c")
	assert.Equal(t, []token.Kind{
		token.Ident, token.BangEq, token.Ident, token.Bang, token.Ident, token.EOF,
	}, kinds(toks))
}
