package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/macro"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/preparser"
	"github.com/lily-lang/lilyc/internal/scanner"
	"github.com/lily-lang/lilyc/internal/token"
)

type fixture struct {
	sink *diagnostic.Sink
	p    *Parser
	set  *position.FileSet
}

func newFixture() *fixture {
	set := position.NewFileSet()
	sink := diagnostic.NewSink(set, nil)
	return &fixture{sink: sink, p: New(sink), set: set}
}

// tokensOf scans a snippet and drops the trailing EOF, the way preparsed
// spans arrive at the parser.
func (f *fixture) tokensOf(src string) []token.Token {
	id := f.set.Add("test.lily", src)
	toks := scanner.New(src, id).ScanAll()
	return toks[:len(toks)-1]
}

func (f *fixture) expr(t *testing.T, src string) ast.Expr {
	t.Helper()
	return f.p.ParseExprTokens(f.tokensOf(src))
}

func parseDecls(t *testing.T, src string) ([]ast.Decl, *diagnostic.Sink) {
	t.Helper()
	set := position.NewFileSet()
	id := set.Add("test.lily", src)
	sink := diagnostic.NewSink(set, nil)
	expander := macro.NewExpander(macro.NewTables(), sink)
	toks := scanner.New(src, id).ScanAll()
	pre := preparser.New(toks, sink, expander).Preparse()
	return New(sink).ParseDecls(pre), sink
}

func TestParseFunDecl(t *testing.T) {
	decls, sink := parseDecls(t, "fun add(a Int32, b Int32) Int32 = a + b;")
	require.Zero(t, sink.CountError())
	require.Len(t, decls, 1)

	fun, ok := decls[0].(*ast.FunDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fun.Name)
	require.Len(t, fun.Params, 2)
	assert.Equal(t, "a", fun.Params[0].Name)
	assert.Equal(t, "Int32", fun.Params[0].Dt.String())
	assert.Equal(t, "Int32", fun.Return.String())

	require.Len(t, fun.Body, 1)
	ret, ok := fun.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.OpString())
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 + 3", "((1 + 2) + 3)"},
		{"a or b and c", "(a or (b and c))"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
		{"a & b | c ^ d", "((a & b) | (c ^ d))"},
		{"-a + b", "((-a) + b)"},
		{"not a and b", "((not a) and b)"},
	}
	f := newFixture()
	for _, tt := range tests {
		e := f.expr(t, tt.src)
		require.NotNil(t, e, tt.src)
		assert.Equal(t, tt.want, e.String(), tt.src)
	}
	assert.Zero(t, f.sink.CountError())
}

// Reparsing a printed binary tree preserves its inorder traversal.
func TestPrecedenceStableUnderReprint(t *testing.T) {
	f := newFixture()
	first := f.expr(t, "1 + 2 * 3 - 4 / 5")
	require.NotNil(t, first)
	second := f.expr(t, first.String())
	require.NotNil(t, second)
	if diff := cmp.Diff(first.String(), second.String()); diff != "" {
		t.Fatalf("reprint mismatch (-first +second):\n%s", diff)
	}
}

func TestCallsAndAccess(t *testing.T) {
	f := newFixture()

	e := f.expr(t, "f(1, x := 2)")
	call, ok := e.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.CallFun, call.Kind)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "", call.Args[0].Name)
	assert.Equal(t, "x", call.Args[1].Name)

	e = f.expr(t, "a.b.c")
	acc, ok := e.(*ast.Access)
	require.True(t, ok)
	assert.Equal(t, ast.AccessPath, acc.Kind)
	assert.Len(t, acc.Segments, 2)

	e = f.expr(t, "a[i]")
	acc, ok = e.(*ast.Access)
	require.True(t, ok)
	assert.Equal(t, ast.AccessHook, acc.Kind)

	e = f.expr(t, "Global.x")
	acc, ok = e.(*ast.Access)
	require.True(t, ok)
	assert.Equal(t, ast.AccessGlobal, acc.Kind)

	e = f.expr(t, "P{x := 1, y := 2}")
	call, ok = e.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.CallRecord, call.Kind)
	assert.Len(t, call.Fields, 2)

	e = f.expr(t, "Some:5")
	call, ok = e.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.CallVariant, call.Kind)
	require.NotNil(t, call.Value)

	e = f.expr(t, "None:$")
	call, ok = e.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.CallVariant, call.Kind)
	assert.Nil(t, call.Value)

	e = f.expr(t, "id::[Int32](1)")
	call, ok = e.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Generics, 1)
	assert.Equal(t, "Int32", call.Generics[0].String())

	assert.Zero(t, f.sink.CountError())
}

func TestIfAndMatchExpressions(t *testing.T) {
	f := newFixture()

	e := f.expr(t, "if 1 == 1 do 2 else 3")
	ife, ok := e.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ife.Else)

	e = f.expr(t, `match x { 1 => "a", 2 => "b", _ => "c" }`)
	m, ok := e.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	_, isWild := m.Arms[2].Pattern.(*ast.PatWildcard)
	assert.True(t, isWild)

	assert.Zero(t, f.sink.CountError())
}

func TestLiterals(t *testing.T) {
	f := newFixture()

	e := f.expr(t, "42")
	lit := e.(*ast.Literal)
	assert.Equal(t, ast.LitInt32, lit.Kind)
	assert.EqualValues(t, 42, lit.Int)

	// Values beyond Int32 fall back to Int64.
	e = f.expr(t, "3000000000")
	lit = e.(*ast.Literal)
	assert.Equal(t, ast.LitInt64, lit.Kind)

	e = f.expr(t, "3.5")
	lit = e.(*ast.Literal)
	assert.Equal(t, ast.LitFloat64, lit.Kind)

	e = f.expr(t, "10u8")
	lit = e.(*ast.Literal)
	assert.Equal(t, ast.LitSuffixed, lit.Kind)
	assert.Equal(t, token.SuffixU8, lit.Suffix)

	assert.Zero(t, f.sink.CountError())
}

func TestLiteralOutOfRange(t *testing.T) {
	f := newFixture()
	e := f.expr(t, "9999999999999999999999")
	assert.Nil(t, e)
	require.Equal(t, 1, f.sink.CountError())
	assert.Equal(t, diagnostic.ParseLiteralOutOfRange, f.sink.Records()[0].Code)
}

func TestSuffixedLiteralOutOfRange(t *testing.T) {
	f := newFixture()
	e := f.expr(t, "300u8")
	assert.Nil(t, e)
	require.Equal(t, 1, f.sink.CountError())
	assert.Equal(t, diagnostic.ParseSuffixOutOfRange, f.sink.Records()[0].Code)
}

func TestExpectedOnlyOneExpression(t *testing.T) {
	f := newFixture()
	f.expr(t, "1 2")
	require.GreaterOrEqual(t, f.sink.CountError(), 1)
	assert.Equal(t, diagnostic.ParseExpectedOnlyOne, f.sink.Records()[0].Code)
}

func TestDataTypes(t *testing.T) {
	f := newFixture()
	tests := []struct {
		src  string
		want string
	}{
		{"Int32", "Int32"},
		{"[4]Int32", "[4]Int32"},
		{"[_]Int32", "[_]Int32"},
		{"[*]Int32", "[*]Int32"},
		{"[?]Int32", "[?]Int32"},
		{"(Int32, Str)", "(Int32, Str)"},
		{"{Int32}", "{Int32}"},
		{"fun(Int32) Str", "fun(Int32) Str"},
		{"?Int32", "?Int32"},
		{"*Int32", "*Int32"},
		{"mut Int32", "mut Int32"},
		{"ref Int32", "ref Int32"},
		{"trace Int32", "trace Int32"},
		{"!Int32", "!Int32"},
		{"<E>!Int32", "<E>!Int32"},
		{"Pair[Int32, Str]", "Pair[Int32, Str]"},
		{"std.List[Int32]", "std.List[Int32]"},
		{"Self", "Self"},
	}
	for _, tt := range tests {
		dt := f.p.ParseDataTypeTokens(f.tokensOf(tt.src))
		require.NotNil(t, dt, tt.src)
		assert.Equal(t, tt.want, dt.String(), tt.src)
	}
	assert.Zero(t, f.sink.CountError())
}

func TestPatterns(t *testing.T) {
	f := newFixture()
	tests := []struct {
		src  string
		want string
	}{
		{"_", "_"},
		{"x", "x"},
		{"1", "1"},
		{"1..5", "1..5"},
		{"h -> t", "h -> t"},
		{"l <- last", "l <- last"},
		{"(a, b)", "(a, b)"},
		{"[1, 2]", "[1, 2]"},
		{"{1, 2}", "{1, 2}"},
		{"P{x := 1, ..}", "P{x := 1, ..}"},
		{"Some:v", "Some:v"},
		{"None:$", "None:$"},
		{"x as y", "x as y"},
		{"error NotFound", "error NotFound"},
	}
	for _, tt := range tests {
		pat := f.p.ParsePatternTokens(f.tokensOf(tt.src))
		require.NotNil(t, pat, tt.src)
		assert.Equal(t, tt.want, pat.String(), tt.src)
	}
	assert.Zero(t, f.sink.CountError())
}

func TestLambda(t *testing.T) {
	f := newFixture()
	e := f.expr(t, "(fun (x Int32) Int32 = x + 1)")
	lam, ok := e.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Params, 1)
	assert.Equal(t, "x", lam.Params[0].Name)
	require.Len(t, lam.Body, 1)

	e = f.expr(t, "(fun (x Int32) Int32 = x + 1)(41)")
	call, ok := e.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.CallLambda, call.Kind)
	require.NotNil(t, call.Lambda)
	assert.Len(t, call.Args, 1)

	assert.Zero(t, f.sink.CountError())
}

func TestSemicolonOnlyBodyParsesToNothing(t *testing.T) {
	decls, sink := parseDecls(t, "fun f() Unit { ; }")
	require.Zero(t, sink.CountError())
	require.Len(t, decls, 1)
	assert.Empty(t, decls[0].(*ast.FunDecl).Body)
}
