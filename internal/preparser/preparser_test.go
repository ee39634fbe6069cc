package preparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/macro"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scanner"
)

func preparse(t *testing.T, src string) (*Result, *diagnostic.Sink) {
	t.Helper()
	set := position.NewFileSet()
	id := set.Add("test.lily", src)
	sink := diagnostic.NewSink(set, nil)
	expander := macro.NewExpander(macro.NewTables(), sink)
	toks := scanner.New(src, id).ScanAll()
	return New(toks, sink, expander).Preparse(), sink
}

func TestEmptyFile(t *testing.T) {
	res, sink := preparse(t, "")
	assert.Empty(t, res.Decls)
	assert.Zero(t, sink.CountError())
}

func TestStraySemicolon(t *testing.T) {
	res, sink := preparse(t, ";")
	assert.Empty(t, res.Decls)
	assert.Zero(t, sink.CountError())
}

func TestFunShapes(t *testing.T) {
	res, sink := preparse(t, `
fun add(a Int32, b Int32) Int32 = a + b;
fun main() Unit { val x = 1; }
fun proto() Int32;
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 3)

	add := res.Decls[0]
	assert.Equal(t, DeclFun, add.Kind)
	assert.Equal(t, "add", add.Name.Lit)
	assert.Len(t, add.Params, 5)
	assert.Len(t, add.ReturnDt, 1)
	assert.NotEmpty(t, add.Expr)

	main := res.Decls[1]
	assert.Equal(t, "main", main.Name.Lit)
	require.Len(t, main.Body, 1)
	assert.Equal(t, ItemVariable, main.Body[0].Kind)
	assert.Equal(t, "x", main.Body[0].VarName.Lit)

	proto := res.Decls[2]
	assert.Empty(t, proto.Body)
	assert.Empty(t, proto.Expr)
}

func TestOperatorFun(t *testing.T) {
	res, sink := preparse(t, "fun +(a Str, b Str) Str = a;")
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 1)
	assert.True(t, res.Decls[0].IsOperator)
	assert.Equal(t, "+", res.Decls[0].Name.Lit)
}

func TestTypeShapes(t *testing.T) {
	res, sink := preparse(t, `
type Pair[T, U] = (T, U);
type Color enum { Red, Green, Blue }
type Point record { x Int32, y Int32 }
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 3)

	assert.Equal(t, ObjectAlias, res.Decls[0].ObjectKind)
	assert.NotEmpty(t, res.Decls[0].Generics)

	enum := res.Decls[1]
	assert.Equal(t, ObjectEnum, enum.ObjectKind)
	require.Len(t, enum.Variants, 3)
	assert.Equal(t, "Red", enum.Variants[0].Name.Lit)

	rec := res.Decls[2]
	assert.Equal(t, ObjectRecord, rec.ObjectKind)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, "x", rec.Fields[0].Name.Lit)
}

func TestObjectWithMethods(t *testing.T) {
	res, sink := preparse(t, `
object Point record {
	x Int32;
	y Int32;
	fun norm(self) Int32 = self.x;
}
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 1)
	d := res.Decls[0]
	assert.Equal(t, ObjectRecordObject, d.ObjectKind)
	assert.Len(t, d.Fields, 2)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "norm", d.Items[0].Name.Lit)
}

func TestUseIncludeEdges(t *testing.T) {
	res, sink := preparse(t, `
use std.io;
include "prelude.lily";
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Edges, 2)
	assert.False(t, res.Edges[0].Include)
	assert.True(t, res.Edges[1].Include)
	assert.Equal(t, "prelude.lily", res.Edges[1].File)
}

func TestBodyItems(t *testing.T) {
	res, sink := preparse(t, `
fun f() Unit {
	if a == 1 { val x = 2; } elif a == 2 { } else { }
	while a < 10 { next; }
	for i in xs { break; }
	match a { 1 => { return; }, _ => { } }
	try { } catch e { }
	defer { }
	loop { break; }
}
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 1)
	body := res.Decls[0].Body
	require.Len(t, body, 7)

	ifItem := body[0]
	assert.Equal(t, ItemIf, ifItem.Kind)
	assert.Len(t, ifItem.Elifs, 1)
	assert.True(t, ifItem.HasElse)
	require.Len(t, ifItem.IfBlock, 1)
	assert.Equal(t, ItemVariable, ifItem.IfBlock[0].Kind)

	assert.Equal(t, ItemWhile, body[1].Kind)
	assert.Equal(t, ItemFor, body[2].Kind)

	matchItem := body[3]
	assert.Equal(t, ItemMatch, matchItem.Kind)
	require.Len(t, matchItem.Arms, 2)
	assert.True(t, matchItem.Arms[0].HasBlock)

	tryItem := body[4]
	assert.Equal(t, ItemTry, tryItem.Kind)
	assert.True(t, tryItem.HasCatch)
	assert.Equal(t, "e", tryItem.CatchName.Lit)

	assert.Equal(t, ItemDefer, body[5].Kind)
	assert.Equal(t, ItemLoop, body[6].Kind)
}

func TestIfDoShorthand(t *testing.T) {
	res, sink := preparse(t, "fun f() Unit { if a != b do raise Boom; }")
	require.Zero(t, sink.CountError())
	body := res.Decls[0].Body
	require.Len(t, body, 1)
	require.Len(t, body[0].IfBlock, 1)
	assert.Equal(t, ItemRaise, body[0].IfBlock[0].Kind)
}

func TestUnmatchedBraceRecovers(t *testing.T) {
	_, sink := preparse(t, "fun f() Unit { if a == 1 {")
	assert.Greater(t, sink.CountError(), 0)
}

func TestUnexpectedTopLevelTokenSyncs(t *testing.T) {
	res, sink := preparse(t, "+ fun f() Unit { }")
	assert.Greater(t, sink.CountError(), 0)
	require.Len(t, res.Decls, 1)
	assert.Equal(t, "f", res.Decls[0].Name.Lit)
}

func TestMacroDefinitionCaptured(t *testing.T) {
	set := position.NewFileSet()
	src := "macro twice($e:expr) { $e; $e; }"
	id := set.Add("test.lily", src)
	sink := diagnostic.NewSink(set, nil)
	tables := macro.NewTables()
	expander := macro.NewExpander(tables, sink)
	toks := scanner.New(src, id).ScanAll()
	New(toks, sink, expander).Preparse()

	require.Zero(t, sink.CountError())
	m, found := tables.Private.Get("twice")
	require.True(t, found)
	require.Len(t, m.Params, 1)
	assert.Equal(t, "e", m.Params[0].Name)
	assert.Equal(t, macro.ParamExpr, m.Params[0].Kind)
	assert.NotEmpty(t, m.Body)
}

func TestMacroExpansionProducesDecls(t *testing.T) {
	res, sink := preparse(t, `
macro mkfun($name:id) { fun $name() Int32 = 1; }
mkfun!(one);
`)
	require.Zero(t, sink.CountError())
	require.Len(t, res.Decls, 1)
	assert.Equal(t, DeclFun, res.Decls[0].Kind)
	assert.Equal(t, "one", res.Decls[0].Name.Lit)
}
