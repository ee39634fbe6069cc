package pipeline_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/config"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/mir"
	"github.com/lily-lang/lilyc/internal/pipeline"
)

func compile(t *testing.T, src string) *pipeline.Package {
	t.Helper()
	return pipeline.CompileSource("test.lily", src, config.Default())
}

func compileOK(t *testing.T, src string) *pipeline.Package {
	t.Helper()
	pkg := compile(t, src)
	if pkg.Sink.CountError() > 0 {
		for _, r := range pkg.Sink.Records() {
			t.Logf("%s[%s]: %s (%d:%d)", r.Severity, r.Code, r.Msg, r.Loc.StartLine, r.Loc.StartCol)
		}
		t.Fatalf("expected no errors, got %d", pkg.Sink.CountError())
	}
	return pkg
}

func hasCode(pkg *pipeline.Package, code string) bool {
	for _, r := range pkg.Sink.Records() {
		if r.Code == code {
			return true
		}
	}
	return false
}

// checkCFG asserts every block ends with exactly one terminator and every
// successor belongs to the same function.
func checkCFG(t *testing.T, f *mir.Fun) {
	t.Helper()
	ids := map[int]bool{}
	for _, blk := range f.Blocks {
		ids[blk.ID] = true
	}
	for _, blk := range f.Blocks {
		require.NotEmpty(t, blk.Insts, "block %s has no terminator", blk.Name)
		for i, inst := range blk.Insts {
			if i == len(blk.Insts)-1 {
				assert.True(t, inst.IsTerminator(), "block %s does not end with a terminator", blk.Name)
			} else {
				assert.False(t, inst.IsTerminator(), "block %s has a terminator mid-block", blk.Name)
			}
		}
	}
}

func TestE1SimpleFunction(t *testing.T) {
	pkg := compileOK(t, "fun add(a Int32, b Int32) Int32 = a + b;")
	require.Len(t, pkg.Decls, 1)

	fun := pkg.Decls[0].(*checked.Fun)
	assert.Equal(t, "add", fun.Name)
	require.Len(t, fun.Params, 2)
	assert.Equal(t, "Int32", fun.Params[0].Type.String())
	assert.Equal(t, "Int32", fun.Return.String())

	require.NotNil(t, pkg.MIR)
	mf := pkg.MIR.FunByName("add")
	require.NotNil(t, mf)
	assert.Equal(t, "i32", mf.Return.String())
	require.Len(t, mf.Blocks, 1)

	insts := mf.Blocks[0].Insts
	require.Len(t, insts, 2)
	bin := insts[0].(*mir.BinOp)
	assert.Equal(t, "add", bin.Op)
	assert.Equal(t, "%0", bin.L.String())
	assert.Equal(t, "%1", bin.R.String())
	ret := insts[1].(*mir.Ret)
	require.NotNil(t, ret.Val)
	assert.Equal(t, bin.Dest.String(), ret.Val.String())
	checkCFG(t, mf)
}

func TestE2IfExpression(t *testing.T) {
	pkg := compileOK(t, "val x = if 1 == 1 do 2 else 3;")
	require.Len(t, pkg.Decls, 1)
	c := pkg.Decls[0].(*checked.Constant)
	assert.Equal(t, "Int32", c.Type.String())

	// The runtime initializer lowers the branchy expression.
	init := pkg.MIR.FunByName("x.init")
	require.NotNil(t, init)
	text := pkg.MIR.Print()
	assert.Contains(t, text, "jmpcond")
	assert.Contains(t, text, "store")
	checkCFG(t, init)
}

func TestE2IfExpressionInFunction(t *testing.T) {
	pkg := compileOK(t, "fun main() Int32 { val x = if 1 == 1 do 2 else 3; return x; }")
	mf := pkg.MIR.FunByName("main")
	require.NotNil(t, mf)
	checkCFG(t, mf)

	var sawCond, sawAlloca bool
	for _, blk := range mf.Blocks {
		for _, inst := range blk.Insts {
			switch i := inst.(type) {
			case *mir.JmpCond:
				sawCond = true
			case *mir.Alloca:
				if i.Dest.Name == "x" {
					sawAlloca = true
				}
			}
		}
	}
	assert.True(t, sawCond, "expected a jmpcond")
	assert.True(t, sawAlloca, "expected x's alloca")
}

func TestE3MacroExpansion(t *testing.T) {
	pkg := compileOK(t, `
error AssertFailed;
macro assert_eq($a:expr, $b:expr) { if $a != $b do raise AssertFailed; }
fun main() Unit = assert_eq!(1, 1);
`)
	mf := pkg.MIR.FunByName("main")
	require.NotNil(t, mf)
	checkCFG(t, mf)
	assert.Contains(t, pkg.MIR.Print(), "jmpcond")
}

func TestE4GenericAlias(t *testing.T) {
	pkg := compileOK(t, `
type Pair[T, U] = (T, U);
val p Pair[Int32, Str] = (1, "x");
`)
	require.Len(t, pkg.Decls, 2)
	c := pkg.Decls[1].(*checked.Constant)
	assert.Equal(t, "(Int32, Str)", c.Type.String())
}

func TestE5LiteralOutOfRange(t *testing.T) {
	pkg := compile(t, "fun main() Int32 = 9999999999999999999999;")
	assert.Greater(t, pkg.Sink.CountError(), 0)
	assert.True(t, hasCode(pkg, diagnostic.ParseLiteralOutOfRange))
	assert.Nil(t, pkg.MIR)
}

func TestE6MatchSwitch(t *testing.T) {
	pkg := compileOK(t, `
fun classify(x Int32) Str {
	match x { 1 => { return "a"; }, 2 => { return "b"; }, _ => { return "c"; } }
}
`)
	mf := pkg.MIR.FunByName("classify")
	require.NotNil(t, mf)
	checkCFG(t, mf)

	var sw *mir.Switch
	for _, blk := range mf.Blocks {
		for _, inst := range blk.Insts {
			if s, ok := inst.(*mir.Switch); ok {
				sw = s
			}
		}
	}
	require.NotNil(t, sw, "expected a switch terminator")
	require.Len(t, sw.Cases, 2)
	assert.EqualValues(t, 1, sw.Cases[0].Lit)
	assert.EqualValues(t, 2, sw.Cases[1].Lit)
	// The wildcard arm is the default.
	assert.NotNil(t, sw.Default)
}

func TestEmptyFileCompiles(t *testing.T) {
	pkg := compileOK(t, "")
	assert.Empty(t, pkg.Decls)
	assert.NotNil(t, pkg.MIR)
}

func TestOperatorOverloadResolves(t *testing.T) {
	pkg := compileOK(t, `
fun +(a Str, b Str) Str = a;
val s = "x" + "y";
`)
	c := pkg.Decls[len(pkg.Decls)-1].(*checked.Constant)
	assert.Equal(t, "Str", c.Type.String())
	require.NotNil(t, pkg.Operators())
	assert.Equal(t, 1, pkg.Operators().Len())
}

func TestOperatorUnresolved(t *testing.T) {
	pkg := compile(t, `val s = "x" + 1;`)
	assert.True(t, hasCode(pkg, diagnostic.AnaOperatorUnresolved))
}

func TestOperatorAmbiguous(t *testing.T) {
	pkg := compile(t, `
fun +(a Str, b Str) Str = a;
fun +(a Str, b Str) Int32 = 1;
val s = "x" + "y";
`)
	assert.True(t, hasCode(pkg, diagnostic.AnaOperatorAmbiguous))
}

func TestOperatorOverloadFiltersByOperands(t *testing.T) {
	pkg := compileOK(t, `
fun +(a Str, b Str) Str = a;
fun +(a Str, b Bool) Str = a;
val s = "x" + "y";
`)
	c := pkg.Decls[len(pkg.Decls)-1].(*checked.Constant)
	assert.Equal(t, "Str", c.Type.String())
}

func TestGenericInstantiation(t *testing.T) {
	pkg := compileOK(t, `
fun id[T](x T) T = x;
val a = id::[Int32](1);
val b = id(2);
`)
	a := pkg.Decls[1].(*checked.Constant)
	b := pkg.Decls[2].(*checked.Constant)
	assert.Equal(t, "Int32", a.Type.String())
	assert.Equal(t, "Int32", b.Type.String())
}

func TestSignatureMemoization(t *testing.T) {
	pkg := compileOK(t, `
fun id[T](x T) T = x;
val a = id::[Int32](1);
val b = id::[Int32](2);
`)
	require.NotNil(t, pkg.Analyzer)
	assert.Equal(t, 1, pkg.Analyzer.Signatures().Len())
}

func TestGenericArityMismatch(t *testing.T) {
	pkg := compile(t, `
fun id[T](x T) T = x;
val a = id::[Int32, Str](1);
`)
	assert.True(t, hasCode(pkg, diagnostic.AnaGenericArity))
}

func TestRecordConstructionAndFieldAccess(t *testing.T) {
	pkg := compileOK(t, `
type Point record { x Int32, y Int32 }
fun f() Int32 { val p = Point{x := 1, y := 2}; return p.x; }
`)
	mf := pkg.MIR.FunByName("f")
	require.NotNil(t, mf)
	checkCFG(t, mf)
	assert.Contains(t, pkg.MIR.Print(), "struct @Point { i32, i32 }")
}

func TestMissingRecordField(t *testing.T) {
	pkg := compile(t, `
type Point record { x Int32, y Int32 }
val p = Point{x := 1};
`)
	assert.True(t, hasCode(pkg, diagnostic.AnaTypeMismatch))
}

func TestEnumVariantsAndMatch(t *testing.T) {
	pkg := compileOK(t, `
type Opt enum { None, Some Int32 }
fun get(o Opt) Int32 {
	match o { Some:v => { return v; }, None:$ => { return 0; } }
}
`)
	mf := pkg.MIR.FunByName("get")
	require.NotNil(t, mf)
	checkCFG(t, mf)
	assert.Zero(t, pkg.Sink.CountWarning())
}

func TestNonExhaustiveMatchWarns(t *testing.T) {
	pkg := compileOK(t, `
type Color enum { Red, Green, Blue }
fun f(c Color) Unit { match c { Red:$ => { } } }
`)
	assert.True(t, hasCode(pkg, diagnostic.WarnNonExhaustiveMatch))
}

func TestUnreachableArmWarns(t *testing.T) {
	pkg := compileOK(t, `
fun f(x Int32) Unit { match x { _ => { }, 1 => { } } }
`)
	assert.True(t, hasCode(pkg, diagnostic.WarnUnreachableArm))
}

func TestWarningSuppression(t *testing.T) {
	cfg := config.Default()
	cfg.WarningDisables = []string{diagnostic.WarnNonExhaustiveMatch}
	pkg := pipeline.CompileSource("test.lily", `
type Color enum { Red, Green, Blue }
fun f(c Color) Unit { match c { Red:$ => { } } }
`, cfg)
	assert.Zero(t, pkg.Sink.CountWarning())
}

func TestNameNotFound(t *testing.T) {
	pkg := compile(t, "val x = y;")
	assert.True(t, hasCode(pkg, diagnostic.AnaNameNotFound))
}

func TestVariableNotMutable(t *testing.T) {
	pkg := compile(t, "fun f() Unit { val x = 1; x = 2; }")
	assert.True(t, hasCode(pkg, diagnostic.AnaVariableNotMutable))

	pkg = compileOK(t, "fun f() Unit { mut x = 1; x = 2; }")
	assert.NotNil(t, pkg.MIR)
}

func TestTypeMismatch(t *testing.T) {
	pkg := compile(t, `val x Int32 = "s";`)
	assert.True(t, hasCode(pkg, diagnostic.AnaTypeMismatch))
}

func TestWhileLoopCFG(t *testing.T) {
	pkg := compileOK(t, `
fun count() Int32 {
	mut i = 0;
	while i < 10 { i = i + 1; }
	return i;
}
`)
	mf := pkg.MIR.FunByName("count")
	require.NotNil(t, mf)
	checkCFG(t, mf)
	assert.GreaterOrEqual(t, len(mf.Blocks), 3)
}

func TestForRangeCFG(t *testing.T) {
	pkg := compileOK(t, `
fun sum() Int32 {
	mut total = 0;
	for i in 0..10 { total = total + 1; }
	return total;
}
`)
	mf := pkg.MIR.FunByName("sum")
	require.NotNil(t, mf)
	checkCFG(t, mf)
}

func TestModuleResolution(t *testing.T) {
	pkg := compileOK(t, `
module math {
	pub fun double(x Int32) Int32 = x + x;
}
fun main() Int32 = math.double(21);
`)
	mf := pkg.MIR.FunByName("math.double")
	require.NotNil(t, mf)
	assert.Contains(t, pkg.MIR.Print(), "call @math.double")
}

// Swapping two same-level declarations yields identical checked types.
func TestNameResolutionOrderIndependent(t *testing.T) {
	a := compileOK(t, `
fun f() Int32 = g();
fun g() Int32 = 1;
`)
	b := compileOK(t, `
fun g() Int32 = 1;
fun f() Int32 = g();
`)
	fa := findFun(a.Decls, "f")
	fb := findFun(b.Decls, "f")
	require.NotNil(t, fa)
	require.NotNil(t, fb)
	assert.True(t, fa.Return.Equals(fb.Return))
}

func findFun(decls []checked.Decl, name string) *checked.Fun {
	for _, d := range decls {
		if f, ok := d.(*checked.Fun); ok && f.Name == name {
			return f
		}
	}
	return nil
}

// Reparsing a pretty-printed expression preserves its checked type.
func TestPrintReparsePreservesType(t *testing.T) {
	a := compileOK(t, "val v = 1 + 2 * 3;")
	b := compileOK(t, "val v = ((1 + (2 * 3)));")
	ca := a.Decls[0].(*checked.Constant)
	cb := b.Decls[0].(*checked.Constant)
	assert.True(t, ca.Type.Equals(cb.Type))
}

func TestTryCatchLowering(t *testing.T) {
	pkg := compileOK(t, `
error Boom;
fun f() Unit {
	try { raise Boom; } catch e { }
}
`)
	mf := pkg.MIR.FunByName("f")
	require.NotNil(t, mf)
	checkCFG(t, mf)
	assert.Contains(t, pkg.MIR.Print(), "try label")
}

func TestDeferRunsBeforeReturn(t *testing.T) {
	pkg := compileOK(t, `
fun f() Int32 {
	mut x = 1;
	defer { x = 0; }
	return x;
}
`)
	mf := pkg.MIR.FunByName("f")
	require.NotNil(t, mf)
	checkCFG(t, mf)

	// The deferred store precedes the ret.
	insts := mf.Blocks[0].Insts
	var lastStore, retIdx = -1, -1
	for i, inst := range insts {
		switch inst.(type) {
		case *mir.Store:
			lastStore = i
		case *mir.Ret:
			retIdx = i
		}
	}
	require.GreaterOrEqual(t, retIdx, 0)
	assert.Greater(t, retIdx, lastStore)
	assert.Greater(t, lastStore, 0)
}

func TestMultiFilePackageSharesMacros(t *testing.T) {
	pkg := pipeline.NewPackage("main", config.Default())
	pkg.AddFile("a.lily", "pub macro two() { fun two() Int32 = 2; }")
	pkg.AddFile("b.lily", "two!();")
	ok := pkg.Compile()
	require.True(t, ok, "errors: %d", pkg.Sink.CountError())
	require.NotNil(t, pkg.MIR.FunByName("two"))
}

func TestDiagnosticRenderFormat(t *testing.T) {
	pkg := compile(t, "val x = y;")
	require.Greater(t, pkg.Sink.CountError(), 0)

	var b strings.Builder
	diagnostic.RenderAll(&b, pkg.Sink)
	out := b.String()
	assert.Contains(t, out, "test.lily:1:9: ")
	assert.Contains(t, out, "[ANA001]: ")
	assert.Contains(t, out, "val x = y;")
	assert.Contains(t, out, "^")
}
