package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/scope"
	"github.com/lily-lang/lilyc/internal/token"
)

var suffixPrim = map[token.SuffixKind]checked.PrimKind{
	token.SuffixI8:    checked.I8,
	token.SuffixI16:   checked.I16,
	token.SuffixI32:   checked.I32,
	token.SuffixI64:   checked.I64,
	token.SuffixU8:    checked.U8,
	token.SuffixU16:   checked.U16,
	token.SuffixU32:   checked.U32,
	token.SuffixU64:   checked.U64,
	token.SuffixIsize: checked.Isize,
	token.SuffixUsize: checked.Usize,
	token.SuffixF32:   checked.F32,
	token.SuffixF64:   checked.F64,
}

// checkExpr computes the checked data type of an expression bottom-up. On
// error, the node is tainted with an unknown type and analysis continues.
func (a *Analyzer) checkExpr(sc *scope.Scope, e ast.Expr) checked.Expr {
	switch expr := e.(type) {
	case *ast.Literal:
		return a.checkLiteral(expr)
	case *ast.Identifier:
		return a.checkIdentifier(sc, expr)
	case *ast.SelfExpr:
		resp := sc.Lookup(scope.SymVariable, "self")
		if !resp.Found {
			a.errorf(diagnostic.AnaNameNotFound, expr.Loc, "`self` is not available here")
			return &checked.UnknownExpr{Loc: expr.Loc}
		}
		return &checked.VarRef{Name: "self", Entry: resp.Entry, Access: resp.Access,
			Type: entryType(resp.Entry), Loc: expr.Loc}
	case *ast.Grouping:
		return a.checkExpr(sc, expr.Inner)
	case *ast.Binary:
		return a.checkBinary(sc, expr)
	case *ast.Unary:
		return a.checkUnary(sc, expr)
	case *ast.Tuple:
		out := &checked.TupleExpr{Loc: expr.Loc}
		var elems []checked.Dt
		for _, el := range expr.Elems {
			ce := a.checkExpr(sc, el)
			out.Elems = append(out.Elems, ce)
			elems = append(elems, ce.Dt())
		}
		out.Type = &checked.Tuple{Elems: elems}
		return out
	case *ast.ArrayLit:
		return a.checkArrayLit(sc, expr)
	case *ast.ListLit:
		return a.checkListLit(sc, expr)
	case *ast.If:
		return a.checkIfExpr(sc, expr)
	case *ast.Match:
		return a.checkMatchExpr(sc, expr)
	case *ast.Access:
		return a.checkAccess(sc, expr)
	case *ast.Call:
		return a.checkCall(sc, expr)
	case *ast.TryExpr:
		inner := a.checkExpr(sc, expr.Inner)
		if res, ok := a.resolveCG(inner.Dt()).(*checked.Result); ok {
			return &checked.CastExpr{Value: inner, Type: res.Ok, Loc: expr.Loc}
		}
		if !checked.IsUnknown(inner.Dt()) {
			a.errorf(diagnostic.AnaTypeMismatch, expr.Loc,
				"`try` expects a result type, found `%s`", inner.Dt())
		}
		return &checked.UnknownExpr{Loc: expr.Loc}
	case *ast.Lambda:
		return a.checkLambda(sc, expr)
	}
	return &checked.UnknownExpr{Loc: e.Location()}
}

func (a *Analyzer) checkLiteral(lit *ast.Literal) checked.Expr {
	out := &checked.Literal{
		Kind:  lit.Kind,
		Int:   lit.Int,
		Uint:  lit.Uint,
		Float: lit.Float,
		Str:   lit.Str,
		Bool:  lit.Bool,
		Loc:   lit.Loc,
	}
	switch lit.Kind {
	case ast.LitInt32:
		out.Type = checked.Prim(checked.I32)
	case ast.LitInt64:
		out.Type = checked.Prim(checked.I64)
	case ast.LitFloat64:
		out.Type = checked.Prim(checked.F64)
	case ast.LitSuffixed:
		out.Type = checked.Prim(suffixPrim[lit.Suffix])
	case ast.LitStr:
		out.Type = checked.Prim(checked.Str)
	case ast.LitCStr:
		out.Type = checked.Prim(checked.CStr)
	case ast.LitChar:
		out.Type = checked.Prim(checked.Char)
	case ast.LitByte:
		out.Type = checked.Prim(checked.Byte)
	case ast.LitBytes:
		out.Type = checked.Prim(checked.Bytes)
	case ast.LitBool:
		out.Type = checked.Prim(checked.Bool)
	case ast.LitUnit:
		out.Type = checked.Prim(checked.Unit)
	case ast.LitNil:
		out.Type = &checked.Wrap{Kind: checked.WrapPtr, Elem: a.freshCG()}
	case ast.LitUndef:
		out.Type = checked.Prim(checked.Any)
	case ast.LitNone:
		out.Type = &checked.Wrap{Kind: checked.WrapOptional, Elem: a.freshCG()}
	default:
		out.Type = &checked.Unknown{}
	}
	return out
}

func entryType(e *scope.Entry) checked.Dt {
	switch d := e.Decl.(type) {
	case *checked.Param:
		return d.Type
	case *checked.Variable:
		return d.Type
	case *checked.Constant:
		return d.Type
	case *checked.PatBind:
		return d.Type
	}
	return &checked.Unknown{}
}

func (a *Analyzer) checkIdentifier(sc *scope.Scope, id *ast.Identifier) checked.Expr {
	if resp := sc.Lookup(scope.SymVariable, id.Name); resp.Found {
		out := &checked.VarRef{Name: id.Name, Entry: resp.Entry, Access: resp.Access,
			Type: entryType(resp.Entry), Loc: id.Loc}
		if p, ok := resp.Entry.Decl.(*checked.Param); ok {
			out.IsParam = true
			out.ParamIndex = p.Index
		}
		return out
	}
	if resp := sc.Lookup(scope.SymConstant, id.Name); resp.Found {
		return &checked.VarRef{Name: id.Name, Entry: resp.Entry, Access: resp.Access,
			Type: entryType(resp.Entry), Loc: id.Loc}
	}
	if resp := sc.Lookup(scope.SymFun, id.Name); resp.Found {
		f := resp.Entry.Decl.(*checked.Fun)
		params := make([]checked.Dt, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Type
		}
		return &checked.VarRef{Name: id.Name, Entry: resp.Entry, Access: resp.Access,
			Type: &checked.Lambda{Params: params, Return: f.Return}, Loc: id.Loc}
	}
	a.errorf(diagnostic.AnaNameNotFound, id.Loc, "the name `%s` is not found", id.Name)
	return &checked.UnknownExpr{Loc: id.Loc}
}

func (a *Analyzer) checkArrayLit(sc *scope.Scope, lit *ast.ArrayLit) checked.Expr {
	out := &checked.ArrayExpr{Loc: lit.Loc}
	elem := checked.Dt(a.freshCG())
	for _, el := range lit.Elems {
		ce := a.checkExpr(sc, el)
		out.Elems = append(out.Elems, ce)
		if !a.unify(elem, ce.Dt()) {
			a.typeMismatch(el.Location(), a.Resolve(elem), ce.Dt())
		}
	}
	out.Type = &checked.Array{Kind: checked.ArraySized, Size: int64(len(lit.Elems)), Elem: a.Resolve(elem)}
	return out
}

func (a *Analyzer) checkListLit(sc *scope.Scope, lit *ast.ListLit) checked.Expr {
	out := &checked.ListExpr{Loc: lit.Loc}
	elem := checked.Dt(a.freshCG())
	for _, el := range lit.Elems {
		ce := a.checkExpr(sc, el)
		out.Elems = append(out.Elems, ce)
		if !a.unify(elem, ce.Dt()) {
			a.typeMismatch(el.Location(), a.Resolve(elem), ce.Dt())
		}
	}
	out.Type = &checked.List{Elem: a.Resolve(elem)}
	return out
}

func (a *Analyzer) checkIfExpr(sc *scope.Scope, e *ast.If) checked.Expr {
	cond := a.checkExpr(sc, e.Cond)
	if !a.unify(cond.Dt(), checked.Prim(checked.Bool)) {
		a.typeMismatch(e.Cond.Location(), checked.Prim(checked.Bool), cond.Dt())
	}
	then := a.checkExpr(sc, e.Then)
	out := &checked.If{Cond: cond, Then: then, Loc: e.Loc}
	result := then.Dt()
	for _, arm := range e.Elifs {
		c := a.checkExpr(sc, arm.Cond)
		if !a.unify(c.Dt(), checked.Prim(checked.Bool)) {
			a.typeMismatch(arm.Cond.Location(), checked.Prim(checked.Bool), c.Dt())
		}
		v := a.checkExpr(sc, arm.Then)
		if !a.unify(result, v.Dt()) {
			a.typeMismatch(arm.Then.Location(), result, v.Dt())
		}
		out.Elifs = append(out.Elifs, checked.IfArm{Cond: c, Then: v})
	}
	if e.Else != nil {
		v := a.checkExpr(sc, e.Else)
		if !a.unify(result, v.Dt()) {
			a.typeMismatch(e.Else.Location(), result, v.Dt())
		}
		out.Else = v
	} else if !a.unify(result, checked.Prim(checked.Unit)) {
		a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
			"an `if` expression without `else` has type `Unit`, found `%s`", result)
	}
	out.Type = a.Resolve(result)
	return out
}

func (a *Analyzer) checkMatchExpr(sc *scope.Scope, e *ast.Match) checked.Expr {
	scrut := a.checkExpr(sc, e.Scrutinee)
	out := &checked.Match{Scrutinee: scrut, Loc: e.Loc}
	result := checked.Dt(a.freshCG())
	for _, arm := range e.Arms {
		armScope := a.tree.NewScope(sc, scope.KindMatchArm)
		pat := a.checkPattern(armScope, arm.Pattern, scrut.Dt())
		var guard checked.Expr
		if arm.Guard != nil {
			guard = a.checkExpr(armScope, arm.Guard)
			if !a.unify(guard.Dt(), checked.Prim(checked.Bool)) {
				a.typeMismatch(arm.Guard.Location(), checked.Prim(checked.Bool), guard.Dt())
			}
		}
		body := a.checkExpr(armScope, arm.Body)
		if !a.unify(result, body.Dt()) {
			a.typeMismatch(arm.Body.Location(), a.Resolve(result), body.Dt())
		}
		out.Arms = append(out.Arms, checked.MatchArm{Pattern: pat, Guard: guard, Body: body, Scope: armScope})
	}
	out.Exhaustive = a.checkExhaustive(e.Loc, scrut.Dt(), exprArmPatterns(out.Arms))
	out.Type = a.Resolve(result)
	return out
}

func exprArmPatterns(arms []checked.MatchArm) []armInfo {
	out := make([]armInfo, len(arms))
	for i, arm := range arms {
		out[i] = armInfo{pattern: arm.Pattern, guarded: arm.Guard != nil}
	}
	return out
}

func (a *Analyzer) checkLambda(sc *scope.Scope, e *ast.Lambda) checked.Expr {
	f := &checked.Fun{Name: "<lambda>", GlobalName: "<lambda>", Loc: e.Loc}
	f.Scope = a.tree.NewScope(sc, scope.KindLambda)
	for i, p := range e.Params {
		param := checked.Param{Name: p.Name, Index: i, Loc: p.Loc}
		if p.Dt != nil {
			param.Type = a.resolveDataType(sc, p.Dt)
		} else {
			param.Type = a.freshCG()
		}
		f.Params = append(f.Params, param)
	}
	for i := range f.Params {
		p := &f.Params[i]
		entry, err := f.Scope.Add(scope.SymVariable, p.Name, p)
		if err != nil {
			a.sink.Error(diagnostic.AnaDuplicateName, p.Loc, err.Error())
			continue
		}
		p.Entry = entry
	}
	if e.Return != nil {
		f.Return = a.resolveDataType(sc, e.Return)
	} else {
		f.Return = checked.Prim(checked.Unit)
	}
	f.Body = a.checkStmts(f.Scope, e.Body, f)

	params := make([]checked.Dt, len(f.Params))
	for i, p := range f.Params {
		params[i] = a.Resolve(p.Type)
	}
	return &checked.LambdaExpr{Fun: f, Type: &checked.Lambda{Params: params, Return: f.Return}, Loc: e.Loc}
}
