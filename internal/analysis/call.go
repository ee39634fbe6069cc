package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

func (a *Analyzer) checkCall(sc *scope.Scope, e *ast.Call) checked.Expr {
	switch e.Kind {
	case ast.CallFun:
		return a.checkFunCall(sc, e)
	case ast.CallRecord:
		return a.checkRecordCall(sc, e)
	case ast.CallVariant:
		return a.checkVariantCall(sc, e)
	case ast.CallLambda:
		return a.checkLambdaCall(sc, e)
	case ast.CallSys, ast.CallBuiltin:
		for _, arg := range e.Args {
			a.checkExpr(sc, arg.Value)
		}
		// Sys and builtin call results are opaque to the checker.
		return &checked.CastExpr{Value: &checked.UnknownExpr{Loc: e.Loc},
			Type: checked.Prim(checked.Any), Loc: e.Loc}
	}
	return &checked.UnknownExpr{Loc: e.Loc}
}

// lookupFun resolves a call head to a function declaration, walking module
// paths when the callee is dotted.
func (a *Analyzer) lookupFun(sc *scope.Scope, callee ast.Expr) (*checked.Fun, bool) {
	switch c := callee.(type) {
	case *ast.Identifier:
		if resp := sc.Lookup(scope.SymFun, c.Name); resp.Found {
			return resp.Entry.Decl.(*checked.Fun), true
		}
	case *ast.Access:
		target, last, ok := a.walkModulePath(sc, c)
		if !ok {
			return nil, false
		}
		if resp := target.Lookup(scope.SymFun, last); resp.Found {
			return resp.Entry.Decl.(*checked.Fun), true
		}
	}
	return nil, false
}

// walkModulePath descends an access path's module prefix and returns the
// final scope plus the last segment name.
func (a *Analyzer) walkModulePath(sc *scope.Scope, acc *ast.Access) (*scope.Scope, string, bool) {
	head, ok := acc.Base.(*ast.Identifier)
	if !ok {
		return nil, "", false
	}
	target := sc
	if acc.Kind == ast.AccessGlobal || head.Name == "Global" {
		target = a.tree.Root
	} else {
		resp := target.Lookup(scope.SymModule, head.Name)
		if !resp.Found {
			return nil, "", false
		}
		target = resp.Entry.Decl.(*checked.Module).Scope
	}
	for i := 0; i < len(acc.Segments)-1; i++ {
		seg, ok := acc.Segments[i].(*ast.Identifier)
		if !ok {
			return nil, "", false
		}
		entry, found := target.LookupLocal(scope.SymModule, seg.Name)
		if !found {
			return nil, "", false
		}
		target = entry.Decl.(*checked.Module).Scope
	}
	if len(acc.Segments) == 0 {
		return nil, "", false
	}
	switch last := acc.Segments[len(acc.Segments)-1].(type) {
	case *ast.Identifier:
		return target, last.Name, true
	case *ast.Call:
		if id, ok := last.Callee.(*ast.Identifier); ok {
			return target, id.Name, true
		}
	}
	return nil, "", false
}

func (a *Analyzer) checkFunCall(sc *scope.Scope, e *ast.Call) checked.Expr {
	fun, found := a.lookupFun(sc, e.Callee)
	if !found {
		// The callee may be a lambda-typed variable.
		callee := a.checkExpr(sc, e.Callee)
		if lam, ok := a.resolveCG(callee.Dt()).(*checked.Lambda); ok {
			return a.checkIndirectCall(sc, e, callee, lam)
		}
		if !checked.IsUnknown(callee.Dt()) {
			a.errorf(diagnostic.AnaNameNotFound, e.Loc, "the function `%s` is not found", e.Callee)
		}
		return &checked.UnknownExpr{Loc: e.Loc}
	}

	// Build the generic substitution: explicit ::[T…] args, otherwise a
	// fresh compiler generic per generic param.
	subst := map[string]checked.Dt{}
	if len(e.Generics) > 0 {
		if len(e.Generics) != len(fun.Generics) {
			a.errorf(diagnostic.AnaGenericArity, e.Loc,
				"the function `%s` expects %d generic params, got %d", fun.Name, len(fun.Generics), len(e.Generics))
			return &checked.UnknownExpr{Loc: e.Loc}
		}
		for i, g := range fun.Generics {
			subst[g] = a.resolveDataType(sc, e.Generics[i])
		}
	} else {
		for _, g := range fun.Generics {
			subst[g] = a.freshCG()
		}
	}

	params := make([]checked.Dt, len(fun.Params))
	for i, p := range fun.Params {
		params[i] = p.Type
	}
	sig := a.sigs.Instantiate(fun.GlobalName, fun.Generics, params, fun.Return, subst)

	args, ok := a.orderArgs(e, fun)
	if !ok {
		return &checked.UnknownExpr{Loc: e.Loc}
	}

	out := &checked.Call{Fun: fun, Sig: sig, Loc: e.Loc}
	for i, arg := range args {
		var ce checked.Expr
		if arg == nil {
			ce = fun.Params[i].Default
		} else {
			ce = a.checkExpr(sc, arg)
		}
		if ce == nil {
			a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
				"missing argument for parameter `%s` of `%s`", fun.Params[i].Name, fun.Name)
			return &checked.UnknownExpr{Loc: e.Loc}
		}
		if !a.unify(sig.Params[i], ce.Dt()) {
			a.typeMismatch(ce.Location(), a.Resolve(sig.Params[i]), ce.Dt())
		}
		out.Args = append(out.Args, ce)
	}
	out.Type = a.Resolve(sig.Return)
	return out
}

// orderArgs maps call arguments onto parameter slots, resolving
// default-named arguments by name. A nil slot falls back to the parameter
// default.
func (a *Analyzer) orderArgs(e *ast.Call, fun *checked.Fun) ([]ast.Expr, bool) {
	out := make([]ast.Expr, len(fun.Params))
	pos := 0
	for _, arg := range e.Args {
		if arg.Name == "" {
			if pos >= len(out) {
				a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
					"too many arguments in call of `%s`: expected %d", fun.Name, len(fun.Params))
				return nil, false
			}
			out[pos] = arg.Value
			pos++
			continue
		}
		idx := -1
		for i, p := range fun.Params {
			if p.Name == arg.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			a.errorf(diagnostic.AnaNameNotFound, arg.Loc,
				"the function `%s` has no parameter `%s`", fun.Name, arg.Name)
			return nil, false
		}
		out[idx] = arg.Value
	}
	for i, slot := range out {
		if slot == nil && fun.Params[i].Default == nil {
			a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
				"too few arguments in call of `%s`: expected %d, got %d", fun.Name, len(fun.Params), len(e.Args))
			return nil, false
		}
	}
	return out, true
}

func (a *Analyzer) checkIndirectCall(sc *scope.Scope, e *ast.Call, callee checked.Expr, lam *checked.Lambda) checked.Expr {
	out := &checked.Call{Loc: e.Loc}
	if len(e.Args) != len(lam.Params) {
		a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
			"expected %d arguments, got %d", len(lam.Params), len(e.Args))
		return &checked.UnknownExpr{Loc: e.Loc}
	}
	for i, arg := range e.Args {
		ce := a.checkExpr(sc, arg.Value)
		if !a.unify(lam.Params[i], ce.Dt()) {
			a.typeMismatch(ce.Location(), a.Resolve(lam.Params[i]), ce.Dt())
		}
		out.Args = append(out.Args, ce)
	}
	out.Callee = callee
	out.Type = a.Resolve(lam.Return)
	return out
}

func (a *Analyzer) checkLambdaCall(sc *scope.Scope, e *ast.Call) checked.Expr {
	lamExpr := a.checkLambda(sc, e.Lambda).(*checked.LambdaExpr)
	lam := lamExpr.Type.(*checked.Lambda)
	return a.checkIndirectCallOn(sc, e, lamExpr, lam)
}

func (a *Analyzer) checkIndirectCallOn(sc *scope.Scope, e *ast.Call, callee checked.Expr, lam *checked.Lambda) checked.Expr {
	out := a.checkIndirectCall(sc, e, callee, lam)
	return out
}

// pathOf flattens a call head into name segments.
func pathOf(callee ast.Expr) ([]string, position.Location, bool) {
	switch c := callee.(type) {
	case *ast.Identifier:
		return []string{c.Name}, c.Loc, true
	case *ast.Access:
		head, ok := c.Base.(*ast.Identifier)
		if !ok {
			return nil, c.Loc, false
		}
		path := []string{head.Name}
		for _, seg := range c.Segments {
			id, ok := seg.(*ast.Identifier)
			if !ok {
				return nil, c.Loc, false
			}
			path = append(path, id.Name)
		}
		return path, c.Loc, true
	}
	return nil, callee.Location(), false
}

func (a *Analyzer) checkRecordCall(sc *scope.Scope, e *ast.Call) checked.Expr {
	path, loc, ok := pathOf(e.Callee)
	if !ok {
		a.errorf(diagnostic.AnaNameNotFound, loc, "a record call needs a named head")
		return &checked.UnknownExpr{Loc: e.Loc}
	}
	resp := a.lookupPathSymbol(sc, path, scope.SymRecord, scope.SymRecordObject)
	if !resp.Found {
		a.errorf(diagnostic.AnaNameNotFound, loc, "the record `%s` is not found", path[len(path)-1])
		return &checked.UnknownExpr{Loc: e.Loc}
	}
	rec := resp.Entry.Decl.(*checked.Record)

	subst := map[string]checked.Dt{}
	for _, g := range rec.Generics {
		subst[g] = a.freshCG()
	}

	out := &checked.RecordCall{Record: rec, Loc: e.Loc}
	seen := map[string]bool{}
	for _, f := range e.Fields {
		idx := rec.FieldIndex(f.Name)
		if idx < 0 {
			a.errorf(diagnostic.AnaNameNotFound, f.Loc,
				"the record `%s` has no field `%s`", rec.Name, f.Name)
			continue
		}
		if seen[f.Name] {
			a.errorf(diagnostic.AnaDuplicateName, f.Loc,
				"the field `%s` is initialized twice", f.Name)
			continue
		}
		seen[f.Name] = true
		v := a.checkExpr(sc, f.Value)
		want := rec.Fields[idx].Type.Substitute(subst)
		if !a.unify(want, v.Dt()) {
			a.typeMismatch(v.Location(), a.Resolve(want), v.Dt())
		}
		out.Fields = append(out.Fields, checked.FieldValue{Name: f.Name, Index: idx, Value: v})
	}
	for _, f := range rec.Fields {
		if !seen[f.Name] {
			a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
				"missing field `%s` in record call of `%s`", f.Name, rec.Name)
		}
	}

	generics := make([]checked.Dt, len(rec.Generics))
	for i, g := range rec.Generics {
		generics[i] = a.Resolve(subst[g])
	}
	out.Type = &checked.Custom{ScopeID: resp.Scope.ID, Name: rec.Name, Generics: generics}
	return out
}

func (a *Analyzer) checkVariantCall(sc *scope.Scope, e *ast.Call) checked.Expr {
	path, loc, ok := pathOf(e.Callee)
	if !ok {
		a.errorf(diagnostic.AnaNameNotFound, loc, "a variant call needs a named head")
		return &checked.UnknownExpr{Loc: e.Loc}
	}

	enum, enumScope, variant := a.lookupVariant(sc, path)
	if enum == nil {
		a.errorf(diagnostic.AnaNameNotFound, loc, "the variant `%s` is not found", path[len(path)-1])
		return &checked.UnknownExpr{Loc: e.Loc}
	}

	subst := map[string]checked.Dt{}
	for _, g := range enum.Generics {
		subst[g] = a.freshCG()
	}

	out := &checked.VariantCall{Enum: enum, Variant: variant, Loc: e.Loc}
	payload := enum.Variants[variant].Type
	if e.Value != nil {
		if payload == nil {
			a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
				"the variant `%s` takes no value", enum.Variants[variant].Name)
		} else {
			v := a.checkExpr(sc, e.Value)
			want := payload.Substitute(subst)
			if !a.unify(want, v.Dt()) {
				a.typeMismatch(v.Location(), a.Resolve(want), v.Dt())
			}
			out.Value = v
		}
	} else if payload != nil {
		a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
			"the variant `%s` requires a value", enum.Variants[variant].Name)
	}

	generics := make([]checked.Dt, len(enum.Generics))
	for i, g := range enum.Generics {
		generics[i] = a.Resolve(subst[g])
	}
	out.Type = &checked.Custom{ScopeID: enumScope.ID, Name: enum.Name, Generics: generics}
	return out
}

// lookupPathSymbol resolves a dotted path whose prefix names modules and
// whose last segment is any of the given kinds.
func (a *Analyzer) lookupPathSymbol(sc *scope.Scope, path []string, kinds ...scope.SymbolKind) scope.Response {
	target := sc
	if len(path) > 1 {
		for _, seg := range path[:len(path)-1] {
			resp := target.Lookup(scope.SymModule, seg)
			if !resp.Found {
				return scope.Response{}
			}
			target = resp.Entry.Decl.(*checked.Module).Scope
		}
	}
	return target.LookupAny(path[len(path)-1], kinds...)
}

// lookupVariant resolves Enum.Variant paths, or a bare variant name by
// searching the enclosing scopes' enums.
func (a *Analyzer) lookupVariant(sc *scope.Scope, path []string) (*checked.Enum, *scope.Scope, int) {
	if len(path) >= 2 {
		resp := a.lookupPathSymbol(sc, path[:len(path)-1], scope.SymEnum, scope.SymEnumObject)
		if resp.Found {
			enum := resp.Entry.Decl.(*checked.Enum)
			if idx := enum.VariantIndex(path[len(path)-1]); idx >= 0 {
				return enum, resp.Scope, idx
			}
		}
		return nil, nil, -1
	}
	name := path[0]
	for cur := sc; cur != nil; cur = cur.Parent {
		for _, kind := range []scope.SymbolKind{scope.SymEnum, scope.SymEnumObject} {
			if found := searchVariantIn(cur, kind, name); found != nil {
				return found.enum, cur, found.index
			}
		}
	}
	return nil, nil, -1
}

type variantHit struct {
	enum  *checked.Enum
	index int
}

func searchVariantIn(sc *scope.Scope, kind scope.SymbolKind, variant string) *variantHit {
	for _, entry := range sc.Entries(kind) {
		enum, ok := entry.Decl.(*checked.Enum)
		if !ok {
			continue
		}
		if idx := enum.VariantIndex(variant); idx >= 0 {
			return &variantHit{enum: enum, index: idx}
		}
	}
	return nil
}
