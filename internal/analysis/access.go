package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/scope"
)

func (a *Analyzer) checkAccess(sc *scope.Scope, e *ast.Access) checked.Expr {
	switch e.Kind {
	case ast.AccessHook:
		return a.checkHookAccess(sc, e)
	case ast.AccessObject:
		return a.checkObjectAccess(sc, e)
	default:
		return a.checkPathAccess(sc, e)
	}
}

func (a *Analyzer) checkHookAccess(sc *scope.Scope, e *ast.Access) checked.Expr {
	base := a.checkExpr(sc, e.Base)
	index := a.checkExpr(sc, e.Index)

	if prim, ok := a.resolveCG(index.Dt()).(*checked.Primitive); !ok || !prim.Kind.IsInteger() {
		if !checked.IsUnknown(index.Dt()) {
			a.errorf(diagnostic.AnaTypeMismatch, e.Index.Location(),
				"an index must be an integer, found `%s`", index.Dt())
		}
	}

	out := &checked.IndexAccess{Base: base, Index: index, Loc: e.Loc}
	switch t := a.resolveCG(base.Dt()).(type) {
	case *checked.Array:
		out.Type = t.Elem
	case *checked.List:
		out.Type = t.Elem
	case *checked.Primitive:
		switch t.Kind {
		case checked.Str:
			out.Type = checked.Prim(checked.Char)
		case checked.Bytes:
			out.Type = checked.Prim(checked.Byte)
		default:
			a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
				"the type `%s` cannot be indexed", t)
			out.Type = &checked.Unknown{}
		}
	case *checked.Unknown:
		out.Type = t
	default:
		a.errorf(diagnostic.AnaTypeMismatch, e.Loc,
			"the type `%s` cannot be indexed", base.Dt())
		out.Type = &checked.Unknown{}
	}
	return out
}

// customDecl recovers the declaration behind a Custom type through its
// scope id + name encoding.
func (a *Analyzer) customDecl(t *checked.Custom) any {
	sc := a.tree.ByID(t.ScopeID)
	if sc == nil {
		return nil
	}
	for _, kind := range []scope.SymbolKind{
		scope.SymRecord, scope.SymRecordObject, scope.SymEnum,
		scope.SymEnumObject, scope.SymClass, scope.SymTrait, scope.SymError,
	} {
		if entry, ok := sc.LookupLocal(kind, t.Name); ok {
			return entry.Decl
		}
	}
	return nil
}

// checkPathAccess handles a.b.c, Global.x and self.x chains: a module
// prefix resolves to constants or functions; a value head resolves each
// further segment as a record field or a method call.
func (a *Analyzer) checkPathAccess(sc *scope.Scope, e *ast.Access) checked.Expr {
	// Module-path constants and functions first.
	if target, last, ok := a.walkModulePath(sc, e); ok {
		if resp := target.LookupAny(last, scope.SymConstant); resp.Found {
			return &checked.VarRef{Name: last, Entry: resp.Entry, Access: resp.Access,
				Type: entryType(resp.Entry), Loc: e.Loc}
		}
		if callSeg, isCall := e.Segments[len(e.Segments)-1].(*ast.Call); isCall {
			if resp := target.Lookup(scope.SymFun, last); resp.Found {
				synth := &ast.Call{Kind: ast.CallFun, Callee: e,
					Generics: callSeg.Generics, Args: callSeg.Args, Loc: callSeg.Loc}
				return a.checkFunCall(sc, synth)
			}
		}
	}

	cur := a.checkExpr(sc, e.Base)
	for _, seg := range e.Segments {
		switch s := seg.(type) {
		case *ast.Identifier:
			cur = a.checkFieldAccess(cur, s)
		case *ast.Call:
			cur = a.checkMethodCall(sc, cur, s)
		default:
			a.errorf(diagnostic.AnaNameNotFound, seg.Location(), "malformed access path")
			return &checked.UnknownExpr{Loc: e.Loc}
		}
		if _, ok := cur.(*checked.UnknownExpr); ok {
			return cur
		}
	}
	return cur
}

func (a *Analyzer) checkFieldAccess(base checked.Expr, seg *ast.Identifier) checked.Expr {
	t := a.resolveCG(base.Dt())
	custom, ok := t.(*checked.Custom)
	if !ok {
		if !checked.IsUnknown(t) {
			a.errorf(diagnostic.AnaTypeMismatch, seg.Loc,
				"the type `%s` has no field `%s`", t, seg.Name)
		}
		return &checked.UnknownExpr{Loc: seg.Loc}
	}
	decl := a.customDecl(custom)
	switch d := decl.(type) {
	case *checked.Record:
		idx := d.FieldIndex(seg.Name)
		if idx < 0 {
			a.errorf(diagnostic.AnaNameNotFound, seg.Loc,
				"the record `%s` has no field `%s`", d.Name, seg.Name)
			return &checked.UnknownExpr{Loc: seg.Loc}
		}
		subst := map[string]checked.Dt{}
		for i, g := range d.Generics {
			if i < len(custom.Generics) {
				subst[g] = custom.Generics[i]
			}
		}
		return &checked.FieldAccess{
			Base:  base,
			Name:  seg.Name,
			Index: idx,
			Type:  d.Fields[idx].Type.Substitute(subst),
			Loc:   seg.Loc,
		}
	case *checked.Class:
		for i, attr := range d.Attributes {
			if attr.Name == seg.Name {
				return &checked.FieldAccess{Base: base, Name: seg.Name, Index: i,
					Type: attr.Type, Loc: seg.Loc}
			}
		}
	}
	a.errorf(diagnostic.AnaNameNotFound, seg.Loc,
		"the type `%s` has no field `%s`", custom.Name, seg.Name)
	return &checked.UnknownExpr{Loc: seg.Loc}
}

// checkMethodCall resolves base.method(args) in the object's scope.
func (a *Analyzer) checkMethodCall(sc *scope.Scope, base checked.Expr, call *ast.Call) checked.Expr {
	name, ok := call.Callee.(*ast.Identifier)
	if !ok {
		a.errorf(diagnostic.AnaNameNotFound, call.Loc, "malformed method call")
		return &checked.UnknownExpr{Loc: call.Loc}
	}
	t := a.resolveCG(base.Dt())
	custom, isCustom := t.(*checked.Custom)
	if !isCustom {
		if !checked.IsUnknown(t) {
			a.errorf(diagnostic.AnaTypeMismatch, call.Loc,
				"the type `%s` has no method `%s`", t, name.Name)
		}
		return &checked.UnknownExpr{Loc: call.Loc}
	}

	var methods []*checked.Fun
	switch d := a.customDecl(custom).(type) {
	case *checked.Record:
		methods = d.Methods
	case *checked.Enum:
		methods = d.Methods
	case *checked.Class:
		methods = d.Methods
	}
	for _, m := range methods {
		if m.Name != name.Name {
			continue
		}
		out := &checked.Call{Fun: m, Loc: call.Loc}
		// The receiver fills the leading self parameter.
		out.Args = append(out.Args, base)
		want := m.Params
		for i, arg := range call.Args {
			ce := a.checkExpr(sc, arg.Value)
			if i+1 < len(want) {
				expected := want[i+1].Type
				if p, okp := expected.(*checked.Primitive); okp && p.Kind == checked.SelfT {
					expected = custom
				}
				if !a.unify(expected, ce.Dt()) {
					a.typeMismatch(ce.Location(), a.Resolve(expected), ce.Dt())
				}
			}
			out.Args = append(out.Args, ce)
		}
		if len(call.Args)+1 != len(want) {
			a.errorf(diagnostic.AnaTypeMismatch, call.Loc,
				"the method `%s` expects %d arguments, got %d", m.Name, len(want)-1, len(call.Args))
		}
		ret := m.Return
		if p, okp := ret.(*checked.Primitive); okp && p.Kind == checked.SelfT {
			ret = custom
		}
		out.Type = ret
		return out
	}
	a.errorf(diagnostic.AnaNameNotFound, call.Loc,
		"the type `%s` has no method `%s`", custom.Name, name.Name)
	return &checked.UnknownExpr{Loc: call.Loc}
}

// checkObjectAccess handles A.@Obj style accesses into object scopes.
func (a *Analyzer) checkObjectAccess(sc *scope.Scope, e *ast.Access) checked.Expr {
	base := a.checkExpr(sc, e.Base)
	if len(e.Segments) == 0 {
		return base
	}
	// The object chain narrows to the last named object; the value keeps
	// the base type since objects refine behavior, not representation.
	for _, seg := range e.Segments {
		id, ok := seg.(*ast.Identifier)
		if !ok {
			a.errorf(diagnostic.AnaNameNotFound, seg.Location(), "malformed object access")
			return &checked.UnknownExpr{Loc: e.Loc}
		}
		resp := sc.LookupAny(id.Name, scope.SymEnumObject, scope.SymRecordObject, scope.SymClass)
		if !resp.Found {
			a.errorf(diagnostic.AnaNameNotFound, id.Loc, "the object `%s` is not found", id.Name)
			return &checked.UnknownExpr{Loc: e.Loc}
		}
	}
	return base
}
