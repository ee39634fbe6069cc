package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// checkStmts checks a statement list in order inside fun f.
func (a *Analyzer) checkStmts(sc *scope.Scope, stmts []ast.Stmt, f *checked.Fun) []checked.Stmt {
	var out []checked.Stmt
	for _, s := range stmts {
		if cs := a.checkStmt(sc, s, f); cs != nil {
			out = append(out, cs)
		}
	}
	return out
}

func (a *Analyzer) checkStmt(sc *scope.Scope, s ast.Stmt, f *checked.Fun) checked.Stmt {
	switch stmt := s.(type) {
	case *ast.VariableStmt:
		return a.checkVariableStmt(sc, stmt)
	case *ast.AssignStmt:
		return a.checkAssignStmt(sc, stmt)
	case *ast.ReturnStmt:
		out := &checked.Return{Loc: stmt.Loc}
		want := f.Return
		if ret, ok := want.(*checked.Result); ok {
			want = ret.Ok
		}
		if stmt.Value != nil {
			v := a.checkExpr(sc, stmt.Value)
			if !a.unify(want, v.Dt()) {
				a.typeMismatch(stmt.Value.Location(), want, v.Dt())
			}
			out.Value = v
		} else if !a.unify(want, checked.Prim(checked.Unit)) {
			a.errorf(diagnostic.AnaTypeMismatch, stmt.Loc,
				"this function returns `%s`, a bare `return` returns `Unit`", f.Return)
		}
		return out
	case *ast.RaiseStmt:
		return a.checkRaise(sc, stmt, f)
	case *ast.IfStmt:
		out := &checked.IfStmt{Loc: stmt.Loc}
		out.If = a.checkIfBranch(sc, stmt.If, f, scope.KindIf)
		for _, e := range stmt.Elifs {
			out.Elifs = append(out.Elifs, a.checkIfBranch(sc, e, f, scope.KindIf))
		}
		if stmt.Else != nil {
			elseScope := a.tree.NewScope(sc, scope.KindElse)
			out.HasElse = true
			out.ElseScope = elseScope
			out.Else = a.checkStmts(elseScope, stmt.Else, f)
		}
		return out
	case *ast.WhileStmt:
		cond := a.checkExpr(sc, stmt.Cond)
		if !a.unify(cond.Dt(), checked.Prim(checked.Bool)) {
			a.typeMismatch(stmt.Cond.Location(), checked.Prim(checked.Bool), cond.Dt())
		}
		body := a.tree.NewScope(sc, scope.KindWhile)
		return &checked.While{Cond: cond, Body: a.checkStmts(body, stmt.Body, f), Scope: body, Loc: stmt.Loc}
	case *ast.DoWhileStmt:
		body := a.tree.NewScope(sc, scope.KindWhile)
		stmts := a.checkStmts(body, stmt.Body, f)
		cond := a.checkExpr(body, stmt.Cond)
		if !a.unify(cond.Dt(), checked.Prim(checked.Bool)) {
			a.typeMismatch(stmt.Cond.Location(), checked.Prim(checked.Bool), cond.Dt())
		}
		// do-while is while with one guaranteed first pass; the builder
		// models it with the same loop shape.
		return &checked.While{Cond: cond, Body: stmts, Scope: body, Loc: stmt.Loc}
	case *ast.LoopStmt:
		body := a.tree.NewScope(sc, scope.KindLoop)
		return &checked.Loop{Body: a.checkStmts(body, stmt.Body, f), Scope: body, Loc: stmt.Loc}
	case *ast.ForStmt:
		return a.checkForStmt(sc, stmt, f)
	case *ast.MatchStmt:
		return a.checkMatchStmt(sc, stmt, f)
	case *ast.DeferStmt:
		return &checked.Defer{Body: a.checkStmts(sc, stmt.Body, f), Loc: stmt.Loc}
	case *ast.DropStmt:
		return &checked.Drop{Value: a.checkExpr(sc, stmt.Value), Loc: stmt.Loc}
	case *ast.TryStmt:
		tryScope := a.tree.NewScope(sc, scope.KindTry)
		out := &checked.Try{Scope: tryScope, Loc: stmt.Loc}
		out.Body = a.checkStmts(tryScope, stmt.Body, f)
		if stmt.Catch != nil {
			out.HasCatch = true
			out.CatchName = stmt.Catch.Name
			catchScope := a.tree.NewScope(sc, scope.KindCatch)
			catchScope.Catch = &scope.Catch{Name: stmt.Catch.Name}
			if stmt.Catch.Name != "" {
				bind := &checked.PatBind{Name: stmt.Catch.Name, Type: checked.Prim(checked.Any), Loc: stmt.Catch.Loc}
				if entry, err := catchScope.Add(scope.SymVariable, stmt.Catch.Name, bind); err == nil {
					bind.Entry = entry
				}
			}
			out.Catch = a.checkStmts(catchScope, stmt.Catch.Body, f)
		}
		return out
	case *ast.UnsafeStmt:
		block := a.tree.NewScope(sc, scope.KindBlock)
		return &checked.Unsafe{Body: a.checkStmts(block, stmt.Body, f), Loc: stmt.Loc}
	case *ast.BlockStmt:
		block := a.tree.NewScope(sc, scope.KindBlock)
		if stmt.Label != "" {
			a.add(sc, scope.SymLabel, stmt.Label, block, stmt.Loc)
		}
		return &checked.Block{Label: stmt.Label, Body: a.checkStmts(block, stmt.Body, f), Scope: block, Loc: stmt.Loc}
	case *ast.AsmStmt:
		// Raw assembly passes through untyped.
		return &checked.Unsafe{Loc: stmt.Loc}
	case *ast.NextStmt:
		a.checkLabelRef(sc, stmt.Label, stmt.Loc)
		return &checked.Next{Label: stmt.Label, Loc: stmt.Loc}
	case *ast.BreakStmt:
		a.checkLabelRef(sc, stmt.Label, stmt.Loc)
		return &checked.Break{Label: stmt.Label, Loc: stmt.Loc}
	case *ast.AwaitStmt:
		return &checked.Await{Value: a.checkExpr(sc, stmt.Value), Loc: stmt.Loc}
	case *ast.ExprStmt:
		return &checked.ExprStmt{Value: a.checkExpr(sc, stmt.Value), Loc: stmt.Loc}
	}
	return nil
}

func (a *Analyzer) checkIfBranch(sc *scope.Scope, branch ast.IfBranch, f *checked.Fun, kind scope.Kind) checked.IfBranch {
	cond := a.checkExpr(sc, branch.Cond)
	branchScope := a.tree.NewScope(sc, kind)
	if branch.Capture != nil {
		// `cond as name` captures the unwrapped optional value.
		capType := checked.Dt(checked.Prim(checked.Any))
		if opt, ok := a.resolveCG(cond.Dt()).(*checked.Wrap); ok && opt.Kind == checked.WrapOptional {
			capType = opt.Elem
		}
		bind := &checked.PatBind{Name: branch.Capture.Name, Type: capType, Loc: branch.Capture.Loc}
		if entry, err := branchScope.Add(scope.SymVariable, branch.Capture.Name, bind); err == nil {
			bind.Entry = entry
		}
	} else if !a.unify(cond.Dt(), checked.Prim(checked.Bool)) {
		a.typeMismatch(branch.Cond.Location(), checked.Prim(checked.Bool), cond.Dt())
	}
	return checked.IfBranch{Cond: cond, Body: a.checkStmts(branchScope, branch.Body, f), Scope: branchScope}
}

func (a *Analyzer) checkVariableStmt(sc *scope.Scope, stmt *ast.VariableStmt) checked.Stmt {
	out := &checked.Variable{Name: stmt.Name, Mut: stmt.Mut, Loc: stmt.Loc}
	if stmt.Dt != nil {
		out.Type = a.resolveDataType(sc, stmt.Dt)
	}
	if stmt.Init != nil {
		init := a.checkExpr(sc, stmt.Init)
		out.Init = init
		if out.Type == nil {
			out.Type = a.Resolve(init.Dt())
		} else if !a.unify(out.Type, init.Dt()) {
			a.typeMismatch(stmt.Init.Location(), out.Type, init.Dt())
		}
	} else if out.Type == nil {
		a.errorf(diagnostic.AnaTypeMismatch, stmt.Loc,
			"the variable `%s` needs a type annotation or an initializer", stmt.Name)
		out.Type = &checked.Unknown{}
	}
	entry, err := sc.Add(scope.SymVariable, stmt.Name, out)
	if err != nil {
		a.sink.Error(diagnostic.AnaDuplicateName, stmt.Loc, err.Error())
		return out
	}
	out.Entry = entry
	return out
}

func (a *Analyzer) checkAssignStmt(sc *scope.Scope, stmt *ast.AssignStmt) checked.Stmt {
	target := a.checkExpr(sc, stmt.Target)
	value := a.checkExpr(sc, stmt.Value)

	switch t := target.(type) {
	case *checked.VarRef:
		if v, ok := t.Entry.Decl.(*checked.Variable); ok && !v.Mut {
			a.errorf(diagnostic.AnaVariableNotMutable, stmt.Loc,
				"the variable `%s` is not mutable", t.Name)
		}
		if _, ok := t.Entry.Decl.(*checked.Constant); ok {
			a.errorf(diagnostic.AnaVariableNotMutable, stmt.Loc,
				"the constant `%s` cannot be assigned", t.Name)
		}
	case *checked.FieldAccess, *checked.IndexAccess:
		// Field and element stores are checked against the element type.
	default:
		a.errorf(diagnostic.AnaTypeMismatch, stmt.Loc, "this expression cannot be assigned")
	}

	if !a.unify(target.Dt(), value.Dt()) {
		a.typeMismatch(stmt.Value.Location(), a.Resolve(target.Dt()), value.Dt())
	}
	return &checked.Assign{Target: target, Value: value, Loc: stmt.Loc}
}

// checkRaise resolves the raised error to a declared error; it does not
// check the error against the enclosing function's return type.
func (a *Analyzer) checkRaise(sc *scope.Scope, stmt *ast.RaiseStmt, f *checked.Fun) checked.Stmt {
	out := &checked.Raise{Loc: stmt.Loc}
	if path, _, ok := pathOf(stmt.Value); ok {
		if resp := a.lookupPathSymbol(sc, path, scope.SymError); resp.Found {
			errDecl := resp.Entry.Decl.(*checked.ErrorDecl)
			out.Value = &checked.ErrorRef{
				Error: errDecl,
				Type:  &checked.Custom{ScopeID: resp.Scope.ID, Name: errDecl.Name},
				Loc:   stmt.Loc,
			}
			return out
		}
	}
	out.Value = a.checkExpr(sc, stmt.Value)
	if _, ok := out.Value.(*checked.UnknownExpr); !ok {
		if _, isErr := out.Value.(*checked.ErrorRef); !isErr {
			a.errorf(diagnostic.AnaNameNotFound, stmt.Value.Location(),
				"`raise` expects a declared error")
		}
	}
	return out
}

func (a *Analyzer) checkForStmt(sc *scope.Scope, stmt *ast.ForStmt, f *checked.Fun) checked.Stmt {
	iter := a.checkExpr(sc, stmt.Iter)
	var elem checked.Dt = &checked.Unknown{}
	switch t := a.resolveCG(iter.Dt()).(type) {
	case *checked.Array:
		elem = t.Elem
	case *checked.List:
		elem = t.Elem
	case *checked.Range:
		elem = t.Elem
	case *checked.Primitive:
		switch t.Kind {
		case checked.Str:
			elem = checked.Prim(checked.Char)
		case checked.Bytes:
			elem = checked.Prim(checked.Byte)
		default:
			a.errorf(diagnostic.AnaTypeMismatch, stmt.Iter.Location(),
				"the type `%s` is not iterable", t)
		}
	case *checked.Unknown:
	default:
		a.errorf(diagnostic.AnaTypeMismatch, stmt.Iter.Location(),
			"the type `%s` is not iterable", iter.Dt())
	}

	body := a.tree.NewScope(sc, scope.KindFor)
	binding := a.checkPattern(body, stmt.Binding, elem)
	return &checked.For{Binding: binding, Iter: iter, Body: a.checkStmts(body, stmt.Body, f), Scope: body, Loc: stmt.Loc}
}

func (a *Analyzer) checkMatchStmt(sc *scope.Scope, stmt *ast.MatchStmt, f *checked.Fun) checked.Stmt {
	scrut := a.checkExpr(sc, stmt.Scrutinee)
	out := &checked.MatchStmt{Scrutinee: scrut, Loc: stmt.Loc}
	var arms []armInfo
	for _, arm := range stmt.Arms {
		armScope := a.tree.NewScope(sc, scope.KindMatchArm)
		pat := a.checkPattern(armScope, arm.Pattern, scrut.Dt())
		var guard checked.Expr
		if arm.Guard != nil {
			guard = a.checkExpr(armScope, arm.Guard)
			if !a.unify(guard.Dt(), checked.Prim(checked.Bool)) {
				a.typeMismatch(arm.Guard.Location(), checked.Prim(checked.Bool), guard.Dt())
			}
		}
		body := a.checkStmts(armScope, arm.Body, f)
		out.Arms = append(out.Arms, checked.MatchStmtArm{Pattern: pat, Guard: guard, Body: body, Scope: armScope})
		arms = append(arms, armInfo{pattern: pat, guarded: guard != nil})
	}
	out.Exhaustive = a.checkExhaustive(stmt.Loc, scrut.Dt(), arms)
	return out
}

func (a *Analyzer) checkLabelRef(sc *scope.Scope, label string, loc position.Location) {
	if label == "" {
		return
	}
	if resp := sc.Lookup(scope.SymLabel, label); !resp.Found {
		a.errorf(diagnostic.AnaNameNotFound, loc, "the label `%s` is not found", label)
	}
}
