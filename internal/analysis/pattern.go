package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// checkPattern checks a pattern against the scrutinee type and inserts
// bound names into the match-arm scope.
func (a *Analyzer) checkPattern(sc *scope.Scope, p ast.Pattern, scrutinee checked.Dt) checked.Pattern {
	scrutinee = a.resolveCG(scrutinee)
	switch pat := p.(type) {
	case *ast.PatWildcard:
		return &checked.PatWildcard{Type: scrutinee, Loc: pat.Loc}
	case *ast.PatName:
		bind := &checked.PatBind{Name: pat.Name, Type: scrutinee, Loc: pat.Loc}
		entry, err := sc.Add(scope.SymVariable, pat.Name, bind)
		if err != nil {
			a.sink.Error(diagnostic.AnaDuplicateName, pat.Loc, err.Error())
		} else {
			bind.Entry = entry
		}
		return bind
	case *ast.Literal:
		lit := a.checkLiteral(pat).(*checked.Literal)
		if !a.unify(scrutinee, lit.Dt()) {
			a.typeMismatch(pat.Loc, scrutinee, lit.Dt())
		}
		return &checked.PatLiteral{Lit: lit, Type: scrutinee, Loc: pat.Loc}
	case *ast.PatRange:
		out := &checked.PatRange{Type: scrutinee, Loc: pat.Loc}
		if pat.Lo != nil {
			out.Lo = a.rangeBound(sc, pat.Lo, scrutinee)
		}
		if pat.Hi != nil {
			out.Hi = a.rangeBound(sc, pat.Hi, scrutinee)
		}
		return out
	case *ast.PatAs:
		inner := a.checkPattern(sc, pat.Inner, scrutinee)
		bind := &checked.PatAs{Inner: inner, Name: pat.Name, Type: scrutinee, Loc: pat.Loc}
		entry, err := sc.Add(scope.SymVariable, pat.Name, &checked.PatBind{Name: pat.Name, Type: scrutinee, Loc: pat.Loc})
		if err != nil {
			a.sink.Error(diagnostic.AnaDuplicateName, pat.Loc, err.Error())
		} else {
			bind.Entry = entry
		}
		return bind
	case *ast.PatTuple:
		tup, ok := scrutinee.(*checked.Tuple)
		if !ok {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"a tuple pattern cannot match `%s`", scrutinee)
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		if len(pat.Elems) != len(tup.Elems) {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"the tuple pattern has %d elements, the scrutinee has %d", len(pat.Elems), len(tup.Elems))
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		out := &checked.PatTuple{Type: scrutinee, Loc: pat.Loc}
		for i, el := range pat.Elems {
			out.Elems = append(out.Elems, a.checkPattern(sc, el, tup.Elems[i]))
		}
		return out
	case *ast.PatArray:
		arr, ok := scrutinee.(*checked.Array)
		if !ok {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"an array pattern cannot match `%s`", scrutinee)
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		out := &checked.PatArray{Type: scrutinee, Loc: pat.Loc}
		for _, el := range pat.Elems {
			out.Elems = append(out.Elems, a.checkPattern(sc, el, arr.Elem))
		}
		return out
	case *ast.PatList:
		list, ok := scrutinee.(*checked.List)
		if !ok {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"a list pattern cannot match `%s`", scrutinee)
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		out := &checked.PatList{Type: scrutinee, Loc: pat.Loc}
		for _, el := range pat.Elems {
			out.Elems = append(out.Elems, a.checkPattern(sc, el, list.Elem))
		}
		return out
	case *ast.PatListHead:
		list, ok := scrutinee.(*checked.List)
		if !ok {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"a list pattern cannot match `%s`", scrutinee)
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		out := &checked.PatList{Type: scrutinee, Loc: pat.Loc}
		out.Head = a.checkPattern(sc, pat.Head, list.Elem)
		out.Tail = a.checkPattern(sc, pat.Tail, list)
		return out
	case *ast.PatListTail:
		list, ok := scrutinee.(*checked.List)
		if !ok {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"a list pattern cannot match `%s`", scrutinee)
			return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
		}
		out := &checked.PatList{Type: scrutinee, Loc: pat.Loc}
		out.Head = a.checkPattern(sc, pat.List, list)
		out.Tail = a.checkPattern(sc, pat.Last, list.Elem)
		return out
	case *ast.PatVariantCall:
		return a.checkVariantPattern(sc, pat, scrutinee)
	case *ast.PatRecordCall:
		return a.checkRecordPattern(sc, pat, scrutinee)
	case *ast.PatError:
		return a.checkErrorPattern(sc, pat, scrutinee)
	case *ast.PatAutoComplete:
		return &checked.PatWildcard{Type: scrutinee, Loc: pat.Loc}
	}
	return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: p.Location()}
}

func (a *Analyzer) rangeBound(sc *scope.Scope, p ast.Pattern, scrutinee checked.Dt) *checked.Literal {
	lit, ok := p.(*ast.Literal)
	if !ok {
		a.errorf(diagnostic.AnaTypeMismatch, p.Location(), "a range bound must be a literal")
		return nil
	}
	cl := a.checkLiteral(lit).(*checked.Literal)
	if !a.unify(scrutinee, cl.Dt()) {
		a.typeMismatch(lit.Loc, scrutinee, cl.Dt())
	}
	return cl
}

func (a *Analyzer) checkVariantPattern(sc *scope.Scope, pat *ast.PatVariantCall, scrutinee checked.Dt) checked.Pattern {
	enum, _, idx := a.lookupVariant(sc, pat.Path)
	if enum == nil {
		a.errorf(diagnostic.AnaNameNotFound, pat.Loc,
			"the variant `%s` is not found", pat.Path[len(pat.Path)-1])
		return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
	}
	custom, ok := scrutinee.(*checked.Custom)
	if !ok || custom.Name != enum.Name {
		a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
			"the variant `%s` cannot match `%s`", enum.Variants[idx].Name, scrutinee)
	}
	out := &checked.PatVariant{Enum: enum, Variant: idx, Type: scrutinee, Loc: pat.Loc}
	payload := enum.Variants[idx].Type
	if pat.Inner != nil {
		if payload == nil {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"the variant `%s` takes no value", enum.Variants[idx].Name)
		} else {
			want := payload
			if ok && len(enum.Generics) == len(custom.Generics) {
				subst := map[string]checked.Dt{}
				for i, g := range enum.Generics {
					subst[g] = custom.Generics[i]
				}
				want = payload.Substitute(subst)
			}
			out.Inner = a.checkPattern(sc, pat.Inner, want)
		}
	}
	return out
}

func (a *Analyzer) checkRecordPattern(sc *scope.Scope, pat *ast.PatRecordCall, scrutinee checked.Dt) checked.Pattern {
	resp := a.lookupPathSymbol(sc, pat.Path, scope.SymRecord, scope.SymRecordObject)
	if !resp.Found {
		a.errorf(diagnostic.AnaNameNotFound, pat.Loc,
			"the record `%s` is not found", pat.Path[len(pat.Path)-1])
		return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
	}
	rec := resp.Entry.Decl.(*checked.Record)
	custom, isCustom := scrutinee.(*checked.Custom)
	if !isCustom || custom.Name != rec.Name {
		a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
			"the record pattern `%s` cannot match `%s`", rec.Name, scrutinee)
	}
	subst := map[string]checked.Dt{}
	if isCustom && len(rec.Generics) == len(custom.Generics) {
		for i, g := range rec.Generics {
			subst[g] = custom.Generics[i]
		}
	}
	out := &checked.PatRecord{Record: rec, AutoComplete: pat.AutoComplete, Type: scrutinee, Loc: pat.Loc}
	matched := map[string]bool{}
	for _, f := range pat.Fields {
		idx := rec.FieldIndex(f.Name)
		if idx < 0 {
			a.errorf(diagnostic.AnaNameNotFound, f.Loc,
				"the record `%s` has no field `%s`", rec.Name, f.Name)
			continue
		}
		matched[f.Name] = true
		fieldPat := a.checkPattern(sc, f.Pattern, rec.Fields[idx].Type.Substitute(subst))
		out.Fields = append(out.Fields, checked.PatRecordField{Name: f.Name, Index: idx, Pattern: fieldPat})
	}
	if !pat.AutoComplete {
		for _, f := range rec.Fields {
			if !matched[f.Name] {
				a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
					"the field `%s` is not matched; use `..` to auto-complete", f.Name)
			}
		}
	}
	return out
}

func (a *Analyzer) checkErrorPattern(sc *scope.Scope, pat *ast.PatError, scrutinee checked.Dt) checked.Pattern {
	resp := a.lookupPathSymbol(sc, pat.Path, scope.SymError)
	if !resp.Found {
		a.errorf(diagnostic.AnaNameNotFound, pat.Loc,
			"the error `%s` is not found", pat.Path[len(pat.Path)-1])
		return &checked.PatWildcard{Type: &checked.Unknown{}, Loc: pat.Loc}
	}
	errDecl := resp.Entry.Decl.(*checked.ErrorDecl)
	out := &checked.PatError{Error: errDecl, Type: scrutinee, Loc: pat.Loc}
	if pat.Inner != nil {
		if errDecl.Payload == nil {
			a.errorf(diagnostic.AnaTypeMismatch, pat.Loc,
				"the error `%s` carries no value", errDecl.Name)
		} else {
			out.Inner = a.checkPattern(sc, pat.Inner, errDecl.Payload)
		}
	}
	return out
}

// armInfo is the view of one match arm the exhaustiveness check consumes.
type armInfo struct {
	pattern checked.Pattern
	guarded bool
}

// checkExhaustive approximates exhaustiveness by structural coverage: an
// enum needs every variant (or an irrefutable arm); Bool needs both truth
// values; open types need an irrefutable arm. Guarded arms never count as
// covering. Unreachable arms after an irrefutable one are warned about.
func (a *Analyzer) checkExhaustive(loc position.Location, scrutinee checked.Dt, arms []armInfo) bool {
	covered := false
	for _, arm := range arms {
		if covered {
			a.sink.Warn(diagnostic.WarnUnreachableArm, arm.pattern.Location(),
				"this match arm is unreachable")
			continue
		}
		if !arm.guarded && checked.IsIrrefutable(arm.pattern) {
			covered = true
		}
	}
	if covered {
		return true
	}

	switch t := a.resolveCG(scrutinee).(type) {
	case *checked.Primitive:
		if t.Kind == checked.Bool {
			sawTrue, sawFalse := false, false
			for _, arm := range arms {
				if arm.guarded {
					continue
				}
				if lit, ok := arm.pattern.(*checked.PatLiteral); ok && lit.Lit.Kind == ast.LitBool {
					if lit.Lit.Bool {
						sawTrue = true
					} else {
						sawFalse = true
					}
				}
			}
			if sawTrue && sawFalse {
				return true
			}
		}
	case *checked.Custom:
		if enum, ok := a.customDecl(t).(*checked.Enum); ok {
			seen := make(map[int]bool)
			for _, arm := range arms {
				if arm.guarded {
					continue
				}
				if v, ok := arm.pattern.(*checked.PatVariant); ok && (v.Inner == nil || checked.IsIrrefutable(v.Inner)) {
					seen[v.Variant] = true
				}
			}
			if len(seen) == len(enum.Variants) {
				return true
			}
		}
	case *checked.Unknown:
		return true
	}

	a.sink.Warn(diagnostic.WarnNonExhaustiveMatch, loc,
		"this match may not cover every value of its scrutinee")
	return false
}
