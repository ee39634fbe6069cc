package analysis

import (
	"github.com/lily-lang/lilyc/internal/checked"
)

// freshCG allocates a compiler generic from the analyzer's arena.
func (a *Analyzer) freshCG() *checked.CompilerGeneric {
	cg := &checked.CompilerGeneric{ID: a.nextCG}
	a.nextCG++
	return cg
}

// resolveCG chases compiler-generic bindings.
func (a *Analyzer) resolveCG(t checked.Dt) checked.Dt {
	for {
		cg, ok := t.(*checked.CompilerGeneric)
		if !ok {
			return t
		}
		bound, ok := a.bindings[cg.ID]
		if !ok {
			return t
		}
		t = bound
	}
}

// Resolve fully applies compiler-generic bindings to a type.
func (a *Analyzer) Resolve(t checked.Dt) checked.Dt {
	t = a.resolveCG(t)
	switch v := t.(type) {
	case *checked.Array:
		return &checked.Array{Kind: v.Kind, Size: v.Size, Elem: a.Resolve(v.Elem)}
	case *checked.Tuple:
		elems := make([]checked.Dt, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = a.Resolve(e)
		}
		return &checked.Tuple{Elems: elems}
	case *checked.List:
		return &checked.List{Elem: a.Resolve(v.Elem)}
	case *checked.Lambda:
		params := make([]checked.Dt, len(v.Params))
		for i, p := range v.Params {
			params[i] = a.Resolve(p)
		}
		return &checked.Lambda{Params: params, Return: a.Resolve(v.Return)}
	case *checked.Wrap:
		return &checked.Wrap{Kind: v.Kind, Elem: a.Resolve(v.Elem)}
	case *checked.Result:
		errs := make([]checked.Dt, len(v.Errs))
		for i, e := range v.Errs {
			errs[i] = a.Resolve(e)
		}
		return &checked.Result{Errs: errs, Ok: a.Resolve(v.Ok)}
	case *checked.Custom:
		generics := make([]checked.Dt, len(v.Generics))
		for i, g := range v.Generics {
			generics[i] = a.Resolve(g)
		}
		return &checked.Custom{ScopeID: v.ScopeID, Name: v.Name, Generics: generics, Recursive: v.Recursive}
	}
	return t
}

// unify attempts to make two types equal. Compiler generics bind
// single-assignment; a second conflicting binding fails. Unknown unifies
// with anything so one error does not cascade.
func (a *Analyzer) unify(x, y checked.Dt) bool {
	x = a.resolveCG(x)
	y = a.resolveCG(y)

	if checked.IsUnknown(x) || checked.IsUnknown(y) {
		return true
	}

	if cg, ok := x.(*checked.CompilerGeneric); ok {
		return a.bind(cg, y)
	}
	if cg, ok := y.(*checked.CompilerGeneric); ok {
		return a.bind(cg, x)
	}

	if cx, ok := x.(*checked.Choice); ok {
		return a.narrowChoice(cx, y)
	}
	if cy, ok := y.(*checked.Choice); ok {
		return a.narrowChoice(cy, x)
	}

	switch tx := x.(type) {
	case *checked.Primitive:
		// Primitives unify only with themselves.
		return tx.Equals(y)
	case *checked.Generic:
		return tx.Equals(y)
	case *checked.Array:
		ty, ok := y.(*checked.Array)
		if !ok || tx.Kind != ty.Kind {
			return false
		}
		if tx.Kind == checked.ArraySized && tx.Size != ty.Size {
			return false
		}
		return a.unify(tx.Elem, ty.Elem)
	case *checked.Tuple:
		ty, ok := y.(*checked.Tuple)
		if !ok || len(tx.Elems) != len(ty.Elems) {
			return false
		}
		for i := range tx.Elems {
			if !a.unify(tx.Elems[i], ty.Elems[i]) {
				return false
			}
		}
		return true
	case *checked.List:
		ty, ok := y.(*checked.List)
		return ok && a.unify(tx.Elem, ty.Elem)
	case *checked.Range:
		ty, ok := y.(*checked.Range)
		return ok && a.unify(tx.Elem, ty.Elem)
	case *checked.Lambda:
		ty, ok := y.(*checked.Lambda)
		if !ok || len(tx.Params) != len(ty.Params) {
			return false
		}
		for i := range tx.Params {
			if !a.unify(tx.Params[i], ty.Params[i]) {
				return false
			}
		}
		return a.unify(tx.Return, ty.Return)
	case *checked.Wrap:
		ty, ok := y.(*checked.Wrap)
		return ok && tx.Kind == ty.Kind && a.unify(tx.Elem, ty.Elem)
	case *checked.Result:
		ty, ok := y.(*checked.Result)
		if !ok || len(tx.Errs) != len(ty.Errs) {
			return false
		}
		for i := range tx.Errs {
			if !a.unify(tx.Errs[i], ty.Errs[i]) {
				return false
			}
		}
		return a.unify(tx.Ok, ty.Ok)
	case *checked.Custom:
		// A custom type unifies if names and generic arg lists unify
		// component-wise.
		ty, ok := y.(*checked.Custom)
		if !ok || tx.Name != ty.Name || tx.ScopeID != ty.ScopeID {
			return false
		}
		if len(tx.Generics) != len(ty.Generics) {
			return false
		}
		for i := range tx.Generics {
			if !a.unify(tx.Generics[i], ty.Generics[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// bind assigns a compiler generic; a conflicting reassignment fails.
func (a *Analyzer) bind(cg *checked.CompilerGeneric, t checked.Dt) bool {
	if prev, ok := a.bindings[cg.ID]; ok {
		return a.unify(prev, t)
	}
	if other, ok := t.(*checked.CompilerGeneric); ok && other.ID == cg.ID {
		return true
	}
	a.bindings[cg.ID] = t
	return true
}

// narrowChoice intersects a conditional compiler choice against a target
// type; the choice holds if at least one alternative survives.
func (a *Analyzer) narrowChoice(c *checked.Choice, target checked.Dt) bool {
	for _, alt := range c.Choices {
		if a.unify(alt, target) {
			return true
		}
	}
	return false
}

// snapshot and restore implement per-frame single assignment: speculative
// unification during overload filtering rolls its bindings back.
func (a *Analyzer) snapshot() map[int]checked.Dt {
	out := make(map[int]checked.Dt, len(a.bindings))
	for k, v := range a.bindings {
		out[k] = v
	}
	return out
}

func (a *Analyzer) restore(snap map[int]checked.Dt) {
	a.bindings = snap
}
