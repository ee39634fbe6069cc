package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/scope"
)

var primMap = map[ast.PrimKind]checked.PrimKind{
	ast.PrimInt8:    checked.I8,
	ast.PrimInt16:   checked.I16,
	ast.PrimInt32:   checked.I32,
	ast.PrimInt64:   checked.I64,
	ast.PrimUint8:   checked.U8,
	ast.PrimUint16:  checked.U16,
	ast.PrimUint32:  checked.U32,
	ast.PrimUint64:  checked.U64,
	ast.PrimIsize:   checked.Isize,
	ast.PrimUsize:   checked.Usize,
	ast.PrimFloat32: checked.F32,
	ast.PrimFloat64: checked.F64,
	ast.PrimBool:    checked.Bool,
	ast.PrimChar:    checked.Char,
	ast.PrimByte:    checked.Byte,
	ast.PrimBytes:   checked.Bytes,
	ast.PrimCStr:    checked.CStr,
	ast.PrimStr:     checked.Str,
	ast.PrimUnit:    checked.Unit,
	ast.PrimNever:   checked.Never,
	ast.PrimAny:     checked.Any,
	ast.PrimObject:  checked.Object,
}

// resolveDataType converts a syntactic data type into a checked one,
// resolving custom names through the scope tree. Failures taint the result
// with Unknown after reporting.
func (a *Analyzer) resolveDataType(sc *scope.Scope, dt ast.DataType) checked.Dt {
	switch t := dt.(type) {
	case *ast.DtPrimitive:
		return checked.Prim(primMap[t.Kind])
	case *ast.DtSelf:
		return checked.Prim(checked.SelfT)
	case *ast.DtArray:
		out := &checked.Array{Elem: a.resolveDataType(sc, t.Elem)}
		switch t.Kind {
		case ast.ArraySized:
			out.Kind = checked.ArraySized
			if lit, ok := t.Size.(*ast.Literal); ok && (lit.Kind == ast.LitInt32 || lit.Kind == ast.LitInt64) {
				if lit.Int < 0 {
					a.errorf(diagnostic.ParseUsizeOutOfRange, t.Loc, "array size must be a non-negative integer")
					return &checked.Unknown{}
				}
				out.Size = lit.Int
			} else {
				a.errorf(diagnostic.ParseUsizeOutOfRange, t.Loc, "array size must be an integer literal")
				return &checked.Unknown{}
			}
		case ast.ArrayDynamic:
			out.Kind = checked.ArrayDynamic
		case ast.ArrayMultiPtr:
			out.Kind = checked.ArrayMultiPtr
		default:
			out.Kind = checked.ArrayUnknown
		}
		return out
	case *ast.DtTuple:
		elems := make([]checked.Dt, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = a.resolveDataType(sc, e)
		}
		return &checked.Tuple{Elems: elems}
	case *ast.DtList:
		return &checked.List{Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtLambda:
		params := make([]checked.Dt, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveDataType(sc, p)
		}
		return &checked.Lambda{Params: params, Return: a.resolveDataType(sc, t.Return)}
	case *ast.DtPtr:
		return &checked.Wrap{Kind: checked.WrapPtr, Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtRef:
		return &checked.Wrap{Kind: checked.WrapRef, Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtTrace:
		return &checked.Wrap{Kind: checked.WrapTrace, Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtMut:
		return &checked.Wrap{Kind: checked.WrapMut, Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtOptional:
		return &checked.Wrap{Kind: checked.WrapOptional, Elem: a.resolveDataType(sc, t.Elem)}
	case *ast.DtResult:
		out := &checked.Result{Ok: a.resolveDataType(sc, t.Ok)}
		for _, e := range t.Errs {
			out.Errs = append(out.Errs, a.resolveDataType(sc, e))
		}
		return out
	case *ast.DtCustom:
		return a.resolveCustom(sc, t)
	}
	return &checked.Unknown{}
}

// resolveCustom resolves a named type reference: generic parameter, alias
// instantiation, or custom user type.
func (a *Analyzer) resolveCustom(sc *scope.Scope, t *ast.DtCustom) checked.Dt {
	target := sc
	name := t.Path[0]

	// Walk module path prefixes.
	for i := 0; i < len(t.Path)-1; i++ {
		resp := target.Lookup(scope.SymModule, t.Path[i])
		if !resp.Found {
			a.errorf(diagnostic.AnaNameNotFound, t.Loc, "the module `%s` is not found", t.Path[i])
			return &checked.Unknown{}
		}
		target = resp.Entry.Decl.(*checked.Module).Scope
		name = t.Path[i+1]
	}

	var generics []checked.Dt
	for _, g := range t.Generics {
		generics = append(generics, a.resolveDataType(sc, g))
	}

	if len(t.Path) == 1 {
		if resp := target.Lookup(scope.SymGeneric, name); resp.Found {
			return &checked.Generic{Name: name}
		}
	}

	if resp := target.Lookup(scope.SymAlias, name); resp.Found {
		alias := resp.Entry.Decl.(*checked.Alias)
		if len(generics) != len(alias.Generics) {
			a.errorf(diagnostic.AnaGenericArity, t.Loc,
				"the alias `%s` expects %d generic params, got %d", name, len(alias.Generics), len(generics))
			return &checked.Unknown{}
		}
		if alias.Aliased == nil {
			// Self-referential alias cycle.
			a.errorf(diagnostic.AnaRecursiveType, t.Loc, "the alias `%s` is recursive", name)
			return &checked.Unknown{}
		}
		subst := map[string]checked.Dt{}
		for i, g := range alias.Generics {
			subst[g] = generics[i]
		}
		return alias.Aliased.Substitute(subst)
	}

	for _, kind := range []scope.SymbolKind{
		scope.SymRecord, scope.SymRecordObject, scope.SymEnum,
		scope.SymEnumObject, scope.SymClass, scope.SymTrait, scope.SymError,
	} {
		if resp := target.Lookup(kind, name); resp.Found {
			arity := declGenericArity(resp.Entry.Decl)
			if len(generics) != arity {
				a.errorf(diagnostic.AnaGenericArity, t.Loc,
					"the type `%s` expects %d generic params, got %d", name, arity, len(generics))
				return &checked.Unknown{}
			}
			return &checked.Custom{ScopeID: resp.Scope.ID, Name: name, Generics: generics}
		}
	}

	a.errorf(diagnostic.AnaNameNotFound, t.Loc, "the data type `%s` is not found", name)
	return &checked.Unknown{}
}

func declGenericArity(decl any) int {
	switch d := decl.(type) {
	case *checked.Record:
		return len(d.Generics)
	case *checked.Enum:
		return len(d.Generics)
	case *checked.Class:
		return len(d.Generics)
	case *checked.Trait:
		return len(d.Generics)
	}
	return 0
}
