// Package analysis builds scopes, resolves names, infers and checks data
// types, resolves overloaded operators, and produces the typed tree the
// MIR builder lowers. The analyzer is tolerant: errors taint the affected
// node with an unknown type and analysis continues.
package analysis

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// Analyzer checks one package's parsed declarations.
type Analyzer struct {
	sink *diagnostic.Sink
	tree *scope.Tree
	ops  *checked.OperatorRegister
	sigs *checked.SignatureStore

	// Compiler-generic arena: each variable carries a unique id and is
	// bound at most once per analysis frame.
	nextCG   int
	bindings map[int]checked.Dt

	modulePath []string
}

// New creates an analyzer for one package.
func New(sink *diagnostic.Sink) *Analyzer {
	return &Analyzer{
		sink:     sink,
		tree:     scope.NewTree(),
		ops:      checked.NewOperatorRegister(),
		sigs:     checked.NewSignatureStore(),
		bindings: map[int]checked.Dt{},
	}
}

// Tree returns the scope tree built by the analyzer.
func (a *Analyzer) Tree() *scope.Tree { return a.tree }

// Operators returns the package-wide operator register.
func (a *Analyzer) Operators() *checked.OperatorRegister { return a.ops }

// Signatures returns the instantiated-signature store.
func (a *Analyzer) Signatures() *checked.SignatureStore { return a.sigs }

// Analyze runs the two passes over a file's declarations: declare names
// and resolve signatures, then check bodies.
func (a *Analyzer) Analyze(decls []ast.Decl) []checked.Decl {
	root := a.tree.Root
	out := a.declareAll(root, decls)
	a.checkAll(root, decls, out)
	return out
}

// globalName flattens the current module path and a name into the mangled
// identifier unique within the package.
func (a *Analyzer) globalName(name string) string {
	if len(a.modulePath) == 0 {
		return name
	}
	return strings.Join(a.modulePath, ".") + "." + name
}

// declareAll registers every declaration's name and resolves its signature
// types, so later declarations can reference earlier and later ones alike.
// Names are all registered before any signature resolves, which keeps name
// resolution order-independent.
func (a *Analyzer) declareAll(sc *scope.Scope, decls []ast.Decl) []checked.Decl {
	shells := a.declareShells(sc, decls)
	out := make([]checked.Decl, 0, len(decls))
	for i, d := range decls {
		if shells[i] != nil {
			a.resolveSignature(sc, d, shells[i])
			out = append(out, shells[i])
		}
	}
	return out
}

// declareShells registers names only; signatures resolve in a second pass.
func (a *Analyzer) declareShells(sc *scope.Scope, decls []ast.Decl) []checked.Decl {
	shells := make([]checked.Decl, len(decls))
	for i, d := range decls {
		shells[i] = a.declare(sc, d)
	}
	return shells
}

func (a *Analyzer) declare(sc *scope.Scope, d ast.Decl) checked.Decl {
	switch decl := d.(type) {
	case *ast.FunDecl:
		f := &checked.Fun{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			IsOperator: decl.IsOperator,
			Method:     decl.Method,
			Loc:        decl.Loc,
		}
		f.Scope = a.tree.NewScope(sc, scope.KindFun)
		if !decl.IsOperator {
			a.add(sc, scope.SymFun, decl.Name, f, decl.Loc)
		}
		return f
	case *ast.ConstantDecl:
		c := &checked.Constant{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Loc:        decl.Loc,
		}
		a.add(sc, scope.SymConstant, decl.Name, c, decl.Loc)
		return c
	case *ast.RecordDecl:
		r := &checked.Record{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			IsObject:   decl.IsObject,
			Loc:        decl.Loc,
		}
		r.Scope = a.tree.NewScope(sc, scope.KindRecord)
		kind := scope.SymRecord
		if decl.IsObject {
			kind = scope.SymRecordObject
		}
		a.add(sc, kind, decl.Name, r, decl.Loc)
		return r
	case *ast.EnumDecl:
		e := &checked.Enum{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			IsObject:   decl.IsObject,
			Loc:        decl.Loc,
		}
		e.Scope = a.tree.NewScope(sc, scope.KindEnum)
		kind := scope.SymEnum
		if decl.IsObject {
			kind = scope.SymEnumObject
		}
		a.add(sc, kind, decl.Name, e, decl.Loc)
		return e
	case *ast.AliasDecl:
		al := &checked.Alias{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Loc:        decl.Loc,
		}
		a.add(sc, scope.SymAlias, decl.Name, al, decl.Loc)
		return al
	case *ast.ErrorDecl:
		e := &checked.ErrorDecl{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Loc:        decl.Loc,
		}
		a.add(sc, scope.SymError, decl.Name, e, decl.Loc)
		return e
	case *ast.ModuleDecl:
		m := &checked.Module{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Loc:        decl.Loc,
		}
		m.Scope = a.tree.NewScope(sc, scope.KindModule)
		a.add(sc, scope.SymModule, decl.Name, m, decl.Loc)
		a.modulePath = append(a.modulePath, decl.Name)
		// Children are declared here and resolved with the module's own
		// signature pass; Decls holds nil slots until then.
		m.Decls = a.declareShells(m.Scope, decl.Decls)
		a.modulePath = a.modulePath[:len(a.modulePath)-1]
		return m
	case *ast.ClassDecl:
		c := &checked.Class{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Impls:      decl.Impls,
			Loc:        decl.Loc,
		}
		c.Scope = a.tree.NewScope(sc, scope.KindClass)
		a.add(sc, scope.SymClass, decl.Name, c, decl.Loc)
		return c
	case *ast.TraitDecl:
		t := &checked.Trait{
			Name:       decl.Name,
			GlobalName: a.globalName(decl.Name),
			Vis:        decl.Vis,
			Loc:        decl.Loc,
		}
		t.Scope = a.tree.NewScope(sc, scope.KindTrait)
		a.add(sc, scope.SymTrait, decl.Name, t, decl.Loc)
		return t
	case *ast.UseDecl, *ast.IncludeDecl, *ast.MacroExpandDecl:
		// Use/include edges are the pipeline's concern; unexpanded macro
		// calls never reach a checked tree.
		return nil
	}
	return nil
}

// add registers a symbol and reports duplicates.
func (a *Analyzer) add(sc *scope.Scope, kind scope.SymbolKind, name string, decl any, loc position.Location) {
	if _, err := sc.Add(kind, name, decl); err != nil {
		a.sink.Error(diagnostic.AnaDuplicateName, loc, err.Error())
	}
}

// resolveSignature fills the type parts of a declared shell.
func (a *Analyzer) resolveSignature(sc *scope.Scope, d ast.Decl, shell checked.Decl) {
	switch decl := d.(type) {
	case *ast.FunDecl:
		a.resolveFunSignature(sc, decl, shell.(*checked.Fun))
	case *ast.ConstantDecl:
		c := shell.(*checked.Constant)
		if decl.Dt != nil {
			c.Type = a.resolveDataType(sc, decl.Dt)
		}
	case *ast.RecordDecl:
		r := shell.(*checked.Record)
		for _, g := range decl.Generics {
			r.Generics = append(r.Generics, g.Name)
			a.addGeneric(r.Scope, g)
		}
		for _, f := range decl.Fields {
			r.Fields = append(r.Fields, checked.Field{
				Name: f.Name,
				Type: a.resolveDataType(r.Scope, f.Dt),
				Vis:  f.Vis,
				Mut:  f.Mut,
				Loc:  f.Loc,
			})
		}
		for _, m := range decl.Methods {
			f := a.declare(r.Scope, m).(*checked.Fun)
			a.resolveFunSignature(r.Scope, m, f)
			r.Methods = append(r.Methods, f)
		}
	case *ast.EnumDecl:
		e := shell.(*checked.Enum)
		for _, g := range decl.Generics {
			e.Generics = append(e.Generics, g.Name)
			a.addGeneric(e.Scope, g)
		}
		for _, v := range decl.Variants {
			variant := checked.Variant{Name: v.Name, Loc: v.Loc}
			if v.Dt != nil {
				variant.Type = a.resolveDataType(e.Scope, v.Dt)
			}
			e.Variants = append(e.Variants, variant)
		}
		for _, m := range decl.Methods {
			f := a.declare(e.Scope, m).(*checked.Fun)
			a.resolveFunSignature(e.Scope, m, f)
			e.Methods = append(e.Methods, f)
		}
	case *ast.AliasDecl:
		al := shell.(*checked.Alias)
		aliasScope := a.tree.NewScope(sc, scope.KindBlock)
		for _, g := range decl.Generics {
			al.Generics = append(al.Generics, g.Name)
			a.addGeneric(aliasScope, g)
		}
		al.Aliased = a.resolveDataType(aliasScope, decl.Dt)
	case *ast.ErrorDecl:
		e := shell.(*checked.ErrorDecl)
		if decl.Dt != nil {
			e.Payload = a.resolveDataType(sc, decl.Dt)
		}
	case *ast.ModuleDecl:
		m := shell.(*checked.Module)
		a.modulePath = append(a.modulePath, decl.Name)
		for i, sub := range decl.Decls {
			if i < len(m.Decls) && m.Decls[i] != nil {
				a.resolveSignature(m.Scope, sub, m.Decls[i])
			}
		}
		a.modulePath = a.modulePath[:len(a.modulePath)-1]
		// Drop the slots of decls that produce no checked node.
		kept := m.Decls[:0]
		for _, d := range m.Decls {
			if d != nil {
				kept = append(kept, d)
			}
		}
		m.Decls = kept
	case *ast.ClassDecl:
		c := shell.(*checked.Class)
		for _, g := range decl.Generics {
			c.Generics = append(c.Generics, g.Name)
			a.addGeneric(c.Scope, g)
		}
		for _, attr := range decl.Attributes {
			f := checked.Field{Name: attr.Name, Vis: attr.Vis, Loc: attr.Loc}
			if attr.Dt != nil {
				f.Type = a.resolveDataType(c.Scope, attr.Dt)
			}
			c.Attributes = append(c.Attributes, f)
		}
		for _, m := range decl.Methods {
			f := a.declare(c.Scope, m).(*checked.Fun)
			a.resolveFunSignature(c.Scope, m, f)
			c.Methods = append(c.Methods, f)
		}
	case *ast.TraitDecl:
		t := shell.(*checked.Trait)
		for _, g := range decl.Generics {
			t.Generics = append(t.Generics, g.Name)
			a.addGeneric(t.Scope, g)
		}
		for _, proto := range decl.Prototypes {
			p := checked.Prototype{Name: proto.Name, Loc: proto.Loc}
			for _, param := range proto.Params {
				if param.Dt != nil {
					p.Params = append(p.Params, a.resolveDataType(t.Scope, param.Dt))
				}
			}
			if proto.Return != nil {
				p.Return = a.resolveDataType(t.Scope, proto.Return)
			} else {
				p.Return = checked.Prim(checked.Unit)
			}
			t.Prototypes = append(t.Prototypes, p)
		}
	}
}

// addGeneric registers a generic parameter; generics shadow outer names
// within their owning declaration's scope.
func (a *Analyzer) addGeneric(sc *scope.Scope, g ast.GenericParam) {
	if _, err := sc.Add(scope.SymGeneric, g.Name, g); err != nil {
		a.sink.Error(diagnostic.AnaDuplicateName, g.Loc, err.Error())
	}
}

func (a *Analyzer) resolveFunSignature(sc *scope.Scope, decl *ast.FunDecl, f *checked.Fun) {
	for _, g := range decl.Generics {
		f.Generics = append(f.Generics, g.Name)
		a.addGeneric(f.Scope, g)
	}
	for i, p := range decl.Params {
		param := checked.Param{Name: p.Name, Index: i, Loc: p.Loc}
		if p.Dt != nil {
			param.Type = a.resolveDataType(f.Scope, p.Dt)
		} else if p.Name == "self" {
			param.Type = checked.Prim(checked.SelfT)
		} else {
			param.Type = &checked.Unknown{}
		}
		if p.Default != nil {
			def := a.checkExpr(f.Scope, p.Default)
			if !a.unify(param.Type, def.Dt()) {
				a.typeMismatch(p.Default.Location(), param.Type, def.Dt())
			}
			param.Default = def
		}
		f.Params = append(f.Params, param)
	}
	if decl.Return != nil {
		f.Return = a.resolveDataType(f.Scope, decl.Return)
	} else {
		f.Return = checked.Prim(checked.Unit)
	}
	if decl.IsOperator {
		sig := make([]checked.Dt, 0, len(f.Params)+1)
		for _, p := range f.Params {
			sig = append(sig, p.Type)
		}
		sig = append(sig, f.Return)
		op := &checked.Operator{Name: decl.Name, Signature: sig}
		if err := a.ops.Add(op); err != nil {
			a.sink.Error(diagnostic.AnaDuplicateOperator, decl.Loc, err.Error())
		}
	}
}

// checkAll runs the body-checking pass.
func (a *Analyzer) checkAll(sc *scope.Scope, decls []ast.Decl, shells []checked.Decl) {
	i := 0
	for _, d := range decls {
		shell := a.shellFor(d, shells, &i)
		if shell == nil {
			continue
		}
		a.checkDecl(sc, d, shell)
	}
}

// shellFor pairs an AST decl with its shell, skipping decls that produced
// none (use/include).
func (a *Analyzer) shellFor(d ast.Decl, shells []checked.Decl, i *int) checked.Decl {
	switch d.(type) {
	case *ast.UseDecl, *ast.IncludeDecl, *ast.MacroExpandDecl:
		return nil
	}
	if *i >= len(shells) {
		return nil
	}
	shell := shells[*i]
	*i++
	return shell
}

func (a *Analyzer) checkDecl(sc *scope.Scope, d ast.Decl, shell checked.Decl) {
	switch decl := d.(type) {
	case *ast.FunDecl:
		a.checkFunBody(decl, shell.(*checked.Fun))
	case *ast.ConstantDecl:
		c := shell.(*checked.Constant)
		init := a.checkExpr(sc, decl.Init)
		if c.Type == nil {
			c.Type = init.Dt()
		} else if !a.unify(c.Type, init.Dt()) {
			a.typeMismatch(decl.Init.Location(), c.Type, init.Dt())
		}
		c.Init = init
	case *ast.ModuleDecl:
		m := shell.(*checked.Module)
		a.checkAll(m.Scope, decl.Decls, m.Decls)
	case *ast.RecordDecl:
		r := shell.(*checked.Record)
		for i, m := range decl.Methods {
			if i < len(r.Methods) {
				a.checkFunBody(m, r.Methods[i])
			}
		}
	case *ast.EnumDecl:
		e := shell.(*checked.Enum)
		for i, m := range decl.Methods {
			if i < len(e.Methods) {
				a.checkFunBody(m, e.Methods[i])
			}
		}
	case *ast.ClassDecl:
		c := shell.(*checked.Class)
		for i, m := range decl.Methods {
			if i < len(c.Methods) {
				a.checkFunBody(m, c.Methods[i])
			}
		}
	}
}

func (a *Analyzer) checkFunBody(decl *ast.FunDecl, f *checked.Fun) {
	for i := range f.Params {
		p := &f.Params[i]
		entry, err := f.Scope.Add(scope.SymVariable, p.Name, p)
		if err != nil {
			a.sink.Error(diagnostic.AnaDuplicateName, p.Loc, err.Error())
			continue
		}
		p.Entry = entry
	}
	f.Body = a.checkStmts(f.Scope, decl.Body, f)
}

// typeMismatch reports a unification failure unless either side is
// already tainted, which keeps error cascades quiet.
func (a *Analyzer) typeMismatch(loc position.Location, want, got checked.Dt) {
	if checked.IsUnknown(want) || checked.IsUnknown(got) {
		return
	}
	a.errorf(diagnostic.AnaTypeMismatch, loc,
		"expected `%s`, found `%s`", want, got)
}

// errorf is the shared report helper.
func (a *Analyzer) errorf(code string, loc position.Location, format string, args ...any) {
	a.sink.Error(code, loc, fmt.Sprintf(format, args...))
}
