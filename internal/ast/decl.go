package ast

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// GenericParam is one generic parameter of a declaration, with an optional
// constraint path (T: Trait).
type GenericParam struct {
	Name       string
	Constraint []string
	Loc        position.Location
}

func (g GenericParam) String() string {
	if len(g.Constraint) > 0 {
		return g.Name + ": " + strings.Join(g.Constraint, ".")
	}
	return g.Name
}

// FunParam is one function parameter. Default is non-nil for a default
// value parameter.
type FunParam struct {
	Name    string
	Dt      DataType
	Default Expr
	Mut     bool
	Loc     position.Location
}

func (p FunParam) String() string {
	s := p.Name
	if p.Mut {
		s = "mut " + s
	}
	if p.Dt != nil {
		s += " " + p.Dt.String()
	}
	if p.Default != nil {
		s += " := " + p.Default.String()
	}
	return s
}

// FunDecl is a function or method declaration. IsOperator marks operator
// overloads (fun +(…)); Method marks declarations inside object bodies.
type FunDecl struct {
	Header
	Generics []GenericParam
	Params   []FunParam
	Return   DataType // nil = Unit
	Body     []Stmt
	IsOperator bool
	Method     bool
	Async      bool
}

func (d *FunDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	gen := ""
	if len(d.Generics) > 0 {
		gparts := make([]string, len(d.Generics))
		for i, g := range d.Generics {
			gparts[i] = g.String()
		}
		gen = "[" + strings.Join(gparts, ", ") + "]"
	}
	ret := ""
	if d.Return != nil {
		ret = " " + d.Return.String()
	}
	return fmt.Sprintf("fun %s%s(%s)%s %s", d.Name, gen, strings.Join(parts, ", "), ret, stmtBlock(d.Body))
}
func (d *FunDecl) declNode() {}

// ConstantDecl is val name [dt] = expr; at top level.
type ConstantDecl struct {
	Header
	Dt   DataType
	Init Expr
}

func (d *ConstantDecl) String() string {
	dt := ""
	if d.Dt != nil {
		dt = " " + d.Dt.String()
	}
	return fmt.Sprintf("val %s%s = %s;", d.Name, dt, d.Init)
}
func (d *ConstantDecl) declNode() {}

// ErrorDecl is error Name [dt];
type ErrorDecl struct {
	Header
	Generics []GenericParam
	Dt       DataType // payload; nil for unit errors
}

func (d *ErrorDecl) String() string {
	if d.Dt == nil {
		return fmt.Sprintf("error %s;", d.Name)
	}
	return fmt.Sprintf("error %s %s;", d.Name, d.Dt)
}
func (d *ErrorDecl) declNode() {}

// ModuleDecl is module Name { decls… }.
type ModuleDecl struct {
	Header
	Decls []Decl
}

func (d *ModuleDecl) String() string {
	parts := make([]string, len(d.Decls))
	for i, dd := range d.Decls {
		parts[i] = dd.String()
	}
	return fmt.Sprintf("module %s { %s }", d.Name, strings.Join(parts, " "))
}
func (d *ModuleDecl) declNode() {}

// AliasDecl is type Name[G…] = dt;
type AliasDecl struct {
	Header
	Generics []GenericParam
	Dt       DataType
}

func (d *AliasDecl) String() string {
	gen := ""
	if len(d.Generics) > 0 {
		parts := make([]string, len(d.Generics))
		for i, g := range d.Generics {
			parts[i] = g.String()
		}
		gen = "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("type %s%s = %s;", d.Name, gen, d.Dt)
}
func (d *AliasDecl) declNode() {}

// EnumVariant is one variant of an enum declaration.
type EnumVariant struct {
	Name string
	Dt   DataType // payload; nil for bare variants
	Loc  position.Location
}

// EnumDecl is type Name[G…] enum { V1, V2 dt, … } — optionally with a
// method body when declared as object enum.
type EnumDecl struct {
	Header
	Generics []GenericParam
	Variants []EnumVariant
	Methods  []*FunDecl // non-empty only for enum objects
	IsObject bool
}

func (d *EnumDecl) String() string {
	parts := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		if v.Dt != nil {
			parts[i] = v.Name + " " + v.Dt.String()
		} else {
			parts[i] = v.Name
		}
	}
	return fmt.Sprintf("type %s enum { %s }", d.Name, strings.Join(parts, ", "))
}
func (d *EnumDecl) declNode() {}

// RecordField is one field of a record declaration.
type RecordField struct {
	Name string
	Dt   DataType
	Vis  Visibility
	Mut  bool
	Loc  position.Location
}

// RecordDecl is type Name[G…] record { f dt, … } — optionally with methods
// when declared as object record.
type RecordDecl struct {
	Header
	Generics []GenericParam
	Fields   []RecordField
	Methods  []*FunDecl // non-empty only for record objects
	IsObject bool
}

func (d *RecordDecl) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.Name + " " + f.Dt.String()
	}
	return fmt.Sprintf("type %s record { %s }", d.Name, strings.Join(parts, ", "))
}
func (d *RecordDecl) declNode() {}

// ClassAttribute is one attribute of a class body.
type ClassAttribute struct {
	Name string
	Dt   DataType
	Vis  Visibility
	Init Expr
	Loc  position.Location
}

// ClassDecl is class Name[G…] [impl T1, T2] { attributes, methods }.
type ClassDecl struct {
	Header
	Generics   []GenericParam
	Impls      [][]string
	Attributes []ClassAttribute
	Methods    []*FunDecl
}

func (d *ClassDecl) String() string {
	return fmt.Sprintf("class %s { … }", d.Name)
}
func (d *ClassDecl) declNode() {}

// TraitPrototype is one required method of a trait.
type TraitPrototype struct {
	Name   string
	Params []FunParam
	Return DataType
	Loc    position.Location
}

// TraitDecl is trait Name[G…] { prototypes }.
type TraitDecl struct {
	Header
	Generics   []GenericParam
	Prototypes []TraitPrototype
}

func (d *TraitDecl) String() string {
	return fmt.Sprintf("trait %s { … }", d.Name)
}
func (d *TraitDecl) declNode() {}

// UseDecl is use a.b.c;
type UseDecl struct {
	Header
	Path []string
}

func (d *UseDecl) String() string { return "use " + strings.Join(d.Path, ".") + ";" }
func (d *UseDecl) declNode()      {}

// IncludeDecl is include "file";
type IncludeDecl struct {
	Header
	File string
}

func (d *IncludeDecl) String() string { return fmt.Sprintf("include %q;", d.File) }
func (d *IncludeDecl) declNode()      {}

// MacroExpandDecl is a macro invocation in declaration position; the
// argument token groups stay raw until the macro engine expands them.
type MacroExpandDecl struct {
	Header
	Args [][]token.Token
}

func (d *MacroExpandDecl) String() string {
	return fmt.Sprintf("%s!(%d args)", d.Name, len(d.Args))
}
func (d *MacroExpandDecl) declNode() {}
