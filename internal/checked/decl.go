package checked

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// Decl is a checked declaration.
type Decl interface {
	Location() position.Location
	declNode()
}

// Param is one checked function parameter. Index is the parameter's
// position in the owning function.
type Param struct {
	Name    string
	Index   int
	Type    Dt
	Entry   *scope.Entry
	Default Expr
	Loc     position.Location
}

// Fun is a checked function or method.
type Fun struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Params     []Param
	Return     Dt
	Body       []Stmt
	Scope      *scope.Scope
	IsOperator bool
	Method     bool
	Loc        position.Location
}

func (d *Fun) Location() position.Location { return d.Loc }
func (d *Fun) declNode()                   {}

// Constant is a checked top-level constant.
type Constant struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Type       Dt
	Init       Expr
	Loc        position.Location
}

func (d *Constant) Location() position.Location { return d.Loc }
func (d *Constant) declNode()                   {}

// Field is one checked record field.
type Field struct {
	Name string
	Type Dt
	Vis  ast.Visibility
	Mut  bool
	Loc  position.Location
}

// Record is a checked record declaration.
type Record struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Fields     []Field
	Methods    []*Fun
	Scope      *scope.Scope
	IsObject   bool
	Loc        position.Location
}

func (d *Record) Location() position.Location { return d.Loc }
func (d *Record) declNode()                   {}

// FieldIndex returns the declared index of a field, or -1.
func (d *Record) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Variant is one checked enum variant.
type Variant struct {
	Name string
	Type Dt // payload; nil for bare variants
	Loc  position.Location
}

// Enum is a checked enum declaration.
type Enum struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Variants   []Variant
	Methods    []*Fun
	Scope      *scope.Scope
	IsObject   bool
	Loc        position.Location
}

func (d *Enum) Location() position.Location { return d.Loc }
func (d *Enum) declNode()                   {}

// VariantIndex returns the declared index of a variant, or -1.
func (d *Enum) VariantIndex(name string) int {
	for i, v := range d.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Alias is a checked type alias. Aliased is the fully parsed right side
// with the alias's generics kept as Generic types.
type Alias struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Aliased    Dt
	Loc        position.Location
}

func (d *Alias) Location() position.Location { return d.Loc }
func (d *Alias) declNode()                   {}

// ErrorDecl is a checked error declaration.
type ErrorDecl struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Payload    Dt // nil for unit errors
	Loc        position.Location
}

func (d *ErrorDecl) Location() position.Location { return d.Loc }
func (d *ErrorDecl) declNode()                   {}

// Module is a checked module with its own scope.
type Module struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Decls      []Decl
	Scope      *scope.Scope
	Loc        position.Location
}

func (d *Module) Location() position.Location { return d.Loc }
func (d *Module) declNode()                   {}

// Class is a checked class declaration.
type Class struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Impls      [][]string
	Attributes []Field
	Methods    []*Fun
	Scope      *scope.Scope
	Loc        position.Location
}

func (d *Class) Location() position.Location { return d.Loc }
func (d *Class) declNode()                   {}

// Trait is a checked trait declaration.
type Trait struct {
	Name       string
	GlobalName string
	Vis        ast.Visibility
	Generics   []string
	Prototypes []Prototype
	Scope      *scope.Scope
	Loc        position.Location
}

// Prototype is one required trait method.
type Prototype struct {
	Name   string
	Params []Dt
	Return Dt
	Loc    position.Location
}

func (d *Trait) Location() position.Location { return d.Loc }
func (d *Trait) declNode()                   {}
