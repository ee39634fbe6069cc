// Package preparser scans token streams into coarse declaration and block
// skeletons. Sub-part internals stay as raw token spans; the parser turns
// them into AST nodes later. The preparser also captures macro definitions
// and drives expansion at macro call sites.
package preparser

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// DeclKind is the coarse tag of a preparsed declaration.
type DeclKind int

const (
	DeclConstant DeclKind = iota
	DeclError
	DeclFun
	DeclModule
	DeclObject
	DeclType
	DeclUse
	DeclInclude
	DeclMacroExpand
)

func (k DeclKind) String() string {
	switch k {
	case DeclConstant:
		return "constant"
	case DeclError:
		return "error"
	case DeclFun:
		return "fun"
	case DeclModule:
		return "module"
	case DeclObject:
		return "object"
	case DeclType:
		return "type"
	case DeclUse:
		return "use"
	case DeclInclude:
		return "include"
	case DeclMacroExpand:
		return "macro-expand"
	}
	return "unknown"
}

// ObjectKind refines DeclObject and DeclType.
type ObjectKind int

const (
	ObjectNone ObjectKind = iota
	ObjectAlias
	ObjectEnum
	ObjectRecord
	ObjectClass
	ObjectTrait
	ObjectEnumObject
	ObjectRecordObject
)

// RawVariant is one enum variant kept as raw spans.
type RawVariant struct {
	Name token.Token
	Dt   []token.Token
}

// RawField is one record field or class attribute kept as raw spans.
type RawField struct {
	Vis  ast.Visibility
	Mut  bool
	Name token.Token
	Dt   []token.Token
	Init []token.Token
}

// Decl is a preparsed declaration skeleton. Which fields are populated
// depends on Kind; token spans are raw and unparsed.
type Decl struct {
	Kind       DeclKind
	ObjectKind ObjectKind
	Loc        position.Location
	Vis        ast.Visibility
	Name       token.Token
	Generics   []token.Token
	Params     []token.Token
	ReturnDt   []token.Token
	Expr       []token.Token
	AliasDt    []token.Token
	Body       []BodyItem
	Variants   []RawVariant
	Fields     []RawField
	Impls      []token.Token
	Items      []*Decl
	Path       []token.Token
	File       string
	MacroArgs  [][]token.Token
	IsOperator bool
}

// UseEdge records one use or include relation of the file.
type UseEdge struct {
	Include bool
	Path    []token.Token
	File    string
	Loc     position.Location
}

// Result is the preparser's output for one file.
type Result struct {
	Decls []*Decl
	Edges []UseEdge
}
