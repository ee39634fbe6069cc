// Package ast defines the abstract syntax produced by the parser: separate
// sum types for data types, expressions, patterns, statements and
// declarations. Every node owns a Location inside its producing file.
package ast

import (
	"github.com/lily-lang/lilyc/internal/position"
)

// Node is the base interface for all AST nodes.
type Node interface {
	String() string
	Location() position.Location
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a pattern node.
type Pattern interface {
	Node
	patternNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// DataType is a syntactic data type node.
type DataType interface {
	Node
	dataTypeNode()
}

// Decl is a top-level or body declaration node.
type Decl interface {
	Node
	declNode()
}

// Visibility of a declaration.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Header is the small common header shared by declaration kinds. GlobalName
// is the flattened, mangled identifier unique within a package; it is
// assigned by the analyzer.
type Header struct {
	Loc        position.Location
	Vis        Visibility
	Name       string
	GlobalName string
}

func (h *Header) Location() position.Location { return h.Loc }
