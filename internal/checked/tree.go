package checked

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// Expr is a checked expression. Every checked node has exactly one
// resolved data type; compiler generics are resolved before MIR lowering.
type Expr interface {
	Dt() Dt
	Location() position.Location
	exprNode()
}

// Literal is a checked literal value.
type Literal struct {
	Kind  ast.LiteralKind
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Bool  bool
	Type  Dt
	Loc   position.Location
}

func (e *Literal) Dt() Dt                      { return e.Type }
func (e *Literal) Location() position.Location { return e.Loc }
func (e *Literal) exprNode()                   {}

// VarRef is a resolved reference to a variable, parameter or constant.
type VarRef struct {
	Name   string
	Entry  *scope.Entry
	Access scope.Access
	IsParam bool
	ParamIndex int
	Type   Dt
	Loc    position.Location
}

func (e *VarRef) Dt() Dt                      { return e.Type }
func (e *VarRef) Location() position.Location { return e.Loc }
func (e *VarRef) exprNode()                   {}

// Binary is a checked binary operation. Operator is nil for built-in
// primitive operators and set for user overloads.
type Binary struct {
	Op       string
	Left     Expr
	Right    Expr
	Operator *Operator
	Type     Dt
	Loc      position.Location
}

func (e *Binary) Dt() Dt                      { return e.Type }
func (e *Binary) Location() position.Location { return e.Loc }
func (e *Binary) exprNode()                   {}

// Unary is a checked unary operation.
type Unary struct {
	Op       string
	Operand  Expr
	Operator *Operator
	Type     Dt
	Loc      position.Location
}

func (e *Unary) Dt() Dt                      { return e.Type }
func (e *Unary) Location() position.Location { return e.Loc }
func (e *Unary) exprNode()                   {}

// Call is a checked function call. Fun is set for direct calls; Callee
// for indirect calls through a lambda-typed value.
type Call struct {
	Fun    *Fun
	Callee Expr
	Sig    *Signature
	Args   []Expr
	Type   Dt
	Loc    position.Location
}

func (e *Call) Dt() Dt                      { return e.Type }
func (e *Call) Location() position.Location { return e.Loc }
func (e *Call) exprNode()                   {}

// FieldValue is one field of a checked record construction, in the order
// the call lists them; Index is the field's declared position.
type FieldValue struct {
	Name  string
	Index int
	Value Expr
}

// RecordCall constructs a record value.
type RecordCall struct {
	Record *Record
	Fields []FieldValue
	Type   Dt
	Loc    position.Location
}

func (e *RecordCall) Dt() Dt                      { return e.Type }
func (e *RecordCall) Location() position.Location { return e.Loc }
func (e *RecordCall) exprNode()                   {}

// VariantCall constructs an enum variant value.
type VariantCall struct {
	Enum    *Enum
	Variant int
	Value   Expr // nil for value-less variants
	Type    Dt
	Loc     position.Location
}

func (e *VariantCall) Dt() Dt                      { return e.Type }
func (e *VariantCall) Location() position.Location { return e.Loc }
func (e *VariantCall) exprNode()                   {}

// ErrorRef references a declared error, e.g. as a raise operand.
type ErrorRef struct {
	Error *ErrorDecl
	Value Expr // payload; nil for unit errors
	Type  Dt
	Loc   position.Location
}

func (e *ErrorRef) Dt() Dt                      { return e.Type }
func (e *ErrorRef) Location() position.Location { return e.Loc }
func (e *ErrorRef) exprNode()                   {}

// If is a checked if expression.
type If struct {
	Cond  Expr
	Then  Expr
	Elifs []IfArm
	Else  Expr
	Type  Dt
	Loc   position.Location
}

// IfArm is one elif arm.
type IfArm struct {
	Cond Expr
	Then Expr
}

func (e *If) Dt() Dt                      { return e.Type }
func (e *If) Location() position.Location { return e.Loc }
func (e *If) exprNode()                   {}

// MatchArm is one checked match arm.
type MatchArm struct {
	Pattern  Pattern
	Guard    Expr
	Body     Expr
	Scope    *scope.Scope
}

// Match is a checked match expression.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Exhaustive bool
	Type      Dt
	Loc       position.Location
}

func (e *Match) Dt() Dt                      { return e.Type }
func (e *Match) Location() position.Location { return e.Loc }
func (e *Match) exprNode()                   {}

// TupleExpr builds a tuple value.
type TupleExpr struct {
	Elems []Expr
	Type  Dt
	Loc   position.Location
}

func (e *TupleExpr) Dt() Dt                      { return e.Type }
func (e *TupleExpr) Location() position.Location { return e.Loc }
func (e *TupleExpr) exprNode()                   {}

// ArrayExpr builds an array value.
type ArrayExpr struct {
	Elems []Expr
	Type  Dt
	Loc   position.Location
}

func (e *ArrayExpr) Dt() Dt                      { return e.Type }
func (e *ArrayExpr) Location() position.Location { return e.Loc }
func (e *ArrayExpr) exprNode()                   {}

// ListExpr builds a list value.
type ListExpr struct {
	Elems []Expr
	Type  Dt
	Loc   position.Location
}

func (e *ListExpr) Dt() Dt                      { return e.Type }
func (e *ListExpr) Location() position.Location { return e.Loc }
func (e *ListExpr) exprNode()                   {}

// FieldAccess reads a record field.
type FieldAccess struct {
	Base  Expr
	Name  string
	Index int
	Type  Dt
	Loc   position.Location
}

func (e *FieldAccess) Dt() Dt                      { return e.Type }
func (e *FieldAccess) Location() position.Location { return e.Loc }
func (e *FieldAccess) exprNode()                   {}

// IndexAccess reads an array or list element.
type IndexAccess struct {
	Base  Expr
	Index Expr
	Type  Dt
	Loc   position.Location
}

func (e *IndexAccess) Dt() Dt                      { return e.Type }
func (e *IndexAccess) Location() position.Location { return e.Loc }
func (e *IndexAccess) exprNode()                   {}

// CastExpr converts between primitive types.
type CastExpr struct {
	Value Expr
	Type  Dt
	Loc   position.Location
}

func (e *CastExpr) Dt() Dt                      { return e.Type }
func (e *CastExpr) Location() position.Location { return e.Loc }
func (e *CastExpr) exprNode()                   {}

// LambdaExpr is a checked lambda literal; Fun carries the synthesized
// function body.
type LambdaExpr struct {
	Fun  *Fun
	Type Dt
	Loc  position.Location
}

func (e *LambdaExpr) Dt() Dt                      { return e.Type }
func (e *LambdaExpr) Location() position.Location { return e.Loc }
func (e *LambdaExpr) exprNode()                   {}

// UnknownExpr is the tainted expression produced when analysis fails; the
// enclosing declaration never reaches MIR lowering.
type UnknownExpr struct {
	Loc position.Location
}

func (e *UnknownExpr) Dt() Dt                      { return &Unknown{} }
func (e *UnknownExpr) Location() position.Location { return e.Loc }
func (e *UnknownExpr) exprNode()                   {}
