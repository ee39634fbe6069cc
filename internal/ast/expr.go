package ast

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// Identifier is a plain name in expression position.
type Identifier struct {
	Name string
	Loc  position.Location
}

func (i *Identifier) String() string              { return i.Name }
func (i *Identifier) Location() position.Location { return i.Loc }
func (i *Identifier) exprNode()                   {}

// LiteralKind tags a Literal.
type LiteralKind int

const (
	LitInt32 LiteralKind = iota
	LitInt64
	LitFloat64
	LitSuffixed // fixed-width variant in Suffix
	LitStr
	LitCStr
	LitChar
	LitByte
	LitBytes
	LitBool
	LitUnit
	LitNil
	LitUndef
	LitNone
)

// Literal is a literal value. Exactly one of Int, Uint, Float, Str, Bool is
// meaningful depending on Kind; Uint holds unsigned suffixed literals.
type Literal struct {
	Kind   LiteralKind
	Suffix token.SuffixKind
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Bool   bool
	Loc    position.Location
}

func (l *Literal) String() string {
	switch l.Kind {
	case LitInt32, LitInt64:
		return fmt.Sprintf("%d", l.Int)
	case LitSuffixed:
		switch l.Suffix {
		case token.SuffixF32, token.SuffixF64:
			return fmt.Sprintf("%g%s", l.Float, l.Suffix)
		case token.SuffixU8, token.SuffixU16, token.SuffixU32, token.SuffixU64, token.SuffixUsize:
			return fmt.Sprintf("%d%s", l.Uint, l.Suffix)
		default:
			return fmt.Sprintf("%d%s", l.Int, l.Suffix)
		}
	case LitFloat64:
		return fmt.Sprintf("%g", l.Float)
	case LitStr:
		return fmt.Sprintf("%q", l.Str)
	case LitCStr:
		return "c" + fmt.Sprintf("%q", l.Str)
	case LitChar:
		return fmt.Sprintf("'%s'", l.Str)
	case LitByte:
		return fmt.Sprintf("b'%s'", l.Str)
	case LitBytes:
		return "b" + fmt.Sprintf("%q", l.Str)
	case LitBool:
		return fmt.Sprintf("%t", l.Bool)
	case LitUnit:
		return "()"
	case LitNil:
		return "nil"
	case LitUndef:
		return "undef"
	case LitNone:
		return "none"
	}
	return "<literal>"
}
func (l *Literal) Location() position.Location { return l.Loc }
func (l *Literal) exprNode()                   {}
func (l *Literal) patternNode()                {}

// Binary is a binary operator application. Op is the operator token kind;
// user-defined operators keep their spelling in OpLit.
type Binary struct {
	Left  Expr
	Op    token.Kind
	OpLit string
	Right Expr
	Loc   position.Location
}

// OpString returns the operator spelling.
func (b *Binary) OpString() string {
	if b.OpLit != "" {
		return b.OpLit
	}
	return b.Op.String()
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.OpString(), b.Right)
}
func (b *Binary) Location() position.Location { return b.Loc }
func (b *Binary) exprNode()                   {}

// Unary is a prefix operator application.
type Unary struct {
	Op      token.Kind
	Operand Expr
	Loc     position.Location
}

func (u *Unary) String() string {
	if u.Op == token.KwNot {
		return fmt.Sprintf("(not %s)", u.Operand)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.Operand)
}
func (u *Unary) Location() position.Location { return u.Loc }
func (u *Unary) exprNode()                   {}

// AccessKind is the typed tag every access expression carries.
type AccessKind int

const (
	AccessPath   AccessKind = iota // a.b.c
	AccessHook                     // a[i]
	AccessObject                   // A.@Obj or A@Obj
	AccessGlobal                   // Global.x
	AccessSelf                     // self.x
)

func (k AccessKind) String() string {
	switch k {
	case AccessPath:
		return "path"
	case AccessHook:
		return "hook"
	case AccessObject:
		return "object"
	case AccessGlobal:
		return "global"
	case AccessSelf:
		return "self"
	}
	return "unknown"
}

// Access is a field, element, object or global access. For AccessHook the
// Index holds the bracketed expression; for the path kinds Segments holds
// the left-associated chain. Only identifier-like heads may start a path.
type Access struct {
	Kind     AccessKind
	Base     Expr
	Segments []Expr
	Index    Expr
	Loc      position.Location
}

func (a *Access) String() string {
	switch a.Kind {
	case AccessHook:
		return fmt.Sprintf("%s[%s]", a.Base, a.Index)
	case AccessObject:
		parts := make([]string, len(a.Segments))
		for i, s := range a.Segments {
			parts[i] = "@" + s.String()
		}
		return a.Base.String() + strings.Join(parts, "")
	default:
		parts := []string{a.Base.String()}
		for _, s := range a.Segments {
			parts = append(parts, s.String())
		}
		return strings.Join(parts, ".")
	}
}
func (a *Access) Location() position.Location { return a.Loc }
func (a *Access) exprNode()                   {}

// CallKind discriminates the call variants under the common call node.
type CallKind int

const (
	CallFun CallKind = iota
	CallRecord
	CallVariant
	CallLambda
	CallSys
	CallBuiltin
)

// Arg is one call argument; Name is non-empty for default-named arguments
// (name := expr).
type Arg struct {
	Name  string
	Value Expr
	Loc   position.Location
}

func (a Arg) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s := %s", a.Name, a.Value)
	}
	return a.Value.String()
}

// FieldInit is one field initializer of a record call.
type FieldInit struct {
	Name  string
	Value Expr
	Loc   position.Location
}

// Call is the common call node. The meaning of the fields depends on Kind:
//
//	CallFun:     Callee(args…) with optional ::[generics]
//	CallRecord:  Callee{f := v, …}          (Fields)
//	CallVariant: Callee:Value, or Callee:$  (Value == nil)
//	CallLambda:  Lambda(args…)
//	CallSys:     @sys.name(args…)
//	CallBuiltin: @builtin.name(args…)
type Call struct {
	Kind     CallKind
	Callee   Expr
	Lambda   *Lambda
	Generics []DataType
	Args     []Arg
	Fields   []FieldInit
	Value    Expr
	Loc      position.Location
}

func (c *Call) String() string {
	switch c.Kind {
	case CallRecord:
		parts := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			parts[i] = fmt.Sprintf("%s := %s", f.Name, f.Value)
		}
		return fmt.Sprintf("%s{%s}", c.Callee, strings.Join(parts, ", "))
	case CallVariant:
		if c.Value == nil {
			return c.Callee.String() + ":$"
		}
		return fmt.Sprintf("%s:%s", c.Callee, c.Value)
	case CallLambda:
		return fmt.Sprintf("(%s)(%s)", c.Lambda, joinArgs(c.Args))
	case CallSys:
		return fmt.Sprintf("@sys.%s(%s)", c.Callee, joinArgs(c.Args))
	case CallBuiltin:
		return fmt.Sprintf("@builtin.%s(%s)", c.Callee, joinArgs(c.Args))
	default:
		s := c.Callee.String()
		if len(c.Generics) > 0 {
			parts := make([]string, len(c.Generics))
			for i, g := range c.Generics {
				parts[i] = g.String()
			}
			s += "::[" + strings.Join(parts, ", ") + "]"
		}
		return fmt.Sprintf("%s(%s)", s, joinArgs(c.Args))
	}
}
func (c *Call) Location() position.Location { return c.Loc }
func (c *Call) exprNode()                   {}

func joinArgs(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// LambdaParam is one parameter of a lambda literal.
type LambdaParam struct {
	Name string
	Dt   DataType
	Loc  position.Location
}

// Lambda is (fun (params) ret = body) or (fun (params) ret { … }).
type Lambda struct {
	Params []LambdaParam
	Return DataType
	Body   []Stmt
	Loc    position.Location
}

func (l *Lambda) String() string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		if p.Dt != nil {
			parts[i] = p.Name + " " + p.Dt.String()
		} else {
			parts[i] = p.Name
		}
	}
	ret := ""
	if l.Return != nil {
		ret = " " + l.Return.String()
	}
	return fmt.Sprintf("fun (%s)%s", strings.Join(parts, ", "), ret)
}
func (l *Lambda) Location() position.Location { return l.Loc }
func (l *Lambda) exprNode()                   {}

// ElifBranch is one elif arm of an if expression.
type ElifBranch struct {
	Cond Expr
	Then Expr
}

// If is the expression form: if c do a elif c2 do b else c.
type If struct {
	Cond  Expr
	Then  Expr
	Elifs []ElifBranch
	Else  Expr
	Loc   position.Location
}

func (e *If) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if %s do %s", e.Cond, e.Then)
	for _, el := range e.Elifs {
		fmt.Fprintf(&b, " elif %s do %s", el.Cond, el.Then)
	}
	if e.Else != nil {
		fmt.Fprintf(&b, " else %s", e.Else)
	}
	return b.String()
}
func (e *If) Location() position.Location { return e.Loc }
func (e *If) exprNode()                   {}

// MatchArm is one arm of a match expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr
	Body    Expr
	Loc     position.Location
}

// Match is the expression form of match.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Loc       position.Location
}

func (m *Match) String() string {
	parts := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		if a.Guard != nil {
			parts[i] = fmt.Sprintf("%s if %s => %s", a.Pattern, a.Guard, a.Body)
		} else {
			parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Body)
		}
	}
	return fmt.Sprintf("match %s { %s }", m.Scrutinee, strings.Join(parts, ", "))
}
func (m *Match) Location() position.Location { return m.Loc }
func (m *Match) exprNode()                   {}

// Tuple is (a, b, …) with at least two elements.
type Tuple struct {
	Elems []Expr
	Loc   position.Location
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) Location() position.Location { return t.Loc }
func (t *Tuple) exprNode()                   {}

// ArrayLit is [a, b, …].
type ArrayLit struct {
	Elems []Expr
	Loc   position.Location
}

func (a *ArrayLit) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *ArrayLit) Location() position.Location { return a.Loc }
func (a *ArrayLit) exprNode()                   {}

// ListLit is {a, b, …}.
type ListLit struct {
	Elems []Expr
	Loc   position.Location
}

func (l *ListLit) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (l *ListLit) Location() position.Location { return l.Loc }
func (l *ListLit) exprNode()                   {}

// Grouping is a parenthesized expression kept for location fidelity.
type Grouping struct {
	Inner Expr
	Loc   position.Location
}

// String prints the inner expression only; binary nodes already carry
// their own grouping parens, so reprinting stays stable.
func (g *Grouping) String() string              { return g.Inner.String() }
func (g *Grouping) Location() position.Location { return g.Loc }
func (g *Grouping) exprNode()                   {}

// TryExpr is try e — the expression form unwrapping a result.
type TryExpr struct {
	Inner Expr
	Loc   position.Location
}

func (t *TryExpr) String() string              { return "try " + t.Inner.String() }
func (t *TryExpr) Location() position.Location { return t.Loc }
func (t *TryExpr) exprNode()                   {}

// SelfExpr is the receiver reference inside methods.
type SelfExpr struct {
	Loc position.Location
}

func (s *SelfExpr) String() string              { return "self" }
func (s *SelfExpr) Location() position.Location { return s.Loc }
func (s *SelfExpr) exprNode()                   {}
