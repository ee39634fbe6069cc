package token

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/position"
)

// Kind is the tag of a token variant.
type Kind int

const (
	Illegal Kind = iota
	EOF

	// Identifiers
	Ident       // foo
	IdentString // "foo" used in identifier position
	IdentDollar // $foo (macro parameter reference)
	IdentMacro  // foo! (macro invocation head)
	IdentOp     // operator identifier in a fun header, e.g. `+`

	// Literals
	LitByte   // b'a'
	LitBytes  // b"abc"
	LitChar   // 'a'
	LitCStr   // c"abc"
	LitStr    // "abc"
	LitInt2   // 0b1010
	LitInt8   // 0o777
	LitInt10  // 123
	LitInt16  // 0xff
	LitFloat  // 1.5, 1e9
	LitSuffix // 10u8, 3.14f32 — see SuffixKind

	// Keywords
	KwAnd
	KwAs
	KwAsm
	KwAwait
	KwBegin
	KwBlock
	KwBreak
	KwCatch
	KwClass
	KwDefer
	KwDo
	KwDrop
	KwElif
	KwElse
	KwEnd
	KwEnum
	KwError
	KwFalse
	KwFor
	KwFun
	KwGlobal
	KwIf
	KwIn
	KwInclude
	KwLoop
	KwMacro
	KwMatch
	KwModule
	KwMut
	KwNext
	KwNil
	KwNone
	KwNot
	KwObject
	KwOr
	KwPub
	KwRaise
	KwRecord
	KwRef
	KwReturn
	KwSelfUpper // Self
	KwSelfLower // self
	KwTrace
	KwTrait
	KwTrue
	KwTry
	KwType
	KwUndef
	KwUnsafe
	KwUse
	KwVal
	KwWhen
	KwWhile
	KwXor

	// Punctuation
	Plus       // +
	Minus      // -
	Star       // *
	StarStar   // **
	Slash      // /
	Percent    // %
	PlusPlus   // ++
	MinusMinus // --
	Eq         // =
	EqEq       // ==
	NotEq      // not=
	BangEq     // !=
	Lt         // <
	Gt         // >
	LtEq       // <=
	GtEq       // >=
	ColonEq    // :=
	ColonColon // ::
	Colon      // :
	ColonDollar // :$
	Semicolon  // ;
	Comma      // ,
	Dot        // .
	DotDot     // ..
	DotDotDot  // ...
	Arrow      // ->
	ArrowBack  // <-
	FatArrow   // =>
	LParen     // (
	RParen     // )
	LBracket   // [
	RBracket   // ]
	LBrace     // {
	RBrace     // }
	DollarBrace // ${
	At         // @
	Bang       // !
	Question   // ?
	Amp        // &
	AmpAmp     // &&
	Pipe       // |
	PipePipe   // ||
	Caret      // ^
	Shl        // <<
	Shr        // >>
	Tilde      // ~
	Hash       // #
	Dollar     // $
	Wave       // ~>

	// Expand is a macro-expansion placeholder holding a deferred token list
	// annotated with the AST kind the parser must produce from it.
	Expand
)

// SuffixKind discriminates the fixed-width variants of LitSuffix tokens.
type SuffixKind int

const (
	SuffixNone SuffixKind = iota
	SuffixI8
	SuffixI16
	SuffixI32
	SuffixI64
	SuffixU8
	SuffixU16
	SuffixU32
	SuffixU64
	SuffixIsize
	SuffixUsize
	SuffixF32
	SuffixF64
)

var suffixNames = map[SuffixKind]string{
	SuffixI8:    "i8",
	SuffixI16:   "i16",
	SuffixI32:   "i32",
	SuffixI64:   "i64",
	SuffixU8:    "u8",
	SuffixU16:   "u16",
	SuffixU32:   "u32",
	SuffixU64:   "u64",
	SuffixIsize: "isize",
	SuffixUsize: "usize",
	SuffixF32:   "f32",
	SuffixF64:   "f64",
}

func (s SuffixKind) String() string {
	if n, ok := suffixNames[s]; ok {
		return n
	}
	return "none"
}

// LookupSuffix maps a literal suffix spelling to its kind.
func LookupSuffix(s string) (SuffixKind, bool) {
	for k, n := range suffixNames {
		if n == s {
			return k, true
		}
	}
	return SuffixNone, false
}

// ExpandKind is the AST kind an Expand placeholder defers to the parser.
type ExpandKind int

const (
	ExpandExpr ExpandKind = iota
	ExpandPatt
	ExpandPath
	ExpandDt
)

func (k ExpandKind) String() string {
	switch k {
	case ExpandExpr:
		return "expr"
	case ExpandPatt:
		return "patt"
	case ExpandPath:
		return "path"
	case ExpandDt:
		return "dt"
	}
	return "unknown"
}

// ExpandData carries the borrowed token sequence of an Expand placeholder.
// The tokens are owned by the macro call site; the placeholder never copies.
type ExpandData struct {
	Kind   ExpandKind
	Tokens []Token
}

// Token is an immutable tagged token with a source location.
type Token struct {
	Kind   Kind
	Lit    string
	Suffix SuffixKind
	Loc    position.Location
	Expand *ExpandData
}

// New builds a plain token.
func New(kind Kind, lit string, loc position.Location) Token {
	return Token{Kind: kind, Lit: lit, Loc: loc}
}

// NewExpand builds an Expand placeholder over a borrowed token slice.
func NewExpand(kind ExpandKind, toks []Token, loc position.Location) Token {
	return Token{Kind: Expand, Loc: loc, Expand: &ExpandData{Kind: kind, Tokens: toks}}
}

func (t Token) String() string {
	switch t.Kind {
	case Expand:
		return fmt.Sprintf("expand(%s, %d tokens)", t.Expand.Kind, len(t.Expand.Tokens))
	case EOF:
		return "EOF"
	}
	if t.Kind == LitSuffix {
		return t.Lit + t.Suffix.String()
	}
	if t.Lit != "" {
		return t.Lit
	}
	return t.Kind.String()
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool { return t.Kind >= KwAnd && t.Kind <= KwXor }

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool { return t.Kind >= LitByte && t.Kind <= LitSuffix }

// IsIdentLike reports whether the token may start a path.
func (t Token) IsIdentLike() bool {
	switch t.Kind {
	case Ident, IdentString, IdentDollar, KwSelfUpper, KwSelfLower, KwGlobal:
		return true
	}
	return false
}
