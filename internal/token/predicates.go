package token

// Start predicates shared by the preparser and the macro engine. Each one
// answers whether a token can begin the given syntactic class; they are
// fixed tables, not full parses.

// CanStartDataType reports whether t can begin a data type.
func CanStartDataType(t Token) bool {
	switch t.Kind {
	case Ident, IdentString, KwSelfUpper, KwGlobal,
		LBracket, LBrace, LParen, Lt,
		KwFun, KwMut, KwRef, KwTrace,
		Question, Star, Bang:
		return true
	case Expand:
		return t.Expand.Kind == ExpandDt || t.Expand.Kind == ExpandPath
	}
	return false
}

// CanStartExpr reports whether t can begin an expression.
func CanStartExpr(t Token) bool {
	if t.IsLiteral() || t.IsIdentLike() {
		return true
	}
	switch t.Kind {
	case LParen, LBracket, LBrace, Minus, KwNot, Tilde, Amp,
		KwTrue, KwFalse, KwNil, KwUndef, KwNone,
		KwIf, KwMatch, KwTry, KwBegin, KwUnsafe, KwAwait,
		At, IdentMacro, KwRef, KwTrace:
		return true
	case Expand:
		return t.Expand.Kind == ExpandExpr || t.Expand.Kind == ExpandPath
	}
	return false
}

// CanStartStmt reports whether t can begin a statement.
func CanStartStmt(t Token) bool {
	switch t.Kind {
	case KwVal, KwMut, KwIf, KwMatch, KwFor, KwWhile, KwLoop,
		KwDefer, KwDrop, KwTry, KwUnsafe, KwAsm, KwBlock,
		KwRaise, KwReturn, KwNext, KwBreak, KwAwait, KwBegin,
		Semicolon:
		return true
	}
	return CanStartExpr(t)
}

// CanStartPattern reports whether t can begin a pattern.
func CanStartPattern(t Token) bool {
	if t.IsLiteral() || t.IsIdentLike() {
		return true
	}
	switch t.Kind {
	case LParen, LBracket, LBrace, Minus, DotDot, KwTrue, KwFalse,
		KwNil, KwNone, KwError:
		return true
	case Expand:
		return t.Expand.Kind == ExpandPatt || t.Expand.Kind == ExpandPath
	}
	return false
}

// IsPathHead reports whether a token sequence starting at t looks like a
// path: an identifier-like head followed by a dot.
func IsPathHead(toks []Token) bool {
	if len(toks) == 0 || !toks[0].IsIdentLike() {
		return false
	}
	return len(toks) >= 2 && toks[1].Kind == Dot
}
