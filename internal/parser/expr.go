package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// precedence is the fixed table keyed by operator token kind. Zero means
// the token is not a binary operator.
var precedence = map[token.Kind]int{
	token.PipePipe: 1,
	token.KwOr:     1,
	token.AmpAmp:   2,
	token.KwAnd:    2,
	token.KwXor:    2,
	token.EqEq:     3,
	token.BangEq:   3,
	token.NotEq:    3,
	token.Lt:       4,
	token.Gt:       4,
	token.LtEq:     4,
	token.GtEq:     4,
	token.DotDot:   5,
	token.Pipe:     6,
	token.Caret:    7,
	token.Amp:      8,
	token.Shl:      9,
	token.Shr:      9,
	token.Plus:     10,
	token.Minus:    10,
	token.PlusPlus: 10,
	token.Star:     11,
	token.Slash:    11,
	token.Percent:  11,
	token.StarStar: 12,
}

// parseExpr runs the operator-stack engine: parse a unary operand, then
// while the stack top's precedence is at least the incoming operator's,
// fold (lhs, op, rhs) into a binary node.
func (b *block) parseExpr() ast.Expr {
	first := b.parseUnary()
	if first == nil {
		return nil
	}

	operands := []ast.Expr{first}
	var ops []token.Token

	fold := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		rhs := operands[len(operands)-1]
		lhs := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, &ast.Binary{
			Left:  lhs,
			Op:    op.Kind,
			OpLit: op.Lit,
			Right: rhs,
			Loc:   position.Span(lhs.Location(), rhs.Location()),
		})
	}

	for {
		prec, isOp := precedence[b.cur().Kind]
		if !isOp || prec == 0 {
			break
		}
		op := b.next()
		rhs := b.parseUnary()
		if rhs == nil {
			return nil
		}
		for len(ops) > 0 && precedence[ops[len(ops)-1].Kind] >= prec {
			fold()
		}
		ops = append(ops, op)
		operands = append(operands, rhs)
	}
	for len(ops) > 0 {
		fold()
	}
	return operands[0]
}

func (b *block) parseUnary() ast.Expr {
	t := b.cur()
	switch t.Kind {
	case token.Minus, token.KwNot, token.Tilde, token.Amp:
		b.next()
		operand := b.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{Op: t.Kind, Operand: operand, Loc: position.Span(t.Loc, operand.Location())}
	}
	return b.parsePostfix()
}

// parsePostfix parses a primary expression followed by access and call
// suffixes: a.b, a[i], a@Obj, f(args), T{…}, T:v, f::[T](…).
func (b *block) parsePostfix() ast.Expr {
	kindHint := ast.AccessPath
	switch b.cur().Kind {
	case token.KwGlobal:
		kindHint = ast.AccessGlobal
	case token.KwSelfLower:
		kindHint = ast.AccessSelf
	}

	e := b.parsePrimary()
	if e == nil {
		return nil
	}

	for {
		switch b.cur().Kind {
		case token.Dot:
			e = b.parsePath(e, kindHint)
			if e == nil {
				return nil
			}
		case token.LBracket:
			open := b.next()
			idx := b.parseExpr()
			if idx == nil {
				return nil
			}
			if _, ok := b.expect(token.RBracket); !ok {
				b.skipTo(token.RBracket)
				b.next()
			}
			e = &ast.Access{Kind: ast.AccessHook, Base: e, Index: idx,
				Loc: position.Span(e.Location(), open.Loc)}
		case token.At:
			var segs []ast.Expr
			loc := e.Location()
			for b.at(token.At) {
				b.next()
				name, ok := b.expect(token.Ident)
				if !ok {
					return nil
				}
				segs = append(segs, &ast.Identifier{Name: name.Lit, Loc: name.Loc})
				loc = position.Span(loc, name.Loc)
			}
			e = &ast.Access{Kind: ast.AccessObject, Base: e, Segments: segs, Loc: loc}
		case token.LParen:
			args, end := b.parseCallArgs()
			e = &ast.Call{Kind: ast.CallFun, Callee: e, Args: args,
				Loc: position.Span(e.Location(), end)}
		case token.ColonColon:
			if b.peek(1).Kind != token.LBracket {
				return e
			}
			b.next() // ::
			generics, end := b.parseGenericArgs()
			call := &ast.Call{Kind: ast.CallFun, Callee: e, Generics: generics,
				Loc: position.Span(e.Location(), end)}
			if b.at(token.LParen) {
				args, end := b.parseCallArgs()
				call.Args = args
				call.Loc = position.Span(e.Location(), end)
			}
			e = call
		case token.LBrace:
			if !isPathLike(e) {
				return e
			}
			fields, end := b.parseRecordFields()
			e = &ast.Call{Kind: ast.CallRecord, Callee: e, Fields: fields,
				Loc: position.Span(e.Location(), end)}
		case token.ColonDollar:
			end := b.next().Loc
			e = &ast.Call{Kind: ast.CallVariant, Callee: e,
				Loc: position.Span(e.Location(), end)}
		case token.Colon:
			if !isPathLike(e) {
				return e
			}
			b.next()
			val := b.parseUnary()
			if val == nil {
				return nil
			}
			e = &ast.Call{Kind: ast.CallVariant, Callee: e, Value: val,
				Loc: position.Span(e.Location(), val.Location())}
		default:
			return e
		}
	}
}

// parsePath folds a dotted chain into one left-associated access node.
// Only identifier-like heads may start a path.
func (b *block) parsePath(head ast.Expr, kind ast.AccessKind) ast.Expr {
	if !isPathLike(head) {
		b.p.sink.Error(diagnostic.ParseExpectedIdent, head.Location(),
			"only an identifier may start a path")
		return nil
	}
	acc := &ast.Access{Kind: kind, Base: head, Loc: head.Location()}
	for b.at(token.Dot) {
		b.next()
		seg, ok := b.expect(token.Ident)
		if !ok {
			return nil
		}
		var segExpr ast.Expr = &ast.Identifier{Name: seg.Lit, Loc: seg.Loc}
		if b.at(token.LParen) {
			args, end := b.parseCallArgs()
			segExpr = &ast.Call{Kind: ast.CallFun, Callee: segExpr, Args: args,
				Loc: position.Span(seg.Loc, end)}
		}
		acc.Segments = append(acc.Segments, segExpr)
		acc.Loc = position.Span(acc.Loc, segExpr.Location())
	}
	return acc
}

func isPathLike(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Identifier, *ast.SelfExpr:
		return true
	case *ast.Access:
		return v.Kind != ast.AccessHook
	}
	return false
}

// parseCallArgs consumes `(…)`, distinguishing default-named parameters
// (name := expr) from positional by a one-token lookahead.
func (b *block) parseCallArgs() ([]ast.Arg, position.Location) {
	open, _ := b.expect(token.LParen)
	end := open.Loc
	var args []ast.Arg
	for !b.at(token.RParen) && !b.done() {
		var a ast.Arg
		if b.at(token.Ident) && b.peek(1).Kind == token.ColonEq {
			name := b.next()
			b.next() // :=
			a.Name = name.Lit
			a.Loc = name.Loc
		}
		v := b.parseExpr()
		if v == nil {
			b.skipTo(token.Comma, token.RParen)
		} else {
			a.Value = v
			if a.Name == "" {
				a.Loc = v.Location()
			}
			args = append(args, a)
		}
		if b.at(token.Comma) {
			b.next()
		}
	}
	if t, ok := b.expect(token.RParen); ok {
		end = t.Loc
	}
	return args, end
}

// parseGenericArgs consumes `[T, U, …]`.
func (b *block) parseGenericArgs() ([]ast.DataType, position.Location) {
	open, _ := b.expect(token.LBracket)
	end := open.Loc
	var out []ast.DataType
	for !b.at(token.RBracket) && !b.done() {
		dt := b.parseDataType()
		if dt == nil {
			b.skipTo(token.Comma, token.RBracket)
		} else {
			out = append(out, dt)
		}
		if b.at(token.Comma) {
			b.next()
		}
	}
	if t, ok := b.expect(token.RBracket); ok {
		end = t.Loc
	}
	return out, end
}

// parseRecordFields consumes `{f := v, …}`.
func (b *block) parseRecordFields() ([]ast.FieldInit, position.Location) {
	open, _ := b.expect(token.LBrace)
	end := open.Loc
	var fields []ast.FieldInit
	for !b.at(token.RBrace) && !b.done() {
		name, ok := b.expect(token.Ident)
		if !ok {
			b.skipTo(token.Comma, token.RBrace)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		if _, ok := b.expect(token.ColonEq); !ok {
			b.skipTo(token.Comma, token.RBrace)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		v := b.parseExpr()
		if v != nil {
			fields = append(fields, ast.FieldInit{Name: name.Lit, Value: v, Loc: name.Loc})
		}
		if b.at(token.Comma) {
			b.next()
		}
	}
	if t, ok := b.expect(token.RBrace); ok {
		end = t.Loc
	}
	return fields, end
}

func (b *block) parsePrimary() ast.Expr {
	t := b.cur()
	switch t.Kind {
	case token.Expand:
		b.next()
		switch t.Expand.Kind {
		case token.ExpandExpr, token.ExpandPath:
			sub := b.p.newBlock(t.Expand.Tokens)
			e := sub.parseExpr()
			if e != nil {
				sub.checkConsumed("expression")
			}
			return e
		default:
			b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
				fmt.Sprintf("expected an expression, found a %s expansion", t.Expand.Kind))
			return nil
		}
	case token.Ident, token.IdentString, token.IdentDollar:
		b.next()
		return &ast.Identifier{Name: t.Lit, Loc: t.Loc}
	case token.KwGlobal:
		b.next()
		return &ast.Identifier{Name: "Global", Loc: t.Loc}
	case token.KwSelfLower:
		b.next()
		return &ast.SelfExpr{Loc: t.Loc}
	case token.KwSelfUpper:
		b.next()
		return &ast.Identifier{Name: "Self", Loc: t.Loc}
	case token.KwTrue, token.KwFalse:
		b.next()
		return &ast.Literal{Kind: ast.LitBool, Bool: t.Kind == token.KwTrue, Loc: t.Loc}
	case token.KwNil:
		b.next()
		return &ast.Literal{Kind: ast.LitNil, Loc: t.Loc}
	case token.KwUndef:
		b.next()
		return &ast.Literal{Kind: ast.LitUndef, Loc: t.Loc}
	case token.KwNone:
		b.next()
		return &ast.Literal{Kind: ast.LitNone, Loc: t.Loc}
	case token.LitStr:
		b.next()
		return &ast.Literal{Kind: ast.LitStr, Str: t.Lit, Loc: t.Loc}
	case token.LitCStr:
		b.next()
		return &ast.Literal{Kind: ast.LitCStr, Str: t.Lit, Loc: t.Loc}
	case token.LitChar:
		b.next()
		return &ast.Literal{Kind: ast.LitChar, Str: t.Lit, Loc: t.Loc}
	case token.LitByte:
		b.next()
		return &ast.Literal{Kind: ast.LitByte, Str: t.Lit, Loc: t.Loc}
	case token.LitBytes:
		b.next()
		return &ast.Literal{Kind: ast.LitBytes, Str: t.Lit, Loc: t.Loc}
	case token.LitInt2, token.LitInt8, token.LitInt10, token.LitInt16:
		b.next()
		return b.parseIntLiteral(t)
	case token.LitFloat:
		b.next()
		f, err := strconv.ParseFloat(t.Lit, 64)
		if err != nil {
			b.p.sink.Error(diagnostic.ParseLiteralOutOfRange, t.Loc,
				fmt.Sprintf("float literal `%s` is out of range", t.Lit))
			return nil
		}
		return &ast.Literal{Kind: ast.LitFloat64, Float: f, Loc: t.Loc}
	case token.LitSuffix:
		b.next()
		return b.parseSuffixedLiteral(t)
	case token.LParen:
		return b.parseParen()
	case token.LBracket:
		b.next()
		var elems []ast.Expr
		for !b.at(token.RBracket) && !b.done() {
			e := b.parseExpr()
			if e == nil {
				b.skipTo(token.Comma, token.RBracket)
			} else {
				elems = append(elems, e)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RBracket)
		return &ast.ArrayLit{Elems: elems, Loc: position.Span(t.Loc, end.Loc)}
	case token.LBrace:
		b.next()
		var elems []ast.Expr
		for !b.at(token.RBrace) && !b.done() {
			e := b.parseExpr()
			if e == nil {
				b.skipTo(token.Comma, token.RBrace)
			} else {
				elems = append(elems, e)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RBrace)
		return &ast.ListLit{Elems: elems, Loc: position.Span(t.Loc, end.Loc)}
	case token.KwIf:
		return b.parseIfExpr()
	case token.KwMatch:
		return b.parseMatchExpr()
	case token.KwTry:
		b.next()
		inner := b.parseExpr()
		if inner == nil {
			return nil
		}
		return &ast.TryExpr{Inner: inner, Loc: position.Span(t.Loc, inner.Location())}
	case token.At:
		return b.parseAtCall()
	case token.IdentMacro:
		b.p.sink.Error(diagnostic.ParseNotYetSupported, t.Loc,
			"macro calls inside expressions are not yet supported")
		return nil
	}

	b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
		fmt.Sprintf("expected an expression, found `%s`", t))
	return nil
}

// parseIntLiteral tries Int32, then Int64; overflow beyond Int64 reports
// and yields no node.
func (b *block) parseIntLiteral(t token.Token) ast.Expr {
	base := 10
	switch t.Kind {
	case token.LitInt2:
		base = 2
	case token.LitInt8:
		base = 8
	case token.LitInt16:
		base = 16
	}
	digits := t.Lit
	if base != 10 {
		digits = digits[2:] // strip the 0b / 0o / 0x prefix
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		b.p.sink.Error(diagnostic.ParseLiteralOutOfRange, t.Loc,
			fmt.Sprintf("integer literal `%s` is out of range", t.Lit))
		return nil
	}
	kind := ast.LitInt32
	if v > math.MaxInt32 || v < math.MinInt32 {
		kind = ast.LitInt64
	}
	return &ast.Literal{Kind: kind, Int: v, Loc: t.Loc}
}

var suffixBits = map[token.SuffixKind]int{
	token.SuffixI8:    8,
	token.SuffixI16:   16,
	token.SuffixI32:   32,
	token.SuffixI64:   64,
	token.SuffixIsize: 64,
	token.SuffixU8:    8,
	token.SuffixU16:   16,
	token.SuffixU32:   32,
	token.SuffixU64:   64,
	token.SuffixUsize: 64,
}

func isUnsignedSuffix(s token.SuffixKind) bool {
	switch s {
	case token.SuffixU8, token.SuffixU16, token.SuffixU32, token.SuffixU64, token.SuffixUsize:
		return true
	}
	return false
}

// parseSuffixedLiteral maps a suffixed numeric literal directly to its
// fixed-width variant, checking the value against the width.
func (b *block) parseSuffixedLiteral(t token.Token) ast.Expr {
	lit := &ast.Literal{Kind: ast.LitSuffixed, Suffix: t.Suffix, Loc: t.Loc}
	switch t.Suffix {
	case token.SuffixF32, token.SuffixF64:
		f, err := strconv.ParseFloat(t.Lit, 64)
		if err != nil {
			b.p.sink.Error(diagnostic.ParseSuffixOutOfRange, t.Loc,
				fmt.Sprintf("float literal `%s%s` is out of range", t.Lit, t.Suffix))
			return nil
		}
		lit.Float = f
	default:
		bits := suffixBits[t.Suffix]
		if isUnsignedSuffix(t.Suffix) {
			v, err := strconv.ParseUint(t.Lit, 10, bits)
			if err != nil {
				b.p.sink.Error(diagnostic.ParseSuffixOutOfRange, t.Loc,
					fmt.Sprintf("integer literal `%s%s` is out of range", t.Lit, t.Suffix))
				return nil
			}
			lit.Uint = v
		} else {
			v, err := strconv.ParseInt(t.Lit, 10, bits)
			if err != nil {
				b.p.sink.Error(diagnostic.ParseSuffixOutOfRange, t.Loc,
					fmt.Sprintf("integer literal `%s%s` is out of range", t.Lit, t.Suffix))
				return nil
			}
			lit.Int = v
		}
	}
	return lit
}

// parseParen handles (), (expr), (a, b, …) and the (fun …) lambda form.
func (b *block) parseParen() ast.Expr {
	open := b.next() // (
	if b.at(token.RParen) {
		end := b.next()
		return &ast.Literal{Kind: ast.LitUnit, Loc: position.Span(open.Loc, end.Loc)}
	}
	if b.at(token.KwFun) {
		return b.parseLambda(open.Loc)
	}
	first := b.parseExpr()
	if first == nil {
		b.skipTo(token.RParen)
		b.next()
		return nil
	}
	if b.at(token.Comma) {
		elems := []ast.Expr{first}
		for b.at(token.Comma) {
			b.next()
			if b.at(token.RParen) {
				break
			}
			e := b.parseExpr()
			if e == nil {
				b.skipTo(token.Comma, token.RParen)
				continue
			}
			elems = append(elems, e)
		}
		end, _ := b.expect(token.RParen)
		return &ast.Tuple{Elems: elems, Loc: position.Span(open.Loc, end.Loc)}
	}
	end, _ := b.expect(token.RParen)
	return &ast.Grouping{Inner: first, Loc: position.Span(open.Loc, end.Loc)}
}

// parseIfExpr parses the expression form: if c do a elif c2 do b else c.
func (b *block) parseIfExpr() ast.Expr {
	start := b.next().Loc // if
	cond := b.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := b.expect(token.KwDo); !ok {
		return nil
	}
	then := b.parseExpr()
	if then == nil {
		return nil
	}
	out := &ast.If{Cond: cond, Then: then, Loc: position.Span(start, then.Location())}
	for b.at(token.KwElif) {
		b.next()
		c := b.parseExpr()
		if c == nil {
			return nil
		}
		if _, ok := b.expect(token.KwDo); !ok {
			return nil
		}
		v := b.parseExpr()
		if v == nil {
			return nil
		}
		out.Elifs = append(out.Elifs, ast.ElifBranch{Cond: c, Then: v})
		out.Loc = position.Span(start, v.Location())
	}
	if b.at(token.KwElse) {
		b.next()
		e := b.parseExpr()
		if e == nil {
			return nil
		}
		out.Else = e
		out.Loc = position.Span(start, e.Location())
	}
	return out
}

// parseMatchExpr parses match scrut { pat [if guard] => expr, … }.
func (b *block) parseMatchExpr() ast.Expr {
	start := b.next().Loc // match
	scrut := b.parseExpr()
	if scrut == nil {
		return nil
	}
	if _, ok := b.expect(token.LBrace); !ok {
		return nil
	}
	out := &ast.Match{Scrutinee: scrut, Loc: start}
	for !b.at(token.RBrace) && !b.done() {
		pat := b.parsePattern()
		if pat == nil {
			b.skipTo(token.Comma, token.RBrace)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		var guard ast.Expr
		if b.at(token.KwIf) {
			b.next()
			guard = b.parseExpr()
		}
		if _, ok := b.expect(token.FatArrow); !ok {
			b.skipTo(token.Comma, token.RBrace)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		body := b.parseExpr()
		if body == nil {
			b.skipTo(token.Comma, token.RBrace)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		out.Arms = append(out.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Loc: pat.Location()})
		if b.at(token.Comma) {
			b.next()
		}
	}
	end, _ := b.expect(token.RBrace)
	out.Loc = position.Span(start, end.Loc)
	return out
}

// parseAtCall parses @sys.name(args) and @builtin.name(args).
func (b *block) parseAtCall() ast.Expr {
	start := b.next().Loc // @
	head, ok := b.expect(token.Ident)
	if !ok {
		return nil
	}
	var kind ast.CallKind
	switch head.Lit {
	case "sys":
		kind = ast.CallSys
	case "builtin":
		kind = ast.CallBuiltin
	default:
		b.p.sink.Error(diagnostic.ParseExpectedToken, head.Loc,
			fmt.Sprintf("expected `sys` or `builtin` after `@`, found `%s`", head.Lit))
		return nil
	}
	if _, ok := b.expect(token.Dot); !ok {
		return nil
	}
	name, ok := b.expect(token.Ident)
	if !ok {
		return nil
	}
	args, end := b.parseCallArgs()
	return &ast.Call{
		Kind:   kind,
		Callee: &ast.Identifier{Name: name.Lit, Loc: name.Loc},
		Args:   args,
		Loc:    position.Span(start, end),
	}
}
