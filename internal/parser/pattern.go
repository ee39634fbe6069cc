package parser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// parsePattern parses a primary pattern and the pattern-only suffixes:
// ranges (a..b), list head (h -> t), list tail (l <- t) and as-bindings.
func (b *block) parsePattern() ast.Pattern {
	prim := b.parsePrimaryPattern()
	if prim == nil {
		return nil
	}

	for {
		switch b.cur().Kind {
		case token.DotDot:
			b.next()
			var hi ast.Pattern
			if token.CanStartPattern(b.cur()) {
				hi = b.parsePrimaryPattern()
				if hi == nil {
					return nil
				}
			}
			loc := prim.Location()
			if hi != nil {
				loc = position.Span(loc, hi.Location())
			}
			prim = &ast.PatRange{Lo: prim, Hi: hi, Loc: loc}
		case token.Arrow:
			b.next()
			tail := b.parsePattern()
			if tail == nil {
				return nil
			}
			prim = &ast.PatListHead{Head: prim, Tail: tail,
				Loc: position.Span(prim.Location(), tail.Location())}
		case token.ArrowBack:
			b.next()
			last := b.parsePattern()
			if last == nil {
				return nil
			}
			prim = &ast.PatListTail{List: prim, Last: last,
				Loc: position.Span(prim.Location(), last.Location())}
		case token.KwAs:
			b.next()
			name, ok := b.expect(token.Ident)
			if !ok {
				return nil
			}
			prim = &ast.PatAs{Inner: prim, Name: name.Lit,
				Loc: position.Span(prim.Location(), name.Loc)}
		default:
			return prim
		}
	}
}

func (b *block) parsePrimaryPattern() ast.Pattern {
	t := b.cur()
	switch t.Kind {
	case token.Expand:
		b.next()
		switch t.Expand.Kind {
		case token.ExpandPatt, token.ExpandPath:
			sub := b.p.newBlock(t.Expand.Tokens)
			pat := sub.parsePattern()
			if pat != nil {
				sub.checkConsumed("pattern")
			}
			return pat
		default:
			b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
				fmt.Sprintf("expected a pattern, found a %s expansion", t.Expand.Kind))
			return nil
		}
	case token.DotDot:
		b.next()
		// Leading `..` is either an open range (..5) or auto-complete.
		if token.CanStartPattern(b.cur()) {
			hi := b.parsePrimaryPattern()
			if hi == nil {
				return nil
			}
			return &ast.PatRange{Hi: hi, Loc: position.Span(t.Loc, hi.Location())}
		}
		return &ast.PatAutoComplete{Loc: t.Loc}
	case token.Ident:
		if t.Lit == "_" {
			b.next()
			return &ast.PatWildcard{Loc: t.Loc}
		}
		return b.parseNamedPattern()
	case token.IdentString, token.IdentDollar:
		b.next()
		return &ast.PatName{Name: t.Lit, Loc: t.Loc}
	case token.KwError:
		return b.parseErrorPattern()
	case token.KwTrue, token.KwFalse:
		b.next()
		return &ast.Literal{Kind: ast.LitBool, Bool: t.Kind == token.KwTrue, Loc: t.Loc}
	case token.KwNil:
		b.next()
		return &ast.Literal{Kind: ast.LitNil, Loc: t.Loc}
	case token.KwNone:
		b.next()
		return &ast.Literal{Kind: ast.LitNone, Loc: t.Loc}
	case token.LitStr:
		b.next()
		return &ast.Literal{Kind: ast.LitStr, Str: t.Lit, Loc: t.Loc}
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
		e := b.parseIntLiteral(t)
		if e == nil {
			return nil
		}
		return e.(*ast.Literal)
	case token.LitFloat:
		b.next()
		e := b.parsePrimaryFloat(t)
		if e == nil {
			return nil
		}
		return e
	case token.LitSuffix:
		b.next()
		e := b.parseSuffixedLiteral(t)
		if e == nil {
			return nil
		}
		return e.(*ast.Literal)
	case token.Minus:
		b.next()
		inner := b.parsePrimaryPattern()
		if inner == nil {
			return nil
		}
		lit, ok := inner.(*ast.Literal)
		if !ok {
			b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
				"`-` in a pattern must be followed by a numeric literal")
			return nil
		}
		neg := *lit
		neg.Int = -neg.Int
		neg.Float = -neg.Float
		neg.Loc = position.Span(t.Loc, lit.Loc)
		return &neg
	case token.LParen:
		b.next()
		var elems []ast.Pattern
		for !b.at(token.RParen) && !b.done() {
			pat := b.parsePattern()
			if pat == nil {
				b.skipTo(token.Comma, token.RParen)
			} else {
				elems = append(elems, pat)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RParen)
		loc := position.Span(t.Loc, end.Loc)
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.PatTuple{Elems: elems, Loc: loc}
	case token.LBracket:
		b.next()
		var elems []ast.Pattern
		for !b.at(token.RBracket) && !b.done() {
			pat := b.parsePattern()
			if pat == nil {
				b.skipTo(token.Comma, token.RBracket)
			} else {
				elems = append(elems, pat)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RBracket)
		return &ast.PatArray{Elems: elems, Loc: position.Span(t.Loc, end.Loc)}
	case token.LBrace:
		b.next()
		var elems []ast.Pattern
		for !b.at(token.RBrace) && !b.done() {
			pat := b.parsePattern()
			if pat == nil {
				b.skipTo(token.Comma, token.RBrace)
			} else {
				elems = append(elems, pat)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RBrace)
		return &ast.PatList{Elems: elems, Loc: position.Span(t.Loc, end.Loc)}
	}

	b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
		fmt.Sprintf("expected a pattern, found `%s`", t))
	return nil
}

func (b *block) parsePrimaryFloat(t token.Token) ast.Pattern {
	e := b.newFloatLiteral(t)
	if e == nil {
		return nil
	}
	return e
}

func (b *block) newFloatLiteral(t token.Token) *ast.Literal {
	f, err := parseFloatLit(t.Lit)
	if err != nil {
		b.p.sink.Error(diagnostic.ParseLiteralOutOfRange, t.Loc,
			fmt.Sprintf("float literal `%s` is out of range", t.Lit))
		return nil
	}
	return &ast.Literal{Kind: ast.LitFloat64, Float: f, Loc: t.Loc}
}

// parseNamedPattern handles name, path, record-call and variant-call
// pattern shapes headed by an identifier.
func (b *block) parseNamedPattern() ast.Pattern {
	head := b.next()
	path := []string{head.Lit}
	loc := head.Loc
	for b.at(token.Dot) {
		b.next()
		seg, ok := b.expect(token.Ident)
		if !ok {
			return nil
		}
		path = append(path, seg.Lit)
		loc = position.Span(loc, seg.Loc)
	}

	switch b.cur().Kind {
	case token.LBrace:
		b.next()
		out := &ast.PatRecordCall{Path: path, Loc: loc}
		for !b.at(token.RBrace) && !b.done() {
			if b.at(token.DotDot) {
				b.next()
				out.AutoComplete = true
				if b.at(token.Comma) {
					b.next()
				}
				continue
			}
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
			pat := b.parsePattern()
			if pat != nil {
				out.Fields = append(out.Fields, ast.PatFieldInit{Name: name.Lit, Pattern: pat, Loc: name.Loc})
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RBrace)
		out.Loc = position.Span(loc, end.Loc)
		return out
	case token.ColonDollar:
		end := b.next().Loc
		return &ast.PatVariantCall{Path: path, Loc: position.Span(loc, end)}
	case token.Colon:
		b.next()
		inner := b.parsePrimaryPattern()
		if inner == nil {
			return nil
		}
		return &ast.PatVariantCall{Path: path, Inner: inner,
			Loc: position.Span(loc, inner.Location())}
	}

	if len(path) > 1 {
		// A dotted path without call syntax matches a bare variant.
		return &ast.PatVariantCall{Path: path, Loc: loc}
	}
	return &ast.PatName{Name: head.Lit, Loc: head.Loc}
}

// parseErrorPattern handles error E and error E:p.
func (b *block) parseErrorPattern() ast.Pattern {
	start := b.next().Loc // error
	head, ok := b.expect(token.Ident)
	if !ok {
		return nil
	}
	path := []string{head.Lit}
	loc := position.Span(start, head.Loc)
	for b.at(token.Dot) {
		b.next()
		seg, ok := b.expect(token.Ident)
		if !ok {
			return nil
		}
		path = append(path, seg.Lit)
		loc = position.Span(loc, seg.Loc)
	}
	out := &ast.PatError{Path: path, Loc: loc}
	if b.at(token.Colon) {
		b.next()
		inner := b.parsePrimaryPattern()
		if inner == nil {
			return nil
		}
		out.Inner = inner
		out.Loc = position.Span(loc, inner.Location())
	}
	return out
}
