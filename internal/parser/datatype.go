package parser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// parseDataType dispatches on the first token of a data type.
func (b *block) parseDataType() ast.DataType {
	t := b.cur()
	switch t.Kind {
	case token.Expand:
		b.next()
		switch t.Expand.Kind {
		case token.ExpandDt, token.ExpandPath:
			sub := b.p.newBlock(t.Expand.Tokens)
			dt := sub.parseDataType()
			if dt != nil {
				sub.checkConsumed("data type")
			}
			return dt
		default:
			b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
				fmt.Sprintf("expected a data type, found a %s expansion", t.Expand.Kind))
			return nil
		}
	case token.LBracket:
		return b.parseArrayType()
	case token.LBrace:
		open := b.next()
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		end, _ := b.expect(token.RBrace)
		return &ast.DtList{Elem: elem, Loc: position.Span(open.Loc, end.Loc)}
	case token.LParen:
		open := b.next()
		var elems []ast.DataType
		for !b.at(token.RParen) && !b.done() {
			dt := b.parseDataType()
			if dt == nil {
				b.skipTo(token.Comma, token.RParen)
			} else {
				elems = append(elems, dt)
			}
			if b.at(token.Comma) {
				b.next()
			}
		}
		end, _ := b.expect(token.RParen)
		loc := position.Span(open.Loc, end.Loc)
		if len(elems) == 1 {
			return elems[0]
		}
		if len(elems) == 0 {
			return &ast.DtPrimitive{Kind: ast.PrimUnit, Loc: loc}
		}
		return &ast.DtTuple{Elems: elems, Loc: loc}
	case token.Lt:
		return b.parseResultType()
	case token.Bang:
		start := b.next().Loc
		ok := b.parseDataType()
		if ok == nil {
			return nil
		}
		return &ast.DtResult{Ok: ok, Loc: position.Span(start, ok.Location())}
	case token.KwFun:
		return b.parseLambdaType()
	case token.KwMut:
		start := b.next().Loc
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		return &ast.DtMut{Elem: elem, Loc: position.Span(start, elem.Location())}
	case token.KwRef:
		start := b.next().Loc
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		return &ast.DtRef{Elem: elem, Loc: position.Span(start, elem.Location())}
	case token.KwTrace:
		start := b.next().Loc
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		return &ast.DtTrace{Elem: elem, Loc: position.Span(start, elem.Location())}
	case token.Question:
		start := b.next().Loc
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		return &ast.DtOptional{Elem: elem, Loc: position.Span(start, elem.Location())}
	case token.Star:
		start := b.next().Loc
		elem := b.parseDataType()
		if elem == nil {
			return nil
		}
		return &ast.DtPtr{Elem: elem, Loc: position.Span(start, elem.Location())}
	case token.KwSelfUpper:
		b.next()
		return &ast.DtSelf{Loc: t.Loc}
	case token.Ident, token.IdentString, token.IdentDollar:
		return b.parseNamedType()
	}

	b.p.sink.Error(diagnostic.ParseExpectedToken, t.Loc,
		fmt.Sprintf("expected a data type, found `%s`", t))
	return nil
}

// parseArrayType handles [N]T, [_]T, [*]T and [?]T.
func (b *block) parseArrayType() ast.DataType {
	open := b.next() // [
	out := &ast.DtArray{Loc: open.Loc}
	switch b.cur().Kind {
	case token.Ident:
		if b.cur().Lit == "_" {
			b.next()
			out.Kind = ast.ArrayDynamic
		} else {
			out.Kind = ast.ArraySized
			out.Size = b.parseExpr()
			if out.Size == nil {
				return nil
			}
		}
	case token.Star:
		b.next()
		out.Kind = ast.ArrayMultiPtr
	case token.Question:
		b.next()
		out.Kind = ast.ArrayUnknown
	default:
		out.Kind = ast.ArraySized
		out.Size = b.parseExpr()
		if out.Size == nil {
			return nil
		}
	}
	if _, ok := b.expect(token.RBracket); !ok {
		return nil
	}
	elem := b.parseDataType()
	if elem == nil {
		return nil
	}
	out.Elem = elem
	out.Loc = position.Span(open.Loc, elem.Location())
	return out
}

// parseResultType handles <E1, E2, …>!T.
func (b *block) parseResultType() ast.DataType {
	open := b.next() // <
	out := &ast.DtResult{Loc: open.Loc}
	for !b.at(token.Gt) && !b.done() {
		dt := b.parseDataType()
		if dt == nil {
			b.skipTo(token.Comma, token.Gt)
		} else {
			out.Errs = append(out.Errs, dt)
		}
		if b.at(token.Comma) {
			b.next()
		}
	}
	if _, ok := b.expect(token.Gt); !ok {
		return nil
	}
	if _, ok := b.expect(token.Bang); !ok {
		return nil
	}
	okDt := b.parseDataType()
	if okDt == nil {
		return nil
	}
	out.Ok = okDt
	out.Loc = position.Span(open.Loc, okDt.Location())
	return out
}

// parseLambdaType handles fun(T, U) R.
func (b *block) parseLambdaType() ast.DataType {
	start := b.next().Loc // fun
	out := &ast.DtLambda{Loc: start}
	if _, ok := b.expect(token.LParen); !ok {
		return nil
	}
	for !b.at(token.RParen) && !b.done() {
		dt := b.parseDataType()
		if dt == nil {
			b.skipTo(token.Comma, token.RParen)
		} else {
			out.Params = append(out.Params, dt)
		}
		if b.at(token.Comma) {
			b.next()
		}
	}
	if _, ok := b.expect(token.RParen); !ok {
		return nil
	}
	ret := b.parseDataType()
	if ret == nil {
		return nil
	}
	out.Return = ret
	out.Loc = position.Span(start, ret.Location())
	return out
}

// parseNamedType handles primitive names, generic names, and dotted custom
// paths with optional [generic args].
func (b *block) parseNamedType() ast.DataType {
	head := b.next()
	if prim, ok := ast.LookupPrim(head.Lit); ok && !b.at(token.Dot) {
		return &ast.DtPrimitive{Kind: prim, Loc: head.Loc}
	}
	out := &ast.DtCustom{Path: []string{head.Lit}, Loc: head.Loc}
	for b.at(token.Dot) {
		b.next()
		seg, ok := b.expect(token.Ident)
		if !ok {
			return nil
		}
		out.Path = append(out.Path, seg.Lit)
		out.Loc = position.Span(out.Loc, seg.Loc)
	}
	if b.at(token.LBracket) {
		generics, end := b.parseGenericArgs()
		out.Generics = generics
		out.Loc = position.Span(out.Loc, end)
	}
	return out
}
