// Package parser converts preparsed skeletons' raw token buffers into full
// AST nodes. Each sub-part is parsed by a bounded parse block over its
// token span; binary expressions use a precedence-table operator stack.
package parser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/preparser"
	"github.com/lily-lang/lilyc/internal/token"
)

// Parser drives parse blocks for one file's preparsed declarations.
type Parser struct {
	sink *diagnostic.Sink
}

// New creates a parser reporting into sink.
func New(sink *diagnostic.Sink) *Parser {
	return &Parser{sink: sink}
}

// ParseDecls parses every preparsed declaration. Failed declarations are
// dropped after their diagnostics are recorded.
func (p *Parser) ParseDecls(res *preparser.Result) []ast.Decl {
	var out []ast.Decl
	for _, d := range res.Decls {
		if decl := p.parseDecl(d); decl != nil {
			out = append(out, decl)
		}
	}
	return out
}

// block is a bounded view over one token buffer. Every sub-parse runs to
// the end of its buffer; leftovers are the caller's error to report.
type block struct {
	p    *Parser
	toks []token.Token
	pos  int
}

func (p *Parser) newBlock(toks []token.Token) *block {
	return &block{p: p, toks: toks}
}

func (b *block) cur() token.Token {
	if b.pos >= len(b.toks) {
		last := position.Location{}
		if len(b.toks) > 0 {
			last = b.toks[len(b.toks)-1].Loc
		}
		return token.Token{Kind: token.EOF, Loc: last}
	}
	return b.toks[b.pos]
}

func (b *block) peek(n int) token.Token {
	if b.pos+n >= len(b.toks) {
		return token.Token{Kind: token.EOF}
	}
	return b.toks[b.pos+n]
}

func (b *block) next() token.Token {
	t := b.cur()
	if b.pos < len(b.toks) {
		b.pos++
	}
	return t
}

func (b *block) at(k token.Kind) bool { return b.cur().Kind == k }

func (b *block) done() bool { return b.pos >= len(b.toks) }

func (b *block) expect(k token.Kind) (token.Token, bool) {
	if b.at(k) {
		return b.next(), true
	}
	b.p.sink.Error(diagnostic.ParseExpectedToken, b.cur().Loc,
		fmt.Sprintf("expected `%s`, found `%s`", k, b.cur()))
	return b.cur(), false
}

// skipTo advances to the nearest synchronizing delimiter: one of the given
// kinds at bracket depth zero. The delimiter is not consumed.
func (b *block) skipTo(stops ...token.Kind) {
	depth := 0
	for !b.done() {
		k := b.cur().Kind
		switch k {
		case token.LParen, token.LBracket, token.LBrace, token.DollarBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		if depth == 0 {
			for _, s := range stops {
				if k == s {
					return
				}
			}
		}
		b.next()
	}
}

// checkConsumed enforces the protocol that a sub-parse block consumes its
// entire buffer. what names the syntactic class for the diagnostic.
func (b *block) checkConsumed(what string) {
	if !b.done() {
		b.p.sink.Error(diagnostic.ParseExpectedOnlyOne, b.cur().Loc,
			fmt.Sprintf("expected only one %s", what))
	}
}

// --- public sub-parse entry points (each enforces full consumption) ---

// ParseExprTokens parses a whole token span as one expression.
func (p *Parser) ParseExprTokens(toks []token.Token) ast.Expr {
	if len(toks) == 0 {
		return nil
	}
	b := p.newBlock(toks)
	e := b.parseExpr()
	if e != nil {
		b.checkConsumed("expression")
	}
	return e
}

// ParsePatternTokens parses a whole token span as one pattern.
func (p *Parser) ParsePatternTokens(toks []token.Token) ast.Pattern {
	if len(toks) == 0 {
		return nil
	}
	b := p.newBlock(toks)
	pat := b.parsePattern()
	if pat != nil {
		b.checkConsumed("pattern")
	}
	return pat
}

// ParseDataTypeTokens parses a whole token span as one data type.
func (p *Parser) ParseDataTypeTokens(toks []token.Token) ast.DataType {
	if len(toks) == 0 {
		return nil
	}
	b := p.newBlock(toks)
	dt := b.parseDataType()
	if dt != nil {
		b.checkConsumed("data type")
	}
	return dt
}
