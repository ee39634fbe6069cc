package preparser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/token"
)

// PreparseItems consumes the whole vector as fun-body items. The parser
// uses it for lambda bodies and re-preparsed macro expansions.
func (p *Preparser) PreparseItems() []BodyItem {
	return p.preparseItems(token.EOF)
}

// preparseItems recognizes fun-body items until the terminator appears at
// depth zero. The terminator is not consumed. Blocks are recursed into only
// to delimit them; expressions stay raw.
func (p *Preparser) preparseItems(term token.Kind) []BodyItem {
	var items []BodyItem
	for !p.at(term) && !p.at(token.EOF) {
		if item, ok := p.preparseItem(); ok {
			items = append(items, item)
		}
	}
	return items
}

func (p *Preparser) preparseItem() (BodyItem, bool) {
	t := p.cur()
	switch t.Kind {
	case token.Semicolon:
		p.next()
		return BodyItem{}, false
	case token.KwIf:
		return p.preparseIfItem(), true
	case token.KwMatch:
		return p.preparseMatchItem(), true
	case token.KwFor:
		return p.preparseForItem(), true
	case token.KwWhile:
		p.next()
		item := BodyItem{Kind: ItemWhile, Loc: t.Loc}
		item.CondExpr = p.collectUntil(token.LBrace)
		item.Block = p.preparseBlock()
		return item, true
	case token.KwLoop:
		p.next()
		item := BodyItem{Kind: ItemLoop, Loc: t.Loc}
		item.Block = p.preparseBlock()
		return item, true
	case token.KwDo:
		p.next()
		item := BodyItem{Kind: ItemDoWhile, Loc: t.Loc}
		item.Block = p.preparseBlock()
		if _, ok := p.expect(token.KwWhile); ok {
			item.CondExpr = p.collectUntil(token.Semicolon)
			p.eatSemicolon()
		}
		return item, true
	case token.KwDefer:
		p.next()
		item := BodyItem{Kind: ItemDefer, Loc: t.Loc}
		if p.at(token.LBrace) {
			item.Block = p.preparseBlock()
		} else {
			item.Expr = p.collectUntil(token.Semicolon)
			p.eatSemicolon()
		}
		return item, true
	case token.KwDrop:
		p.next()
		item := BodyItem{Kind: ItemDrop, Loc: t.Loc}
		item.Expr = p.collectUntil(token.Semicolon)
		p.eatSemicolon()
		return item, true
	case token.KwTry:
		return p.preparseTryItem(), true
	case token.KwUnsafe:
		p.next()
		item := BodyItem{Kind: ItemUnsafe, Loc: t.Loc}
		item.Block = p.preparseBlock()
		return item, true
	case token.KwAsm:
		p.next()
		item := BodyItem{Kind: ItemAsm, Loc: t.Loc}
		if p.at(token.LParen) {
			inner := p.collectGroup(token.LParen, token.RParen)
			if len(inner) > 0 {
				item.Label = inner[0]
			}
		}
		p.eatSemicolon()
		return item, true
	case token.KwBlock:
		p.next()
		item := BodyItem{Kind: ItemBlock, Loc: t.Loc}
		if p.at(token.Ident) {
			item.Label = p.next()
		}
		item.Block = p.preparseBlock()
		return item, true
	case token.KwRaise:
		p.next()
		item := BodyItem{Kind: ItemRaise, Loc: t.Loc}
		item.Expr = p.collectUntil(token.Semicolon)
		p.eatSemicolon()
		return item, true
	case token.KwReturn:
		p.next()
		item := BodyItem{Kind: ItemReturn, Loc: t.Loc}
		item.Expr = p.collectUntil(token.Semicolon)
		p.eatSemicolon()
		return item, true
	case token.KwNext:
		p.next()
		item := BodyItem{Kind: ItemNext, Loc: t.Loc}
		if p.at(token.Ident) {
			item.Label = p.next()
		}
		p.eatSemicolon()
		return item, true
	case token.KwBreak:
		p.next()
		item := BodyItem{Kind: ItemBreak, Loc: t.Loc}
		if p.at(token.Ident) {
			item.Label = p.next()
		}
		p.eatSemicolon()
		return item, true
	case token.KwAwait:
		p.next()
		item := BodyItem{Kind: ItemAwait, Loc: t.Loc}
		item.Expr = p.collectUntil(token.Semicolon)
		p.eatSemicolon()
		return item, true
	case token.KwVal, token.KwMut:
		p.next()
		item := BodyItem{Kind: ItemVariable, Loc: t.Loc, Mut: t.Kind == token.KwMut}
		if p.at(token.Ident) {
			item.VarName = p.next()
		} else {
			p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
				fmt.Sprintf("expected variable name, found `%s`", p.cur()))
		}
		item.VarDt = p.collectUntil(token.Eq, token.Semicolon)
		if p.at(token.Eq) {
			p.next()
			item.Expr = p.collectUntil(token.Semicolon)
		}
		p.eatSemicolon()
		return item, true
	case token.IdentMacro:
		return p.preparseMacroItem()
	}

	if token.CanStartExpr(t) {
		item := BodyItem{Kind: ItemExpr, Loc: t.Loc}
		item.Expr = p.collectUntil(token.Semicolon)
		p.eatSemicolon()
		return item, true
	}

	p.sink.Error(diagnostic.PreUnexpectedToken, t.Loc,
		fmt.Sprintf("unexpected token `%s` in function body", t))
	p.next()
	return BodyItem{}, false
}

func (p *Preparser) eatSemicolon() {
	if p.at(token.Semicolon) {
		p.next()
	}
}

// preparseBlock consumes `{ items… }` and returns the items.
func (p *Preparser) preparseBlock() []BodyItem {
	start := p.cur().Loc
	if _, ok := p.expect(token.LBrace); !ok {
		return nil
	}
	items := p.preparseItems(token.RBrace)
	if p.at(token.RBrace) {
		p.next()
	} else {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated block")
	}
	return items
}

// splitCapture separates `expr as name` condition tokens into the
// expression and the capture clause.
func splitCapture(toks []token.Token) (expr, capture []token.Token) {
	depth := 0
	for i, t := range toks {
		if isOpen(t.Kind) {
			depth++
		} else if isClose(t.Kind) {
			depth--
		}
		if t.Kind == token.KwAs && depth == 0 {
			return toks[:i], toks[i+1:]
		}
	}
	return toks, nil
}

func (p *Preparser) preparseIfItem() BodyItem {
	start := p.next().Loc // if
	item := BodyItem{Kind: ItemIf, Loc: start}
	cond := p.collectUntil(token.LBrace, token.KwDo)
	item.IfExpr, item.IfCapture = splitCapture(cond)
	item.IfBlock = p.preparseBranchBody()
	for p.at(token.KwElif) {
		p.next()
		var e ElifItem
		cond := p.collectUntil(token.LBrace, token.KwDo)
		e.Expr, e.Capture = splitCapture(cond)
		e.Block = p.preparseBranchBody()
		item.Elifs = append(item.Elifs, e)
	}
	if p.at(token.KwElse) {
		p.next()
		item.HasElse = true
		item.ElseBlock = p.preparseBranchBody()
	}
	return item
}

// preparseBranchBody accepts either a braced block or the single-item
// `do stmt` shorthand.
func (p *Preparser) preparseBranchBody() []BodyItem {
	if p.at(token.KwDo) {
		p.next()
	}
	if p.at(token.LBrace) {
		return p.preparseBlock()
	}
	if item, ok := p.preparseItem(); ok {
		return []BodyItem{item}
	}
	return nil
}

func (p *Preparser) preparseMatchItem() BodyItem {
	start := p.next().Loc // match
	item := BodyItem{Kind: ItemMatch, Loc: start}
	item.MatchExpr = p.collectUntil(token.LBrace)
	if _, ok := p.expect(token.LBrace); !ok {
		return item
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		var arm ArmItem
		head := p.collectUntil(token.FatArrow)
		arm.Pattern, arm.Guard = splitGuard(head)
		if _, ok := p.expect(token.FatArrow); !ok {
			p.collectUntil(token.Comma, token.RBrace)
			if p.at(token.Comma) {
				p.next()
			}
			continue
		}
		if p.at(token.LBrace) {
			arm.HasBlock = true
			arm.Block = p.preparseBlock()
		} else {
			arm.ExprToks = p.collectUntil(token.Comma, token.RBrace)
		}
		if p.at(token.Comma) {
			p.next()
		}
		item.Arms = append(item.Arms, arm)
	}
	if p.at(token.EOF) {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated match")
	} else {
		p.next()
	}
	return item
}

// splitGuard separates `pattern if guard` arm-head tokens.
func splitGuard(toks []token.Token) (pattern, guard []token.Token) {
	depth := 0
	for i, t := range toks {
		if isOpen(t.Kind) {
			depth++
		} else if isClose(t.Kind) {
			depth--
		}
		if t.Kind == token.KwIf && depth == 0 && i > 0 {
			return toks[:i], toks[i+1:]
		}
	}
	return toks, nil
}

func (p *Preparser) preparseForItem() BodyItem {
	start := p.next().Loc // for
	item := BodyItem{Kind: ItemFor, Loc: start}
	item.ForBinding = p.collectUntil(token.KwIn)
	if _, ok := p.expect(token.KwIn); ok {
		item.ForExpr = p.collectUntil(token.LBrace)
	}
	item.Block = p.preparseBlock()
	return item
}

func (p *Preparser) preparseTryItem() BodyItem {
	start := p.next().Loc // try
	item := BodyItem{Kind: ItemTry, Loc: start}
	item.Block = p.preparseBlock()
	if p.at(token.KwCatch) {
		p.next()
		item.HasCatch = true
		if p.at(token.Ident) {
			item.CatchName = p.next()
		}
		item.CatchBlock = p.preparseBlock()
	}
	return item
}

// preparseMacroItem handles a macro call in statement position. With an
// expander available, the expansion re-enters the item recognizer.
func (p *Preparser) preparseMacroItem() (BodyItem, bool) {
	name := p.next() // IdentMacro
	var raw []token.Token
	switch p.cur().Kind {
	case token.LParen:
		raw = p.collectGroup(token.LParen, token.RParen)
	case token.LBrace:
		raw = p.collectGroup(token.LBrace, token.RBrace)
	case token.LBracket:
		raw = p.collectGroup(token.LBracket, token.RBracket)
	default:
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected argument list after `%s!`", name.Lit))
		return BodyItem{}, false
	}
	p.eatSemicolon()
	args := splitArgs(raw)

	if p.expander == nil {
		return BodyItem{Kind: ItemMacroExpand, Loc: name.Loc, MacroName: name, MacroArgs: args}, true
	}

	expanded := p.expander.Expand(name.Lit, args, name.Loc, p.depth+1)
	if expanded == nil {
		return BodyItem{}, false
	}
	sub := New(withEOF(expanded, name.Loc), p.sink, p.expander)
	sub.depth = p.depth + 1
	items := sub.preparseItems(token.EOF)
	if len(items) == 1 {
		return items[0], true
	}
	// Several expanded items collapse into a synthetic block so the caller
	// still receives one item.
	return BodyItem{Kind: ItemBlock, Loc: name.Loc, Block: items}, true
}
