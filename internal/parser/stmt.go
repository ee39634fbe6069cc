package parser

import (
	"strconv"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/preparser"
	"github.com/lily-lang/lilyc/internal/token"
)

func parseFloatLit(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}

// topLevelEq finds a bare `=` at bracket depth zero.
func topLevelEq(toks []token.Token) int {
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace, token.DollarBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		case token.Eq:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ParseItems converts preparsed fun-body items into statements. Failed
// items are dropped after their diagnostics are recorded.
func (p *Parser) ParseItems(items []preparser.BodyItem) []ast.Stmt {
	var out []ast.Stmt
	for i := range items {
		if s := p.parseItem(&items[i]); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *Parser) parseItem(item *preparser.BodyItem) ast.Stmt {
	switch item.Kind {
	case preparser.ItemIf:
		return p.parseIfItem(item)
	case preparser.ItemMatch:
		return p.parseMatchItem(item)
	case preparser.ItemFor:
		binding := p.ParsePatternTokens(item.ForBinding)
		iter := p.ParseExprTokens(item.ForExpr)
		if binding == nil || iter == nil {
			return nil
		}
		return &ast.ForStmt{Binding: binding, Iter: iter, Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemWhile:
		cond := p.ParseExprTokens(item.CondExpr)
		if cond == nil {
			return nil
		}
		return &ast.WhileStmt{Cond: cond, Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemLoop:
		return &ast.LoopStmt{Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemDoWhile:
		cond := p.ParseExprTokens(item.CondExpr)
		if cond == nil {
			return nil
		}
		return &ast.DoWhileStmt{Body: p.ParseItems(item.Block), Cond: cond, Loc: item.Loc}
	case preparser.ItemDefer:
		if item.Expr != nil {
			e := p.ParseExprTokens(item.Expr)
			if e == nil {
				return nil
			}
			return &ast.DeferStmt{Body: []ast.Stmt{&ast.ExprStmt{Value: e, Loc: e.Location()}}, Loc: item.Loc}
		}
		return &ast.DeferStmt{Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemDrop:
		e := p.ParseExprTokens(item.Expr)
		if e == nil {
			return nil
		}
		return &ast.DropStmt{Value: e, Loc: item.Loc}
	case preparser.ItemTry:
		out := &ast.TryStmt{Body: p.ParseItems(item.Block), Loc: item.Loc}
		if item.HasCatch {
			out.Catch = &ast.CatchClause{
				Name: item.CatchName.Lit,
				Body: p.ParseItems(item.CatchBlock),
				Loc:  item.CatchName.Loc,
			}
		}
		return out
	case preparser.ItemUnsafe:
		return &ast.UnsafeStmt{Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemAsm:
		return &ast.AsmStmt{Text: item.Label.Lit, Loc: item.Loc}
	case preparser.ItemBlock:
		return &ast.BlockStmt{Label: item.Label.Lit, Body: p.ParseItems(item.Block), Loc: item.Loc}
	case preparser.ItemRaise:
		e := p.ParseExprTokens(item.Expr)
		if e == nil {
			return nil
		}
		return &ast.RaiseStmt{Value: e, Loc: item.Loc}
	case preparser.ItemReturn:
		out := &ast.ReturnStmt{Loc: item.Loc}
		if len(item.Expr) > 0 {
			out.Value = p.ParseExprTokens(item.Expr)
			if out.Value == nil {
				return nil
			}
		}
		return out
	case preparser.ItemNext:
		return &ast.NextStmt{Label: item.Label.Lit, Loc: item.Loc}
	case preparser.ItemBreak:
		return &ast.BreakStmt{Label: item.Label.Lit, Loc: item.Loc}
	case preparser.ItemAwait:
		e := p.ParseExprTokens(item.Expr)
		if e == nil {
			return nil
		}
		return &ast.AwaitStmt{Value: e, Loc: item.Loc}
	case preparser.ItemVariable:
		out := &ast.VariableStmt{Mut: item.Mut, Name: item.VarName.Lit, Loc: item.Loc}
		if len(item.VarDt) > 0 {
			out.Dt = p.ParseDataTypeTokens(item.VarDt)
		}
		if len(item.Expr) > 0 {
			out.Init = p.ParseExprTokens(item.Expr)
			if out.Init == nil {
				return nil
			}
		}
		return out
	case preparser.ItemExpr:
		// An `=` at depth zero makes the item an assignment.
		if idx := topLevelEq(item.Expr); idx >= 0 {
			target := p.ParseExprTokens(item.Expr[:idx])
			value := p.ParseExprTokens(item.Expr[idx+1:])
			if target == nil || value == nil {
				return nil
			}
			return &ast.AssignStmt{Target: target, Value: value, Loc: item.Loc}
		}
		e := p.ParseExprTokens(item.Expr)
		if e == nil {
			return nil
		}
		return &ast.ExprStmt{Value: e, Loc: item.Loc}
	case preparser.ItemMacroExpand:
		// Reaches the parser only when preparsing ran without an expander;
		// the pipeline always expands first.
		return nil
	}
	return nil
}

func (p *Parser) parseIfItem(item *preparser.BodyItem) ast.Stmt {
	cond := p.ParseExprTokens(item.IfExpr)
	if cond == nil {
		return nil
	}
	out := &ast.IfStmt{Loc: item.Loc}
	out.If = ast.IfBranch{Cond: cond, Capture: captureOf(item.IfCapture), Body: p.ParseItems(item.IfBlock)}
	for _, e := range item.Elifs {
		c := p.ParseExprTokens(e.Expr)
		if c == nil {
			continue
		}
		out.Elifs = append(out.Elifs, ast.IfBranch{Cond: c, Capture: captureOf(e.Capture), Body: p.ParseItems(e.Block)})
	}
	if item.HasElse {
		out.Else = p.ParseItems(item.ElseBlock)
		if out.Else == nil {
			out.Else = []ast.Stmt{}
		}
	}
	return out
}

func captureOf(toks []token.Token) *ast.CaptureClause {
	if len(toks) == 0 {
		return nil
	}
	return &ast.CaptureClause{Name: toks[0].Lit, Loc: toks[0].Loc}
}

func (p *Parser) parseMatchItem(item *preparser.BodyItem) ast.Stmt {
	scrut := p.ParseExprTokens(item.MatchExpr)
	if scrut == nil {
		return nil
	}
	out := &ast.MatchStmt{Scrutinee: scrut, Loc: item.Loc}
	for _, arm := range item.Arms {
		pat := p.ParsePatternTokens(arm.Pattern)
		if pat == nil {
			continue
		}
		var guard ast.Expr
		if len(arm.Guard) > 0 {
			guard = p.ParseExprTokens(arm.Guard)
		}
		var body []ast.Stmt
		if arm.HasBlock {
			body = p.ParseItems(arm.Block)
		} else if e := p.ParseExprTokens(arm.ExprToks); e != nil {
			body = []ast.Stmt{&ast.ExprStmt{Value: e, Loc: e.Location()}}
		}
		out.Arms = append(out.Arms, ast.MatchStmtArm{Pattern: pat, Guard: guard, Body: body, Loc: pat.Location()})
	}
	return out
}

// parseLambda lifts a (fun …) group into a lambda expression. The opening
// paren is already consumed; the cursor sits on `fun`.
func (b *block) parseLambda(start position.Location) ast.Expr {
	b.next() // fun
	out := &ast.Lambda{Loc: start}

	if _, ok := b.expect(token.LParen); !ok {
		return nil
	}
	for !b.at(token.RParen) && !b.done() {
		name, ok := b.expect(token.Ident)
		if !ok {
			b.skipTo(token.Comma, token.RParen)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		param := ast.LambdaParam{Name: name.Lit, Loc: name.Loc}
		if !b.at(token.Comma) && !b.at(token.RParen) {
			param.Dt = b.parseDataType()
		}
		out.Params = append(out.Params, param)
		if b.at(token.Comma) {
			b.next()
		}
	}
	if _, ok := b.expect(token.RParen); !ok {
		return nil
	}

	if !b.at(token.Eq) && !b.at(token.LBrace) && !b.at(token.RParen) {
		out.Return = b.parseDataType()
		if out.Return == nil {
			return nil
		}
	}

	switch b.cur().Kind {
	case token.Eq:
		b.next()
		body := b.parseExpr()
		if body == nil {
			return nil
		}
		out.Body = []ast.Stmt{&ast.ReturnStmt{Value: body, Loc: body.Location()}}
	case token.LBrace:
		raw := b.collectBraceGroup()
		sub := preparser.New(append(raw, token.Token{Kind: token.EOF}), b.p.sink, nil)
		items := sub.PreparseItems()
		out.Body = b.p.ParseItems(items)
	}

	end, _ := b.expect(token.RParen)
	out.Loc = position.Span(start, end.Loc)

	// Call-site arguments directly after the lambda group.
	if b.at(token.LParen) {
		args, end := b.parseCallArgs()
		return &ast.Call{Kind: ast.CallLambda, Lambda: out, Args: args,
			Loc: position.Span(start, end)}
	}
	return out
}

// collectBraceGroup consumes a balanced { … } group and returns the inner
// tokens.
func (b *block) collectBraceGroup() []token.Token {
	if _, ok := b.expect(token.LBrace); !ok {
		return nil
	}
	var out []token.Token
	depth := 1
	for !b.done() {
		t := b.cur()
		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace, token.DollarBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				b.next()
				return out
			}
		}
		out = append(out, b.next())
	}
	return out
}
