package preparser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/macro"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// Preparser walks one file's token vector and produces declaration
// skeletons. When an expander is supplied, macro call sites are expanded in
// place and the expansion re-enters the shape recognizer.
type Preparser struct {
	toks     []token.Token
	pos      int
	sink     *diagnostic.Sink
	expander *macro.Expander
	depth    int
}

// New creates a preparser over a token vector ending in EOF.
func New(toks []token.Token, sink *diagnostic.Sink, expander *macro.Expander) *Preparser {
	return &Preparser{toks: toks, sink: sink, expander: expander}
}

// Preparse consumes the whole vector.
func (p *Preparser) Preparse() *Result {
	res := &Result{}
	for !p.at(token.EOF) {
		if d := p.preparseDecl(); d != nil {
			res.Decls = append(res.Decls, d...)
			for _, dd := range d {
				switch dd.Kind {
				case DeclUse:
					res.Edges = append(res.Edges, UseEdge{Path: dd.Path, Loc: dd.Loc})
				case DeclInclude:
					res.Edges = append(res.Edges, UseEdge{Include: true, File: dd.File, Loc: dd.Loc})
				}
			}
		}
	}
	return res
}

// --- cursor helpers ---

func (p *Preparser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Preparser) peek(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Preparser) next() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Preparser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Preparser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
		fmt.Sprintf("expected `%s`, found `%s`", k, p.cur()))
	return p.cur(), false
}

// sync advances to the next top-level synchronization point.
func (p *Preparser) sync() {
	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwModule, token.KwFun, token.KwType, token.KwObject,
			token.KwClass, token.KwTrait, token.KwError, token.KwVal,
			token.KwUse, token.KwInclude, token.KwMacro, token.KwPub:
			return
		case token.Semicolon:
			p.next()
			return
		}
		p.next()
	}
}

func isOpen(k token.Kind) bool {
	return k == token.LParen || k == token.LBracket || k == token.LBrace || k == token.DollarBrace
}

func isClose(k token.Kind) bool {
	return k == token.RParen || k == token.RBracket || k == token.RBrace
}

// collectUntil gathers tokens until one of the stop kinds appears at
// bracket depth zero. The stop token is not consumed.
func (p *Preparser) collectUntil(stops ...token.Kind) []token.Token {
	var out []token.Token
	depth := 0
	for !p.at(token.EOF) {
		k := p.cur().Kind
		if depth == 0 {
			for _, s := range stops {
				if k == s {
					return out
				}
			}
		}
		if isOpen(k) {
			depth++
		} else if isClose(k) {
			if depth == 0 {
				return out
			}
			depth--
		}
		out = append(out, p.next())
	}
	return out
}

// collectGroup assumes the cursor sits on open; it consumes through the
// matching close and returns the inner tokens. Unmatched delimiters consume
// to EOF and report.
func (p *Preparser) collectGroup(open, close token.Kind) []token.Token {
	start := p.cur().Loc
	if _, ok := p.expect(open); !ok {
		return nil
	}
	var out []token.Token
	depth := 1
	for !p.at(token.EOF) {
		k := p.cur().Kind
		if isOpen(k) {
			depth++
		} else if isClose(k) {
			depth--
			if depth == 0 {
				p.next()
				return out
			}
		}
		out = append(out, p.next())
	}
	p.sink.Error(diagnostic.PrePrematureEOF, start, "unmatched delimiter before end of file")
	return out
}

// splitArgs splits a delimited token group by commas at depth zero.
func splitArgs(toks []token.Token) [][]token.Token {
	var groups [][]token.Token
	var cur []token.Token
	depth := 0
	for _, t := range toks {
		if isOpen(t.Kind) {
			depth++
		} else if isClose(t.Kind) {
			depth--
		}
		if t.Kind == token.Comma && depth == 0 {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 || len(groups) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// --- top level ---

func (p *Preparser) preparseDecl() []*Decl {
	vis := ast.Private
	if p.at(token.KwPub) {
		vis = ast.Public
		p.next()
	}

	switch p.cur().Kind {
	case token.Semicolon:
		p.next()
		return nil
	case token.KwModule:
		return wrap(p.preparseModule(vis))
	case token.KwFun:
		return wrap(p.preparseFun(vis))
	case token.KwType:
		return wrap(p.preparseType(vis))
	case token.KwObject:
		return wrap(p.preparseObject(vis))
	case token.KwClass:
		return wrap(p.preparseClass(vis))
	case token.KwTrait:
		return wrap(p.preparseTrait(vis))
	case token.KwError:
		return wrap(p.preparseError(vis))
	case token.KwVal:
		return wrap(p.preparseConstant(vis))
	case token.KwUse:
		return wrap(p.preparseUse())
	case token.KwInclude:
		return wrap(p.preparseInclude())
	case token.KwMacro:
		p.preparseMacroDef(vis)
		return nil
	case token.IdentMacro:
		return p.preparseMacroExpand()
	case token.EOF:
		return nil
	}

	p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
		fmt.Sprintf("unexpected token `%s` at top level", p.cur()))
	p.sync()
	return nil
}

func wrap(d *Decl) []*Decl {
	if d == nil {
		return nil
	}
	return []*Decl{d}
}

func (p *Preparser) preparseModule(vis ast.Visibility) *Decl {
	start := p.next().Loc // module
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclModule, Loc: start, Vis: vis, Name: name}
	if _, ok := p.expect(token.LBrace); !ok {
		p.sync()
		return nil
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		d.Items = append(d.Items, p.preparseDecl()...)
	}
	if p.at(token.EOF) {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated module body")
	} else {
		p.next() // }
	}
	return d
}

// operator spellings accepted as a fun name.
func isOperatorSpelling(k token.Kind) bool {
	switch k {
	case token.Plus, token.Minus, token.Star, token.StarStar, token.Slash,
		token.Percent, token.PlusPlus, token.MinusMinus, token.EqEq,
		token.BangEq, token.Lt, token.Gt, token.LtEq, token.GtEq,
		token.Amp, token.Pipe, token.Caret, token.Shl, token.Shr,
		token.KwNot, token.Tilde, token.LBracket:
		return true
	}
	return false
}

func (p *Preparser) preparseFun(vis ast.Visibility) *Decl {
	start := p.next().Loc // fun
	d := &Decl{Kind: DeclFun, Loc: start, Vis: vis}

	switch {
	case p.at(token.Ident) || p.at(token.IdentString):
		d.Name = p.next()
	case isOperatorSpelling(p.cur().Kind):
		d.IsOperator = true
		op := p.next()
		if op.Kind == token.LBracket && p.at(token.RBracket) {
			p.next()
			op.Lit = "[]"
		} else if op.Lit == "" {
			op.Lit = op.Kind.String()
		}
		d.Name = op
	default:
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected function name, found `%s`", p.cur()))
		p.sync()
		return nil
	}

	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}
	if p.at(token.LParen) {
		d.Params = p.collectGroup(token.LParen, token.RParen)
	}
	d.ReturnDt = p.collectUntil(token.Eq, token.LBrace, token.Semicolon)

	switch p.cur().Kind {
	case token.Eq:
		p.next()
		d.Expr = p.collectUntil(token.Semicolon)
		if p.at(token.Semicolon) {
			p.next()
		}
		// A macro call as the whole shorthand body expands to body items.
		if len(d.Expr) > 0 && d.Expr[0].Kind == token.IdentMacro {
			sub := New(withEOF(d.Expr, d.Expr[0].Loc), p.sink, p.expander)
			sub.depth = p.depth
			d.Body = sub.PreparseItems()
			d.Expr = nil
		}
	case token.LBrace:
		p.next()
		d.Body = p.preparseItems(token.RBrace)
		if p.at(token.RBrace) {
			p.next()
		} else {
			p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated function body")
		}
	case token.Semicolon:
		p.next() // prototype
	default:
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected `=`, `{` or `;` after function header, found `%s`", p.cur()))
		p.sync()
	}
	return d
}

func (p *Preparser) preparseType(vis ast.Visibility) *Decl {
	start := p.next().Loc // type
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclType, Loc: start, Vis: vis, Name: name}
	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}

	switch p.cur().Kind {
	case token.Eq:
		p.next()
		d.ObjectKind = ObjectAlias
		d.AliasDt = p.collectUntil(token.Semicolon)
		if p.at(token.Semicolon) {
			p.next()
		}
	case token.KwEnum:
		p.next()
		d.ObjectKind = ObjectEnum
		p.preparseEnumBody(d)
	case token.KwRecord:
		p.next()
		d.ObjectKind = ObjectRecord
		p.preparseRecordBody(d)
	default:
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected `=`, `enum` or `record` after type name, found `%s`", p.cur()))
		p.sync()
		return nil
	}
	return d
}

func (p *Preparser) preparseObject(vis ast.Visibility) *Decl {
	start := p.next().Loc // object
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclObject, Loc: start, Vis: vis, Name: name}
	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}
	switch p.cur().Kind {
	case token.KwEnum:
		p.next()
		d.ObjectKind = ObjectEnumObject
		p.preparseEnumBody(d)
	case token.KwRecord:
		p.next()
		d.ObjectKind = ObjectRecordObject
		p.preparseRecordBody(d)
	default:
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected `enum` or `record` after object name, found `%s`", p.cur()))
		p.sync()
		return nil
	}
	return d
}

func (p *Preparser) preparseClass(vis ast.Visibility) *Decl {
	start := p.next().Loc // class
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclObject, ObjectKind: ObjectClass, Loc: start, Vis: vis, Name: name}
	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}
	// impl list: class C impl T1, T2 { … }
	if p.at(token.Ident) && p.cur().Lit == "impl" {
		p.next()
		d.Impls = p.collectUntil(token.LBrace)
	}
	p.preparseObjectBody(d, true)
	return d
}

func (p *Preparser) preparseTrait(vis ast.Visibility) *Decl {
	start := p.next().Loc // trait
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclObject, ObjectKind: ObjectTrait, Loc: start, Vis: vis, Name: name}
	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}
	p.preparseObjectBody(d, false)
	return d
}

// preparseObjectBody consumes `{ … }` holding attributes and/or fun items.
func (p *Preparser) preparseObjectBody(d *Decl, attributes bool) {
	start := p.cur().Loc
	if _, ok := p.expect(token.LBrace); !ok {
		p.sync()
		return
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vis := ast.Private
		if p.at(token.KwPub) {
			vis = ast.Public
			p.next()
		}
		switch {
		case p.at(token.KwFun):
			if f := p.preparseFun(vis); f != nil {
				d.Items = append(d.Items, f)
			}
		case p.at(token.Semicolon):
			p.next()
		case attributes && (p.at(token.Ident) || p.at(token.KwMut)):
			f := RawField{Vis: vis}
			if p.at(token.KwMut) {
				f.Mut = true
				p.next()
			}
			f.Name = p.next()
			f.Dt = p.collectUntil(token.ColonEq, token.Semicolon, token.Comma)
			if p.at(token.ColonEq) {
				p.next()
				f.Init = p.collectUntil(token.Semicolon, token.Comma)
			}
			if p.at(token.Semicolon) || p.at(token.Comma) {
				p.next()
			}
			d.Fields = append(d.Fields, f)
		default:
			p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
				fmt.Sprintf("unexpected token `%s` in object body", p.cur()))
			p.next()
		}
	}
	if p.at(token.EOF) {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated object body")
	} else {
		p.next()
	}
}

// preparseEnumBody consumes `{ variants… [fun items…] }`.
func (p *Preparser) preparseEnumBody(d *Decl) {
	start := p.cur().Loc
	if _, ok := p.expect(token.LBrace); !ok {
		p.sync()
		return
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vis := ast.Private
		if p.at(token.KwPub) {
			vis = ast.Public
			p.next()
		}
		switch {
		case p.at(token.KwFun):
			if f := p.preparseFun(vis); f != nil {
				d.Items = append(d.Items, f)
			}
		case p.at(token.Ident):
			v := RawVariant{Name: p.next()}
			v.Dt = p.collectUntil(token.Comma, token.Semicolon)
			if p.at(token.Comma) || p.at(token.Semicolon) {
				p.next()
			}
			d.Variants = append(d.Variants, v)
		case p.at(token.Comma) || p.at(token.Semicolon):
			p.next()
		default:
			p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
				fmt.Sprintf("unexpected token `%s` in enum body", p.cur()))
			p.next()
		}
	}
	if p.at(token.EOF) {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated enum body")
	} else {
		p.next()
	}
}

// preparseRecordBody consumes `{ fields… [fun items…] }`.
func (p *Preparser) preparseRecordBody(d *Decl) {
	start := p.cur().Loc
	if _, ok := p.expect(token.LBrace); !ok {
		p.sync()
		return
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vis := ast.Private
		if p.at(token.KwPub) {
			vis = ast.Public
			p.next()
		}
		switch {
		case p.at(token.KwFun):
			if f := p.preparseFun(vis); f != nil {
				d.Items = append(d.Items, f)
			}
		case p.at(token.Ident) || p.at(token.KwMut):
			f := RawField{Vis: vis}
			if p.at(token.KwMut) {
				f.Mut = true
				p.next()
			}
			f.Name = p.next()
			f.Dt = p.collectUntil(token.Comma, token.Semicolon)
			if p.at(token.Comma) || p.at(token.Semicolon) {
				p.next()
			}
			d.Fields = append(d.Fields, f)
		case p.at(token.Comma) || p.at(token.Semicolon):
			p.next()
		default:
			p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
				fmt.Sprintf("unexpected token `%s` in record body", p.cur()))
			p.next()
		}
	}
	if p.at(token.EOF) {
		p.sink.Error(diagnostic.PrePrematureEOF, start, "unterminated record body")
	} else {
		p.next()
	}
}

func (p *Preparser) preparseError(vis ast.Visibility) *Decl {
	start := p.next().Loc // error
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclError, Loc: start, Vis: vis, Name: name}
	if p.at(token.LBracket) {
		d.Generics = p.collectGroup(token.LBracket, token.RBracket)
	}
	d.AliasDt = p.collectUntil(token.Semicolon)
	if p.at(token.Semicolon) {
		p.next()
	}
	return d
}

func (p *Preparser) preparseConstant(vis ast.Visibility) *Decl {
	start := p.next().Loc // val
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	d := &Decl{Kind: DeclConstant, Loc: start, Vis: vis, Name: name}
	d.AliasDt = p.collectUntil(token.Eq, token.Semicolon)
	if p.at(token.Eq) {
		p.next()
		d.Expr = p.collectUntil(token.Semicolon)
	}
	if p.at(token.Semicolon) {
		p.next()
	}
	return d
}

func (p *Preparser) preparseUse() *Decl {
	start := p.next().Loc // use
	d := &Decl{Kind: DeclUse, Loc: start}
	d.Path = p.collectUntil(token.Semicolon)
	if p.at(token.Semicolon) {
		p.next()
	}
	return d
}

func (p *Preparser) preparseInclude() *Decl {
	start := p.next().Loc // include
	d := &Decl{Kind: DeclInclude, Loc: start}
	if p.at(token.LitStr) {
		d.File = p.next().Lit
	} else {
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected file string after `include`, found `%s`", p.cur()))
	}
	if p.at(token.Semicolon) {
		p.next()
	}
	return d
}

// preparseMacroDef captures `macro name(params) { body }` whole. Body
// tokens are stored verbatim including $ident references.
func (p *Preparser) preparseMacroDef(vis ast.Visibility) {
	start := p.next().Loc // macro
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return
	}
	m := &macro.Macro{Name: name.Lit, Loc: start, Vis: vis}
	if p.at(token.LParen) {
		raw := p.collectGroup(token.LParen, token.RParen)
		for _, group := range splitArgs(raw) {
			param, ok := scanMacroParam(group)
			if !ok {
				p.sink.Error(diagnostic.PreUnexpectedToken, start,
					fmt.Sprintf("invalid parameter in macro `%s`", m.Name))
				continue
			}
			m.Params = append(m.Params, param)
		}
	}
	if p.at(token.LBrace) {
		m.Body = p.collectGroup(token.LBrace, token.RBrace)
	} else {
		p.sink.Error(diagnostic.PreUnexpectedToken, p.cur().Loc,
			fmt.Sprintf("expected `{` to open macro body, found `%s`", p.cur()))
		p.sync()
		return
	}
	if p.expander != nil {
		p.expander.Tables().Register(m)
	}
}

// scanMacroParam scans a `$ident : kind` annotation.
func scanMacroParam(toks []token.Token) (macro.Param, bool) {
	if len(toks) != 3 || toks[0].Kind != token.IdentDollar || toks[1].Kind != token.Colon {
		return macro.Param{}, false
	}
	kind, ok := macro.LookupParamKind(toks[2].Lit)
	if !ok {
		return macro.Param{}, false
	}
	return macro.Param{Name: toks[0].Lit, Kind: kind, Loc: toks[0].Loc}, true
}

// preparseMacroExpand handles a `name!` call in declaration position. With
// an expander available the expansion re-enters the whole recognizer and
// its declarations are spliced in place.
func (p *Preparser) preparseMacroExpand() []*Decl {
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
		p.sync()
		return nil
	}
	if p.at(token.Semicolon) {
		p.next()
	}
	args := splitArgs(raw)

	if p.expander == nil {
		return []*Decl{{Kind: DeclMacroExpand, Loc: name.Loc, Name: name, MacroArgs: args}}
	}

	expanded := p.expander.Expand(name.Lit, args, name.Loc, p.depth+1)
	if expanded == nil {
		return nil
	}
	sub := New(withEOF(expanded, name.Loc), p.sink, p.expander)
	sub.depth = p.depth + 1
	res := sub.Preparse()
	return res.Decls
}

// withEOF terminates an expanded token vector for re-preparsing.
func withEOF(toks []token.Token, loc position.Location) []token.Token {
	if len(toks) > 0 {
		loc = toks[len(toks)-1].Loc
	}
	return append(toks, token.Token{Kind: token.EOF, Loc: loc})
}
