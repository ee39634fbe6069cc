package parser

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/preparser"
	"github.com/lily-lang/lilyc/internal/token"
)

func (p *Parser) parseDecl(d *preparser.Decl) ast.Decl {
	switch d.Kind {
	case preparser.DeclFun:
		return p.parseFunDecl(d, false)
	case preparser.DeclConstant:
		return p.parseConstantDecl(d)
	case preparser.DeclError:
		return p.parseErrorDecl(d)
	case preparser.DeclModule:
		return p.parseModuleDecl(d)
	case preparser.DeclType, preparser.DeclObject:
		return p.parseTypeDecl(d)
	case preparser.DeclUse:
		return p.parseUseDecl(d)
	case preparser.DeclInclude:
		return &ast.IncludeDecl{
			Header: ast.Header{Loc: d.Loc, Vis: d.Vis},
			File:   d.File,
		}
	case preparser.DeclMacroExpand:
		// Unexpanded macro calls only survive preparsing without tables.
		return &ast.MacroExpandDecl{
			Header: ast.Header{Loc: d.Loc, Name: d.Name.Lit},
			Args:   d.MacroArgs,
		}
	}
	return nil
}

func (p *Parser) parseFunDecl(d *preparser.Decl, method bool) *ast.FunDecl {
	out := &ast.FunDecl{
		Header:     ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit},
		IsOperator: d.IsOperator,
		Method:     method,
	}
	out.Generics = p.parseGenericParams(d.Generics)
	out.Params = p.parseFunParams(d.Params)
	if len(d.ReturnDt) > 0 {
		out.Return = p.ParseDataTypeTokens(d.ReturnDt)
	}
	switch {
	case len(d.Expr) > 0:
		// `= expr;` body shorthand: one implicit return.
		if e := p.ParseExprTokens(d.Expr); e != nil {
			out.Body = []ast.Stmt{&ast.ReturnStmt{Value: e, Loc: e.Location()}}
		}
	case d.Body != nil:
		out.Body = p.ParseItems(d.Body)
	}
	return out
}

// parseGenericParams parses a `[T, U: Trait]` span.
func (p *Parser) parseGenericParams(toks []token.Token) []ast.GenericParam {
	if len(toks) == 0 {
		return nil
	}
	b := p.newBlock(toks)
	var out []ast.GenericParam
	for !b.done() {
		name, ok := b.expect(token.Ident)
		if !ok {
			b.skipTo(token.Comma)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		g := ast.GenericParam{Name: name.Lit, Loc: name.Loc}
		if b.at(token.Colon) {
			b.next()
			for b.at(token.Ident) {
				g.Constraint = append(g.Constraint, b.next().Lit)
				if b.at(token.Dot) {
					b.next()
				} else {
					break
				}
			}
		}
		out = append(out, g)
		if b.at(token.Comma) {
			b.next()
		}
	}
	return out
}

// parseFunParams parses a `(a Int32, mut b Str := "x")` span.
func (p *Parser) parseFunParams(toks []token.Token) []ast.FunParam {
	if len(toks) == 0 {
		return nil
	}
	b := p.newBlock(toks)
	var out []ast.FunParam
	for !b.done() {
		var param ast.FunParam
		if b.at(token.KwMut) {
			param.Mut = true
			b.next()
		}
		if b.at(token.KwSelfLower) {
			self := b.next()
			param.Name = "self"
			param.Loc = self.Loc
			out = append(out, param)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		name, ok := b.expect(token.Ident)
		if !ok {
			b.skipTo(token.Comma)
			if b.at(token.Comma) {
				b.next()
			}
			continue
		}
		param.Name = name.Lit
		param.Loc = name.Loc
		if !b.at(token.Comma) && !b.at(token.ColonEq) && !b.done() {
			param.Dt = b.parseDataType()
		}
		if b.at(token.ColonEq) {
			b.next()
			param.Default = b.parseExpr()
		}
		out = append(out, param)
		if b.at(token.Comma) {
			b.next()
		}
	}
	return out
}

func (p *Parser) parseConstantDecl(d *preparser.Decl) ast.Decl {
	out := &ast.ConstantDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
	if len(d.AliasDt) > 0 {
		out.Dt = p.ParseDataTypeTokens(d.AliasDt)
	}
	out.Init = p.ParseExprTokens(d.Expr)
	if out.Init == nil {
		return nil
	}
	return out
}

func (p *Parser) parseErrorDecl(d *preparser.Decl) ast.Decl {
	out := &ast.ErrorDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
	out.Generics = p.parseGenericParams(d.Generics)
	if len(d.AliasDt) > 0 {
		out.Dt = p.ParseDataTypeTokens(d.AliasDt)
	}
	return out
}

func (p *Parser) parseModuleDecl(d *preparser.Decl) ast.Decl {
	out := &ast.ModuleDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
	for _, item := range d.Items {
		if decl := p.parseDecl(item); decl != nil {
			out.Decls = append(out.Decls, decl)
		}
	}
	return out
}

func (p *Parser) parseTypeDecl(d *preparser.Decl) ast.Decl {
	switch d.ObjectKind {
	case preparser.ObjectAlias:
		out := &ast.AliasDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
		out.Generics = p.parseGenericParams(d.Generics)
		out.Dt = p.ParseDataTypeTokens(d.AliasDt)
		if out.Dt == nil {
			return nil
		}
		return out
	case preparser.ObjectEnum, preparser.ObjectEnumObject:
		out := &ast.EnumDecl{
			Header:   ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit},
			IsObject: d.ObjectKind == preparser.ObjectEnumObject,
		}
		out.Generics = p.parseGenericParams(d.Generics)
		for _, v := range d.Variants {
			variant := ast.EnumVariant{Name: v.Name.Lit, Loc: v.Name.Loc}
			if len(v.Dt) > 0 {
				variant.Dt = p.ParseDataTypeTokens(v.Dt)
			}
			out.Variants = append(out.Variants, variant)
		}
		out.Methods = p.parseMethods(d.Items)
		return out
	case preparser.ObjectRecord, preparser.ObjectRecordObject:
		out := &ast.RecordDecl{
			Header:   ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit},
			IsObject: d.ObjectKind == preparser.ObjectRecordObject,
		}
		out.Generics = p.parseGenericParams(d.Generics)
		for _, f := range d.Fields {
			field := ast.RecordField{Name: f.Name.Lit, Vis: f.Vis, Mut: f.Mut, Loc: f.Name.Loc}
			field.Dt = p.ParseDataTypeTokens(f.Dt)
			if field.Dt == nil {
				continue
			}
			out.Fields = append(out.Fields, field)
		}
		out.Methods = p.parseMethods(d.Items)
		return out
	case preparser.ObjectClass:
		out := &ast.ClassDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
		out.Generics = p.parseGenericParams(d.Generics)
		for _, group := range splitPathList(d.Impls) {
			out.Impls = append(out.Impls, group)
		}
		for _, f := range d.Fields {
			attr := ast.ClassAttribute{Name: f.Name.Lit, Vis: f.Vis, Loc: f.Name.Loc}
			attr.Dt = p.ParseDataTypeTokens(f.Dt)
			if len(f.Init) > 0 {
				attr.Init = p.ParseExprTokens(f.Init)
			}
			if attr.Dt == nil && attr.Init == nil {
				continue
			}
			out.Attributes = append(out.Attributes, attr)
		}
		out.Methods = p.parseMethods(d.Items)
		return out
	case preparser.ObjectTrait:
		out := &ast.TraitDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis, Name: d.Name.Lit}}
		out.Generics = p.parseGenericParams(d.Generics)
		for _, item := range d.Items {
			if item.Kind != preparser.DeclFun {
				continue
			}
			proto := ast.TraitPrototype{Name: item.Name.Lit, Loc: item.Loc}
			proto.Params = p.parseFunParams(item.Params)
			if len(item.ReturnDt) > 0 {
				proto.Return = p.ParseDataTypeTokens(item.ReturnDt)
			}
			out.Prototypes = append(out.Prototypes, proto)
		}
		return out
	}
	p.sink.Error(diagnostic.ParseExpectedToken, d.Loc,
		fmt.Sprintf("malformed %s declaration", d.Kind))
	return nil
}

func (p *Parser) parseMethods(items []*preparser.Decl) []*ast.FunDecl {
	var out []*ast.FunDecl
	for _, item := range items {
		if item.Kind != preparser.DeclFun {
			continue
		}
		if f := p.parseFunDecl(item, true); f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (p *Parser) parseUseDecl(d *preparser.Decl) ast.Decl {
	out := &ast.UseDecl{Header: ast.Header{Loc: d.Loc, Vis: d.Vis}}
	for _, t := range d.Path {
		if t.Kind == token.Ident {
			out.Path = append(out.Path, t.Lit)
		}
	}
	if len(out.Path) == 0 {
		p.sink.Error(diagnostic.ParseExpectedIdent, d.Loc, "expected a path after `use`")
		return nil
	}
	out.Name = out.Path[len(out.Path)-1]
	return out
}

// splitPathList splits `A.B, C` impl tokens into dotted path groups.
func splitPathList(toks []token.Token) [][]string {
	var out [][]string
	var cur []string
	for _, t := range toks {
		switch t.Kind {
		case token.Ident:
			cur = append(cur, t.Lit)
		case token.Comma:
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
