package macro

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// MaxDepth bounds recursive expansion.
const MaxDepth = 64

// Expander performs substitution for one package.
type Expander struct {
	tables *Tables
	sink   *diagnostic.Sink
}

// NewExpander creates an expander over the package's tables.
func NewExpander(tables *Tables, sink *diagnostic.Sink) *Expander {
	return &Expander{tables: tables, sink: sink}
}

// Tables returns the expander's table pair.
func (e *Expander) Tables() *Tables { return e.tables }

// Expand resolves name against the tables and substitutes args into the
// macro body. callLoc is the expansion site; diagnostics cite both the site
// and the macro's definition site. The returned slice is nil after any
// reported error.
func (e *Expander) Expand(name string, args [][]token.Token, callLoc position.Location, depth int) []token.Token {
	if depth > MaxDepth {
		e.sink.Error(diagnostic.MacroDepthExceeded, callLoc,
			fmt.Sprintf("macro expansion depth exceeded while expanding `%s!`", name))
		return nil
	}

	m, found, ambiguous := e.tables.Lookup(name)
	if !found {
		e.sink.Error(diagnostic.MacroNotFound, callLoc, fmt.Sprintf("macro `%s!` is not found", name))
		return nil
	}
	if ambiguous {
		e.sink.Emit(diagnostic.Record{
			Severity:  diagnostic.SevError,
			Code:      diagnostic.MacroAmbiguous,
			Msg:       fmt.Sprintf("macro `%s!` is defined in both the private and the public table", name),
			Loc:       callLoc,
			Secondary: []position.Location{m.Loc},
		})
		return nil
	}

	if len(args) > len(m.Params) {
		e.errorAt(m, callLoc, diagnostic.MacroTooManyParams,
			fmt.Sprintf("too many parameters in call of macro `%s!`: expected %d, got %d", name, len(m.Params), len(args)))
		return nil
	}
	if len(args) < len(m.Params) {
		e.errorAt(m, callLoc, diagnostic.MacroTooFewParams,
			fmt.Sprintf("too few parameters in call of macro `%s!`: expected %d, got %d", name, len(m.Params), len(args)))
		return nil
	}

	// Bind each parameter, checking the argument against the param kind and
	// building the replacement token sequence.
	bindings := make(map[string][]token.Token, len(m.Params))
	for i, p := range m.Params {
		arg := args[i]
		repl, ok := e.bind(p, arg, callLoc)
		if !ok {
			e.errorAt(m, callLoc, diagnostic.MacroKindMismatch,
				fmt.Sprintf("parameter `$%s` of macro `%s!` expects %s", p.Name, name, p.Kind))
			return nil
		}
		bindings[p.Name] = repl
	}

	// Clone the body and replace each $name in place. Hygiene: only declared
	// parameter names substitute; any other $name is an error.
	out := make([]token.Token, 0, len(m.Body))
	for _, t := range m.Body {
		if t.Kind == token.IdentDollar {
			repl, ok := bindings[t.Lit]
			if !ok {
				e.errorAt(m, callLoc, diagnostic.MacroUnknownDollar,
					fmt.Sprintf("unknown `$%s` in body of macro `%s!`", t.Lit, name))
				return nil
			}
			out = append(out, repl...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// bind validates arg against p's kind and returns the replacement tokens.
// Expr/Patt/Path/Dt arguments become a single expand placeholder deferring
// the parse; Tks strips its ${ } delimiters; the remaining kinds pass the
// raw tokens through.
func (e *Expander) bind(p Param, arg []token.Token, callLoc position.Location) ([]token.Token, bool) {
	if len(arg) == 0 {
		return nil, false
	}
	loc := position.Span(arg[0].Loc, arg[len(arg)-1].Loc)

	switch p.Kind {
	case ParamID:
		if len(arg) != 1 || !arg[0].IsIdentLike() {
			return nil, false
		}
		return arg, true
	case ParamTk:
		if len(arg) != 1 {
			return nil, false
		}
		return arg, true
	case ParamTks:
		if arg[0].Kind != token.DollarBrace || arg[len(arg)-1].Kind != token.RBrace {
			return nil, false
		}
		return arg[1 : len(arg)-1], true
	case ParamStmt:
		if !token.CanStartStmt(arg[0]) {
			return nil, false
		}
		return arg, true
	case ParamBlock:
		if arg[0].Kind != token.At && arg[0].Kind != token.KwBegin {
			return nil, false
		}
		return arg, true
	case ParamExpr:
		if !token.CanStartExpr(arg[0]) {
			return nil, false
		}
		return []token.Token{token.NewExpand(token.ExpandExpr, arg, loc)}, true
	case ParamPatt:
		if !token.CanStartPattern(arg[0]) {
			return nil, false
		}
		return []token.Token{token.NewExpand(token.ExpandPatt, arg, loc)}, true
	case ParamPath:
		if !token.IsPathHead(arg) {
			return nil, false
		}
		return []token.Token{token.NewExpand(token.ExpandPath, arg, loc)}, true
	case ParamDt:
		if !token.CanStartDataType(arg[0]) {
			return nil, false
		}
		return []token.Token{token.NewExpand(token.ExpandDt, arg, loc)}, true
	}
	return nil, false
}

// errorAt emits an error at the call site with the macro definition site as
// a secondary location.
func (e *Expander) errorAt(m *Macro, callLoc position.Location, code, msg string) {
	e.sink.Emit(diagnostic.Record{
		Severity:  diagnostic.SevError,
		Code:      code,
		Msg:       msg,
		Loc:       callLoc,
		Secondary: []position.Location{m.Loc},
	})
}
