// Package macro stores macro definitions and performs hygienic token-level
// substitution at expansion sites. Expansion produces a token vector; the
// preparser feeds it back through its own shape recognizer.
package macro

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
)

// ParamKind constrains what a macro argument may be.
type ParamKind int

const (
	ParamID    ParamKind = iota // single identifier token
	ParamDt                     // tokens starting a data type
	ParamTk                     // exactly one token
	ParamTks                    // ${ … } bracketed group
	ParamStmt                   // tokens starting a statement
	ParamExpr                   // tokens starting an expression
	ParamPath                   // identifier head followed by `.`
	ParamPatt                   // tokens starting a pattern
	ParamBlock                  // `@` or `begin`
)

var paramKindNames = map[string]ParamKind{
	"id":    ParamID,
	"dt":    ParamDt,
	"tk":    ParamTk,
	"tks":   ParamTks,
	"stmt":  ParamStmt,
	"expr":  ParamExpr,
	"path":  ParamPath,
	"patt":  ParamPatt,
	"block": ParamBlock,
}

// LookupParamKind maps a spelling in a macro header to its kind.
func LookupParamKind(s string) (ParamKind, bool) {
	k, ok := paramKindNames[s]
	return k, ok
}

func (k ParamKind) String() string {
	for s, v := range paramKindNames {
		if v == k {
			return s
		}
	}
	return "unknown"
}

// Param is one macro parameter.
type Param struct {
	Name string
	Kind ParamKind
	Loc  position.Location
}

// Macro is a stored macro definition. Body tokens are kept verbatim,
// including $name references.
type Macro struct {
	Name   string
	Loc    position.Location
	Params []Param
	Body   []token.Token
	Vis    ast.Visibility
}

// Table maps macro names to definitions within one visibility domain.
type Table struct {
	macros map[string]*Macro
}

// NewTable creates an empty macro table.
func NewTable() *Table {
	return &Table{macros: map[string]*Macro{}}
}

// Add registers a macro. Redefinition replaces; the preparser reports the
// duplicate before calling Add.
func (t *Table) Add(m *Macro) {
	t.macros[m.Name] = m
}

// Get looks a macro up by name.
func (t *Table) Get(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Len returns the number of stored macros.
func (t *Table) Len() int { return len(t.macros) }

// Tables is the per-package pair of macro tables: the package-private table
// and the root public table shared across the package's files.
type Tables struct {
	Private *Table
	Public  *Table
}

// NewTables creates an empty pair.
func NewTables() *Tables {
	return &Tables{Private: NewTable(), Public: NewTable()}
}

// Lookup searches private then public. The second result reports whether
// the name was found at all; the third whether it was found in both
// (ambiguity, reported by the caller).
func (t *Tables) Lookup(name string) (*Macro, bool, bool) {
	priv, okPriv := t.Private.Get(name)
	pub, okPub := t.Public.Get(name)
	if okPriv && okPub && priv != pub {
		return priv, true, true
	}
	if okPriv {
		return priv, true, false
	}
	if okPub {
		return pub, true, false
	}
	return nil, false, false
}

// Register stores m into the table matching its visibility.
func (t *Tables) Register(m *Macro) {
	if m.Vis == ast.Public {
		t.Public.Add(m)
	} else {
		t.Private.Add(m)
	}
}
