package ast

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/position"
)

// Patterns mirror expressions: literal, tuple, array, list, record-call and
// variant-call shapes, plus the pattern-only forms below.

// PatName binds a name. A lone `_` scans as PatWildcard, not PatName.
type PatName struct {
	Name string
	Loc  position.Location
}

func (p *PatName) String() string              { return p.Name }
func (p *PatName) Location() position.Location { return p.Loc }
func (p *PatName) patternNode()                {}

// PatWildcard is `_`.
type PatWildcard struct {
	Loc position.Location
}

func (p *PatWildcard) String() string              { return "_" }
func (p *PatWildcard) Location() position.Location { return p.Loc }
func (p *PatWildcard) patternNode()                {}

// PatRange is a..b. Either bound may be nil for an open side.
type PatRange struct {
	Lo  Pattern
	Hi  Pattern
	Loc position.Location
}

func (p *PatRange) String() string {
	lo, hi := "", ""
	if p.Lo != nil {
		lo = p.Lo.String()
	}
	if p.Hi != nil {
		hi = p.Hi.String()
	}
	return lo + ".." + hi
}
func (p *PatRange) Location() position.Location { return p.Loc }
func (p *PatRange) patternNode()                {}

// PatTuple is (p, q, …).
type PatTuple struct {
	Elems []Pattern
	Loc   position.Location
}

func (p *PatTuple) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (p *PatTuple) Location() position.Location { return p.Loc }
func (p *PatTuple) patternNode()                {}

// PatArray is [p, q, …].
type PatArray struct {
	Elems []Pattern
	Loc   position.Location
}

func (p *PatArray) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (p *PatArray) Location() position.Location { return p.Loc }
func (p *PatArray) patternNode()                {}

// PatList is {p, q, …}.
type PatList struct {
	Elems []Pattern
	Loc   position.Location
}

func (p *PatList) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (p *PatList) Location() position.Location { return p.Loc }
func (p *PatList) patternNode()                {}

// PatListHead is h -> t: h matches the head, t the remaining list.
type PatListHead struct {
	Head Pattern
	Tail Pattern
	Loc  position.Location
}

func (p *PatListHead) String() string {
	return fmt.Sprintf("%s -> %s", p.Head, p.Tail)
}
func (p *PatListHead) Location() position.Location { return p.Loc }
func (p *PatListHead) patternNode()                {}

// PatListTail is l <- t: l matches the leading list, t the last element.
type PatListTail struct {
	List Pattern
	Last Pattern
	Loc  position.Location
}

func (p *PatListTail) String() string {
	return fmt.Sprintf("%s <- %s", p.List, p.Last)
}
func (p *PatListTail) Location() position.Location { return p.Loc }
func (p *PatListTail) patternNode()                {}

// PatFieldInit is one field of a record-call pattern.
type PatFieldInit struct {
	Name    string
	Pattern Pattern
	Loc     position.Location
}

// PatRecordCall is T{f := p, …}. AutoComplete marks a trailing `..`.
type PatRecordCall struct {
	Path         []string
	Fields       []PatFieldInit
	AutoComplete bool
	Loc          position.Location
}

func (p *PatRecordCall) String() string {
	parts := make([]string, 0, len(p.Fields)+1)
	for _, f := range p.Fields {
		parts = append(parts, fmt.Sprintf("%s := %s", f.Name, f.Pattern))
	}
	if p.AutoComplete {
		parts = append(parts, "..")
	}
	return fmt.Sprintf("%s{%s}", strings.Join(p.Path, "."), strings.Join(parts, ", "))
}
func (p *PatRecordCall) Location() position.Location { return p.Loc }
func (p *PatRecordCall) patternNode()                {}

// PatVariantCall is T:p or the value-less T:$.
type PatVariantCall struct {
	Path  []string
	Inner Pattern // nil for T:$
	Loc   position.Location
}

func (p *PatVariantCall) String() string {
	if p.Inner == nil {
		return strings.Join(p.Path, ".") + ":$"
	}
	return fmt.Sprintf("%s:%s", strings.Join(p.Path, "."), p.Inner)
}
func (p *PatVariantCall) Location() position.Location { return p.Loc }
func (p *PatVariantCall) patternNode()                {}

// PatAs binds the matched value to a name: p as x.
type PatAs struct {
	Inner Pattern
	Name  string
	Loc   position.Location
}

func (p *PatAs) String() string {
	return fmt.Sprintf("%s as %s", p.Inner, p.Name)
}
func (p *PatAs) Location() position.Location { return p.Loc }
func (p *PatAs) patternNode()                {}

// PatError matches a raised error: error E or error E:p.
type PatError struct {
	Path  []string
	Inner Pattern
	Loc   position.Location
}

func (p *PatError) String() string {
	if p.Inner == nil {
		return "error " + strings.Join(p.Path, ".")
	}
	return fmt.Sprintf("error %s:%s", strings.Join(p.Path, "."), p.Inner)
}
func (p *PatError) Location() position.Location { return p.Loc }
func (p *PatError) patternNode()                {}

// PatAutoComplete is a bare `..` in element position.
type PatAutoComplete struct {
	Loc position.Location
}

func (p *PatAutoComplete) String() string              { return ".." }
func (p *PatAutoComplete) Location() position.Location { return p.Loc }
func (p *PatAutoComplete) patternNode()                {}
