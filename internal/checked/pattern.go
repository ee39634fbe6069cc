package checked

import (
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// Pattern is a checked pattern with its scrutinee-compatible type.
type Pattern interface {
	Dt() Dt
	Location() position.Location
	patternNode()
}

// PatLiteral matches a literal value.
type PatLiteral struct {
	Lit  *Literal
	Type Dt
	Loc  position.Location
}

func (p *PatLiteral) Dt() Dt                      { return p.Type }
func (p *PatLiteral) Location() position.Location { return p.Loc }
func (p *PatLiteral) patternNode()                {}

// PatBind binds the scrutinee (or a component) to a name.
type PatBind struct {
	Name  string
	Entry *scope.Entry
	Type  Dt
	Loc   position.Location
}

func (p *PatBind) Dt() Dt                      { return p.Type }
func (p *PatBind) Location() position.Location { return p.Loc }
func (p *PatBind) patternNode()                {}

// PatWildcard matches anything without binding.
type PatWildcard struct {
	Type Dt
	Loc  position.Location
}

func (p *PatWildcard) Dt() Dt                      { return p.Type }
func (p *PatWildcard) Location() position.Location { return p.Loc }
func (p *PatWildcard) patternNode()                {}

// PatRange matches a numeric range.
type PatRange struct {
	Lo   *Literal
	Hi   *Literal
	Type Dt
	Loc  position.Location
}

func (p *PatRange) Dt() Dt                      { return p.Type }
func (p *PatRange) Location() position.Location { return p.Loc }
func (p *PatRange) patternNode()                {}

// PatTuple destructures a tuple.
type PatTuple struct {
	Elems []Pattern
	Type  Dt
	Loc   position.Location
}

func (p *PatTuple) Dt() Dt                      { return p.Type }
func (p *PatTuple) Location() position.Location { return p.Loc }
func (p *PatTuple) patternNode()                {}

// PatArray destructures an array.
type PatArray struct {
	Elems []Pattern
	Type  Dt
	Loc   position.Location
}

func (p *PatArray) Dt() Dt                      { return p.Type }
func (p *PatArray) Location() position.Location { return p.Loc }
func (p *PatArray) patternNode()                {}

// PatList destructures a list, optionally via head/tail.
type PatList struct {
	Elems []Pattern
	Head  Pattern
	Tail  Pattern
	Type  Dt
	Loc   position.Location
}

func (p *PatList) Dt() Dt                      { return p.Type }
func (p *PatList) Location() position.Location { return p.Loc }
func (p *PatList) patternNode()                {}

// PatVariant matches one enum variant.
type PatVariant struct {
	Enum    *Enum
	Variant int
	Inner   Pattern // nil for value-less variants
	Type    Dt
	Loc     position.Location
}

func (p *PatVariant) Dt() Dt                      { return p.Type }
func (p *PatVariant) Location() position.Location { return p.Loc }
func (p *PatVariant) patternNode()                {}

// PatRecord destructures record fields.
type PatRecord struct {
	Record       *Record
	Fields       []PatRecordField
	AutoComplete bool
	Type         Dt
	Loc          position.Location
}

// PatRecordField is one matched record field.
type PatRecordField struct {
	Name    string
	Index   int
	Pattern Pattern
}

func (p *PatRecord) Dt() Dt                      { return p.Type }
func (p *PatRecord) Location() position.Location { return p.Loc }
func (p *PatRecord) patternNode()                {}

// PatAs binds the whole matched value while matching the inner pattern.
type PatAs struct {
	Inner Pattern
	Name  string
	Entry *scope.Entry
	Type  Dt
	Loc   position.Location
}

func (p *PatAs) Dt() Dt                      { return p.Type }
func (p *PatAs) Location() position.Location { return p.Loc }
func (p *PatAs) patternNode()                {}

// PatError matches a raised error.
type PatError struct {
	Error *ErrorDecl
	Inner Pattern
	Type  Dt
	Loc   position.Location
}

func (p *PatError) Dt() Dt                      { return p.Type }
func (p *PatError) Location() position.Location { return p.Loc }
func (p *PatError) patternNode()                {}

// IsIrrefutable reports whether the pattern matches every value of its
// type. The exhaustiveness check treats an arm with an irrefutable,
// guard-free pattern as covering the scrutinee.
func IsIrrefutable(p Pattern) bool {
	switch pat := p.(type) {
	case *PatWildcard, *PatBind:
		return true
	case *PatAs:
		return IsIrrefutable(pat.Inner)
	case *PatTuple:
		for _, e := range pat.Elems {
			if !IsIrrefutable(e) {
				return false
			}
		}
		return true
	case *PatRecord:
		for _, f := range pat.Fields {
			if !IsIrrefutable(f.Pattern) {
				return false
			}
		}
		return true
	}
	return false
}
