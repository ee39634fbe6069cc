// Package mir defines the language-neutral mid-level IR the back ends
// consume, and the builder lowering checked declarations into it.
package mir

import (
	"fmt"
	"strings"
)

// Dt is a MIR-level type.
type Dt interface {
	String() string
	dtNode()
}

// Int is an integer type of the given width. Signedness only informs the
// choice of ops during lowering; the printed form is width-only.
type Int struct {
	Bits   int
	Signed bool
}

func (t *Int) String() string {
	if t.Bits == 1 {
		return "i1"
	}
	return fmt.Sprintf("i%d", t.Bits)
}
func (t *Int) dtNode() {}

// Float is a floating type of the given width.
type Float struct {
	Bits int
}

func (t *Float) String() string { return fmt.Sprintf("f%d", t.Bits) }
func (t *Float) dtNode()        {}

// Ptr is a pointer to Elem.
type Ptr struct {
	Elem Dt
}

func (t *Ptr) String() string { return "*" + t.Elem.String() }
func (t *Ptr) dtNode()        {}

// ArrayT is a sized array.
type ArrayT struct {
	Size int64
	Elem Dt
}

func (t *ArrayT) String() string { return fmt.Sprintf("[%d x %s]", t.Size, t.Elem) }
func (t *ArrayT) dtNode()        {}

// StructT is a struct type. Named structs print as @name; anonymous ones
// (tuples) list their fields inline.
type StructT struct {
	Name   string
	Fields []Dt
}

func (t *StructT) String() string {
	if t.Name != "" {
		return "@" + t.Name
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (t *StructT) dtNode() {}

// UnitT is the empty type.
type UnitT struct{}

func (t *UnitT) String() string { return "unit" }
func (t *UnitT) dtNode()        {}

// Common singletons.
var (
	I1    = &Int{Bits: 1}
	I8T   = &Int{Bits: 8, Signed: true}
	I32T  = &Int{Bits: 32, Signed: true}
	I64T  = &Int{Bits: 64, Signed: true}
	U8T   = &Int{Bits: 8}
	U64T  = &Int{Bits: 64}
	F32T  = &Float{Bits: 32}
	F64T  = &Float{Bits: 64}
	UnitV = &UnitT{}
	BytePtr = &Ptr{Elem: &Int{Bits: 8}}
)
