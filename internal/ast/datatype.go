package ast

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/position"
)

// PrimKind enumerates the surface primitive type names.
type PrimKind int

const (
	PrimInt8 PrimKind = iota
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimIsize
	PrimUsize
	PrimFloat32
	PrimFloat64
	PrimBool
	PrimChar
	PrimByte
	PrimBytes
	PrimCStr
	PrimStr
	PrimUnit
	PrimNever
	PrimAny
	PrimObject
)

var primNames = map[string]PrimKind{
	"Int8":    PrimInt8,
	"Int16":   PrimInt16,
	"Int32":   PrimInt32,
	"Int64":   PrimInt64,
	"Uint8":   PrimUint8,
	"Uint16":  PrimUint16,
	"Uint32":  PrimUint32,
	"Uint64":  PrimUint64,
	"Isize":   PrimIsize,
	"Usize":   PrimUsize,
	"Float32": PrimFloat32,
	"Float64": PrimFloat64,
	"Bool":    PrimBool,
	"Char":    PrimChar,
	"Byte":    PrimByte,
	"Bytes":   PrimBytes,
	"CStr":    PrimCStr,
	"Str":     PrimStr,
	"Unit":    PrimUnit,
	"Never":   PrimNever,
	"Any":     PrimAny,
	"Object":  PrimObject,
}

var primSpellings = func() map[PrimKind]string {
	m := make(map[PrimKind]string, len(primNames))
	for s, k := range primNames {
		m[k] = s
	}
	return m
}()

// LookupPrim maps a surface spelling to a primitive kind.
func LookupPrim(name string) (PrimKind, bool) {
	k, ok := primNames[name]
	return k, ok
}

func (k PrimKind) String() string {
	if s, ok := primSpellings[k]; ok {
		return s
	}
	return fmt.Sprintf("PrimKind(%d)", int(k))
}

// DtPrimitive is a primitive type name.
type DtPrimitive struct {
	Kind PrimKind
	Loc  position.Location
}

func (d *DtPrimitive) String() string              { return d.Kind.String() }
func (d *DtPrimitive) Location() position.Location { return d.Loc }
func (d *DtPrimitive) dataTypeNode()               {}

// ArrayKind discriminates the four array shapes.
type ArrayKind int

const (
	ArraySized    ArrayKind = iota // [N]T
	ArrayDynamic                   // [_]T
	ArrayMultiPtr                  // [*]T
	ArrayUnknown                   // [?]T
)

// DtArray is one of the four array type shapes.
type DtArray struct {
	Kind ArrayKind
	Size Expr // non-nil only for ArraySized
	Elem DataType
	Loc  position.Location
}

func (d *DtArray) String() string {
	switch d.Kind {
	case ArraySized:
		return fmt.Sprintf("[%s]%s", d.Size, d.Elem)
	case ArrayDynamic:
		return fmt.Sprintf("[_]%s", d.Elem)
	case ArrayMultiPtr:
		return fmt.Sprintf("[*]%s", d.Elem)
	default:
		return fmt.Sprintf("[?]%s", d.Elem)
	}
}
func (d *DtArray) Location() position.Location { return d.Loc }
func (d *DtArray) dataTypeNode()               {}

// DtTuple is (T, U, …).
type DtTuple struct {
	Elems []DataType
	Loc   position.Location
}

func (d *DtTuple) String() string {
	parts := make([]string, len(d.Elems))
	for i, e := range d.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (d *DtTuple) Location() position.Location { return d.Loc }
func (d *DtTuple) dataTypeNode()               {}

// DtList is {T}.
type DtList struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtList) String() string              { return "{" + d.Elem.String() + "}" }
func (d *DtList) Location() position.Location { return d.Loc }
func (d *DtList) dataTypeNode()               {}

// DtLambda is fun(T, U) R.
type DtLambda struct {
	Params []DataType
	Return DataType
	Loc    position.Location
}

func (d *DtLambda) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fun(%s) %s", strings.Join(parts, ", "), d.Return)
}
func (d *DtLambda) Location() position.Location { return d.Loc }
func (d *DtLambda) dataTypeNode()               {}

// DtPtr is *T.
type DtPtr struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtPtr) String() string              { return "*" + d.Elem.String() }
func (d *DtPtr) Location() position.Location { return d.Loc }
func (d *DtPtr) dataTypeNode()               {}

// DtRef is ref T.
type DtRef struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtRef) String() string              { return "ref " + d.Elem.String() }
func (d *DtRef) Location() position.Location { return d.Loc }
func (d *DtRef) dataTypeNode()               {}

// DtTrace is trace T.
type DtTrace struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtTrace) String() string              { return "trace " + d.Elem.String() }
func (d *DtTrace) Location() position.Location { return d.Loc }
func (d *DtTrace) dataTypeNode()               {}

// DtMut is mut T.
type DtMut struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtMut) String() string              { return "mut " + d.Elem.String() }
func (d *DtMut) Location() position.Location { return d.Loc }
func (d *DtMut) dataTypeNode()               {}

// DtOptional is ?T.
type DtOptional struct {
	Elem DataType
	Loc  position.Location
}

func (d *DtOptional) String() string              { return "?" + d.Elem.String() }
func (d *DtOptional) Location() position.Location { return d.Loc }
func (d *DtOptional) dataTypeNode()               {}

// DtResult is <E1, E2>!T, or !T when the error list is open.
type DtResult struct {
	Errs []DataType
	Ok   DataType
	Loc  position.Location
}

func (d *DtResult) String() string {
	if len(d.Errs) == 0 {
		return "!" + d.Ok.String()
	}
	parts := make([]string, len(d.Errs))
	for i, e := range d.Errs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("<%s>!%s", strings.Join(parts, ", "), d.Ok)
}
func (d *DtResult) Location() position.Location { return d.Loc }
func (d *DtResult) dataTypeNode()               {}

// DtCustom is a named (possibly generic, possibly dotted) type reference.
type DtCustom struct {
	Path     []string
	Generics []DataType
	Loc      position.Location
}

func (d *DtCustom) String() string {
	s := strings.Join(d.Path, ".")
	if len(d.Generics) > 0 {
		parts := make([]string, len(d.Generics))
		for i, g := range d.Generics {
			parts[i] = g.String()
		}
		s += "[" + strings.Join(parts, ", ") + "]"
	}
	return s
}
func (d *DtCustom) Location() position.Location { return d.Loc }
func (d *DtCustom) dataTypeNode()               {}

// Name returns the last path segment.
func (d *DtCustom) Name() string { return d.Path[len(d.Path)-1] }

// DtSelf is the Self type inside object bodies.
type DtSelf struct {
	Loc position.Location
}

func (d *DtSelf) String() string              { return "Self" }
func (d *DtSelf) Location() position.Location { return d.Loc }
func (d *DtSelf) dataTypeNode()               {}
