package mir

import (
	"fmt"
	"strings"
)

// Inst is one MIR instruction: a terminator or a value-producing op.
// DebugInfo indexes the module's debug record manager.
type Inst interface {
	String() string
	IsTerminator() bool
	Debug() int
}

type instBase struct {
	DebugInfo int
}

func (i instBase) Debug() int { return i.DebugInfo }

// --- terminators ---

// Jmp branches unconditionally.
type Jmp struct {
	instBase
	Target *Block
}

func (i *Jmp) String() string     { return "jmp label %" + i.Target.Name }
func (i *Jmp) IsTerminator() bool { return true }

// JmpCond branches on an i1 condition.
type JmpCond struct {
	instBase
	Cond Value
	Then *Block
	Else *Block
}

func (i *JmpCond) String() string {
	return fmt.Sprintf("jmpcond %s, label %%%s, label %%%s", i.Cond, i.Then.Name, i.Else.Name)
}
func (i *JmpCond) IsTerminator() bool { return true }

// SwitchCase is one case of a switch terminator.
type SwitchCase struct {
	Lit   int64
	Block *Block
}

// Switch branches over an integer value.
type Switch struct {
	instBase
	Val     Value
	Cases   []SwitchCase
	Default *Block
}

func (i *Switch) String() string {
	parts := make([]string, len(i.Cases))
	for n, c := range i.Cases {
		parts[n] = fmt.Sprintf("%d => label %%%s", c.Lit, c.Block.Name)
	}
	return fmt.Sprintf("switch %s [%s], default label %%%s",
		i.Val, strings.Join(parts, ", "), i.Default.Name)
}
func (i *Switch) IsTerminator() bool { return true }

// Try enters an error-handling region: control continues in the try block
// and diverts to the catch block when an error value is produced.
type Try struct {
	instBase
	TryBlock   *Block
	CatchBlock *Block
}

func (i *Try) String() string {
	return fmt.Sprintf("try label %%%s, catch label %%%s", i.TryBlock.Name, i.CatchBlock.Name)
}
func (i *Try) IsTerminator() bool { return true }

// Ret leaves the function. Val is nil for unit returns.
type Ret struct {
	instBase
	Val Value
}

func (i *Ret) String() string {
	if i.Val == nil {
		return "ret unit"
	}
	return fmt.Sprintf("ret %s %s", i.Val.Type(), i.Val)
}
func (i *Ret) IsTerminator() bool { return true }

// --- non-terminators ---

// Alloca reserves a stack slot.
type Alloca struct {
	instBase
	Dest *Var
}

func (i *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s", i.Dest, i.Dest.T)
}
func (i *Alloca) IsTerminator() bool { return false }

// Load reads through a pointer.
type Load struct {
	instBase
	Dest *Reg
	Src  Value
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s", i.Dest, i.Dest.T, i.Src)
}
func (i *Load) IsTerminator() bool { return false }

// Store writes through a pointer.
type Store struct {
	instBase
	Dst Value
	Val Value
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s %s, %s", i.Val.Type(), i.Val, i.Dst)
}
func (i *Store) IsTerminator() bool { return false }

// GetField addresses a struct field by index.
type GetField struct {
	instBase
	Dest  *Reg
	Base  Value
	Index int
}

func (i *GetField) String() string {
	return fmt.Sprintf("%s = getfield %s, %d", i.Dest, i.Base, i.Index)
}
func (i *GetField) IsTerminator() bool { return false }

// GetElement addresses an array element.
type GetElement struct {
	instBase
	Dest  *Reg
	Base  Value
	Index Value
}

func (i *GetElement) String() string {
	return fmt.Sprintf("%s = getelement %s, %s", i.Dest, i.Base, i.Index)
}
func (i *GetElement) IsTerminator() bool { return false }

// BinOp applies a binary operation.
type BinOp struct {
	instBase
	Dest *Reg
	Op   string
	L, R Value
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dest, i.Op, i.L, i.R)
}
func (i *BinOp) IsTerminator() bool { return false }

// UnOp applies a unary operation.
type UnOp struct {
	instBase
	Dest *Reg
	Op   string
	V    Value
}

func (i *UnOp) String() string {
	return fmt.Sprintf("%s = %s %s", i.Dest, i.Op, i.V)
}
func (i *UnOp) IsTerminator() bool { return false }

// Call invokes a function by global name. Dest is nil for unit calls.
type Call struct {
	instBase
	Dest *Reg
	Fun  string
	Args []Value
}

func (i *Call) String() string {
	parts := make([]string, len(i.Args))
	for n, a := range i.Args {
		parts[n] = a.String()
	}
	call := fmt.Sprintf("call @%s(%s)", i.Fun, strings.Join(parts, ", "))
	if i.Dest == nil {
		return call
	}
	return fmt.Sprintf("%s = %s", i.Dest, call)
}
func (i *Call) IsTerminator() bool { return false }

// Cast converts between representations. Op is one of trunc, sext, zext,
// fpext, fptrunc, ptrtoint, inttoptr, bitcast, sitofp, fptosi.
type Cast struct {
	instBase
	Dest *Reg
	Op   string
	V    Value
}

func (i *Cast) String() string {
	return fmt.Sprintf("%s = %s %s to %s", i.Dest, i.Op, i.V, i.Dest.T)
}
func (i *Cast) IsTerminator() bool { return false }
