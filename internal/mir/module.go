package mir

import (
	"fmt"
	"strings"

	"github.com/lily-lang/lilyc/internal/position"
)

// BlockLimit carries the id of the outer block that terminates a block's
// lexical region, letting the builder sequence cleanup before jumps that
// leave the region. A limit is unset until the region closes.
type BlockLimit struct {
	ID  int
	Set bool
}

// SetLimit closes the region at the given block id.
func (l *BlockLimit) SetLimit(id int) {
	l.ID = id
	l.Set = true
}

// Block is one basic block. Every finished block ends with exactly one
// terminator.
type Block struct {
	ID    int
	Name  string
	Limit *BlockLimit
	Insts []Inst
}

// Terminated reports whether the block already ends with a terminator.
func (b *Block) Terminated() bool {
	return len(b.Insts) > 0 && b.Insts[len(b.Insts)-1].IsTerminator()
}

// Fun is one MIR function.
type Fun struct {
	Name   string
	Params []Dt
	Return Dt
	Blocks []*Block
}

// Const is one MIR constant item.
type Const struct {
	Name string
	Val  Value
}

// Struct is one MIR struct item.
type Struct struct {
	Name   string
	Fields []Dt
}

// Prototype declares an external function.
type Prototype struct {
	Name   string
	Params []Dt
	Return Dt
}

// Item is a module item.
type Item interface{ itemNode() }

func (f *Fun) itemNode()       {}
func (c *Const) itemNode()     {}
func (s *Struct) itemNode()    {}
func (p *Prototype) itemNode() {}

// DebugRecord is one interned (file, scope, line, column) record.
type DebugRecord struct {
	File  position.FileID
	Scope int
	Line  int
	Col   int
}

// DebugManager interns debug records per module; instructions carry
// indexes into it.
type DebugManager struct {
	records []DebugRecord
	index   map[DebugRecord]int
}

// NewDebugManager creates an empty manager.
func NewDebugManager() *DebugManager {
	return &DebugManager{index: map[DebugRecord]int{}}
}

// Intern returns the index for a record, adding it on first use.
func (m *DebugManager) Intern(r DebugRecord) int {
	if i, ok := m.index[r]; ok {
		return i
	}
	i := len(m.records)
	m.records = append(m.records, r)
	m.index[r] = i
	return i
}

// Record returns the record at index i.
func (m *DebugManager) Record(i int) DebugRecord {
	return m.records[i]
}

// Len returns the number of interned records.
func (m *DebugManager) Len() int { return len(m.records) }

// Module is the MIR for one package.
type Module struct {
	Items []Item
	Debug *DebugManager
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{Debug: NewDebugManager()}
}

// FunByName returns the function item with the given name, or nil.
func (m *Module) FunByName(name string) *Fun {
	for _, item := range m.Items {
		if f, ok := item.(*Fun); ok && f.Name == name {
			return f
		}
	}
	return nil
}

// NameManager numbers registers and variables per function with a shared
// monotonic counter validated against a hash set. Reg names have the form
// <base>.<n>; var names preserve source identifiers.
type NameManager struct {
	next int
	used map[string]bool
}

// NewNameManager creates an empty manager.
func NewNameManager() *NameManager {
	return &NameManager{used: map[string]bool{}}
}

// NewReg allocates a register name from a base.
func (n *NameManager) NewReg(base string) string {
	for {
		name := fmt.Sprintf("%s.%d", base, n.next)
		n.next++
		if !n.used[name] {
			n.used[name] = true
			return name
		}
	}
}

// NewVar reserves a variable name, suffixing on collision so source
// shadowing stays unambiguous.
func (n *NameManager) NewVar(name string) string {
	if !n.used[name] {
		n.used[name] = true
		return name
	}
	for {
		candidate := fmt.Sprintf("%s.%d", name, n.next)
		n.next++
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

// Print renders the module in its textual form.
func (m *Module) Print() string {
	var b strings.Builder
	for _, item := range m.Items {
		switch it := item.(type) {
		case *Struct:
			parts := make([]string, len(it.Fields))
			for i, f := range it.Fields {
				parts[i] = f.String()
			}
			fmt.Fprintf(&b, "struct @%s { %s }\n", it.Name, strings.Join(parts, ", "))
		case *Const:
			fmt.Fprintf(&b, "const @%s = %s %s\n", it.Name, it.Val.Type(), it.Val)
		case *Prototype:
			parts := make([]string, len(it.Params))
			for i, p := range it.Params {
				parts[i] = p.String()
			}
			fmt.Fprintf(&b, "prototype @%s(%s) %s\n", it.Name, strings.Join(parts, ", "), it.Return)
		case *Fun:
			parts := make([]string, len(it.Params))
			for i, p := range it.Params {
				parts[i] = p.String()
			}
			fmt.Fprintf(&b, "fun @%s(%s) %s {\n", it.Name, strings.Join(parts, ", "), it.Return)
			for _, blk := range it.Blocks {
				fmt.Fprintf(&b, "%s:\n", blk.Name)
				for _, inst := range blk.Insts {
					fmt.Fprintf(&b, "  %s\n", inst)
				}
			}
			b.WriteString("}\n")
		}
	}
	return b.String()
}
