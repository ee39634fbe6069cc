package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/position"
)

func TestNameManagerRegs(t *testing.T) {
	n := NewNameManager()
	assert.Equal(t, "r.0", n.NewReg("r"))
	assert.Equal(t, "r.1", n.NewReg("r"))
	assert.Equal(t, "f.2", n.NewReg("f"))
}

func TestNameManagerVars(t *testing.T) {
	n := NewNameManager()
	assert.Equal(t, "x", n.NewVar("x"))
	// A shadowing redeclaration gets a suffixed slot.
	second := n.NewVar("x")
	assert.NotEqual(t, "x", second)
	assert.Contains(t, second, "x.")
}

func TestDebugManagerInterns(t *testing.T) {
	m := NewDebugManager()
	a := m.Intern(DebugRecord{File: 0, Scope: 1, Line: 2, Col: 3})
	b := m.Intern(DebugRecord{File: 0, Scope: 1, Line: 2, Col: 3})
	c := m.Intern(DebugRecord{File: 0, Scope: 1, Line: 2, Col: 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestBlockLimit(t *testing.T) {
	l := &BlockLimit{}
	assert.False(t, l.Set)
	l.SetLimit(7)
	assert.True(t, l.Set)
	assert.Equal(t, 7, l.ID)
}

func TestBlockTerminated(t *testing.T) {
	b := &Block{Name: "entry", Limit: &BlockLimit{}}
	assert.False(t, b.Terminated())
	b.Insts = append(b.Insts, &Ret{})
	assert.True(t, b.Terminated())
}

func TestModulePrint(t *testing.T) {
	m := NewModule()
	entry := &Block{Name: "entry", Limit: &BlockLimit{}}
	dest := &Reg{Name: "r.0", T: I32T}
	entry.Insts = append(entry.Insts,
		&BinOp{Dest: dest, Op: "add", L: &Arg{Index: 0, T: I32T}, R: &Arg{Index: 1, T: I32T}},
		&Ret{Val: dest},
	)
	m.Items = append(m.Items, &Fun{
		Name:   "add",
		Params: []Dt{I32T, I32T},
		Return: I32T,
		Blocks: []*Block{entry},
	})

	want := "fun @add(i32, i32) i32 {\n" +
		"entry:\n" +
		"  %r.0 = add %0, %1\n" +
		"  ret i32 %r.0\n" +
		"}\n"
	assert.Equal(t, want, m.Print())
}

func TestPruneUnreachable(t *testing.T) {
	ret := &Block{ID: 0, Name: "entry", Limit: &BlockLimit{}}
	dead := &Block{ID: 1, Name: "dead", Limit: &BlockLimit{}}
	ret.Insts = append(ret.Insts, &Ret{})
	dead.Insts = append(dead.Insts, &Jmp{Target: ret})

	f := &Fun{Name: "f", Return: UnitV, Blocks: []*Block{ret, dead}}
	pruneUnreachable(f)
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, "entry", f.Blocks[0].Name)
}

func TestCastOpSelection(t *testing.T) {
	tests := []struct {
		src, dst Dt
		want     string
	}{
		{I64T, I32T, "trunc"},
		{I32T, I64T, "sext"},
		{U8T, U64T, "zext"},
		{F32T, F64T, "fpext"},
		{F64T, F32T, "fptrunc"},
		{I32T, F64T, "sitofp"},
		{F64T, I32T, "fptosi"},
		{BytePtr, I64T, "ptrtoint"},
		{I64T, BytePtr, "inttoptr"},
		{I32T, I32T, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, castOp(tt.src, tt.dst), "%s -> %s", tt.src, tt.dst)
	}
}

func TestDebugInfoAttached(t *testing.T) {
	b := NewBuilder()
	b.fun = &Fun{Name: "f", Return: UnitV}
	b.names = NewNameManager()
	b.block = b.newBlock("entry")
	base := b.debug(position.New(0, 3, 1, 10, 3, 5, 14), 0)
	assert.Equal(t, 0, base.DebugInfo)
	rec := b.module.Debug.Record(0)
	assert.Equal(t, 3, rec.Line)
}
