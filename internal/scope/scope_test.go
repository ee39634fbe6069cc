package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookupLocal(t *testing.T) {
	tree := NewTree()
	entry, err := tree.Root.Add(SymVariable, "x", "decl")
	require.NoError(t, err)
	assert.Equal(t, "x", entry.Name)

	got, found := tree.Root.LookupLocal(SymVariable, "x")
	require.True(t, found)
	assert.Same(t, entry, got)
}

func TestDuplicatePerKindRejected(t *testing.T) {
	tree := NewTree()
	_, err := tree.Root.Add(SymVariable, "x", nil)
	require.NoError(t, err)
	_, err = tree.Root.Add(SymVariable, "x", nil)
	assert.Error(t, err)
}

func TestCrossKindShadowingAllowed(t *testing.T) {
	tree := NewTree()
	_, err := tree.Root.Add(SymVariable, "point", nil)
	require.NoError(t, err)
	_, err = tree.Root.Add(SymRecord, "point", nil)
	assert.NoError(t, err)
}

func TestLookupWalksOutward(t *testing.T) {
	tree := NewTree()
	fun := tree.NewScope(tree.Root, KindFun)
	block := tree.NewScope(fun, KindBlock)

	outer, err := tree.Root.Add(SymVariable, "x", nil)
	require.NoError(t, err)

	resp := block.Lookup(SymVariable, "x")
	require.True(t, resp.Found)
	assert.Same(t, outer, resp.Entry)
	assert.Equal(t, tree.Root, resp.Scope)

	inner, err := fun.Add(SymVariable, "x", nil)
	require.NoError(t, err)
	resp = block.Lookup(SymVariable, "x")
	assert.Same(t, inner, resp.Entry)
}

func TestLookupNotFound(t *testing.T) {
	tree := NewTree()
	resp := tree.Root.Lookup(SymFun, "missing")
	assert.False(t, resp.Found)
}

func TestAccessDescriptor(t *testing.T) {
	tree := NewTree()
	fun := tree.NewScope(tree.Root, KindFun)
	block := tree.NewScope(fun, KindBlock)

	acc := block.AccessDescriptor()
	assert.Equal(t, KindBlock, acc.Kind)
	assert.Equal(t, block.ID, acc.ID)
	assert.Equal(t, []int{tree.Root.ID, fun.ID}, acc.Path)
}

func TestEntryIDsStable(t *testing.T) {
	tree := NewTree()
	a, _ := tree.Root.Add(SymVariable, "a", nil)
	b, _ := tree.Root.Add(SymVariable, "b", nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEnclosingCatch(t *testing.T) {
	tree := NewTree()
	try := tree.NewScope(tree.Root, KindTry)
	try.Catch = &Catch{Name: "e"}
	block := tree.NewScope(try, KindBlock)

	c := block.EnclosingCatch()
	require.NotNil(t, c)
	assert.Equal(t, "e", c.Name)
	assert.Nil(t, tree.Root.EnclosingCatch())
}

func TestByID(t *testing.T) {
	tree := NewTree()
	fun := tree.NewScope(tree.Root, KindFun)
	assert.Same(t, fun, tree.ByID(fun.ID))
	assert.Nil(t, tree.ByID(99))
}
