package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
)

func newAnalyzer() *Analyzer {
	return New(diagnostic.NewSink(position.NewFileSet(), nil))
}

func TestUnifyPrimitives(t *testing.T) {
	a := newAnalyzer()
	assert.True(t, a.unify(checked.Prim(checked.I32), checked.Prim(checked.I32)))
	assert.False(t, a.unify(checked.Prim(checked.I32), checked.Prim(checked.I64)))
	assert.False(t, a.unify(checked.Prim(checked.Str), checked.Prim(checked.Bool)))
}

func TestUnifyCompilerGenericBindsOnce(t *testing.T) {
	a := newAnalyzer()
	cg := a.freshCG()
	require.True(t, a.unify(cg, checked.Prim(checked.I32)))
	// A second compatible use holds; a conflicting one fails.
	assert.True(t, a.unify(cg, checked.Prim(checked.I32)))
	assert.False(t, a.unify(cg, checked.Prim(checked.Str)))
	assert.Equal(t, "Int32", a.Resolve(cg).String())
}

func TestUnifyCompound(t *testing.T) {
	a := newAnalyzer()
	tup1 := &checked.Tuple{Elems: []checked.Dt{checked.Prim(checked.I32), checked.Prim(checked.Str)}}
	tup2 := &checked.Tuple{Elems: []checked.Dt{checked.Prim(checked.I32), checked.Prim(checked.Str)}}
	tup3 := &checked.Tuple{Elems: []checked.Dt{checked.Prim(checked.I32)}}
	assert.True(t, a.unify(tup1, tup2))
	assert.False(t, a.unify(tup1, tup3))

	cg := a.freshCG()
	list := &checked.List{Elem: cg}
	assert.True(t, a.unify(list, &checked.List{Elem: checked.Prim(checked.Bool)}))
	assert.Equal(t, "Bool", a.Resolve(cg).String())
}

func TestUnifyCustomComponentwise(t *testing.T) {
	a := newAnalyzer()
	c1 := &checked.Custom{ScopeID: 0, Name: "Box", Generics: []checked.Dt{checked.Prim(checked.I32)}}
	c2 := &checked.Custom{ScopeID: 0, Name: "Box", Generics: []checked.Dt{checked.Prim(checked.I32)}}
	c3 := &checked.Custom{ScopeID: 0, Name: "Box", Generics: []checked.Dt{checked.Prim(checked.Str)}}
	c4 := &checked.Custom{ScopeID: 1, Name: "Box", Generics: []checked.Dt{checked.Prim(checked.I32)}}
	assert.True(t, a.unify(c1, c2))
	assert.False(t, a.unify(c1, c3))
	assert.False(t, a.unify(c1, c4))
}

func TestUnifyUnknownIsTolerant(t *testing.T) {
	a := newAnalyzer()
	assert.True(t, a.unify(&checked.Unknown{}, checked.Prim(checked.I32)))
	assert.True(t, a.unify(checked.Prim(checked.Str), &checked.Unknown{}))
}

func TestChoiceNarrowing(t *testing.T) {
	a := newAnalyzer()
	choice := &checked.Choice{Choices: []checked.Dt{
		checked.Prim(checked.I32), checked.Prim(checked.Str),
	}}
	assert.True(t, a.unify(choice, checked.Prim(checked.Str)))
	assert.False(t, a.unify(choice, checked.Prim(checked.Bool)))
}

func TestResolveOperatorFiltering(t *testing.T) {
	a := newAnalyzer()
	require.NoError(t, a.ops.Add(&checked.Operator{Name: "+", Signature: []checked.Dt{
		checked.Prim(checked.Str), checked.Prim(checked.Str), checked.Prim(checked.Str),
	}}))
	require.NoError(t, a.ops.Add(&checked.Operator{Name: "+", Signature: []checked.Dt{
		checked.Prim(checked.Str), checked.Prim(checked.Bool), checked.Prim(checked.I32),
	}}))

	ret, op := a.resolveOperator(position.Location{}, "+",
		[]checked.Dt{checked.Prim(checked.Str), checked.Prim(checked.Str)})
	require.NotNil(t, op)
	assert.Equal(t, "Str", ret.String())

	ret, op = a.resolveOperator(position.Location{}, "+",
		[]checked.Dt{checked.Prim(checked.Str), checked.Prim(checked.Bool)})
	require.NotNil(t, op)
	assert.Equal(t, "Int32", ret.String())

	_, op = a.resolveOperator(position.Location{}, "+",
		[]checked.Dt{checked.Prim(checked.Bool), checked.Prim(checked.Bool)})
	assert.Nil(t, op)
	assert.Equal(t, 1, a.sink.CountError())
}

func TestSpeculativeUnifyRollsBack(t *testing.T) {
	a := newAnalyzer()
	cg := a.freshCG()
	snap := a.snapshot()
	require.True(t, a.unify(cg, checked.Prim(checked.I32)))
	a.restore(snap)
	// The binding is gone; the variable can take another type.
	assert.True(t, a.unify(cg, checked.Prim(checked.Str)))
}
