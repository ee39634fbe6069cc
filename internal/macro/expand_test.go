package macro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scanner"
	"github.com/lily-lang/lilyc/internal/token"
)

func toks(src string) []token.Token {
	all := scanner.New(src, 0).ScanAll()
	return all[:len(all)-1]
}

func fixture(m *Macro) (*Expander, *diagnostic.Sink) {
	set := position.NewFileSet()
	set.Add("test.lily", "")
	sink := diagnostic.NewSink(set, nil)
	tables := NewTables()
	if m != nil {
		tables.Register(m)
	}
	return NewExpander(tables, sink), sink
}

func exprMacro(name string, params ...Param) *Macro {
	return &Macro{Name: name, Params: params}
}

func TestExpandNotFound(t *testing.T) {
	e, sink := fixture(nil)
	out := e.Expand("missing", nil, position.Location{}, 0)
	assert.Nil(t, out)
	require.Equal(t, 1, sink.CountError())
	assert.Equal(t, diagnostic.MacroNotFound, sink.Records()[0].Code)
}

func TestExpandArityMismatch(t *testing.T) {
	m := exprMacro("one", Param{Name: "a", Kind: ParamExpr})
	m.Body = toks("$a")

	e, sink := fixture(m)
	out := e.Expand("one", [][]token.Token{toks("1"), toks("2")}, position.Location{}, 0)
	assert.Nil(t, out)
	assert.Equal(t, diagnostic.MacroTooManyParams, sink.Records()[0].Code)

	e, sink = fixture(m)
	out = e.Expand("one", nil, position.Location{}, 0)
	assert.Nil(t, out)
	assert.Equal(t, diagnostic.MacroTooFewParams, sink.Records()[0].Code)
}

func TestExpandKindChecks(t *testing.T) {
	tests := []struct {
		kind Param
		arg  string
		ok   bool
	}{
		{Param{Name: "p", Kind: ParamID}, "foo", true},
		{Param{Name: "p", Kind: ParamID}, "1", false},
		{Param{Name: "p", Kind: ParamTk}, "+", true},
		{Param{Name: "p", Kind: ParamExpr}, "1 + 2", true},
		{Param{Name: "p", Kind: ParamExpr}, "}", false},
		{Param{Name: "p", Kind: ParamPath}, "a.b", true},
		{Param{Name: "p", Kind: ParamPath}, "a", false},
		{Param{Name: "p", Kind: ParamDt}, "Int32", true},
		{Param{Name: "p", Kind: ParamPatt}, "_", true},
		{Param{Name: "p", Kind: ParamStmt}, "return 1;", true},
		{Param{Name: "p", Kind: ParamBlock}, "begin", true},
	}
	for _, tt := range tests {
		m := exprMacro("m", tt.kind)
		m.Body = toks("$p")
		e, sink := fixture(m)
		out := e.Expand("m", [][]token.Token{toks(tt.arg)}, position.Location{}, 0)
		if tt.ok {
			assert.NotNil(t, out, tt.arg)
			assert.Zero(t, sink.CountError(), tt.arg)
		} else {
			assert.Nil(t, out, tt.arg)
			assert.Equal(t, diagnostic.MacroKindMismatch, sink.Records()[0].Code, tt.arg)
		}
	}
}

func TestExpandExprBecomesPlaceholder(t *testing.T) {
	m := exprMacro("m", Param{Name: "a", Kind: ParamExpr})
	m.Body = toks("if $a { }")
	e, sink := fixture(m)

	out := e.Expand("m", [][]token.Token{toks("1 + 2")}, position.Location{}, 0)
	require.Zero(t, sink.CountError())
	require.Len(t, out, 4)
	assert.Equal(t, token.KwIf, out[0].Kind)
	require.Equal(t, token.Expand, out[1].Kind)
	assert.Equal(t, token.ExpandExpr, out[1].Expand.Kind)
	assert.Len(t, out[1].Expand.Tokens, 3)
}

func TestExpandTksStripsDelimiters(t *testing.T) {
	m := exprMacro("m", Param{Name: "a", Kind: ParamTks})
	m.Body = toks("$a")
	e, sink := fixture(m)

	out := e.Expand("m", [][]token.Token{toks("${ 1 2 3 }")}, position.Location{}, 0)
	require.Zero(t, sink.CountError())
	require.Len(t, out, 3)
	assert.Equal(t, "1", out[0].Lit)
}

func TestExpandUnknownDollar(t *testing.T) {
	m := exprMacro("m", Param{Name: "a", Kind: ParamID})
	m.Body = toks("$oops")
	e, sink := fixture(m)

	out := e.Expand("m", [][]token.Token{toks("x")}, position.Location{}, 0)
	assert.Nil(t, out)
	rec := sink.Records()[0]
	assert.Equal(t, diagnostic.MacroUnknownDollar, rec.Code)
	// The macro definition site is cited as a secondary location.
	assert.Len(t, rec.Secondary, 1)
}

func TestExpandDepthExceeded(t *testing.T) {
	m := exprMacro("m")
	m.Body = toks("1")
	e, sink := fixture(m)
	out := e.Expand("m", nil, position.Location{}, MaxDepth+1)
	assert.Nil(t, out)
	assert.Equal(t, diagnostic.MacroDepthExceeded, sink.Records()[0].Code)
}

// Expansion is idempotent per site: the same macro and argument list yield
// identical token sequences.
func TestExpandIdempotent(t *testing.T) {
	m := exprMacro("m", Param{Name: "a", Kind: ParamExpr}, Param{Name: "b", Kind: ParamExpr})
	m.Body = toks("if $a != $b do raise Boom;")
	e, sink := fixture(m)

	args := [][]token.Token{toks("1"), toks("2")}
	first := e.Expand("m", args, position.Location{}, 0)
	second := e.Expand("m", args, position.Location{}, 0)
	require.Zero(t, sink.CountError())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expansion not idempotent (-first +second):\n%s", diff)
	}
}

func TestLookupPrivateShadowsNothing(t *testing.T) {
	tables := NewTables()
	priv := &Macro{Name: "m"}
	pub := &Macro{Name: "m"}
	tables.Private.Add(priv)
	tables.Public.Add(pub)
	_, found, ambiguous := tables.Lookup("m")
	assert.True(t, found)
	assert.True(t, ambiguous)
}
