package diagnostic

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/lily-lang/lilyc/internal/position"
)

func TestRenderFormat(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	set := position.NewFileSet()
	id := set.Add("main.lily", "val x = y;\n")
	sink := NewSink(set, nil)
	sink.Emit(Record{
		Severity: SevError,
		Code:     "ANA001",
		Msg:      "the name `y` is not found",
		Loc:      position.New(id, 1, 9, 8, 1, 10, 9),
	})

	var b strings.Builder
	RenderAll(&b, sink)
	want := "main.lily:1:9: error[ANA001]: the name `y` is not found\n" +
		"val x = y;\n" +
		"        ^\n"
	assert.Equal(t, want, b.String())
}

func TestRenderCaretWidth(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	set := position.NewFileSet()
	id := set.Add("main.lily", "val long = 1;\n")
	sink := NewSink(set, nil)
	sink.Emit(Record{
		Severity: SevWarning,
		Code:     "W004",
		Msg:      "unused variable",
		Loc:      position.New(id, 1, 5, 4, 1, 9, 8),
	})

	var b strings.Builder
	RenderAll(&b, sink)
	assert.Contains(t, b.String(), "\n    ^~~~\n")
}

func TestRenderHelpLine(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	set := position.NewFileSet()
	id := set.Add("main.lily", "x\n")
	sink := NewSink(set, nil)
	sink.Emit(Record{
		Severity: SevError,
		Code:     "PAR001",
		Msg:      "boom",
		Loc:      position.New(id, 1, 1, 0, 1, 2, 1),
		Help:     "try removing it",
	})

	var b strings.Builder
	RenderAll(&b, sink)
	assert.Contains(t, b.String(), "  help: try removing it\n")
}

func TestWarningSuppression(t *testing.T) {
	set := position.NewFileSet()
	sink := NewSink(set, []string{"W002"})
	sink.Warn("W002", position.Location{}, "suppressed")
	sink.Warn("W003", position.Location{}, "kept")
	assert.Equal(t, 1, sink.CountWarning())
	assert.Len(t, sink.Records(), 1)
}

func TestCounters(t *testing.T) {
	set := position.NewFileSet()
	sink := NewSink(set, nil)
	sink.Error("X", position.Location{}, "e")
	sink.Warn("Y", position.Location{}, "w")
	sink.Note("Z", position.Location{}, "n")
	assert.Equal(t, 1, sink.CountError())
	assert.Equal(t, 1, sink.CountWarning())
	assert.Len(t, sink.Records(), 3)
}
