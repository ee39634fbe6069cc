package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lily-lang/lilyc/internal/position"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	noteColor  = color.New(color.FgCyan, color.Bold)
)

// Render writes one record in the canonical format:
//
//	<file>:<line>:<col>: <severity>[<code>]: <msg>
//	<source line>
//	      ^~~~
//	  help: <help>
//
// The header is byte-exact; only the severity word is colored when the
// writer is a terminal.
func Render(w io.Writer, fs *position.FileSet, r Record) {
	sev := r.Severity.String()
	switch r.Severity {
	case SevError:
		sev = errorColor.Sprint(sev)
	case SevWarning:
		sev = warnColor.Sprint(sev)
	case SevNote:
		sev = noteColor.Sprint(sev)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s\n",
		fs.Name(r.Loc.File), r.Loc.StartLine, r.Loc.StartCol, sev, r.Code, r.Msg)

	renderExcerpt(w, fs, r.Loc)

	if r.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", r.Help)
	}
	if r.Detail != "" {
		fmt.Fprintf(w, "  %s\n", r.Detail)
	}
	for _, sec := range r.Secondary {
		fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s\n",
			fs.Name(sec.File), sec.StartLine, sec.StartCol, noteColor.Sprint("note"), r.Code, "related location")
		renderExcerpt(w, fs, sec)
	}
}

// renderExcerpt prints the offending source line with a caret span.
func renderExcerpt(w io.Writer, fs *position.FileSet, loc position.Location) {
	src := fs.Source(loc.File)
	if src == "" || loc.StartLine <= 0 {
		return
	}
	lines := strings.Split(src, "\n")
	if loc.StartLine > len(lines) {
		return
	}
	line := lines[loc.StartLine-1]
	fmt.Fprintln(w, line)

	col := loc.StartCol
	if col < 1 {
		col = 1
	}
	width := 1
	if loc.EndLine == loc.StartLine && loc.EndCol > loc.StartCol {
		width = loc.EndCol - loc.StartCol
	}
	var b strings.Builder
	for i := 1; i < col; i++ {
		if i-1 < len(line) && line[i-1] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	for i := 1; i < width; i++ {
		b.WriteByte('~')
	}
	fmt.Fprintln(w, b.String())
}

// RenderAll writes every record in the sink, in emission order.
func RenderAll(w io.Writer, s *Sink) {
	for _, r := range s.Records() {
		Render(w, s.Files(), r)
	}
}
