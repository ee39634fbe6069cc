// Package repl implements a line-at-a-time front-end explorer: each line
// runs through the pipeline and prints its declarations or checked type;
// `:mir` prints the session's MIR.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/config"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/pipeline"
)

var (
	promptColor = color.New(color.FgGreen, color.Bold)
	typeColor   = color.New(color.FgCyan)
	headerColor = color.New(color.FgYellow)
)

// REPL holds the session state: accumulated declarations are re-compiled
// with each new line so later lines see earlier definitions.
type REPL struct {
	cfg     config.Config
	out     io.Writer
	history string
	decls   []string
}

// New creates a REPL session.
func New(cfg config.Config, out io.Writer) *REPL {
	home, _ := os.UserHomeDir()
	return &REPL{
		cfg:     cfg,
		out:     out,
		history: filepath.Join(home, ".lilyc_history"),
	}
}

// Run reads lines until EOF or :quit.
func (r *REPL) Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(r.history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(r.history); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(r.out, "lilyc repl — :help for commands, :quit to exit")
	for {
		input, err := line.Prompt(promptColor.Sprint("lily> "))
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		r.eval(input)
	}
}

func (r *REPL) command(input string) bool {
	switch fields := strings.Fields(input); fields[0] {
	case ":quit", ":q":
		return true
	case ":help", ":h":
		fmt.Fprintln(r.out, "  :mir      print MIR of the session's declarations")
		fmt.Fprintln(r.out, "  :reset    drop accumulated declarations")
		fmt.Fprintln(r.out, "  :quit     exit")
	case ":reset":
		r.decls = nil
		fmt.Fprintln(r.out, "session cleared")
	case ":mir":
		pkg := r.compile("")
		if pkg.MIR != nil {
			fmt.Fprint(r.out, pkg.MIR.Print())
		}
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", fields[0])
	}
	return false
}

// eval compiles the session plus the new line and reports its outcome.
func (r *REPL) eval(input string) {
	pkg := r.compile(input)
	if pkg.Sink.CountError() > 0 {
		diagnostic.RenderAll(r.out, pkg.Sink)
		return
	}
	diagnostic.RenderAll(r.out, pkg.Sink) // warnings

	// A declaration line joins the session.
	if isDecl(input) {
		r.decls = append(r.decls, input)
		if n := len(pkg.Decls); n > 0 {
			r.printDecl(pkg.Decls[n-1])
		}
		return
	}
	// An expression line reports its checked type.
	if n := len(pkg.Decls); n > 0 {
		if c, ok := pkg.Decls[n-1].(*checked.Constant); ok {
			fmt.Fprintf(r.out, "%s : %s\n", c.Name, typeColor.Sprint(c.Type))
		}
	}
}

// compile builds a throwaway package: session declarations plus the new
// line, expressions wrapped as a constant so they get a checked type.
func (r *REPL) compile(input string) *pipeline.Package {
	var b strings.Builder
	for _, d := range r.decls {
		b.WriteString(d)
		b.WriteString("\n")
	}
	if input != "" {
		if isDecl(input) {
			b.WriteString(input)
		} else {
			fmt.Fprintf(&b, "val it = %s;", strings.TrimSuffix(input, ";"))
		}
	}
	return pipeline.CompileSource("<repl>", b.String(), r.cfg)
}

func isDecl(input string) bool {
	for _, kw := range []string{"fun ", "type ", "object ", "class ", "trait ",
		"enum ", "record ", "error ", "module ", "use ", "include ", "macro ",
		"val ", "mut ", "pub "} {
		if strings.HasPrefix(input, kw) {
			return true
		}
	}
	return false
}

func (r *REPL) printDecl(d checked.Decl) {
	switch decl := d.(type) {
	case *checked.Fun:
		params := make([]string, len(decl.Params))
		for i, p := range decl.Params {
			params[i] = p.Type.String()
		}
		fmt.Fprintf(r.out, "%s %s : fun(%s) %s\n",
			headerColor.Sprint("fun"), decl.Name, strings.Join(params, ", "), typeColor.Sprint(decl.Return))
	case *checked.Constant:
		fmt.Fprintf(r.out, "%s %s : %s\n", headerColor.Sprint("val"), decl.Name, typeColor.Sprint(decl.Type))
	case *checked.Record:
		fmt.Fprintf(r.out, "%s %s (%d fields)\n", headerColor.Sprint("record"), decl.Name, len(decl.Fields))
	case *checked.Enum:
		fmt.Fprintf(r.out, "%s %s (%d variants)\n", headerColor.Sprint("enum"), decl.Name, len(decl.Variants))
	case *checked.Alias:
		fmt.Fprintf(r.out, "%s %s = %s\n", headerColor.Sprint("type"), decl.Name, typeColor.Sprint(decl.Aliased))
	case *checked.ErrorDecl:
		fmt.Fprintf(r.out, "%s %s\n", headerColor.Sprint("error"), decl.Name)
	}
}
