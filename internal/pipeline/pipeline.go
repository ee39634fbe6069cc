// Package pipeline drives the four-stage source-to-IR pipeline for one
// package: preparse (+ macro expansion), parse, analyze, MIR lowering.
// Files are processed sequentially; after each phase the package's error
// count gates the next one.
package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/lily-lang/lilyc/internal/analysis"
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/config"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/macro"
	"github.com/lily-lang/lilyc/internal/mir"
	"github.com/lily-lang/lilyc/internal/parser"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/preparser"
	"github.com/lily-lang/lilyc/internal/scanner"
	"github.com/lily-lang/lilyc/internal/scope"
	"github.com/lily-lang/lilyc/internal/token"
)

// File is one translation unit fed to the pipeline.
type File struct {
	Name   string
	Source string
	ID     position.FileID
	Tokens []token.Token
	Pre    *preparser.Result
	Decls  []ast.Decl
}

// Package owns the per-package state every phase shares: macro tables,
// scope tree, operator register, signatures, checked decls, MIR, and the
// diagnostic sink.
type Package struct {
	Name   string
	Config config.Config
	Files  []*File
	Set    *position.FileSet
	Sink   *diagnostic.Sink

	Macros   *macro.Tables
	Analyzer *analysis.Analyzer
	Decls    []checked.Decl
	MIR      *mir.Module
}

// NewPackage creates an empty package under the given config.
func NewPackage(name string, cfg config.Config) *Package {
	set := position.NewFileSet()
	return &Package{
		Name:   name,
		Config: cfg,
		Set:    set,
		Sink:   diagnostic.NewSink(set, cfg.WarningDisables),
		Macros: macro.NewTables(),
	}
}

// AddFile registers a source file.
func (p *Package) AddFile(name, source string) *File {
	f := &File{Name: name, Source: source}
	f.ID = p.Set.Add(name, source)
	p.Files = append(p.Files, f)
	return f
}

// Scopes returns the analyzed scope tree, nil before analysis.
func (p *Package) Scopes() *scope.Tree {
	if p.Analyzer == nil {
		return nil
	}
	return p.Analyzer.Tree()
}

// Operators returns the operator register, nil before analysis.
func (p *Package) Operators() *checked.OperatorRegister {
	if p.Analyzer == nil {
		return nil
	}
	return p.Analyzer.Operators()
}

// Compile runs every phase over every file. It returns false when a phase
// boundary saw a non-zero error count; diagnostics stay in the sink.
func (p *Package) Compile() bool {
	log := logrus.WithField("package", p.Name)

	// Scan + preparse. The macro engine needs a consistent view of the
	// root public table, so every file preparses before any parse.
	expander := macro.NewExpander(p.Macros, p.Sink)
	for _, f := range p.Files {
		f.Tokens = scanner.New(f.Source, f.ID).ScanAll()
		log.WithFields(logrus.Fields{"file": f.Name, "tokens": len(f.Tokens)}).Debug("scanned")

		pre := preparser.New(f.Tokens, p.Sink, expander)
		f.Pre = pre.Preparse()
		log.WithFields(logrus.Fields{"file": f.Name, "decls": len(f.Pre.Decls)}).Debug("preparsed")
	}
	if p.Sink.CountError() > 0 {
		return false
	}

	// Parse.
	for _, f := range p.Files {
		ps := parser.New(p.Sink)
		f.Decls = ps.ParseDecls(f.Pre)
		log.WithFields(logrus.Fields{"file": f.Name, "decls": len(f.Decls)}).Debug("parsed")
	}
	if p.Sink.CountError() > 0 {
		return false
	}

	// Analyze. One scope tree and operator register per package.
	p.Analyzer = analysis.New(p.Sink)
	for _, f := range p.Files {
		p.Decls = append(p.Decls, p.Analyzer.Analyze(f.Decls)...)
	}
	log.WithField("decls", len(p.Decls)).Debug("analyzed")
	if p.Sink.CountError() > 0 {
		return false
	}

	// MIR lowering only runs on an error-free package.
	p.MIR = mir.NewBuilder().Lower(p.Decls)
	log.WithField("items", len(p.MIR.Items)).Debug("lowered")
	return true
}

// CompileSource is the single-file convenience used by the CLI and tests.
func CompileSource(name, source string, cfg config.Config) *Package {
	pkg := NewPackage(name, cfg)
	pkg.AddFile(name, source)
	pkg.Compile()
	return pkg
}
