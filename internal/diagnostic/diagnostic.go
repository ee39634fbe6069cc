// Package diagnostic collects typed error, warning and note records
// attached to source spans, and renders them in the compiler's canonical
// textual format.
package diagnostic

import (
	"github.com/lily-lang/lilyc/internal/position"
)

// Severity of a record.
type Severity int

const (
	SevError Severity = iota
	SevWarning
	SevNote
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevNote:
		return "note"
	}
	return "unknown"
}

// Record is one emitted diagnostic. Help is an optional suggestion printed
// indented under the source excerpt; Detail is free-form extra text.
// Secondary locations cite related sites, e.g. a macro's definition site.
type Record struct {
	Severity  Severity
	Code      string
	Msg       string
	Loc       position.Location
	Help      string
	Detail    string
	Secondary []position.Location
}

// Sink accumulates records for one package. Emission is synchronous; the
// pipeline checks CountError at each phase boundary.
type Sink struct {
	records   []Record
	errors    int
	warnings  int
	disabled  map[string]bool
	files     *position.FileSet
}

// NewSink creates a sink rendering against fs. disables lists warning codes
// suppressed for this package.
func NewSink(fs *position.FileSet, disables []string) *Sink {
	d := make(map[string]bool, len(disables))
	for _, c := range disables {
		d[c] = true
	}
	return &Sink{disabled: d, files: fs}
}

// Emit records a diagnostic. Suppressed warnings are dropped.
func (s *Sink) Emit(r Record) {
	if r.Severity == SevWarning && s.disabled[r.Code] {
		return
	}
	s.records = append(s.records, r)
	switch r.Severity {
	case SevError:
		s.errors++
	case SevWarning:
		s.warnings++
	}
}

// Error is shorthand for emitting an error record.
func (s *Sink) Error(code string, loc position.Location, msg string) {
	s.Emit(Record{Severity: SevError, Code: code, Msg: msg, Loc: loc})
}

// ErrorHelp emits an error with a help suggestion.
func (s *Sink) ErrorHelp(code string, loc position.Location, msg, help string) {
	s.Emit(Record{Severity: SevError, Code: code, Msg: msg, Loc: loc, Help: help})
}

// Warn is shorthand for emitting a warning record.
func (s *Sink) Warn(code string, loc position.Location, msg string) {
	s.Emit(Record{Severity: SevWarning, Code: code, Msg: msg, Loc: loc})
}

// Note is shorthand for emitting a note record.
func (s *Sink) Note(code string, loc position.Location, msg string) {
	s.Emit(Record{Severity: SevNote, Code: code, Msg: msg, Loc: loc})
}

// CountError returns the number of errors emitted so far.
func (s *Sink) CountError() int { return s.errors }

// CountWarning returns the number of warnings emitted so far.
func (s *Sink) CountWarning() int { return s.warnings }

// Records returns all emitted records in emission order.
func (s *Sink) Records() []Record { return s.records }

// Files returns the file set the sink renders against.
func (s *Sink) Files() *position.FileSet { return s.files }
