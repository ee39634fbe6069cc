package position

import "fmt"

// FileID identifies a source file within a package. The pipeline assigns
// ids in the order files are fed to the scanner.
type FileID int

// Location is a half-open source range. Every token, AST node, checked node
// and MIR instruction owns one. Locations are immutable after construction.
type Location struct {
	File      FileID
	StartLine int
	StartCol  int
	StartPos  int
	EndLine   int
	EndCol    int
	EndPos    int
}

// New builds a Location from explicit start and end coordinates.
func New(file FileID, startLine, startCol, startPos, endLine, endCol, endPos int) Location {
	return Location{
		File:      file,
		StartLine: startLine,
		StartCol:  startCol,
		StartPos:  startPos,
		EndLine:   endLine,
		EndCol:    endCol,
		EndPos:    endPos,
	}
}

// Span joins two locations into one covering both. Both must belong to the
// same file.
func Span(start, end Location) Location {
	return Location{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		StartPos:  start.StartPos,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
		EndPos:    end.EndPos,
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.StartLine, l.StartCol)
}

// Contains reports whether other lies within l. Used by invariant checks.
func (l Location) Contains(other Location) bool {
	return l.File == other.File &&
		l.StartPos <= other.StartPos &&
		other.EndPos <= l.EndPos
}

// FileSet maps FileIDs back to names and content for diagnostic rendering.
type FileSet struct {
	names   []string
	sources []string
}

// NewFileSet creates an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{}
}

// Add registers a file and returns its id.
func (fs *FileSet) Add(name, source string) FileID {
	fs.names = append(fs.names, name)
	fs.sources = append(fs.sources, source)
	return FileID(len(fs.names) - 1)
}

// Name returns the file name for id, or "<unknown>" if out of range.
func (fs *FileSet) Name(id FileID) string {
	if int(id) < 0 || int(id) >= len(fs.names) {
		return "<unknown>"
	}
	return fs.names[id]
}

// Source returns the raw source of id, or "" if out of range.
func (fs *FileSet) Source(id FileID) string {
	if int(id) < 0 || int(id) >= len(fs.sources) {
		return ""
	}
	return fs.sources[id]
}

// Len returns the number of registered files.
func (fs *FileSet) Len() int { return len(fs.names) }
