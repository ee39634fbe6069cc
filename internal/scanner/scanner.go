package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/token"
	"golang.org/x/text/unicode/norm"
)

// Scanner turns Lily source text into the flat token vector the preparser
// consumes. The vector always ends with an EOF token located one position
// past the file end.
type Scanner struct {
	input        string
	file         position.FileID
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a scanner over NFC-normalized source.
func New(input string, file position.FileID) *Scanner {
	s := &Scanner{
		input:  norm.NFC.String(input),
		file:   file,
		line:   1,
		column: 0,
	}
	s.readChar()
	return s
}

// ScanAll consumes the whole input and returns the token vector.
func (s *Scanner) ScanAll() []token.Token {
	var toks []token.Token
	for {
		t := s.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

func (s *Scanner) readChar() {
	if s.readPosition >= len(s.input) {
		s.ch = 0
		s.position = s.readPosition
		s.column++
	} else {
		var size int
		s.ch, size = utf8.DecodeRuneInString(s.input[s.readPosition:])
		s.position = s.readPosition
		s.readPosition += size
		s.column++
		if s.ch == '\n' {
			s.line++
			s.column = 0
		}
	}
}

func (s *Scanner) peekChar() rune {
	if s.readPosition >= len(s.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(s.input[s.readPosition:])
	return ch
}

func (s *Scanner) peekAhead(n int) rune {
	pos := s.readPosition
	for i := 1; i < n; i++ {
		if pos >= len(s.input) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(s.input[pos:])
		pos += size
	}
	if pos >= len(s.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(s.input[pos:])
	return ch
}

// mark records the coordinates of the token about to be scanned.
type mark struct {
	line, col, pos int
}

func (s *Scanner) here() mark {
	return mark{line: s.line, col: s.column, pos: s.position}
}

func (s *Scanner) loc(m mark) position.Location {
	return position.New(s.file, m.line, m.col, m.pos, s.line, s.column, s.position)
}

func (s *Scanner) emit(m mark, kind token.Kind, lit string) token.Token {
	return token.New(kind, lit, s.loc(m))
}

// advance emits a token whose spelling is the next n runes.
func (s *Scanner) advance(m mark, kind token.Kind, n int) token.Token {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(s.ch)
		s.readChar()
	}
	return s.emit(m, kind, b.String())
}

// Next returns the next token.
func (s *Scanner) Next() token.Token {
	s.skipSpaceAndComments()

	m := s.here()

	switch s.ch {
	case 0:
		return s.emit(m, token.EOF, "")
	case '=':
		switch s.peekChar() {
		case '=':
			return s.advance(m, token.EqEq, 2)
		case '>':
			return s.advance(m, token.FatArrow, 2)
		}
		return s.advance(m, token.Eq, 1)
	case '+':
		if s.peekChar() == '+' {
			return s.advance(m, token.PlusPlus, 2)
		}
		return s.advance(m, token.Plus, 1)
	case '-':
		switch s.peekChar() {
		case '>':
			return s.advance(m, token.Arrow, 2)
		case '-':
			return s.advance(m, token.MinusMinus, 2)
		}
		return s.advance(m, token.Minus, 1)
	case '*':
		if s.peekChar() == '*' {
			return s.advance(m, token.StarStar, 2)
		}
		return s.advance(m, token.Star, 1)
	case '/':
		return s.advance(m, token.Slash, 1)
	case '%':
		return s.advance(m, token.Percent, 1)
	case '!':
		if s.peekChar() == '=' {
			return s.advance(m, token.BangEq, 2)
		}
		return s.advance(m, token.Bang, 1)
	case '<':
		switch s.peekChar() {
		case '=':
			return s.advance(m, token.LtEq, 2)
		case '-':
			return s.advance(m, token.ArrowBack, 2)
		case '<':
			return s.advance(m, token.Shl, 2)
		}
		return s.advance(m, token.Lt, 1)
	case '>':
		switch s.peekChar() {
		case '=':
			return s.advance(m, token.GtEq, 2)
		case '>':
			return s.advance(m, token.Shr, 2)
		}
		return s.advance(m, token.Gt, 1)
	case '&':
		if s.peekChar() == '&' {
			return s.advance(m, token.AmpAmp, 2)
		}
		return s.advance(m, token.Amp, 1)
	case '|':
		if s.peekChar() == '|' {
			return s.advance(m, token.PipePipe, 2)
		}
		return s.advance(m, token.Pipe, 1)
	case '^':
		return s.advance(m, token.Caret, 1)
	case '~':
		if s.peekChar() == '>' {
			return s.advance(m, token.Wave, 2)
		}
		return s.advance(m, token.Tilde, 1)
	case '#':
		return s.advance(m, token.Hash, 1)
	case ':':
		switch s.peekChar() {
		case '=':
			return s.advance(m, token.ColonEq, 2)
		case ':':
			return s.advance(m, token.ColonColon, 2)
		case '$':
			return s.advance(m, token.ColonDollar, 2)
		}
		return s.advance(m, token.Colon, 1)
	case ';':
		return s.advance(m, token.Semicolon, 1)
	case ',':
		return s.advance(m, token.Comma, 1)
	case '.':
		if s.peekChar() == '.' {
			if s.peekAhead(2) == '.' {
				return s.advance(m, token.DotDotDot, 3)
			}
			return s.advance(m, token.DotDot, 2)
		}
		return s.advance(m, token.Dot, 1)
	case '(':
		return s.advance(m, token.LParen, 1)
	case ')':
		return s.advance(m, token.RParen, 1)
	case '[':
		return s.advance(m, token.LBracket, 1)
	case ']':
		return s.advance(m, token.RBracket, 1)
	case '{':
		return s.advance(m, token.LBrace, 1)
	case '}':
		return s.advance(m, token.RBrace, 1)
	case '@':
		return s.advance(m, token.At, 1)
	case '?':
		return s.advance(m, token.Question, 1)
	case '$':
		if s.peekChar() == '{' {
			return s.advance(m, token.DollarBrace, 2)
		}
		if isLetter(s.peekChar()) {
			s.readChar() // consume '$'
			name := s.readIdentifier()
			return s.emit(m, token.IdentDollar, name)
		}
		return s.advance(m, token.Dollar, 1)
	case '"':
		lit := s.readString('"')
		return s.emit(m, token.LitStr, lit)
	case '\'':
		lit := s.readString('\'')
		return s.emit(m, token.LitChar, lit)
	}

	if isLetter(s.ch) {
		// b"…", b'…' and c"…" literal prefixes
		if s.ch == 'b' && s.peekChar() == '"' {
			s.readChar()
			lit := s.readString('"')
			return s.emit(m, token.LitBytes, lit)
		}
		if s.ch == 'b' && s.peekChar() == '\'' {
			s.readChar()
			lit := s.readString('\'')
			return s.emit(m, token.LitByte, lit)
		}
		if s.ch == 'c' && s.peekChar() == '"' {
			s.readChar()
			lit := s.readString('"')
			return s.emit(m, token.LitCStr, lit)
		}
		name := s.readIdentifier()
		if s.ch == '!' && s.peekChar() != '=' {
			s.readChar() // consume '!'
			return s.emit(m, token.IdentMacro, name)
		}
		return s.emit(m, token.LookupIdent(name), name)
	}
	if isDigit(s.ch) {
		return s.readNumber(m)
	}

	return s.advance(m, token.Illegal, 1)
}

func (s *Scanner) skipSpaceAndComments() {
	for {
		for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
			s.readChar()
		}
		if s.ch == '/' && s.peekChar() == '/' {
			for s.ch != '\n' && s.ch != 0 {
				s.readChar()
			}
			continue
		}
		if s.ch == '/' && s.peekChar() == '*' {
			s.readChar()
			s.readChar()
			depth := 1
			for depth > 0 && s.ch != 0 {
				if s.ch == '/' && s.peekChar() == '*' {
					depth++
					s.readChar()
				} else if s.ch == '*' && s.peekChar() == '/' {
					depth--
					s.readChar()
				}
				s.readChar()
			}
			continue
		}
		return
	}
}

func (s *Scanner) readIdentifier() string {
	start := s.position
	for isLetter(s.ch) || isDigit(s.ch) {
		s.readChar()
	}
	return s.input[start:s.position]
}

// readString reads a quoted literal with the usual escapes. The delimiter
// rune is consumed on both sides; the returned literal is the decoded body.
func (s *Scanner) readString(delim rune) string {
	var out strings.Builder
	s.readChar() // opening quote
	for s.ch != delim && s.ch != 0 {
		if s.ch == '\\' {
			s.readChar()
			switch s.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '0':
				out.WriteRune(0)
			case '\\':
				out.WriteRune('\\')
			case '"':
				out.WriteRune('"')
			case '\'':
				out.WriteRune('\'')
			default:
				out.WriteRune(s.ch)
			}
		} else {
			out.WriteRune(s.ch)
		}
		s.readChar()
	}
	s.readChar() // closing quote
	return out.String()
}

// readNumber reads integer literals in bases 2/8/10/16, floats, and
// suffixed fixed-width forms.
func (s *Scanner) readNumber(m mark) token.Token {
	start := s.position
	kind := token.LitInt10

	if s.ch == '0' {
		switch s.peekChar() {
		case 'b', 'B':
			kind = token.LitInt2
			s.readChar()
			s.readChar()
			for s.ch == '0' || s.ch == '1' || s.ch == '_' {
				s.readChar()
			}
		case 'o', 'O':
			kind = token.LitInt8
			s.readChar()
			s.readChar()
			for (s.ch >= '0' && s.ch <= '7') || s.ch == '_' {
				s.readChar()
			}
		case 'x', 'X':
			kind = token.LitInt16
			s.readChar()
			s.readChar()
			for isHexDigit(s.ch) || s.ch == '_' {
				s.readChar()
			}
		}
	}

	if kind == token.LitInt10 {
		for isDigit(s.ch) || s.ch == '_' {
			s.readChar()
		}
		if s.ch == '.' && isDigit(s.peekChar()) {
			kind = token.LitFloat
			s.readChar()
			for isDigit(s.ch) || s.ch == '_' {
				s.readChar()
			}
		}
		if s.ch == 'e' || s.ch == 'E' {
			kind = token.LitFloat
			s.readChar()
			if s.ch == '+' || s.ch == '-' {
				s.readChar()
			}
			for isDigit(s.ch) {
				s.readChar()
			}
		}
	}

	lit := strings.ReplaceAll(s.input[start:s.position], "_", "")

	// Numeric suffix: 10u8, 3.14f32, …
	if isLetter(s.ch) {
		sufStart := s.position
		for isLetter(s.ch) || isDigit(s.ch) {
			s.readChar()
		}
		suf := s.input[sufStart:s.position]
		if sk, ok := token.LookupSuffix(suf); ok {
			t := s.emit(m, token.LitSuffix, lit)
			t.Suffix = sk
			return t
		}
		return s.emit(m, token.Illegal, lit+suf)
	}

	return s.emit(m, kind, lit)
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
