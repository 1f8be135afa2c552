package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// operators lists operator spellings in match order.
// Longer operators precede their single-character prefixes.
var operators = [...]string{
	"**", ">=", "<=", "<>",
	"*", "/", "+", "-", ">", "<", "=",
}

const punctuation = "(),;"

// Lex splits src into tokens. The returned slice always ends with a token of
// kind [TokenEOF].
//
// Unrecognized characters do not stop scanning. Each one is recorded as a
// [LexError] diagnostic, and all of them are returned together in a
// [*ParseError].
func Lex(src string) ([]Token, error) {
	l := &lexer{
		src: src,
		pos: Position{Offset: 0, Line: 1, Column: 1},
	}

	l.run()

	if len(l.diags) > 0 {
		return l.tokens, &ParseError{Diagnostics: l.diags, Source: src}
	}

	return l.tokens, nil
}

// lexer holds the scanner state.
type lexer struct {
	src    string
	tokens []Token
	diags  []*Diagnostic
	pos    Position
}

func (l *lexer) run() {
	for {
		l.skipWhitespaceAndComments()

		if l.eof() {
			l.tokens = append(l.tokens, Token{Kind: TokenEOF, Pos: l.pos})

			return
		}

		start := l.pos
		r := l.peek()

		switch {
		case isIdentifierStart(r):
			l.scanIdentifier(start)

		case isDigit(l.byteAt(0)), l.atSignedNumber():
			l.scanNumber(start)

		case strings.ContainsRune(punctuation, r):
			l.advance()
			l.emit(TokenPunct, start)

		default:
			if l.scanOperator(start) {
				continue
			}

			l.advance()
			l.diags = append(l.diags, &Diagnostic{
				Kind:  LexError,
				Pos:   start,
				Found: strconv.QuoteRune(r),
			})
		}
	}
}

func (l *lexer) emit(kind TokenKind, start Position) {
	l.tokens = append(l.tokens, Token{
		Kind: kind,
		Text: l.src[start.Offset:l.pos.Offset],
		Pos:  start,
	})
}

func (l *lexer) scanIdentifier(start Position) {
	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}

	kind := TokenIdentifier
	if IsKeyword(l.src[start.Offset:l.pos.Offset]) {
		kind = TokenKeyword
	}

	l.emit(kind, start)
}

// atSignedNumber reports whether the cursor is at a sign that belongs to a
// numeric literal. A sign is only part of a literal where no binary operator
// could appear, i.e., the previous token cannot end an operand.
func (l *lexer) atSignedNumber() bool {
	if c := l.byteAt(0); c != '+' && c != '-' {
		return false
	}

	if !isDigit(l.byteAt(1)) {
		return false
	}

	if n := len(l.tokens); n > 0 && l.tokens[n-1].endsOperand() {
		return false
	}

	return true
}

// scanNumber scans [+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?.
func (l *lexer) scanNumber(start Position) {
	if c := l.byteAt(0); c == '+' || c == '-' {
		l.advance()
	}

	l.scanDigits()

	if l.byteAt(0) == '.' && isDigit(l.byteAt(1)) {
		l.advance()
		l.scanDigits()
	}

	if c := l.byteAt(0); c == 'e' || c == 'E' {
		switch sign := l.byteAt(1); {
		case isDigit(sign):
			l.advance()
			l.scanDigits()

		case (sign == '+' || sign == '-') && isDigit(l.byteAt(2)):
			l.advance()
			l.advance()
			l.scanDigits()
		}
	}

	l.emit(TokenNumber, start)
}

func (l *lexer) scanDigits() {
	for isDigit(l.byteAt(0)) {
		l.advance()
	}
}

func (l *lexer) scanOperator(start Position) bool {
	rest := l.src[l.pos.Offset:]

	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range len(op) {
				l.advance()
			}

			l.emit(TokenOperator, start)

			return true
		}
	}

	return false
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		switch r := l.peek(); {
		case unicode.IsSpace(r):
			l.advance()

		case r == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		default:
			return
		}
	}
}

func (l *lexer) eof() bool { return l.pos.Offset >= len(l.src) }

func (l *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos.Offset:])

	return r
}

// byteAt returns the byte n bytes past the cursor, or 0 past the end.
func (l *lexer) byteAt(n int) byte {
	if i := l.pos.Offset + n; i < len(l.src) {
		return l.src[i]
	}

	return 0
}

func (l *lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos.Offset:])

	l.pos.Offset += size

	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || (r >= '0' && r <= '9') || r == '_'
}
