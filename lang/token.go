package lang

import (
	"strconv"
	"unicode/utf8"
)

// Position identifies a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Span is the half-open range of source text a node was parsed from.
type Span struct {
	Start Position
	End   Position
}

// String returns the span as "line:column-line:column".
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenOperator
	TokenKeyword
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIdentifier:
		return "Identifier"
	case TokenNumber:
		return "Number"
	case TokenOperator:
		return "Operator"
	case TokenKeyword:
		return "Keyword"
	case TokenPunct:
		return "Punct"
	default:
		return "Unknown"
	}
}

// Reserved words. These never lex as identifiers.
const (
	KeywordLet  = "let"
	KeywordIn   = "in"
	KeywordIf   = "if"
	KeywordThen = "then"
	KeywordElse = "else"
)

var keywords = map[string]struct{}{
	KeywordLet:  {},
	KeywordIn:   {},
	KeywordIf:   {},
	KeywordThen: {},
	KeywordElse: {},
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, ok := keywords[s]

	return ok
}

// Token is a single lexeme with its source position.
type Token struct {
	Text string
	Pos  Position
	Kind TokenKind
}

// End returns the position immediately after the token.
// Tokens never span lines.
func (t Token) End() Position {
	return Position{
		Offset: t.Pos.Offset + len(t.Text),
		Line:   t.Pos.Line,
		Column: t.Pos.Column + utf8.RuneCountInString(t.Text),
	}
}

// Span returns the source range covered by the token.
func (t Token) Span() Span { return Span{Start: t.Pos, End: t.End()} }

// Is reports whether the token has the given kind and, if text is non-empty,
// the given text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && (text == "" || t.Text == text)
}

// String describes the token for diagnostics.
func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}

	return strconv.Quote(t.Text)
}

// endsOperand reports whether a sign following this token is a binary
// operator rather than the sign of a numeric literal.
func (t Token) endsOperand() bool {
	switch t.Kind {
	case TokenNumber, TokenIdentifier:
		return true
	case TokenPunct:
		return t.Text == ")"
	default:
		return false
	}
}
