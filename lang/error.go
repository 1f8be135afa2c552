package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predefined errors (sentinel values).
var (
	ErrLex              = NewError("lex error")
	ErrSyntax           = NewError("syntax error")
	ErrExhaustedChoice  = NewError("no alternative matched")
	ErrMaxDepthExceeded = NewError("maximum nesting depth exceeded")
	ErrNonFinite        = NewError("numeric literal out of range")
	ErrDuplicateParam   = NewError("duplicate parameter")
	ErrReadInput        = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
// The message is "<msg>: <err>" with either part omitted when unset.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// derived errors created by [Error.With] and [Error.Wrap] match their
// sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// DiagnosticKind classifies a parse failure.
type DiagnosticKind int

const (
	// LexError is an unrecognized character.
	LexError DiagnosticKind = iota
	// SyntaxError is a missing token or construct after a commit point.
	SyntaxError
	// ExhaustedChoice means no alternative of an ordered choice matched.
	ExhaustedChoice
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	case ExhaustedChoice:
		return "exhausted choice"
	default:
		return "unknown"
	}
}

func (k DiagnosticKind) sentinel() *Error {
	switch k {
	case LexError:
		return ErrLex
	case ExhaustedChoice:
		return ErrExhaustedChoice
	default:
		return ErrSyntax
	}
}

// Diagnostic describes a single lex or parse failure.
type Diagnostic struct {
	Cause    error    // optional underlying condition
	Found    string   // description of the offending token or character
	Hint     string   // optional suggestion
	Expected []string // sorted descriptions of what would have been accepted
	Pos      Position
	Kind     DiagnosticKind
}

// Message returns the diagnostic without its position.
func (d *Diagnostic) Message() string {
	var sb strings.Builder

	switch d.Kind {
	case LexError:
		sb.WriteString("unexpected character ")
		sb.WriteString(d.Found)

	case ExhaustedChoice:
		sb.WriteString("expected one of {")
		sb.WriteString(strings.Join(d.Expected, ", "))
		sb.WriteString("}, found ")
		sb.WriteString(d.Found)

	default:
		if d.Cause != nil {
			sb.WriteString(d.Cause.Error())
			sb.WriteString(" at ")
			sb.WriteString(d.Found)
		} else {
			sb.WriteString("expected ")
			sb.WriteString(strings.Join(d.Expected, " or "))
			sb.WriteString(", found ")
			sb.WriteString(d.Found)
		}
	}

	if d.Hint != "" {
		sb.WriteString(" (did you mean ")
		sb.WriteString(strconv.Quote(d.Hint))
		sb.WriteString("?)")
	}

	return sb.String()
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Pos.String() + ": " + d.Kind.String() + ": " + d.Message()
}

// Unwrap returns the sentinel for the diagnostic's kind and its cause, if any.
func (d *Diagnostic) Unwrap() []error {
	if d.Cause != nil {
		return []error{d.Kind.sentinel(), d.Cause}
	}

	return []error{d.Kind.sentinel()}
}

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.Int("line", d.Pos.Line),
		slog.Int("column", d.Pos.Column),
		slog.String("found", d.Found),
	}

	if len(d.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", d.Expected))
	}

	if d.Hint != "" {
		attrs = append(attrs, slog.String("hint", d.Hint))
	}

	if d.Cause != nil {
		attrs = append(attrs, slog.String("cause", d.Cause.Error()))
	}

	return slog.GroupValue(attrs...)
}

// suggest returns the keyword closest to found, or "" if none is close.
// Only quoted keyword expectations are considered.
func suggest(found string, expected []string) string {
	var candidates []string

	for _, e := range expected {
		if s, err := strconv.Unquote(e); err == nil && IsKeyword(s) {
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	if matches := fuzzy.Find(found, candidates); len(matches) > 0 {
		return matches[0].Str
	}

	for _, c := range candidates {
		if len(fuzzy.Find(c, []string{found})) > 0 {
			return c
		}
	}

	return ""
}

// ParseError collects the diagnostics of a failed parse.
type ParseError struct {
	Source      string // The original source input
	Diagnostics []*Diagnostic
}

// Error implements the error interface.
// The first diagnostic is rendered with the offending source line.
func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse error"
	}

	first := e.Diagnostics[0]

	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(first.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(first.Pos.Column))
	buf.WriteString(": ")
	buf.WriteString(first.Message())

	if snippet := e.Snippet(first); snippet != "" {
		buf.WriteRune('\n')
		buf.WriteString(strings.TrimSuffix(snippet, "\n"))
	}

	if n := len(e.Diagnostics) - 1; n > 0 {
		buf.WriteString("\n(and ")
		buf.WriteString(strconv.Itoa(n))
		buf.WriteString(" more)")
	}

	return buf.String()
}

// Unwrap returns the diagnostics, so errors.Is matches any of their kinds.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}

	return errs
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.Diagnostics)+1)
	attrs = append(attrs, slog.Int("count", len(e.Diagnostics)))

	for i, d := range e.Diagnostics {
		attrs = append(attrs, slog.Any(strconv.Itoa(i), d))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the source line of d followed by a caret under its column.
// It returns "" if the line is not part of the source.
func (e *ParseError) Snippet(d *Diagnostic) string {
	lines := strings.Split(e.Source, "\n")

	if d.Pos.Line <= 0 || d.Pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimSuffix(lines[d.Pos.Line-1], "\r")
	num := strconv.Itoa(d.Pos.Line)

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if d.Pos.Column > 0 {
		padding += strings.Repeat(" ", d.Pos.Column-1)
	}

	src.WriteString(padding)
	src.WriteString("^\n")

	return src.String()
}
