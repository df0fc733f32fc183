package parser

import (
	"fmt"

	"its-hmny.dev/perchance/pkg/span"
)

// ErrorKind enumerates every distinct way a template can fail to parse.
type ErrorKind string

const (
	ErrUnexpectedEOF       ErrorKind = "unexpectedEOF"
	ErrUnexpectedChar      ErrorKind = "unexpectedChar"
	ErrUnterminatedBracket ErrorKind = "unterminatedBracket" // [ without matching ]
	ErrUnterminatedBrace   ErrorKind = "unterminatedBrace"   // { without matching }
	ErrUnterminatedString  ErrorKind = "unterminatedString"  // "..." without closing quote
	ErrInvalidIndentation  ErrorKind = "invalidIndentation"  // mixed tabs/spaces, inconsistent unit
	ErrInvalidWeight       ErrorKind = "invalidWeight"       // malformed ^weight
	ErrInvalidNumberRange  ErrorKind = "invalidNumberRange"
	ErrDuplicateListName   ErrorKind = "duplicateListName"
	ErrInvalidEscape       ErrorKind = "invalidEscape" // \x for an x outside the recognized escape set
)

// Error is a single parse diagnostic, carrying the span of source it came
// from so a caller can render a caret under the offending text.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    span.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Span)
}

func newError(kind ErrorKind, sp span.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: sp}
}

// Errors collects every diagnostic produced while parsing a template.
// ValidateTemplate surfaces every error at once rather than stopping at
// the first one. No production aborts parsing: an unterminated bracket or
// brace is recorded like any other error and parsing goes on (after an
// unterminated brace, with the next line).
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d parse errors, first: %s", len(e), e[0].Error())
}
