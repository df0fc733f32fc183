package compiler

import (
	"fmt"

	"its-hmny.dev/perchance/pkg/span"
)

// ErrorKind enumerates every distinct way a parsed program can fail to
// compile into a CompiledProgram.
type ErrorKind string

const (
	ErrDuplicateList  ErrorKind = "duplicateList"
	ErrUndefinedList  ErrorKind = "undefinedList"  // [name] with no declared list or enclosing variable
	ErrInvalidImport  ErrorKind = "invalidImport"  // {import:} with an empty name
	ErrCircularOutput ErrorKind = "circularOutput" // $output chain that refers back to itself
	ErrEmptyList      ErrorKind = "emptyList"      // a list with neither items nor $output
	ErrInvalidWeight  ErrorKind = "invalidWeight"  // a static item weight below zero
)

// Error is a single compile diagnostic.
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

// Errors collects every diagnostic produced while compiling a program.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d compile errors, first: %s", len(e), e[0].Error())
}
