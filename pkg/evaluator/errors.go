package evaluator

import (
	"fmt"

	"its-hmny.dev/perchance/pkg/span"
)

// ErrorKind classifies an evaluation-time failure.
type ErrorKind string

const (
	ErrUndefinedList     ErrorKind = "undefinedList"
	ErrUndefinedProperty ErrorKind = "undefinedProperty"
	ErrTypeError         ErrorKind = "typeError"
	ErrDivideByZero      ErrorKind = "divideByZero"
	ErrImportFailed      ErrorKind = "importFailed"
	ErrImportCycle       ErrorKind = "importCycle"
	ErrInvalidArguments  ErrorKind = "invalidArguments"
)

// Error is the concrete error type every evaluator function returns on
// failure. Only property access inspects Kind, through isRecoverable:
// PropertyWithFallback uses it to decide whether to swallow the error and
// fall back, and a bare `.name` uses it to decide whether to retry as a
// zero-argument method call. Every other caller just propagates it.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    span.Span
}

func (e *Error) Error() string {
	if e.Span == (span.Span{}) {
		return e.Message
	}
	return e.Span.String() + ": " + e.Message
}

func newError(kind ErrorKind, sp span.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: sp}
}
