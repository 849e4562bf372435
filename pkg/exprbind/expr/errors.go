package expr

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing and evaluation. Use errors.Is to test.
var (
	// ErrUnexpectedCharacter is returned for a character no token starts with.
	ErrUnexpectedCharacter = errors.New("unexpected character")

	// ErrUnexpectedToken is returned when the parser meets a token it cannot use.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnterminatedQuote is returned when a string literal never closes.
	ErrUnterminatedQuote = errors.New("unterminated quote")

	// ErrUnterminatedTemplate is returned when a template literal never closes.
	ErrUnterminatedTemplate = errors.New("unterminated template")

	// ErrInvalidExponent is returned for an exponent with no digits.
	ErrInvalidExponent = errors.New("invalid exponent")

	// ErrInvalidUnicodeEscape is returned for a malformed \u escape.
	ErrInvalidUnicodeEscape = errors.New("invalid unicode escape")

	// ErrUnconsumedToken is returned when input remains after a full expression.
	ErrUnconsumedToken = errors.New("unconsumed token")

	// ErrNotAssignable is returned when assigning to a non-assignable expression.
	ErrNotAssignable = errors.New("expression is not assignable")

	// ErrNotFunction is returned when calling a value that is not callable.
	ErrNotFunction = errors.New("not a function")

	// ErrConverterNotFound is returned when a value converter is not registered.
	ErrConverterNotFound = errors.New("value converter not found")

	// ErrBehaviorNotFound is returned when a binding behavior is not registered.
	ErrBehaviorNotFound = errors.New("binding behavior not found")

	// ErrBehaviorApplied is returned when a binding behavior is applied twice
	// to one binding.
	ErrBehaviorApplied = errors.New("binding behavior already applied")
)

// ParseError describes a failure to parse an expression.
type ParseError struct {
	Message string
	Input   string
	Column  int
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parser Error: %s at column %d in expression [%s]", e.Message, e.Column, e.Input)
}

// Unwrap returns the sentinel classifying the failure.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// EvaluationError describes a failure while evaluating, assigning or
// connecting an expression.
type EvaluationError struct {
	Message    string
	Expression string
	Err        error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Expression == "" {
		return e.Message
	}
	return fmt.Sprintf("%s in expression [%s]", e.Message, e.Expression)
}

// Unwrap returns the underlying error.
func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func evalError(e Expression, err error, format string, args ...any) error {
	return &EvaluationError{
		Message:    fmt.Sprintf(format, args...),
		Expression: Unparse(e),
		Err:        err,
	}
}
