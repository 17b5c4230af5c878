// Package errors defines the HTTP-coded error type shared by all glossa
// layers. Handlers render it as the error envelope; lower layers attach the
// upstream cause for unwrapping.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error carries an HTTP status code, a human-readable message and optional
// structured data for the response envelope.
type Error struct {
	Code    int         `json:"code" cbor:"code"`
	Message string      `json:"message" cbor:"message"`
	Data    interface{} `json:"data,omitempty" cbor:"data,omitempty"`

	cause error
}

// New creates an Error with the given code and formatted message.
func New(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithData attaches structured data to the error and returns it.
func (e *Error) WithData(data interface{}) *Error {
	e.Data = data
	return e
}

// WithCause records the underlying error for unwrapping and returns e.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status to respond with. Codes below 400 are
// not valid error statuses and collapse to 500.
func (e *Error) StatusCode() int {
	if e.Code < 400 {
		return 500
	}
	return e.Code
}

// From converts any error into an *Error. An *Error anywhere in the chain is
// returned as-is; everything else becomes a 500 wrapping the original.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var he *Error
	if stderrors.As(err, &he) {
		return he
	}
	return &Error{Code: 500, Message: err.Error(), cause: err}
}

// Code returns the HTTP code of err, or 500 when err carries none.
func Code(err error) int {
	if err == nil {
		return 0
	}
	return From(err).Code
}
