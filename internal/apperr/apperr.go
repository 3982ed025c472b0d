// Package apperr holds the error kinds the services report to callers.
// Anything that is not an *Error is treated as an internal failure.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError is a single message, optionally bound to an input field.
type FieldError struct {
	Field   string
	Message string
}

type Error struct {
	Kind   error
	Errors []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field != "" {
			msgs = append(msgs, fe.Field+": "+fe.Message)
			continue
		}
		msgs = append(msgs, fe.Message)
	}
	return e.Kind.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error { return e.Kind }

// Messages returns the plain messages, dropping field names.
func (e *Error) Messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Message)
	}
	return out
}

// HasFields reports whether any message is bound to a field.
func (e *Error) HasFields() bool {
	for _, fe := range e.Errors {
		if fe.Field != "" {
			return true
		}
	}
	return false
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Errors: []FieldError{{Message: msg}}}
}

func BadRequest(field, msg string) *Error {
	return &Error{Kind: ErrValidation, Errors: []FieldError{{Field: field, Message: msg}}}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: ErrUnauthorized, Errors: []FieldError{{Message: msg}}}
}

// Collector accumulates validation messages so callers can report all of
// them at once.
type Collector struct {
	errs []FieldError
}

func (c *Collector) Add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

// Check adds msg when ok is false.
func (c *Collector) Check(ok bool, field, msg string) {
	if !ok {
		c.Add(field, msg)
	}
}

// Err returns nil when nothing was collected.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &Error{Kind: ErrValidation, Errors: c.errs}
}

// As is a shorthand for errors.As with *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
