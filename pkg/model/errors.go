package model

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists = errors.New("object already exists")
	ErrNotFound      = errors.New("not found")
)

// Code classifies a rejected call
type Code string

const (
	CodeUnauthorized        = Code("unauthorized")
	CodePreconditionFailed  = Code("precondition_failed")
	CodeValidationFailed    = Code("validation_failed")
	CodeNotFound            = Code("not_found")
	CodeInvalidAmount       = Code("invalid_amount")
	CodeSerializationFailed = Code("serialization_failed")
)

// Error is a rejected call with a human readable reason.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Matchers for errors.Is
var (
	ErrUnauthorized        = NewError(CodeUnauthorized, "unauthorized")
	ErrPreconditionFailed  = NewError(CodePreconditionFailed, "precondition failed")
	ErrValidationFailed    = NewError(CodeValidationFailed, "validation failed")
	ErrNoContribution      = NewError(CodeNotFound, "no contribution found")
	ErrInvalidAmount       = NewError(CodeInvalidAmount, "invalid amount")
	ErrSerializationFailed = NewError(CodeSerializationFailed, "serialization failed")
)

// CodeOf returns the code of the first *Error in the chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
