// Package errors provides coded errors. Every error carries an ErrorCode
// that callers branch on, plus optional message, data and cause.
package errors

import (
	"errors"
	"fmt"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

type ErrorCode string

// Error is a coded error. WithMessage and WithData return copies.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *appError) Error() string {
	message := e.message
	if message == "" {
		message = GetErrorMessage(e.code)
	}

	switch {
	case e.data != nil:
		return fmt.Sprintf("%s: %v", message, e.data)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", message, e.err)
	default:
		return message
	}
}

func (e *appError) Code() ErrorCode { return e.code }
func (e *appError) GetData() any    { return e.data }
func (e *appError) Unwrap() error   { return e.err }

func (e *appError) WithMessage(msg string) Error {
	c := *e
	c.message = msg
	return &c
}

func (e *appError) WithData(data any) Error {
	c := *e
	c.data = data
	return &c
}

type factory struct{}

func (factory) New(code ErrorCode) Error {
	return &appError{code: code}
}

func (factory) Wrap(code ErrorCode, err error) Error {
	return &appError{code: code, err: err}
}

func (factory) WithMessage(code ErrorCode, msg string) Error {
	return &appError{code: code, message: msg}
}

func (factory) WithData(code ErrorCode, data any) Error {
	return &appError{code: code, data: data}
}

// New returns the error factory.
func New() Factory {
	return factory{}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e Error
		if !As(err, &e) {
			return false
		}
		if e.Code() == code {
			return true
		}
		err = e.Unwrap()
	}

	return false
}

// CodeOf returns the outermost code in err's chain, or ErrInternal for
// errors that carry none.
func CodeOf(err error) ErrorCode {
	var e Error
	if As(err, &e) {
		return e.Code()
	}

	return ErrInternal
}
