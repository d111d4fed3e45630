// Package apperr defines the error kinds shared by the warehouse components.
//
// Concrete errors (a locked cell, a busy unit, ...) wrap one of the kinds below so
// callers can branch on either level with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnavailable    = errors.New("resource unavailable")
	ErrConflict       = errors.New("resource conflict")
	ErrPrecondition   = errors.New("precondition failed")
	ErrInterrupted    = errors.New("operation interrupted")
	ErrInvalidRequest = errors.New("invalid request")
)

// Kinded builds a sentinel error that reports kind through errors.Is.
func Kinded(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPrecondition):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInterrupted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
