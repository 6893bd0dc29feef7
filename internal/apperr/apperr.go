// Package apperr defines the error kinds the API surfaces distinctly:
// validation failures, state conflicts, overpayments, missing records, and
// non-fatal collaborator failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindOverpayment
	KindDependency
)

// Error carries a kind alongside the message. State is set on conflicts so
// callers can react to the invoice's current status.
type Error struct {
	Kind    Kind
	Message string
	State   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// StateConflict reports an operation attempted in a state that forbids it.
func StateConflict(state string, format string, args ...interface{}) error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...), State: state}
}

func Overpaymentf(format string, args ...interface{}) error {
	return &Error{Kind: KindOverpayment, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a failed side effect (PDF render, email dispatch) that must
// not fail the triggering operation.
func Dependency(msg string, err error) error {
	return &Error{Kind: KindDependency, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStateConflict:
		return http.StatusConflict
	case KindOverpayment:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
