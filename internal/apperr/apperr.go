// Package apperr is the error taxonomy shared by the api, the bot and the
// dispatcher. Every error crossing a component boundary carries a Kind that
// maps to an HTTP status on the server and to a conversation outcome in the
// bot.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how callers should react to it.
type Kind int

const (
	KindInternal   Kind = iota // unexpected failure, not retryable by the user
	KindValidation             // malformed input; the user may retry
	KindNotFound               // missing user, product or subscription
	KindConflict               // duplicate registration, already subscribed, already sold
	KindForbidden              // caller does not own the resource
	KindAuth                   // missing, expired or invalid credential
	KindTransient              // store or broker unreachable
)

// Code is the machine-readable error code returned in API responses.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindAuth:
		return "unauthorized"
	case KindTransient:
		return "unavailable"
	default:
		return "internal_error"
	}
}

func (k Kind) String() string { return k.Code() }

// HTTPStatus maps a kind to its status category.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindAuth:
		return http.StatusUnauthorized
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the inverse of HTTPStatus, used by API clients.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusServiceUnavailable, status == http.StatusTooManyRequests,
		status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return KindTransient
	default:
		return KindInternal
	}
}

// Error is a classified error with a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Wrap classifies err, keeping it in the chain.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Conflict(msg string) *Error   { return New(KindConflict, msg) }
func Forbidden(msg string) *Error  { return New(KindForbidden, msg) }
func Auth(msg string) *Error       { return New(KindAuth, msg) }

func Transient(msg string, err error) *Error { return Wrap(KindTransient, msg, err) }

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of the first *Error in err's
// chain. Unclassified errors yield a generic message so internals never
// leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}
