// Package apperror defines the domain error kinds shared by the store, service
// and handler layers.
//
// Every error the API can surface to a client is an *AppError that wraps one
// of the sentinel errors below. Handlers use errors.Is against the sentinel to
// pick an HTTP status, and read Code/Message for the response body:
//
//	{"code": "ARTICLE_NOT_FOUND", "message": "article not found with id 7"}
//
// Code is the stable, machine-readable identifier; Message is for humans.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Stable error codes sent to clients.
const (
	CodeInvalidInput     = "INVALID_INPUT_VALUE"
	CodeNotFound         = "NOT_FOUND"
	CodeArticleNotFound  = "ARTICLE_NOT_FOUND"
	CodeNotAuthorized    = "NOT_AUTHORIZED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeConflict         = "CONFLICT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// Violation describes one failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err        error       // sentinel kind, matched with errors.Is
	Code       string      // stable identifier for clients
	Message    string      // Human-readable error message
	Field      string      // Optional: field causing the error
	Violations []Violation // Optional: every failed constraint of a request body
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Body is the JSON error body every endpoint answers with.
type Body struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations,omitempty"`
}

// Body returns the client-facing part of e.
func (e *AppError) Body() Body {
	return Body{Code: e.Code, Message: e.Message, Violations: e.Violations}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ArticleNotFound is the read-path variant of NotFound. It still matches
// ErrNotFound but carries its own code so clients can tell "the article you
// asked to view does not exist" apart from a generic missing entity.
func ArticleNotFound(id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    CodeArticleNotFound,
		Message: fmt.Sprintf("article not found with id %s", id),
	}
}

// ValidationFailed is a single-field validation error. When field is set it
// is also reported as the only violation, so clients see the same shape as
// for a rejected request body.
func ValidationFailed(field, message string) *AppError {
	e := &AppError{
		Err:     ErrValidation,
		Code:    CodeInvalidInput,
		Message: message,
		Field:   field,
	}
	if field != "" {
		e.Violations = []Violation{{Field: field, Message: message}}
	}
	return e
}

// InvalidInput bundles several violations into one validation error. The
// message is taken from the first violation.
func InvalidInput(violations []Violation) *AppError {
	msg := "invalid input value"
	field := ""
	if len(violations) > 0 {
		msg = violations[0].Message
		field = violations[0].Field
	}
	return &AppError{
		Err:        ErrValidation,
		Code:       CodeInvalidInput,
		Message:    msg,
		Field:      field,
		Violations: violations,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// NotAuthorized is returned when an authenticated caller tries to modify an
// article written by someone else.
func NotAuthorized() *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Code:    CodeNotAuthorized,
		Message: "not authorized to modify this article",
	}
}

// Unauthenticated means no valid identity accompanied the request. HTTP
// handlers map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    CodeUnauthenticated,
		Message: message,
	}
}
