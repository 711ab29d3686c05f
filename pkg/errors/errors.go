// Package errors defines the platform's sentinel errors and the AppError
// type that carries an HTTP status and a stable error code across package
// boundaries.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentExists    = errors.New("document already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("operation timed out")
)

// codes are the machine-readable names reported next to error messages.
var codes = []struct {
	sentinel error
	code     string
}{
	{ErrDocumentNotFound, "document_not_found"},
	{ErrDocumentExists, "document_exists"},
	{ErrInvalidInput, "invalid_input"},
	{ErrCorpusUnavailable, "corpus_unavailable"},
	{ErrRateLimited, "rate_limited"},
	{ErrTimeout, "timeout"},
	{ErrInternal, "internal"},
}

// AppError pairs a sentinel with the status the HTTP edge should answer.
// Cause, when set, keeps the underlying error reachable through errors.Is
// and errors.As.
type AppError struct {
	Err        error
	Cause      error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Wrap is New with cause kept in the chain. The message should describe
// the failure for clients; cause is for logs and errors.Is.
func Wrap(sentinel error, statusCode int, cause error, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Cause:      cause,
		Message:    message,
		StatusCode: statusCode,
	}
}

// HTTPStatusCode returns the status an error should be answered with.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDocumentExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrCorpusUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code of the first known sentinel in
// err's chain, or "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return "internal"
}
