// Package fserrors provides errors and error handling
package fserrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// Errors returned by the clone engine.
//
// Use errors.Is to test for these as they are usually wrapped.
var (
	ErrorInvalidReference = errors.New("couldn't find an ID in the reference")
	ErrorNotAFolder       = errors.New("source is not a folder")
	ErrorCyclicStructure  = errors.New("shortcut cycle detected")
	ErrorNotFound         = errors.New("item not found")
	ErrorForbidden        = errors.New("access forbidden")
	ErrorRetriesExhausted = errors.New("retries exhausted")
)

// TransientStatusCodes are the HTTP statuses which are worth retrying.
//
// 403 is included as the remote uses it for quota and rate limits.
var TransientStatusCodes = []int{
	http.StatusForbidden,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// IsTransientStatus returns true if code is in TransientStatusCodes
func IsTransientStatus(code int) bool {
	for _, c := range TransientStatusCodes {
		if c == code {
			return true
		}
	}
	return false
}

// StatusError is an error returned by the remote with an HTTP status
type StatusError struct {
	Code    int    // HTTP status code
	Message string // message from the remote if any
	Err     error  // underlying error if any
}

// NewStatusError makes a StatusError from the code and the error
// returned by the remote client
func NewStatusError(code int, err error) *StatusError {
	e := &StatusError{Code: code, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// Error satisfies the error interface
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error %d (%s)", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("HTTP error %d (%s): %s", e.Code, http.StatusText(e.Code), e.Message)
}

// StatusCode returns the HTTP status
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Unwrap returns the underlying error
func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is makes permanent rejections match ErrorNotFound and ErrorForbidden
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrorNotFound:
		return e.Code == http.StatusNotFound
	case ErrorForbidden:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// Status returns the HTTP status carried by err if any
func Status(err error) (code int, ok bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}

// ShouldRetry looks at an error and works out if retrying the
// operation that caused it would be a good idea.
//
// Errors with a status are classified by the status code alone.
// Errors from the transport which never got a status are retried if
// they look like a broken or timed out connection.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrorRetriesExhausted) {
		return false
	}
	if code, ok := Status(err); ok {
		return IsTransientStatus(code)
	}
	return isRetriableTransportError(err)
}

// isRetriableTransportError checks for network errors which
// indicate the connection broke rather than the request being bad
func isRetriableTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	for _, retriableErr := range retriableErrors {
		if errors.Is(err, retriableErr) {
			return true
		}
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

// retriableErrors is a list of errors from the system which the
// connection can recover from
var retriableErrors = []error{
	syscall.EPIPE,
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.ETIMEDOUT,
}

// exhaustedError is returned when the last attempt of a call failed
// transiently
type exhaustedError struct {
	attempts int
	err      error
}

func (e *exhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrorRetriesExhausted, e.attempts, e.err)
}

func (e *exhaustedError) Unwrap() error {
	return e.err
}

func (e *exhaustedError) Is(target error) bool {
	return target == ErrorRetriesExhausted
}

// RetriesExhausted wraps the last transient error of a call which
// ran out of attempts
func RetriesExhausted(err error, attempts int) error {
	if err == nil {
		return nil
	}
	return &exhaustedError{attempts: attempts, err: err}
}

// nodeError annotates an error with the ID of the item being
// processed when it happened
type nodeError struct {
	id  string
	err error
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.id, e.err)
}

func (e *nodeError) Unwrap() error {
	return e.err
}

// NodeError annotates err with the ID of the item being processed.
//
// If err already carries an ID it is returned unchanged so the
// innermost item is reported.
func NodeError(id string, err error) error {
	if err == nil {
		return nil
	}
	var existing *nodeError
	if errors.As(err, &existing) {
		return err
	}
	return &nodeError{id: id, err: err}
}

// NodeID returns the ID of the item err was annotated with or ""
func NodeID(err error) string {
	var e *nodeError
	if errors.As(err, &e) {
		return e.id
	}
	return ""
}

// Kind returns the name of the class of err for reporting
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrorInvalidReference):
		return "InvalidReference"
	case errors.Is(err, ErrorNotAFolder):
		return "NotAFolder"
	case errors.Is(err, ErrorCyclicStructure):
		return "CyclicStructure"
	case errors.Is(err, ErrorRetriesExhausted):
		return "RetriesExhausted"
	case errors.Is(err, ErrorNotFound):
		return "NotFound"
	case errors.Is(err, ErrorForbidden):
		return "Forbidden"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	case ShouldRetry(err):
		return "RemoteTransient"
	}
	if _, ok := Status(err); ok {
		return "RemoteError"
	}
	return "Error"
}
