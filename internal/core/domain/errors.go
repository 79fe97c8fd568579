package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown backend or scheme.
	ErrUnsupportedType = errors.New("unsupported type")

	// Authentication Errors.

	// ErrAuthRequired indicates no usable credential is cached and the caller
	// cannot run an interactive grant.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInProgress indicates an interactive grant is already waiting for
	// the user. A second one must not be started.
	ErrAuthInProgress = errors.New("authentication already in progress")

	// Workbook Errors.

	// ErrSessionClosed indicates an operation on an editing session after Close.
	ErrSessionClosed = errors.New("editing session closed")

	// ErrStepLocked indicates the wizard is on its terminal step and can only restart.
	ErrStepLocked = errors.New("wizard is on its final step")

	// ErrStepBusy indicates the current step is already being checked.
	ErrStepBusy = errors.New("wizard step is already being checked")
)

// maxDiagnosticBody is the number of response body bytes kept on errors.
const maxDiagnosticBody = 400

// ConfigurationError lists every configuration key that failed validation.
// It is fatal and raised before any network call.
type ConfigurationError struct {
	Names []string
}

func (e *ConfigurationError) Error() string {
	return "configuration not set correctly: " + strings.Join(e.Names, ", ")
}

// AuthenticationError reports a failed grant. Description carries the
// identity provider's error description when there is one.
type AuthenticationError struct {
	Description string
	Err         error
}

func (e *AuthenticationError) Error() string {
	if e.Description != "" {
		return "auth error: " + e.Description
	}
	if e.Err != nil {
		return "auth error: " + e.Err.Error()
	}
	return "auth error"
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a document path that does not resolve, either
// because it does not exist or because the credential cannot see it.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document %q not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("document %q not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SessionError reports a failure opening (or using the transport of) an
// editing session.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("workbook session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// CellAccessError reports a failed read, write or recalculate. StatusCode is
// the HTTP-equivalent status (0 when the request never got a response) and
// Body is truncated so it can be shown to the user.
type CellAccessError struct {
	Op         string
	Address    string
	StatusCode int
	Body       string
	Err        error
}

// NewCellAccessError builds a CellAccessError, truncating body.
func NewCellAccessError(op, address string, status int, body string, err error) *CellAccessError {
	return &CellAccessError{
		Op:         op,
		Address:    address,
		StatusCode: status,
		Body:       TruncateBody(body),
		Err:        err,
	}
}

func (e *CellAccessError) Error() string {
	target := e.Op
	if e.Address != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.Address)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", target, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", target, e.Err)
	}
	return target + ": failed"
}

func (e *CellAccessError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the step may succeed.
func (e *CellAccessError) Transient() bool {
	switch {
	case e.StatusCode == 0:
		return e.Err != nil
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// TruncateBody shortens a diagnostic body to the size kept on errors,
// without splitting a UTF-8 sequence.
func TruncateBody(body string) string {
	if len(body) <= maxDiagnosticBody {
		return body
	}
	cut := maxDiagnosticBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
