// Package domainerrors provides code-classified errors for the domain layer.
// Services return these; the transport layer maps codes to HTTP statuses.
// Infrastructure facts (row missing, key conflict) live in
// pkg/platform/sentinel and are translated into these codes by services.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"

	// CodeIncompleteResults marks a screen result map missing a trackable
	// STI type. Rejected before derivation or dispatch.
	CodeIncompleteResults Code = "incomplete_results"

	// CodeNotOptedIn marks a tracing operation attempted for a user who has
	// not consented to contact tracing.
	CodeNotOptedIn Code = "not_opted_in"

	// CodeInvalidEncounterDate marks an encounter logged with a future
	// met-at timestamp.
	CodeInvalidEncounterDate Code = "invalid_encounter_date"

	// CodeChannelSend marks a per-partner delivery failure. Contained by the
	// dispatcher; it never aborts a whole dispatch.
	CodeChannelSend Code = "channel_send"
)

// Error carries a classification code alongside the message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a domain error that retains its cause for errors.Is/As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status the transport layer should write.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeIncompleteResults, CodeInvalidEncounterDate:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotOptedIn:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
