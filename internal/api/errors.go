package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure so callers can branch on the class of
// error instead of re-parsing HTTP status codes at every call site.
type Kind string

const (
	// KindNetwork covers connection-level failures with no structured body.
	KindNetwork Kind = "network"
	// KindUnauthorized covers 401 and 403 responses.
	KindUnauthorized Kind = "unauthorized"
	// KindValidation covers 400 and 422 responses.
	KindValidation Kind = "validation"
	// KindConflict covers 409 responses (e.g. a duplicate attendance mark).
	KindConflict Kind = "conflict"
	// KindServer covers 5xx responses.
	KindServer Kind = "server"
	// KindAPI covers every other non-2xx response.
	KindAPI Kind = "api"
)

// Error is the structured failure raised for every non-2xx JSON response.
// Message comes from the response's "message" field, then "error", then a
// fixed fallback. Body holds the decoded error body for caller inspection.
type Error struct {
	Message string
	Status  int
	Kind    Kind
	Body    map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is an API error for a rejected or
// expired credential.
func IsUnauthorized(err error) bool {
	return errKind(err) == KindUnauthorized
}

// IsConflict reports whether err is an API conflict error.
func IsConflict(err error) bool {
	return errKind(err) == KindConflict
}

func errKind(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindAPI
	}
}
