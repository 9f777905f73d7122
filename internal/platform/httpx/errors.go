// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/reservo/reservo/internal/shared"
)

type errorMapping struct {
	target error
	status int
	title  string
	code   string
}

// mappings are checked in order; the first match wins.
var mappings = []errorMapping{
	{shared.ErrInvalidRequest, http.StatusBadRequest, "Invalid Request", "invalid_request"},
	{shared.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid Credentials", "invalid_credentials"},
	{shared.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated", "unauthenticated"},
	{shared.ErrNoSession, http.StatusUnauthorized, "Unauthenticated", "unauthenticated"},
	{shared.ErrCSRFTokenMissing, http.StatusForbidden, "Forbidden", "csrf"},
	{shared.ErrCSRFTokenMismatch, http.StatusForbidden, "Forbidden", "csrf"},
	{shared.ErrForbidden, http.StatusForbidden, "Forbidden", "forbidden"},
	{shared.ErrNotFound, http.StatusNotFound, "Not Found", "not_found"},
	{shared.ErrDuplicateIdentifier, http.StatusConflict, "Duplicate Identifier", "duplicate_identifier"},
	{shared.ErrSlotFull, http.StatusConflict, "Slot Full", "slot_full"},
}

// StatusFor returns the HTTP status an error maps to.
func StatusFor(err error) int {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			Problem(w, m.status, m.title, m.code, shared.UserSafeMessage(err))
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "internal", "")
}
