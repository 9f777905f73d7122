package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown identifiers and wrong
	// passwords both map to this error.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateIdentifier occurs when registering an identifier that is taken.
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrNoSession indicates the token does not resolve to a live session.
	ErrNoSession = errors.New("no session")
	// ErrUnauthenticated is returned by protected operations called without a valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authenticated caller lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrSlotFull indicates the slot reached its capacity.
	ErrSlotFull = errors.New("slot full")
	// ErrInvalidRequest indicates a malformed booking or registration request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// InvalidRequestError carries the reason a request was rejected before admission.
type InvalidRequestError struct {
	Reason string
}

// InvalidRequest builds an InvalidRequestError.
func InvalidRequest(reason string) error {
	return &InvalidRequestError{Reason: reason}
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// Is lets errors.Is match ErrInvalidRequest.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// UserSafeMessage returns a message suitable for API responses.
func UserSafeMessage(err error) string {
	var invalid *InvalidRequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return invalid.Reason
	case errors.Is(err, ErrSlotFull):
		return "no seats remain for this slot"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "identifier is already taken"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid identifier or password"
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrNoSession):
		return "sign in required"
	case errors.Is(err, ErrForbidden):
		return "access denied"
	case errors.Is(err, ErrNotFound):
		return "not found"
	default:
		return "internal error"
	}
}
