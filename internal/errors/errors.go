package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = errors.New("All fields are required")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("Passwords don't match")
	// ErrEmailTaken is returned when signing up with an already registered email.
	ErrEmailTaken = errors.New("Email already registered")
	// ErrEmailNotFound is returned when logging in with an unknown email.
	ErrEmailNotFound = errors.New("Email not found")
	// ErrWrongPassword is returned when the password does not match the stored hash.
	ErrWrongPassword = errors.New("Wrong password")
	// ErrUnauthorized is returned when a bearer token is missing, invalid or revoked.
	ErrUnauthorized = errors.New("unauthorized")
)

// Generic messages for failures whose cause must stay server-side.
const (
	MsgSignupInternal = "Internal server error"
	MsgLoginInternal  = "Internal Server Error"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised
// becomes a 500 carrying internalMsg and nothing of the cause.
func MapErrorToHTTP(err error, internalMsg string) *HTTPError {
	switch {
	case errors.Is(err, ErrMissingFields):
		return NewHTTPError(http.StatusBadRequest, ErrMissingFields.Error(), "MISSING_FIELDS")
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordMismatch.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, ErrEmailTaken.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrEmailNotFound):
		return NewHTTPError(http.StatusBadRequest, ErrEmailNotFound.Error(), "EMAIL_NOT_FOUND")
	case errors.Is(err, ErrWrongPassword):
		return NewHTTPError(http.StatusBadRequest, ErrWrongPassword.Error(), "WRONG_PASSWORD")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	default:
		return NewHTTPError(http.StatusInternalServerError, internalMsg, "INTERNAL_ERROR")
	}
}

// IsInternal reports whether err maps to a 500.
func IsInternal(err error) bool {
	return MapErrorToHTTP(err, "").StatusCode == http.StatusInternalServerError
}
