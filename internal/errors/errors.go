package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedInput is matched by every MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")
	// ErrRecordNotFound is returned when no document exists for a key.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists is returned when creating a document whose key is taken.
	ErrRecordExists = errors.New("record already exists")
	// ErrMissingKey is returned when a record lacks a value for a key attribute.
	ErrMissingKey = errors.New("missing key attribute")
	// ErrUnknownType is returned when no record type is registered under a tag.
	ErrUnknownType = errors.New("unknown record type")
	// ErrForbidden is returned when the caller lacks a required role.
	ErrForbidden = errors.New("forbidden")
)

// MalformedInputError reports JSON that could not be decoded into a record.
// Err is the decoder error, unchanged.
type MalformedInputError struct {
	Type string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s input: %v", e.Type, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedInput) match.
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// Malformed wraps a decoding error for record type typ.
func Malformed(typ string, err error) error {
	return &MalformedInputError{Type: typ, Err: err}
}

// Is is errors.Is, re-exported so callers importing this package under its
// default name need not alias the standard library.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrMalformedInput):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MALFORMED_INPUT")
	case errors.Is(err, ErrRecordNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRecordNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrRecordExists):
		return NewHTTPError(http.StatusConflict, ErrRecordExists.Error(), "ALREADY_EXISTS")
	case errors.Is(err, ErrMissingKey):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_KEY")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
