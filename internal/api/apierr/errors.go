package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/friendfinder/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeEmailExists      = "EMAIL_EXISTS"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeFriendNotFound   = "FRIEND_NOT_FOUND"
	CodePositionNotFound = "POSITION_NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Realm is advertised in the WWW-Authenticate header of 401 responses
const Realm = "friendfinder"

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	status, apiError := Classify(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: apiError})
}

// Classify maps err to the HTTP status and payload clients see.
// Unrecognised errors become a generic internal error.
func Classify(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// IsInternal reports whether err would be reported as an internal error
func IsInternal(err error) bool {
	status, _ := Classify(err)
	return status == http.StatusInternalServerError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &httpError{http.StatusBadRequest, APIError{CodeValidation, verr.Message}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email already exists"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Not authorized"}}
	case errors.Is(err, model.ErrFriendNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFriendNotFound, "Friend not found"}}
	case errors.Is(err, model.ErrPositionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePositionNotFound, "Position not found"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
