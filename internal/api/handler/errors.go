package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/friendfinder/internal/api/apierr"
	"github.com/mcoot/friendfinder/internal/middleware"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// failure logs errors that clients only see as INTERNAL_ERROR, then writes the response
func failure(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.IsInternal(err) {
		logger.Error("request failed",
			slog.String("request_id", w.Header().Get(middleware.RequestIDHeader)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, err)
}

// decodeBody decodes the JSON request body into v
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
