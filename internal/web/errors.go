package web

// errors.go turns handler errors into JSON responses.
//
// Every error is logged server-side with its technical detail and the request
// ID, then mapped by reconcile.MapError to a message, a suggested action and a
// stable code for the client. The HTTP status comes from the error's identity.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/makoto1101/check-publication-status/internal/feed"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/reconcile"
	"github.com/makoto1101/check-publication-status/internal/reference"
	"github.com/makoto1101/check-publication-status/internal/store"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks malformed requests caught by the handlers themselves.
var errBadRequest = errors.New("invalid run request")

// statusFor picks the HTTP status of err.
func statusFor(err error) int {
	var (
		verrs     validator.ValidationErrors
		schemaErr *listing.SchemaError
		maxBytes  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, feed.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.As(err, &verrs),
		errors.Is(err, feed.ErrUnknownFile), errors.Is(err, feed.ErrDuplicateChannel),
		errors.Is(err, feed.ErrMissingPair), errors.Is(err, feed.ErrUnsupportedType),
		errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, listing.ErrBaseChannelMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reconcile.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, reference.ErrMissingHeader):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := reconcile.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "10")
	}
	respondErrorJSON(w, r, msg, status)
}

func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg reconcile.UserMessage, status int) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// rateLimited is the body written by the rate limiter.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	respondErrorJSON(w, r, reconcile.MapError(errors.New("rate limit exceeded")), http.StatusTooManyRequests)
}
