package http

import (
	"context"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/log"
)

// errBadRequest marks malformed input detected by the HTTP layer itself.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return errBadRequest{msg: msg} }

// writeError maps service errors onto status codes. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rejection *finance.RejectionError
		notFound  core.NotFoundError
		bad       errBadRequest
	)
	switch {
	case errors.As(err, &rejection):
		UnprocessableEntityError(rejection.Reason).Write(w)
	case errors.As(err, &notFound):
		NotFoundError(notFound.Msg).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Not found").Write(w)
	case errors.As(err, &bad):
		BadRequestError(bad.msg).Write(w)
	case core.IsValidationError(err):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		InternalServerError("Internal server error").Write(w)
	}
}
