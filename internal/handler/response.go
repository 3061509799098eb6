package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, which go through
// go-chi/render: render.Status stores the status on the request and
// render.JSON writes it together with the Content-Type header and the body.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"code": "ARTICLE_NOT_FOUND", "message": "article not found with id 7"}
//
// Validation failures add the full list of failed fields:
//
//	{"code": "INVALID_INPUT_VALUE", "message": "title is required",
//	 "violations": [{"field": "title", "message": "title is required"}]}

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/sakif/devblog/internal/apperror"
)

// ErrorResponse is the standard error body returned by all API endpoints.
// The JSON shape is apperror.Body, shared with auth.RequireAuth.
type ErrorResponse struct {
	apperror.Body

	status int
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

// writeJSON sends data as JSON with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// writeError maps an error to a status code and error body and sends it.
//
// ERROR MAPPING:
// Domain errors from the service layer wrap one of the apperror sentinels;
// errors.Is walks the wrap chain (service → AppError → sentinel) to find it:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//
// Anything else is a 500 with a generic message. The real error is logged,
// never sent: it may contain SQL or file paths.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, &ErrorResponse{
			Body: apperror.Body{
				Code:    apperror.CodeInternal,
				Message: "an internal error occurred",
			},
			status: http.StatusInternalServerError,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}

	render.Render(w, r, &ErrorResponse{Body: appErr.Body(), status: status})
}

// decodeJSON reads the request body into v. Any decoding failure (empty body,
// malformed JSON, wrong types) is a 400 INVALID_INPUT_VALUE.
func decodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apperror.ValidationFailed("", "malformed JSON request body")
	}
	return nil
}

// parseArticleID parses the {id} URL parameter. Only a value that is not an
// integer is a 400; zero or negative ids simply match no article.
func parseArticleID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("id", "id must be an integer")
	}
	return id, nil
}

// NotFound answers requests for unknown paths. Registered as the router's
// NotFound handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, &ErrorResponse{
		Body: apperror.Body{
			Code:    apperror.CodeNotFound,
			Message: "no route for " + r.URL.Path,
		},
		status: http.StatusNotFound,
	})
}

// MethodNotAllowed answers a known path called with an unsupported verb.
// Registered as the router's MethodNotAllowed handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, &ErrorResponse{
		Body: apperror.Body{
			Code:    apperror.CodeMethodNotAllowed,
			Message: "method " + r.Method + " is not allowed on " + r.URL.Path,
		},
		status: http.StatusMethodNotAllowed,
	})
}
