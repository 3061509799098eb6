package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/handler"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperror.ValidationFailed("title", "title is required"), http.StatusBadRequest, apperror.CodeInvalidInput},
		{"unauthenticated", apperror.Unauthenticated("no token"), http.StatusUnauthorized, apperror.CodeUnauthenticated},
		{"not authorized", apperror.NotAuthorized(), http.StatusForbidden, apperror.CodeNotAuthorized},
		{"not found", apperror.NotFound("article", "1"), http.StatusNotFound, apperror.CodeNotFound},
		{"conflict", apperror.Conflict("user", "a@b.c"), http.StatusConflict, apperror.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBlogService{ReturnErr: tt.err}
			rr := do(t, newArticleRouter(svc, nil), http.MethodGet, "/api/articles/1", "")

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.err.Error(), body.Message)
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, apperror.CodeNotFound, decodeError(t, rr).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.MethodNotAllowed(rr, httptest.NewRequest(http.MethodPatch, "/api/articles", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.Equal(t, apperror.CodeMethodNotAllowed, decodeError(t, rr).Code)
	})
}
