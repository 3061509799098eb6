package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("article", "7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ArticleNotFound wraps ErrNotFound",
			err:       ArticleNotFound("7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "InvalidInput wraps ErrValidation",
			err:       InvalidInput([]Violation{{Field: "title", Message: "title is required"}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "NotAuthorized wraps ErrForbidden",
			err:       NotAuthorized(),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthorized",
			err:       Unauthenticated("login required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.c"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotAuthorized does NOT match ErrNotFound",
			err:       NotAuthorized(),
			target:    ErrNotFound,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrForbidden",
			err:       NotFound("article", "7"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode string
	}{
		{"NotFound", NotFound("article", "1"), CodeNotFound},
		{"ArticleNotFound", ArticleNotFound("1"), CodeArticleNotFound},
		{"ValidationFailed", ValidationFailed("id", "bad id"), CodeInvalidInput},
		{"NotAuthorized", NotAuthorized(), CodeNotAuthorized},
		{"Unauthenticated", Unauthenticated("x"), CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("article", "42"),
			wantMessage: "article not found with id 42",
		},
		{
			name:        "ArticleNotFound message includes id",
			err:         ArticleNotFound("42"),
			wantMessage: "article not found with id 42",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "title is required"),
			wantMessage: "title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInvalidInput_UsesFirstViolation(t *testing.T) {
	err := InvalidInput([]Violation{
		{Field: "title", Message: "title must be between 1 and 10 characters"},
		{Field: "content", Message: "content is required"},
	})

	if err.Field != "title" {
		t.Errorf("Field = %q, want %q", err.Field, "title")
	}
	if err.Message != "title must be between 1 and 10 characters" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.Violations) != 2 {
		t.Errorf("len(Violations) = %d, want 2", len(err.Violations))
	}
}

func TestValidationFailed_Violations(t *testing.T) {
	err := ValidationFailed("id", "id must be an integer")
	if len(err.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(err.Violations))
	}
	if got := err.Violations[0]; got.Field != "id" || got.Message != "id must be an integer" {
		t.Errorf("Violations[0] = %+v", got)
	}

	// Without a field there is nothing to point at.
	if v := ValidationFailed("", "malformed JSON request body").Violations; v != nil {
		t.Errorf("Violations = %+v, want nil", v)
	}
}

func TestBody(t *testing.T) {
	b := InvalidInput([]Violation{{Field: "title", Message: "title is required"}}).Body()
	if b.Code != CodeInvalidInput || b.Message != "title is required" || len(b.Violations) != 1 {
		t.Errorf("Body() = %+v", b)
	}
}

func TestInvalidInput_Empty(t *testing.T) {
	err := InvalidInput(nil)
	if err.Message != "invalid input value" {
		t.Errorf("Message = %q, want default", err.Message)
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("article", "1")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}
