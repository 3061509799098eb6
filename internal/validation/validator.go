// Package validation checks request bodies before they reach the service
// layer. Rules are declared as `validate` struct tags and evaluated by
// go-playground/validator; failures come back as a list of
// apperror.Violation, one per failed field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/devblog/internal/apperror"
)

// ArticleInput is the body of POST /api/articles and PUT /api/articles/{id}.
//
// Fields are pointers so a missing key ("title" absent) can be told apart
// from an empty value. `required` rejects the first; the title length rule
// rejects the second.
type ArticleInput struct {
	Title   *string `json:"title" validate:"required,title_length"`
	Content *string `json:"content" validate:"required"`
}

// LoginInput is the body of POST /api/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenInput is the body of POST /api/token.
type TokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Validator wraps a configured *validator.Validate. It is safe for concurrent
// use; the underlying validator caches struct metadata internally.
type Validator struct {
	validate *validator.Validate
}

// Title length bounds, counted in characters (runes), not bytes.
const (
	MinTitleLength = 1
	MaxTitleLength = 10
)

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New()
	v.RegisterAlias("title_length", fmt.Sprintf("min=%d,max=%d", MinTitleLength, MaxTitleLength))
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Violations validates s and returns every failed constraint. A nil slice
// means s is valid.
func (v *Validator) Violations(s any) []apperror.Violation {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: s was not a struct. A programming error,
		// but still report it as a violation rather than panic.
		return []apperror.Violation{{Message: err.Error()}}
	}

	violations := make([]apperror.Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, apperror.Violation{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return violations
}

// Validate is Violations wrapped as an error: nil when s is valid, otherwise
// an apperror.InvalidInput carrying the violations.
func (v *Validator) Validate(s any) error {
	if violations := v.Violations(s); len(violations) > 0 {
		return apperror.InvalidInput(violations)
	}
	return nil
}

// ValidateArticle checks an article body.
func (v *Validator) ValidateArticle(in ArticleInput) []apperror.Violation {
	return v.Violations(in)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "title_length":
		return fmt.Sprintf("%s must be between %d and %d characters", field, MinTitleLength, MaxTitleLength)
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
