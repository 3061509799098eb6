package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRefreshToken(t *testing.T) {
	a := NewRefreshToken()
	b := NewRefreshToken()

	if a == b {
		t.Error("two refresh tokens should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("NewRefreshToken() = %q is not a UUID: %v", a, err)
	}
}
