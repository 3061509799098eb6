package auth

// PASSWORD HASHING WITH BCRYPT:
// bcrypt is deliberately slow, salts every hash, and embeds salt and cost in
// its output, so the users table needs only one password_hash column:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 iterations)
//	 version
//
// Accounts created through GitHub have no hash at all; password login is
// refused for them.

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used outside tests.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated, so it is rejected instead.
const maxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong, or
// when the account has no password at all.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests. Cost 4 is the bcrypt minimum and hashes in well under a millisecond.
type PasswordService struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// cost. Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("auth: password must not be empty")
	}
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// It returns ErrPasswordMismatch for a wrong password and for an empty hash.
//
// bcrypt.CompareHashAndPassword compares in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		p.DummyVerify(plaintext)
		return ErrPasswordMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// DummyVerify spends the same time as a real Verify and discards the result.
// Login calls it for unknown emails so response timing does not reveal which
// accounts exist.
func (p *PasswordService) DummyVerify(plaintext string) {
	p.dummyOnce.Do(func() {
		// The plaintext is irrelevant; only the cost matters.
		p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
}
