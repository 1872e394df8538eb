// Package password hashes and verifies account passwords with bcrypt and
// tells migrated hashes apart from legacy plaintext values.
package password

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password, in bytes, that bcrypt accepts.
const MaxLength = 72

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned by Hash for passwords over MaxLength bytes.
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxLength)
)

// prehashedPrefix marks a bcrypt hash taken over the SHA-256 digest of the
// password instead of the password itself.
const prehashedPrefix = "$bcrypt-sha256$"

// bcryptPrefixes are the self-describing version markers of a bcrypt hash.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$", prehashedPrefix}

// BcryptHasher is safe for concurrent use.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, clamped to bcrypt's
// accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash. Every call draws a fresh salt, so two
// hashes of the same password differ.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxLength {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HashLong hashes a password of any length. The password is reduced to a
// base64 SHA-256 digest first, which fits bcrypt's input limit, and the
// result carries its own prefix so Verify knows to do the same.
func (h *BcryptHasher) HashLong(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return prehashedPrefix + string(b), nil
}

func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// IsHashed reports whether value carries a bcrypt version prefix.
func (h *BcryptHasher) IsHashed(value string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// Verify compares plaintext against hashed in constant time. A malformed
// hash yields false.
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	if rest, ok := strings.CutPrefix(hashed, prehashedPrefix); ok {
		return bcrypt.CompareHashAndPassword([]byte(rest), prehash(plaintext)) == nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
