// Package pwhash hashes and validates passwords with PBKDF2-SHA256 and a
// random per-hash salt.
package pwhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const keyLength = 32

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password does not match")

type PasswordHasher struct {
	saltSize   int
	iterations int
}

func New(saltSize, iterations int) (*PasswordHasher, error) {
	if saltSize <= 0 {
		return nil, fmt.Errorf("salt size must be positive, got %d", saltSize)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	return &PasswordHasher{
		saltSize:   saltSize,
		iterations: iterations,
	}, nil
}

// HashPassword returns "salt$key", both parts base64 encoded.
func (ph *PasswordHasher) HashPassword(password string) (string, error) {
	salt := make([]byte, ph.saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("can't generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, ph.iterations, keyLength, sha256.New)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(key), nil
}

// Validate checks the password against a hash produced by HashPassword.
func (ph *PasswordHasher) Validate(password, hash string) error {
	saltPart, keyPart, ok := strings.Cut(hash, "$")
	if !ok {
		return fmt.Errorf("malformed password hash")
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return fmt.Errorf("malformed salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(keyPart)
	if err != nil {
		return fmt.Errorf("malformed key: %w", err)
	}

	derived := pbkdf2.Key([]byte(password), salt, ph.iterations, keyLength, sha256.New)
	if subtle.ConstantTimeCompare(derived, key) != 1 {
		return ErrMismatch
	}
	return nil
}
