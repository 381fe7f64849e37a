package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a username/password pair supplied at login. Never persisted.
type Credential struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Validator decides whether a credential is valid.
// A false result with a nil error is an ordinary mismatch; a non-nil error
// means validation itself failed.
type Validator interface {
	Validate(ctx context.Context, cred Credential) (bool, error)
}

// StaticValidator compares credentials against a fixed reference pair
// supplied by deployment configuration.
type StaticValidator struct {
	Username string
	Password string
}

// Validate reports whether cred exactly matches the reference pair.
func (v StaticValidator) Validate(_ context.Context, cred Credential) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(cred.Username), []byte(v.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(cred.Password), []byte(v.Password)) == 1
	return userOK && passOK, nil
}

// BcryptValidator matches the username exactly and checks the password
// against a bcrypt hash, so the secret itself never sits in configuration.
type BcryptValidator struct {
	Username     string
	PasswordHash []byte
}

// Validate reports whether cred matches. A malformed hash is an error.
func (v BcryptValidator) Validate(_ context.Context, cred Credential) (bool, error) {
	err := bcrypt.CompareHashAndPassword(v.PasswordHash, []byte(cred.Password))
	switch {
	case err == nil:
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password hash: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(cred.Username), []byte(v.Username)) == 1, nil
}
