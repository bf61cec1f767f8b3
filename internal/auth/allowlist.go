package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// It is recoverable: the login form is shown again.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Allowlist is the static set of users allowed to sign in.
// Usernames are matched case-insensitively.
type Allowlist struct {
	users map[string]string
}

// NewAllowlist builds an allowlist from username → password pairs.
// A password may be stored as a bcrypt hash.
func NewAllowlist(users map[string]string) *Allowlist {
	normalized := make(map[string]string, len(users))
	for name, secret := range users {
		normalized[normalize(name)] = secret
	}
	return &Allowlist{users: normalized}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Len reports how many users may sign in.
func (a *Allowlist) Len() int { return len(a.users) }

// Authenticate checks the pair and returns the canonical username on success.
func (a *Allowlist) Authenticate(username, password string) (string, error) {
	name := normalize(username)
	secret, ok := a.users[name]
	if !ok || name == "" {
		return "", ErrInvalidCredentials
	}

	if isBcryptHash(secret) {
		if err := bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return name, nil
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(password)) != 1 {
		return "", ErrInvalidCredentials
	}
	return name, nil
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// HashPassword produces a bcrypt hash suitable for the allowlist.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
