// Package auth implements the stub token issuer: it exchanges credentials for
// an opaque bearer token with no expiry, no revocation, and no cryptographic
// verification. Real credential management lives outside this system.
package auth

import "errors"

// ErrInvalidCredentials is returned when the username/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// fakeUsers is the fixed credential table, keyed by username. Passwords are
// stored with the stub hash scheme "fakehashed" + password.
var fakeUsers = map[string]string{
	"admin@example.com": "fakehashed123",
}

// Service contains the token issuance logic.
type Service struct{}

// NewService creates a new auth Service.
func NewService() *Service {
	return &Service{}
}

// IssueToken validates the credentials and returns the opaque bearer token
// for the account. The token is the username itself: downstream ownership
// checks compare this raw string, nothing is signed or verified.
func (s *Service) IssueToken(username, password string) (string, error) {
	hashed, ok := fakeUsers[username]
	if !ok || fakeHashPassword(password) != hashed {
		return "", ErrInvalidCredentials
	}
	return username, nil
}

// fakeHashPassword mirrors the stub hash used to seed fakeUsers.
func fakeHashPassword(password string) string {
	return "fakehashed" + password
}
