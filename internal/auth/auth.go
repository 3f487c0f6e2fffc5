// Package auth verifies HTTP Basic credentials against the configured
// username and password.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/chasedovey/tokencounter/internal/domain"
)

// Verifier checks supplied credentials against the process-wide pair
// loaded at startup. Verification is stateless; every request
// re-authenticates.
type Verifier struct {
	usernameHash [sha256.Size]byte
	passwordHash [sha256.Size]byte
}

// NewVerifier creates a verifier for the configured credential pair.
func NewVerifier(username, password string) *Verifier {
	return &Verifier{
		usernameHash: sha256.Sum256([]byte(username)),
		passwordHash: sha256.Sum256([]byte(password)),
	}
}

// Verify compares the attempted credentials in constant time and returns
// the verified username as the request principal. Hashing both sides
// first keeps the comparison length-independent.
func (v *Verifier) Verify(username, password string) (string, error) {
	uh := sha256.Sum256([]byte(username))
	ph := sha256.Sum256([]byte(password))

	// Evaluate both comparisons unconditionally so a username mismatch
	// does not short-circuit the password check.
	userOK := subtle.ConstantTimeCompare(uh[:], v.usernameHash[:])
	passOK := subtle.ConstantTimeCompare(ph[:], v.passwordHash[:])

	if userOK&passOK != 1 {
		return "", domain.ErrAuthentication("invalid credentials")
	}
	return username, nil
}
