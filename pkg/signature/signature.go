// Package signature authenticates payment-provider callbacks with a shared-secret HMAC.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrMissingSignature is returned when no signature accompanies the payload.
	ErrMissingSignature = errors.New("no signature found")
	// ErrInvalidSignature is returned when the signature does not match the payload.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrSecretMissing is returned when the verifier has no secret configured.
	ErrSecretMissing = errors.New("signing secret missing")
)

// Verifier computes and checks hex encoded HMAC-SHA256 digests over raw bodies.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a verifier for the provided shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns the lowercase hex digest of body.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks claimed against the digest of body. The body must be the
// untouched bytes received on the wire.
func (v *Verifier) Verify(body []byte, claimed string) error {
	if len(v.secret) == 0 {
		return ErrSecretMissing
	}
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return ErrMissingSignature
	}
	expected := v.Sign(body)
	if !hmac.Equal([]byte(expected), []byte(claimed)) {
		return ErrInvalidSignature
	}
	return nil
}
