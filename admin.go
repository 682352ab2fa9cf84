package cordsearch

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// AdminAuth gates the mutating/administrative endpoints
// (add_document, reload) with an HMAC-signed bearer token: a caller
// presents a token and this package verifies it was produced by
// signing a fixed challenge string with the shared secret. This is a
// thin utility named in scope but not part of the invariant surface.
type AdminAuth struct {
	secret []byte
}

// NewAdminAuth builds an AdminAuth from a shared secret. An empty
// secret disables admin auth entirely (every token is accepted) —
// intended only for local development.
func NewAdminAuth(secret string) *AdminAuth {
	return &AdminAuth{secret: []byte(secret)}
}

const adminChallenge = "cordsearch-admin"

// Token computes the bearer token for the configured secret.
func (a *AdminAuth) Token() string {
	if len(a.secret) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(adminChallenge))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token is the valid admin bearer token.
func (a *AdminAuth) Verify(token string) bool {
	if len(a.secret) == 0 {
		return true
	}
	want := a.Token()
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// CheckErr returns ErrBadInput wrapped with context if token does not
// verify, for use at HTTP handler boundaries.
func (a *AdminAuth) CheckErr(token string) error {
	if !a.Verify(token) {
		return fmt.Errorf("admin auth: %w: invalid token", ErrBadInput)
	}
	return nil
}
