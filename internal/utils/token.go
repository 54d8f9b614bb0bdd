package utils // helpers for generating and hashing opaque tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// resetTokenBytes is the entropy of password-reset tokens. 32 bytes gives
// 256 bits, which makes guessing a live token infeasible.
const resetTokenBytes = 32

// SessionToken is a long-lived opaque credential used to keep a user
// logged in. The Raw string goes back to the client; only its SHA-256
// hash is stored in the sessions table.
type SessionToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewResetToken returns a cryptographically random URL-safe string for
// the password-reset flow. The value is safe to embed in a link without
// further escaping.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewSessionToken returns a random session token valid for ttl. The
// caller chooses the ttl so that a "remember me" login can extend it.
func NewSessionToken(ttl time.Duration) (SessionToken, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return SessionToken{}, err
	}
	return SessionToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(ttl),
	}, nil
}

// HashSessionRaw returns the SHA-256 hash of a raw session token as a
// hex string. Storing only the hash keeps a stolen database dump from
// being replayed as live sessions.
func HashSessionRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
