package model

import "time"

// PasswordReset models an entry in the `password_resets` table. Each row
// belongs to one user and holds an unguessable token generated with
// crypto/rand. Rows are never deleted, only marked used, so the table
// doubles as an audit trail of reset activity. A token is redeemable if
// and only if it is unused and unexpired; expiry is a computed predicate,
// not a stored state.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – unique URL-safe random string handed to the user.
//  CreatedAt – timestamp of issuance.
//  ExpiresAt – issuance time plus the fixed validity window.
//  Used      – set once the token has been redeemed; never cleared.
type PasswordReset struct {
	ID        uint64
	UserID    uint64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the token's validity window has elapsed at the
// given instant. The boundary itself counts as expired.
func (p *PasswordReset) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Usable reports whether the token may still be redeemed: unused and
// inside its validity window. Once Used is set this is false forever,
// regardless of remaining time.
func (p *PasswordReset) Usable(now time.Time) bool {
	return !p.Used && !p.Expired(now)
}

// Session models an entry in the `sessions` table. A session is the
// server-side record of a logged-in user; the client holds the raw token
// and the database stores only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the raw session token.
//  ExpiresAt – expiration timestamp of the session.
//  RevokedAt – when the session was ended by logout (null if active).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
