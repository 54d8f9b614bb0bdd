// Package repository defines sentinel errors shared across the
// repositories. Handlers match on these values to pick an HTTP status
// without inspecting driver-specific errors themselves.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a record does not exist. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would collide with
// another user's email address.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update would collide
// with another user's username.
var ErrUsernameExists = errors.New("username already exists")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as adding a user to a team twice. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Reset-token failures are kept distinct internally so tests and logs
// can tell the cases apart; the HTTP layer collapses all three into one
// generic "invalid or expired token" message so a caller probing tokens
// learns nothing about which check failed.
var (
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token expired")
	ErrTokenUsed     = errors.New("reset token already used")
)

// mysqlDuplicateEntry is the MySQL error number for a UNIQUE violation.
const mysqlDuplicateEntry = 1062

// duplicateKeyErr maps a MySQL duplicate-entry error to the matching
// sentinel by looking at the violated key name. The UNIQUE constraints
// are the real guard against concurrent inserts racing past the
// repository pre-checks, so this mapping is what a loser of that race
// sees. Unrelated errors pass through unchanged.
func duplicateKeyErr(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	switch {
	case strings.Contains(me.Message, "email"):
		return ErrEmailExists
	case strings.Contains(me.Message, "username"):
		return ErrUsernameExists
	}
	return ErrConflict
}
