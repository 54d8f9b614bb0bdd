package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/spikeside/team-manager/internal/model"
)

// ResetTokenRepo persists password-reset tokens. Tokens are only ever
// inserted and flagged used, never deleted, so the table keeps a full
// audit history of reset activity. Issuing a new token does not revoke
// older ones still inside their window; several live tokens may coexist
// for one user.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create stores a freshly issued token for the user.
func (r *ResetTokenRepo) Create(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, expiresAt)
	return err
}

// Validate looks up a token by exact string and classifies its state.
// It returns ErrTokenNotFound, ErrTokenExpired or ErrTokenUsed on
// failure, and the row itself on success. Validation never consumes the
// token: a check that only renders the reset form must not burn it.
func (r *ResetTokenRepo) Validate(ctx context.Context, token string) (model.PasswordReset, error) {
	var p model.PasswordReset
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token, created_at, expires_at, used
		 FROM password_resets WHERE token=? LIMIT 1`,
		token).Scan(&p.ID, &p.UserID, &p.Token, &p.CreatedAt, &p.ExpiresAt, &p.Used)
	if err == sql.ErrNoRows {
		return model.PasswordReset{}, ErrTokenNotFound
	}
	if err != nil {
		return model.PasswordReset{}, err
	}
	now := time.Now().UTC()
	switch {
	case p.Expired(now):
		return model.PasswordReset{}, ErrTokenExpired
	case p.Used:
		return model.PasswordReset{}, ErrTokenUsed
	}
	return p, nil
}

// ConsumeTx marks the token used inside the caller's transaction. The
// caller must run this together with the password update so a consumed
// token always implies a changed credential. Consuming an already-used
// row is a no-op.
func (r *ResetTokenRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE password_resets SET used=1 WHERE id=?", id)
	return err
}
