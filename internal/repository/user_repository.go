package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/spikeside/team-manager/internal/model"
	"github.com/spikeside/team-manager/internal/utils"
)

// UserRepo provides persistence for user accounts. Passwords enter as
// plaintext and are hashed here before touching the database; no method
// on this type returns or accepts a digest except as an opaque column.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.email, u.username, u.password_hash, u.first_name, u.last_name,
 u.phone, u.role_id, r.name, u.is_active, COALESCE(u.profile_image,''), u.created_at, u.last_login`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.RoleID, &u.RoleName, &u.IsActive, &u.ProfileImage, &u.CreatedAt, &u.LastLogin)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// CreateTx hashes the password and inserts the user inside the caller's
// transaction, so registration commits together with the lazy role
// create. Email and username must already be normalized. A duplicate-key
// failure maps to ErrEmailExists or ErrUsernameExists; that path is how
// the loser of a concurrent registration race is rejected.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, first_name, last_name, phone, role_id)
		 VALUES (?,?,?,?,?,?,?)`,
		u.Email, u.Username, hash, u.FirstName, u.LastName, u.Phone, u.RoleID)
	if err != nil {
		return duplicateKeyErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id=u.role_id WHERE u.email=? LIMIT 1",
		email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id=u.role_id WHERE u.id=? LIMIT 1",
		id))
}

// EmailTaken reports whether another user already owns the email.
// excludeID skips the caller's own row so a profile edit that keeps the
// current address never collides with itself.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND id<>?", email, excludeID).Scan(&n)
	return n > 0, err
}

// UsernameTaken is EmailTaken for the handle column.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, excludeID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=? AND id<>?", username, excludeID).Scan(&n)
	return n > 0, err
}

// UpdateProfile writes the editable profile fields. The UNIQUE
// constraints still apply underneath the pre-checks, so a race between
// two edits surfaces here as ErrEmailExists/ErrUsernameExists.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, username=?, first_name=?, last_name=?, phone=? WHERE id=?",
		u.Email, u.Username, u.FirstName, u.LastName, u.Phone, u.ID)
	return duplicateKeyErr(err)
}

// SetLastLogin records a successful authentication.
func (r *UserRepo) SetLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET last_login=? WHERE id=?", at, id)
	return err
}

// SetProfileImage stores the object-storage key of the user's avatar.
func (r *UserRepo) SetProfileImage(ctx context.Context, id uint64, key string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET profile_image=? WHERE id=?", key, id)
	return err
}

// UpdatePasswordTx hashes and stores a new password inside the caller's
// transaction. The reset flow runs this together with marking the token
// used so the two can never be observed half-applied.
func (r *UserRepo) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// Count returns the total number of user accounts.
func (r *UserRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// CountByRole returns how many users hold the named account role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users u JOIN roles r ON r.id=u.role_id WHERE r.name=?", role).Scan(&n)
	return n, err
}
