package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spikeside/team-manager/internal/model"
)

// RoleRepo manages the roles table. Roles come into existence lazily:
// the first registration naming a role creates it, later ones reuse it.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetOrCreateTx returns the role with the given name, inserting it if
// missing, inside the caller's transaction. Two registrations racing on
// a brand-new role name are resolved by the UNIQUE constraint: the loser
// re-reads the winner's row instead of failing.
func (r *RoleRepo) GetOrCreateTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error) {
	role, err := r.getTx(ctx, tx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Role{}, err
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", name)
	if err != nil {
		if dup := duplicateKeyErr(err); errors.Is(dup, ErrConflict) {
			return r.getTx(ctx, tx, name)
		}
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: uint64(id), Name: name}, nil
}

func (r *RoleRepo) getTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error) {
	var role model.Role
	err := tx.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE name=? LIMIT 1", name).Scan(&role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}
