package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/spikeside/team-manager/internal/model"
)

// TeamRepo provides CRUD for teams and their membership join records.
type TeamRepo struct{ DB *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{DB: db} }

// Create inserts a team and returns its ID. A duplicate name maps to
// ErrConflict.
func (r *TeamRepo) Create(ctx context.Context, name string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO teams (name) VALUES (?)", name)
	if err != nil {
		return 0, duplicateKeyErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a team by id.
func (r *TeamRepo) GetByID(ctx context.Context, id uint64) (model.Team, error) {
	var t model.Team
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM teams WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Team{}, ErrNotFound
	}
	return t, err
}

// List returns all teams ordered by name.
func (r *TeamRepo) List(ctx context.Context) ([]model.Team, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, created_at FROM teams ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// AddMember creates a membership join record. Adding the same user to
// the same team twice maps to ErrConflict via the UNIQUE(user_id,
// team_id) constraint.
func (r *TeamRepo) AddMember(ctx context.Context, teamID, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO team_members (team_id, user_id, role) VALUES (?,?,?)",
		teamID, userID, role)
	if err != nil {
		return duplicateKeyErr(err)
	}
	return nil
}

// TeamMemberDetail is a membership row joined with the member's public
// profile fields for display.
type TeamMemberDetail struct {
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ListMembers returns the members of a team with their profile fields.
func (r *TeamRepo) ListMembers(ctx context.Context, teamID uint64) ([]TeamMemberDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.user_id, u.username, u.first_name, u.last_name, m.role, m.joined_at
		 FROM team_members m JOIN users u ON u.id=m.user_id
		 WHERE m.team_id=? ORDER BY m.joined_at`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []TeamMemberDetail
	for rows.Next() {
		var m TeamMemberDetail
		if err := rows.Scan(&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// RemoveMember deletes a membership record; ErrNotFound if absent.
func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM team_members WHERE team_id=? AND user_id=?", teamID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of teams.
func (r *TeamRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM teams").Scan(&n)
	return n, err
}
