package model

import "time"

// Team represents a row in the `teams` table.
type Team struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember is the join record between users and teams. A user appears
// at most once per team (UNIQUE over user_id+team_id) and carries a
// membership role string such as "coach", "player" or "parent", which is
// distinct from the account-level role on the users table.
type TeamMember struct {
	ID       uint64
	UserID   uint64
	TeamID   uint64
	Role     string
	JoinedAt time.Time
}
