package model

import (
	"database/sql"
	"time"
)

// User represents a row in the `users` table. Email and Username are
// stored lower-cased and carry UNIQUE constraints; the pre-checks in the
// repository layer exist only to produce friendly errors, the constraint
// is the real serialization point. PasswordHash holds a bcrypt digest;
// the plaintext never appears on this struct and there is no accessor
// for it anywhere in the codebase.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  Username     – unique, lower-cased handle.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name, display only.
//  LastName     – family name, display only.
//  Phone        – contact phone, display only.
//  RoleID       – foreign key into the roles table.
//  RoleName     – resolved role name, populated by joins.
//  IsActive     – whether the account is active.
//  ProfileImage – object-storage key of the avatar, empty if unset.
//  CreatedAt    – timestamp of creation.
//  LastLogin    – last successful authentication (null until first login).
type User struct {
	ID           uint64
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	RoleID       uint64
	RoleName     string
	IsActive     bool
	ProfileImage string
	CreatedAt    time.Time
	LastLogin    sql.NullTime
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Role represents a row in the `roles` table. Roles are created lazily
// the first time a name is referenced and are never deleted in normal
// operation. Many users share one role.
type Role struct {
	ID   uint64
	Name string
}
