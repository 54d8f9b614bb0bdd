// Package validation holds pure input checks for the auth and profile
// forms. Nothing in here touches storage: uniqueness of email/username
// is a separate repository-level step, so these functions stay testable
// without a live database.
package validation

import (
	"regexp"
	"strings"
)

const (
	minPasswordLen = 8
	minUsernameLen = 4
	maxUsernameLen = 64
	maxNameLen     = 64
	maxPhoneLen    = 20
)

// Loose shape check only; deliverability is the mailer's problem.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// memberRoles are the roles a user may register with or hold on a team.
var memberRoles = map[string]bool{
	"player": true,
	"coach":  true,
	"parent": true,
}

// FieldErrors maps a form field name to a human-readable problem with
// its submitted value. It is returned to the client as-is.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for f, msg := range e {
		parts = append(parts, f+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// NormalizeEmail lower-cases and trims an email address. Emails are
// compared and stored in this form everywhere.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeUsername lower-cases and trims a handle, mirroring
// NormalizeEmail so uniqueness is case-insensitive for both.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidMemberRole reports whether the given membership role is one of
// the accepted values.
func ValidMemberRole(role string) bool {
	return memberRoles[strings.ToLower(strings.TrimSpace(role))]
}

// Registration carries the normalized registration form input.
type Registration struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	Role            string
}

// ValidateRegistration checks every field of a registration form and
// returns all problems at once so the client can re-render the form with
// per-field messages. A nil return means the input is well-formed;
// uniqueness against existing accounts is checked separately.
func ValidateRegistration(r Registration) FieldErrors {
	errs := FieldErrors{}
	checkEmail(errs, r.Email)
	checkUsername(errs, r.Username)
	checkPassword(errs, r.Password, r.ConfirmPassword)
	checkName(errs, "first_name", r.FirstName)
	checkName(errs, "last_name", r.LastName)
	checkPhone(errs, r.Phone)
	if !ValidMemberRole(r.Role) {
		errs["role"] = "role must be one of player, coach, parent"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Profile carries the normalized profile-update form input.
type Profile struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// ValidateProfile checks a profile-update form. Same rules as
// registration minus the password and role fields.
func ValidateProfile(p Profile) FieldErrors {
	errs := FieldErrors{}
	checkEmail(errs, p.Email)
	checkUsername(errs, p.Username)
	checkName(errs, "first_name", p.FirstName)
	checkName(errs, "last_name", p.LastName)
	checkPhone(errs, p.Phone)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateNewPassword checks the password pair on the reset form.
func ValidateNewPassword(password, confirm string) FieldErrors {
	errs := FieldErrors{}
	checkPassword(errs, password, confirm)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkEmail(errs FieldErrors, email string) {
	if email == "" {
		errs["email"] = "email is required"
		return
	}
	if !emailRe.MatchString(email) {
		errs["email"] = "invalid email address"
	}
}

func checkUsername(errs FieldErrors, username string) {
	switch {
	case username == "":
		errs["username"] = "username is required"
	case len(username) < minUsernameLen || len(username) > maxUsernameLen:
		errs["username"] = "username must be between 4 and 64 characters"
	}
}

func checkPassword(errs FieldErrors, password, confirm string) {
	if len(password) < minPasswordLen {
		errs["password"] = "password must be at least 8 characters long"
		return
	}
	if password != confirm {
		errs["confirm_password"] = "passwords must match"
	}
}

func checkName(errs FieldErrors, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs[field] = "required"
	case len(value) > maxNameLen:
		errs[field] = "must be at most 64 characters"
	}
}

func checkPhone(errs FieldErrors, phone string) {
	if len(phone) > maxPhoneLen {
		errs["phone"] = "must be at most 20 characters"
	}
}
