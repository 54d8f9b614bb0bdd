package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		Email:           "alice@x.com",
		Username:        "alice",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
		FirstName:       "Alice",
		LastName:        "A",
		Phone:           "555",
		Role:            "player",
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.COM "))
	assert.Equal(t, "alice@x.com", NormalizeEmail("alice@x.com"))
	assert.Equal(t, NormalizeEmail("ALICE@X.COM"), NormalizeEmail("alice@x.com"),
		"emails differing only by case must normalize identically")
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername(" Alice "))
	assert.Equal(t, NormalizeUsername("ALICE"), NormalizeUsername("alice"))
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Registration)
		wantField string
	}{
		{name: "valid", mutate: func(r *Registration) {}},
		{name: "missing email", mutate: func(r *Registration) { r.Email = "" }, wantField: "email"},
		{name: "malformed email", mutate: func(r *Registration) { r.Email = "not-an-email" }, wantField: "email"},
		{name: "short username", mutate: func(r *Registration) { r.Username = "ab" }, wantField: "username"},
		{name: "short password", mutate: func(r *Registration) { r.Password, r.ConfirmPassword = "short", "short" }, wantField: "password"},
		{name: "password mismatch", mutate: func(r *Registration) { r.ConfirmPassword = "Different1!" }, wantField: "confirm_password"},
		{name: "missing first name", mutate: func(r *Registration) { r.FirstName = "" }, wantField: "first_name"},
		{name: "missing last name", mutate: func(r *Registration) { r.LastName = "" }, wantField: "last_name"},
		{name: "phone too long", mutate: func(r *Registration) { r.Phone = "123456789012345678901" }, wantField: "phone"},
		{name: "unknown role", mutate: func(r *Registration) { r.Role = "referee" }, wantField: "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)
			errs := ValidateRegistration(r)
			if tt.wantField == "" {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestValidateRegistrationCollectsAllFields(t *testing.T) {
	errs := ValidateRegistration(Registration{})
	require.NotNil(t, errs)
	for _, field := range []string{"email", "username", "password", "first_name", "last_name", "role"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateProfile(t *testing.T) {
	p := Profile{
		Email:     "alice@x.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "A",
	}
	assert.Nil(t, ValidateProfile(p))

	p.Username = "ab"
	errs := ValidateProfile(p)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "username")
}

func TestValidateNewPassword(t *testing.T) {
	assert.Nil(t, ValidateNewPassword("NewPass123!", "NewPass123!"))

	errs := ValidateNewPassword("short", "short")
	require.NotNil(t, errs)
	assert.Contains(t, errs, "password")

	errs = ValidateNewPassword("NewPass123!", "Other123!")
	require.NotNil(t, errs)
	assert.Contains(t, errs, "confirm_password")
}

func TestValidMemberRole(t *testing.T) {
	assert.True(t, ValidMemberRole("player"))
	assert.True(t, ValidMemberRole(" Coach "))
	assert.True(t, ValidMemberRole("parent"))
	assert.False(t, ValidMemberRole("admin"))
	assert.False(t, ValidMemberRole(""))
}
