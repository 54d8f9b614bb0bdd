package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "Secret123!")

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "exact plaintext", candidate: "Secret123!", want: true},
		{name: "wrong password", candidate: "Secret123?", want: false},
		{name: "empty string", candidate: "", want: false},
		{name: "the digest itself", candidate: hash, want: false},
		{name: "case difference", candidate: "secret123!", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(hash, tt.candidate))
		})
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	h1, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)

	// Different salt, different digest, both verify.
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "Secret123!"))
	assert.True(t, VerifyPassword(h2, "Secret123!"))
}

func TestVerifyPasswordRejectsNewCredentialAfterChange(t *testing.T) {
	old, err := HashPassword("OldPass123!", bcrypt.MinCost)
	require.NoError(t, err)
	newer, err := HashPassword("NewPass123!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(newer, "NewPass123!"))
	assert.False(t, VerifyPassword(newer, "OldPass123!"))
	assert.False(t, VerifyPassword(old, "NewPass123!"))
}
