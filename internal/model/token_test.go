package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetUsable(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(24 * time.Hour)

	tests := []struct {
		name string
		used bool
		now  time.Time
		want bool
	}{
		{name: "fresh token", used: false, now: issued.Add(time.Minute), want: true},
		{name: "one second before expiry", used: false, now: expires.Add(-time.Second), want: true},
		{name: "exactly at expiry", used: false, now: expires, want: false},
		{name: "one second after expiry", used: false, now: expires.Add(time.Second), want: false},
		{name: "consumed with time remaining", used: true, now: issued.Add(time.Hour), want: false},
		{name: "consumed and expired", used: true, now: expires.Add(time.Hour), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PasswordReset{
				UserID:    1,
				Token:     "tok",
				CreatedAt: issued,
				ExpiresAt: expires,
				Used:      tt.used,
			}
			assert.Equal(t, tt.want, p.Usable(tt.now))
		})
	}
}

func TestPasswordResetExpiredBoundary(t *testing.T) {
	expires := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	p := PasswordReset{ExpiresAt: expires}

	assert.False(t, p.Expired(expires.Add(-time.Nanosecond)))
	assert.True(t, p.Expired(expires))
	assert.True(t, p.Expired(expires.Add(time.Nanosecond)))
}
