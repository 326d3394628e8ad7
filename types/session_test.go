package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Active(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logout := now.Add(-time.Minute)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"fresh", Session{ExpiresAt: now.Add(time.Hour)}, true},
		{"signed out", Session{ExpiresAt: now.Add(time.Hour), LogoutAt: &logout}, false},
		{"expired", Session{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", Session{ExpiresAt: now}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.session.Active(now))
		})
	}
}

func TestUser_ProfileOmitsCredentials(t *testing.T) {
	u := User{
		ID:           "id-1",
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "HASH",
		Salt:         "SALT",
		FirstName:    "Alice",
		Country:      "NL",
	}
	p := u.Profile()
	assert.Equal(t, "alice", p.UserName)
	assert.Equal(t, "a@x.com", p.EmailAddress)
	assert.Equal(t, "Alice", p.FirstName)
	assert.Equal(t, "NL", p.Country)
}
