package types

import "time"

// Session is an issued access token bound to a user and a validity window.
type Session struct {
	ID          int64      `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	AccessToken string     `json:"-" db:"access_token"`
	LoginAt     time.Time  `json:"loginAt" db:"login_at"`
	ExpiresAt   time.Time  `json:"expiresAt" db:"expires_at"`
	LogoutAt    *time.Time `json:"logoutAt,omitempty" db:"logout_at"`
}

// SignedOut reports whether the session was explicitly closed.
func (s Session) SignedOut() bool {
	return s.LogoutAt != nil
}

// Expired reports whether now is at or past the session's expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Active reports whether the session can still authorize requests.
func (s Session) Active(now time.Time) bool {
	return !s.SignedOut() && !s.Expired(now)
}
