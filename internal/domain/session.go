package domain

import "time"

// RefreshAccessTokenError marks a session whose access token could not be refreshed.
const RefreshAccessTokenError = "RefreshAccessTokenError"

// Session is the state carried inside the signed session cookie.
// Nothing about a session is kept in server memory.
type Session struct {
	AccessToken          string
	RefreshToken         string
	DeviceID             string
	AccessTokenExpiresAt time.Time
	User                 User
	// Error is terminal: once set the session is logged out regardless of the other fields.
	Error string
	// ExpiresAt bounds the whole session (refresh token lifetime at login).
	ExpiresAt time.Time
}

// LoggedIn reports whether the session can authorize requests.
func (s *Session) LoggedIn() bool {
	return s != nil && s.AccessToken != "" && s.Error == ""
}

// NeedsRefresh reports whether the access token has expired and a refresh may be attempted.
func (s *Session) NeedsRefresh(now time.Time) bool {
	return s.LoggedIn() && !now.Before(s.AccessTokenExpiresAt)
}

// Clone returns a copy that can be modified without affecting s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
