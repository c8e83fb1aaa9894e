package domain

import "strings"

// User is the identity snapshot returned by the backend's /auth/me endpoint.
// A copy is denormalized into every session.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Membership string `json:"membership,omitempty"`
	IsVerified bool   `json:"is_verified"`
}

// DisplayName returns "First Last", falling back to the email address.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// TokenPair holds the credentials returned by login and registration.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Verification code purposes accepted by the backend.
const (
	CodeTypeRegister       = "register"
	CodeTypeForgotPassword = "forgot-password"
)
