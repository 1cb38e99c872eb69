package domain

import (
	"time"
)

// User represents an account in the system. Accounts are created by
// invitation with only an email and a role; first/last name and the password
// hash stay empty until the invitee completes their profile.
type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	Role                   string     `json:"role"`
	IsEmailVerified        bool       `json:"is_email_verified"`
	EmailVerificationToken string     `json:"-"`
	PasswordResetToken     string     `json:"-"`
	PasswordResetExpires   *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ProfileComplete reports whether the account has finished onboarding.
// Login is only possible once a name and password have been set.
func (u *User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != "" && u.PasswordHash != ""
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
