// Package models holds the server-side persistent records.
package models

import "time"

// User is a stored account.
//
// Password holds either a legacy plaintext value or a bcrypt hash; Login
// rewrites the former into the latter on the first successful sign-in.
type User struct {
	ID        string
	Username  string
	Email     string
	FullName  string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns FullName, or Username when no name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
