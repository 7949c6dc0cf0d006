// Package model defines the data structures shared across the application.
package model

import "time"

// Role determines what a user is allowed to do. Authoring posts is
// restricted to RoleAdmin; commenting only requires an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a registered account. The password is stored only as a bcrypt
// hash; the plaintext never reaches the model or the database.
//
// GitHubID is zero for accounts created through the registration form and
// holds GitHub's numeric user id for accounts created via OAuth sign-in.
// Role is an explicit column so privilege does not depend on the row's
// position in the table.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	GitHubID     int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may author, edit, and delete posts.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
