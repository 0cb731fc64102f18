package domain

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user id has no record.
var ErrUserNotFound = errors.New("user not found")

// Role is an application role as carried in the bearer credential.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleOrganizer Role = "Organizer"
	RoleUser      Role = "User"
)

// User is a registered account as the backend knows it.
// swagger:model User
type User struct {
	ID       string `json:"_id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Identity is the caller resolved from a bearer credential. It is obtained once
// and passed to components at construction.
type Identity struct {
	UserID   string
	Role     Role
	FullName string
	Email    string
	// Token is the raw bearer credential, forwarded on outbound calls.
	Token string
}

// Resolved reports whether the identity carries a user id.
func (i Identity) Resolved() bool {
	return i.UserID != ""
}

// User returns the account fields carried by the credential.
func (i Identity) User() User {
	return User{ID: i.UserID, FullName: i.FullName, Email: i.Email, Role: i.Role}
}

// TokenVerifier verifies a signed token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserRepository stores the accounts of callers seen in verified credentials.
// Accounts are issued elsewhere; Upsert keeps a local row for references.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, u *User) error
}
