package domain

import "time"

// User is the persisted account record. PasswordHash never leaves the
// service layer; transport DTOs carry a sanitized view.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	FullName      string
	Bio           string
	AvatarFileID  string
	Role          string
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin is a convenience for handlers that branch on privilege.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
