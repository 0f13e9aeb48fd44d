package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the aggregate root for the user domain.
// HashedPassword always holds a bcrypt hash, never the plain password.
type User struct {
	ID             uuid.UUID
	Email          string
	Username       string
	HashedPassword string
	Role           UserRole
	IsActive       bool
	FullName       string
	Settings       UserSettings
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewUser(email, username, hashedPassword string, role UserRole, fullName string) (*User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("email", "must be a valid email")
	}
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if hashedPassword == "" {
		return nil, invalid("password", "is required")
	}
	if !role.IsValid() {
		return nil, invalid("role", "must be admin or user")
	}
	now := Now()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           role,
		IsActive:       true,
		FullName:       strings.TrimSpace(fullName),
		Settings:       DefaultSettings(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) UpdateSettings(s UserSettings) {
	u.Settings = s
	u.UpdatedAt = Now()
}
