package application

import (
	"errors"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrForbidden          = errors.New("forbidden")
	ErrOrderLocked        = errors.New("only pending orders can be modified")
	ErrInUse              = errors.New("record is still referenced")
	ErrNotConfigured      = errors.New("feature not configured")
)

func invalidInput(field, msg string) error {
	return &entity.ValidationError{Field: field, Message: msg}
}
