package repository

import "errors"

// Store errors returned by every repository implementation. Callers match them
// with errors.Is; implementations wrap them with driver detail.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrConstraint       = errors.New("constraint violation")
)
