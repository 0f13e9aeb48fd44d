package repository

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is an offset window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps skip to >= 0 and limit to (0, MaxLimit].
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// CRUD is the contract shared by every entity repository.
type CRUD[T any] interface {
	Create(ctx context.Context, e *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	GetAll(ctx context.Context, page Page) ([]*T, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, e *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor runs fn inside a single storage transaction. Repositories called
// with the ctx handed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
