package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

// OrderFilter narrows order listings. Zero fields are ignored.
type OrderFilter struct {
	Status        entity.OrderStatus
	CustomerEmail string
	CreatedBy     uuid.UUID
}

// OrderRepository always loads and persists the items with the order.
type OrderRepository interface {
	CRUD[entity.Order]
	GetByCustomerEmail(ctx context.Context, email string, page Page) ([]*entity.Order, error)
	GetByStatus(ctx context.Context, status entity.OrderStatus, page Page) ([]*entity.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, page Page) ([]*entity.Order, error)
	Find(ctx context.Context, f OrderFilter, page Page) ([]*entity.Order, error)
	CountFiltered(ctx context.Context, f OrderFilter) (int64, error)
}
