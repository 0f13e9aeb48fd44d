package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// Expectation-based doubles for tests that script a single failure or
// assert on the exact calls made. The in-memory repositories cover everything
// else.

func ptrArg[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func sliceArg[T any](args mock.Arguments, i int) []*T {
	if v := args.Get(i); v != nil {
		return v.([]*T)
	}
	return nil
}

// mockCRUD implements repository.CRUD through mock.Mock.
type mockCRUD[T any] struct {
	mock.Mock
}

func (m *mockCRUD[T]) Create(ctx context.Context, e *T) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCRUD[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	args := m.Called(ctx, id)
	return ptrArg[T](args, 0), args.Error(1)
}

func (m *mockCRUD[T]) GetAll(ctx context.Context, page repository.Page) ([]*T, error) {
	args := m.Called(ctx, page)
	return sliceArg[T](args, 0), args.Error(1)
}

func (m *mockCRUD[T]) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCRUD[T]) Update(ctx context.Context, e *T) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCRUD[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCRUD[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockIngredientRepository mocks repository.IngredientRepository.
type MockIngredientRepository struct {
	mockCRUD[entity.Ingredient]
}

func (m *MockIngredientRepository) GetByName(ctx context.Context, name string) (*entity.Ingredient, error) {
	args := m.Called(ctx, name)
	return ptrArg[entity.Ingredient](args, 0), args.Error(1)
}

func (m *MockIngredientRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Ingredient, error) {
	args := m.Called(ctx, q, page)
	return sliceArg[entity.Ingredient](args, 0), args.Error(1)
}

// MockIngredientCostRepository mocks repository.IngredientCostRepository.
type MockIngredientCostRepository struct {
	mockCRUD[entity.IngredientCost]
}

func (m *MockIngredientCostRepository) GetByIngredientID(ctx context.Context, ingredientID uuid.UUID) ([]*entity.IngredientCost, error) {
	args := m.Called(ctx, ingredientID)
	return sliceArg[entity.IngredientCost](args, 0), args.Error(1)
}

func (m *MockIngredientCostRepository) GetCurrentCost(ctx context.Context, ingredientID uuid.UUID) (*entity.IngredientCost, error) {
	args := m.Called(ctx, ingredientID)
	return ptrArg[entity.IngredientCost](args, 0), args.Error(1)
}

func (m *MockIngredientCostRepository) GetCostAtDate(ctx context.Context, ingredientID uuid.UUID, at time.Time) (*entity.IngredientCost, error) {
	args := m.Called(ctx, ingredientID, at)
	return ptrArg[entity.IngredientCost](args, 0), args.Error(1)
}

// MockProductRepository mocks repository.ProductRepository.
type MockProductRepository struct {
	mockCRUD[entity.Product]
}

func (m *MockProductRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	args := m.Called(ctx, name)
	return ptrArg[entity.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Product, error) {
	args := m.Called(ctx, q, page)
	return sliceArg[entity.Product](args, 0), args.Error(1)
}

// MockPublisher mocks the order e-mail job publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

// MockImageStore mocks product image storage. The reader is drained before
// the call is recorded, as a real upload would.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	args := m.Called(ctx, objectPath, contentType)
	return args.String(0), args.Error(1)
}

var (
	_ repository.IngredientRepository     = (*MockIngredientRepository)(nil)
	_ repository.IngredientCostRepository = (*MockIngredientCostRepository)(nil)
	_ repository.ProductRepository        = (*MockProductRepository)(nil)
)
