package mocks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

type UserRepository struct{ *memStore[entity.User] }

func NewUserRepository() *UserRepository {
	return &UserRepository{newMemStore(
		func(u *entity.User) uuid.UUID { return u.ID },
		nil,
		func(u *entity.User) *entity.User { c := *u; return &c },
	)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if ok, _ := r.EmailExists(ctx, u.Email); ok {
		return repository.ErrDuplicate
	}
	if ok, _ := r.UsernameExists(ctx, u.Username); ok {
		return repository.ErrDuplicate
	}
	return r.memStore.Create(ctx, u)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findOne(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.findOne(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

type IngredientRepository struct{ *memStore[entity.Ingredient] }

func NewIngredientRepository() *IngredientRepository {
	return &IngredientRepository{newMemStore(
		func(i *entity.Ingredient) uuid.UUID { return i.ID },
		func(i *entity.Ingredient) string { return i.Name },
		func(i *entity.Ingredient) *entity.Ingredient { c := *i; return &c },
	)}
}

func (r *IngredientRepository) GetByName(_ context.Context, name string) (*entity.Ingredient, error) {
	return r.findOne(func(i *entity.Ingredient) bool { return i.Name == name })
}

func (r *IngredientRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Ingredient, error) {
	return r.filter(ctx, page, func(i *entity.Ingredient) bool { return containsFold(i.Name, q) })
}

type IngredientCostRepository struct{ *memStore[entity.IngredientCost] }

func NewIngredientCostRepository() *IngredientCostRepository {
	return &IngredientCostRepository{newMemStore(
		func(c *entity.IngredientCost) uuid.UUID { return c.ID },
		nil,
		func(c *entity.IngredientCost) *entity.IngredientCost { cp := *c; return &cp },
	)}
}

func (r *IngredientCostRepository) GetByIngredientID(_ context.Context, ingredientID uuid.UUID) ([]*entity.IngredientCost, error) {
	out := make([]*entity.IngredientCost, 0)
	for _, c := range r.all() {
		if c.IngredientID == ingredientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *IngredientCostRepository) GetCurrentCost(ctx context.Context, ingredientID uuid.UUID) (*entity.IngredientCost, error) {
	costs, _ := r.GetByIngredientID(ctx, ingredientID)
	if c := entity.LatestCost(costs); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (r *IngredientCostRepository) GetCostAtDate(ctx context.Context, ingredientID uuid.UUID, at time.Time) (*entity.IngredientCost, error) {
	costs, _ := r.GetByIngredientID(ctx, ingredientID)
	if c := entity.CostAt(costs, at); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type RecipeRepository struct{ *memStore[entity.Recipe] }

func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{newMemStore(
		func(r *entity.Recipe) uuid.UUID { return r.ID },
		func(r *entity.Recipe) string { return r.Name },
		func(r *entity.Recipe) *entity.Recipe {
			c := *r
			c.Ingredients = append([]entity.RecipeIngredient(nil), r.Ingredients...)
			return &c
		},
	)}
}

func (r *RecipeRepository) GetByName(_ context.Context, name string) (*entity.Recipe, error) {
	return r.findOne(func(x *entity.Recipe) bool { return x.Name == name })
}

func (r *RecipeRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Recipe, error) {
	return r.filter(ctx, page, func(x *entity.Recipe) bool { return containsFold(x.Name, q) })
}

type ProductRepository struct{ *memStore[entity.Product] }

func NewProductRepository() *ProductRepository {
	return &ProductRepository{newMemStore(
		func(p *entity.Product) uuid.UUID { return p.ID },
		func(p *entity.Product) string { return p.Name },
		func(p *entity.Product) *entity.Product {
			c := *p
			c.Recipes = append([]entity.ProductRecipe(nil), p.Recipes...)
			return &c
		},
	)}
}

func (r *ProductRepository) GetByName(_ context.Context, name string) (*entity.Product, error) {
	return r.findOne(func(p *entity.Product) bool { return p.Name == name })
}

func (r *ProductRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Product, error) {
	return r.filter(ctx, page, func(p *entity.Product) bool { return containsFold(p.Name, q) })
}

type OrderRepository struct{ *memStore[entity.Order] }

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{newMemStore(
		func(o *entity.Order) uuid.UUID { return o.ID },
		nil,
		func(o *entity.Order) *entity.Order {
			c := *o
			c.Items = append([]entity.OrderItem(nil), o.Items...)
			return &c
		},
	)}
}

func matchOrder(f repository.OrderFilter) func(*entity.Order) bool {
	return func(o *entity.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, f.CustomerEmail) {
			return false
		}
		if f.CreatedBy != uuid.Nil && o.CreatedByUserID != f.CreatedBy {
			return false
		}
		return true
	}
}

func (r *OrderRepository) Find(ctx context.Context, f repository.OrderFilter, page repository.Page) ([]*entity.Order, error) {
	return r.filter(ctx, page, matchOrder(f))
}

func (r *OrderRepository) CountFiltered(_ context.Context, f repository.OrderFilter) (int64, error) {
	return r.count(matchOrder(f)), nil
}

func (r *OrderRepository) GetByCustomerEmail(ctx context.Context, email string, page repository.Page) ([]*entity.Order, error) {
	return r.Find(ctx, repository.OrderFilter{CustomerEmail: email}, page)
}

func (r *OrderRepository) GetByStatus(ctx context.Context, status entity.OrderStatus, page repository.Page) ([]*entity.Order, error) {
	return r.Find(ctx, repository.OrderFilter{Status: status}, page)
}

func (r *OrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page repository.Page) ([]*entity.Order, error) {
	return r.Find(ctx, repository.OrderFilter{CreatedBy: userID}, page)
}

var (
	_ repository.UserRepository           = (*UserRepository)(nil)
	_ repository.IngredientRepository     = (*IngredientRepository)(nil)
	_ repository.IngredientCostRepository = (*IngredientCostRepository)(nil)
	_ repository.RecipeRepository         = (*RecipeRepository)(nil)
	_ repository.ProductRepository        = (*ProductRepository)(nil)
	_ repository.OrderRepository          = (*OrderRepository)(nil)
)
