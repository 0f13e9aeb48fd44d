package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

const ingredientColumns = `id, name, unit, created_at, updated_at`

type IngredientRepository struct {
	pool *pgxpool.Pool
}

func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{pool: pool}
}

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var r ingredientRow
	if err := row.Scan(&r.ID, &r.Name, &r.Unit, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r.toEntity()
}

func (r *IngredientRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Ingredient, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	out := make([]*entity.Ingredient, 0)
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, MapError(rows.Err())
}

func (r *IngredientRepository) Create(ctx context.Context, i *entity.Ingredient) error {
	row := ingredientToRow(i)
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO ingredients (`+ingredientColumns+`) VALUES ($1, $2, $3, $4, $5)
	`, row.ID, row.Name, row.Unit, row.CreatedAt, row.UpdatedAt)
	return MapError(err)
}

func (r *IngredientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Ingredient, error) {
	i, err := scanIngredient(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("ingredient", id)
	}
	return i, MapError(err)
}

func (r *IngredientRepository) GetByName(ctx context.Context, name string) (*entity.Ingredient, error) {
	i, err := scanIngredient(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("ingredient", name)
	}
	return i, MapError(err)
}

func (r *IngredientRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.Ingredient, error) {
	page = page.Normalize()
	return r.list(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name, id OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
}

func (r *IngredientRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Ingredient, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients
		WHERE name ILIKE $1
		ORDER BY name, id OFFSET $2 LIMIT $3
	`, likePattern(q), page.Skip, page.Limit)
}

func (r *IngredientRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM ingredients`)
}

func (r *IngredientRepository) Update(ctx context.Context, i *entity.Ingredient) error {
	i.UpdatedAt = entity.Now()
	row := ingredientToRow(i)
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE ingredients SET name = $1, unit = $2, updated_at = $3 WHERE id = $4
	`, row.Name, row.Unit, row.UpdatedAt, row.ID)
	if err != nil {
		return MapError(err)
	}
	if res.RowsAffected() == 0 {
		return notFound("ingredient", i.ID)
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "ingredients", id)
}

func (r *IngredientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM ingredients WHERE id = $1)`, id)
}

var _ repository.IngredientRepository = (*IngredientRepository)(nil)

const ingredientCostColumns = `id, ingredient_id, cost_amount, cost_currency, effective_date, created_at, updated_at`

type IngredientCostRepository struct {
	pool *pgxpool.Pool
}

func NewIngredientCostRepository(pool *pgxpool.Pool) *IngredientCostRepository {
	return &IngredientCostRepository{pool: pool}
}

func scanIngredientCost(row pgx.Row) (*entity.IngredientCost, error) {
	var r ingredientCostRow
	if err := row.Scan(&r.ID, &r.IngredientID, &r.CostAmount, &r.CostCurrency, &r.EffectiveDate, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r.toEntity()
}

func (r *IngredientCostRepository) one(ctx context.Context, what any, sql string, args ...any) (*entity.IngredientCost, error) {
	c, err := scanIngredientCost(conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("ingredient cost", what)
	}
	return c, MapError(err)
}

func (r *IngredientCostRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.IngredientCost, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	out := make([]*entity.IngredientCost, 0)
	for rows.Next() {
		c, err := scanIngredientCost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, MapError(rows.Err())
}

func (r *IngredientCostRepository) Create(ctx context.Context, c *entity.IngredientCost) error {
	row := ingredientCostToRow(c)
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO ingredient_costs (`+ingredientCostColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, row.ID, row.IngredientID, row.CostAmount, row.CostCurrency, row.EffectiveDate, row.CreatedAt, row.UpdatedAt)
	return MapError(err)
}

func (r *IngredientCostRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.IngredientCost, error) {
	return r.one(ctx, id, `SELECT `+ingredientCostColumns+` FROM ingredient_costs WHERE id = $1`, id)
}

func (r *IngredientCostRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.IngredientCost, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+ingredientCostColumns+` FROM ingredient_costs
		ORDER BY effective_date DESC, id OFFSET $1 LIMIT $2
	`, page.Skip, page.Limit)
}

func (r *IngredientCostRepository) GetByIngredientID(ctx context.Context, ingredientID uuid.UUID) ([]*entity.IngredientCost, error) {
	return r.list(ctx, `
		SELECT `+ingredientCostColumns+` FROM ingredient_costs
		WHERE ingredient_id = $1
		ORDER BY effective_date DESC, created_at DESC
	`, ingredientID)
}

func (r *IngredientCostRepository) GetCurrentCost(ctx context.Context, ingredientID uuid.UUID) (*entity.IngredientCost, error) {
	return r.one(ctx, ingredientID, `
		SELECT `+ingredientCostColumns+` FROM ingredient_costs
		WHERE ingredient_id = $1
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1
	`, ingredientID)
}

func (r *IngredientCostRepository) GetCostAtDate(ctx context.Context, ingredientID uuid.UUID, at time.Time) (*entity.IngredientCost, error) {
	return r.one(ctx, ingredientID, `
		SELECT `+ingredientCostColumns+` FROM ingredient_costs
		WHERE ingredient_id = $1 AND effective_date <= $2
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1
	`, ingredientID, at)
}

func (r *IngredientCostRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM ingredient_costs`)
}

func (r *IngredientCostRepository) Update(ctx context.Context, c *entity.IngredientCost) error {
	c.UpdatedAt = entity.Now()
	row := ingredientCostToRow(c)
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE ingredient_costs
		SET cost_amount = $1, cost_currency = $2, effective_date = $3, updated_at = $4
		WHERE id = $5
	`, row.CostAmount, row.CostCurrency, row.EffectiveDate, row.UpdatedAt, row.ID)
	if err != nil {
		return MapError(err)
	}
	if res.RowsAffected() == 0 {
		return notFound("ingredient cost", c.ID)
	}
	return nil
}

func (r *IngredientCostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "ingredient_costs", id)
}

func (r *IngredientCostRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM ingredient_costs WHERE id = $1)`, id)
}

var _ repository.IngredientCostRepository = (*IngredientCostRepository)(nil)
