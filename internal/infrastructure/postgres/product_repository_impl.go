package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

const productColumns = `id, name, image_url, fixed_costs_amount, fixed_costs_currency,
	variable_costs_percentage, profit_margin_percentage, created_at, updated_at`

// ProductRepository persists products together with their recipe lines.
type ProductRepository struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{pool: pool, logger: logger}
}

func (r *ProductRepository) loadLines(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]productRecipeRow, error) {
	out := make(map[uuid.UUID][]productRecipeRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT product_id, recipe_id, quantity, position
		FROM product_recipes
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, position
	`, idStrings(ids))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var l productRecipeRow
		if err := rows.Scan(&l.ProductID, &l.RecipeID, &l.Quantity, &l.Position); err != nil {
			return nil, err
		}
		out[l.ProductID] = append(out[l.ProductID], l)
	}
	return out, MapError(rows.Err())
}

func (r *ProductRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Product, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	var heads []productRow
	for rows.Next() {
		var h productRow
		if err := rows.Scan(&h.ID, &h.Name, &h.ImageURL, &h.FixedCostsAmount, &h.FixedCostsCurrency,
			&h.VariableCostsPercentage, &h.ProfitMarginPercentage, &h.CreatedAt, &h.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		heads = append(heads, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	ids := make([]uuid.UUID, len(heads))
	for i, h := range heads {
		ids[i] = h.ID
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(heads))
	for _, h := range heads {
		p, err := h.toEntity(lines[h.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) one(ctx context.Context, what any, sql string, args ...any) (*entity.Product, error) {
	list, err := r.list(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound("product", what)
	}
	return list[0], nil
}

func (r *ProductRepository) writeLines(ctx context.Context, q querier, lines []productRecipeRow) error {
	for _, l := range lines {
		if _, err := q.Exec(ctx, `
			INSERT INTO product_recipes (product_id, recipe_id, quantity, position)
			VALUES ($1, $2, $3, $4)
		`, l.ProductID, l.RecipeID, l.Quantity, l.Position); err != nil {
			return MapError(err)
		}
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	head, lines := productToRows(p)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		if _, err := q.Exec(ctx, `
			INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, head.ID, head.Name, head.ImageURL, head.FixedCostsAmount, head.FixedCostsCurrency,
			head.VariableCostsPercentage, head.ProfitMarginPercentage, head.CreatedAt, head.UpdatedAt); err != nil {
			return MapError(err)
		}
		return r.writeLines(ctx, q, lines)
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.one(ctx, id, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.one(ctx, name, `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

func (r *ProductRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.Product, error) {
	page = page.Normalize()
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
}

func (r *ProductRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Product, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1
		ORDER BY name, id OFFSET $2 LIMIT $3
	`, likePattern(q), page.Skip, page.Limit)
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM products`)
}

// Update rewrites the product row and replaces all of its recipe lines.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = entity.Now()
	head, lines := productToRows(p)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		res, err := q.Exec(ctx, `
			UPDATE products
			SET name = $1, image_url = $2, fixed_costs_amount = $3, fixed_costs_currency = $4,
			    variable_costs_percentage = $5, profit_margin_percentage = $6, updated_at = $7
			WHERE id = $8
		`, head.Name, head.ImageURL, head.FixedCostsAmount, head.FixedCostsCurrency,
			head.VariableCostsPercentage, head.ProfitMarginPercentage, head.UpdatedAt, head.ID)
		if err != nil {
			return MapError(err)
		}
		if res.RowsAffected() == 0 {
			return notFound("product", head.ID)
		}
		if _, err := q.Exec(ctx, `DELETE FROM product_recipes WHERE product_id = $1`, head.ID); err != nil {
			return MapError(err)
		}
		return r.writeLines(ctx, q, lines)
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "products", id)
}

func (r *ProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id)
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
