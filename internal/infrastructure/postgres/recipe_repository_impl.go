package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

const recipeColumns = `id, name, instructions, created_at, updated_at`

// RecipeRepository persists recipes together with their ingredient lines.
type RecipeRepository struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewRecipeRepository(pool *pgxpool.Pool, logger *logrus.Logger) *RecipeRepository {
	return &RecipeRepository{pool: pool, logger: logger}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *RecipeRepository) loadLines(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]recipeIngredientRow, error) {
	out := make(map[uuid.UUID][]recipeIngredientRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT recipe_id, ingredient_id, quantity, position
		FROM recipe_ingredients
		WHERE recipe_id = ANY($1::uuid[])
		ORDER BY recipe_id, position
	`, idStrings(ids))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var l recipeIngredientRow
		if err := rows.Scan(&l.RecipeID, &l.IngredientID, &l.Quantity, &l.Position); err != nil {
			return nil, err
		}
		out[l.RecipeID] = append(out[l.RecipeID], l)
	}
	return out, MapError(rows.Err())
}

func (r *RecipeRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Recipe, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	var heads []recipeRow
	for rows.Next() {
		var h recipeRow
		if err := rows.Scan(&h.ID, &h.Name, &h.Instructions, &h.CreatedAt, &h.UpdatedAt); err != nil {
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
	out := make([]*entity.Recipe, 0, len(heads))
	for _, h := range heads {
		out = append(out, h.toEntity(lines[h.ID]))
	}
	return out, nil
}

func (r *RecipeRepository) one(ctx context.Context, what any, sql string, args ...any) (*entity.Recipe, error) {
	list, err := r.list(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound("recipe", what)
	}
	return list[0], nil
}

func (r *RecipeRepository) writeLines(ctx context.Context, q querier, lines []recipeIngredientRow) error {
	for _, l := range lines {
		if _, err := q.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, position)
			VALUES ($1, $2, $3, $4)
		`, l.RecipeID, l.IngredientID, l.Quantity, l.Position); err != nil {
			return MapError(err)
		}
	}
	return nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	head, lines := recipeToRows(rec)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		if _, err := q.Exec(ctx, `
			INSERT INTO recipes (`+recipeColumns+`) VALUES ($1, $2, $3, $4, $5)
		`, head.ID, head.Name, head.Instructions, head.CreatedAt, head.UpdatedAt); err != nil {
			return MapError(err)
		}
		return r.writeLines(ctx, q, lines)
	})
}

func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Recipe, error) {
	return r.one(ctx, id, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

func (r *RecipeRepository) GetByName(ctx context.Context, name string) (*entity.Recipe, error) {
	return r.one(ctx, name, `SELECT `+recipeColumns+` FROM recipes WHERE name = $1`, name)
}

func (r *RecipeRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.Recipe, error) {
	page = page.Normalize()
	return r.list(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY name, id OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
}

func (r *RecipeRepository) SearchByName(ctx context.Context, q string, page repository.Page) ([]*entity.Recipe, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE name ILIKE $1
		ORDER BY name, id OFFSET $2 LIMIT $3
	`, likePattern(q), page.Skip, page.Limit)
}

func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM recipes`)
}

// Update rewrites the recipe row and replaces all of its ingredient lines.
func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe) error {
	rec.UpdatedAt = entity.Now()
	head, lines := recipeToRows(rec)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		res, err := q.Exec(ctx, `
			UPDATE recipes SET name = $1, instructions = $2, updated_at = $3 WHERE id = $4
		`, head.Name, head.Instructions, head.UpdatedAt, head.ID)
		if err != nil {
			return MapError(err)
		}
		if res.RowsAffected() == 0 {
			return notFound("recipe", head.ID)
		}
		if _, err := q.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, head.ID); err != nil {
			return MapError(err)
		}
		return r.writeLines(ctx, q, lines)
	})
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "recipes", id)
}

func (r *RecipeRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id)
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
