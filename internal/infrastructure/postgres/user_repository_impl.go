package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

const userColumns = `id, email, username, hashed_password, role, is_active, full_name, preferred_language, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var r userRow
	if err := row.Scan(&r.ID, &r.Email, &r.Username, &r.HashedPassword, &r.Role, &r.IsActive,
		&r.FullName, &r.PreferredLanguage, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r.toEntity()
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("user", arg)
	}
	if err != nil {
		return nil, MapError(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := userToRow(u)
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, row.ID, row.Email, row.Username, row.HashedPassword, row.Role, row.IsActive,
		row.FullName, row.PreferredLanguage, row.CreatedAt, row.UpdatedAt)
	return MapError(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *UserRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.User, error) {
	page = page.Normalize()
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`, page.Skip, page.Limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, MapError(rows.Err())
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM users`)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = entity.Now()
	row := userToRow(u)
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, hashed_password = $3, role = $4, is_active = $5,
		    full_name = $6, preferred_language = $7, updated_at = $8
		WHERE id = $9
	`, row.Email, row.Username, row.HashedPassword, row.Role, row.IsActive,
		row.FullName, row.PreferredLanguage, row.UpdatedAt, row.ID)
	if err != nil {
		return MapError(err)
	}
	if res.RowsAffected() == 0 {
		return notFound("user", u.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "users", id)
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

var _ repository.UserRepository = (*UserRepository)(nil)
