package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

const orderColumns = `id, customer_name, customer_email, status, notes, currency, created_by_user_id, created_at, updated_at`

// OrderRepository persists orders together with their items.
type OrderRepository struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{pool: pool, logger: logger}
}

func (r *OrderRepository) loadItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]orderItemRow, error) {
	out := make(map[uuid.UUID][]orderItemRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price_amount, unit_price_currency, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, created_at, id
	`, idStrings(ids))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it orderItemRow
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitPriceAmount, &it.UnitPriceCurrency, &it.CreatedAt); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, MapError(rows.Err())
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Order, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	var heads []orderRow
	for rows.Next() {
		var h orderRow
		if err := rows.Scan(&h.ID, &h.CustomerName, &h.CustomerEmail, &h.Status, &h.Notes,
			&h.Currency, &h.CreatedByUserID, &h.CreatedAt, &h.UpdatedAt); err != nil {
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
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Order, 0, len(heads))
	for _, h := range heads {
		o, err := h.toEntity(items[h.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) writeItems(ctx context.Context, q querier, items []orderItemRow) error {
	for _, it := range items {
		if _, err := q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_amount, unit_price_currency, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPriceAmount, it.UnitPriceCurrency, it.CreatedAt); err != nil {
			return MapError(err)
		}
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	head, items := orderToRows(o)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		if _, err := q.Exec(ctx, `
			INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, head.ID, head.CustomerName, head.CustomerEmail, head.Status, head.Notes, head.Currency,
			head.CreatedByUserID, head.CreatedAt, head.UpdatedAt); err != nil {
			return MapError(err)
		}
		return r.writeItems(ctx, q, items)
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	list, err := r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound("order", id)
	}
	return list[0], nil
}

// filterClause builds the WHERE clause for f, numbering placeholders from 1.
func filterClause(f repository.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.CustomerEmail != "" {
		add("lower(customer_email) = lower(?)", f.CustomerEmail)
	}
	if f.CreatedBy != uuid.Nil {
		add("created_by_user_id = ?", f.CreatedBy)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *OrderRepository) Find(ctx context.Context, f repository.OrderFilter, page repository.Page) ([]*entity.Order, error) {
	page = page.Normalize()
	where, args := filterClause(f)
	n := len(args)
	args = append(args, page.Skip, page.Limit)
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders`+where+
		` ORDER BY created_at DESC, id OFFSET $`+strconv.Itoa(n+1)+` LIMIT $`+strconv.Itoa(n+2), args...)
}

func (r *OrderRepository) CountFiltered(ctx context.Context, f repository.OrderFilter) (int64, error) {
	where, args := filterClause(f)
	return count(ctx, conn(ctx, r.pool), `SELECT count(*) FROM orders`+where, args...)
}

func (r *OrderRepository) GetAll(ctx context.Context, page repository.Page) ([]*entity.Order, error) {
	return r.Find(ctx, repository.OrderFilter{}, page)
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

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.CountFiltered(ctx, repository.OrderFilter{})
}

// Update rewrites the order row and replaces all of its items.
func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	o.UpdatedAt = entity.Now()
	head, items := orderToRows(o)
	return withinTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		res, err := q.Exec(ctx, `
			UPDATE orders
			SET customer_name = $1, customer_email = $2, status = $3, notes = $4, currency = $5, updated_at = $6
			WHERE id = $7
		`, head.CustomerName, head.CustomerEmail, head.Status, head.Notes, head.Currency, head.UpdatedAt, head.ID)
		if err != nil {
			return MapError(err)
		}
		if res.RowsAffected() == 0 {
			return notFound("order", head.ID)
		}
		if _, err := q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, head.ID); err != nil {
			return MapError(err)
		}
		return r.writeItems(ctx, q, items)
	})
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, conn(ctx, r.pool), "orders", id)
}

func (r *OrderRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.pool), `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id)
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
