package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func count(ctx context.Context, q querier, sql string, args ...any) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func exists(ctx context.Context, q querier, sql string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, MapError(err)
	}
	return ok, nil
}

// deleteByID deletes one row from table. table is always a constant.
func deleteByID(ctx context.Context, q querier, table string, id uuid.UUID) error {
	res, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if res.RowsAffected() == 0 {
		return notFound(strings.TrimSuffix(table, "s"), id)
	}
	return nil
}

// likePattern escapes LIKE wildcards in a user search term.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}
