package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fitstack/fitstack/internal/domain/role"
)

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// surfaceStrings converts surfaces to plain strings for TEXT[] columns.
// nil slices become empty arrays to avoid SQL NULL.
func surfaceStrings(surfaces []role.Surface) []string {
	out := make([]string, len(surfaces))
	for i, s := range surfaces {
		out[i] = string(s)
	}
	return out
}

// toSurfaces converts TEXT[] values back to typed surfaces.
func toSurfaces(values []string) []role.Surface {
	out := make([]role.Surface, len(values))
	for i, v := range values {
		out[i] = role.Surface(v)
	}
	return out
}

// textArray returns items unchanged if non-nil, or an empty slice if nil,
// so TEXT[] columns never receive SQL NULL.
func textArray(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
