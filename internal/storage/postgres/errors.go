package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bmaxtar/storefront/internal/domain"
)

// Коды ошибок PostgreSQL, которые транслируются в доменные.
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

// translateError подменяет известные ошибки драйвера доменными,
// чтобы вызывающий код не зависел от pgconn.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return domain.ErrDuplicate
		case pgCodeForeignKeyViolation:
			return domain.ErrForeignKeyViolation
		}
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCodeForeignKeyViolation
	}
	return false
}
