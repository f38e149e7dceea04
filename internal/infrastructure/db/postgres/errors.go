package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/user-admin/internal/core/domain"
)

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	"users_username_key":  domain.ErrUsernameTaken,
	"users_email_key":     domain.ErrEmailTaken,
	"users_api_token_key": domain.ErrAPITokenTaken,
}

// mapError translates driver errors into domain errors. Unknown errors are
// returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	}
	return err
}
