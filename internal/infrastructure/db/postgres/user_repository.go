package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/99minutos/user-admin/internal/core/domain"
)

const selectUsers = `
SELECT u.id, u.username, u.email, u.phone, u.password, u.api_token, u.is_active,
       u.created_at, u.updated_at,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')::text AS roles
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id`

type userRow struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
	Password  string    `db:"password"`
	APIToken  string    `db:"api_token"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	// Roles arrives as the text form of a Postgres array, which quotes names
	// containing commas or braces.
	Roles pq.StringArray `db:"roles"`
}

func (r userRow) toDomain() *domain.User {
	roles := []string(r.Roles)
	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		Phone:        r.Phone,
		PasswordHash: r.Password,
		APIToken:     r.APIToken,
		IsActive:     r.IsActive,
		Roles:        roles,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// userRepository runs against either the pool or a transaction.
type userRepository struct {
	q sqlx.ExtContext
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	out := *user
	out.Roles = nil

	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, phone, password, api_token, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, user.Username, user.Email, user.Phone, user.PasswordHash, user.APIToken, user.IsActive).
		Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, phone = $3, password = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`, user.Username, user.Email, user.Phone, user.PasswordHash, user.IsActive, user.ID)
	return affected(res, err)
}

func (r *userRepository) UpdateAPIToken(ctx context.Context, userID int64, token string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET api_token = $1, updated_at = NOW() WHERE id = $2`, token, userID)
	return affected(res, err)
}

// Delete removes the user; role assignments go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return affected(res, err)
}

func (r *userRepository) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.findOne(ctx, "u.id = $1", userID)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "u.username = $1", username)
}

func (r *userRepository) FindByAPIToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, "u.api_token = $1", token)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, selectUsers+" GROUP BY u.id ORDER BY u.id"); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, selectUsers+" WHERE "+where+" GROUP BY u.id", arg); err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
