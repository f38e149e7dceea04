package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/user-admin/internal/core/domain"
)

type roleRepository struct {
	q sqlx.ExtContext
}

// Assign adds the named roles to the user. Existing assignments are kept and
// re-assigning a role is a no-op.
func (r *roleRepository) Assign(ctx context.Context, userID int64, names []string) error {
	ids, err := r.resolve(ctx, names)
	if err != nil {
		return err
	}
	return r.insert(ctx, userID, ids)
}

// Sync replaces the user's role set with exactly the named roles.
func (r *roleRepository) Sync(ctx context.Context, userID int64, names []string) error {
	ids, err := r.resolve(ctx, names)
	if err != nil {
		return err
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return r.insert(ctx, userID, ids)
}

func (r *roleRepository) NamesForUser(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := sqlx.SelectContext(ctx, r.q, &names, `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *roleRepository) ListNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := sqlx.SelectContext(ctx, r.q, &names, `SELECT name FROM roles ORDER BY name`); err != nil {
		return nil, err
	}
	return names, nil
}

// resolve maps role names to ids. Any unknown name fails the whole call with
// domain.ErrRoleNotFound.
func (r *roleRepository) resolve(ctx context.Context, names []string) ([]int64, error) {
	names = domain.NormalizeRoles(names)
	if len(names) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM roles WHERE name IN (?)`, names)
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.q, &ids, r.q.Rebind(query), args...); err != nil {
		return nil, err
	}
	if len(ids) != len(names) {
		return nil, domain.ErrRoleNotFound
	}
	return ids, nil
}

func (r *roleRepository) insert(ctx context.Context, userID int64, roleIDs []int64) error {
	for _, id := range roleIDs {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, id,
		); err != nil {
			return err
		}
	}
	return nil
}
