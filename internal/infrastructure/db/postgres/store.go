package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/user-admin/internal/core/ports"
)

var (
	_ ports.UserStore      = (*Store)(nil)
	_ ports.Tx             = (*tx)(nil)
	_ ports.UserRepository = (*userRepository)(nil)
	_ ports.RoleRepository = (*roleRepository)(nil)
)

// Store implements ports.UserStore on top of a sqlx pool.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Begin opens a transaction whose repositories share it.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	t, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &tx{tx: t}, nil
}

func (s *Store) Users() ports.UserRepository { return &userRepository{q: s.db} }
func (s *Store) Roles() ports.RoleRepository { return &roleRepository{q: s.db} }

type tx struct {
	tx *sqlx.Tx
}

func (t *tx) Users() ports.UserRepository { return &userRepository{q: t.tx} }
func (t *tx) Roles() ports.RoleRepository { return &roleRepository{q: t.tx} }

func (t *tx) Commit() error {
	return t.tx.Commit()
}

// Rollback is a no-op once the transaction has been committed.
func (t *tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
