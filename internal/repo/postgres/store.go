package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type observeFunc func(op string, fn func() error) error

type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{
		pool: pool,
		prom: prom,
	}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = fn(&repos{
		users: &UsersRepo{q: tx, observe: s.observe},
		tasks: &TasksRepo{q: tx, observe: s.observe},
	})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return translate(err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type repos struct {
	users *UsersRepo
	tasks *TasksRepo
}

func (r *repos) Users() repo.UserRepository { return r.users }
func (r *repos) Tasks() repo.TaskRepository { return r.tasks }

// translate maps integrity violations onto the repo sentinels and leaves
// everything else untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		if strings.Contains(pgErr.ConstraintName, "email") {
			return fmt.Errorf("%w: %s", repo.ErrDuplicateEmail, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w: %s", repo.ErrConstraint, pgErr.ConstraintName)
	case "23503", "23502", "23514":
		return fmt.Errorf("%w: %s", repo.ErrConstraint, pgErr.ConstraintName)
	default:
		return err
	}
}
