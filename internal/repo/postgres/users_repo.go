package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/jackc/pgx/v5"
)

type UsersRepo struct {
	q       querier
	observe observeFunc
}

const userColumns = `id, full_name, email, password_hash, created_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	return u, err
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (u user.User, err error) {
	err = r.observe("users.find_by_id", func() error {
		u, err = scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, repo.ErrNotFound
	}

	return u, err
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.find_by_email", func() error {
		u, err = scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, repo.ErrNotFound
	}

	return u, err
}

func (r *UsersRepo) FindAll(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.observe("users.find_all", func() error {
		rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) ExistsByID(ctx context.Context, id int64) (exists bool, err error) {
	err = r.observe("users.exists_by_id", func() error {
		return r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) Save(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == 0 {
		err := r.observe("users.insert", func() error {
			return r.q.QueryRow(ctx,
				`INSERT INTO users (full_name, email, password_hash)
				VALUES ($1, $2, $3)
				RETURNING id, created_at`,
				u.FullName, u.Email, u.PasswordHash,
			).Scan(&u.ID, &u.CreatedAt)
		})

		if err != nil {
			return user.User{}, translate(err)
		}

		return u, nil
	}

	err := r.observe("users.update", func() error {
		// created_at is never part of the update
		return r.q.QueryRow(ctx,
			`UPDATE users
				SET full_name = $2,
					email = $3,
					password_hash = $4
			WHERE id = $1
			RETURNING created_at`,
			u.ID, u.FullName, u.Email, u.PasswordHash,
		).Scan(&u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, repo.ErrNotFound
		}
		return user.User{}, translate(err)
	}

	return u, nil
}

// DeleteByID relies on ON DELETE CASCADE to remove the user's tasks.
func (r *UsersRepo) DeleteByID(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return translate(err)
	}

	if affected == 0 {
		return repo.ErrNotFound
	}

	return nil
}
