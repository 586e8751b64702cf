package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/jackc/pgx/v5"
)

type TasksRepo struct {
	q       querier
	observe observeFunc
}

const taskColumns = `id, title, COALESCE(description, ''), status, due_date, user_id`

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t      task.Task
		status string
		due    *time.Time
	)

	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &due, &t.UserID)
	if err != nil {
		return task.Task{}, err
	}

	t.Status = task.Status(status)

	if due != nil {
		d := task.DateOf(*due)
		t.DueDate = &d
	}

	return t, nil
}

func dueDateArg(d *task.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func (r *TasksRepo) FindByID(ctx context.Context, id int64) (t task.Task, err error) {
	err = r.observe("tasks.find_by_id", func() error {
		t, err = scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, repo.ErrNotFound
	}

	return t, err
}

func (r *TasksRepo) FindAll(ctx context.Context) ([]task.Task, error) {
	return r.list(ctx, "tasks.find_all", `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
}

func (r *TasksRepo) FindByUserID(ctx context.Context, userID int64) ([]task.Task, error) {
	return r.list(ctx, "tasks.find_by_user_id",
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id ASC`, userID)
}

func (r *TasksRepo) list(ctx context.Context, op, query string, args ...any) ([]task.Task, error) {
	out := make([]task.Task, 0)

	err := r.observe(op, func() error {
		rows, err := r.q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) ExistsByID(ctx context.Context, id int64) (exists bool, err error) {
	err = r.observe("tasks.exists_by_id", func() error {
		return r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists)
	})

	return exists, err
}

func (r *TasksRepo) Save(ctx context.Context, t task.Task) (task.Task, error) {
	var (
		saved task.Task
		err   error
	)

	if t.ID == 0 {
		err = r.observe("tasks.insert", func() error {
			saved, err = scanTask(r.q.QueryRow(ctx,
				`INSERT INTO tasks (title, description, status, due_date, user_id)
				VALUES ($1, NULLIF($2, ''), $3, $4, $5)
				RETURNING `+taskColumns,
				t.Title, t.Description, string(t.Status), dueDateArg(t.DueDate), t.UserID,
			))
			return err
		})
	} else {
		err = r.observe("tasks.update", func() error {
			saved, err = scanTask(r.q.QueryRow(ctx,
				`UPDATE tasks
					SET title = $2,
						description = NULLIF($3, ''),
						status = $4,
						due_date = $5,
						user_id = $6
				WHERE id = $1
				RETURNING `+taskColumns,
				t.ID, t.Title, t.Description, string(t.Status), dueDateArg(t.DueDate), t.UserID,
			))
			return err
		})
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, repo.ErrNotFound
		}
		return task.Task{}, translate(err)
	}

	return saved, nil
}

func (r *TasksRepo) DeleteByID(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("tasks.delete", func() error {
		tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return translate(err)
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return repo.ErrNotFound
	}

	return nil
}
