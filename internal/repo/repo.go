// Package repo defines the persistence contracts shared by the postgres and
// in-memory stores.
package repo

import (
	"context"
	"errors"

	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/domain/user"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when the store's unique email constraint rejects a write.
	ErrDuplicateEmail = errors.New("email already used")
	// ErrConstraint wraps any other integrity violation raised by the store.
	ErrConstraint = errors.New("constraint violation")
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	FindAll(ctx context.Context) ([]user.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// Save inserts when u.ID is zero and updates otherwise. CreatedAt is set on insert only.
	Save(ctx context.Context, u user.User) (user.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

type TaskRepository interface {
	FindByID(ctx context.Context, id int64) (task.Task, error)
	FindAll(ctx context.Context) ([]task.Task, error)
	FindByUserID(ctx context.Context, userID int64) ([]task.Task, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, t task.Task) (task.Task, error)
	DeleteByID(ctx context.Context, id int64) error
}

type Repos interface {
	Users() UserRepository
	Tasks() TaskRepository
}

// Store runs fn as one unit of work: its writes are committed together when
// fn returns nil and discarded otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
