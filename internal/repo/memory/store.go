package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/geocoder89/taskmanager/internal/repo"
)

// Store keeps users and tasks in maps. Each unit of work runs against a copy
// of the data which replaces the live copy only when the work succeeds.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

type state struct {
	users      map[int64]user.User
	tasks      map[int64]task.Task
	lastUserID int64
	lastTaskID int64
}

func NewStore() *Store {
	return &Store{
		st: &state{
			users: make(map[int64]user.User),
			tasks: make(map[int64]task.Task),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *state) clone() *state {
	c := &state{
		users:      make(map[int64]user.User, len(s.users)),
		tasks:      make(map[int64]task.Task, len(s.tasks)),
		lastUserID: s.lastUserID,
		lastTaskID: s.lastTaskID,
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	for id, t := range s.tasks {
		if t.DueDate != nil {
			d := *t.DueDate
			t.DueDate = &d
		}
		c.tasks[id] = t
	}
	return c
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()

	err := fn(&repos{
		users: &UsersRepo{st: work, now: s.now},
		tasks: &TasksRepo{st: work},
	})
	if err != nil {
		return err
	}

	s.st = work
	return nil
}

// Ping satisfies the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type repos struct {
	users *UsersRepo
	tasks *TasksRepo
}

func (r *repos) Users() repo.UserRepository { return r.users }
func (r *repos) Tasks() repo.TaskRepository { return r.tasks }
