package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/geocoder89/taskmanager/internal/repo"
)

type UsersRepo struct {
	st  *state
	now func() time.Time
}

func (r *UsersRepo) FindByID(_ context.Context, id int64) (user.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return user.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, repo.ErrNotFound
}

func (r *UsersRepo) FindAll(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UsersRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := r.st.users[id]
	return ok, nil
}

func (r *UsersRepo) Save(_ context.Context, u user.User) (user.User, error) {
	// mirrors the users_email_key unique constraint
	for id, other := range r.st.users {
		if id != u.ID && other.Email == u.Email {
			return user.User{}, repo.ErrDuplicateEmail
		}
	}

	if u.ID == 0 {
		r.st.lastUserID++
		u.ID = r.st.lastUserID
		u.CreatedAt = r.now()
		r.st.users[u.ID] = u
		return u, nil
	}

	existing, ok := r.st.users[u.ID]
	if !ok {
		return user.User{}, repo.ErrNotFound
	}

	u.CreatedAt = existing.CreatedAt
	r.st.users[u.ID] = u
	return u, nil
}

// DeleteByID removes the user and every task it owns.
func (r *UsersRepo) DeleteByID(_ context.Context, id int64) error {
	if _, ok := r.st.users[id]; !ok {
		return repo.ErrNotFound
	}

	delete(r.st.users, id)

	for taskID, t := range r.st.tasks {
		if t.UserID == id {
			delete(r.st.tasks, taskID)
		}
	}
	return nil
}
