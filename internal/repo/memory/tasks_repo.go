package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/repo"
)

type TasksRepo struct {
	st *state
}

func (r *TasksRepo) FindByID(_ context.Context, id int64) (task.Task, error) {
	t, ok := r.st.tasks[id]
	if !ok {
		return task.Task{}, repo.ErrNotFound
	}
	return t, nil
}

func (r *TasksRepo) FindAll(_ context.Context) ([]task.Task, error) {
	return r.collect(func(task.Task) bool { return true }), nil
}

func (r *TasksRepo) FindByUserID(_ context.Context, userID int64) ([]task.Task, error) {
	return r.collect(func(t task.Task) bool { return t.UserID == userID }), nil
}

func (r *TasksRepo) collect(keep func(task.Task) bool) []task.Task {
	out := make([]task.Task, 0)
	for _, t := range r.st.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TasksRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := r.st.tasks[id]
	return ok, nil
}

func (r *TasksRepo) Save(_ context.Context, t task.Task) (task.Task, error) {
	if _, ok := r.st.users[t.UserID]; !ok {
		return task.Task{}, fmt.Errorf("%w: tasks_user_id_fkey", repo.ErrConstraint)
	}

	if t.ID == 0 {
		r.st.lastTaskID++
		t.ID = r.st.lastTaskID
		r.st.tasks[t.ID] = t
		return t, nil
	}

	if _, ok := r.st.tasks[t.ID]; !ok {
		return task.Task{}, repo.ErrNotFound
	}

	r.st.tasks[t.ID] = t
	return t, nil
}

func (r *TasksRepo) DeleteByID(_ context.Context, id int64) error {
	if _, ok := r.st.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.st.tasks, id)
	return nil
}
