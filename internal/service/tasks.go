package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/geocoder89/taskmanager/internal/validation"
)

const taskNotFound = "task not found"

type TaskService struct {
	store repo.Store
	log   *slog.Logger
}

func NewTaskService(store repo.Store, log *slog.Logger) *TaskService {
	return &TaskService{
		store: store,
		log:   log,
	}
}

func loadTask(ctx context.Context, tasks repo.TaskRepository, id int64) (task.Task, error) {
	t, err := tasks.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return task.Task{}, apperr.NotFound(taskNotFound)
	}
	return t, err
}

func (s *TaskService) Create(ctx context.Context, req task.Request) (resp task.Response, err error) {
	ctx, span := startSpan(ctx, "TaskService.Create")
	defer func() { endSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return task.Response{}, err
	}

	var saved task.Task

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		if err := requireUser(ctx, r.Users(), req.UserID); err != nil {
			return err
		}

		saved, err = r.Tasks().Save(ctx, task.FromRequest(req))
		return err
	})
	if err != nil {
		return task.Response{}, storeErr(err, taskNotFound)
	}

	s.log.DebugContext(ctx, "task created", "task_id", saved.ID, "user_id", saved.UserID)

	return task.ToResponse(saved), nil
}

func (s *TaskService) List(ctx context.Context) (out []task.Response, err error) {
	ctx, span := startSpan(ctx, "TaskService.List")
	defer func() { endSpan(span, err) }()

	var tasks []task.Task

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		tasks, err = r.Tasks().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, storeErr(err, taskNotFound)
	}

	return task.ToResponses(tasks), nil
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (resp task.Response, err error) {
	ctx, span := startSpan(ctx, "TaskService.GetByID")
	defer func() { endSpan(span, err) }()

	var t task.Task

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		t, err = loadTask(ctx, r.Tasks(), id)
		return err
	})
	if err != nil {
		return task.Response{}, storeErr(err, taskNotFound)
	}

	return task.ToResponse(t), nil
}

// Update overwrites every editable field and moves the task to req.UserID
// when it names a different owner. A missing new owner leaves the task as it was.
func (s *TaskService) Update(ctx context.Context, id int64, req task.Request) (resp task.Response, err error) {
	ctx, span := startSpan(ctx, "TaskService.Update")
	defer func() { endSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return task.Response{}, err
	}

	var saved task.Task

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		t, err := loadTask(ctx, r.Tasks(), id)
		if err != nil {
			return err
		}

		if req.UserID != t.UserID {
			if err := requireUser(ctx, r.Users(), req.UserID); err != nil {
				return err
			}
			t.UserID = req.UserID
		}

		t.Apply(req)

		saved, err = r.Tasks().Save(ctx, t)
		return err
	})
	if err != nil {
		return task.Response{}, storeErr(err, taskNotFound)
	}

	return task.ToResponse(saved), nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "TaskService.Delete")
	defer func() { endSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		ok, err := r.Tasks().ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(taskNotFound)
		}
		return r.Tasks().DeleteByID(ctx, id)
	})
	if err != nil {
		return storeErr(err, taskNotFound)
	}

	s.log.DebugContext(ctx, "task deleted", "task_id", id)

	return nil
}

// ListByUser returns the tasks owned by userID, ordered by id.
func (s *TaskService) ListByUser(ctx context.Context, userID int64) (out []task.Response, err error) {
	ctx, span := startSpan(ctx, "TaskService.ListByUser")
	defer func() { endSpan(span, err) }()

	var tasks []task.Task

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		if err := requireUser(ctx, r.Users(), userID); err != nil {
			return err
		}
		tasks, err = r.Tasks().FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeErr(err, taskNotFound)
	}

	return task.ToResponses(tasks), nil
}
