package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/gin-gonic/gin"
)

type TaskService interface {
	Create(ctx context.Context, req task.Request) (task.Response, error)
	List(ctx context.Context) ([]task.Response, error)
	GetByID(ctx context.Context, id int64) (task.Response, error)
	Update(ctx context.Context, id int64, req task.Request) (task.Response, error)
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]task.Response, error)
}

type TasksHandler struct {
	tasks TaskService
}

func NewTasksHandler(tasks TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	var req task.Request

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.tasks.Create(cctx, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *TasksHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	tasks, err := h.tasks.List(cctx)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, tasks)
}

func (h *TasksHandler) GetByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.tasks.GetByID(cctx, id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req task.Request

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.tasks.Update(cctx, id, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.tasks.Delete(cctx, id); err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.Status(http.StatusOK)
}

func (h *TasksHandler) ListByUser(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	tasks, err := h.tasks.ListByUser(cctx, userID)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, tasks)
}
