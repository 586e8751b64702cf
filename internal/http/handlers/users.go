package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 3 * time.Second

type UserService interface {
	Create(ctx context.Context, req user.CreateRequest) (user.Response, error)
	List(ctx context.Context) ([]user.Response, error)
	GetByID(ctx context.Context, id int64) (user.Response, error)
	Update(ctx context.Context, id int64, req user.CreateRequest) (user.Response, error)
	Delete(ctx context.Context, id int64) error
	Login(ctx context.Context, email, rawPassword string) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Response, error)
}

type UsersHandler struct {
	users UserService
}

func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.users.Create(cctx, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.users.GetByID(cctx, id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.users.Update(cctx, id, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.Status(http.StatusOK)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Login(cctx, req.Email, req.Password)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user.ToResponse(u))
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.users.UpdateProfile(cctx, id, req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
