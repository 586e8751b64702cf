package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/geocoder89/taskmanager/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of handlers.UserService and handlers.TaskService

type fakeUsers struct {
	createFn        func(ctx context.Context, req user.CreateRequest) (user.Response, error)
	listFn          func(ctx context.Context) ([]user.Response, error)
	getFn           func(ctx context.Context, id int64) (user.Response, error)
	updateFn        func(ctx context.Context, id int64, req user.CreateRequest) (user.Response, error)
	deleteFn        func(ctx context.Context, id int64) error
	loginFn         func(ctx context.Context, email, rawPassword string) (user.User, error)
	updateProfileFn func(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Response, error)
}

func (f *fakeUsers) Create(ctx context.Context, req user.CreateRequest) (user.Response, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return user.Response{}, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]user.Response, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []user.Response{}, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (user.Response, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.Response{}, nil
}

func (f *fakeUsers) Update(ctx context.Context, id int64, req user.CreateRequest) (user.Response, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return user.Response{}, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUsers) Login(ctx context.Context, email, rawPassword string) (user.User, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, rawPassword)
	}
	return user.User{}, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Response, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, req)
	}
	return user.Response{}, nil
}

type fakeTasks struct {
	createFn     func(ctx context.Context, req task.Request) (task.Response, error)
	listFn       func(ctx context.Context) ([]task.Response, error)
	getFn        func(ctx context.Context, id int64) (task.Response, error)
	updateFn     func(ctx context.Context, id int64, req task.Request) (task.Response, error)
	deleteFn     func(ctx context.Context, id int64) error
	listByUserFn func(ctx context.Context, userID int64) ([]task.Response, error)
}

func (f *fakeTasks) Create(ctx context.Context, req task.Request) (task.Response, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return task.Response{}, nil
}

func (f *fakeTasks) List(ctx context.Context) ([]task.Response, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []task.Response{}, nil
}

func (f *fakeTasks) GetByID(ctx context.Context, id int64) (task.Response, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return task.Response{}, nil
}

func (f *fakeTasks) Update(ctx context.Context, id int64, req task.Request) (task.Response, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return task.Response{}, nil
}

func (f *fakeTasks) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTasks) ListByUser(ctx context.Context, userID int64) ([]task.Response, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(ctx, userID)
	}
	return []task.Response{}, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"fullName":"Ayşe","email":"ayse@x.io","password":"secret1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "email_in_use",
			body:       `{"fullName":"Ayşe","email":"ayse@x.io","password":"secret1"}`,
			serviceErr: apperr.EmailInUse(),
			wantStatus: http.StatusConflict,
			wantCode:   "1006",
		},
		{
			name:       "unexpected_failure_hides_cause",
			body:       `{"fullName":"Ayşe","email":"ayse@x.io","password":"secret1"}`,
			serviceErr: errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsers{
				createFn: func(ctx context.Context, req user.CreateRequest) (user.Response, error) {
					if tt.serviceErr != nil {
						return user.Response{}, tt.serviceErr
					}
					return user.Response{ID: 1, FullName: req.FullName, Email: req.Email}, nil
				},
			}

			h := handlers.NewUsersHandler(fake)
			r := setupRouter(http.MethodPost, "/api/users/save", h.Create)

			w := doJSON(r, http.MethodPost, "/api/users/save", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantCode == "" {
				if bytes.Contains(w.Body.Bytes(), []byte("password")) {
					t.Fatalf("password leaked into response: %s", w.Body.String())
				}
				return
			}

			resp := decodeEnvelope(t, w)
			if resp.Exception.Code != tt.wantCode {
				t.Fatalf("got code %s, want %s", resp.Exception.Code, tt.wantCode)
			}
			if bytes.Contains(w.Body.Bytes(), []byte("10.0.0.1")) {
				t.Fatalf("cause leaked into response: %s", w.Body.String())
			}
		})
	}
}

func TestCreateUserHandler_ValidationMessageIsFieldMap(t *testing.T) {
	fake := &fakeUsers{
		createFn: func(ctx context.Context, req user.CreateRequest) (user.Response, error) {
			return user.Response{}, apperr.Validation(map[string]string{
				"email":    "must be a valid email address",
				"password": "must be at least 6 characters",
			})
		},
	}

	h := handlers.NewUsersHandler(fake)
	r := setupRouter(http.MethodPost, "/api/users/save", h.Create)

	w := doJSON(r, http.MethodPost, "/api/users/save", `{"fullName":"A","email":"bad","password":"1"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	var resp struct {
		Status    int `json:"status"`
		Exception struct {
			Code    string            `json:"code"`
			Message map[string]string `json:"message"`
		} `json:"exception"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}

	if resp.Exception.Code != "1004" || len(resp.Exception.Message) != 2 {
		t.Fatalf("unexpected validation envelope: %s", w.Body.String())
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		loginErr   error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"wrong_password", apperr.WrongPassword(), http.StatusUnauthorized},
		{"unknown_email", apperr.NotFound("email not found"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUsers{
				loginFn: func(ctx context.Context, email, rawPassword string) (user.User, error) {
					if tt.loginErr != nil {
						return user.User{}, tt.loginErr
					}
					return user.User{ID: 3, FullName: "Ayşe", Email: email, PasswordHash: "$2a$10$hash"}, nil
				},
			}

			h := handlers.NewUsersHandler(fake)
			r := setupRouter(http.MethodPost, "/api/users/login", h.Login)

			w := doJSON(r, http.MethodPost, "/api/users/login", `{"email":"ayse@x.io","password":"secret1"}`)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.loginErr == nil {
				var got user.Response
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if got.ID != 3 || bytes.Contains(w.Body.Bytes(), []byte("hash")) {
					t.Fatalf("unexpected login body %s", w.Body.String())
				}
			}
		})
	}
}

func TestGetUserHandler_InvalidID(t *testing.T) {
	called := false
	fake := &fakeUsers{
		getFn: func(ctx context.Context, id int64) (user.Response, error) {
			called = true
			return user.Response{}, nil
		},
	}

	h := handlers.NewUsersHandler(fake)
	r := setupRouter(http.MethodGet, "/api/users/list/:id", h.GetByID)

	w := doJSON(r, http.MethodGet, "/api/users/list/abc", "")

	if w.Code != http.StatusBadRequest || called {
		t.Fatalf("got status %d called=%v, want 400 without a service call", w.Code, called)
	}

	if resp := decodeEnvelope(t, w); resp.Exception.Code != "1007" {
		t.Fatalf("unexpected code %s", resp.Exception.Code)
	}
}

func TestUpdateProfileHandler_PassesRequest(t *testing.T) {
	var gotID int64
	var gotReq user.UpdateProfileRequest

	fake := &fakeUsers{
		updateProfileFn: func(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.Response, error) {
			gotID, gotReq = id, req
			return user.Response{}, apperr.RequiredField("current password is required")
		},
	}

	h := handlers.NewUsersHandler(fake)
	r := setupRouter(http.MethodPut, "/api/users/profile/:id", h.UpdateProfile)

	w := doJSON(r, http.MethodPut, "/api/users/profile/5", `{"fullName":"A","email":"a@x.io","newPassword":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	if gotID != 5 || gotReq.NewPassword != "x" {
		t.Fatalf("unexpected args id=%d req=%+v", gotID, gotReq)
	}
	if resp := decodeEnvelope(t, w); resp.Exception.Code != "1010" {
		t.Fatalf("unexpected code %s", resp.Exception.Code)
	}
}

func TestDeleteUserHandler(t *testing.T) {
	fake := &fakeUsers{
		deleteFn: func(ctx context.Context, id int64) error {
			if id == 1 {
				return nil
			}
			return apperr.NotFound("user not found")
		},
	}

	h := handlers.NewUsersHandler(fake)
	r := setupRouter(http.MethodDelete, "/api/users/delete/:id", h.Delete)

	if w := doJSON(r, http.MethodDelete, "/api/users/delete/1", ""); w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("got status %d body=%q, want empty 200", w.Code, w.Body.String())
	}

	if w := doJSON(r, http.MethodDelete, "/api/users/delete/2", ""); w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestGetTaskHandler(t *testing.T) {
	due := task.NewDate(2026, 1, 15)

	fake := &fakeTasks{
		getFn: func(ctx context.Context, id int64) (task.Response, error) {
			if id != 7 {
				return task.Response{}, apperr.NotFound("task not found")
			}
			return task.Response{ID: 7, Title: "Write report", Status: task.StatusToDo, DueDate: &due, UserID: 1}, nil
		},
	}

	h := handlers.NewTasksHandler(fake)
	r := setupRouter(http.MethodGet, "/api/tasks/list/:id", h.GetByID)

	w := doJSON(r, http.MethodGet, "/api/tasks/list/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	want := `{"id":7,"title":"Write report","description":"","status":"TO_DO","dueDate":"2026-01-15","userId":1}`
	if w.Body.String() != want {
		t.Fatalf("got body %s, want %s", w.Body.String(), want)
	}

	w = doJSON(r, http.MethodGet, "/api/tasks/list/9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}

	resp := decodeEnvelope(t, w)
	if resp.Status != http.StatusNotFound || resp.Exception.Message != "record not found: task not found" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestListTasksHandler_ETag(t *testing.T) {
	fake := &fakeTasks{
		listFn: func(ctx context.Context) ([]task.Response, error) {
			return []task.Response{{ID: 1, Title: "a", Status: task.StatusDone, UserID: 1}}, nil
		},
	}

	h := handlers.NewTasksHandler(fake)
	r := setupRouter(http.MethodGet, "/api/tasks/list", h.List)

	w := doJSON(r, http.MethodGet, "/api/tasks/list", "")
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("got status %d etag=%q", w.Code, etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/list", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w.Code)
	}
}

func TestUpdateTaskHandler_ReparentToMissingUser(t *testing.T) {
	fake := &fakeTasks{
		updateFn: func(ctx context.Context, id int64, req task.Request) (task.Response, error) {
			if req.UserID == 999 {
				return task.Response{}, apperr.NotFound("user not found")
			}
			return task.ToResponse(task.Task{ID: id, Title: req.Title, Status: req.Status, UserID: req.UserID}), nil
		},
	}

	h := handlers.NewTasksHandler(fake)
	r := setupRouter(http.MethodPut, "/api/tasks/update/:id", h.Update)

	w := doJSON(r, http.MethodPut, "/api/tasks/update/1", `{"title":"t","status":"DONE","userId":999}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}
}

func TestListTasksByUserHandler(t *testing.T) {
	fake := &fakeTasks{
		listByUserFn: func(ctx context.Context, userID int64) ([]task.Response, error) {
			if userID != 1 {
				return nil, apperr.NotFound("user not found")
			}
			return []task.Response{{ID: 1, Title: "a", Status: task.StatusToDo, UserID: 1}}, nil
		},
	}

	h := handlers.NewTasksHandler(fake)
	r := setupRouter(http.MethodGet, "/api/tasks/user/:userId", h.ListByUser)

	w := doJSON(r, http.MethodGet, "/api/tasks/user/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	var got []task.Response
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || len(got) != 1 {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}

	if w := doJSON(r, http.MethodGet, "/api/tasks/user/2", ""); w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyz(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("down") })

	h := handlers.NewHealthHandler(map[string]handlers.Pinger{"db": up})
	r := setupRouter(http.MethodGet, "/readyz", h.Readyz)
	if w := doJSON(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	h = handlers.NewHealthHandler(map[string]handlers.Pinger{"db": up, "redis": down})
	r = setupRouter(http.MethodGet, "/readyz", h.Readyz)
	if w := doJSON(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", w.Code)
	}
}
