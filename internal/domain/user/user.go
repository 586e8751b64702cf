package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateRequest is the registration payload. The generic update reuses it,
// so Password is always a new plaintext password.
type CreateRequest struct {
	FullName string `json:"fullName" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,min=6"`
}

type UpdateProfileRequest struct {
	FullName        string `json:"fullName" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
}

// RotatesPassword reports whether the request asks for a new password.
func (r UpdateProfileRequest) RotatesPassword() bool {
	return r.NewPassword != ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response is the only shape a user leaves the service layer in.
type Response struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func FromCreateRequest(req CreateRequest, passwordHash string) User {
	return User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
}

func ToResponse(u User) Response {
	return Response{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}

func ToResponses(users []User) []Response {
	out := make([]Response, 0, len(users))
	for _, u := range users {
		out = append(out, ToResponse(u))
	}
	return out
}
