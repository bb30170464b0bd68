package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/chemvis/internal/account/entity"
	"github.com/shandysiswandi/chemvis/internal/account/usecase"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token       string `json:"token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (LoginResponse) Message() string {
	return "login successful"
}

// UserRequest is shared by create, replace and patch. Absent fields stay nil.
type UserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsStaff  *bool   `json:"is_staff"`
	IsActive *bool   `json:"is_active"`
}

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

type CreateUserResponse struct {
	User
}

func (CreateUserResponse) StatusCode() int {
	return http.StatusCreated
}

func (CreateUserResponse) Message() string {
	return "user created"
}

type UsersResponse struct {
	Results []User `json:"results"`
	page    usecase.Page
}

func (r UsersResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page.Number,
		"page_size": r.page.Size,
		"total":     r.page.Total,
	}
}

type DeleteResponse struct{}

func (DeleteResponse) StatusCode() int {
	return http.StatusNoContent
}

func toHTTPUser(u entity.User) User {
	return User{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		IsStaff:    u.IsStaff,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
