package inbound

import (
	"context"

	"github.com/shandysiswandi/chemvis/internal/account/entity"
	"github.com/shandysiswandi/chemvis/internal/account/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (usecase.LoginResult, error)
	ListUsers(ctx context.Context, page, pageSize int) (usecase.UsersResult, error)
	GetUser(ctx context.Context, id int64) (entity.User, error)
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (entity.User, error)
	UpdateUser(ctx context.Context, id int64, in usecase.UpdateUserInput) (entity.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
}

// RegisterHTTPEndpoint mounts login and the staff-only user routes. guard
// must resolve the caller, typically pkgrouter.Authenticate.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, guard pkgrouter.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/login/", end.Login)

	admin := []pkgrouter.Middleware{guard, pkgrouter.RequireStaff}

	r.GET("/users/", end.ListUsers, admin...) // ?page=&page_size=
	r.POST("/users/", end.CreateUser, admin...)
	r.GET("/users/:id/", end.GetUser, admin...)
	r.PUT("/users/:id/", end.ReplaceUser, admin...)
	r.PATCH("/users/:id/", end.PatchUser, admin...)
	r.DELETE("/users/:id/", end.DeleteUser, admin...)
}
