package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/chemvis/internal/account/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	maxJSONBody     = 1 << 20
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Login(ctx context.Context, r *http.Request) (any, error) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.Login(ctx, usecase.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Token:       result.Token,
		UserID:      result.User.ID,
		Username:    result.User.Username,
		Email:       result.User.Email,
		IsStaff:     result.User.IsStaff,
		IsSuperuser: result.User.IsSuperuser,
	}, nil
}

func (h *HTTPEndpoint) ListUsers(ctx context.Context, r *http.Request) (any, error) {
	query := r.URL.Query()
	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ListUsers(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toHTTPUser(u))
	}

	return UsersResponse{Results: users, page: result.Page}, nil
}

func (h *HTTPEndpoint) GetUser(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "user")
	if err != nil {
		return nil, err
	}

	u, err := h.uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return toHTTPUser(u), nil
}

func (h *HTTPEndpoint) CreateUser(ctx context.Context, r *http.Request) (any, error) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	u, err := h.uc.CreateUser(ctx, usecase.CreateUserInput{
		Username: deref(req.Username),
		Email:    deref(req.Email),
		Password: deref(req.Password),
		IsStaff:  deref(req.IsStaff),
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	return CreateUserResponse{User: toHTTPUser(u)}, nil
}

// ReplaceUser is PUT: username is required, other absent fields are kept.
func (h *HTTPEndpoint) ReplaceUser(ctx context.Context, r *http.Request) (any, error) {
	return h.update(ctx, r, true)
}

func (h *HTTPEndpoint) PatchUser(ctx context.Context, r *http.Request) (any, error) {
	return h.update(ctx, r, false)
}

func (h *HTTPEndpoint) update(ctx context.Context, r *http.Request, full bool) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "user")
	if err != nil {
		return nil, err
	}

	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if full && req.Username == nil {
		return nil, pkgerror.NewRejected("username is required")
	}

	u, err := h.uc.UpdateUser(ctx, id, usecase.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsStaff:  req.IsStaff,
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	return toHTTPUser(u), nil
}

func (h *HTTPEndpoint) DeleteUser(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "user")
	if err != nil {
		return nil, err
	}

	caller, ok := pkgrouter.PrincipalFrom(ctx)
	if !ok {
		return nil, pkgerror.NewUnauthorized("authentication credentials were not provided")
	}

	if err := h.uc.DeleteUser(ctx, caller.UserID, id); err != nil {
		return nil, err
	}

	return DeleteResponse{}, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return pkgerror.NewInvalidFormat()
	}

	return nil
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := defaultPageSize

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		pageSize = min(value, maxPageSize)
	}

	return page, pageSize, nil
}
