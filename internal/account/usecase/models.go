package usecase

import "github.com/shandysiswandi/chemvis/internal/account/entity"

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token string
	User  entity.User
}

type Page struct {
	Number int
	Size   int
	Total  int
}

type UsersResult struct {
	Users []entity.User
	Page  Page
}

// CreateUserInput carries a new account. A nil IsActive defaults to true.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	IsStaff  bool
	IsActive *bool
}

// UpdateUserInput is a partial update: nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	IsStaff  *bool
	IsActive *bool
}

type AdminInput struct {
	Username string
	Email    string
	Password string
}
