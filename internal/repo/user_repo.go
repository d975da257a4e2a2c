package repo

import (
	"context"

	"github.com/kilnworks/brickline/internal/domain/auth/model"
)

// UserSearch filters a user listing.
type UserSearch struct {
	Query    string
	Role     model.Role
	IsActive *bool
	Page     int
	Limit    int
}

func (s *UserSearch) Normalize() {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Limit < 1 {
		s.Limit = 10
	}
	if s.Limit > 100 {
		s.Limit = 100
	}
}

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uint, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uint) (model.User, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	ListUsers(ctx context.Context, search UserSearch) ([]model.User, int64, error)

	UpdateUser(ctx context.Context, u model.User) error

	DeleteUser(ctx context.Context, id uint) error
}
