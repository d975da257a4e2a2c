package service

import (
	"context"

	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
	"github.com/kilnworks/brickline/internal/repo"
)

// UserService covers administrative user management plus the authenticated
// user's own profile operations.
type UserService interface {
	List(ctx context.Context, search repo.UserSearch) ([]model.User, int64, error)
	Get(ctx context.Context, id uint) (model.User, error)
	Update(ctx context.Context, id uint, dto dto.UpdateUserDTO) (model.User, error)
	UpdateProfile(ctx context.Context, id uint, dto dto.UpdateProfileDTO) (model.User, error)
	ChangePassword(ctx context.Context, id uint, dto dto.ChangePasswordDTO) error
	Delete(ctx context.Context, id uint) error
}

func NewUserService(users repo.UserRepo, cfg *config.Config, v *validate.Validate) UserService {
	return &userService{
		users: users,
		cfg:   cfg,
		v:     v,
	}
}
