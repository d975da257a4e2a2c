package service

import (
	"context"

	"github.com/alexedwards/argon2id"
	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
	"github.com/kilnworks/brickline/internal/repo"
)

type userService struct {
	users repo.UserRepo
	cfg   *config.Config
	v     *validate.Validate
}

func (u *userService) List(ctx context.Context, search repo.UserSearch) ([]model.User, int64, error) {
	search.Normalize()
	users, total, err := u.users.ListUsers(ctx, search)
	if err != nil {
		return nil, 0, customErrors.WrapInternal(err, "List")
	}
	return users, total, nil
}

func (u *userService) Get(ctx context.Context, id uint) (model.User, error) {
	user, err := u.users.GetUserByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Get")
	}
	return user, nil
}

func (u *userService) Update(ctx context.Context, id uint, dto dto.UpdateUserDTO) (model.User, error) {
	if err := u.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := u.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if dto.Email != "" && dto.Email != user.Email {
		if err := u.checkEmailFree(ctx, dto.Email); err != nil {
			return model.User{}, err
		}
		user.Email = dto.Email
	}
	if dto.Username != "" && dto.Username != user.Username {
		if err := u.checkUsernameFree(ctx, dto.Username); err != nil {
			return model.User{}, err
		}
		user.Username = dto.Username
	}
	if dto.FirstName != "" {
		user.FirstName = dto.FirstName
	}
	if dto.LastName != "" {
		user.LastName = dto.LastName
	}
	if dto.Role != "" {
		role := model.Role(dto.Role)
		if !role.Valid() {
			return model.User{}, customErrors.NewInvalidArgument("unknown role")
		}
		user.Role = role
	}
	if dto.IsActive != nil {
		user.IsActive = *dto.IsActive
	}

	if err := u.saveUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (u *userService) UpdateProfile(ctx context.Context, id uint, dto dto.UpdateProfileDTO) (model.User, error) {
	if err := u.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := u.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if dto.Email != "" && dto.Email != user.Email {
		if err := u.checkEmailFree(ctx, dto.Email); err != nil {
			return model.User{}, err
		}
		user.Email = dto.Email
	}
	if dto.Username != "" && dto.Username != user.Username {
		if err := u.checkUsernameFree(ctx, dto.Username); err != nil {
			return model.User{}, err
		}
		user.Username = dto.Username
	}
	if dto.FirstName != "" {
		user.FirstName = dto.FirstName
	}
	if dto.LastName != "" {
		user.LastName = dto.LastName
	}

	if err := u.saveUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (u *userService) ChangePassword(ctx context.Context, id uint, dto dto.ChangePasswordDTO) error {
	if err := u.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := u.Get(ctx, id)
	if err != nil {
		return err
	}

	ok, err := argon2id.ComparePasswordAndHash(dto.CurrentPassword+u.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return customErrors.WrapInternal(err, "ChangePassword")
	}
	if !ok {
		return customErrors.ErrInvalidCredentials
	}

	hash, err := argon2id.CreateHash(dto.NewPassword+u.cfg.PasswordPepper, argon2id.DefaultParams)
	if err != nil {
		return customErrors.WrapInternal(err, "ChangePassword")
	}
	user.PasswordHash = hash

	return u.saveUser(ctx, user)
}

func (u *userService) Delete(ctx context.Context, id uint) error {
	err := u.users.DeleteUser(ctx, id)
	if customErrors.IsNotFound(err) {
		return customErrors.ErrNotFound
	}
	if err != nil {
		return customErrors.WrapInternal(err, "Delete")
	}
	return nil
}

func (u *userService) checkEmailFree(ctx context.Context, email string) error {
	if _, err := u.users.GetUserByEmail(ctx, email); err == nil {
		return customErrors.NewConflict("user with this email already exists")
	} else if !customErrors.IsNotFound(err) {
		return customErrors.WrapInternal(err, "checkEmailFree")
	}
	return nil
}

func (u *userService) checkUsernameFree(ctx context.Context, username string) error {
	if _, err := u.users.GetUserByUsername(ctx, username); err == nil {
		return customErrors.NewConflict("user with this username already exists")
	} else if !customErrors.IsNotFound(err) {
		return customErrors.WrapInternal(err, "checkUsernameFree")
	}
	return nil
}

func (u *userService) saveUser(ctx context.Context, user model.User) error {
	if err := u.users.UpdateUser(ctx, user); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return customErrors.NewConflict("email or username already taken")
		}
		return customErrors.WrapInternal(err, "saveUser")
	}
	return nil
}
