package service

import (
	"context"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/kilnworks/brickline/internal/app/dto"
	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
	"github.com/kilnworks/brickline/internal/repo"
)

type userRepoStub struct {
	users  map[uint]model.User
	nextID uint
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[uint]model.User), nextID: 1}
}

func (u *userRepoStub) CreateUser(ctx context.Context, m model.User) (uint, error) {
	m.ID = u.nextID
	u.nextID++
	u.users[m.ID] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	for _, v := range u.users {
		if v.Username == username {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByID(ctx context.Context, id uint) (model.User, error) {
	v, ok := u.users[id]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return v, nil
}

func (u *userRepoStub) ListUsers(ctx context.Context, search repo.UserSearch) ([]model.User, int64, error) {
	var out []model.User
	for _, v := range u.users {
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (u *userRepoStub) UpdateUser(ctx context.Context, m model.User) error {
	u.users[m.ID] = m
	return nil
}

func (u *userRepoStub) DeleteUser(ctx context.Context, id uint) error {
	if _, ok := u.users[id]; !ok {
		return customErrors.ErrNotFound
	}
	delete(u.users, id)
	return nil
}

func newSvc(t *testing.T) (UserService, *userRepoStub) {
	t.Helper()
	ur := newUserRepoStub()
	v := validator.New()
	v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool { return true })
	return NewUserService(ur, &config.Config{PasswordPepper: "p"}, v), ur
}

func seedUser(t *testing.T, ur *userRepoStub, username, email string) model.User {
	t.Helper()
	hash, err := argon2id.CreateHash("Sekret123"+"p", argon2id.DefaultParams)
	require.NoError(t, err)
	id, err := ur.CreateUser(context.Background(), model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
	})
	require.NoError(t, err)
	u, err := ur.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestUserUpdate_RoleAndActivation(t *testing.T) {
	svc, ur := newSvc(t)
	user := seedUser(t, ur, "mason", "mason@example.com")

	active := false
	updated, err := svc.Update(context.Background(), user.ID, dto.UpdateUserDTO{
		Role:     "admin",
		IsActive: &active,
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, updated.Role)
	require.False(t, updated.IsActive)
}

func TestUserUpdate_EmailConflict(t *testing.T) {
	svc, ur := newSvc(t)
	user := seedUser(t, ur, "mason", "mason@example.com")
	seedUser(t, ur, "other", "other@example.com")

	_, err := svc.Update(context.Background(), user.ID, dto.UpdateUserDTO{Email: "other@example.com"})
	require.True(t, customErrors.IsAlreadyExists(err))

	// re-submitting your own email is not a conflict
	_, err = svc.Update(context.Background(), user.ID, dto.UpdateUserDTO{Email: "mason@example.com"})
	require.NoError(t, err)
}

func TestUserUpdate_NotFound(t *testing.T) {
	svc, _ := newSvc(t)

	_, err := svc.Update(context.Background(), 99, dto.UpdateUserDTO{FirstName: "X"})
	require.True(t, customErrors.IsNotFound(err))
}

func TestUpdateProfile_UsernameConflict(t *testing.T) {
	svc, ur := newSvc(t)
	user := seedUser(t, ur, "mason", "mason@example.com")
	seedUser(t, ur, "taken", "taken@example.com")

	_, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileDTO{Username: "taken"})
	require.True(t, customErrors.IsAlreadyExists(err))

	updated, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileDTO{FirstName: "Mason"})
	require.NoError(t, err)
	require.Equal(t, "Mason", updated.FirstName)
}

func TestChangePassword(t *testing.T) {
	svc, ur := newSvc(t)
	user := seedUser(t, ur, "mason", "mason@example.com")

	err := svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordDTO{
		CurrentPassword: "wrong",
		NewPassword:     "NewSekret1",
	})
	require.ErrorIs(t, err, customErrors.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordDTO{
		CurrentPassword: "Sekret123",
		NewPassword:     "NewSekret1",
	})
	require.NoError(t, err)

	fresh, err := ur.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	ok, err := argon2id.ComparePasswordAndHash("NewSekret1"+"p", fresh.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUserDelete(t *testing.T) {
	svc, ur := newSvc(t)
	user := seedUser(t, ur, "mason", "mason@example.com")

	require.NoError(t, svc.Delete(context.Background(), user.ID))
	err := svc.Delete(context.Background(), user.ID)
	require.True(t, customErrors.IsNotFound(err))
}
