package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	"github.com/kilnworks/brickline/internal/domain/auth/jwt"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
	"github.com/kilnworks/brickline/internal/repo"
)

type authService struct {
	userRepo repo.UserRepo
	jwtUtil  jwt.TokenIssuer
	cfg      *config.Config
	v        *validate.Validate
}

func (a *authService) Register(ctx context.Context, dto dto.RegisterDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	// Fast-path uniqueness checks. These can race with a concurrent
	// registration; the unique indexes on email/username are the arbiter,
	// surfacing as ErrAlreadyExists from CreateUser.
	if _, err := a.userRepo.GetUserByEmail(ctx, dto.Email); err == nil {
		return model.TokenPair{}, customErrors.NewConflict("user with this email already exists")
	} else if !customErrors.IsNotFound(err) {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	if _, err := a.userRepo.GetUserByUsername(ctx, dto.Username); err == nil {
		return model.TokenPair{}, customErrors.NewConflict("user with this username already exists")
	} else if !customErrors.IsNotFound(err) {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	passwordHash, err := argon2id.CreateHash(dto.Password+a.cfg.PasswordPepper, argon2id.DefaultParams)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: passwordHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
	}

	id, err := a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if customErrors.IsAlreadyExists(err) {
			return model.TokenPair{}, customErrors.NewConflict("user with this email or username already exists")
		}
		return model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}
	user.ID = id

	return a.issuePair(user)
}

func (a *authService) Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	if customErrors.IsNotFound(err) {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(dto.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.TokenPair{}, customErrors.ErrAccountDisabled
	}

	return a.issuePair(user)
}

// Logout is a stateless acknowledgement. Tokens are self-contained and no
// revocation list exists, so previously issued tokens stay valid until
// their natural expiry; the client is responsible for discarding them.
func (a *authService) Logout(ctx context.Context) error {
	return nil
}

func (a *authService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument("refresh token is required")
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	uid, err := claims.UserID()
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	if customErrors.IsNotFound(err) {
		return model.TokenPair{}, fmt.Errorf("%w: user not found or inactive", customErrors.ErrInvalidToken)
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if !user.IsActive {
		return model.TokenPair{}, fmt.Errorf("%w: user not found or inactive", customErrors.ErrInvalidToken)
	}

	// Full rotation: a new access/refresh pair on every use. The old
	// refresh token is NOT revoked (no server-side token state), so it
	// stays usable until its own expiry.
	return a.issuePair(user)
}

func (a *authService) CurrentUser(ctx context.Context, userID uint) (model.User, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	if customErrors.IsNotFound(err) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "CurrentUser")
	}
	return user, nil
}

// ForgotPassword reports success whether or not the email exists, and sends
// nothing. Kept as an acknowledged stub until a mailer is wired up.
func (a *authService) ForgotPassword(ctx context.Context, dto dto.ForgotPasswordDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	if _, err := a.userRepo.GetUserByEmail(ctx, dto.Email); err != nil && !customErrors.IsNotFound(err) {
		return customErrors.WrapInternal(err, "ForgotPassword")
	}
	return nil
}

// ResetPassword is the second half of the same stub: it validates input and
// acknowledges without rotating credentials.
func (a *authService) ResetPassword(ctx context.Context, dto dto.ResetPasswordDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	return nil
}

func (a *authService) issuePair(user model.User) (model.TokenPair, error) {
	accessToken, atExp, _, err := a.jwtUtil.GenerateAccessToken(user)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue access token")
	}

	refreshToken, rtExp, _, err := a.jwtUtil.GenerateRefreshToken(user)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue refresh token")
	}

	now := time.Now()

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		User:         user,
	}, nil
}
