package service

import (
	"context"

	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	"github.com/kilnworks/brickline/internal/domain/auth/jwt"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
	"github.com/kilnworks/brickline/internal/repo"
)

// AuthService owns the session lifecycle: issuing token pairs on
// register/login, rotating them on refresh, and resolving the current
// identity. It holds no per-session state; every token is self-contained,
// so logout is an acknowledgement only and cannot revoke anything already
// issued.
type AuthService interface {
	Register(ctx context.Context, dto dto.RegisterDTO) (model.TokenPair, error)
	Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error)
	CurrentUser(ctx context.Context, userID uint) (model.User, error)
	ForgotPassword(ctx context.Context, dto dto.ForgotPasswordDTO) error
	ResetPassword(ctx context.Context, dto dto.ResetPasswordDTO) error
}

func NewAuthService(userRepo repo.UserRepo, jwtUtil jwt.TokenIssuer, cfg *config.Config, v *validate.Validate) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		cfg:      cfg,
		v:        v,
	}
}
