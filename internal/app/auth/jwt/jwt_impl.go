package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	domainJWT "github.com/kilnworks/brickline/internal/domain/auth/jwt"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
)

// JwtUtilImpl signs and verifies both token kinds with a single HS256
// secret. The "type" claim is the only discriminator between them; see
// the domain jwt package.
type JwtUtilImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.NewInvalidArgument("JWT secret is empty")
	}
	return &JwtUtilImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		now:        time.Now,
	}, nil
}

// WithClock overrides the time source. Tests only.
func (j *JwtUtilImpl) WithClock(now func() time.Time) *JwtUtilImpl {
	j.now = now
	return j
}

func (j *JwtUtilImpl) GenerateAccessToken(user model.User) (token string, exp time.Time, jti string, err error) {
	jti = uuid.NewString()
	now := j.now()

	claims := domainJWT.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
			ID:        jti,
		},
		Email: user.Email,
		Role:  string(user.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(user model.User) (token string, exp time.Time, jti string, err error) {
	jti = uuid.NewString()
	now := j.now()

	claims := domainJWT.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
			ID:        jti,
		},
		Email:     user.Email,
		TokenType: domainJWT.TokenTypeRefresh,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign refresh token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (domainJWT.AccessClaims, error) {
	claims := domainJWT.AccessClaims{}
	if err := j.parse(raw, &claims); err != nil {
		return domainJWT.AccessClaims{}, err
	}
	// A refresh token is never a valid access token.
	if claims.TokenType != "" {
		return domainJWT.AccessClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (domainJWT.RefreshClaims, error) {
	claims := domainJWT.RefreshClaims{}
	if err := j.parse(raw, &claims); err != nil {
		return domainJWT.RefreshClaims{}, err
	}
	if claims.TokenType != domainJWT.TokenTypeRefresh {
		return domainJWT.RefreshClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) parse(raw string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return customErrors.ErrTokenExpired
		}
		return customErrors.ErrInvalidToken
	}
	if !token.Valid {
		return customErrors.ErrInvalidToken
	}
	return nil
}
