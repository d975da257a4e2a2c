package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kilnworks/brickline/internal/domain/auth/model"
)

// TokenTypeRefresh is the discriminator claim value carried only by refresh
// tokens. Both token kinds are signed with the same secret, so the "type"
// claim is the sole thing keeping a refresh token out of the Authorization
// header and vice versa.
const TokenTypeRefresh = "refresh"

// AccessClaims is the claim set of an access token. TokenType stays empty on
// issued access tokens; validation rejects any non-empty value so a refresh
// token can never pass as an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"type,omitempty"`
}

// RefreshClaims is the claim set of a refresh token. TokenType must equal
// TokenTypeRefresh.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

// UserID decodes the numeric identity carried in the subject claim.
func (c AccessClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

func (c RefreshClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim: %w", err)
	}
	return uint(id), nil
}

type TokenIssuer interface {
	GenerateAccessToken(user model.User) (token string, exp time.Time, jti string, err error)
	GenerateRefreshToken(user model.User) (token string, exp time.Time, jti string, err error)
	ValidateAccessToken(token string) (AccessClaims, error)
	ValidateRefreshToken(token string) (RefreshClaims, error)
}
