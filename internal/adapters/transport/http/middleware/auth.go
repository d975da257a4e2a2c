package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	domainJWT "github.com/kilnworks/brickline/internal/domain/auth/jwt"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
)

const claimsContextKey = "auth.claims"

// Authenticate gates a route on a valid bearer access token. The three
// failure reasons are kept distinct on the wire: missing token, expired
// token, anything else invalid. On success the decoded claims are attached
// to the request context.
func Authenticate(issuer domainJWT.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "Access token is required")
			return
		}

		claims, err := issuer.ValidateAccessToken(raw)
		if err != nil {
			if customErrors.IsTokenExpired(err) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRoles restricts an already-authenticated route to the given role
// set. It must run after Authenticate.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortUnauthorized(c, "User not authenticated")
			return
		}
		if _, ok := allowed[model.Role(claims.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Insufficient permissions",
				"error":   "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the access claims Authenticate attached.
func ClaimsFromContext(c *gin.Context) (domainJWT.AccessClaims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return domainJWT.AccessClaims{}, false
	}
	claims, ok := v.(domainJWT.AccessClaims)
	return claims, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
		"error":   msg,
	})
}
