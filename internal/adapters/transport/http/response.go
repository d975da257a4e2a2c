package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
)

// Envelope is the uniform response shape of the API. Optional fields are
// omitted when empty so auth responses and plain resource responses share
// one type.
type Envelope struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	Data         any         `json:"data,omitempty"`
	User         any         `json:"user,omitempty"`
	Token        string      `json:"token,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	Error        string      `json:"error,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   message,
	})
}

// handleError maps the domain error taxonomy onto HTTP statuses. Internal
// detail stays on the server side of the wire: unexpected failures log the
// real cause and answer with a generic 500.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		fail(c, 400, err.Error())
	case customErrors.IsInvalidCredentials(err):
		fail(c, 401, "Invalid email or password")
	case customErrors.IsAccountDisabled(err):
		fail(c, 401, "Account is deactivated")
	case customErrors.IsTokenExpired(err):
		fail(c, 401, "Token has expired")
	case customErrors.IsInvalidToken(err):
		fail(c, 401, "Invalid token")
	case customErrors.IsForbidden(err):
		fail(c, 403, "Insufficient permissions")
	case customErrors.IsNotFound(err):
		fail(c, 404, "Not found")
	case customErrors.IsAlreadyExists(err):
		fail(c, 409, err.Error())
	default:
		log.Error("unhandled service error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		fail(c, 500, "Internal server error")
	}
}
