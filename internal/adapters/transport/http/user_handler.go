package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/adapters/transport/http/middleware"
	"github.com/kilnworks/brickline/internal/app/dto"
	userService "github.com/kilnworks/brickline/internal/app/user/service"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/repo"
)

type UserHandler struct {
	svc userService.UserService
	log *zap.Logger
}

func NewUserHandler(svc userService.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func (h *UserHandler) List(c *gin.Context) {
	search := repo.UserSearch{
		Query: c.Query("q"),
		Role:  model.Role(c.Query("role")),
	}
	if v, err := strconv.ParseBool(c.Query("isActive")); err == nil {
		search.IsActive = &v
	}
	search.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	search.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, total, err := h.svc.List(c.Request.Context(), search)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	search.Normalize()
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    "Users retrieved successfully",
		Data:       public,
		Pagination: NewPagination(search.Page, search.Limit, total),
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "User retrieved successfully",
		Data:    user.Public(),
	})
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var body dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "User updated successfully",
		Data:    user.Public(),
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "User deleted successfully",
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := h.svc.Get(c.Request.Context(), uid)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Profile retrieved successfully",
		Data:    user.Public(),
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body dto.UpdateProfileDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), uid, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Profile updated successfully",
		Data:    user.Public(),
	})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body dto.ChangePasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), uid, body); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "Password changed successfully",
	})
}

func currentUserID(c *gin.Context) (uint, bool) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return 0, false
	}
	uid, err := claims.UserID()
	if err != nil {
		return 0, false
	}
	return uid, true
}
