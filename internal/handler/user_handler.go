package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"receiptbox/internal/model"
	"receiptbox/internal/service"
)

// UserHandler exposes the caller's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UserResponse represents a user profile in API responses.
type UserResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// Me godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	user, err := h.svc.GetUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}
