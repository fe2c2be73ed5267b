package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"receiptbox/internal/service"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	svc service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return domainError(err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetUser godoc
// @Summary Get a user by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.svc.GetUser(c.Request().Context(), uint(id))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser godoc
// @Summary Delete a user and all their receipts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.svc.DeleteUser(c.Request().Context(), uint(id)); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}

// Analytics godoc
// @Summary Get cross-user spending analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AnalyticsReport
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	report, err := h.svc.Analytics(c.Request().Context())
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, report)
}
