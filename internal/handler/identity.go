package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"receiptbox/internal/auth"
)

// IdentityFromContext resolves the caller identity from the validated JWT
// placed in the context by the auth middleware. The identity is passed
// explicitly into every service call; services never read it themselves.
func IdentityFromContext(c echo.Context) (auth.Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims.Identity(), nil
}
