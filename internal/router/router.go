package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"receiptbox/internal/auth"
	"receiptbox/internal/config"
	"receiptbox/internal/handler"
	"receiptbox/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	receiptHandler *handler.ReceiptHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Uploaded attachments are served statically by stored object name.
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	// User routes
	secured.GET("/users/me", userHandler.Me)

	// Receipt routes
	secured.POST("/receipts", receiptHandler.Create)
	secured.GET("/receipts", receiptHandler.List)
	secured.GET("/receipts/search", receiptHandler.Search)
	secured.GET("/receipts/:id", receiptHandler.Get)
	secured.PUT("/receipts/:id", receiptHandler.Update)
	secured.DELETE("/receipts/:id", receiptHandler.Delete)

	// Admin routes
	admin := secured.Group("/admin", adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/analytics", adminHandler.Analytics)
}

// adminOnly rejects callers whose token does not carry the ADMIN role.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := handler.IdentityFromContext(c)
		if err != nil {
			return err
		}
		if identity.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
