package main

import (
	"log"
	"net/http"

	"receiptbox/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"receiptbox/internal/auth"
	"receiptbox/internal/cache"
	"receiptbox/internal/config"
	"receiptbox/internal/db"
	"receiptbox/internal/handler"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
	"receiptbox/internal/router"
	"receiptbox/internal/service"
	"receiptbox/internal/storage"
)

// @title Receipt Box API
// @version 1.0
// @description Digital receipt collector with per-user receipt management and admin analytics.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Receipt{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	fileStore, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("file store init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	receiptRepo := repository.NewReceiptRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	receiptService := service.NewReceiptService(receiptRepo, userRepo, fileStore, cacheClient)
	adminService := service.NewAdminService(userRepo, receiptRepo, fileStore, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	receiptHandler := handler.NewReceiptHandler(receiptService, fileStore)
	adminHandler := handler.NewAdminHandler(adminService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		receiptHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
