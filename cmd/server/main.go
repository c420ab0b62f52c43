package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"authdesk/docs"
	"authdesk/internal/auth"
	"authdesk/internal/cache"
	"authdesk/internal/config"
	"authdesk/internal/db"
	"authdesk/internal/handler"
	"authdesk/internal/repository"
	"authdesk/internal/router"
	"authdesk/internal/service"
)

// @title Auth API
// @version 1.0
// @description Email/password signup and login.
// @host localhost:4001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping users table...")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Printf("redis unavailable at %s, continuing without cache: %v", cfg.RedisAddr, err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("password hasher: %v", err)
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore, cacheClient)
	authHandler := handler.NewAuthHandler(authService)

	router.Register(e, cfg, jwtService, tokenStore, authHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	addr := ":" + cfg.ServerPort
	go func() {
		log.Printf("server running on port %s", cfg.ServerPort)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
