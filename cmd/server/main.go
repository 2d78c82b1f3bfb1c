package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"dbmodel/docs"
	"dbmodel/internal/auth"
	"dbmodel/internal/cache"
	"dbmodel/internal/config"
	"dbmodel/internal/handler"
	"dbmodel/internal/logging"
	"dbmodel/internal/repository"
	"dbmodel/internal/router"
	"dbmodel/internal/service"
	"dbmodel/internal/store"
)

// @title DbModel Record API
// @version 1.0
// @description Authentication user records with create, replace and patch views.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	bootLog := logging.New(os.Stdout, "info")
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store init")
	}
	defer docStore.Close()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.CacheDB, log)
	defer cacheClient.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	userRepo := repository.NewUserRepository(docStore)
	userService := service.NewUserService(userRepo, cacheClient, log)
	userHandler := handler.NewUserHandler(userService)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, log, jwtService, userHandler)

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
		swaggerURL = strings.TrimSuffix(cfg.SwaggerHost, "/") + "/swagger/index.html"
		if !strings.Contains(cfg.SwaggerHost, "://") {
			swaggerURL = "http://" + swaggerURL
		}
	}
	log.Info().Str("url", swaggerURL).Msg("swagger documentation")

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
