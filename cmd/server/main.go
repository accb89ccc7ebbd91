// Command server runs the game portal API.
//
// @title        Game Portal API
// @version      1.0
// @description  Accounts, sessions and the statki game for the browser game portal.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gameportal/portal-api/internal/api"
	"github.com/gameportal/portal-api/internal/api/handler"
	"github.com/gameportal/portal-api/internal/core/ports"
	"github.com/gameportal/portal-api/internal/core/service"
	mongostore "github.com/gameportal/portal-api/internal/infrastructure/db/mongo"
	redisstore "github.com/gameportal/portal-api/internal/infrastructure/db/redis"
	"github.com/gameportal/portal-api/internal/infrastructure/security"
	"github.com/gameportal/portal-api/internal/pkg/config"
	"github.com/gameportal/portal-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{Service: "portal-api"})
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-api",
	})

	tokens, err := security.NewJWTManager(security.TokenConfig{
		AccessSecret:  cfg.Tokens.AccessSecret,
		RefreshSecret: cfg.Tokens.RefreshSecret,
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token configuration")
	}

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		if err := mongostore.Disconnect(context.Background(), mongoClient); err != nil {
			log.Error().Err(err).Msg("disconnect mongo")
		}
	}()

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	var limiter ports.LoginLimiter
	if cfg.Login.MaxAttempts > 0 {
		limiter = redisstore.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	}

	e := api.NewRouter(api.Deps{
		Sessions: service.NewSessionService(users, security.NewBcryptHasher(), tokens, limiter, log.With().Str("component", "session").Logger()),
		Users:    service.NewUserService(users),
		Statki:   service.NewStatkiService(redisstore.NewBoardStore(rdb, cfg.Statki.BoardTTL), log.With().Str("component", "statki").Logger()),
		Verifier: tokens,
		Cookies: handler.CookieOptions{
			Secure: cfg.Cookie.Secure,
			Domain: cfg.Cookie.Domain,
			MaxAge: tokens.RefreshTTL(),
		},
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting portal api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
