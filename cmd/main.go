package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-auth-server/config"
	_ "fleet-auth-server/docs"
	"fleet-auth-server/internal/handler"
	"fleet-auth-server/internal/repository"
	"fleet-auth-server/internal/security"
	"fleet-auth-server/internal/service"
	"fleet-auth-server/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title fleet-auth-server
// @version 1.0
// @description REST API аутентификации: PASETO сессии и API ключи

// @host localhost:8080

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("ошибка загрузки конфигурации")
	}
	util.InitLogger(cfg.Log.Level, cfg.Log.Format)

	// с неверным ключом процесс не стартует
	secretKey, err := config.LoadSecretKey(&cfg.Paseto)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("ошибка конфигурации секретного ключа")
	}

	db, err := config.SetupDatabase(ctx, &cfg.DatabaseConfig)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer func() {
		if err := db.Close(); err != nil {
			util.Logger.Error().Err(err).Msg("ошибка при закрытии БД")
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("ошибка подключения к Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			util.Logger.Error().Err(err).Msg("ошибка при закрытии Redis")
		}
	}()

	codec, err := security.NewPasetoCodec(secretKey)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("ошибка инициализации кодека токенов")
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	sessionStore := repository.NewSessionStore(redisClient)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokenService := service.NewTokenService(codec, sessionStore)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, sessionStore, &cfg.TTL)
	authService := service.NewAuthenticationService(tokenService, userRepo)

	authenticator := security.NewAuthenticator(tokenService, apiKeyService,
		"/health",
		"/metrics",
		"/api/auth/login",
		"/api/auth/refresh",
		"/swagger/*",
	)

	authHandler := handler.NewAuthenticationHandler(authService)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService)
	redisPing := func(ctx context.Context) error {
		return redisClient.Client.Ping(ctx).Err()
	}
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": handler.PingerFunc(db.PingContext),
		"redis":    handler.PingerFunc(redisPing),
	})

	router.Use(authenticator.Middleware)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/health", healthHandler.Health)
	router.Handle("/metrics", promhttp.Handler())

	setupAuthRoutes(router, authHandler, cfg)
	setupAPIKeyRoutes(router, apiKeyHandler)

	runServer(ctx, srv)
	apiKeyService.Wait()
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, cfg *config.AppConfig) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(httprate.LimitByIP(cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow)).Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.GetCurrentUser)
		r.Head("/me", h.GetCurrentUser)
	})
}

func setupAPIKeyRoutes(r chi.Router, h *handler.APIKeyHandler) {
	r.Route("/api/apikeys", func(r chi.Router) {
		r.With(security.RequireAdmin).Post("/", h.CreateAPIKey)
		// отзыв доступен и ключам с правом apikeys:revoke (ротация из CI)
		r.With(security.RequirePermission("apikeys:revoke")).Delete("/{id}", h.RevokeAPIKey)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		util.Logger.Info().Str("addr", server.Addr).Msg("сервер запущен")
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Fatal().Err(err).Msg("ошибка работы сервера")
		}
	case sig := <-signalChannel:
		util.Logger.Info().Str("signal", sig.String()).Msg("получен сигнал остановки работы сервера")
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		util.Logger.Error().Err(err).Msg("ошибка при остановке сервера")
	} else {
		util.Logger.Info().Msg("сервер успешно остановлен")
	}
}
