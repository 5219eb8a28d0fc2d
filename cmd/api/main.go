// Package main is the entrypoint for the AlmaGid API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/almagid/almagid/internal/auth"
	"github.com/almagid/almagid/internal/cache"
	"github.com/almagid/almagid/internal/config"
	"github.com/almagid/almagid/internal/handler"
	"github.com/almagid/almagid/internal/metrics"
	"github.com/almagid/almagid/internal/middleware"
	"github.com/almagid/almagid/internal/model"
	"github.com/almagid/almagid/internal/repository"
	"github.com/almagid/almagid/internal/server"
	"github.com/almagid/almagid/internal/service"
	"github.com/almagid/almagid/internal/storage"
	"github.com/almagid/almagid/migrations"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token signer", "error", err)
		os.Exit(1)
	}

	uploads, err := storage.NewUploads(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		logger.Error("failed to initialize upload store", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, tokens, uploads, metricsRecorder)
	listingService := service.NewListingService(repo, cacheClient, uploads, cfg.ListCacheTTL, logger, metricsRecorder)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(authService, cfg.MaxUploadSize)
	listingHandler := handler.NewListingHandler(listingService, cfg.MaxUploadSize)

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		tokens:   tokens,
		repo:     repo,
		cache:    cacheClient,
		health:   healthHandler,
		metrics:  metricsHandler,
		auth:     authHandler,
		profile:  profileHandler,
		listings: listingHandler,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	tokens   *auth.Tokens
	repo     *repository.Repository
	cache    *cache.Cache
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	auth     *handler.AuthHandler
	profile  *handler.ProfileHandler
	listings *handler.ListingHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: d.cfg.IsDevelopment(),
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.GetCORSAllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAuth := middleware.RequireAuth(middleware.AuthConfig{
		Logger: d.logger,
		Tokens: d.tokens,
		Users:  d.repo,
	})

	loginRateLimit := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:  d.logger,
		Cache:   d.cache,
		Enabled: d.cfg.LoginRateLimitEnabled,
		RPM:     d.cfg.LoginRateLimitRPM,
		Burst:   d.cfg.LoginRateLimitBurst,
	})

	jsonBodyLimit := middleware.MaxBodySize(d.cfg.MaxRequestBodySize)

	// Ops endpoints
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	// Account endpoints
	r.Route("/auth", func(r chi.Router) {
		r.Use(jsonBodyLimit)
		r.With(loginRateLimit).Post("/register", d.auth.Register)
		r.With(loginRateLimit).Post("/login", d.auth.Login)
		r.With(requireAuth).Post("/change_password", d.auth.ChangePassword)
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", d.profile.Me)
		r.Put("/", d.profile.UpdateMe)
		r.Post("/avatar", d.profile.UploadAvatar)
	})

	// Listing endpoints, one route set per kind
	mountListings(r, "/places", model.KindPlace, d.listings, requireAuth)
	mountListings(r, "/hostels", model.KindHostel, d.listings, requireAuth)

	// Uploaded images
	fileServer := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(d.cfg.UploadDir)))
	r.Get(storage.PublicPrefix+"/*", fileServer.ServeHTTP)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// mountListings registers the CRUD routes for a listing kind.
func mountListings(r chi.Router, pattern string, kind model.Kind, h *handler.ListingHandler, requireAuth func(http.Handler) http.Handler) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List(kind))
		r.With(requireAuth).Post("/", h.Create(kind))
		r.With(requireAuth).Get("/my", h.ListMine(kind))
		r.Get("/{id}", h.Get(kind))
		r.With(requireAuth).Put("/{id}", h.Update(kind))
		r.With(requireAuth).Delete("/{id}", h.Delete(kind))
	})
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
