// Package main is the entrypoint for the ToDo List API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/todolist/todolist/internal/auth"
	"github.com/todolist/todolist/internal/cache"
	"github.com/todolist/todolist/internal/config"
	"github.com/todolist/todolist/internal/handler"
	"github.com/todolist/todolist/internal/mail"
	"github.com/todolist/todolist/internal/metrics"
	"github.com/todolist/todolist/internal/middleware"
	"github.com/todolist/todolist/internal/reminder"
	"github.com/todolist/todolist/internal/repository"
	"github.com/todolist/todolist/internal/server"
	"github.com/todolist/todolist/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
		PoolSize:     cfg.RedisPoolSize,
		PrincipalTTL: cfg.PrincipalCacheTTL,
	})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logger.Error("failed to initialize token provider", "error", err)
		os.Exit(1)
	}
	hasher := auth.NewPasswordHasher(cfg.Argon2Params())

	recorder := metrics.NewInMemory()

	authService, err := service.NewAuthService(repo, hasher, tokens, cfg.TokenExpiryHours, recorder)
	if err != nil {
		logger.Error("failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	userService := service.NewUserService(repo, hasher, cacheClient, logger)
	catalogService := service.NewCatalogService(repo)
	taskService := service.NewTaskService(repo, repo, recorder)
	expenseService := service.NewExpenseService(repo, taskService)

	var scheduler *reminder.Scheduler
	if cfg.ReminderEnabled {
		gateway, err := mail.New(cfg, logger)
		if err != nil {
			logger.Error("failed to initialize mail gateway", "driver", cfg.MailDriver, "error", err)
			os.Exit(1)
		}
		scheduler = reminder.New(repo, gateway, reminder.Config{
			Interval:  cfg.ReminderInterval,
			Schedule:  cfg.ReminderSchedule,
			Lookahead: cfg.ReminderLookahead,
		}, logger, recorder)
	}

	cookie := handler.CookieConfig{Name: cfg.AuthCookieName, Secure: cfg.AuthCookieSecure}
	handlers := routes{
		base:    handler.New(),
		health:  handler.NewHealthHandler(repo, cacheClient, schedulerStatus(scheduler), logger),
		metrics: handler.NewMetricsHandler(recorder),
		auth:    handler.NewAuthHandler(authService, cookie, logger),
		users:   handler.NewUserHandler(userService, cookie, logger),
		tasks:   handler.NewTaskHandler(taskService, logger),
		catalog: handler.NewCatalogHandler(catalogService, logger),
		expense: handler.NewExpenseHandler(expenseService, logger),
	}

	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Tokens:     tokens,
		Users:      repo,
		Cache:      cacheClient,
		CookieName: cfg.AuthCookieName,
	}

	r := setupRouter(handlers, authCfg, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("repository", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("cache", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			logger.Error("failed to start reminder scheduler", "error", err)
			os.Exit(1)
		}
		srv.OnShutdown("reminder-scheduler", scheduler.Stop)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"reminders_enabled", cfg.ReminderEnabled,
		"mail_driver", cfg.MailDriver,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// schedulerStatus keeps a disabled scheduler a nil interface rather than a
// typed nil pointer.
func schedulerStatus(s *reminder.Scheduler) handler.SchedulerStatus {
	if s == nil {
		return nil
	}
	return s
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routes struct {
	base    *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	users   *handler.UserHandler
	tasks   *handler.TaskHandler
	catalog *handler.CatalogHandler
	expense *handler.ExpenseHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(h routes, authCfg middleware.AuthConfig, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.IsDevelopment()))
	r.Use(middleware.CORS(cfg.GetCORSAllowedOrigins()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)
	r.Get("/", h.base.Hello)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.auth.Register)
			r.Post("/login", h.auth.Login)
			r.Post("/logout", h.auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.users.Me)
				r.Put("/", h.users.Update)
				r.Delete("/", h.users.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.tasks.List)
				r.Post("/", h.tasks.Create)
				r.Get("/{id}", h.tasks.Get)
				r.Put("/{id}", h.tasks.Update)
				r.Delete("/{id}", h.tasks.Delete)
				r.Post("/{id}/complete", h.tasks.Complete)
				r.Get("/{id}/expenses", h.expense.ListByTask)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.catalog.ListCategories)
				r.Post("/", h.catalog.CreateCategory)
				r.Get("/{id}", h.catalog.GetCategory)
				r.Put("/{id}", h.catalog.UpdateCategory)
				r.Delete("/{id}", h.catalog.DeleteCategory)
			})

			r.Route("/statuses", func(r chi.Router) {
				r.Get("/", h.catalog.ListStatuses)
				r.Post("/", h.catalog.CreateStatus)
				r.Get("/{id}", h.catalog.GetStatus)
				r.Put("/{id}", h.catalog.UpdateStatus)
				r.Delete("/{id}", h.catalog.DeleteStatus)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", h.expense.Create)
				r.Get("/{id}", h.expense.Get)
				r.Put("/{id}", h.expense.Update)
				r.Delete("/{id}", h.expense.Delete)
			})
		})
	})

	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
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
