// Package main is the entry point for the ReviewBlog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewblog/internal/cache"
	"reviewblog/internal/config"
	"reviewblog/internal/database"
	"reviewblog/internal/handlers"
	"reviewblog/internal/middleware"
	"reviewblog/internal/render"
	"reviewblog/internal/router"
	"reviewblog/internal/service"
	"reviewblog/internal/session"
	"reviewblog/internal/store"
	"reviewblog/internal/store/memory"
	"reviewblog/web"
)

// Storage modes selected with -storage.
const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

// backends is the storage wiring for one mode.
type backends struct {
	users      store.UserRepository
	categories store.CategoryRepository
	articles   store.ArticleRepository
	sessions   session.Backend
	close      func()
}

func main() {
	storageMode := flag.String("storage", storagePostgres, "storage backend: postgres or memory")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text at debug level in development, JSON otherwise.
	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", *storageMode,
	)

	ctx := context.Background()

	b, err := openBackends(ctx, cfg, *storageMode)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer b.close()

	// Services.
	users := service.NewUserService(b.users)
	categories := service.NewCategoryService(b.categories)
	articles := service.NewArticleService(b.articles, b.categories, b.users)

	// Memory mode starts empty on every run, so seed it in development.
	if *storageMode == storageMemory && cfg.IsDev() {
		if err := seedMemory(ctx, users, categories, articles); err != nil {
			slog.Error("failed to seed memory storage", "error", err)
			os.Exit(1)
		}
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(b.sessions, secureCookies)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer loginLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Views:         handlers.NewViews(renderer, articles, categories),
		API:           handlers.NewAPI(articles, categories),
		Auth:          handlers.NewAuth(renderer, sessionStore, users),
		LoginLimiter:  loginLimiter,
		Static:        static,
		SecureCookies: secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openBackends wires repositories and the session backend for mode.
func openBackends(ctx context.Context, cfg *config.Config, mode string) (*backends, error) {
	switch mode {
	case storageMemory:
		s := memory.New()
		return &backends{
			users:      s.Users,
			categories: s.Categories,
			articles:   s.Articles,
			sessions:   session.NewMemoryBackend(),
			close:      func() {},
		}, nil
	case storagePostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*backends, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	// Valkey holds sessions and the category cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &backends{
		users:      store.NewUserStore(db),
		categories: cache.NewCategories(store.NewCategoryStore(db), valkeyClient, cfg.CategoryCacheTTL),
		articles:   store.NewArticleStore(db),
		sessions:   session.NewValkeyBackend(valkeyClient),
		close:      closer(db, valkeyClient),
	}, nil
}

func closer(db *sql.DB, client *redis.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			slog.Warn("valkey close failed", "error", err)
		}
		if err := db.Close(); err != nil {
			slog.Warn("database close failed", "error", err)
		}
	}
}
