// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/oblog-go/internal/config"
	"github.com/olegiv/oblog-go/internal/handler"
	"github.com/olegiv/oblog-go/internal/logging"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/session"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/version"
	"github.com/olegiv/oblog-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	envFile := flag.String("env-file", ".env", "Path to the .env file to load")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oBlog - a small multi-user blog\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SESSION_SECRET       Session/CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_DB_PATH              SQLite database path (default: ./data/oblog.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SERVER_HOST          Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_LOG_LEVEL            Log level: debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_DO_SEED              Seed a welcome post into an empty database (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_TRUST_PROXY_HEADERS  Honor X-Forwarded-For behind a reverse proxy (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("oblog %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(*envFile); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	// Load the .env file if present (development)
	_ = godotenv.Load(envFile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var baseHandler slog.Handler
	if cfg.IsDevelopment() {
		baseHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		baseHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(baseHandler))

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	slog.SetDefault(slog.New(logging.NewEventLogHandler(baseHandler, db)))
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed a welcome post into an empty database when requested
	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Event service for the audit trail
	eventService := service.NewEventService(db)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	// Security headers middleware (CSP, HSTS, X-Frame-Options, etc.)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized",
		"hsts", !cfg.IsDevelopment(),
		"x_frame_options", "SAMEORIGIN",
	)

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.WithPrincipal(sessionManager, db))

	// CSRF protection middleware
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized")

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Rate limiter for the public auth routes (defense-in-depth)
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	slog.Info("public rate limiter initialized", "rate", "10 req/s", "burst", 20)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	postsHandler := handler.NewPostsHandler(db, renderer, sessionManager)
	staticHandler, err := handler.NewStaticHandler(renderer)
	if err != nil {
		return fmt.Errorf("initializing static pages: %w", err)
	}
	healthHandler := handler.NewHealthHandler(db, sessionManager)

	// Health check routes (public, more detail for signed-in admins)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		// Public blog surface
		r.Get(handler.RouteRoot, postsHandler.List)
		r.Get(handler.RoutePostID, postsHandler.Show)
		r.Post(handler.RoutePostID, postsHandler.Comment)
		r.Get(handler.RouteAbout, staticHandler.About)
		r.Get(handler.RouteContact, staticHandler.Contact)

		// Auth routes, rate limited
		r.Group(func(r chi.Router) {
			r.Use(publicRateLimiter.Middleware())
			r.Get(handler.RouteRegister, authHandler.RegisterForm)
			r.Post(handler.RouteRegister, authHandler.Register)
			r.Get(handler.RouteLogin, authHandler.LoginForm)
			r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
			r.With(middleware.RequireUser).Get(handler.RouteLogout, authHandler.Logout)
		})

		// Post management, admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminWithEventLog(eventService))
			r.Get(handler.RouteNewPost, postsHandler.NewForm)
			r.Post(handler.RouteNewPost, postsHandler.Create)
			r.Get(handler.RouteEditPostID, postsHandler.EditForm)
			r.Post(handler.RouteEditPostID, postsHandler.Update)
			r.Get(handler.RouteDeleteID, postsHandler.Delete)
		})
	})

	// Static assets: embedded, cache for 1 year
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	assetHandler := middleware.StaticCache(31536000, true)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/*", assetHandler)

	// 404 Not Found handler
	r.NotFound(postsHandler.NotFound)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
