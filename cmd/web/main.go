package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/cpe-tracker/internal/auth"
	"github.com/crucial707/cpe-tracker/internal/config"
	"github.com/crucial707/cpe-tracker/internal/db"
	"github.com/crucial707/cpe-tracker/internal/handlers"
	"github.com/crucial707/cpe-tracker/internal/middleware"
	"github.com/crucial707/cpe-tracker/internal/repo"
	"github.com/crucial707/cpe-tracker/internal/repo/memory"
	"github.com/crucial707/cpe-tracker/internal/service"
)

// backend is the persistence a router is built over.
type backend struct {
	users   service.UserStore
	records service.RecordStore
	ping    func(context.Context) error
	close   func() error
}

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SecretKey == config.DefaultSecretKey {
		slog.Warn("SECRET_KEY not set; using the insecure development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer be.close()

	r, err := newRouter(be, cfg)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			slog.Info("CPE tracker listening", "addr", "https://localhost:"+cfg.Port, "store", cfg.Store)
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		slog.Info("CPE tracker listening", "addr", "http://localhost:"+cfg.Port, "store", cfg.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}

func setupLogging(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openBackend connects the configured store. Postgres gets its schema
// migrated first unless AUTO_MIGRATE=false.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memoryBackend(memory.NewStore()), nil
	}

	if cfg.AutoMigrate {
		if err := db.Run(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	return &backend{
		users:   repo.NewUserRepo(database),
		records: repo.NewRecordRepo(database),
		ping:    database.PingContext,
		close:   database.Close,
	}, nil
}

func memoryBackend(st *memory.Store) *backend {
	return &backend{
		users:   st.Users(),
		records: st.Records(),
		ping:    st.Ping,
		close:   func() error { return nil },
	}
}

// newRouter wires services, middleware and routes over be.
func newRouter(be *backend, cfg config.Config) (chi.Router, error) {
	users := service.NewUsers(be.users, auth.NewPasswordHasher(cfg.BcryptCost))
	records := service.NewRecords(be.records)
	sessions := auth.NewSessionManager([]byte(cfg.SecretKey), time.Duration(cfg.SessionTTLHours)*time.Hour)

	srv, err := handlers.NewServer(users, records, sessions, cfg.CookieSecure || cfg.TLSEnabled())
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.MaxBytes(cfg.MaxBodyBytes))

	// Health, readiness and metrics (no session)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := be.ping(ctx); err != nil {
			slog.Warn("readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.AuthRateLimiter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessions, users))

		// Public
		r.Get("/register", srv.RegisterForm)
		r.With(limiter.Middleware).Post("/register", srv.Register)
		r.Get("/login", srv.LoginForm)
		r.With(limiter.Middleware).Post("/login", srv.Login)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/", srv.Dashboard)
			r.Get("/logout", srv.Logout)
			r.Get("/records", srv.ListRecords)
			r.Get("/add", srv.AddRecordForm)
			r.Post("/add", srv.AddRecord)
			r.Get("/edit/{id}", srv.EditRecordForm)
			r.Post("/edit/{id}", srv.EditRecord)
			r.Post("/delete/{id}", srv.DeleteRecord)
			r.Get("/export", srv.ExportForm)
			r.Post("/export", srv.Export)
		})
	})

	return r, nil
}
