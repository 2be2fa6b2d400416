package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/auth"
	"nomina/internal/domain/directory"
	"nomina/internal/domain/payroll"
	"nomina/internal/platform/config"
	cryptoutil "nomina/internal/platform/crypto"
	"nomina/internal/platform/db"
	"nomina/internal/platform/email"
	"nomina/internal/platform/jobs"
	"nomina/internal/platform/metrics"
	"nomina/internal/transport/http/api"
	adminhandler "nomina/internal/transport/http/handlers/admin"
	authhandler "nomina/internal/transport/http/handlers/auth"
	directoryhandler "nomina/internal/transport/http/handlers/directory"
	payrollhandler "nomina/internal/transport/http/handlers/payroll"
	"nomina/internal/transport/http/middleware"
)

// Tighter window for credential guessing than the general API limit.
const loginRateLimitPerMinute = 10

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Jobs    *jobs.Service

	cancelJobs context.CancelFunc
}

// New wires the full application from configuration: database pool,
// migrations and seed, crypto, services, background jobs, and the HTTP
// router. Callers own the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	rates, err := payroll.RatesFromStrings(cfg.AFPRate, cfg.ARSRate)
	if err != nil {
		pool.Close()
		return nil, err
	}

	adminHash := ""
	if cfg.AdminPassword != "" {
		adminHash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	directoryService := directory.NewService(directory.NewStore(pool, crypto))
	payrollService := payroll.NewService(directoryService, payroll.NewEngine(rates), email.New(cfg), cfg.EmailFrom)

	collector := metrics.New()

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	jobsService := jobs.New(pool, crypto)
	jobsService.Start(jobsCtx, cfg.EncryptionBackfillInterval)

	app := &App{
		Config:     cfg,
		DB:         pool,
		Metrics:    collector,
		Jobs:       jobsService,
		cancelJobs: cancelJobs,
	}
	app.Router = app.buildRouter(adminHash, directoryService, payrollService)
	return app, nil
}

// Close stops the background worker and releases the database pool.
func (a *App) Close() {
	if a.cancelJobs != nil {
		a.cancelJobs()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) buildRouter(adminHash string, directoryService *directory.Service, payrollService *payroll.Service) http.Handler {
	cfg := a.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		loginLimiter := middleware.RateLimit(loginRateLimitPerMinute, time.Minute,
			middleware.WithKeyFunc(middleware.AuthEmailOrIPKey("email")))
		authHandler := authhandler.NewHandler(cfg.AdminEmail, adminHash, cfg.JWTSecret)
		r.With(loginLimiter).Post("/auth/login", authHandler.HandleLogin)

		directoryhandler.NewHandler(directoryService).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, a.Metrics).RegisterRoutes(r)
		adminhandler.NewHandler(a.Jobs).RegisterRoutes(r)
	})

	return router
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func Run() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("nomina server listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
