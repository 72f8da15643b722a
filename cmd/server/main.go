package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/waitlist/backend/internal/config"
	"github.com/waitlist/backend/internal/handler"
	"github.com/waitlist/backend/internal/jobs"
	"github.com/waitlist/backend/internal/logging"
	"github.com/waitlist/backend/internal/metrics"
	"github.com/waitlist/backend/internal/notify"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/service"
	"github.com/waitlist/backend/internal/storage"
	"github.com/waitlist/backend/pkg/auth"
	"github.com/waitlist/backend/pkg/mailer"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// recoveryLogger sends recovered panics to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("panic recovered", "panic", fmt.Sprint(v...))
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	plan, err := cfg.PhonePlan()
	if err != nil {
		logging.Fatal("invalid phone plan", "error", err)
	}

	waitlistRepo := repository.NewPgWaitlistRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	dispatchRepo := repository.NewPgEmailDispatchRepository(pool)

	if cfg.Email.ResendAPIKey == "" {
		slog.Warn("EMAIL_RESEND_API_KEY is not set, outbound email is disabled")
	}
	dispatcher, err := notify.New(mailer.NewClient(cfg.Email.ResendAPIKey), dispatchRepo, notify.Options{
		From:           cfg.Email.From,
		NotifyTo:       cfg.Email.NotifyTo,
		NotifySubject:  cfg.Email.NotifySubject,
		WelcomeSubject: cfg.Email.WelcomeSubject,
		DailyLimit:     cfg.Email.DailyLimit,
		Timeout:        cfg.Email.Timeout,
	})
	if err != nil {
		logging.Fatal("failed to build email dispatcher", "error", err)
	}

	waitlistService := service.NewWaitlistService(waitlistRepo, plan, dispatcher)
	contactService := service.NewContactService(contactRepo, service.ContactOptions{
		Limits:   cfg.RateLimits(),
		Notifier: dispatcher,
		Strict:   cfg.RateLimit.Strict,
	})
	exportService := service.NewExportService(waitlistRepo, storage.NewLocalStorage(cfg.ExportDir))

	throttle, err := handler.NewThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst, cfg.Throttle.CacheSize, cfg.TrustedProxyCount)
	if err != nil {
		logging.Fatal("failed to build request throttle", "error", err)
	}

	h := handler.New(pool, "Waitlist API")
	waitlistHandler := handler.NewWaitlistHandler(waitlistService)
	contactHandler := handler.NewContactHandler(contactService, cfg.TrustedProxyCount)
	exportHandler := handler.NewExportHandler(exportService, waitlistService)
	admin := auth.RequireAdminKey(cfg.AdminKey)
	if cfg.AdminKey == "" {
		slog.Warn("ADMIN_KEY is not set, admin routes are disabled")
	}

	mux := http.NewServeMux()
	route := func(pattern string, next http.Handler) {
		mux.Handle(pattern, handler.Instrument(pattern, next))
	}
	route("GET /{$}", http.HandlerFunc(h.Root))
	route("GET /health", http.HandlerFunc(h.Health))
	route("POST /waitlist", throttle.Middleware(http.HandlerFunc(waitlistHandler.Join)))
	route("POST /contact", throttle.Middleware(http.HandlerFunc(contactHandler.Submit)))

	// Admin routes (shared secret via ?key= or X-Admin-Key)
	route("GET /admin/export", admin(http.HandlerFunc(exportHandler.Waitlist)))
	route("GET /admin/contacts", admin(http.HandlerFunc(contactHandler.AdminList)))
	route("PATCH /admin/contacts/{id}", admin(http.HandlerFunc(contactHandler.UpdateFlags)))

	var root http.Handler = handler.RequestLogger(mux)
	root = handler.SecurityHeaders(root)
	root = handler.CORS(cfg.CORSAllowedOrigins)(root)
	root = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(root)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	scheduler := jobs.NewScheduler(slog.Default())
	if _, err := scheduler.Register(cfg.Jobs.PruneDispatches, &jobs.PruneDispatches{
		Repo:      dispatchRepo,
		Retention: cfg.DispatchRetention(),
	}); err != nil {
		logging.Fatal("failed to schedule job", "error", err)
	}
	if _, err := scheduler.Register(cfg.Jobs.ExportSnapshot, &jobs.ExportSnapshot{Export: exportService}); err != nil {
		logging.Fatal("failed to schedule job", "error", err)
	}
	scheduler.Start()

	var stats *metrics.Server
	if cfg.Stats.ListenAddr != "" {
		stats = metrics.NewServer(cfg.Stats.ListenAddr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if stats != nil {
		g.Go(func() error {
			slog.Info("metrics server listening", "addr", cfg.Stats.ListenAddr)
			if err := stats.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		scheduler.Shutdown(shutdownCtx)
		if stats != nil {
			if err := stats.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
	}

	// In-flight notification emails finish on their own timeouts.
	dispatcher.Wait()
	slog.Info("server stopped")
}
