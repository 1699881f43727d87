package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/visulab/backend/internal/featureflags"
	"github.com/visulab/backend/internal/handler"
	"github.com/visulab/backend/internal/infrastructure/logger"
	"github.com/visulab/backend/internal/infrastructure/redis"
	"github.com/visulab/backend/internal/observability/metrics"
	"github.com/visulab/backend/internal/observability/tracing"
	"github.com/visulab/backend/internal/reliability/circuitbreaker"
	"github.com/visulab/backend/internal/reliability/retry"
	"github.com/visulab/backend/internal/repository"
	"github.com/visulab/backend/internal/security"
	"github.com/visulab/backend/internal/security/audit"
	"github.com/visulab/backend/internal/security/auth"
	"github.com/visulab/backend/internal/security/middleware"
	"github.com/visulab/backend/internal/security/ratelimit"
	"github.com/visulab/backend/internal/service"
	"github.com/visulab/backend/internal/worker"
	"github.com/visulab/backend/pkg/config"
	"github.com/visulab/backend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting VisuLab server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Optional tracing
	shutdownTracing, err := tracing.Init(ctx, log, "visulab-backend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect Postgres, retrying while the database comes up
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "postgres connect",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, database.FromEnv(), log)
		})
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Connect Redis. The dashboard degrades to direct computation
	// when Redis is missing, so failure here is non-fatal.
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, dashboard cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 6. Repositories
	shortageRepo := repository.NewPostgresShortageRepository(db, log)
	companyRepo := repository.NewPostgresCompanyRepository(db, log)
	userRepo := repository.NewPostgresUserRepository(db, log)
	purchaseRepo := repository.NewPostgresPurchaseRepository(db, log)

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "visulab")
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)

	// 8. Live feed (flag-gated)
	var feedHandler *handler.FeedHandler
	var feed service.FeedPublisher
	if featureflags.Enabled("live_feed") {
		feedHandler = handler.NewFeedHandler(tokenManager, cfg.CORSAllowedOrigins, log)
		feed = feedHandler
		log.Info("live feed enabled")
	}

	// 9. Services
	cacheBreaker := circuitbreaker.NewCircuitBreaker(3, 2, 30*time.Second)
	cacheBreaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		log.Warn("dashboard cache breaker state change",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})

	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	authService := service.NewAuthService(userRepo, tokenManager, tokenTTL, cfg.DefaultUserPassword, log)
	shortageService := service.NewShortageService(shortageRepo, feed, log)
	dashboardService := service.NewDashboardService(shortageRepo, redisClient, cacheBreaker, 5*time.Minute, log)
	reportService := service.NewReportService(shortageRepo, companyRepo, log)

	// 10. Handlers
	authHandler := handler.NewAuthHandler(authService, rateLimiter, log)
	shortagesHandler := handler.NewShortagesHandler(shortageService, dashboardService, auditLogger, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	reportHandler := handler.NewReportHandler(reportService, auditLogger, log)
	catalogHandler := handler.NewCatalogHandler(log)
	adminUsersHandler := handler.NewAdminUsersHandler(authService, auditLogger, log)
	adminCompaniesHandler := handler.NewAdminCompaniesHandler(companyRepo, dashboardService, log)
	adminPurchasesHandler := handler.NewAdminPurchasesHandler(purchaseRepo, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 11. Routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/change-password", authHandler.ChangePassword)
	mux.Handle("GET /api/catalog", catalogHandler)
	mux.HandleFunc("POST /api/shortages", shortagesHandler.Create)
	mux.HandleFunc("GET /api/shortages", shortagesHandler.List)
	mux.HandleFunc("GET /api/dashboard", dashboardHandler.Get)
	mux.HandleFunc("GET /api/reports/shortages", reportHandler.Download)

	guard := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return middleware.RequirePermission(authz, perm, log, h)
	}
	mux.Handle("PUT /api/shortages/{id}", guard(security.PermEditRecord, shortagesHandler.Update))
	mux.Handle("DELETE /api/shortages/{id}", guard(security.PermDeleteRecord, shortagesHandler.Delete))
	mux.Handle("GET /api/admin/users", guard(security.PermManageUsers, adminUsersHandler.List))
	mux.Handle("POST /api/admin/users", guard(security.PermManageUsers, adminUsersHandler.Create))
	mux.Handle("PUT /api/admin/users/{id}", guard(security.PermManageUsers, adminUsersHandler.Update))
	mux.Handle("DELETE /api/admin/users/{id}", guard(security.PermManageUsers, adminUsersHandler.Delete))
	mux.Handle("GET /api/admin/companies", guard(security.PermManageCompanies, adminCompaniesHandler.List))
	mux.Handle("POST /api/admin/companies", guard(security.PermManageCompanies, adminCompaniesHandler.Create))
	mux.Handle("PUT /api/admin/companies/{id}", guard(security.PermManageCompanies, adminCompaniesHandler.Update))
	mux.Handle("DELETE /api/admin/companies/{id}", guard(security.PermManageCompanies, adminCompaniesHandler.Delete))
	mux.Handle("GET /api/admin/purchases", guard(security.PermManagePurchases, adminPurchasesHandler.List))
	mux.Handle("POST /api/admin/purchases", guard(security.PermManagePurchases, adminPurchasesHandler.Create))
	mux.Handle("DELETE /api/admin/purchases/{id}", guard(security.PermManagePurchases, adminPurchasesHandler.Delete))

	if feedHandler != nil {
		mux.Handle("GET /ws/feed", feedHandler)
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// Protected stack. JWT runs first so the rate limiter and audit log
	// see the authenticated user's claims.
	protected := middleware.JWTMiddleware(tokenManager, log)(
		middleware.RateLimitMiddleware(rateLimiter, log)(
			middleware.AuditMiddleware(auditLogger)(mux),
		),
	)

	// CORS sits in front of JWT so cross-origin preflights succeed
	// without a token.
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		protected.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> sanitize -> content type -> CORS -> JWT -> rate limit -> audit
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.SanitizeInputs(log)(
				middleware.ValidateJSONContentType(log)(handlerWithCORS),
			),
		),
		log,
	)

	// 12. Background stats refresher
	statsWorker := worker.NewStatsWorker(
		shortageRepo,
		dashboardService,
		log,
		time.Duration(cfg.StatsRefreshMinutes)*time.Minute,
	)
	go statsWorker.Start(ctx)

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := audit.WithRequestID(r.Context(), reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
