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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/taskboard/internal/cache"
	"github.com/yourorg/taskboard/internal/email"
	"github.com/yourorg/taskboard/internal/featureflags"
	"github.com/yourorg/taskboard/internal/handler"
	"github.com/yourorg/taskboard/internal/infrastructure/logger"
	"github.com/yourorg/taskboard/internal/infrastructure/redis"
	"github.com/yourorg/taskboard/internal/notify"
	"github.com/yourorg/taskboard/internal/observability/metrics"
	"github.com/yourorg/taskboard/internal/observability/tracing"
	"github.com/yourorg/taskboard/internal/realtime"
	"github.com/yourorg/taskboard/internal/repository"
	"github.com/yourorg/taskboard/internal/security"
	"github.com/yourorg/taskboard/internal/security/audit"
	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/security/ratelimit"
	"github.com/yourorg/taskboard/internal/service"
	"github.com/yourorg/taskboard/internal/worker"
	"github.com/yourorg/taskboard/pkg/config"
	"github.com/yourorg/taskboard/pkg/database"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting taskboard server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, "taskboard", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 5. Initialize database pool
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 6. Initialize repositories and cache store
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	taskRepo := repository.NewPostgresTaskRepository(pool.GetDB(), log)
	store := cache.NewRedisStore(redisClient, log)

	// 7. Initialize notification channels
	hub := realtime.NewHub(log)
	var emailSender *email.MailgunSender
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		emailSender = email.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.EmailFrom, log)
	} else {
		log.Warn("mailgun not configured, email notifications disabled")
	}

	var dispatcher *notify.Dispatcher
	if emailSender != nil {
		dispatcher = notify.NewDispatcher(hub, emailSender, userRepo, log)
	} else {
		dispatcher = notify.NewDispatcher(hub, nil, userRepo, log)
	}

	// 8. Initialize security components
	engine := security.NewEngine(log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "taskboard")
	blacklist := auth.NewBlacklist(redisClient)
	rateLimiter := ratelimit.NewLimiter(100, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 9. Initialize services
	taskService := service.NewTaskService(taskRepo, userRepo, engine, store, dispatcher, service.TaskServiceConfig{
		CacheTTL:        cfg.CacheTTL,
		StrictCacheAuth: featureflags.Enabled("STRICT_CACHE_AUTH"),
		Invalidation:    featureflags.Enabled("CACHE_INVALIDATION"),
	}, log)
	authService := service.NewAuthService(userRepo, tokenManager, blacklist, engine, store, cfg.CacheTTL, cfg.TokenExpiry, log)

	// 10. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	wsHandler := handler.NewWSHandler(hub, cfg.CORSAllowedOrigins, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 11. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/profiles", authHandler.Profiles)
	mux.HandleFunc("GET /api/auth/profiles/{id}", authHandler.Profile)
	mux.HandleFunc("POST /api/auth/assign-manager", authHandler.AssignManager)

	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("GET /api/tasks/analytics", taskHandler.Analytics)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/assign", taskHandler.Assign)
	mux.HandleFunc("POST /api/tasks/{id}/unassign", taskHandler.Unassign)

	mux.Handle("GET /ws", wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// Chain middleware: request ID -> metrics -> CORS -> JWT -> rate limit
	// -> audit -> validation. Rate limiting sits inside JWT so the per-actor
	// window can key on the authenticated identity.
	protected := middleware.JWTMiddleware(tokenManager, blacklist, log)(
		middleware.RateLimitMiddleware(rateLimiter, cfg.AuthRateLimit, cfg.AuthRateWindow, log)(
			middleware.AuditMiddleware(auditLogger)(
				middleware.ValidateJSONContentType(log)(
					middleware.SanitizeInputs(log)(mux),
				),
			),
		),
	)

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

	rootHandler := otelhttp.NewHandler(
		withRequestID(metrics.HTTPMetricsMiddleware(handlerWithCORS), log),
		"taskboard",
	)

	// 12. Start analytics push worker in background
	analyticsWorker := worker.NewAnalyticsWorker(taskService, hub, cfg.AnalyticsInterval, log)
	go analyticsWorker.Run(ctx)

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
		slog.Duration("cache_ttl", cfg.CacheTTL),
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

	cancel()
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
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
