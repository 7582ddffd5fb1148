package main

import (
	"context"
	"encoding/json"
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

	fshttp "github.com/fitstack/fitstack/internal/adapter/http"
	idpadapter "github.com/fitstack/fitstack/internal/adapter/idp"
	fsnats "github.com/fitstack/fitstack/internal/adapter/nats"
	"github.com/fitstack/fitstack/internal/adapter/natskv"
	"github.com/fitstack/fitstack/internal/adapter/otel"
	"github.com/fitstack/fitstack/internal/adapter/postgres"
	"github.com/fitstack/fitstack/internal/adapter/ristretto"
	"github.com/fitstack/fitstack/internal/adapter/tiered"
	"github.com/fitstack/fitstack/internal/config"
	"github.com/fitstack/fitstack/internal/logger"
	"github.com/fitstack/fitstack/internal/middleware"
	"github.com/fitstack/fitstack/internal/port/cache"
	"github.com/fitstack/fitstack/internal/port/idp"
	"github.com/fitstack/fitstack/internal/port/messagequeue"
	"github.com/fitstack/fitstack/internal/registry"
	"github.com/fitstack/fitstack/internal/resilience"
	"github.com/fitstack/fitstack/internal/resolver"
	"github.com/fitstack/fitstack/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	log.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"auth_enabled", cfg.Auth.Enabled,
		"nats_enabled", cfg.NATS.Enabled,
	)

	ctx := context.Background()

	// --- Telemetry ---

	otelShutdown, err := otel.Init(ctx, cfg.Logging.Service, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Databases ---

	if err := postgres.RunSystemMigrations(ctx, cfg.Directory); err != nil {
		return fmt.Errorf("system migrations: %w", err)
	}
	log.Info("directory migrations applied")

	reg := registry.New(cfg.Directory, cfg.Tenants, log, registry.WithObserver(metrics))
	defer reg.CloseAll()

	systemPool, err := reg.System(ctx)
	if err != nil {
		return fmt.Errorf("directory pool: %w", err)
	}
	dir := postgres.NewDirectoryStore(systemPool)

	// --- NATS (optional) ---

	var queue messagequeue.Queue
	var q *fsnats.Queue
	if cfg.NATS.Enabled {
		q, err = fsnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := q.Drain(); err != nil {
				log.Warn("nats drain", "error", err)
			}
		}()
		queue = q
	}

	// --- Tenant resolution ---

	l1, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()

	// With NATS, layer a shared KV bucket under the in-process cache so
	// tenants resolved on one instance are warm on all of them.
	var resolverCache cache.Cache = l1
	if q != nil {
		kv, err := q.KeyValue(ctx, "fitstack-tenants", cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		resolverCache = tiered.New(l1, natskv.New(kv), cfg.Cache.TTL)
	}

	res := resolver.New(dir, log,
		resolver.WithCache(resolverCache, cfg.Cache.TTL),
		resolver.WithDevOverride(cfg.Tenants.DevOverrideSlug, cfg.Tenants.DevHosts),
		resolver.WithObserver(metrics),
	)

	if queue != nil {
		// Converge peers on tenant directory changes: drop the cached
		// record and the pooled connection so the next request re-resolves.
		cancelEvents, err := queue.Subscribe(ctx, "tenants.>", func(ctx context.Context, subject string, data []byte) error {
			var payload messagequeue.TenantEventPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("decode %s: %w", subject, err)
			}
			res.Invalidate(ctx, payload.Slug)
			reg.Evict(payload.DatabaseName)
			log.Info("tenant event applied", "subject", subject, "slug", payload.Slug)
			return nil
		})
		if err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		defer cancelEvents()
	}

	// --- Identity provider ---

	var provisioner idp.Provisioner
	if cfg.IdP.BaseURL != "" {
		client := idpadapter.NewClient(cfg.IdP)
		client.SetBreaker(resilience.NewBreaker(5, 30*time.Second))
		provisioner = client
	} else {
		provisioner = idpadapter.NewStub(log)
	}

	// --- Services ---

	admin := postgres.NewAdmin(systemPool, cfg.Tenants)
	tenantSvc := service.NewTenantService(dir, admin, reg, provisioner, queue, res, cfg.Tenants, log)
	authSvc := service.NewAuthService(cfg.Auth)

	handlers := &fshttp.Handlers{
		Tenants:       tenantSvc,
		Organizations: service.NewOrganizationService(),
		RoleConfigs:   service.NewRoleConfigService(),
		Users:         service.NewUserService(provisioner, log),
		Auth:          authSvc,
		Readiness:     dir,
		Denials:       metrics,
	}

	// --- HTTP ---

	rl := middleware.NewRateLimiter(50, 100)
	stopCleanup := rl.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(fshttp.CORS(cfg.Server.CORSOrigin))
	r.Use(fshttp.SecurityHeaders)
	r.Use(fshttp.Logger)
	r.Use(otel.HTTPMiddleware("fitstack"))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	fshttp.MountRoutes(r, handlers, fshttp.Middlewares{
		TenantContext: middleware.TenantContext(res, reg, log),
		Principal:     middleware.Principal(authSvc, cfg.Auth.Enabled, log),
		RateLimit:     rl.Handler,
		DevTokens:     cfg.Tenants.DevOverrideSlug != "",
	})

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
		}
	}()

	<-done
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
