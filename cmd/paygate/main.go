// Command paygate runs the multi-tenant ISO 20022 payment-message
// gateway: the HTTP ingress surface, the Flow Engine, and the
// background monitor, wired against Postgres and Redis.
//
// Exit codes: 0 clean shutdown, 1 startup failure (infrastructure
// unreachable, migrations failed), 2 invalid configuration, 3
// unrecoverable runtime error.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fintechrail/paygate/internal/auth"
	"github.com/fintechrail/paygate/internal/cache"
	"github.com/fintechrail/paygate/internal/clearingadapter"
	"github.com/fintechrail/paygate/internal/config"
	"github.com/fintechrail/paygate/internal/correlator"
	"github.com/fintechrail/paygate/internal/datastore"
	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/health"
	"github.com/fintechrail/paygate/internal/idempotency"
	"github.com/fintechrail/paygate/internal/ingress"
	"github.com/fintechrail/paygate/internal/monitor"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/queue"
	"github.com/fintechrail/paygate/internal/resiliency"
	"github.com/fintechrail/paygate/internal/router"
	"github.com/fintechrail/paygate/internal/secret"
	"github.com/fintechrail/paygate/internal/tenant"
	"github.com/fintechrail/paygate/internal/transform"
	"github.com/fintechrail/paygate/internal/validate"
)

func main() {
	os.Exit(run())
}

// components holds every long-lived collaborator startup wires, so
// serve can start them and shutdown can stop them without a second
// pass through the wiring order.
type components struct {
	logger  observe.Logger
	obs     observe.Observer
	pool    *pgxpool.Pool
	rdb     redis.UniversalClient
	monitor *monitor.Monitor
	server  *http.Server
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := startup(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: startup failed: %v\n", err)
		return 1
	}

	if err := serve(ctx, cfg, c); err != nil {
		c.logger.Error(context.Background(), "gateway exited with error", observe.Field{Key: "error", Value: err.Error()})
		return 3
	}
	return 0
}

// startup connects to infrastructure, runs migrations, and wires every
// domain collaborator. Any failure here is a startup failure (exit 1):
// the gateway never partially starts.
func startup(ctx context.Context, cfg *config.Config) (*components, error) {
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "paygate",
		Tracing:     observe.TracingConfig{Enabled: cfg.OTLPEndpoint != "", Exporter: otlpOrNone(cfg), SamplePct: 1.0},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: cfg.LogLevel},
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	logger := obs.Logger()

	logger.Info(ctx, "starting paygate", observe.Field{Key: "listen", Value: cfg.ListenAddr()}, observe.Field{Key: "systemId", Value: cfg.SystemID})

	pool, err := datastore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if !cfg.SkipMigrations {
		if err := datastore.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	// Resiliency registry, seeded with the registry's own defaults. The
	// default tenant's persisted overrides are loaded into it further
	// down, after the mux is built (best-effort: a load failure is logged,
	// not fatal). Other tenants' persisted overrides are not loaded.
	breakers := resiliency.NewRegistry(resiliency.DefaultPolicyConfig())
	resiliencyStore := datastore.NewResiliencyConfigStore(pool)

	// Secret resolution: clearing-adapter Endpoint/credential fields may
	// reference "secretref:env:<VAR>" to keep per-scheme mTLS material
	// and hostnames out of the adapter repository's plaintext rows.
	secretResolver := secret.NewResolver(false, secret.NewEnvProvider())

	apiKeyStore := datastore.NewAPIKeyStore(pool)
	authenticator := buildAuthenticator(cfg, apiKeyStore)
	authorizer := buildAuthorizer(cfg)

	adapters := clearingadapter.NewPGRepository(pool)
	httpClient := clearingadapter.NewHTTPClient(secretResolver, &http.Client{Timeout: 30 * time.Second})
	dispatcher := clearingadapter.NewDispatcher(adapters, breakers, httpClient)

	rtr := router.New(adapters)
	flowRouter := router.NewFlowAdapter(rtr, router.ResolveFromContext)

	transformer := transform.New(cfg.SystemID)
	validator := validate.New()

	flowStore := flow.NewPGStore(pool)

	queueStore := queue.NewPGStore(pool)
	scheduler := queue.NewScheduler(rdb)
	queueManager := queue.NewManager(queueStore, scheduler, dispatcher, logger)

	// correlatorIdx is the in-process index an ASYNC-mode request
	// registers into on dispatch, and the reverse-leg scheme-response
	// endpoint resolves against when the clearing system's own
	// response arrives out of band.
	correlatorIdx := correlator.New()

	dispatchMiddleware, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building dispatch middleware: %w", err)
	}

	engine := flow.New(flow.Config{
		Store:       flowStore,
		Router:      flowRouter,
		Validator:   validator,
		Transformer: transformer,
		Client:      httpClient,
		Breakers:    breakers,
		Queue:       queue.EnqueueOnly{Manager: queueManager},
		QueueExpiry: cfg.QueuedMessageTTL,
		SystemID:    cfg.SystemID,
		Logger:      logger,
		Correlator:  correlatorIdx,
		Middleware:  dispatchMiddleware,
	})

	idempotencyGate := idempotency.NewGate(idempotency.NewPGStore(pool), 24*time.Hour)

	tenantResolver := tenant.NewResolver("X-Business-Unit")

	aggregator := health.NewAggregator()
	registerHealthCheckers(aggregator, pool, rdb)

	routeCache := cache.NewMemoryCache(cache.DefaultPolicy())

	mon := monitor.New(monitor.Config{
		Aggregator: aggregator,
		Breakers:   breakers,
		Cache:      routeCache,
		Drainer:    queueManager,
		Sweeper:    queueManager,
		Logger:     logger,
	})

	journeys := datastore.NewUETRTrackingStore(pool)
	admin := &ingress.AdminHandlers{
		Aggregator: aggregator,
		Monitor:    mon,
		Breakers:   breakers,
		Journeys:   journeys,
		Logger:     logger,
	}

	mux := ingress.NewServer(ingress.Deps{
		Logger:             logger,
		Engine:             engine,
		IdempotencyGate:    idempotencyGate,
		TenantResolver:     tenantResolver,
		Authenticator:      authenticator,
		Authorizer:         authorizer,
		Admin:              admin,
		Aggregator:         aggregator,
		ResponseIdentifier: transformer,
		ResponseCorrelator: correlatorIdx,
		CORSOrigins:        cfg.CORSAllowedOrigins,
	})

	if err := resiliencyStore.LoadInto(ctx, tenant.DefaultTenantID, breakers); err != nil {
		logger.Warn(ctx, "loading persisted resiliency overrides", observe.Field{Key: "error", Value: err.Error()})
	}

	return &components{
		logger: logger,
		obs:    obs,
		pool:   pool,
		rdb:    rdb,
		monitor: mon,
		server: &http.Server{
			Addr:         cfg.ListenAddr(),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// serve starts the HTTP server and the background monitor, running
// until ctx is cancelled or either one exits. On cancellation it shuts
// the HTTP server down within cfg.ShutdownDrainWindow; the monitor stops
// with ctx and is not waited for. When either one exits first, serve
// returns its error (nil on a clean exit) without shutting the HTTP
// server down.
func serve(ctx context.Context, cfg *config.Config, c *components) error {
	defer c.pool.Close()
	defer func() { _ = c.rdb.Close() }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.obs.Shutdown(shutdownCtx)
	}()

	errCh := make(chan error, 2)

	go func() {
		c.logger.Info(ctx, "gateway listening", observe.Field{Key: "addr", Value: c.server.Addr})
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		if err := c.monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("monitor: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		c.logger.Info(context.Background(), "shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDrainWindow)
		defer cancel()
		return c.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// buildAuthenticator composes whichever of JWT/JWKS and API-key
// authentication are configured. Zero configured means nil —
// ingress.Authenticate treats a nil Authenticator as a passthrough, per
// its own documented contract. Both configured means a
// CompositeAuthenticator: a request carrying X-API-Key authenticates
// off the key store even when OIDC is also configured, since the two
// credential kinds target different caller populations (machine
// integrations vs. human/OIDC-fronted callers) and a request only ever
// carries one.
func buildAuthenticator(cfg *config.Config, apiKeyStore auth.APIKeyStore) auth.Authenticator {
	var authenticators []auth.Authenticator

	if cfg.OIDCIssuerURL != "" {
		keyProvider := auth.NewJWKSKeyProvider(auth.JWKSConfig{
			URL:      cfg.OIDCIssuerURL + "/.well-known/jwks.json",
			CacheTTL: cfg.JWKSRefreshTTL,
		})
		authenticators = append(authenticators, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:      cfg.OIDCIssuerURL,
			Audience:    cfg.OIDCAudience,
			TenantClaim: "tenant_id",
			RolesClaim:  "roles",
		}, keyProvider))
	}

	if cfg.APIKeyAuthEnabled {
		authenticators = append(authenticators, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, apiKeyStore))
	}

	switch len(authenticators) {
	case 0:
		return nil
	case 1:
		return authenticators[0]
	default:
		return auth.NewCompositeAuthenticator(authenticators...)
	}
}

// buildAuthorizer gates the /admin surface behind cfg.AdminRole. Every
// role configuration boils down to one permission check: no caller
// population in this gateway needs anything finer-grained than "is this
// an operator", so RoleConfig's Permissions list (rather than its
// route-oriented AllowedRoutes/DeniedRoutes fields) is the only part of
// SimpleRBACAuthorizer this deployment exercises.
func buildAuthorizer(cfg *config.Config) auth.Authorizer {
	if cfg.AdminRole == "" {
		return auth.AllowAllAuthorizer{}
	}
	return auth.NewSimpleRBACAuthorizer(auth.RBACConfig{
		Roles: map[string]auth.RoleConfig{
			cfg.AdminRole: {Permissions: []string{"admin:*"}},
		},
	})
}

func registerHealthCheckers(aggregator *health.Aggregator, pool *pgxpool.Pool, rdb redis.UniversalClient) {
	aggregator.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
		if err := pool.Ping(ctx); err != nil {
			return health.Unhealthy("database unreachable", err)
		}
		return health.Healthy("database reachable")
	}))
	aggregator.Register("redis", health.NewCheckerFunc("redis", func(ctx context.Context) health.Result {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return health.Unhealthy("redis unreachable", err)
		}
		return health.Healthy("redis reachable")
	}))
}

func otlpOrNone(cfg *config.Config) string {
	if cfg.OTLPEndpoint == "" {
		return "none"
	}
	return "otlp"
}
