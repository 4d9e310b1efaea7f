// Command server runs the portfolio, admin and marketplace API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appcontact "github.com/portfolio/backend/internal/application/contact"
	appcontent "github.com/portfolio/backend/internal/application/content"
	appfeed "github.com/portfolio/backend/internal/application/feed"
	appidentity "github.com/portfolio/backend/internal/application/identity"
	appmarketplace "github.com/portfolio/backend/internal/application/marketplace"
	appmedia "github.com/portfolio/backend/internal/application/media"
	"github.com/portfolio/backend/internal/application/notification"
	"github.com/portfolio/backend/internal/infrastructure/auth"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/portfolio/backend/internal/infrastructure/contentfile"
	"github.com/portfolio/backend/internal/infrastructure/event"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/infrastructure/mail"
	"github.com/portfolio/backend/internal/infrastructure/notify"
	"github.com/portfolio/backend/internal/infrastructure/ogpreview"
	"github.com/portfolio/backend/internal/infrastructure/otp"
	"github.com/portfolio/backend/internal/infrastructure/persistence"
	"github.com/portfolio/backend/internal/infrastructure/ratelimit"
	"github.com/portfolio/backend/internal/infrastructure/session"
	"github.com/portfolio/backend/internal/infrastructure/storage"
	"github.com/portfolio/backend/internal/infrastructure/telemetry"
	"github.com/portfolio/backend/internal/infrastructure/video"
	"github.com/portfolio/backend/internal/interfaces/http/handler"
	"github.com/portfolio/backend/internal/interfaces/http/middleware"
	"github.com/portfolio/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 30 * time.Second
	eventTimeout    = 10 * time.Second
	feedCacheTTL    = 10 * time.Minute
)

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler -o ../../docs --outputTypes go,json --parseDependency

//	@title			Portfolio API
//	@version		1.0
//	@description	Blog, projects, storefront and contact API behind the portfolio site, with a two-factor admin area.

//	@contact.name	Site owner
//	@contact.url	https://github.com/portfolio/backend

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from /auth/login or /auth/verify-otp. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting portfolio backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		panic(err)
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		TracesEnabled:     cfg.Telemetry.Enabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, baseLog)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			baseLog.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	log := providers.BridgeLogger(baseLog, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	defer func() { _ = profiler.Stop() }()
	if profiler.IsEnabled() && providers.TracingEnabled() {
		providers.EnableSpanProfiles()
	}

	var meter metric.Meter
	if providers.MetricsEnabled() {
		meter = providers.Meter(cfg.Telemetry.ServiceName)
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithSetup(func(g *gorm.DB) error {
			return telemetry.InstrumentDB(g, telemetry.DBConfig{
				Tracing:            cfg.Telemetry.DBTraceEnabled,
				SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
			}, meter, log)
		}),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("sqlite schema: %w", err)
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Key/value store for sessions, one-time codes, the blacklist and response caches
	store, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Repositories
	admins := persistence.NewGormAdminRepository(db.DB)
	posts := persistence.NewGormPostRepository(db.DB)
	projects := persistence.NewGormProjectRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	messages := persistence.NewGormContactMessageRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Event bus and subscribers
	bus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch(eventTimeout))
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		_ = bus.Stop(stopCtx)
	}()

	mailer, err := mail.NewSender(cfg.Mail, log)
	if err != nil {
		return err
	}
	webhook := notify.NewWebhook(cfg.Webhook, log)
	site := notification.Site{Name: cfg.App.SiteTitle, BaseURL: cfg.App.BaseURL, OwnerEmail: cfg.App.OwnerEmail}
	notification.Register(bus,
		event.NewIdempotentHandler(notification.NewWebhookHandler(webhook, log), store, log,
			event.WithHandlerName("webhook")),
		event.NewIdempotentHandler(notification.NewOwnerMailHandler(mailer, site, log), store, log,
			event.WithHandlerName("owner_mail")),
		event.NewIdempotentHandler(notification.NewOrderConfirmationHandler(orders, mailer, site, log), store, log,
			event.WithHandlerName("order_confirmation")),
		notification.NewAuditHandler(log),
	)
	if meter != nil {
		siteMetrics, err := telemetry.NewSiteMetrics(meter)
		if err != nil {
			return fmt.Errorf("site metrics: %w", err)
		}
		bus.Subscribe(siteMetrics)
	}

	// Application services
	feeds := appfeed.NewService(posts, projects, products, store, feedCacheTTL, appfeed.Site{
		BaseURL:     cfg.App.BaseURL,
		Title:       cfg.App.SiteTitle,
		Description: cfg.App.SiteDescription,
		Language:    cfg.App.Language,
	})
	contentService := appcontent.NewService(posts, projects, feeds, log)
	marketplaceService := appmarketplace.NewService(products, orders, uow, bus, feeds, log)

	contactLimiter := ratelimit.PerWindow(cfg.HTTP.ContactRateLimitPerHour, time.Hour)
	defer func() { _ = contactLimiter.Close() }()
	contactService := appcontact.NewService(messages, contactLimiter, bus, log)

	var uploads appmedia.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Storage(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		uploads = s3
	}
	mediaService := appmedia.NewService(
		video.NewClient(cfg.Video, log),
		ogpreview.NewFetcher(cfg.Preview, log),
		uploads,
		store,
		appmedia.Config{VideoCacheTTL: cfg.Video.CacheTTL, PreviewCacheTTL: cfg.Preview.CacheTTL},
	)

	tokens := auth.NewJWTService(cfg.JWT)
	sessions := session.NewStore(store, cfg.JWT.RefreshTokenExpiration)
	blacklist := auth.NewTokenBlacklist(store)
	resendLimiter := ratelimit.Every(cfg.Auth.OTPResendInterval, cfg.Auth.OTPResendBurst)
	defer func() { _ = resendLimiter.Close() }()

	authConfig := appidentity.DefaultAuthServiceConfig()
	authConfig.MaxLoginAttempts = cfg.Auth.MaxLoginAttempts
	authConfig.LockDuration = cfg.Auth.LockDuration
	authConfig.SiteName = cfg.App.SiteTitle
	authService := appidentity.NewAuthService(appidentity.AuthDependencies{
		Admins:    admins,
		Tokens:    tokens,
		Sessions:  sessions,
		Codes:     otp.NewStore(store, cfg.Auth),
		Blacklist: blacklist,
		Mailer:    mailer,
		Events:    bus,
		Resend:    resendLimiter,
	}, authConfig, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var globalLimiter *ratelimit.Keyed
	if cfg.HTTP.RateLimitEnabled {
		globalLimiter = ratelimit.PerWindow(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer func() { _ = globalLimiter.Close() }()
	}
	credentialLimiter := ratelimit.PerWindow(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	defer func() { _ = credentialLimiter.Close() }()

	adminGate := middleware.RequireAdmin(middleware.AuthConfig{
		Tokens:    tokens,
		Sessions:  sessions,
		Blacklist: blacklist,
		Logger:    log,
	})

	engine, err := router.NewEngine(engineConfig(cfg, log, meter, globalLimiter, providers.TracingEnabled(), profiler.IsEnabled()))
	if err != nil {
		return err
	}
	router.RegisterRoutes(engine, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Content:     handler.NewContentHandler(contentService),
		Marketplace: handler.NewMarketplaceHandler(marketplaceService),
		Contact:     handler.NewContactHandler(contactService),
		Media:       handler.NewMediaHandler(mediaService),
		Feed:        handler.NewFeedHandler(feeds),
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
			"database": db,
			"cache":    store,
		}),
	}, router.Guards{
		Admin:       adminGate,
		Credentials: middleware.RateLimit(credentialLimiter),
		Docs: middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, adminGate, log),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if cfg.Content.Watch && cfg.Content.Dir != "" {
		watcher := contentfile.NewWatcher(cfg.Content.Dir, contentService, log)
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func engineConfig(cfg *config.Config, log *zap.Logger, meter metric.Meter, limiter *ratelimit.Keyed, tracing, profiling bool) router.EngineConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = tracing

	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiling

	return router.EngineConfig{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
		Security:       security,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		GlobalLimiter:  limiter,
		Tracing:        tracingConfig,
		Meter:          meter,
		Profiling:      profilingConfig,
	}
}
