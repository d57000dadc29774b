package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/config"
	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/middleware"
	"github.com/simp-lee/companyemployees/internal/module/auth"
	"github.com/simp-lee/companyemployees/internal/module/company"
	"github.com/simp-lee/companyemployees/internal/module/employee"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

const (
	defaultServerTimeout = 30 * time.Second
	defaultTokenExpiry   = 24 * time.Hour
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	logger  *logger.Logger
	cfg     *config.Config
	tokens  *pkg.JWT
	timeout time.Duration
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, database, token issuing, repositories, services,
// handlers, middleware, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if !success {
			closeDB(db, log.Logger)
		}
	}()

	// 3. Migrate in debug mode only; other modes use the migrate command.
	if cfg.Server.Mode == gin.DebugMode {
		if err := Migrate(context.Background(), db); err != nil {
			return nil, err
		}
		log.Info("auto migration completed")
	}

	timeout, err := parseDurationOr(cfg.Server.Timeout, defaultServerTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timeout: %w", err)
	}

	// 4. Token issuer and optional authenticator.
	tokens, err := newTokenIssuer(cfg, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup jwt: %w", err)
	}
	defer func() {
		if !success {
			tokens.Close()
		}
	}()
	var authn *middleware.Authenticator
	if cfg.Auth.Enabled {
		authn = middleware.NewAuthenticator(tokens, cfg.Auth.PublicPaths)
	}

	// 5. Optional response cache for the employee list.
	var cache *middleware.ResponseCache
	if cfg.Server.Cache.Enabled {
		ttl, err := parseDurationOr(cfg.Server.Cache.TTL, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid server.cache.ttl: %w", err)
		}
		cache = middleware.NewResponseCache(middleware.CacheConfig{TTL: ttl, MaxSize: cfg.Server.Cache.MaxSize})
	}

	// 6. Manual dependency injection: repository → service → handler.
	paging := pkg.PagingOptions{
		DefaultPageSize: cfg.Paging.DefaultPageSize,
		MaxPageSize:     cfg.Paging.MaxPageSize,
	}
	companyRepo := company.NewCompanyRepository(db)
	employeeRepo := employee.NewEmployeeRepository(db)

	modules := []Module{
		auth.NewModule(auth.NewHandler(auth.NewService(tokens, auth.NewUserRepository(db)))),
		company.NewModule(
			company.NewCompanyHandler(company.NewCompanyService(companyRepo), paging),
			authn.RequireRoles(domain.RoleManager),
		),
		employee.NewModule(
			employee.NewEmployeeHandler(employee.NewEmployeeService(companyRepo, employeeRepo), paging),
			cache.Cache(),
		),
	}

	// 7. Create Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	metrics := middleware.NewMetrics()

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.LoggerWithConfig(log.Logger, middleware.LoggerConfig{
			SkipPaths: []string{"/health", "/metrics"},
		}),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
		metrics.Middleware(),
	)

	apiMiddleware := make([]gin.HandlerFunc, 0, 3)
	if cfg.Server.RateLimit.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   cfg.Server.RateLimit.RPS,
			Burst: cfg.Server.RateLimit.Burst,
		}))
	}
	apiMiddleware = append(apiMiddleware, authn.Authenticate(), cache.Invalidate())

	// 8. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:       modules,
		DB:            db,
		Metrics:       metrics,
		APIMiddleware: apiMiddleware,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:  engine,
		db:      db,
		logger:  log,
		cfg:     cfg,
		tokens:  tokens,
		timeout: timeout,
	}, nil
}

// Handler returns the configured HTTP handler.
func (a *App) Handler() http.Handler {
	return a.engine
}

// newTokenIssuer builds the JWT signer. Without a configured secret a random
// one is generated, which is refused when auth is enabled in release mode.
func newTokenIssuer(cfg *config.Config, log *slog.Logger) (*pkg.JWT, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if cfg.Auth.Enabled && cfg.Server.Mode == gin.ReleaseMode {
			return nil, errors.New("auth.jwt_secret is required in release mode")
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		log.Warn("no jwt_secret configured, using random secret (tokens will not survive a restart)")
	}

	expiry, err := parseDurationOr(cfg.Auth.TokenExpiry, defaultTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("invalid auth.token_expiry: %w", err)
	}

	return pkg.NewJWT(pkg.JWTOptions{
		Secret:   secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Expiry:   expiry,
	})
}

func resolveCORSConfig(mode string, cfg config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	if cfg.MaxAge != "" {
		if d, err := time.ParseDuration(cfg.MaxAge); err == nil && d > 0 {
			corsConfig.MaxAge = fmt.Sprintf("%d", int(d.Seconds()))
		}
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials

	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		return corsConfig
	}

	// Release mode without an allowlist denies cross-origin requests.
	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// parseDurationOr parses s, returning def when s is empty.
func parseDurationOr(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be greater than 0", s)
	}
	return d, nil
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	timeout := a.timeout
	if timeout <= 0 {
		timeout = defaultServerTimeout
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, timeout)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.tokens.Close()
	if a.db != nil {
		closeDB(a.db, log)
		log.Info("database connection closed")
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
