package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/baechuer/go-api-starter/internal/application/auth"
	"github.com/baechuer/go-api-starter/internal/application/files"
	"github.com/baechuer/go-api-starter/internal/application/users"
	"github.com/baechuer/go-api-starter/internal/config"
	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/infrastructure/db/postgres"
	"github.com/baechuer/go-api-starter/internal/infrastructure/memory"
	"github.com/baechuer/go-api-starter/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/go-api-starter/internal/infrastructure/redis"
	"github.com/baechuer/go-api-starter/internal/infrastructure/security"
	"github.com/baechuer/go-api-starter/internal/infrastructure/storage"
	"github.com/baechuer/go-api-starter/internal/logger"
	"github.com/baechuer/go-api-starter/internal/metrics"
	http_handlers "github.com/baechuer/go-api-starter/internal/transport/http/handlers"
	"github.com/baechuer/go-api-starter/internal/transport/http/middleware"
	"github.com/baechuer/go-api-starter/internal/transport/http/response"
	"github.com/baechuer/go-api-starter/internal/transport/http/router"
)

const Version = "1.0.0"

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (*sql.DB, error)

	NewRedis func(url string) (*redis.Client, error)

	NewPublisher func(url, exchange string) (auth.EventPublisher, error)

	NewObjectStore func(ctx context.Context, cfg storage.Config) (ObjectStore, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// ObjectStore is what the files service needs plus startup provisioning.
type ObjectStore interface {
	files.ObjectStore
	EnsureBucket(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1) db + schema
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if err := postgres.EnsureSchema(startCtx, db); err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileRepo(db)

	// 2) redis (best-effort; absent redis degrades to in-process stores)
	var redisCli *redis.Client
	if deps.NewRedis != nil {
		c, err := deps.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis config invalid; cache disabled")
		} else {
			pingCtx, pingCancel := context.WithTimeout(startCtx, 2*time.Second)
			if err := c.Ping(pingCtx); err != nil {
				logger.Logger.Warn().Err(err).Msg("redis unavailable; cache disabled")
				_ = c.Close()
			} else {
				logger.Logger.Info().Msg("redis connected")
				redisCli = c
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
			pingCancel()
		}
	}

	// UserStore covers both the auth and users ports.
	var userStore redis.UserStore = userRepo
	var sessionStore auth.SessionStore
	var ottStore auth.OneTimeTokenStore
	var listCache users.Cache

	if redisCli != nil {
		userStore = redis.NewCachedUserRepo(userRepo, redisCli, cfg.UserCacheTTL)
		sessionStore = redis.NewSessionStore(redisCli)
		ottStore = redis.NewOneTimeTokenStore(redisCli)
		listCache = redisCli
	} else {
		sessionStore = memory.NewSessionStore()
		ottStore = memory.NewOneTimeTokenStore()
	}

	// 3) publisher
	pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		if cfg.IsProduction() {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		pub = memory.NewNoopPublisher()
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) object storage
	objStore, err := deps.NewObjectStore(startCtx, storage.Config{
		Endpoint:         cfg.S3Endpoint,
		ExternalEndpoint: cfg.S3ExternalEndpoint,
		AccessKeyID:      cfg.S3AccessKeyID,
		SecretAccessKey:  cfg.S3SecretAccessKey,
		Region:           cfg.S3Region,
		UsePathStyle:     cfg.S3UsePathStyle,
		Bucket:           cfg.UploadBucket,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	if err := objStore.EnsureBucket(startCtx); err != nil {
		if cfg.IsProduction() {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		logger.Logger.Warn().Err(err).Msg("object storage unavailable; uploads will fail until it is back")
	}

	// 5) security + first admin
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.SecretKey, cfg.ProjectName)

	if err := postgres.EnsureSuperuser(startCtx, userRepo, hasher, postgres.SuperuserSeed{
		Email:    cfg.FirstSuperuserEmail,
		Username: cfg.FirstSuperuserUsername,
		Password: cfg.FirstSuperuserPassword,
	}); err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 6) services
	auditLog := func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	}

	authSvc := auth.NewService(
		userStore,
		hasher,
		signer,
		sessionStore,
		ottStore,
		pub,
		auth.Config{
			AccessTTL:             cfg.AccessTokenTTL,
			RefreshTTL:            cfg.RefreshTokenTTL,
			VerifyEmailBaseURL:    cfg.VerifyEmailBaseURL,
			PasswordResetBaseURL:  cfg.PasswordResetBaseURL,
			VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
			PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
		},
	).WithAudit(auditLog)

	usersSvc := users.NewService(userStore, hasher, sessionStore, listCache).WithAudit(auditLog)

	filesSvc := files.NewService(fileRepo, objStore, files.Config{
		MaxUploadSize: cfg.MaxUploadSize,
		PresignTTL:    cfg.PresignTTL,
	})

	// 7) handlers + middleware
	secureCookies := cfg.Env != "dev"
	docsEnabled := !cfg.IsProduction()

	metaH := http_handlers.NewMetaHandler(cfg.ProjectName, Version, cfg.Env, docsEnabled)
	healthH := http_handlers.NewHealthHandler(db, redisCli)
	authH := http_handlers.NewAuthHandler(authSvc, cfg.RefreshTokenTTL, secureCookies)
	usersH := http_handlers.NewUsersHandler(usersSvc)
	filesH := http_handlers.NewFilesHandler(filesSvc, cfg.MaxUploadSize)

	authMW := middleware.Auth(signer, authSvc, response.WriteError)
	adminMW := middleware.RequireAtLeast(domain.RoleAdmin, response.WriteError)

	corsMW := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var globalRL func(http.Handler) http.Handler
	if cfg.GlobalRateLimit > 0 {
		globalRL = httprate.LimitByIP(cfg.GlobalRateLimit, time.Minute)
	}

	// per-route limits (fail-open without redis)
	var fwLimiter *redis.FixedWindowLimiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli)
	}

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Meta:   metaH,
		Health: healthH,
		Auth:   authH,
		Users:  usersH,
		Files:  filesH,

		AuthMW:  authMW,
		AdminMW: adminMW,

		CORS:            corsMW,
		GlobalRateLimit: globalRL,
		BodyLimit:       middleware.BodyLimit(cfg.MaxBodySize, response.WriteError),
		RegisterRL:      rl("auth.register", 3, time.Minute),
		LoginRL:         rl("auth.login", cfg.LoginRateLimit, cfg.LoginRateWindow),
		PasswordResetRL: rl("auth.password_reset", 3, 10*time.Minute),

		Metrics:     metrics.Handler(),
		DocsEnabled: docsEnabled,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (auth.EventPublisher, error) {
			return rabbitmq.NewPublisher(url, exchange)
		},
		NewObjectStore: func(ctx context.Context, cfg storage.Config) (ObjectStore, error) {
			return storage.New(ctx, cfg, logger.Logger)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
