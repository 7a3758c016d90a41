package main

import (
	"context"
	"fmt"

	"jobfair-live/config"
	"jobfair-live/internal/analytics"
	"jobfair-live/internal/events"
	"jobfair-live/internal/handler"
	"jobfair-live/internal/middleware"
	"jobfair-live/internal/presence"
	"jobfair-live/internal/proxy"
	"jobfair-live/internal/redis"
	"jobfair-live/internal/repository"
	"jobfair-live/internal/roomprovider"
	"jobfair-live/internal/services"
	"jobfair-live/internal/storage"
	"jobfair-live/internal/websocket"
	"jobfair-live/pkg/database"
	"jobfair-live/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds every long-lived component of one process.
type app struct {
	cfg *config.Config
	log *logger.Logger

	db    *gorm.DB
	redis *goredis.Client

	users repository.UserRepository
	queue repository.QueueRepository
	calls repository.CallRepository

	registry *presence.Registry
	hub      *websocket.Hub
	limiter  middleware.Limiter

	auth         *services.AuthService
	queueSvc     *services.QueueService
	callSvc      *services.CallService
	interpreters *services.InterpreterService

	closers []func() error
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	return cfg, l, nil
}

func buildApp(ctx context.Context, cfg *config.Config, l *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: l, registry: presence.NewRegistry(), hub: websocket.NewHub()}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}

	var (
		locker    services.Locker
		publisher services.Publisher
		statuses  services.StatusStore
	)
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		a.redis = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, a.redis.Close)
		if err := redis.Ping(ctx, a.redis); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.users = redis.NewCachedUsers(a.redis, a.users, redis.DefaultCacheConfig())
		locker = redis.NewLocker(a.redis, cfg.LockTTL)
		publisher = redis.NewPublisher(a.redis)
		statuses = redis.NewStatusStore(a.redis)
		limits := redis.DefaultRateLimitConfig()
		limits.CallLimit = cfg.CallRateLimit
		limits.CallWindow = cfg.CallRateWindow
		a.limiter = redis.NewRateLimiter(a.redis, limits)
	default:
		l.Logger.Warn("running with in-process coordination; do not run more than one instance")
		locker = services.NewLocalLocker()
		publisher = a.hub
		statuses = services.NewLocalStatusStore()
	}

	notifier := services.NewNotifier(publisher, events.NewAudienceResolver(), cfg.FanoutRetries, l)
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := analytics.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, l)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		a.closers = append(a.closers, sink.Close)
		notifier.WithSink(sink)
	}

	rooms := newRoomProvider(cfg)

	a.auth = services.NewAuthService(a.users, cfg.JWTSecret, 0)
	a.queueSvc = services.NewQueueService(a.queue, locker, notifier, l)
	a.callSvc = services.NewCallService(a.calls, a.users, a.queueSvc, rooms, a.registry, locker, notifier,
		services.CallConfig{RoomType: cfg.RoomType, DestroyTimeout: cfg.RoomDestroyTimeout}, l)
	a.interpreters = services.NewInterpreterService(a.users, a.calls, a.callSvc, a.registry, statuses, cfg.StaleSessionAfter, l)

	if cfg.S3Bucket != "" {
		archiver, err := storage.NewTranscriptArchiver(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("s3: %w", err)
		}
		a.callSvc.WithArchiver(archiver)
	}

	if seedDemo {
		if _, err := database.Seed(ctx, a.users, nil); err != nil {
			a.Close()
			return nil, err
		}
	}

	l.Logger.Info("application wired",
		zap.String("store", cfg.StoreDriver),
		zap.String("coordination", cfg.LockBackend),
		zap.String("rooms", cfg.RoomProvider),
		zap.Bool("analytics", len(cfg.KafkaBrokers) > 0),
		zap.Bool("archive", cfg.S3Bucket != ""))
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repository.NewMemoryStore()
		a.users, a.queue, a.calls = store.Users(), store.Queue(), store.Calls()
		return nil
	default:
		db, err := database.Connect(a.cfg)
		if err != nil {
			return err
		}
		a.db = db
		a.closers = append(a.closers, func() error { return database.Close(db) })
		a.users = repository.NewUserRepository(db)
		a.queue = repository.NewQueueRepository(db)
		a.calls = repository.NewCallRepository(db)
		return nil
	}
}

func newRoomProvider(cfg *config.Config) roomprovider.Provider {
	if cfg.RoomProvider == config.RoomProviderTwilio {
		return roomprovider.NewTwilioProvider(roomprovider.TwilioConfig{
			AccountSID: cfg.RoomAccountSID,
			APIKey:     cfg.RoomAPIKey,
			APISecret:  cfg.RoomAPISecret,
			TokenTTL:   cfg.RoomTokenTTL,
		}, nil)
	}
	return roomprovider.NewLocalProvider(roomprovider.NewTokenIssuer("local", "local", cfg.JWTSecret, cfg.RoomTokenTTL))
}

func (a *app) handlers() *handlerSet {
	access := proxy.NewAccessControl()
	checks := map[string]handler.HealthCheck{}
	if a.db != nil {
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, a.db) }
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, a.redis) }
	}
	return &handlerSet{
		queue:       handler.NewQueueHandler(a.queueSvc, a.users, access),
		call:        handler.NewCallHandler(a.callSvc, a.queueSvc, access),
		interpreter: handler.NewInterpreterHandler(a.interpreters, access),
		presence:    handler.NewPresenceHandler(a.registry),
		health:      handler.NewHealthHandler(checks),
		websocket: websocket.NewHandler(a.auth, a.hub, a.registry,
			websocket.NewChannelAuthorizer(access), a.log),
	}
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	a.registry.Close()
}
