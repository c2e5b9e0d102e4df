package main

import (
	"context"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/modules/subscription"
	"github.com/evghenimelnic/chat-server/pkg/config"
	"github.com/evghenimelnic/chat-server/pkg/httpserver"
	"github.com/evghenimelnic/chat-server/pkg/logger"
	"github.com/evghenimelnic/chat-server/pkg/mongo"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
	"github.com/evghenimelnic/chat-server/pkg/redis"
)

type cacheConfig struct {
	Size int64         `env:"HISTORY_CACHE_SIZE" envDefault:"50"` // Size is the number of messages kept per scope.
	TTL  time.Duration `env:"HISTORY_CACHE_TTL" envDefault:"1h"`  // TTL expires idle scope caches.
}

func main() {
	var (
		logCfg   logger.Config
		httpCfg  httpserver.Config
		mongoCfg mongo.Config
		redisCfg redis.Config
		cacheCfg cacheConfig
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&cacheCfg)

	log := logger.NewFromConfig(logCfg)
	logger.SetAsDefault(log)

	ctx := context.Background()

	db, err := mongo.NewWithDatabase(ctx, mongoCfg, mongoCfg.Database)
	if err != nil {
		log.Error("mongodb connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(ctx) }()

	if err := chat.EnsureIndexes(ctx, db); err != nil {
		log.Error("chat index creation failed", logger.Error(err))
		os.Exit(1)
	}
	if err := subscription.EnsureIndexes(ctx, db); err != nil {
		log.Error("subscription index creation failed", logger.Error(err))
		os.Exit(1)
	}

	readiness := []func(context.Context) error{mongo.Healthcheck(db.Client())}

	var cache chat.Cache
	if redisCfg.Enabled() {
		rdb, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()

		cache = chat.NewHistoryCache(rdb, cacheCfg.Size, cacheCfg.TTL)
		readiness = append(readiness, redis.Healthcheck(rdb))
	} else {
		log.Info("redis not configured, history cache disabled")
	}

	registry := realtime.NewRegistry()
	router := realtime.NewRouter(registry, log.With(logger.Component("realtime")))

	subRepo := subscription.NewRepository(db)
	subSvc := subscription.NewService(subRepo)
	dispatcher := subscription.NewDispatcher(subRepo, router,
		log.With(logger.Component("dispatcher")))

	chatSvc := chat.NewService(
		chat.NewMessageRepository(db),
		chat.NewRoomRepository(db),
		chat.NewSessionRepository(db),
		router,
		dispatcher,
		cache,
		log.With(logger.Component("chat")),
	)
	ws := chat.NewWSHandler(chatSvc, registry, log.With(logger.Component("ws")))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(log, readiness...))
	r.Mount("/", chat.Router(chatSvc, ws))
	r.Mount("/subscriptions", subscription.Router(subSvc))

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("http server terminated", logger.Error(err))
		os.Exit(1)
	}
}
