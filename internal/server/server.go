package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"admin-notify-service/internal/classifier"
	"admin-notify-service/internal/config"
	"admin-notify-service/internal/feed"
	hrest "admin-notify-service/internal/handler/http"
	"admin-notify-service/internal/middleware"
	"admin-notify-service/internal/router"
	"admin-notify-service/internal/sidechannel"
	"admin-notify-service/internal/upstream"
)

func NewServer(cfg config.AppConfig) *http.Server {
	// --- Init Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// --- Init Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("[Redis] Connected successfully")

	// --- Notification feed ---
	store := feed.NewStore(cfg.FeedCapacity)

	// --- Side channel: notifications mirrored to Redis, gated by the
	// configured capability ---
	var notifier sidechannel.Notifier = sidechannel.NewGated(
		sidechannel.PermissionFunc(func(context.Context) bool {
			return cfg.SideChannelEnabled
		}),
		sidechannel.NewRedisNotifier(rdb, cfg.SideChannelName),
	)

	// --- Review events fan out as cache invalidation hints so other
	// dashboard sessions refresh their review lists ---
	callbacks := classifier.Callbacks{
		OnNewReview: func(tenantID string) {
			logger.Info("new review", zap.String("tenant_id", tenantID))
			if err := rdb.Publish(ctx, cfg.InvalidationChannel, "reviews:"+tenantID).Err(); err != nil {
				logger.Warn("invalidation publish failed", zap.Error(err))
			}
		},
		OnReviewUpdate: func(tenantID, action string) {
			logger.Info("review update",
				zap.String("tenant_id", tenantID),
				zap.String("action", action))
			if err := rdb.Publish(ctx, cfg.InvalidationChannel, "reviews:"+tenantID+":"+action).Err(); err != nil {
				logger.Warn("invalidation publish failed", zap.Error(err))
			}
		},
	}

	cls := classifier.New(store, notifier, callbacks, logger)

	// --- Upstream feed connection ---
	client := upstream.NewClient(upstream.Config{
		EndpointURL:       cfg.UpstreamWSURL,
		Token:             cfg.UpstreamToken,
		AutoReconnect:     cfg.AutoReconnect,
		ReconnectInterval: cfg.ReconnectInterval,
		MaxAttempts:       cfg.MaxReconnectAttempts,
		ReadTimeout:       upstream.DefaultReadTimeout,
	}, cls.Classify, logger)
	client.Start(ctx)

	// --- HTTP surface ---
	verifier := middleware.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	h := hrest.NewFeedHandler(store, client, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, h, verifier)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	srv.RegisterOnShutdown(func() {
		client.Close()
		_ = logger.Sync()
	})
	return srv
}
