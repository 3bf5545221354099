package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/config"
	"github.com/d60-Lab/warbler/internal/api/handler"
	"github.com/d60-Lab/warbler/internal/api/router"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/service"
	pkgcache "github.com/d60-Lab/warbler/pkg/cache"
	"github.com/d60-Lab/warbler/pkg/database"
	"github.com/d60-Lab/warbler/pkg/logger"
	"github.com/d60-Lab/warbler/pkg/trace"
)

// @title Warbler API
// @version 1.0
// @description 社交短消息服务
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTrace, err := trace.Init(ctx, cfg)
	if err != nil {
		logger.Fatal("init trace", zap.Error(err))
	}
	defer func() { _ = shutdownTrace(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := pkgcache.InitRedis(cfg)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	replicator := service.NewFanReplicator(fanRepo, 10000)
	stopReplicator := replicator.Start(4)
	fanout := service.NewFanoutWorker(db, fanRepo, 4, 500, 128, 50*time.Millisecond)
	stopFanout := fanout.Start()

	userSvc := service.NewUserService(userRepo)
	relSvc := service.NewRelationshipService(followRepo, fanRepo, replicator)
	msgSvc := service.NewMessageService(db, messageRepo, likeRepo)
	timelineSvc := service.NewTimelineService(messageRepo)
	followerCache := cache.NewFollowerCache(db, rdb, 5*time.Minute)

	sess := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	h := handler.New(userSvc, relSvc, msgSvc, timelineSvc, followerCache, sess)
	engine := router.New(cfg, h, sess, userRepo)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	_ = stopFanout(shutdownCtx)
	_ = stopReplicator(shutdownCtx)
}
