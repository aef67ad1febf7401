package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/regtech/internal/dataquality/application"
	"github.com/wyfcoding/regtech/internal/dataquality/domain"
	"github.com/wyfcoding/regtech/internal/dataquality/infrastructure/messaging"
	"github.com/wyfcoding/regtech/internal/dataquality/infrastructure/persistence/mysql"
	persistence_redis "github.com/wyfcoding/regtech/internal/dataquality/infrastructure/persistence/redis"
	"github.com/wyfcoding/regtech/internal/dataquality/infrastructure/storage"
	"github.com/wyfcoding/regtech/internal/dataquality/interfaces/events"
	httpserver "github.com/wyfcoding/regtech/internal/dataquality/interfaces/http"
)

var configPath = flag.String("config", "configs/dataquality/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 初始化配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 初始化日志
	logCfg := &logging.Config{
		Service:    cfg.Server.Name,
		Module:     "dataquality",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 初始化指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. 初始化基础设施
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	// Auto Migrate (仅用于开发方便)
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&domain.QualityReport{},
			&domain.BusinessRule{},
			&domain.RuleParameter{},
			&domain.QualityConfig{},
			&storage.ErrorDetailDocument{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// Outbox
	outboxMgr := outbox.NewManager(db.RawDB(), nil)

	// Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	// 5. 初始化仓储
	reportRepo := mysql.NewQualityReportRepository(db.RawDB())
	ruleRepo := persistence_redis.NewCachedRuleRepository(
		mysql.NewBusinessRuleRepository(db.RawDB()),
		redisCache.GetClient().(*redis.Client),
		persistence_redis.DefaultRuleCacheTTL,
	)
	configRepo := persistence_redis.NewCachedConfigRepository(
		mysql.NewQualityConfigRepository(db.RawDB()),
		redisCache.GetClient().(*redis.Client),
		persistence_redis.DefaultConfigCacheTTL,
	)
	resultsStore := storage.NewResultsStore(db.RawDB())
	outboxPub := messaging.NewOutboxPublisher(outboxMgr)

	// 6. 初始化应用服务
	rulesSvc := application.NewRulesValidationService(ruleRepo, slog.Default())
	commandSvc := application.NewQualityCommandService(reportRepo, configRepo, rulesSvc, resultsStore, outboxPub, slog.Default())
	querySvc := application.NewQualityQueryService(reportRepo, resultsStore, slog.Default())
	configSvc := application.NewConfigurationService(configRepo, ruleRepo, ruleRepo, slog.Default())

	// 7. Kafka Consumer
	kafkaCfg := &cfg.MessageQueue.Kafka
	kafkaCfg.GroupID = "dataquality-group"
	kafkaCfg.Topic = events.BatchIngestedTopic

	consumer := kafka.NewConsumer(kafkaCfg, logger, metricsImpl)
	eventHandler := events.NewBatchEventHandler(commandSvc, slog.Default())
	eventHandler.Subscribe(context.Background(), consumer)

	// 8. HTTP 接口
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	handler := httpserver.NewQualityHandler(commandSvc, querySvc, configSvc)
	handler.RegisterRoutes(r.Group("/"))

	g, ctx := errgroup.WithContext(context.Background())

	// HTTP Start
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{
			Addr:    addr,
			Handler: r,
		}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 9. 优雅关闭
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
