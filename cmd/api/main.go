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

	"github.com/damoang/notion-gateway/internal/config"
	"github.com/damoang/notion-gateway/internal/database"
	"github.com/damoang/notion-gateway/internal/graph"
	"github.com/damoang/notion-gateway/internal/handler"
	"github.com/damoang/notion-gateway/internal/middleware"
	"github.com/damoang/notion-gateway/internal/migration"
	"github.com/damoang/notion-gateway/internal/repository"
	"github.com/damoang/notion-gateway/internal/routes"
	"github.com/damoang/notion-gateway/internal/service"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/damoang/notion-gateway/pkg/cache"
	pkglogger "github.com/damoang/notion-gateway/pkg/logger"
	pkgredis "github.com/damoang/notion-gateway/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"
)

const dbStatsInterval = 15 * time.Second

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv(os.Getenv("APP_ENV"))

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	log := pkglogger.GetLogger()
	log.Info().Str("app_env", env).Strs("env_files", dotenvFiles).Msg("starting")

	// 설정 로드
	configPath := getConfigPath()
	log.Info().Str("path", configPath).Msg("loading config")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	pkglogger.SetLevel(cfg.Log.Level)
	config.LogResolved(cfg)

	// DB 연결
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(&cfg.Database, logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")
	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Redis 연결 (선택)
	var (
		cacheService cache.Service
		redisClient  *redis.Client
	)
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(context.Background(), cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis (continuing without cache)")
		} else {
			defer client.Close()
			redisClient = client
			cacheService = cache.NewService(client, cache.Options{
				TenantTTL: cfg.Cache.TenantTTL,
				QueryTTL:  cfg.Cache.QueryTTL,
			})
			log.Info().Str("addr", cfg.Redis.Addr()).Msg("cache service initialized")
		}
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	contentRepo := repository.NewContentRepository(db)

	// Tenant resolution
	directory := tenant.NewCachedDirectory(tenantRepo, cacheService, pkglogger.Component("tenant_directory"))
	resolver := tenant.NewResolver(directory, pkglogger.Component("tenant_resolver"))

	// Services
	graphResolver := graph.NewResolver(contentRepo, graph.Options{
		MaxDepth:    cfg.Graph.MaxDepth,
		Concurrency: cfg.Graph.FetchConcurrency,
	})
	notionService := service.NewNotionService(contentRepo, graphResolver, directory, cacheService, pkglogger.Component("notion"))
	tenantService := service.NewTenantService(tenantRepo, contentRepo, cacheService, pkglogger.Component("tenant"))

	// Handlers
	notionHandler := handler.NewNotionHandler(notionService)
	tenantHandler := handler.NewTenantHandler(tenantService)

	gin.SetMode(cfg.Server.Mode)
	engineOpts := routes.EngineOptions{
		AllowOrigins: cfg.CORS.AllowOriginList(),
		Resolver:     resolver,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			KeyPrefix:         middleware.DefaultRateLimitConfig().KeyPrefix,
		},
	}
	if !cfg.IsDevelopment() {
		engineOpts.RedisClient = redisClient
	}
	router := routes.NewEngine(engineOpts)
	routes.Setup(router, notionHandler, tenantHandler, resolver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sqlDB, err := db.DB(); err == nil {
		go middleware.ReportDBStats(ctx, sqlDB, dbStatsInterval)
	}

	// 서버 시작
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
