package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/database"
	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/repository"
	"github.com/ashwinyue/aitools-hub/internal/service"
)

// app 命令共享的依赖
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	repos *repository.Repositories
	svc   *service.Services
}

// newApp 加载配置并初始化数据库、缓存和服务
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", "driver", cfg.Database.Driver)

	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		log.Info("redis connected", "addr", cfg.Redis.GetAddr())
	}

	repos := repository.NewRepositories(db.DB)
	svc, err := service.NewServices(repos, cfg, redisClient, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: redisClient,
		repos: repos,
		svc:   svc,
	}, nil
}

// Close 释放连接
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.db.Close()
	a.log.Sync()
}

// ownerByEmail 按邮箱查找导入导出的归属用户
func (a *app) ownerByEmail(ctx context.Context, email string) (string, error) {
	user, err := a.repos.Auth.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user %s: %w", email, err)
	}
	return user.ID, nil
}
