package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/repository"
	"github.com/ashwinyue/aitools-hub/internal/service/auth"
	"github.com/ashwinyue/aitools-hub/internal/service/cache"
	"github.com/ashwinyue/aitools-hub/internal/service/tool"
	"github.com/ashwinyue/aitools-hub/internal/service/transfer"
)

// Services 服务集合
type Services struct {
	Auth     *auth.Service
	Tool     *tool.Service
	Transfer *transfer.Service

	Config *config.Config
	Log    *logger.Logger
}

// NewServices 创建所有服务
// cache.backend 为 redis 时 redisClient 不能为空
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client, log *logger.Logger) (*Services, error) {
	listCache, err := newCache(cfg, redisClient)
	if err != nil {
		return nil, err
	}

	authSvc, err := auth.NewService(repo.Auth, cfg.Auth)
	if err != nil {
		return nil, err
	}

	toolSvc := tool.NewService(repo.Tool, listCache, cfg.Cache.TTL, log)

	return &Services{
		Auth:     authSvc,
		Tool:     toolSvc,
		Transfer: transfer.NewService(repo.Tool, toolSvc, cfg.Import.MaxFileSize, log),
		Config:   cfg,
		Log:      log,
	}, nil
}

// newCache 根据配置选择列表缓存实现
func newCache(cfg *config.Config, redisClient *redis.Client) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("cache backend redis requires a redis client")
		}
		return cache.NewRedis(redisClient, cfg.Cache.Prefix), nil
	default:
		return cache.NewMemory(), nil
	}
}
