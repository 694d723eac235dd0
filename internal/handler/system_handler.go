package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/service"
)

// Pinger 数据库健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
	db  Pinger
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services, db Pinger) *SystemHandler {
	return &SystemHandler{svc: svc, db: db}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.svc.Log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.svc.Config.App.Version,
	})
}

// ListCategories 预置分类
// GET /api/v1/categories
func (h *SystemHandler) ListCategories(c *gin.Context) {
	Success(c, h.svc.Tool.Categories())
}
