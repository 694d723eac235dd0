package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/handler"
	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, resolver middleware.PrincipalResolver, log *logger.Logger, cfg *config.Config) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS.AllowOrigins))

	if cfg.Import.MaxFileSize > 0 {
		r.MaxMultipartMemory = cfg.Import.MaxFileSize
	}

	requireAuth := middleware.RequireAuth(resolver)

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.RefreshToken)
			authGroup.POST("/logout", requireAuth, h.Auth.Logout)
			authGroup.GET("/me", requireAuth, h.Auth.GetCurrentUser)
			authGroup.PUT("/password", requireAuth, h.Auth.ChangePassword)
		}

		// Category 分类
		v1.GET("/categories", h.System.ListCategories)

		// Tool 工具
		tools := v1.Group("/tools")
		{
			tools.GET("", h.Tool.ListTools)
			tools.GET("/:id", h.Tool.GetTool)

			tools.POST("", requireAuth, h.Tool.CreateTool)
			tools.GET("/mine", requireAuth, h.Tool.ListMyTools)
			tools.GET("/trash", requireAuth, h.Tool.ListTrash)
			tools.PUT("/:id", requireAuth, h.Tool.UpdateTool)
			tools.DELETE("/:id", requireAuth, h.Tool.DeleteTool)
			tools.POST("/:id/restore", requireAuth, h.Tool.RestoreTool)
			tools.POST("/bulk-delete", requireAuth, h.Tool.BulkDeleteTools)

			// 导入导出
			tools.POST("/import", requireAuth, h.Transfer.Import)
			tools.GET("/export", requireAuth, h.Transfer.Export)
		}
	}

	return r
}
