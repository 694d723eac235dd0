package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/middleware"
	"github.com/ashwinyue/aitools-hub/internal/service"
	"github.com/ashwinyue/aitools-hub/internal/service/tool"
)

// ToolHandler 工具处理器
type ToolHandler struct {
	svc *service.Services
}

// NewToolHandler 创建工具处理器
func NewToolHandler(svc *service.Services) *ToolHandler {
	return &ToolHandler{svc: svc}
}

// CreateTool 创建工具
func (h *ToolHandler) CreateTool(c *gin.Context) {
	var req tool.CreateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	t, err := h.svc.Tool.CreateTool(c.Request.Context(), userID, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Created(c, t)
}

// GetTool 获取工具
func (h *ToolHandler) GetTool(c *gin.Context) {
	t, err := h.svc.Tool.GetTool(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, t)
}

// ListTools 列出所有可见工具，支持 ?category= 过滤
func (h *ToolHandler) ListTools(c *gin.Context) {
	res, err := h.svc.Tool.ListTools(c.Request.Context(), c.Query("category"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, res)
}

// ListMyTools 列出当前用户的可见工具
func (h *ToolHandler) ListMyTools(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	tools, err := h.svc.Tool.ListMyTools(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, gin.H{"tools": tools})
}

// ListTrash 列出当前用户回收站中的工具
func (h *ToolHandler) ListTrash(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	tools, err := h.svc.Tool.ListTrash(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, gin.H{"tools": tools})
}

// UpdateTool 更新工具
func (h *ToolHandler) UpdateTool(c *gin.Context) {
	var req tool.UpdateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	t, err := h.svc.Tool.UpdateTool(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, t)
}

// DeleteTool 将工具移入回收站
func (h *ToolHandler) DeleteTool(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := h.svc.Tool.DeleteTool(c.Request.Context(), userID, c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, gin.H{"id": c.Param("id")})
}

// BulkDeleteTools 批量移入回收站，不属于当前用户的 ID 计入 skipped
func (h *ToolHandler) BulkDeleteTools(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "ids is required")
		return
	}

	userID, _ := middleware.GetUserID(c)
	res, err := h.svc.Tool.BulkDeleteTools(c.Request.Context(), userID, req.IDs)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, res)
}

// RestoreTool 从回收站恢复工具
func (h *ToolHandler) RestoreTool(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	t, err := h.svc.Tool.RestoreTool(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, t)
}
