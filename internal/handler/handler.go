package handler

import (
	"github.com/ashwinyue/aitools-hub/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Tool     *ToolHandler
	Transfer *TransferHandler
	System   *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services, db Pinger) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc),
		Tool:     NewToolHandler(svc),
		Transfer: NewTransferHandler(svc),
		System:   NewSystemHandler(svc, db),
	}
}
