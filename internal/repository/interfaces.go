// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"
	"time"

	"github.com/ashwinyue/aitools-hub/internal/model"
)

// ToolRepository 工具数据访问接口
type ToolRepository interface {
	Create(ctx context.Context, tool *model.Tool) error
	GetByID(ctx context.Context, id string) (*model.Tool, error)
	Update(ctx context.Context, tool *model.Tool) error

	// ListVisible 列出所有可见工具，category 为空时不过滤
	ListVisible(ctx context.Context, category string) ([]*model.Tool, error)
	// ListByOwner 列出某用户的可见工具，按名称排序
	ListByOwner(ctx context.Context, ownerID, category string) ([]*model.Tool, error)
	// ListTrash 列出某用户回收站中的工具
	ListTrash(ctx context.Context, ownerID string) ([]*model.Tool, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Tool, error)

	// VisibleNameKeys 返回某用户可见工具的名称比较键集合
	VisibleNameKeys(ctx context.Context, ownerID string) (map[string]struct{}, error)
	// ExistsVisibleName 判断某用户是否已有同名可见工具，excludeID 非空时排除该工具
	ExistsVisibleName(ctx context.Context, ownerID, nameKey, excludeID string) (bool, error)

	// SetVisibility 修改可见性，deletedAt 为 nil 表示恢复
	SetVisibility(ctx context.Context, ids []string, visible bool, deletedAt *time.Time) (int64, error)
}

// 确保 toolRepositoryImpl 实现了接口
var _ ToolRepository = (*toolRepositoryImpl)(nil)
