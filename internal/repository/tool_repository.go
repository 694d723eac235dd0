package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/aitools-hub/internal/model"
)

// toolRepositoryImpl 工具数据访问
type toolRepositoryImpl struct {
	db *gorm.DB
}

// NewToolRepository 创建工具仓库
func NewToolRepository(db *gorm.DB) ToolRepository {
	return &toolRepositoryImpl{db: db}
}

// Create 创建工具
func (r *toolRepositoryImpl) Create(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

// GetByID 获取工具，不区分可见性
func (r *toolRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Tool, error) {
	var tool model.Tool
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tool).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tool, nil
}

// Update 更新工具
func (r *toolRepositoryImpl) Update(ctx context.Context, tool *model.Tool) error {
	return r.db.WithContext(ctx).Save(tool).Error
}

func (r *toolRepositoryImpl) ListVisible(ctx context.Context, category string) ([]*model.Tool, error) {
	var tools []*model.Tool
	q := r.db.WithContext(ctx).Where("is_visible = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("created_at DESC").Order("id").Find(&tools).Error
	return tools, err
}

func (r *toolRepositoryImpl) ListByOwner(ctx context.Context, ownerID, category string) ([]*model.Tool, error) {
	var tools []*model.Tool
	q := r.db.WithContext(ctx).Where("owner_id = ? AND is_visible = ?", ownerID, true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("name_key").Order("id").Find(&tools).Error
	return tools, err
}

func (r *toolRepositoryImpl) ListTrash(ctx context.Context, ownerID string) ([]*model.Tool, error) {
	var tools []*model.Tool
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_visible = ?", ownerID, false).
		Order("deleted_at DESC").
		Find(&tools).Error
	return tools, err
}

func (r *toolRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]*model.Tool, error) {
	var tools []*model.Tool
	if len(ids) == 0 {
		return tools, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tools).Error
	return tools, err
}

func (r *toolRepositoryImpl) VisibleNameKeys(ctx context.Context, ownerID string) (map[string]struct{}, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.Tool{}).
		Where("owner_id = ? AND is_visible = ?", ownerID, true).
		Pluck("name_key", &keys).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

func (r *toolRepositoryImpl) ExistsVisibleName(ctx context.Context, ownerID, nameKey, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Tool{}).
		Where("owner_id = ? AND name_key = ? AND is_visible = ?", ownerID, nameKey, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *toolRepositoryImpl) SetVisibility(ctx context.Context, ids []string, visible bool, deletedAt *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Tool{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_visible": visible,
			"deleted_at": deletedAt,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
