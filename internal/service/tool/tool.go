package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/model"
	"github.com/ashwinyue/aitools-hub/internal/repository"
	"github.com/ashwinyue/aitools-hub/internal/service/cache"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrForbidden     = errors.New("not allowed to modify this tool")
	ErrDuplicateName = errors.New("a tool with this name already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// 列表来源
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
)

// Service 工具服务
type Service struct {
	repo     repository.ToolRepository
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewService 创建工具服务
func NewService(repo repository.ToolRepository, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// CreateToolRequest 创建工具请求
type CreateToolRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Link        string   `json:"link"`
	Pricing     string   `json:"pricing"`
	Tags        []string `json:"tags"`
}

// UpdateToolRequest 更新工具请求，nil 字段保持不变
type UpdateToolRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Link        *string   `json:"link"`
	Pricing     *string   `json:"pricing"`
	Tags        *[]string `json:"tags"`
}

// ListResult 列表结果
type ListResult struct {
	Tools  []*model.Tool `json:"tools"`
	Source string        `json:"source"`
}

// BulkDeleteResult 批量删除结果
type BulkDeleteResult struct {
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// CreateTool 创建工具
func (s *Service) CreateTool(ctx context.Context, ownerID string, req *CreateToolRequest) (*model.Tool, error) {
	tool := &model.Tool{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Link:        req.Link,
		Pricing:     req.Pricing,
		Tags:        req.Tags,
		OwnerID:     ownerID,
		IsVisible:   true,
	}
	tool.Normalize()

	if tool.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if err := s.checkDuplicate(ctx, ownerID, tool.NameKey, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, tool); err != nil {
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}

	s.invalidate(ctx)
	return tool, nil
}

// GetTool 获取可见工具
func (s *Service) GetTool(ctx context.Context, id string) (*model.Tool, error) {
	tool, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tool.IsVisible {
		return nil, ErrToolNotFound
	}
	return tool, nil
}

// ListTools 列出所有可见工具，结果在 cacheTTL 内复用
func (s *Service) ListTools(ctx context.Context, category string) (*ListResult, error) {
	category = strings.TrimSpace(category)
	if category != "" {
		category = model.NormalizeCategory(category)
	}
	key := cacheKey(category)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("tool list cache read failed", "key", key, "error", err)
	} else if ok {
		var tools []*model.Tool
		if err := json.Unmarshal(data, &tools); err == nil {
			return &ListResult{Tools: tools, Source: SourceCache}, nil
		}
		s.log.Warn("tool list cache entry corrupt", "key", key)
	}

	tools, err := s.repo.ListVisible(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	if tools == nil {
		tools = []*model.Tool{}
	}

	if data, err := json.Marshal(tools); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.log.Warn("tool list cache write failed", "key", key, "error", err)
		}
	}

	return &ListResult{Tools: tools, Source: SourceDatabase}, nil
}

// ListMyTools 列出当前用户的可见工具
func (s *Service) ListMyTools(ctx context.Context, ownerID, category string) ([]*model.Tool, error) {
	if category = strings.TrimSpace(category); category != "" {
		category = model.NormalizeCategory(category)
	}
	tools, err := s.repo.ListByOwner(ctx, ownerID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	if tools == nil {
		tools = []*model.Tool{}
	}
	return tools, nil
}

// ListTrash 列出当前用户回收站中的工具
func (s *Service) ListTrash(ctx context.Context, ownerID string) ([]*model.Tool, error) {
	tools, err := s.repo.ListTrash(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trash: %w", err)
	}
	if tools == nil {
		tools = []*model.Tool{}
	}
	return tools, nil
}

// UpdateTool 更新工具
func (s *Service) UpdateTool(ctx context.Context, ownerID, id string, req *UpdateToolRequest) (*model.Tool, error) {
	tool, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !tool.IsVisible {
		return nil, ErrToolNotFound
	}

	if req.Name != nil {
		tool.Name = *req.Name
	}
	if req.Description != nil {
		tool.Description = *req.Description
	}
	if req.Category != nil {
		tool.Category = *req.Category
	}
	if req.Link != nil {
		tool.Link = *req.Link
	}
	if req.Pricing != nil {
		tool.Pricing = *req.Pricing
	}
	if req.Tags != nil {
		tool.Tags = *req.Tags
	}
	tool.Normalize()

	if tool.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if err := s.checkDuplicate(ctx, ownerID, tool.NameKey, tool.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tool); err != nil {
		return nil, fmt.Errorf("failed to update tool: %w", err)
	}

	s.invalidate(ctx)
	return tool, nil
}

// DeleteTool 将工具移入回收站
func (s *Service) DeleteTool(ctx context.Context, ownerID, id string) error {
	tool, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !tool.IsVisible {
		return nil
	}

	now := s.now().UTC()
	if _, err := s.repo.SetVisibility(ctx, []string{tool.ID}, false, &now); err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// BulkDeleteTools 批量移入回收站，不属于当前用户或不存在的 ID 计入 Skipped
func (s *Service) BulkDeleteTools(ctx context.Context, ownerID string, ids []string) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids is required", ErrInvalidInput)
	}

	tools, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tools: %w", err)
	}

	var targets []string
	for _, t := range tools {
		if t.OwnerID == ownerID && t.IsVisible {
			targets = append(targets, t.ID)
		}
	}

	result := &BulkDeleteResult{Skipped: len(uniqueIDs(ids)) - len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	now := s.now().UTC()
	n, err := s.repo.SetVisibility(ctx, targets, false, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tools: %w", err)
	}
	result.Deleted = int(n)
	result.Skipped += len(targets) - int(n)

	s.invalidate(ctx)
	return result, nil
}

// RestoreTool 从回收站恢复工具
func (s *Service) RestoreTool(ctx context.Context, ownerID, id string) (*model.Tool, error) {
	tool, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if tool.IsVisible {
		return tool, nil
	}

	if err := s.checkDuplicate(ctx, ownerID, tool.NameKey, tool.ID); err != nil {
		return nil, err
	}

	if _, err := s.repo.SetVisibility(ctx, []string{tool.ID}, true, nil); err != nil {
		return nil, fmt.Errorf("failed to restore tool: %w", err)
	}
	tool.IsVisible = true
	tool.DeletedAt = nil

	s.invalidate(ctx)
	return tool, nil
}

// Categories 返回预置分类
func (s *Service) Categories() []string {
	out := make([]string, len(model.Categories))
	copy(out, model.Categories)
	return out
}

// Invalidate 清空列表缓存，供其他写路径调用
func (s *Service) Invalidate(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *Service) get(ctx context.Context, id string) (*model.Tool, error) {
	tool, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	return tool, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (*model.Tool, error) {
	tool, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return tool, nil
}

func (s *Service) checkDuplicate(ctx context.Context, ownerID, nameKey, excludeID string) error {
	exists, err := s.repo.ExistsVisibleName(ctx, ownerID, nameKey, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check duplicate name: %w", err)
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Error("tool list cache invalidate failed", "error", err)
	}
}

func cacheKey(category string) string {
	if category == "" {
		return "all"
	}
	return "category:" + strings.ToLower(category)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
