package transfer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/model"
	"github.com/ashwinyue/aitools-hub/internal/repository"
)

// Invalidator 导入成功后清空工具列表缓存
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Upload 上传的文件
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportFile 导出结果
type ExportFile struct {
	Name   string
	Format Format
	Data   []byte
	Count  int
}

// Service 导入导出服务
// 同一用户并发导入重名工具时两边都可能成功，去重只基于导入开始时的快照
type Service struct {
	repo        repository.ToolRepository
	reconciler  *Reconciler
	invalidator Invalidator
	maxFileSize int64
	log         *logger.Logger
	now         func() time.Time
}

// NewService 创建导入导出服务
func NewService(repo repository.ToolRepository, invalidator Invalidator, maxFileSize int64, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		reconciler:  NewReconciler(repo, log),
		invalidator: invalidator,
		maxFileSize: maxFileSize,
		log:         log,
		now:         time.Now,
	}
}

// Import 解析上传文件并导入到 ownerID 名下
// 格式错误在任何写入前返回
func (s *Service) Import(ctx context.Context, ownerID string, up Upload) (*ImportResult, error) {
	if s.maxFileSize > 0 && int64(len(up.Data)) > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	format, err := DetectFormat(up.FileName, up.ContentType, up.Data)
	if err != nil {
		return nil, err
	}

	records, err := Parse(up.Data, format)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.VisibleNameKeys(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing names: %w", err)
	}

	res, err := s.reconciler.Reconcile(ctx, ownerID, records, existing)
	if res != nil && res.Imported > 0 {
		s.invalidator.Invalidate(ctx)
	}
	if err != nil {
		s.log.Warn("import interrupted",
			"owner", ownerID, "imported", res.Imported, "remaining", len(records)-res.Imported-res.Skipped(), "error", err)
		return res, err
	}

	s.log.Info("import finished",
		"owner", ownerID,
		"file", up.FileName,
		"format", string(format),
		"records", len(records),
		"imported", res.Imported,
		"invalid", res.Invalid,
		"duplicates", res.Duplicates,
		"failed", res.Failed,
	)
	return res, nil
}

// ExportOptions 导出选项
type ExportOptions struct {
	// Format 为 csv（默认）或 json
	Format Format
	// Extended CSV 附加定价和标签列，JSON 总是包含全部字段
	Extended bool
	// IDs 非空时只导出其中属于 ownerID 的可见工具
	IDs []string
}

// Export 导出 ownerID 的可见工具，查询失败时不产生部分结果
func (s *Service) Export(ctx context.Context, ownerID string, opts ExportOptions) (*ExportFile, error) {
	format := opts.Format
	switch format {
	case "", FormatAuto:
		format = FormatCSV
	case FormatCSV, FormatJSON:
	default:
		return nil, &FormatError{Msg: "unsupported export format " + string(format) + ", expected csv or json"}
	}

	tools, err := s.repo.ListByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load tools: %w", err)
	}
	if len(opts.IDs) > 0 {
		tools = selectTools(tools, opts.IDs)
	}

	var buf bytes.Buffer
	if format == FormatJSON {
		if err := WriteJSON(&buf, tools); err != nil {
			return nil, fmt.Errorf("failed to write json: %w", err)
		}
	} else {
		cols := BasicColumns
		if opts.Extended {
			cols = ExtendedColumns
		}
		if err := WriteCSV(&buf, tools, cols); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	}

	return &ExportFile{
		Name:   ExportFileName(s.now(), format),
		Format: format,
		Data:   buf.Bytes(),
		Count:  len(tools),
	}, nil
}

// selectTools 按 ids 过滤，保持原有顺序
func selectTools(tools []*model.Tool, ids []string) []*model.Tool {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]*model.Tool, 0, len(ids))
	for _, t := range tools {
		if _, ok := wanted[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
