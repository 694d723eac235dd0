package transfer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/model"
)

// 规范字段名
const (
	FieldName        = "name"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldLink        = "link"
	FieldPricing     = "pricing"
	FieldTags        = "tags"
)

// fieldAliases 规范字段到可接受列名的映射，按优先级排列，比较时忽略大小写
var fieldAliases = map[string][]string{
	FieldName:        {"name", "title", "tool", "tool name", "tool_name"},
	FieldCategory:    {"category", "type"},
	FieldDescription: {"description", "desc", "summary"},
	FieldLink:        {"link", "url", "website", "homepage"},
	FieldPricing:     {"pricing", "price"},
	FieldTags:        {"tags", "tag", "keywords"},
}

// NameSet 名称比较键集合，见 model.NameKey
type NameSet map[string]struct{}

// ToolStore 导入时写入单条工具记录
type ToolStore interface {
	Create(ctx context.Context, tool *model.Tool) error
}

// ImportResult 导入统计
type ImportResult struct {
	Imported    int      `json:"imported"`
	Invalid     int      `json:"invalid"`
	Duplicates  int      `json:"duplicates"`
	Failed      int      `json:"failed"`
	ImportedIDs []string `json:"importedIds"`
}

// Skipped 未导入的记录数：无名称、重复和写入失败之和
func (r *ImportResult) Skipped() int {
	return r.Invalid + r.Duplicates + r.Failed
}

// Message 面向用户的导入摘要
func (r *ImportResult) Message() string {
	return fmt.Sprintf("Successfully imported %d tools. Skipped %d tools.", r.Imported, r.Skipped())
}

// Reconciler 将原始记录规范化、过滤并逐条写入
type Reconciler struct {
	store ToolStore
	log   *logger.Logger
	newID func() string
}

// NewReconciler 创建 Reconciler
func NewReconciler(store ToolStore, log *logger.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log,
		newID: func() string { return uuid.New().String() },
	}
}

// Reconcile 处理一批原始记录
// existing 为导入前该用户已有工具的名称集合，批次内已接受的名称同样参与去重。
// 写入严格串行，单条失败只计数不中止；ctx 取消时返回已完成部分的统计和 ctx 错误，已写入的记录不回滚。
func (r *Reconciler) Reconcile(ctx context.Context, ownerID string, records []RawRecord, existing NameSet) (*ImportResult, error) {
	res := &ImportResult{ImportedIDs: []string{}}

	seen := make(NameSet, len(existing)+len(records))
	for k := range existing {
		seen[k] = struct{}{}
	}

	for i, rec := range records {
		tool := r.Canonicalize(rec)
		if tool.Name == "" {
			res.Invalid++
			continue
		}
		if _, dup := seen[tool.NameKey]; dup {
			res.Duplicates++
			continue
		}

		if err := ctx.Err(); err != nil {
			return res, err
		}

		tool.ID = r.newID()
		tool.OwnerID = ownerID
		tool.IsVisible = true
		if err := r.store.Create(ctx, tool); err != nil {
			r.log.Warn("import record failed", "row", i+1, "name", tool.Name, "error", err)
			res.Failed++
			continue
		}

		seen[tool.NameKey] = struct{}{}
		res.Imported++
		res.ImportedIDs = append(res.ImportedIDs, tool.ID)
	}

	return res, nil
}

// Canonicalize 按别名表提取字段并填充默认值，结果未设置 ID 和 OwnerID
func (r *Reconciler) Canonicalize(rec RawRecord) *model.Tool {
	fields := lowerKeys(rec)

	tool := &model.Tool{
		Name:        lookup(fields, FieldName),
		Category:    lookup(fields, FieldCategory),
		Description: lookup(fields, FieldDescription),
		Link:        lookup(fields, FieldLink),
		Pricing:     lookup(fields, FieldPricing),
		Tags:        model.ParseTags(lookup(fields, FieldTags)),
	}
	tool.Normalize()
	return tool
}

// lowerKeys 将键统一为小写；多个键折叠为同一小写键时，本身已是小写的键优先，其余按字典序取第一个非空值
func lowerKeys(rec RawRecord) map[string]string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := isLowerKey(keys[i]), isLowerKey(keys[j])
		if li != lj {
			return li
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]string, len(rec))
	for _, k := range keys {
		lk := strings.ToLower(strings.TrimSpace(k))
		if cur, ok := out[lk]; ok && strings.TrimSpace(cur) != "" {
			continue
		}
		out[lk] = rec[k]
	}
	return out
}

func isLowerKey(k string) bool {
	return k == strings.ToLower(strings.TrimSpace(k))
}

func lookup(fields map[string]string, canonical string) string {
	for _, alias := range fieldAliases[canonical] {
		if v := strings.TrimSpace(fields[alias]); v != "" {
			return v
		}
	}
	return ""
}
