package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DefaultPricing 未提供定价时的默认值
const DefaultPricing = "Unknown"

// Tool 目录中的 AI 工具条目
// IsVisible=false 表示已移入回收站，DeletedAt 记录移入时间
type Tool struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	NameKey     string                      `gorm:"size:255;not null;index:idx_tools_owner_name,priority:2" json:"-"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"size:100;index" json:"category"`
	Link        string                      `gorm:"size:1000" json:"link"`
	OwnerID     string                      `gorm:"size:36;not null;index:idx_tools_owner_name,priority:1" json:"userId"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Pricing     string                      `gorm:"size:100" json:"pricing"`
	IsVisible   bool                        `gorm:"index;not null" json:"isVisible"`
	DeletedAt   *time.Time                  `json:"deletedAt,omitempty"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Tool) TableName() string {
	return "tools"
}

// Normalize 规范化名称、分类、标签等字段，写库前调用
func (t *Tool) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.NameKey = NameKey(t.Name)
	t.Category = NormalizeCategory(t.Category)
	t.Description = strings.TrimSpace(normalizeNewlines(t.Description))
	t.Link = strings.TrimSpace(t.Link)
	t.Pricing = strings.TrimSpace(t.Pricing)
	if t.Pricing == "" {
		t.Pricing = DefaultPricing
	}
	t.Tags = NormalizeTags(t.Tags)
}

// normalizeNewlines 将 \r\n 和单独的 \r 统一为 \n，与 CSV 读取后的结果一致
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// NameKey 名称的比较键：去除首尾空白并转小写
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseTags 按逗号拆分标签字符串
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags 去除空白和空标签，忽略大小写去重并保持首次出现的顺序
// 返回值永远非 nil，JSONSlice 扫描 NULL 会失败
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
