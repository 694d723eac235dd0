package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ashwinyue/aitools-hub/internal/model"
)

// Columns 导出列顺序
type Columns []string

var (
	// BasicColumns 默认导出列，与导入模板一致
	BasicColumns = Columns{FieldName, FieldCategory, FieldLink, FieldDescription}
	// ExtendedColumns 附加定价和标签
	ExtendedColumns = Columns{FieldName, FieldCategory, FieldLink, FieldDescription, FieldPricing, FieldTags}
)

// ExportFileName 导出文件名，日期取 UTC，扩展名随格式变化
func ExportFileName(now time.Time, format Format) string {
	ext := ".csv"
	if format == FormatJSON {
		ext = ".json"
	}
	return "ai-tools-export-" + now.UTC().Format("2006-01-02") + ext
}

// ExportRecord JSON 导出的单条工具，字段名与导入别名表一致，可直接重新导入
type ExportRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Pricing     string    `json:"pricing"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WriteJSON 以两格缩进的数组写出工具
func WriteJSON(w io.Writer, tools []*model.Tool) error {
	records := make([]ExportRecord, 0, len(tools))
	for _, t := range tools {
		tags := []string(t.Tags)
		if tags == nil {
			tags = []string{}
		}
		records = append(records, ExportRecord{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			Link:        t.Link,
			Description: t.Description,
			Pricing:     t.Pricing,
			Tags:        tags,
			CreatedAt:   t.CreatedAt,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}
	return nil
}

// WriteCSV 写出表头和每条工具一行，所有单元格使用标准 CSV 转义
func WriteCSV(w io.Writer, tools []*model.Tool, cols Columns) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(cols))
	for _, t := range tools {
		for i, col := range cols {
			row[i] = cell(t, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %q: %w", t.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(t *model.Tool, col string) string {
	switch col {
	case FieldName:
		return t.Name
	case FieldCategory:
		return t.Category
	case FieldLink:
		return t.Link
	case FieldDescription:
		return t.Description
	case FieldPricing:
		return t.Pricing
	case FieldTags:
		return strings.Join(t.Tags, ",")
	default:
		return ""
	}
}
