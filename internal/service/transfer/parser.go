// Package transfer 工具数据的批量导入与导出
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Format 上传文件格式
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// RawRecord 解析得到的原始记录，字段名到字符串值的映射，未经任何业务校验
type RawRecord map[string]string

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat 依次根据扩展名、Content-Type、内容首字符判断格式
// .txt 和无扩展名交由后续规则判断，其余扩展名视为不支持
func DetectFormat(fileName, contentType string, data []byte) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".txt", "":
	default:
		return "", &FormatError{Msg: "unsupported file type " + ext + ", expected .csv or .json"}
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON, nil
	case strings.Contains(ct, "csv"):
		return FormatCSV, nil
	}

	return sniff(data), nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatCSV
}

// Parse 将上传内容解码为原始记录序列
// 空的或只有表头的 CSV 返回空序列；空的 JSON 文档返回 ErrEmptyFile
func Parse(data []byte, format Format) ([]RawRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}

	if format == "" || format == FormatAuto {
		format = sniff(data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if format == FormatJSON {
			return nil, ErrEmptyFile
		}
		return []RawRecord{}, nil
	}

	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatCSV:
		return parseCSV(data)
	default:
		return nil, &FormatError{Msg: "unknown format " + string(format)}
	}
}

func parseCSV(data []byte) ([]RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var (
		headers []string
		records = []RawRecord{}
	)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fe := &FormatError{Format: FormatCSV, Msg: "malformed row", Err: err}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				fe.Line = pe.Line
				fe.Err = pe.Err
			}
			return nil, fe
		}

		if isBlankRow(row) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(row))
			for i, h := range row {
				headers[i] = strings.ToLower(strings.TrimSpace(h))
			}
			continue
		}

		rec := make(RawRecord, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if _, dup := rec[h]; dup {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseJSON(data []byte) ([]RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &FormatError{Format: FormatJSON, Msg: "malformed document", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &FormatError{Format: FormatJSON, Msg: "unexpected data after top-level value"}
	}

	switch doc := v.(type) {
	case map[string]interface{}:
		return []RawRecord{objectRecord(doc)}, nil
	case []interface{}:
		records := make([]RawRecord, 0, len(doc))
		for _, elem := range doc {
			// 非对象元素没有任何字段，交由 Reconciler 计为无效记录
			obj, _ := elem.(map[string]interface{})
			records = append(records, objectRecord(obj))
		}
		return records, nil
	default:
		return nil, &FormatError{Format: FormatJSON, Msg: "top-level value must be an object or an array of objects"}
	}
}

func objectRecord(obj map[string]interface{}) RawRecord {
	rec := make(RawRecord, len(obj))
	for k, v := range obj {
		rec[k] = stringify(v)
	}
	return rec
}

// stringify 将 JSON 值转为字符串，数组按逗号拼接，对象保留紧凑 JSON 文本
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			parts = append(parts, stringify(elem))
		}
		return strings.Join(parts, ",")
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
