package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile 上传内容为空或只有空白
	ErrEmptyFile = errors.New("file is empty")
	// ErrFileTooLarge 上传内容超过大小限制
	ErrFileTooLarge = errors.New("file is too large")
)

// FormatError 文件既不是可解析的 CSV 也不是合法 JSON
// 整个批次在产生任何写入前中止
type FormatError struct {
	Format Format
	Line   int // 从 1 开始，0 表示未知
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Format != "" && e.Format != FormatAuto {
		msg = fmt.Sprintf("invalid %s: %s", e.Format, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError 判断 err 链中是否包含 FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
