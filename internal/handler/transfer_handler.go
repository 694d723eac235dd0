package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/middleware"
	"github.com/ashwinyue/aitools-hub/internal/service"
	"github.com/ashwinyue/aitools-hub/internal/service/transfer"
)

// importFormField 上传文件的表单字段名
const importFormField = "file"

// TransferHandler 导入导出处理器
type TransferHandler struct {
	svc *service.Services
}

// NewTransferHandler 创建导入导出处理器
func NewTransferHandler(svc *service.Services) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// ImportResponse 导入结果
type ImportResponse struct {
	Success     bool     `json:"success"`
	Count       int      `json:"count"`
	Skipped     int      `json:"skipped"`
	Invalid     int      `json:"invalid"`
	Duplicates  int      `json:"duplicates"`
	Failed      int      `json:"failed"`
	ImportedIDs []string `json:"importedIds"`
	Message     string   `json:"message"`
	Error       string   `json:"error,omitempty"`
}

// Import 导入 CSV/JSON 文件
// POST /api/v1/tools/import (multipart, 字段 file)
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile(importFormField)
	if err != nil {
		BadRequest(c, "No file uploaded")
		return
	}

	maxSize := h.svc.Config.Import.MaxFileSize
	if maxSize > 0 && fileHeader.Size > maxSize {
		errorResponse(c, transfer.ErrFileTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	var r io.Reader = f
	if maxSize > 0 {
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		errorResponse(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	userID, _ := middleware.GetUserID(c)
	res, err := h.svc.Transfer.Import(c.Request.Context(), userID, transfer.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		// 中途取消时返回已写入的部分结果
		if res != nil {
			_ = c.Error(err)
			resp := importResponse(res)
			resp.Success = false
			resp.Error = "import interrupted"
			c.JSON(http.StatusInternalServerError, resp)
			return
		}
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, importResponse(res))
}

// Export 导出当前用户的工具为附件
// GET /api/v1/tools/export?format=csv|json&extended=true&ids=a,b
func (h *TransferHandler) Export(c *gin.Context) {
	extended, _ := strconv.ParseBool(c.Query("extended"))

	userID, _ := middleware.GetUserID(c)
	file, err := h.svc.Transfer.Export(c.Request.Context(), userID, transfer.ExportOptions{
		Format:   transfer.Format(strings.ToLower(strings.TrimSpace(c.Query("format")))),
		Extended: extended,
		IDs:      queryList(c, "ids"),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if file.Format == transfer.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Header("X-Export-Count", strconv.Itoa(file.Count))
	c.Data(http.StatusOK, contentType, file.Data)
}

// queryList 读取可重复且可逗号分隔的查询参数
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func importResponse(res *transfer.ImportResult) ImportResponse {
	ids := res.ImportedIDs
	if ids == nil {
		ids = []string{}
	}
	return ImportResponse{
		Success:     true,
		Count:       res.Imported,
		Skipped:     res.Skipped(),
		Invalid:     res.Invalid,
		Duplicates:  res.Duplicates,
		Failed:      res.Failed,
		ImportedIDs: ids,
		Message:     res.Message(),
	}
}

