package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Request 描述一次测试请求
type Request struct {
	Method      string
	Path        string
	Body        io.Reader
	ContentType string
	Token       string
	Cookie      *http.Cookie
}

// Do 在 handler 上执行请求并返回记录器
func Do(h http.Handler, r Request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.Method, r.Path, r.Body)
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.Cookie != nil {
		req.AddCookie(r.Cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// JSONBody 将 v 编码为请求体
func JSONBody(tb testing.TB, v interface{}) io.Reader {
	tb.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// MultipartFile 构造只含一个文件字段的 multipart 请求体
func MultipartFile(tb testing.TB, field, fileName string, content []byte) (io.Reader, string) {
	tb.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		tb.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		tb.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		tb.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// DecodeJSON 解码响应体
func DecodeJSON(tb testing.TB, w *httptest.ResponseRecorder, v interface{}) {
	tb.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		tb.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
