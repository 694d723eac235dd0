package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/database"
	"github.com/ashwinyue/aitools-hub/internal/handler"
	"github.com/ashwinyue/aitools-hub/internal/logger"
	"github.com/ashwinyue/aitools-hub/internal/middleware"
	"github.com/ashwinyue/aitools-hub/internal/model"
	"github.com/ashwinyue/aitools-hub/internal/repository"
	"github.com/ashwinyue/aitools-hub/internal/router"
	"github.com/ashwinyue/aitools-hub/internal/service"
	"github.com/ashwinyue/aitools-hub/internal/testutil"
)

type testEnv struct {
	h   http.Handler
	db  *database.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Import.MaxFileSize = 1 << 16

	db := testutil.DB(t)
	log := logger.NewNop()
	svc, err := service.NewServices(repository.NewRepositories(db.DB), cfg, nil, log)
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}

	resolver := middleware.NewTokenResolver(svc.Auth, cfg.Auth.CookieName)
	r := router.SetupRouter(handler.NewHandlers(svc, db), resolver, log, cfg)
	return &testEnv{h: r, db: db, cfg: cfg}
}

// login 创建用户并返回访问令牌
func (e *testEnv) login(t *testing.T, email string) (string, *model.User) {
	t.Helper()
	user := testutil.SeedUser(t, context.Background(), e.db.DB, email)

	w := testutil.Do(e.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Body:        testutil.JSONBody(t, map[string]string{"email": email, "password": testutil.TestPassword}),
		ContentType: "application/json",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, w, &resp)
	return resp.Data.Token, user
}

type importResp struct {
	Success     bool     `json:"success"`
	Count       int      `json:"count"`
	Skipped     int      `json:"skipped"`
	Invalid     int      `json:"invalid"`
	Duplicates  int      `json:"duplicates"`
	Failed      int      `json:"failed"`
	ImportedIDs []string `json:"importedIds"`
	Message     string   `json:"message"`
	Error       string   `json:"error"`
}

func (e *testEnv) importFile(t *testing.T, token, fileName, content string) (int, importResp) {
	t.Helper()
	body, ct := testutil.MultipartFile(t, "file", fileName, []byte(content))
	w := testutil.Do(e.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/import",
		Body:        body,
		ContentType: ct,
		Token:       token,
	})
	var resp importResp
	testutil.DecodeJSON(t, w, &resp)
	return w.Code, resp
}

type listResp struct {
	Success bool `json:"success"`
	Data    struct {
		Tools  []model.Tool `json:"tools"`
		Source string       `json:"source"`
	} `json:"data"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/health"})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	w := testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Body:        testutil.JSONBody(t, map[string]string{"username": "alice", "email": "alice@example.com", "password": "secret123"}),
		ContentType: "application/json",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	// 重复注册
	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Body:        testutil.JSONBody(t, map[string]string{"username": "alice2", "email": "alice@example.com", "password": "secret123"}),
		ContentType: "application/json",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Body:        testutil.JSONBody(t, map[string]string{"email": "alice@example.com", "password": "wrong-password"}),
		ContentType: "application/json",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Body:        testutil.JSONBody(t, map[string]string{"email": "alice@example.com", "password": "secret123"}),
		ContentType: "application/json",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == env.cfg.Auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("login cookie = %+v", cookie)
	}

	// cookie 可替代 Bearer 头
	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/auth/me", Cookie: &http.Cookie{Name: cookie.Name, Value: cookie.Value}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alice@example.com") {
		t.Errorf("me status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodPost, Path: "/api/v1/auth/logout", Token: cookie.Value})
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/auth/me", Token: cookie.Value})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/tools"},
		{http.MethodGet, "/api/v1/tools/mine"},
		{http.MethodGet, "/api/v1/tools/trash"},
		{http.MethodPost, "/api/v1/tools/import"},
		{http.MethodGet, "/api/v1/tools/export"},
		{http.MethodDelete, "/api/v1/tools/some-id"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := testutil.Do(env.h, testutil.Request{Method: tt.method, Path: tt.path, Token: "not-a-token"})
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestImportAndList(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t, "owner@example.com")

	csv := "Name,Category,Link,Description\n" +
		"ChatGPT,AI Chat,https://chat.openai.com,\"A chatbot, with commas\"\n" +
		"ChatGPT,AI Chat,https://chat.openai.com,duplicate attempt\n"

	code, resp := env.importFile(t, token, "tools.csv", csv)
	if code != http.StatusOK {
		t.Fatalf("import status = %d, resp = %+v", code, resp)
	}
	if !resp.Success || resp.Count != 1 || resp.Skipped != 1 || resp.Duplicates != 1 || len(resp.ImportedIDs) != 1 {
		t.Errorf("import resp = %+v", resp)
	}
	if resp.Message != "Successfully imported 1 tools. Skipped 1 tools." {
		t.Errorf("message = %q", resp.Message)
	}

	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools"})
	var list listResp
	testutil.DecodeJSON(t, w, &list)
	if len(list.Data.Tools) != 1 || list.Data.Source != "database" {
		t.Fatalf("list = %+v", list.Data)
	}
	if list.Data.Tools[0].Description != "A chatbot, with commas" {
		t.Errorf("description = %q", list.Data.Tools[0].Description)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools"})
	testutil.DecodeJSON(t, w, &list)
	if list.Data.Source != "cache" {
		t.Errorf("second list source = %q, want cache", list.Data.Source)
	}

	// 导入后缓存失效
	code, _ = env.importFile(t, token, "more.json", `[{"name":"Claude","url":"https://claude.ai"}]`)
	if code != http.StatusOK {
		t.Fatalf("json import status = %d", code)
	}
	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools"})
	testutil.DecodeJSON(t, w, &list)
	if len(list.Data.Tools) != 2 || list.Data.Source != "database" {
		t.Errorf("list after import = %d tools from %s", len(list.Data.Tools), list.Data.Source)
	}
}

func TestImportErrors(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t, "owner@example.com")

	t.Run("missing file", func(t *testing.T) {
		w := testutil.Do(env.h, testutil.Request{
			Method:      http.MethodPost,
			Path:        "/api/v1/tools/import",
			Body:        strings.NewReader(""),
			ContentType: "multipart/form-data; boundary=x",
			Token:       token,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		code, resp := env.importFile(t, token, "tools.json", `[{"name":"A"},`)
		if code != http.StatusBadRequest || resp.Success {
			t.Errorf("status = %d, resp = %+v", code, resp)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		code, _ := env.importFile(t, token, "tools.pdf", "name\nA\n")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := "name\n" + strings.Repeat("x", int(env.cfg.Import.MaxFileSize))
		code, _ := env.importFile(t, token, "big.csv", big)
		if code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", code)
		}
	})

	// 以上失败均未写入
	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/mine", Token: token})
	if strings.Contains(w.Body.String(), `"name":"A"`) {
		t.Errorf("tools written by failed import: %s", w.Body.String())
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.login(t, "owner@example.com")
	ctx := context.Background()
	testutil.SeedTool(t, ctx, env.db.DB, user.ID, "Tool, Inc", "Research")
	testutil.SeedTool(t, ctx, env.db.DB, "someone-else", "Not Mine", "Research")

	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/export", Token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment; filename=\"ai-tools-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "name,category,link,description\n") {
		t.Errorf("header row missing: %q", body)
	}
	if !strings.Contains(body, `"Tool, Inc",Research`) {
		t.Errorf("quoted name missing: %q", body)
	}
	if strings.Contains(body, "Not Mine") {
		t.Errorf("export leaked another owner's tool: %q", body)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/export?extended=true", Token: token})
	if !strings.HasPrefix(w.Body.String(), "name,category,link,description,pricing,tags\n") {
		t.Errorf("extended header missing: %q", w.Body.String())
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/export?format=xml", Token: token})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported format status = %d, want 400", w.Code)
	}
}

func TestExportSelectedJSON(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.login(t, "owner@example.com")
	ctx := context.Background()
	a := testutil.SeedTool(t, ctx, env.db.DB, user.ID, "Alpha", "Research")
	testutil.SeedTool(t, ctx, env.db.DB, user.ID, "Beta", "Research")
	c := testutil.SeedTool(t, ctx, env.db.DB, user.ID, "Gamma", "AI Chat")
	foreign := testutil.SeedTool(t, ctx, env.db.DB, "someone-else", "Not Mine", "Research")

	path := "/api/v1/tools/export?format=json&ids=" + a.ID + "," + foreign.ID + "&ids=" + c.ID
	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: path, Token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, `.json"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	var records []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	testutil.DecodeJSON(t, w, &records)
	if len(records) != 2 || records[0].Name != "Alpha" || records[1].Name != "Gamma" {
		t.Errorf("exported = %+v, want Alpha and Gamma", records)
	}

	// 导出的 JSON 可以直接重新导入
	other, _ := env.login(t, "other@example.com")
	code, resp := env.importFile(t, other, "ai-tools-export.json", w.Body.String())
	if code != http.StatusOK || resp.Count != 2 {
		t.Errorf("re-import status = %d, resp = %+v", code, resp)
	}
}

func TestToolLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t, "owner@example.com")
	other, _ := env.login(t, "other@example.com")

	w := testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/tools",
		Body:        testutil.JSONBody(t, map[string]interface{}{"name": "Perplexity", "category": "research", "link": "https://perplexity.ai", "tags": []string{"search"}}),
		ContentType: "application/json",
		Token:       token,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Data model.Tool `json:"data"`
	}
	testutil.DecodeJSON(t, w, &created)
	id := created.Data.ID
	if created.Data.Category != "Research" {
		t.Errorf("category = %q, want Research", created.Data.Category)
	}

	// 重名
	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/tools",
		Body:        testutil.JSONBody(t, map[string]string{"name": " perplexity "}),
		ContentType: "application/json",
		Token:       token,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", w.Code)
	}

	// 非所有者无法修改或删除
	w = testutil.Do(env.h, testutil.Request{Method: http.MethodDelete, Path: "/api/v1/tools/" + id, Token: other})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPut,
		Path:        "/api/v1/tools/" + id,
		Body:        testutil.JSONBody(t, map[string]string{"description": "answer engine"}),
		ContentType: "application/json",
		Token:       token,
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "answer engine") {
		t.Errorf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodDelete, Path: "/api/v1/tools/" + id, Token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/" + id})
	if w.Code != http.StatusNotFound {
		t.Errorf("get trashed status = %d, want 404", w.Code)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/tools/trash", Token: token})
	if !strings.Contains(w.Body.String(), id) {
		t.Errorf("trash = %s, want %s", w.Body.String(), id)
	}

	w = testutil.Do(env.h, testutil.Request{Method: http.MethodPost, Path: "/api/v1/tools/" + id + "/restore", Token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.Do(env.h, testutil.Request{
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/bulk-delete",
		Body:        testutil.JSONBody(t, map[string][]string{"ids": {id, "missing-id"}}),
		ContentType: "application/json",
		Token:       token,
	})
	var bulk struct {
		Data struct {
			Deleted int `json:"deleted"`
			Skipped int `json:"skipped"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, w, &bulk)
	if w.Code != http.StatusOK || bulk.Data.Deleted != 1 || bulk.Data.Skipped != 1 {
		t.Errorf("bulk delete status = %d, data = %+v", w.Code, bulk.Data)
	}
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t)

	w := testutil.Do(env.h, testutil.Request{Method: http.MethodGet, Path: "/api/v1/categories"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "AI Chat") {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
