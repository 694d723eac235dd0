// Package testutil 提供测试辅助工具
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/database"
)

// DB 在临时目录中创建已迁移的 sqlite 数据库，测试结束时自动关闭
func DB(tb testing.TB) *database.DB {
	tb.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(tb.TempDir(), "test.db"),
		},
	}

	db, err := database.New(cfg)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return db
}
