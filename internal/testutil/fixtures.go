package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ashwinyue/aitools-hub/internal/model"
)

// TestPassword SeedUser 使用的明文密码
const TestPassword = "password123"

// SeedUser 创建一个激活的用户
func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, email string) *model.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedTool 为 ownerID 创建一个可见的工具
func SeedTool(tb testing.TB, ctx context.Context, db *gorm.DB, ownerID, name, category string) *model.Tool {
	tb.Helper()
	t := &model.Tool{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Link:      "https://example.com/" + uuid.New().String()[:8],
		OwnerID:   ownerID,
		IsVisible: true,
	}
	t.Normalize()
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tool: %v", err)
	}
	return t
}

// SeedTrashedTool 创建一个已移入回收站的工具
func SeedTrashedTool(tb testing.TB, ctx context.Context, db *gorm.DB, ownerID, name string) *model.Tool {
	tb.Helper()
	t := SeedTool(tb, ctx, db, ownerID, name, "")
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(t).Updates(map[string]interface{}{
		"is_visible": false,
		"deleted_at": now,
	}).Error; err != nil {
		tb.Fatalf("trash tool: %v", err)
	}
	t.IsVisible = false
	t.DeletedAt = &now
	return t
}
