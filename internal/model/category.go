package model

import "strings"

// CategoryOther 缺省分类
const CategoryOther = "Other"

// Categories 预置分类列表
var Categories = []string{
	"AI Chat",
	"Audio & Music",
	"Content Generation",
	"Conversation",
	"Education & Learning",
	"Image Generation",
	"Image Editing",
	"Productivity",
	"Research",
	"Video Generation",
	"Video Editing",
	CategoryOther,
}

var categoryIndex = func() map[string]string {
	m := make(map[string]string, len(Categories))
	for _, c := range Categories {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// NormalizeCategory 预置分类忽略大小写匹配并统一写法，自定义分类原样保留，空值归为 Other
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return CategoryOther
	}
	if canonical, ok := categoryIndex[strings.ToLower(category)]; ok {
		return canonical
	}
	return category
}
