package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/model"
)

// ErrUnauthenticated 请求中没有可解析的身份
var ErrUnauthenticated = errors.New("authentication required")

const (
	contextUserID = "user_id"
)

// PrincipalResolver 从请求中解析出当前用户 ID
// 解析失败返回 ErrUnauthenticated
type PrincipalResolver interface {
	Resolve(r *http.Request) (string, error)
}

// TokenValidator 校验访问令牌
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// TokenResolver 依次从 Authorization: Bearer 头和 cookie 中读取访问令牌
type TokenResolver struct {
	validator  TokenValidator
	cookieName string
}

// NewTokenResolver 创建令牌解析器
func NewTokenResolver(validator TokenValidator, cookieName string) *TokenResolver {
	return &TokenResolver{validator: validator, cookieName: cookieName}
}

// Resolve 实现 PrincipalResolver
func (r *TokenResolver) Resolve(req *http.Request) (string, error) {
	token := TokenFromRequest(req, r.cookieName)
	if token == "" {
		return "", ErrUnauthenticated
	}
	user, err := r.validator.ValidateToken(req.Context(), token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return user.ID, nil
}

// TokenFromRequest 读取请求携带的访问令牌，Bearer 头优先
func TokenFromRequest(req *http.Request, cookieName string) string {
	if authHeader := req.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookieName != "" {
		if cookie, err := req.Cookie(cookieName); err == nil {
			return strings.TrimSpace(cookie.Value)
		}
	}
	return ""
}

// RequireAuth 要求有效身份，否则在进入处理器前返回 401
func RequireAuth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolver.Resolve(c.Request)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   ErrUnauthenticated.Error(),
			})
			return
		}

		c.Set(contextUserID, userID)
		c.Next()
	}
}

// GetUserID 从上下文获取当前用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}
