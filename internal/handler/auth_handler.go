package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/middleware"
	"github.com/ashwinyue/aitools-hub/internal/service"
	"github.com/ashwinyue/aitools-hub/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Created(c, user.ToUserInfo())
}

// Login 用户登录，同时写入令牌 cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	h.setTokenCookie(c, resp.Token, int(h.svc.Config.Auth.AccessTTL.Seconds()))
	Success(c, resp)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters")
		return
	}

	accessToken, refreshToken, err := h.svc.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		errorResponse(c, err)
		return
	}

	h.setTokenCookie(c, accessToken, int(h.svc.Config.Auth.AccessTTL.Seconds()))
	Success(c, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout 撤销当前令牌并清除 cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c.Request, h.svc.Config.Auth.CookieName)
	if err := h.svc.Auth.RevokeToken(c.Request.Context(), token); err != nil {
		errorResponse(c, err)
		return
	}

	h.setTokenCookie(c, "", -1)
	Success(c, nil)
}

// GetCurrentUser 获取当前用户
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := h.svc.Auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	Success(c, user.ToUserInfo())
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.svc.Auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		errorResponse(c, err)
		return
	}

	h.setTokenCookie(c, "", -1)
	Success(c, nil)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	cfg := h.svc.Config.Auth
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, value, maxAge, "/", "", cfg.CookieSecure, true)
}
