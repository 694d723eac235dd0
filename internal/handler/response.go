package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aitools-hub/internal/repository"
	"github.com/ashwinyue/aitools-hub/internal/service/auth"
	"github.com/ashwinyue/aitools-hub/internal/service/tool"
	"github.com/ashwinyue/aitools-hub/internal/service/transfer"
)

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// Fail 错误响应
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Success: false, Error: msg})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	Fail(c, http.StatusUnauthorized, msg)
}

// errorResponse 将服务层错误映射为状态码，未知错误只返回通用信息
func errorResponse(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var formatErr *transfer.FormatError
	switch {
	case errors.As(err, &formatErr):
		BadRequest(c, formatErr.Error())
	case errors.Is(err, transfer.ErrEmptyFile):
		BadRequest(c, "the uploaded file is empty")
	case errors.Is(err, transfer.ErrFileTooLarge):
		Fail(c, http.StatusRequestEntityTooLarge, "the uploaded file is too large")
	case errors.Is(err, tool.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, tool.ErrToolNotFound),
		errors.Is(err, repository.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, tool.ErrForbidden):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, tool.ErrDuplicateName),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrUsernameTaken):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(c, err.Error())
	case errors.Is(err, auth.ErrAccountDisabled):
		Fail(c, http.StatusForbidden, err.Error())
	default:
		Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
