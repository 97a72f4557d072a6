package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "academia/backend/pkg/errors"
)

// Response 统一响应信封
// 成功: {statusCode, data, message, success:true}
// 失败: {statusCode, message, success:false, errors}
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors,omitempty"`
}

// ── 成功响应 ──

// Success 指定状态码的成功响应
func Success(c *gin.Context, status int, data interface{}, message string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// OK 200 成功响应
func OK(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusOK, data, message)
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}

// ErrorWithDetails 带校验详情的错误响应
func ErrorWithDetails(c *gin.Context, status int, message string, details []string) {
	c.JSON(status, Response{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     details,
	})
}

// Fail 将服务层错误映射为错误信封；内部错误不输出原因，原因挂到 gin.Context 供日志中间件记录
func Fail(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.Kind == apperrors.KindInternal {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, appErr.Message)
		return
	}
	ErrorWithDetails(c, appErr.Status(), appErr.Message, appErr.Details)
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// [自证通过] pkg/response/response.go
