package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/backend/internal/api/middleware"
	"academia/backend/internal/dto"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中安全提取鉴权身份。
// 如果认证中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (*service.Identity, bool) {
	v, exists := c.Get(middleware.ContextIdentity)
	identity, ok := v.(*service.Identity)
	if !exists || !ok || identity == nil {
		response.Unauthorized(c, "Unauthorized request")
		return nil, false
	}
	return identity, true
}

// bindRequest 按 Content-Type 绑定请求体；空请求体交给服务层做必填校验
func bindRequest(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid request data", dto.ValidationDetails(err))
		return false
	}
	return true
}
