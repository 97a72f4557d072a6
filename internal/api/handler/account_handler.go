package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"academia/backend/internal/api/middleware"
	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// Options Handler 共享的 HTTP 层配置
type Options struct {
	Cookies   sessionCookies
	UploadDir string
}

// AccountHandler 三种角色共用的账号接口
type AccountHandler[T any] struct {
	role      model.Role
	svc       service.AccountService[T]
	cookies   sessionCookies
	uploadDir string
}

func newAccountHandler[T any](role model.Role, svc service.AccountService[T], opts Options) *AccountHandler[T] {
	return &AccountHandler[T]{
		role:      role,
		svc:       svc,
		cookies:   opts.Cookies,
		uploadDir: opts.UploadDir,
	}
}

// Login 登录
// POST /api/v1/<role>/log-in
func (h *AccountHandler[T]) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindRequest(c, &req) {
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.cookies.set(c, pair)
	response.OK(c, pair, h.role.Model()+" logged in successfully")
}

// Logout 登出
// POST /api/v1/<role>/log-out
func (h *AccountHandler[T]) Logout(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), identity); err != nil {
		response.Fail(c, err)
		return
	}

	h.cookies.clear(c)
	response.OK(c, nil, h.role.Model()+" logged out successfully")
}

// RenewRefreshToken 轮换 Token 对，refresh token 来自 Cookie 或请求体
// POST /api/v1/<role>/renew-refresh-token
func (h *AccountHandler[T]) RenewRefreshToken(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req dto.RefreshTokenRequest
		if !bindRequest(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.svc.RenewSession(c.Request.Context(), token)
	if err != nil {
		response.Fail(c, err)
		return
	}

	h.cookies.set(c, pair)
	response.OK(c, pair, "Refresh token updated")
}

// ChangePassword 修改密码
// POST /api/v1/<role>/change-password
func (h *AccountHandler[T]) ChangePassword(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), identity.AccountID, &req); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil, "Password changed successfully")
}

// Current 当前登录账号
// GET /api/v1/<role>/get-<role>
func (h *AccountHandler[T]) Current(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	response.OK(c, identity.Account, "Current "+strings.ToLower(h.role.Model())+" fetched successfully")
}

// UpdateAvatar 更新头像
// PATCH /api/v1/<role>/update-avatar
func (h *AccountHandler[T]) UpdateAvatar(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	avatar, err := receiveAvatar(c, h.uploadDir)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer discardTemp(avatar)

	account, err := h.svc.UpdateAvatar(c.Request.Context(), identity.AccountID, avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, account, "Avatar updated successfully")
}
