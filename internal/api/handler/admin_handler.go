package handler

import (
	"github.com/gin-gonic/gin"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// AdminHandler 管理员 HTTP 处理器
type AdminHandler struct {
	*AccountHandler[model.Admin]
	svc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(svc service.AdminService, opts Options) *AdminHandler {
	return &AdminHandler{
		AccountHandler: newAccountHandler[model.Admin](model.RoleAdmin, svc, opts),
		svc:            svc,
	}
}

// Register 管理员注册（multipart，avatar 必填）
// POST /api/v1/admin/register
func (h *AdminHandler) Register(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if !bindRequest(c, &req) {
		return
	}

	avatar, err := receiveAvatar(c, h.uploadDir)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer discardTemp(avatar)

	admin, err := h.svc.Register(c.Request.Context(), &req, avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, admin, "Admin registered successfully")
}

// UpdateDetails 更新资料
// PATCH /api/v1/admin/update-details
func (h *AdminHandler) UpdateDetails(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateAdminRequest
	if !bindRequest(c, &req) {
		return
	}

	admin, err := h.svc.UpdateDetails(c.Request.Context(), identity.AccountID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, admin, "Admin details updated successfully")
}
