package handler

import (
	"github.com/gin-gonic/gin"

	"academia/backend/internal/dto"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// InviteHandler 邀请码 HTTP 处理器
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler 创建 InviteHandler
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// GenerateInvite 生成一次性邀请码
// POST /api/v1/admin/generate-invite-code
func (h *InviteHandler) GenerateInvite(c *gin.Context) {
	var req dto.GenerateInviteRequest
	if !bindRequest(c, &req) {
		return
	}

	invite, err := h.inviteSvc.Generate(c.Request.Context(), req.Role)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, invite, "Invite code generated successfully")
}
