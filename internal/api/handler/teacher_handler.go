package handler

import (
	"github.com/gin-gonic/gin"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// TeacherHandler 教师 HTTP 处理器
type TeacherHandler struct {
	*AccountHandler[model.Teacher]
	svc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(svc service.TeacherService, opts Options) *TeacherHandler {
	return &TeacherHandler{
		AccountHandler: newAccountHandler[model.Teacher](model.RoleTeacher, svc, opts),
		svc:            svc,
	}
}

// Register 教师注册（multipart，需 uniqueCode，avatar 可选）
// POST /api/v1/teacher/register
func (h *TeacherHandler) Register(c *gin.Context) {
	var req dto.RegisterTeacherRequest
	if !bindRequest(c, &req) {
		return
	}

	avatar, err := receiveAvatar(c, h.uploadDir)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer discardTemp(avatar)

	teacher, err := h.svc.Register(c.Request.Context(), &req, avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, teacher, "Teacher registered successfully")
}

// UpdateDetails 更新资料
// PATCH /api/v1/teacher/update-details
func (h *TeacherHandler) UpdateDetails(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateTeacherRequest
	if !bindRequest(c, &req) {
		return
	}

	teacher, err := h.svc.UpdateDetails(c.Request.Context(), identity.AccountID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, teacher, "Teacher details updated successfully")
}
