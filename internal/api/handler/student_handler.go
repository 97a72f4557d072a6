package handler

import (
	"github.com/gin-gonic/gin"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// StudentHandler 学生 HTTP 处理器
type StudentHandler struct {
	*AccountHandler[model.Student]
	svc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(svc service.StudentService, opts Options) *StudentHandler {
	return &StudentHandler{
		AccountHandler: newAccountHandler[model.Student](model.RoleStudent, svc, opts),
		svc:            svc,
	}
}

// Register 学生注册（multipart，需 uniqueCode，avatar 必填）
// POST /api/v1/student/register
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if !bindRequest(c, &req) {
		return
	}

	avatar, err := receiveAvatar(c, h.uploadDir)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer discardTemp(avatar)

	student, err := h.svc.Register(c.Request.Context(), &req, avatar)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, student, "Student registered successfully")
}

// UpdateDetails 更新资料
// PATCH /api/v1/student/update-details
func (h *StudentHandler) UpdateDetails(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if !bindRequest(c, &req) {
		return
	}

	student, err := h.svc.UpdateDetails(c.Request.Context(), identity.AccountID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, student, "Student details updated successfully")
}

// GroupStudents 按 (year, session) 分组
// GET /api/v1/student/group-students
func (h *StudentHandler) GroupStudents(c *gin.Context) {
	groups, err := h.svc.GroupByYearAndSession(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, groups, "Students grouped successfully")
}
