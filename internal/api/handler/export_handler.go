package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"

	defaultCalendarCount = 5
)

// ExportHandler 文件导出 HTTP 处理器
type ExportHandler struct {
	studentSvc   service.StudentService
	promotionSvc service.PromotionService
	now          func() time.Time
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(studentSvc service.StudentService, promotionSvc service.PromotionService) *ExportHandler {
	return &ExportHandler{studentSvc: studentSvc, promotionSvc: promotionSvc, now: time.Now}
}

// ExportStudents 按学年导出学生名单
// GET /api/v1/admin/students/export
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	data, err := h.studentSvc.ExportGrouped(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	filename := "students-" + h.now().Format("20060102") + ".xlsx"
	attachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// PromotionCalendar 升年级任务的后续执行时间（iCalendar）
// GET /api/v1/admin/promotion-calendar?count=5
func (h *ExportHandler) PromotionCalendar(c *gin.Context) {
	count := defaultCalendarCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "count must be an integer")
			return
		}
		count = n
	}

	data, err := h.promotionSvc.Calendar(h.now(), count)
	if err != nil {
		response.Fail(c, err)
		return
	}

	attachment(c, "promotion.ics")
	c.Data(http.StatusOK, icsContentType, data)
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
