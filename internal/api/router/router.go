package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"academia/backend/config"
	"academia/backend/internal/api/handler"
	"academia/backend/internal/api/middleware"
	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/service"
	"academia/backend/pkg/metrics"
)

// Deps 路由层依赖；Limiter 与 Metrics 可为 nil
type Deps struct {
	Guards  *service.GuardSet
	Limiter middleware.RateLimiter
	Metrics *metrics.Metrics
}

// accountRoutes 三种角色共用的账号路由
type accountRoutes interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	RenewRefreshToken(c *gin.Context)
	ChangePassword(c *gin.Context)
	Current(c *gin.Context)
	UpdateAvatar(c *gin.Context)
	UpdateDetails(c *gin.Context)
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			logger.Error("注册自定义校验规则失败", zap.Error(err))
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Auth.Cookie.Secure))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Server.MaxUploadBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	limit := middleware.RateLimit(deps.Limiter, cfg.Auth.LoginRateLimit, time.Minute)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		adminGuard := middleware.Auth(deps.Guards.For(model.RoleAdmin))
		admin := mountAccount(v1, "admin", "/get-admin", h.Admin, adminGuard, limit)
		{
			admin.POST("/generate-invite-code", adminGuard, h.Invite.GenerateInvite)
			admin.GET("/students/export", adminGuard, h.Export.ExportStudents)
			admin.GET("/promotion-calendar", adminGuard, h.Export.PromotionCalendar)
		}

		teacherGuard := middleware.Auth(deps.Guards.For(model.RoleTeacher))
		mountAccount(v1, "teacher", "/get-teacher", h.Teacher, teacherGuard, limit)

		studentGuard := middleware.Auth(deps.Guards.For(model.RoleStudent))
		student := mountAccount(v1, "student", "/get-student", h.Student, studentGuard, limit)
		{
			student.GET("/group-students", studentGuard, h.Student.GroupStudents)
		}

		// 聊天室（任意角色）
		chats := v1.Group("/chats")
		chats.Use(middleware.Auth(deps.Guards))
		{
			chats.GET("/:year/:session/messages", h.Chat.GetMessages)
			chats.POST("/:year/:session/messages", h.Chat.SendMessage)
		}
	}

	return r
}

// mountAccount 注册 /api/v1/<role> 下的账号路由
// renew-refresh-token 以 refresh token 为凭证，不经过 access token 鉴权
func mountAccount(v1 *gin.RouterGroup, role, currentPath string, h accountRoutes, guard, limit gin.HandlerFunc) *gin.RouterGroup {
	g := v1.Group("/" + role)

	g.POST("/register", limit, h.Register)
	g.POST("/log-in", limit, h.Login)
	g.POST("/renew-refresh-token", h.RenewRefreshToken)

	g.POST("/log-out", guard, h.Logout)
	g.POST("/change-password", guard, h.ChangePassword)
	g.GET(currentPath, guard, h.Current)
	g.PATCH("/update-avatar", guard, h.UpdateAvatar)
	g.PATCH("/update-details", guard, h.UpdateDetails)

	return g
}
