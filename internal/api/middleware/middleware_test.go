package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"academia/backend/internal/model"
	"academia/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── stubs ──

type stubAuthorizer struct {
	gotToken string
	err      error
}

func (s *stubAuthorizer) Authorize(_ context.Context, token string) (*service.Identity, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return &service.Identity{
		AccountID: "teacher-1",
		Role:      model.RoleTeacher,
		Account:   &model.Teacher{},
	}, nil
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Auth ──

func TestAuth_PrefersCookie(t *testing.T) {
	auth := &stubAuthorizer{}
	r := gin.New()
	r.GET("/me", Auth(auth), func(c *gin.Context) {
		if c.GetString(ContextAccountID) != "teacher-1" || c.GetString(ContextRole) != "teacher" {
			t.Errorf("上下文身份不符: %v %v", c.GetString(ContextAccountID), c.GetString(ContextRole))
		}
		if _, ok := c.Get("teacher"); !ok {
			t.Error("应以角色名为键写入账号")
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	w := serve(r, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("期望 204，实际 %d", w.Code)
	}
	if auth.gotToken != "cookie-token" {
		t.Errorf("应优先使用 Cookie，实际 %q", auth.gotToken)
	}
}

func TestAuth_BearerFallback(t *testing.T) {
	auth := &stubAuthorizer{}
	r := gin.New()
	r.GET("/me", Auth(auth), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	serve(r, req)

	if auth.gotToken != "header-token" {
		t.Errorf("无 Cookie 时应读取 Bearer，实际 %q", auth.gotToken)
	}
}

func TestAuth_RejectsAndAborts(t *testing.T) {
	auth := &stubAuthorizer{err: service.ErrInvalidAccessToken}
	reached := false
	r := gin.New()
	r.GET("/me", Auth(auth), func(c *gin.Context) { reached = true })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := serve(r, req)

	if reached {
		t.Error("鉴权失败后不应继续执行")
	}
	if auth.gotToken != "" {
		t.Errorf("非 Bearer 头应视为未携带 Token，实际 %q", auth.gotToken)
	}
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid access token") {
		t.Errorf("期望 401 Invalid access token，实际 %d %s", w.Code, w.Body.String())
	}
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limiter  RateLimiter
		limit    int
		wantCode int
	}{
		{"未配置限流器", nil, 5, http.StatusOK},
		{"limit 为 0", &stubLimiter{allowed: false}, 0, http.StatusOK},
		{"放行", &stubLimiter{allowed: true}, 5, http.StatusOK},
		{"拒绝", &stubLimiter{allowed: false}, 5, http.StatusTooManyRequests},
		{"Redis 出错降级", &stubLimiter{err: errors.New("down")}, 5, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/log-in", RateLimit(tt.limiter, tt.limit, time.Minute), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := serve(r, httptest.NewRequest(http.MethodPost, "/log-in", nil))
			if w.Code != tt.wantCode {
				t.Errorf("期望 %d，实际 %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestRateLimit_KeyIncludesRoute(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	r := gin.New()
	r.POST("/:role/log-in", RateLimit(limiter, 5, time.Minute), func(c *gin.Context) {})
	serve(r, httptest.NewRequest(http.MethodPost, "/admin/log-in", nil))

	if len(limiter.keys) != 1 || !strings.HasSuffix(limiter.keys[0], ":/:role/log-in") {
		t.Errorf("限流 key 应使用路由模板: %v", limiter.keys)
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := serve(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用请求头中的 ID: %q", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	w = serve(r, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 ID 应重新生成 UUID，实际 %q", got)
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", BodyLimit(8, 1<<20), func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"far too long"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	if w.Code == http.StatusOK {
		t.Error("超出上限的请求体不应被接受")
	}
}

func TestBodyLimit_MultipartUsesUploadLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", BodyLimit(8, 1<<20), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("multipart 请求应使用上传上限，实际 %d", w.Code)
	}
}

// ── SecurityHeaders ──

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(true))
	r.GET("/api/v1/admin/get-admin", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/admin/get-admin", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("API 响应应禁止缓存")
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("启用 HSTS 时应设置 Strict-Transport-Security")
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("Cache-Control") != "" {
		t.Error("非 API 路径不应设置 Cache-Control")
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" ||
		w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("白名单 Origin 应被回显并允许凭证")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单 Origin 不应被允许")
	}
}

// ── Metrics ──

func TestMetrics_NilSafe(t *testing.T) {
	r := gin.New()
	r.GET("/", Metrics(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}
