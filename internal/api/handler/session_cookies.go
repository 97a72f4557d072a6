package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"academia/backend/config"
	"academia/backend/internal/api/middleware"
	"academia/backend/internal/dto"
)

// sessionCookies 写入 / 清除 accessToken 与 refreshToken Cookie，均为 httpOnly
type sessionCookies struct {
	cfg        config.CookieConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (s sessionCookies) sameSite() http.SameSite {
	switch strings.ToLower(s.cfg.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (s sessionCookies) set(c *gin.Context, pair *dto.TokenPair) {
	c.SetSameSite(s.sameSite())
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(s.accessTTL.Seconds()), "/", s.cfg.Domain, s.cfg.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(s.refreshTTL.Seconds()), "/", s.cfg.Domain, s.cfg.Secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(s.sameSite())
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", s.cfg.Domain, s.cfg.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", s.cfg.Domain, s.cfg.Secure, true)
}
