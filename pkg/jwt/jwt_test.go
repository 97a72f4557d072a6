package jwt

import (
	"testing"
	"time"

	"academia/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		AccessTokenSecret:  "test-access-secret-for-unit-testing",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret-for-unit-testing",
		RefreshTokenTTL:    10 * 24 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("acct-1", "a@b.com", "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken 失败: %v", err)
	}

	if claims.AccountID != "acct-1" {
		t.Errorf("期望 AccountID=acct-1，实际=%s", claims.AccountID)
	}
	if claims.Email != "a@b.com" {
		t.Errorf("期望 Email=a@b.com，实际=%s", claims.Email)
	}
	if claims.Role != "student" {
		t.Errorf("期望 Role=student，实际=%s", claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestGenerateRefreshToken_OnlyCarriesIdentity(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("acct-1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken 失败: %v", err)
	}

	claims, err := m.ParseRefreshToken(token)
	if err != nil {
		t.Fatalf("ParseRefreshToken 失败: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Errorf("期望 AccountID=acct-1，实际=%s", claims.AccountID)
	}
	if claims.Email != "" || claims.Role != "" {
		t.Error("refresh token 不应携带 email/role")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 9*24*time.Hour || ttl > 11*24*time.Hour {
		t.Errorf("RefreshToken TTL 期望约 10 天，实际=%v", ttl)
	}
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	m := newTestManager()

	t1, _ := m.GenerateRefreshToken("acct-1")
	t2, _ := m.GenerateRefreshToken("acct-1")
	if t1 == t2 {
		t.Error("同一账号连续签发的 refresh token 不应相同")
	}
}

func TestParse_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager()

	access, _ := m.GenerateAccessToken("acct-1", "a@b.com", "admin")
	refresh, _ := m.GenerateRefreshToken("acct-1")

	if _, err := m.ParseRefreshToken(access); err != ErrTokenInvalid {
		t.Errorf("access token 不应通过 refresh 校验，实际: %v", err)
	}
	if _, err := m.ParseAccessToken(refresh); err != ErrTokenInvalid {
		t.Errorf("refresh token 不应通过 access 校验，实际: %v", err)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	if _, err := m.ParseAccessToken("invalid.token.string"); err == nil {
		t.Error("期望解析无效 token 返回错误")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		AccessTokenSecret: "different-secret-key-0000",
		AccessTokenTTL:    15 * time.Minute,
	})

	token, _ := m1.GenerateAccessToken("acct-1", "a@b.com", "admin")
	if _, err := m2.ParseAccessToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		AccessTokenSecret: "test-access-secret-for-unit-testing",
		AccessTokenTTL:    -1 * time.Minute,
	})

	token, _ := m.GenerateAccessToken("acct-1", "a@b.com", "admin")

	_, err := m.ParseAccessToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
