package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/jwt"
)

// Identity 通过鉴权后的调用方身份
type Identity struct {
	AccountID string
	Email     string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
	// Account 为不含密码与 refresh token 的账号记录（*model.Admin / *model.Teacher / *model.Student）
	Account any
}

// Authorizer 校验 Access Token 并返回身份
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*Identity, error)
}

// Guard 单一角色的鉴权器
type Guard[T any, PT model.AccountPtr[T]] struct {
	role    model.Role
	repo    repository.AccountRepository[T]
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewGuard 创建角色鉴权器；revoker 为 nil 时不检查黑名单
func NewGuard[T any, PT model.AccountPtr[T]](
	repo repository.AccountRepository[T],
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) *Guard[T, PT] {
	return &Guard[T, PT]{
		role:    model.RoleFor[T, PT](),
		repo:    repo,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		logger:  logger,
	}
}

// Role 鉴权器对应的角色
func (g *Guard[T, PT]) Role() model.Role { return g.role }

// Authorize 依次校验：签名与有效期 → 角色 → 黑名单 → 账号存在且启用
func (g *Guard[T, PT]) Authorize(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := g.jwtMgr.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	if model.Role(claims.Role) != g.role {
		return nil, ErrInvalidAccessToken
	}

	if g.revoker != nil {
		revoked, err := g.revoker.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Redis 不可用时降级放行
			g.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidAccessToken
		}
	}

	account, err := g.repo.GetProfile(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAccessToken
		}
		g.logger.Error("鉴权时查询账号失败", zap.String("account_id", claims.AccountID), zap.Error(err))
		return nil, apperrors.Internal("Failed to load account", err)
	}
	if !PT(account).Base().IsActive {
		return nil, ErrInvalidAccessToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &Identity{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      g.role,
		TokenID:   claims.ID,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}

// GuardSet 按 Token 中的 role 分派到对应的 Guard，供所有角色共用的路由使用
type GuardSet struct {
	jwtMgr *jwt.Manager
	guards map[model.Role]Authorizer
}

// NewGuardSet 创建 GuardSet
func NewGuardSet(jwtMgr *jwt.Manager, guards map[model.Role]Authorizer) *GuardSet {
	return &GuardSet{jwtMgr: jwtMgr, guards: guards}
}

// For 返回指定角色的 Guard
func (s *GuardSet) For(role model.Role) Authorizer {
	return s.guards[role]
}

// Authorize 先解析角色，再交给该角色的 Guard 完成完整校验
func (s *GuardSet) Authorize(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.jwtMgr.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	guard, ok := s.guards[model.Role(claims.Role)]
	if !ok {
		return nil, ErrInvalidAccessToken
	}
	return guard.Authorize(ctx, token)
}
