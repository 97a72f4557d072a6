package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/jwt"
)

// SessionIssuer 签发 / 轮换 Token 对，每个账号只保留最近一次签发的 refresh token
type SessionIssuer[T any, PT model.AccountPtr[T]] struct {
	repo   repository.AccountRepository[T]
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewSessionIssuer 创建 SessionIssuer
func NewSessionIssuer[T any, PT model.AccountPtr[T]](
	repo repository.AccountRepository[T],
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) *SessionIssuer[T, PT] {
	return &SessionIssuer[T, PT]{repo: repo, jwtMgr: jwtMgr, logger: logger}
}

// Issue 签发新的 Token 对并覆盖账号上保存的 refresh token
func (s *SessionIssuer[T, PT]) Issue(ctx context.Context, account *T) (*dto.TokenPair, error) {
	base := PT(account).Base()

	accessToken, err := s.jwtMgr.GenerateAccessToken(base.ID, base.Email, string(base.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.String("account_id", base.ID), zap.Error(err))
		return nil, apperrors.Internal("Something went wrong while generating access and refresh token", err)
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(base.ID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.String("account_id", base.ID), zap.Error(err))
		return nil, apperrors.Internal("Something went wrong while generating access and refresh token", err)
	}

	if err := s.repo.SetRefreshToken(ctx, base.ID, &refreshToken); err != nil {
		s.logger.Error("保存 RefreshToken 失败", zap.String("account_id", base.ID), zap.Error(err))
		return nil, apperrors.Internal("Something went wrong while generating access and refresh token", err)
	}
	base.RefreshToken = &refreshToken

	return &dto.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Rotate 校验 refresh token 与账号上保存的值完全一致后重新签发
func (s *SessionIssuer[T, PT]) Rotate(ctx context.Context, presented string) (*dto.TokenPair, error) {
	if presented == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtMgr.ParseRefreshToken(presented)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询账号失败", zap.String("account_id", claims.AccountID), zap.Error(err))
		return nil, apperrors.Internal("Failed to load account", err)
	}

	base := PT(account).Base()
	if !base.IsActive {
		return nil, ErrInvalidRefreshToken
	}
	if base.RefreshToken == nil || *base.RefreshToken != presented {
		return nil, ErrRefreshTokenUsed
	}

	return s.Issue(ctx, account)
}

// Revoke 清空账号的 refresh token
func (s *SessionIssuer[T, PT]) Revoke(ctx context.Context, accountID string) error {
	if err := s.repo.SetRefreshToken(ctx, accountID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("清空 RefreshToken 失败", zap.String("account_id", accountID), zap.Error(err))
		return apperrors.Internal("Failed to log out", err)
	}
	return nil
}
