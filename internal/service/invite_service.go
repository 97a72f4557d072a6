package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/mq"
)

// InviteService 邀请码业务接口
type InviteService interface {
	Generate(ctx context.Context, role string) (*dto.InviteResponse, error)
	// Validate 只读预检，不消费
	Validate(ctx context.Context, code string, role model.Role) error
	// Consume 必须传入事务内的 Repository，与账号插入同事务提交
	Consume(ctx context.Context, txRepo *repository.Repository, code string, role model.Role) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	repo      *repository.Repository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(repo *repository.Repository, publisher EventPublisher, logger *zap.Logger) InviteService {
	return &inviteService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// invite.generated 事件负载
type inviteGeneratedEvent struct {
	Code      string    `json:"code"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *inviteService) Generate(ctx context.Context, role string) (*dto.InviteResponse, error) {
	r := model.Role(role)
	if r != model.RoleTeacher && r != model.RoleStudent {
		return nil, ErrInvalidRole
	}

	now := s.now()
	invite := &model.InviteCode{
		Code:      uuid.NewString(),
		Role:      r,
		Used:      false,
		CreatedAt: now,
		ExpiresAt: now.Add(model.InviteTTL),
	}
	if err := s.repo.Invite.Create(ctx, invite); err != nil {
		s.logger.Error("创建邀请码失败", zap.Error(err))
		return nil, apperrors.Internal("Failed to generate invite code", err)
	}

	if s.publisher != nil {
		evt := inviteGeneratedEvent{Code: invite.Code, Role: role, ExpiresAt: invite.ExpiresAt}
		if err := s.publisher.Publish(ctx, mq.EventInviteGenerated, evt); err != nil {
			s.logger.Warn("发布邀请码事件失败", zap.Error(err))
		}
	}

	s.logger.Info("邀请码已生成", zap.String("role", role), zap.Time("expires_at", invite.ExpiresAt))
	return &dto.InviteResponse{
		InviteCode: invite.Code,
		Role:       role,
		ExpiresAt:  invite.ExpiresAt,
	}, nil
}

func (s *inviteService) Validate(ctx context.Context, code string, role model.Role) error {
	if code == "" {
		return ErrInvalidInvite
	}
	if _, err := s.repo.Invite.GetValid(ctx, code, role, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidInvite
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return apperrors.Internal("Failed to validate invite code", err)
	}
	return nil
}

func (s *inviteService) Consume(ctx context.Context, txRepo *repository.Repository, code string, role model.Role) error {
	ok, err := txRepo.Invite.Consume(ctx, code, role, s.now())
	if err != nil {
		s.logger.Error("消费邀请码失败", zap.Error(err))
		return apperrors.Internal("Failed to consume invite code", err)
	}
	if !ok {
		return ErrInvalidInvite
	}
	return nil
}

func (s *inviteService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.Invite.PurgeExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("清理过期邀请码失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("已清理过期邀请码", zap.Int64("count", n))
	}
	return n, nil
}
