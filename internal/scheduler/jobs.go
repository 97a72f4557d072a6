package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"academia/backend/config"
	"academia/backend/internal/service"
)

// 任务名，同时用作锁名与指标标签
const (
	JobPromotion   = "promotion"
	JobInvitePurge = "invite_purge"
)

// PromotionJob 年度升年级
func PromotionJob(svc service.PromotionService, logger *zap.Logger) Job {
	return Job{
		Name: JobPromotion,
		Spec: svc.Spec(),
		Run: func(ctx context.Context) error {
			result, err := svc.Run(ctx, time.Now())
			if err != nil {
				return err
			}
			logger.Info("升年级任务完成",
				zap.Int64("removed", result.Removed),
				zap.Int64("promoted_to_third", result.PromotedToThird),
				zap.Int64("promoted_to_second", result.PromotedToSecond),
			)
			return nil
		},
	}
}

// InvitePurgeJob 清理过期邀请码
func InvitePurgeJob(svc service.InviteService, spec string) Job {
	return Job{
		Name: JobInvitePurge,
		Spec: spec,
		Run: func(ctx context.Context) error {
			_, err := svc.PurgeExpired(ctx)
			return err
		},
	}
}

// RegisterDefaults 注册升年级与邀请码清理任务，InvitePurgeSpec 为空时不清理
func (s *Scheduler) RegisterDefaults(cfg config.SchedulerConfig, svc *service.Service) error {
	if err := s.Register(PromotionJob(svc.Promotion, s.logger)); err != nil {
		return err
	}
	if cfg.InvitePurgeSpec == "" {
		return nil
	}
	return s.Register(InvitePurgeJob(svc.Invite, cfg.InvitePurgeSpec))
}
