package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/mq"
)

// PromotionService 年度升年级任务
type PromotionService interface {
	// Run 以 now 的年份 Y 计算窗口：删除 session (Y-3)-Y 的 3rd Year，
	// 将 (Y-2)-(Y+1) 的 2nd Year 升为 3rd Year，将 (Y-1)-(Y+2) 的 1st Year 升为 2nd Year
	Run(ctx context.Context, now time.Time) (*dto.PromotionResult, error)
	// Calendar 未来 n 次执行时间的 iCalendar 文本
	Calendar(from time.Time, n int) ([]byte, error)
	Spec() string
}

type promotionService struct {
	repo      *repository.Repository
	publisher EventPublisher
	spec      string
	schedule  cron.Schedule
	loc       *time.Location
	logger    *zap.Logger
}

// NewPromotionService spec 为标准 5 段 cron 表达式
func NewPromotionService(
	repo *repository.Repository,
	publisher EventPublisher,
	spec string,
	loc *time.Location,
	logger *zap.Logger,
) (PromotionService, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("解析升年级 cron 表达式失败: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &promotionService{
		repo:      repo,
		publisher: publisher,
		spec:      spec,
		schedule:  schedule,
		loc:       loc,
		logger:    logger,
	}, nil
}

func (s *promotionService) Spec() string { return s.spec }

func (s *promotionService) Run(ctx context.Context, now time.Time) (*dto.PromotionResult, error) {
	y := now.In(s.loc).Year()
	graduating := model.SessionStarting(y - model.ProgramLength)
	toThird := model.SessionStarting(y - 2)
	toSecond := model.SessionStarting(y - 1)

	result := &dto.PromotionResult{RanAt: now}
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		var err error
		if result.Removed, err = txRepo.Student.DeleteByYearAndSession(ctx, model.Year3, graduating); err != nil {
			return fmt.Errorf("删除毕业学生: %w", err)
		}
		if result.PromotedToThird, err = txRepo.Student.PromoteYear(ctx, model.Year2, model.Year3, toThird); err != nil {
			return fmt.Errorf("2nd → 3rd: %w", err)
		}
		if result.PromotedToSecond, err = txRepo.Student.PromoteYear(ctx, model.Year1, model.Year2, toSecond); err != nil {
			return fmt.Errorf("1st → 2nd: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("升年级任务失败", zap.Int("year", y), zap.Error(err))
		return nil, apperrors.Internal("Failed to promote students", err)
	}

	s.logger.Info("升年级任务完成",
		zap.Int("year", y),
		zap.Int64("removed", result.Removed),
		zap.Int64("promoted_to_third", result.PromotedToThird),
		zap.Int64("promoted_to_second", result.PromotedToSecond),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, mq.EventStudentsPromoted, result); err != nil {
			s.logger.Warn("发布升年级事件失败", zap.Error(err))
		}
	}
	return result, nil
}

func (s *promotionService) Calendar(from time.Time, n int) ([]byte, error) {
	if n <= 0 || n > 20 {
		return nil, apperrors.BadRequest("count must be between 1 and 20")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//academia//promotion schedule//EN")

	next := from.In(s.loc)
	for i := 0; i < n; i++ {
		next = s.schedule.Next(next)
		if next.IsZero() {
			break
		}
		y := next.Year()
		event := cal.AddEvent(fmt.Sprintf("promotion-%d@academia", next.Unix()))
		event.SetDtStampTime(from.UTC())
		event.SetStartAt(next)
		event.SetEndAt(next.Add(time.Hour))
		event.SetSummary("Annual student promotion")
		event.SetDescription(fmt.Sprintf(
			"3rd Year of %s graduate; 2nd Year of %s move to 3rd Year; 1st Year of %s move to 2nd Year",
			model.SessionStarting(y-model.ProgramLength), model.SessionStarting(y-2), model.SessionStarting(y-1),
		))
	}

	return []byte(cal.Serialize()), nil
}
