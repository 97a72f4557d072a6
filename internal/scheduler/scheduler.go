package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"academia/backend/config"
	"academia/backend/pkg/metrics"
)

const defaultJobTimeout = 10 * time.Minute

// Locker 跨实例任务锁（pkg/redis.Client 实现），可为 nil
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// Job 一个定时任务
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler 基于 robfig/cron 的定时任务调度器
// 同一任务在本进程内跳过重叠执行，跨实例由 Locker 互斥
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	metrics *metrics.Metrics
	timeout time.Duration
	logger  *zap.Logger
}

// New 创建调度器，时区取自 cfg.Timezone
func New(cfg config.SchedulerConfig, locker Locker, m *metrics.Metrics, logger *zap.Logger) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("加载调度时区失败: %w", err)
		}
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker:  locker,
		metrics: m,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Register 注册任务，Spec 为标准 5 段 cron 表达式或 @hourly 等描述符
func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("注册定时任务 %s 失败: %w", job.Name, err)
	}
	s.logger.Info("定时任务已注册", zap.String("job", job.Name), zap.String("spec", job.Spec))
	return nil
}

// Start 在后台启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务调度器已启动", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop 停止调度并等待执行中的任务结束，ctx 到期时直接返回
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("定时任务调度器已停止")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("等待定时任务结束超时: %w", ctx.Err())
	}
}

// run 单次执行：加锁 → 执行 → 记录指标
func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := s.logger.With(zap.String("job", job.Name))

	if s.locker != nil {
		token, ok, err := s.locker.AcquireLock(ctx, "job:"+job.Name, s.timeout)
		switch {
		case err != nil:
			// Redis 不可用时降级为单实例执行
			log.Warn("获取任务锁失败，继续执行", zap.Error(err))
		case !ok:
			log.Info("任务正由其他实例执行，本次跳过")
			return
		default:
			defer func() {
				if err := s.locker.ReleaseLock(context.Background(), "job:"+job.Name, token); err != nil {
					log.Warn("释放任务锁失败", zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	err := job.Run(ctx)
	s.metrics.ObserveJob(job.Name, err)
	if err != nil {
		log.Error("定时任务执行失败", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	log.Info("定时任务执行完成", zap.Duration("elapsed", time.Since(start)))
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
