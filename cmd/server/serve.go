package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"academia/backend/internal/api/handler"
	"academia/backend/internal/api/middleware"
	"academia/backend/internal/api/router"
	"academia/backend/internal/repository"
	"academia/backend/internal/scheduler"
	"academia/backend/internal/service"
	"academia/backend/pkg/database"
	"academia/backend/pkg/jwt"
	"academia/backend/pkg/metrics"
	"academia/backend/pkg/mq"
	"academia/backend/pkg/redis"
	"academia/backend/pkg/storage"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the scheduler",
	RunE:  runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "启动时不执行数据库迁移")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. 配置 / 日志 / 数据库
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer closeDB(db)

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 1.1 执行数据库迁移
	if !skipMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return err
		}
	}

	// 2. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口变量保持真正的 nil，下游据此关闭黑名单 / 限流 / 任务锁
	var (
		revoker service.TokenRevoker
		limiter middleware.RateLimiter
		locker  scheduler.Locker
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与任务锁将不可用", zap.Error(err))
	} else {
		defer rdb.Close()
		revoker, limiter, locker = rdb, rdb, rdb
	}

	// 3. 对象存储
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err == nil {
		err = store.EnsureBucket(ctx)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("初始化对象存储失败: %w", err)
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return fmt.Errorf("创建上传暂存目录失败: %w", err)
	}

	// 4. 消息队列（可选）
	publisher, err := mq.New(&cfg.MQ, logger)
	if err != nil {
		logger.Warn("消息队列连接失败，领域事件将被丢弃", zap.Error(err))
		publisher = mq.NopPublisher{}
	}
	defer publisher.Close()

	// 5. 依赖注入: Repository → Service → Handler
	m := metrics.New()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, jwtMgr, service.Deps{
		Uploader:  store,
		Revoker:   revoker,
		Publisher: publisher,
		Metrics:   m,
	}, logger)
	if err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}
	h := handler.NewHandler(cfg, svc)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{
		Guards:  svc.Guards,
		Limiter: limiter,
		Metrics: m,
	}, logger)

	// 7. 定时任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Scheduler, locker, m, logger.Named("scheduler"))
		if err != nil {
			return err
		}
		if err := sched.RegisterDefaults(cfg.Scheduler, svc); err != nil {
			return err
		}
		sched.Start()
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case runErr = <-serveErr:
		logger.Error("HTTP 服务器异常", zap.Error(runErr))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Warn("定时任务未在超时内结束", zap.Error(err))
		}
	}

	logger.Info("服务器已关闭")
	return runErr
}
