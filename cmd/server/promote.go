package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"academia/backend/internal/repository"
	"academia/backend/internal/service"
	"academia/backend/pkg/jwt"
	"academia/backend/pkg/mq"
)

var promoteAt string

// promoteCmd 手动执行一次升年级，--at 可指定基准日期
var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Run the yearly student promotion once",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if promoteAt != "" {
			t, err := time.Parse("2006-01-02", promoteAt)
			if err != nil {
				return fmt.Errorf("--at 需为 YYYY-MM-DD: %w", err)
			}
			now = t
		}

		cfg, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		publisher, err := mq.New(&cfg.MQ, logger)
		if err != nil {
			logger.Warn("消息队列连接失败，领域事件将被丢弃", zap.Error(err))
			publisher = mq.NopPublisher{}
		}
		defer publisher.Close()

		svc, err := service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth),
			service.Deps{Publisher: publisher}, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Scheduler.JobTimeout)
		defer cancel()

		result, err := svc.Promotion.Run(ctx, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed=%d promoted_to_third=%d promoted_to_second=%d\n",
			result.Removed, result.PromotedToThird, result.PromotedToSecond)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteAt, "at", "", "基准日期 YYYY-MM-DD（默认今天）")
	rootCmd.AddCommand(promoteCmd)
}
