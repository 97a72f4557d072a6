package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"academia/backend/config"
)

// New 根据 cfg.Driver 选择存储后端
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)

	switch cfg.Driver {
	case "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("初始化 %s 存储失败: %w", cfg.Driver, err)
	}

	logger.Info("对象存储已就绪", zap.String("driver", cfg.Driver), zap.String("bucket", backend.Bucket()))
	return NewStorage(backend, cfg.PublicBaseURL, logger), nil
}
