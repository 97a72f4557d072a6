package service

import (
	"context"
	"time"
)

// AvatarUploader 头像上传与清理（pkg/storage.Storage 实现）
type AvatarUploader interface {
	UploadFile(ctx context.Context, localPath, prefix string) (string, error)
	DeleteFile(ctx context.Context, url string) error
}

// TokenRevoker Access Token 黑名单（pkg/redis.Client 实现），可为 nil
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// EventPublisher 领域事件发布（pkg/mq.Publisher 实现）
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

const avatarPrefix = "avatars"
