package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage 对象存储后端的通用操作
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage 在后端之上提供头像上传等业务接口
type Storage struct {
	backend       ObjectStorage
	publicBaseURL string
	logger        *zap.Logger
}

// NewStorage publicBaseURL 用于拼接对外可访问的对象地址
func NewStorage(backend ObjectStorage, publicBaseURL string, logger *zap.Logger) *Storage {
	return &Storage{
		backend:       backend,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// EnsureBucket 确保存储桶存在
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// UploadFile 上传本地暂存文件并返回公开 URL
// 无论成功与否，本地文件都会被删除
func (s *Storage) UploadFile(ctx context.Context, localPath, prefix string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("删除本地暂存文件失败", zap.String("path", localPath), zap.Error(err))
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("打开暂存文件失败: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("读取文件信息失败: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join(prefix, uuid.NewString()+ext)
	if err := s.backend.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}

	return s.URL(key), nil
}

// DeleteFile 按 UploadFile 返回的公开 URL 删除对象
// 不属于本存储桶的 URL（如外部头像）直接忽略
func (s *Storage) DeleteFile(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("删除对象失败: %w", err)
	}
	return nil
}

func (s *Storage) keyFromURL(url string) (string, bool) {
	prefix := s.publicBaseURL + "/" + s.backend.Bucket() + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

// URL 拼接对象的公开访问地址
func (s *Storage) URL(key string) string {
	return s.publicBaseURL + "/" + s.backend.Bucket() + "/" + key
}
