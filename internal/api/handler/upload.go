package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "academia/backend/pkg/errors"
)

const avatarField = "avatar"

// receiveAvatar 将 multipart 中的 avatar 暂存到 uploadDir，未上传时返回空路径
func receiveAvatar(c *gin.Context, uploadDir string) (string, error) {
	file, err := c.FormFile(avatarField)
	if err != nil {
		return "", nil
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", apperrors.Internal("Failed to receive avatar image", err)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	dst := filepath.Join(uploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", apperrors.Internal("Failed to receive avatar image", err)
	}
	return dst, nil
}

// discardTemp 删除暂存文件；上传成功时文件已被存储层删除
func discardTemp(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
