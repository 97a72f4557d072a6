package repository

import (
	"context"

	"gorm.io/gorm"

	"academia/backend/internal/model"
)

// AccountRepository 三种角色共用的账号数据访问接口
type AccountRepository[T any] interface {
	Create(ctx context.Context, account *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	// GetProfile 不加载密码哈希与 refresh token
	GetProfile(ctx context.Context, id string) (*T, error)
	GetByEmail(ctx context.Context, email string) (*T, error)
	// EmailTaken excludeID 非空时排除该账号自身
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id, hash string) error
	// SetRefreshToken token 为 nil 表示清空会话
	SetRefreshToken(ctx context.Context, id string, token *string) error
}

// accountRepo AccountRepository 的 GORM 实现
type accountRepo[T any, PT model.AccountPtr[T]] struct {
	db *gorm.DB
}

// NewAccountRepo 创建 AccountRepository 实例
func NewAccountRepo[T any, PT model.AccountPtr[T]](db *gorm.DB) AccountRepository[T] {
	return &accountRepo[T, PT]{db: db}
}

func (r *accountRepo[T, PT]) Create(ctx context.Context, account *T) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo[T, PT]) GetByID(ctx context.Context, id string) (*T, error) {
	var account T
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo[T, PT]) GetProfile(ctx context.Context, id string) (*T, error) {
	var account T
	err := r.db.WithContext(ctx).
		Select(PT(&account).ProfileColumns()).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo[T, PT]) GetByEmail(ctx context.Context, email string) (*T, error) {
	var account T
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo[T, PT]) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(new(T)).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepo[T, PT]) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepo[T, PT]) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (r *accountRepo[T, PT]) SetRefreshToken(ctx context.Context, id string, token *string) error {
	var value interface{} = gorm.Expr("NULL")
	if token != nil {
		value = *token
	}
	return r.UpdateFields(ctx, id, map[string]interface{}{"refresh_token": value})
}
