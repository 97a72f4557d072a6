package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	apperrors "academia/backend/pkg/errors"
	"academia/backend/pkg/metrics"
)

// AccountService 三种角色共有的账号操作
type AccountService[T any] interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPair, error)
	Logout(ctx context.Context, identity *Identity) error
	RenewSession(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	ChangePassword(ctx context.Context, accountID string, req *dto.ChangePasswordRequest) error
	Current(ctx context.Context, accountID string) (*T, error)
	UpdateAvatar(ctx context.Context, accountID, localPath string) (*T, error)
}

// AccountDeps 账号服务共享的外部依赖
type AccountDeps struct {
	Uploader   AvatarUploader
	Revoker    TokenRevoker
	Metrics    *metrics.Metrics
	BcryptCost int
}

// accountCore 按角色参数化的账号逻辑，各角色服务嵌入后只实现注册与资料更新
type accountCore[T any, PT model.AccountPtr[T]] struct {
	role     model.Role
	root     *repository.Repository
	pick     func(*repository.Repository) repository.AccountRepository[T]
	repo     repository.AccountRepository[T]
	sessions *SessionIssuer[T, PT]
	invites  InviteService
	deps     AccountDeps
	logger   *zap.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func newAccountCore[T any, PT model.AccountPtr[T]](
	root *repository.Repository,
	pick func(*repository.Repository) repository.AccountRepository[T],
	sessions *SessionIssuer[T, PT],
	invites InviteService,
	deps AccountDeps,
	logger *zap.Logger,
) *accountCore[T, PT] {
	if deps.BcryptCost < bcrypt.MinCost {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	role := model.RoleFor[T, PT]()
	return &accountCore[T, PT]{
		role:     role,
		root:     root,
		pick:     pick,
		repo:     pick(root),
		sessions: sessions,
		invites:  invites,
		deps:     deps,
		logger:   logger.With(zap.String("role", string(role))),
	}
}

// ── 注册 ──

// registration 一次注册所需的输入，build 构造待插入的账号（不含邮箱、密码与头像）
type registration[T any] struct {
	missing        []string
	email          string
	password       string
	inviteCode     string // 为空表示该角色无需邀请码
	avatarPath     string
	avatarRequired bool
	build          func() (*T, error)
}

// register 顺序：必填校验 → 字段解析 → 邀请码预检 → 邮箱冲突 → 上传头像 → 事务{消费邀请码, 插入账号}
func (c *accountCore[T, PT]) register(ctx context.Context, r registration[T]) (account *T, err error) {
	defer func() { c.deps.Metrics.ObserveAuth(string(c.role), "register", err) }()

	if len(r.missing) > 0 {
		return nil, ErrMissingFields.WithDetails(r.missing...)
	}

	account, err = r.build()
	if err != nil {
		return nil, err
	}

	if r.inviteCode != "" {
		if err := c.invites.Validate(ctx, r.inviteCode, c.role); err != nil {
			return nil, err
		}
	}

	if err := c.ensureEmailAvailable(ctx, r.email, ""); err != nil {
		return nil, err
	}

	avatar, err := c.uploadAvatar(ctx, r.avatarPath, r.avatarRequired)
	if err != nil {
		return nil, err
	}

	hash, err := c.hashPassword(r.password)
	if err != nil {
		return nil, err
	}
	base := PT(account).Base()
	base.Email = strings.TrimSpace(r.email)
	base.PasswordHash = hash
	base.Role = c.role
	base.Avatar = avatar
	base.IsActive = true

	err = c.root.Transaction(ctx, func(txRepo *repository.Repository) error {
		if r.inviteCode != "" {
			if err := c.invites.Consume(ctx, txRepo, r.inviteCode, c.role); err != nil {
				return err
			}
		}
		return c.pick(txRepo).Create(ctx, account)
	})
	if err != nil {
		c.removeAvatar(ctx, avatar)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyExists(c.role)
		}
		if apperrors.As(err).Kind != apperrors.KindInternal {
			return nil, err
		}
		c.logger.Error("注册账号失败", zap.String("email", base.Email), zap.Error(err))
		return nil, apperrors.Internal("Something went wrong while registering", err)
	}

	c.logger.Info("账号注册成功", zap.String("account_id", base.ID))
	base.PasswordHash = ""
	base.RefreshToken = nil
	return account, nil
}

// ── 会话 ──

func (c *accountCore[T, PT]) Login(ctx context.Context, req *dto.LoginRequest) (pair *dto.TokenPair, err error) {
	defer func() { c.deps.Metrics.ObserveAuth(string(c.role), "login", err) }()

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}

	account, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.compareDummy(req.Password)
			return nil, ErrInvalidCredentials
		}
		c.logger.Error("查询账号失败", zap.Error(err))
		return nil, apperrors.Internal("Failed to log in", err)
	}

	base := PT(account).Base()
	if !base.IsActive {
		c.compareDummy(req.Password)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(base.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return c.sessions.Issue(ctx, account)
}

func (c *accountCore[T, PT]) Logout(ctx context.Context, identity *Identity) (err error) {
	defer func() { c.deps.Metrics.ObserveAuth(string(c.role), "logout", err) }()

	if err := c.sessions.Revoke(ctx, identity.AccountID); err != nil {
		return err
	}

	if c.deps.Revoker != nil && identity.TokenID != "" {
		ttl := time.Until(identity.ExpiresAt)
		if err := c.deps.Revoker.BlacklistToken(ctx, identity.TokenID, ttl); err != nil {
			c.logger.Warn("Access Token 加入黑名单失败", zap.Error(err))
		}
	}
	return nil
}

func (c *accountCore[T, PT]) RenewSession(ctx context.Context, refreshToken string) (pair *dto.TokenPair, err error) {
	defer func() { c.deps.Metrics.ObserveAuth(string(c.role), "refresh", err) }()
	return c.sessions.Rotate(ctx, strings.TrimSpace(refreshToken))
}

// ── 密码 / 资料 ──

func (c *accountCore[T, PT]) ChangePassword(ctx context.Context, accountID string, req *dto.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return ErrPasswordsRequired
	}

	account, err := c.repo.GetByID(ctx, accountID)
	if err != nil {
		return c.lookupError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(PT(account).Base().PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	hash, err := c.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := c.repo.UpdatePassword(ctx, accountID, hash); err != nil {
		return c.lookupError(err)
	}
	return nil
}

func (c *accountCore[T, PT]) Current(ctx context.Context, accountID string) (*T, error) {
	account, err := c.repo.GetProfile(ctx, accountID)
	if err != nil {
		return nil, c.lookupError(err)
	}
	return account, nil
}

// UpdateAvatar 上传新头像；写库成功后删除旧头像，失败则删除新上传的对象
func (c *accountCore[T, PT]) UpdateAvatar(ctx context.Context, accountID, localPath string) (*T, error) {
	if localPath == "" {
		return nil, ErrAvatarRequired
	}
	current, err := c.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	previous := PT(current).Base().Avatar

	avatar, err := c.uploadAvatar(ctx, localPath, true)
	if err != nil {
		return nil, err
	}
	updated, err := c.applyUpdates(ctx, accountID, map[string]interface{}{"avatar": *avatar})
	if err != nil {
		c.removeAvatar(ctx, avatar)
		return nil, err
	}
	if previous != nil && *previous != *avatar {
		c.removeAvatar(ctx, previous)
	}
	return updated, nil
}

// applyUpdates 写入字段并返回更新后的资料
func (c *accountCore[T, PT]) applyUpdates(ctx context.Context, accountID string, fields map[string]interface{}) (*T, error) {
	if email, ok := fields["email"].(string); ok {
		if err := c.ensureEmailAvailable(ctx, email, accountID); err != nil {
			return nil, err
		}
	}
	if err := c.repo.UpdateFields(ctx, accountID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyExists(c.role)
		}
		return nil, c.lookupError(err)
	}
	return c.Current(ctx, accountID)
}

// ── helpers ──

func (c *accountCore[T, PT]) ensureEmailAvailable(ctx context.Context, email, excludeID string) error {
	taken, err := c.repo.EmailTaken(ctx, strings.TrimSpace(email), excludeID)
	if err != nil {
		c.logger.Error("检查邮箱失败", zap.Error(err))
		return apperrors.Internal("Failed to check email", err)
	}
	if taken {
		return errAlreadyExists(c.role)
	}
	return nil
}

func (c *accountCore[T, PT]) uploadAvatar(ctx context.Context, localPath string, required bool) (*string, error) {
	if localPath == "" {
		if required {
			return nil, ErrAvatarRequired
		}
		return nil, nil
	}
	url, err := c.deps.Uploader.UploadFile(ctx, localPath, avatarPrefix)
	if err != nil {
		c.logger.Warn("上传头像失败", zap.Error(err))
		return nil, ErrAvatarUpload
	}
	return &url, nil
}

// removeAvatar 尽力删除对象，失败只记录日志
func (c *accountCore[T, PT]) removeAvatar(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := c.deps.Uploader.DeleteFile(ctx, *url); err != nil {
		c.logger.Warn("删除头像对象失败", zap.String("url", *url), zap.Error(err))
	}
}

// compareDummy 账号不存在时按同样的 cost 做一次比较，登录耗时不暴露账号是否存在
func (c *accountCore[T, PT]) compareDummy(password string) {
	c.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("academia-dummy-password"), c.deps.BcryptCost)
		if err != nil {
			c.logger.Warn("生成占位哈希失败", zap.Error(err))
			return
		}
		c.dummyHash = hash
	})
	if c.dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
	}
}

func (c *accountCore[T, PT]) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.deps.BcryptCost)
	if err != nil {
		return "", apperrors.Internal("Failed to hash password", err)
	}
	return string(hash), nil
}

func (c *accountCore[T, PT]) lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errAccountNotFound(c.role)
	}
	c.logger.Error("账号数据访问失败", zap.Error(err))
	return apperrors.Internal("Failed to access account", err)
}

// parseDate 解析 YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
