package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"academia/backend/internal/dto"
	"academia/backend/internal/model"
	"academia/backend/internal/repository"
	"academia/backend/pkg/jwt"
)

// AdminService 管理员业务接口
type AdminService interface {
	AccountService[model.Admin]
	Register(ctx context.Context, req *dto.RegisterAdminRequest, avatarPath string) (*model.Admin, error)
	UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateAdminRequest) (*model.Admin, error)
}

type adminService struct {
	*accountCore[model.Admin, *model.Admin]
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	invites InviteService,
	deps AccountDeps,
	logger *zap.Logger,
) AdminService {
	pick := func(r *repository.Repository) repository.AccountRepository[model.Admin] { return r.Admin }
	sessions := NewSessionIssuer[model.Admin, *model.Admin](repo.Admin, jwtMgr, logger)
	return &adminService{
		accountCore: newAccountCore(repo, pick, sessions, invites, deps, logger),
	}
}

// Register 管理员注册不需要邀请码，头像必填
func (s *adminService) Register(ctx context.Context, req *dto.RegisterAdminRequest, avatarPath string) (*model.Admin, error) {
	return s.register(ctx, registration[model.Admin]{
		missing:        req.MissingFields(),
		email:          req.Email,
		password:       req.Password,
		avatarPath:     avatarPath,
		avatarRequired: true,
		build: func() (*model.Admin, error) {
			return &model.Admin{
				AccountBase: model.AccountBase{
					Name:  strings.TrimSpace(req.Name),
					Phone: strings.TrimSpace(req.Phone),
				},
				Department: strings.TrimSpace(req.Department),
			}, nil
		},
	})
}

func (s *adminService) UpdateDetails(ctx context.Context, accountID string, req *dto.UpdateAdminRequest) (*model.Admin, error) {
	if req.IsEmpty() {
		return nil, ErrNoDetails
	}

	u := newProfileUpdate()
	u.setString("name", "name", req.Name)
	u.setString("email", "email", req.Email)
	u.setString("phone", "phone", req.Phone)
	u.setString("department", "department", req.Department)
	if err := u.err(); err != nil {
		return nil, err
	}

	return s.applyUpdates(ctx, accountID, u.fields)
}

// profileUpdate 收集待写入的列，trim 后为空的必填字段记入 blank
type profileUpdate struct {
	fields map[string]interface{}
	blank  []string
}

func newProfileUpdate() *profileUpdate {
	return &profileUpdate{fields: map[string]interface{}{}}
}

// setString 非 nil 时写入 trim 后的值
func (u *profileUpdate) setString(column, field string, v *string) {
	if v != nil {
		u.setTrimmed(column, field, *v)
	}
}

func (u *profileUpdate) setTrimmed(column, field, v string) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		u.blank = append(u.blank, field)
		return
	}
	u.fields[column] = trimmed
}

func (u *profileUpdate) err() error {
	if len(u.blank) == 0 {
		return nil
	}
	return ErrMissingFields.WithDetails(u.blank...)
}
